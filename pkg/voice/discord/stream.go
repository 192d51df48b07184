package discord

import (
	"errors"
	"io"
)

// frameReader slices a PCM byte stream into fixed-size frames for the Opus
// encoder. The final partial frame, if any, is zero-padded to a full frame
// so no trailing audio is lost.
type frameReader struct {
	r         io.Reader
	frameSize int
	buf       []byte
}

func newFrameReader(r io.Reader, frameSize int) *frameReader {
	return &frameReader{
		r:         r,
		frameSize: frameSize,
		buf:       make([]byte, frameSize),
	}
}

// Next returns the next frame. The returned slice is reused across calls.
// It returns io.EOF once the stream is exhausted.
func (f *frameReader) Next() ([]byte, error) {
	n, err := io.ReadFull(f.r, f.buf)
	switch {
	case err == nil:
		return f.buf, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		clear(f.buf[n:])
		return f.buf, nil
	case errors.Is(err, io.EOF):
		return nil, io.EOF
	default:
		return nil, err
	}
}
