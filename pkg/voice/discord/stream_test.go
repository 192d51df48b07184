package discord

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestFrameReader_ExactFrames(t *testing.T) {
	t.Parallel()

	data := bytes.Repeat([]byte{0xAB}, 8)
	fr := newFrameReader(bytes.NewReader(data), 4)

	for range 2 {
		frame, err := fr.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if len(frame) != 4 {
			t.Fatalf("frame length = %d, want 4", len(frame))
		}
		if !bytes.Equal(frame, []byte{0xAB, 0xAB, 0xAB, 0xAB}) {
			t.Errorf("frame = %v, want all 0xAB", frame)
		}
	}

	if _, err := fr.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next after exhaustion = %v, want io.EOF", err)
	}
}

func TestFrameReader_PadsFinalPartialFrame(t *testing.T) {
	t.Parallel()

	fr := newFrameReader(bytes.NewReader([]byte{1, 2, 3, 4, 5, 6}), 4)

	if _, err := fr.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}

	frame, err := fr.Next()
	if err != nil {
		t.Fatalf("Next on partial tail: %v", err)
	}
	if !bytes.Equal(frame, []byte{5, 6, 0, 0}) {
		t.Errorf("frame = %v, want partial data zero-padded", frame)
	}

	if _, err := fr.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next after padded tail = %v, want io.EOF", err)
	}
}

func TestFrameReader_EmptyStream(t *testing.T) {
	t.Parallel()

	fr := newFrameReader(bytes.NewReader(nil), 4)
	if _, err := fr.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("Next on empty stream = %v, want io.EOF", err)
	}
}

func TestBytesToInt16s(t *testing.T) {
	t.Parallel()

	got := bytesToInt16s([]byte{0x01, 0x00, 0xFF, 0xFF, 0x00, 0x80})
	want := []int16{1, -1, -32768}
	if len(got) != len(want) {
		t.Fatalf("length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
