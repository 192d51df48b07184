package discord

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/yaudiocord/yaudiocord/internal/ffmpeg"
	"github.com/yaudiocord/yaudiocord/pkg/voice"
)

// Compile-time interface assertion.
var _ voice.Conn = (*Conn)(nil)

// sendTimeout bounds a single Opus packet send. A stuck send means the
// voice UDP connection is gone and the stream should fail.
const sendTimeout = 5 * time.Second

// Conn wraps a discordgo.VoiceConnection and adapts it to the [voice.Conn]
// interface. Playback decodes the media URL to PCM with an external ffmpeg
// process, encodes 20 ms Opus frames, and sends them over the voice UDP
// connection until the stream ends or Halt is called.
//
// Conn is safe for concurrent use.
type Conn struct {
	vc         *discordgo.VoiceConnection
	ffmpegPath string
	log        *slog.Logger

	mu      sync.Mutex
	playing bool
	halt    chan struct{}
}

func newConn(vc *discordgo.VoiceConnection, ffmpegPath string, log *slog.Logger) *Conn {
	return &Conn{
		vc:         vc,
		ffmpegPath: ffmpegPath,
		log:        log,
	}
}

// Play starts streaming mediaURL and returns once the ffmpeg process is
// running. onComplete fires exactly once when playback ends, from a
// background goroutine. A Conn plays at most one stream at a time.
func (c *Conn) Play(mediaURL string, onComplete func(voice.Outcome)) error {
	if !c.Ready() {
		return voice.ErrNotConnected
	}

	c.mu.Lock()
	if c.playing {
		c.mu.Unlock()
		return errors.New("voice: playback already in progress")
	}

	cmd := exec.Command(c.ffmpegPath, ffmpeg.DecodeArgs(mediaURL)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("voice: ffmpeg stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("voice: start ffmpeg: %w", err)
	}

	halt := make(chan struct{})
	c.playing = true
	c.halt = halt
	c.mu.Unlock()

	go c.stream(cmd, stdout, halt, onComplete)
	return nil
}

// Halt aborts the current playback, if any. The stream's onComplete fires
// with [voice.OutcomeStopped]. Halting an idle Conn is a no-op.
func (c *Conn) Halt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.playing && c.halt != nil {
		close(c.halt)
		c.halt = nil
	}
}

// Leave halts playback and disconnects from the voice channel.
func (c *Conn) Leave() error {
	c.Halt()
	if err := c.vc.Disconnect(); err != nil {
		return fmt.Errorf("voice: disconnect: %w", err)
	}
	return nil
}

// ChannelID returns the voice channel this connection is bound to.
func (c *Conn) ChannelID() string {
	return c.vc.ChannelID
}

// Ready reports whether the underlying voice connection can carry audio.
func (c *Conn) Ready() bool {
	return c.vc != nil && c.vc.Ready
}

// stream pumps PCM frames from ffmpeg through the Opus encoder into the
// voice connection. It owns the lifetime of the ffmpeg process.
func (c *Conn) stream(cmd *exec.Cmd, stdout io.Reader, halt <-chan struct{}, onComplete func(voice.Outcome)) {
	var once sync.Once
	finish := func(o voice.Outcome) {
		once.Do(func() {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
			c.setSpeaking(false)

			c.mu.Lock()
			c.playing = false
			c.halt = nil
			c.mu.Unlock()

			onComplete(o)
		})
	}

	enc, err := newOpusEncoder()
	if err != nil {
		finish(voice.Outcome{Kind: voice.OutcomeErrored, Err: err})
		return
	}

	c.setSpeaking(true)
	frames := newFrameReader(stdout, pcmFrameBytes)

	for {
		select {
		case <-halt:
			finish(voice.Outcome{Kind: voice.OutcomeStopped})
			return
		default:
		}

		pcm, err := frames.Next()
		if errors.Is(err, io.EOF) {
			finish(voice.Outcome{Kind: voice.OutcomeFinished})
			return
		}
		if err != nil {
			finish(voice.Outcome{Kind: voice.OutcomeErrored, Err: fmt.Errorf("voice: read pcm: %w", err)})
			return
		}

		opus, err := enc.encode(pcm)
		if err != nil {
			c.log.Warn("opus encode error", "error", err)
			continue
		}

		select {
		case c.vc.OpusSend <- opus:
		case <-halt:
			finish(voice.Outcome{Kind: voice.OutcomeStopped})
			return
		case <-time.After(sendTimeout):
			finish(voice.Outcome{Kind: voice.OutcomeErrored, Err: errors.New("voice: opus send timed out")})
			return
		}
	}
}

// setSpeaking sends a speaking notification to Discord, logging any errors.
func (c *Conn) setSpeaking(b bool) {
	if err := c.vc.Speaking(b); err != nil {
		c.log.Warn("speaking notification error", "speaking", b, "error", err)
	}
}
