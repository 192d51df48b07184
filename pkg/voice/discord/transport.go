// Package discord provides a [voice.Transport] implementation backed by
// Discord voice channels via the bwmarrin/discordgo library. It bridges
// Discord's Opus-based voice transport with the player's URL-driven
// playback model: each track is decoded by ffmpeg and re-encoded to Opus
// on the fly.
//
// The transport requires an active *discordgo.Session (owned by the bot
// layer). Each call to [Transport.Join] joins the specified voice channel
// and returns a [Conn] that streams one track at a time.
package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/yaudiocord/yaudiocord/pkg/voice"
)

// Compile-time interface assertion.
var _ voice.Transport = (*Transport)(nil)

// Transport implements [voice.Transport] using discordgo voice connections.
// It requires an active *discordgo.Session (owned by the bot layer).
//
// Transport is safe for concurrent use.
type Transport struct {
	session    *discordgo.Session
	ffmpegPath string
	log        *slog.Logger
}

// NewTransport creates a Transport for the given session. ffmpegPath is the
// decoder executable used for every playback.
func NewTransport(session *discordgo.Session, ffmpegPath string, log *slog.Logger) *Transport {
	return &Transport{
		session:    session,
		ffmpegPath: ffmpegPath,
		log:        log,
	}
}

// Join connects to the voice channel identified by channelID and returns an
// active [voice.Conn]. The supplied ctx governs the connection-setup phase
// only; once the Conn is returned it lives until [Conn.Leave] is called.
func (t *Transport) Join(ctx context.Context, guildID, channelID string) (voice.Conn, error) {
	type joinResult struct {
		vc  *discordgo.VoiceConnection
		err error
	}
	res := make(chan joinResult, 1)

	go func() {
		// mute=false (we send audio), deaf=true (we never consume incoming audio).
		vc, err := t.session.ChannelVoiceJoin(guildID, channelID, false, true)
		res <- joinResult{vc: vc, err: err}
	}()

	select {
	case <-ctx.Done():
		// The join may still complete after the deadline; tear it down so a
		// half-open voice connection does not linger.
		go func() {
			if r := <-res; r.err == nil && r.vc != nil {
				_ = r.vc.Disconnect()
			}
		}()
		return nil, fmt.Errorf("voice: join channel %q: %w", channelID, ctx.Err())
	case r := <-res:
		if r.err != nil {
			return nil, fmt.Errorf("voice: join channel %q: %w", channelID, r.err)
		}
		return newConn(r.vc, t.ffmpegPath, t.log), nil
	}
}
