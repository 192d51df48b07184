// Package voice defines the interfaces and types for voice-channel
// connectivity and audio playback.
//
// The two primary abstractions are:
//
//   - [Transport] — joins a voice channel and returns a [Conn].
//   - [Conn] — represents a live connection to that channel, accepting one
//     active audio source at a time and reporting the outcome of every
//     playback attempt through a completion callback.
//
// Implementations are provided by platform-specific adapter packages
// (e.g. voice/discord). The interfaces are intentionally narrow so that the
// playback scheduler stays decoupled from provider details.
//
// This package lives under pkg/ because external code (third-party platform
// adapters) is expected to implement [Transport] and [Conn].
package voice

import (
	"context"
	"errors"
)

// ErrNotConnected is returned synchronously by [Conn.Play] when the
// connection existed but is no longer valid. Callers may attempt a single
// rejoin and retry; any further failure should drop the track.
var ErrNotConnected = errors.New("voice: not connected")

// OutcomeKind classifies how a playback attempt ended.
type OutcomeKind int

const (
	// OutcomeFinished means the source was played to exhaustion.
	OutcomeFinished OutcomeKind = iota

	// OutcomeErrored means playback failed mid-stream; Outcome.Err carries
	// the cause.
	OutcomeErrored

	// OutcomeStopped means playback was forcibly halted via [Conn.Halt].
	OutcomeStopped
)

// String returns the human-readable name of the outcome kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeFinished:
		return "finished"
	case OutcomeErrored:
		return "errored"
	case OutcomeStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Outcome describes how a single playback attempt ended. Err is non-nil
// only for [OutcomeErrored].
type Outcome struct {
	Kind OutcomeKind
	Err  error
}

// Conn represents a live connection to a voice channel.
//
// A Conn is obtained from [Transport.Join] and remains valid until
// [Conn.Leave] is called or the underlying transport drops it. At most one
// source plays at a time; starting a new playback while one is active is an
// implementation-defined error.
//
// Implementations must be safe for concurrent use, and must guarantee that
// the onComplete callback passed to Play fires exactly once per successful
// Play call — on natural exhaustion, on mid-stream error, or on [Conn.Halt].
// The callback may be invoked from an internal goroutine; callers must not
// block in it.
type Conn interface {
	// Play starts streaming the media at mediaURL into the channel and
	// registers onComplete to receive the final [Outcome]. It returns
	// [ErrNotConnected] synchronously when the connection has been
	// invalidated; in that case onComplete is never invoked.
	Play(mediaURL string, onComplete func(Outcome)) error

	// Halt forces the active playback to end, which delivers
	// [OutcomeStopped] to its onComplete callback. Halt is a no-op when
	// nothing is playing.
	Halt()

	// Leave tears down the connection. It is safe to call more than once.
	Leave() error

	// ChannelID reports the voice channel this connection is joined to.
	ChannelID() string

	// Ready reports whether the connection is currently usable.
	Ready() bool
}

// Transport is the entry point for a voice-channel provider.
// Implementations wrap provider-specific SDKs and expose a uniform [Conn]
// abstraction.
//
// Implementations must be safe for concurrent use.
type Transport interface {
	// Join connects to the voice channel identified by guildID/channelID
	// and returns a live [Conn]. The supplied ctx bounds the join attempt
	// only; once joined, the Conn lives until [Conn.Leave].
	Join(ctx context.Context, guildID, channelID string) (Conn, error)
}
