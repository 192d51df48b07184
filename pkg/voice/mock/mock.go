// Package mock provides in-memory mock implementations of the
// [voice.Transport] and [voice.Conn] interfaces for use in unit tests.
//
// All mocks are safe for concurrent use. They record every method call so
// that tests can assert on call counts and arguments, and they expose
// exported fields that the test can set to control return values.
//
// Typical usage:
//
//	conn := &mock.Conn{}
//	transport := &mock.Transport{JoinResult: conn}
//	got, err := transport.Join(ctx, "guild-1", "channel-42")
//	...
//	conn.Complete(voice.Outcome{Kind: voice.OutcomeFinished})
package mock

import (
	"context"
	"sync"

	"github.com/yaudiocord/yaudiocord/pkg/voice"
)

// ─── Conn ─────────────────────────────────────────────────────────────────────

// PlayCall records the arguments of a single [Conn.Play] invocation.
type PlayCall struct {
	// MediaURL is the media locator passed to Play.
	MediaURL string
}

// Conn is a mock implementation of [voice.Conn].
// Set the exported result fields before use; inspect the Call* fields after.
type Conn struct {
	mu sync.Mutex

	// PlayErrs holds per-call errors consumed in order by Play. When the
	// slice is exhausted, PlayErr is used instead.
	PlayErrs []error

	// PlayErr is returned by Play once PlayErrs is exhausted. A nil value
	// means Play succeeds and registers the completion callback.
	PlayErr error

	// LeaveErr is returned by Leave.
	LeaveErr error

	// ChannelIDResult is returned by ChannelID.
	ChannelIDResult string

	// Unready makes Ready report false.
	Unready bool

	// PlayCalls records all Play invocations, including failed ones.
	PlayCalls []PlayCall

	// CallCountHalt records how many times Halt was called.
	CallCountHalt int

	// CallCountLeave records how many times Leave was called.
	CallCountLeave int

	// active is the completion callback of the in-flight playback, cleared
	// once fired.
	active func(voice.Outcome)
}

// Compile-time interface assertions.
var (
	_ voice.Conn      = (*Conn)(nil)
	_ voice.Transport = (*Transport)(nil)
)

// Play implements [voice.Conn]. It records the call, returns the next
// scripted error if any, and otherwise stores onComplete so the test can
// fire it via [Conn.Complete] or [Conn.Halt].
func (c *Conn) Play(mediaURL string, onComplete func(voice.Outcome)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.PlayCalls = append(c.PlayCalls, PlayCall{MediaURL: mediaURL})
	if len(c.PlayErrs) > 0 {
		err := c.PlayErrs[0]
		c.PlayErrs = c.PlayErrs[1:]
		if err != nil {
			return err
		}
		c.active = onComplete
		return nil
	}
	if c.PlayErr != nil {
		return c.PlayErr
	}
	c.active = onComplete
	return nil
}

// Halt implements [voice.Conn]. If a playback is in flight its callback
// fires with [voice.OutcomeStopped], mirroring real transport behaviour.
func (c *Conn) Halt() {
	c.mu.Lock()
	c.CallCountHalt++
	cb := c.active
	c.active = nil
	c.mu.Unlock()
	if cb != nil {
		cb(voice.Outcome{Kind: voice.OutcomeStopped})
	}
}

// Leave implements [voice.Conn]. Returns LeaveErr.
func (c *Conn) Leave() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CallCountLeave++
	return c.LeaveErr
}

// ChannelID implements [voice.Conn]. Returns ChannelIDResult.
func (c *Conn) ChannelID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ChannelIDResult
}

// Ready implements [voice.Conn]. Returns !Unready.
func (c *Conn) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.Unready
}

// Complete fires the in-flight playback's completion callback with the
// given outcome. Use this in tests to simulate natural track completion or
// a mid-stream error. It is a no-op when nothing is playing.
func (c *Conn) Complete(o voice.Outcome) {
	c.mu.Lock()
	cb := c.active
	c.active = nil
	c.mu.Unlock()
	if cb != nil {
		cb(o)
	}
}

// Playing reports whether a playback callback is currently registered.
func (c *Conn) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

// ─── Transport ────────────────────────────────────────────────────────────────

// JoinCall records the arguments of a single [Transport.Join] invocation.
type JoinCall struct {
	// GuildID is the guildID argument passed to Join.
	GuildID string

	// ChannelID is the channelID argument passed to Join.
	ChannelID string
}

// Transport is a mock implementation of [voice.Transport].
type Transport struct {
	mu sync.Mutex

	// JoinResult is the [voice.Conn] returned by Join.
	JoinResult voice.Conn

	// JoinErrs holds per-call errors consumed in order by Join. When the
	// slice is exhausted, JoinErr is used instead.
	JoinErrs []error

	// JoinErr is the error returned by Join once JoinErrs is exhausted.
	JoinErr error

	// JoinCalls records all Join invocations.
	JoinCalls []JoinCall
}

// Join implements [voice.Transport]. Records the call and returns
// JoinResult / the next scripted error.
func (t *Transport) Join(_ context.Context, guildID, channelID string) (voice.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.JoinCalls = append(t.JoinCalls, JoinCall{GuildID: guildID, ChannelID: channelID})
	if len(t.JoinErrs) > 0 {
		err := t.JoinErrs[0]
		t.JoinErrs = t.JoinErrs[1:]
		if err != nil {
			return nil, err
		}
		return t.JoinResult, nil
	}
	if t.JoinErr != nil {
		return nil, t.JoinErr
	}
	return t.JoinResult, nil
}

// JoinCount returns the number of Join invocations so far.
func (t *Transport) JoinCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.JoinCalls)
}
