// Package track defines the resolved-track value passed between the
// resolver, the per-guild playback queue, and the voice transport.
package track

import "time"

// Track is a fully resolved, playable item. It is immutable once created:
// the resolver builds it, the owning queue holds it, and it is dropped after
// playback (or when a queue is drained). StreamURL is an opaque media
// locator that is only valid for a bounded time after resolution.
type Track struct {
	// Title is the human-readable track title.
	Title string

	// StreamURL is the direct media locator handed to the transport.
	StreamURL string

	// WebURL is the canonical page the track was resolved from, if known.
	WebURL string

	// Query is the original user query this track was resolved from.
	Query string

	// Duration is the track length, if the resolver reported one.
	Duration time.Duration
}
