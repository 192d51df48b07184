// Package resolver defines the contract for turning a user query into a
// playable [track.Track].
//
// Resolution is blocking and potentially slow (it performs network I/O
// against an external extraction service), so callers must invoke it off
// any latency-sensitive path. The yt-dlp backed implementation lives in the
// ytdlp subpackage; an in-memory test double lives in mock.
package resolver

import (
	"context"

	"github.com/yaudiocord/yaudiocord/internal/track"
)

// Resolver turns a query string (URL or free-text search) into resolved
// track metadata. A failed resolution returns a human-readable diagnostic
// error and no track; failed queries never produce partial results.
//
// Implementations must be safe for concurrent use, but callers are expected
// to serialize calls process-wide: the upstream extraction service is not
// safe under concurrent use.
type Resolver interface {
	Resolve(ctx context.Context, query string) (*track.Track, error)
}
