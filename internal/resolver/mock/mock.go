// Package mock provides an in-memory [resolver.Resolver] for unit tests.
package mock

import (
	"context"
	"sync"

	"github.com/yaudiocord/yaudiocord/internal/resolver"
	"github.com/yaudiocord/yaudiocord/internal/track"
)

// ResolveCall records the arguments of a single Resolve invocation.
type ResolveCall struct {
	// Query is the query argument passed to Resolve.
	Query string
}

// Resolver is a mock implementation of [resolver.Resolver].
// Set the exported fields before use; inspect ResolveCalls after.
type Resolver struct {
	mu sync.Mutex

	// ResolveResult is returned by Resolve when ResolveFunc is nil.
	ResolveResult *track.Track

	// ResolveErr is the error returned by Resolve when ResolveFunc is nil.
	ResolveErr error

	// ResolveFunc, when set, handles the call entirely. Useful for
	// per-query results or for blocking until a test releases it.
	ResolveFunc func(ctx context.Context, query string) (*track.Track, error)

	// ResolveCalls records all Resolve invocations.
	ResolveCalls []ResolveCall
}

// Compile-time interface assertion.
var _ resolver.Resolver = (*Resolver)(nil)

// Resolve implements [resolver.Resolver].
func (r *Resolver) Resolve(ctx context.Context, query string) (*track.Track, error) {
	r.mu.Lock()
	r.ResolveCalls = append(r.ResolveCalls, ResolveCall{Query: query})
	fn := r.ResolveFunc
	res, err := r.ResolveResult, r.ResolveErr
	r.mu.Unlock()

	if fn != nil {
		return fn(ctx, query)
	}
	return res, err
}

// ResolveCount returns the number of Resolve invocations so far.
func (r *Resolver) ResolveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ResolveCalls)
}
