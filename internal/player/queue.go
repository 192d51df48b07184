// Package player implements the per-guild playback scheduler: an ordered
// track queue, a long-lived worker that owns the voice connection lifecycle,
// and the manager that maps guilds to their sessions.
package player

import (
	"sync"

	"github.com/yaudiocord/yaudiocord/internal/track"
)

// Queue is an unbounded, strict-FIFO queue of resolved tracks with a
// shutdown sentinel. Enqueue never blocks; Dequeue blocks the caller until
// a track or a sentinel is available. All methods are safe for concurrent
// use and atomic with respect to each other.
type Queue struct {
	mu        sync.Mutex
	cond      *sync.Cond
	items     []*track.Track
	sentinels int
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	q := &Queue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Enqueue appends t to the tail of the queue and wakes one blocked Dequeue.
func (q *Queue) Enqueue(t *track.Track) {
	q.mu.Lock()
	q.items = append(q.items, t)
	q.mu.Unlock()
	q.cond.Signal()
}

// Dequeue blocks until a track or a shutdown sentinel is available.
// It returns (track, true) for a track and (nil, false) for a sentinel.
// A pending sentinel always wins over buffered tracks, so a worker told to
// shut down exits immediately instead of playing through the backlog.
func (q *Queue) Dequeue() (*track.Track, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && q.sentinels == 0 {
		q.cond.Wait()
	}
	if q.sentinels > 0 {
		q.sentinels--
		return nil, false
	}
	t := q.items[0]
	q.items = q.items[1:]
	return t, true
}

// Drain removes and discards all currently queued tracks without blocking,
// returning how many were dropped. The queue remains usable for future
// enqueues. Pending sentinels are not affected.
func (q *Queue) Drain() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := len(q.items)
	q.items = nil
	return n
}

// Shutdown posts one shutdown sentinel, waking a blocked Dequeue. Each
// sentinel is consumed by exactly one Dequeue.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	q.sentinels++
	q.mu.Unlock()
	q.cond.Signal()
}

// Reopen discards any unconsumed sentinels. Called when a new worker is
// launched so a stale stop request cannot kill it immediately.
func (q *Queue) Reopen() {
	q.mu.Lock()
	q.sentinels = 0
	q.mu.Unlock()
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
