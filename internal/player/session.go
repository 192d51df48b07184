package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/yaudiocord/yaudiocord/internal/observe"
	"github.com/yaudiocord/yaudiocord/internal/track"
	"github.com/yaudiocord/yaudiocord/pkg/voice"
)

// ErrNoChannel is returned when playback is attempted before the session
// has ever been pointed at a voice channel.
var ErrNoChannel = errors.New("player: no voice channel set")

// Default timing values; see [Timing].
const (
	defaultJoinTimeout = 20 * time.Second
	defaultSettleDelay = 250 * time.Millisecond
	defaultRetryDelay  = time.Second
)

// Timing bounds the session's timed operations. The zero value of any field
// selects its default.
type Timing struct {
	// JoinTimeout bounds a single voice-channel join attempt.
	JoinTimeout time.Duration

	// SettleDelay is imposed between consecutive tracks to bound rapid
	// reconnect/playback churn against the transport.
	SettleDelay time.Duration

	// RetryDelay is the pause before the single reconnect-and-retry after a
	// not-connected play failure.
	RetryDelay time.Duration
}

func (tm Timing) withDefaults() Timing {
	if tm.JoinTimeout == 0 {
		tm.JoinTimeout = defaultJoinTimeout
	}
	if tm.SettleDelay == 0 {
		tm.SettleDelay = defaultSettleDelay
	}
	if tm.RetryDelay == 0 {
		tm.RetryDelay = defaultRetryDelay
	}
	return tm
}

// Session is the per-guild playback scheduler. It owns an ordered queue of
// resolved tracks, a single worker goroutine that consumes it, and the
// lifecycle of the guild's voice connection. At most one worker runs per
// session at any time; Start is idempotent while a worker is alive.
//
// All exported methods are safe for concurrent use. The active track and
// the connection are mutated only by the worker and by the Stop/Enqueue
// entry points.
type Session struct {
	guildID   string
	transport voice.Transport
	queue     *Queue
	timing    Timing
	log       *slog.Logger
	metrics   *observe.Metrics

	mu        sync.Mutex
	channelID string      // last channel the session was asked to join
	conn      voice.Conn  // live connection, nil when never joined or torn down
	active    *track.Track
	cancel    context.CancelFunc
	done      chan struct{} // closed when the current worker exits

	starts atomic.Int64
}

// NewSession creates an idle Session for the given guild.
func NewSession(guildID string, transport voice.Transport, timing Timing, log *slog.Logger, metrics *observe.Metrics) *Session {
	return &Session{
		guildID:   guildID,
		transport: transport,
		queue:     NewQueue(),
		timing:    timing.withDefaults(),
		log:       log,
		metrics:   metrics,
	}
}

// SetChannel records the voice channel the session should join. The value
// survives transport disconnects so the worker can rejoin.
func (s *Session) SetChannel(channelID string) {
	s.mu.Lock()
	s.channelID = channelID
	s.mu.Unlock()
}

// Channel returns the last channel the session was asked to join.
func (s *Session) Channel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channelID
}

// Start launches the playback worker. It is a no-op while a worker is
// already running; a stale stop request from a previous run is cleared.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runningLocked() {
		return
	}

	s.queue.Reopen()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done
	s.starts.Add(1)

	s.metrics.WorkerStarts.Add(ctx, 1, metric.WithAttributes(observe.Attr("guild", s.guildID)))
	s.metrics.ActiveWorkers.Add(ctx, 1)

	go s.run(ctx, done)
	s.log.Info("playback worker started", "guild", s.guildID)
}

// Running reports whether a worker goroutine is currently alive.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runningLocked()
}

func (s *Session) runningLocked() bool {
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// WorkerStarts returns how many worker goroutines have ever been launched.
func (s *Session) WorkerStarts() int64 {
	return s.starts.Load()
}

// Enqueue appends a resolved track to the queue. It never blocks.
func (s *Session) Enqueue(t *track.Track) {
	s.queue.Enqueue(t)
	ctx := context.Background()
	s.metrics.TracksEnqueued.Add(ctx, 1, metric.WithAttributes(observe.Attr("guild", s.guildID)))
	s.metrics.QueueDepth.Add(ctx, 1)
	s.log.Info("track enqueued", "guild", s.guildID, "title", t.Title, "queued", s.queue.Len())
}

// QueueLen returns the number of queued (not yet playing) tracks.
func (s *Session) QueueLen() int {
	return s.queue.Len()
}

// NowPlaying returns the track currently in the play-and-wait cycle, or nil.
func (s *Session) NowPlaying() *track.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Skip forces the current playback to end, which advances the worker to the
// next queued track. Returns false when nothing is playing.
func (s *Session) Skip() bool {
	s.mu.Lock()
	conn := s.conn
	playing := s.active != nil
	s.mu.Unlock()

	if conn == nil || !playing {
		return false
	}
	conn.Halt()
	s.log.Info("track skipped", "guild", s.guildID)
	return true
}

// Stop drains the queue, clears the active track, halts any live playback
// (which delivers a stopped outcome to the worker) and asks the worker to
// exit. With disconnect set, the voice connection is also torn down.
//
// Stop is safe to call whether or not a worker is running and whether or
// not a connection exists.
func (s *Session) Stop(disconnect bool) {
	s.mu.Lock()
	cancel := s.cancel
	conn := s.conn
	s.active = nil
	if disconnect {
		s.conn = nil
	}
	s.mu.Unlock()

	dropped := s.queue.Drain()
	if dropped > 0 {
		s.metrics.QueueDepth.Add(context.Background(), int64(-dropped))
	}
	s.queue.Shutdown()

	if conn != nil {
		conn.Halt()
		if disconnect {
			if err := conn.Leave(); err != nil {
				s.log.Warn("voice disconnect error", "guild", s.guildID, "err", err)
			}
		}
	}
	if cancel != nil {
		cancel()
	}
	s.log.Info("playback stopped", "guild", s.guildID, "cleared", dropped, "disconnect", disconnect)
}

// run is the worker loop. It exits on the queue's shutdown sentinel, on
// cancellation, or on an unexpected panic; it is relaunched only by an
// explicit Start so repeated crashes stay visible instead of being retried
// silently.
func (s *Session) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer s.metrics.ActiveWorkers.Add(context.Background(), -1)
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("playback worker crashed", "guild", s.guildID, "panic", r)
		}
	}()

	for {
		t, ok := s.queue.Dequeue()
		if !ok {
			s.log.Debug("playback worker exiting", "guild", s.guildID)
			return
		}
		s.metrics.QueueDepth.Add(ctx, -1)
		if ctx.Err() != nil {
			return
		}

		s.playOne(ctx, t)

		if !sleepCtx(ctx, s.timing.SettleDelay) {
			return
		}
	}
}

// playOne runs a single play-and-wait cycle for t. Failures drop the track
// and return; they never terminate the worker.
func (s *Session) playOne(ctx context.Context, t *track.Track) {
	s.setActive(t)
	defer s.setActive(nil)

	conn, err := s.ensureConnected(ctx)
	if err != nil {
		s.log.Warn("no voice connection, dropping track", "guild", s.guildID, "title", t.Title, "err", err)
		s.metrics.RecordDrop(ctx, s.guildID, "connect")
		return
	}

	// One-shot completion bridge: the transport fires onComplete from its
	// own goroutine; the buffered channel plus non-blocking send marshals
	// it back here exactly once.
	completed := make(chan voice.Outcome, 1)
	onComplete := func(o voice.Outcome) {
		select {
		case completed <- o:
		default:
		}
	}

	err = conn.Play(t.StreamURL, onComplete)
	if errors.Is(err, voice.ErrNotConnected) {
		// The connection was invalidated between the readiness check and
		// the play call. Rejoin once, retry once.
		s.log.Warn("play failed on dead connection, rejoining", "guild", s.guildID, "title", t.Title)
		if !sleepCtx(ctx, s.timing.RetryDelay) {
			return
		}
		s.invalidate(conn)
		conn, err = s.ensureConnected(ctx)
		if err == nil {
			err = conn.Play(t.StreamURL, onComplete)
		}
	}
	if err != nil {
		s.log.Warn("playback start failed, dropping track", "guild", s.guildID, "title", t.Title, "err", err)
		s.metrics.RecordDrop(ctx, s.guildID, "play")
		return
	}

	select {
	case o := <-completed:
		if o.Kind == voice.OutcomeErrored {
			s.log.Warn("playback ended with error", "guild", s.guildID, "title", t.Title, "err", o.Err)
		}
		s.metrics.RecordPlayed(ctx, s.guildID, o.Kind.String())
	case <-ctx.Done():
		// Cancellation during the wait; stop the orphaned stream.
		conn.Halt()
		s.metrics.RecordPlayed(context.Background(), s.guildID, "cancelled")
	}
}

// ensureConnected returns a live connection to the session's target
// channel, reusing the existing one when possible and joining otherwise.
// The join attempt is bounded by the configured timeout. Failure is
// reported as an error, never a panic past this boundary.
func (s *Session) ensureConnected(ctx context.Context) (voice.Conn, error) {
	s.mu.Lock()
	channelID := s.channelID
	conn := s.conn
	s.mu.Unlock()

	if channelID == "" {
		return nil, ErrNoChannel
	}
	if conn != nil && conn.Ready() && conn.ChannelID() == channelID {
		return conn, nil
	}

	joinCtx, cancel := context.WithTimeout(ctx, s.timing.JoinTimeout)
	defer cancel()
	fresh, err := s.transport.Join(joinCtx, s.guildID, channelID)
	if err != nil {
		return nil, fmt.Errorf("join channel %s: %w", channelID, err)
	}

	s.mu.Lock()
	s.conn = fresh
	s.mu.Unlock()
	s.log.Info("joined voice channel", "guild", s.guildID, "channel", channelID)
	return fresh, nil
}

// invalidate clears the stored connection if it is still the given one.
func (s *Session) invalidate(old voice.Conn) {
	s.mu.Lock()
	if s.conn == old {
		s.conn = nil
	}
	s.mu.Unlock()
}

func (s *Session) setActive(t *track.Track) {
	s.mu.Lock()
	s.active = t
	s.mu.Unlock()
}

// sleepCtx sleeps for d or until ctx is cancelled. Returns false on
// cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
