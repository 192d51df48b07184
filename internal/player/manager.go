package player

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/semaphore"

	"github.com/yaudiocord/yaudiocord/internal/observe"
	"github.com/yaudiocord/yaudiocord/internal/resolver"
	"github.com/yaudiocord/yaudiocord/internal/track"
	"github.com/yaudiocord/yaudiocord/pkg/voice"
)

// Manager owns the guildID → [Session] registry and fronts it with the API
// the command layer consumes. Sessions are created lazily on first use and
// live for the remainder of the process; guild counts are small enough that
// eviction is not worth the bookkeeping.
//
// All track resolution in the process funnels through a single weighted-1
// semaphore: the upstream extraction service is not safe under concurrent
// use. The gate only serializes resolution — playback across guilds stays
// fully independent.
type Manager struct {
	transport voice.Transport
	resolver  resolver.Resolver
	timing    Timing
	log       *slog.Logger
	metrics   *observe.Metrics
	gate      *semaphore.Weighted

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a Manager with no sessions.
func NewManager(transport voice.Transport, res resolver.Resolver, timing Timing, log *slog.Logger, metrics *observe.Metrics) *Manager {
	return &Manager{
		transport: transport,
		resolver:  res,
		timing:    timing,
		log:       log,
		metrics:   metrics,
		gate:      semaphore.NewWeighted(1),
		sessions:  make(map[string]*Session),
	}
}

// Session returns the guild's session, creating an idle one on first use.
func (m *Manager) Session(guildID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[guildID]
	if !ok {
		s = NewSession(guildID, m.transport, m.timing, m.log, m.metrics)
		m.sessions[guildID] = s
	}
	return s
}

// Start points the guild's session at channelID and ensures its worker is
// running. Calling Start on an already-running session only updates the
// target channel.
func (m *Manager) Start(guildID, channelID string) {
	s := m.Session(guildID)
	s.SetChannel(channelID)
	s.Start()
}

// Enqueue resolves query behind the process-wide resolution gate and, on
// success, appends the track to the guild's queue and ensures the worker is
// running. A resolution failure is returned to the caller and never touches
// the queue.
func (m *Manager) Enqueue(ctx context.Context, guildID, query string) (*track.Track, error) {
	if err := m.gate.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("player: waiting for resolver: %w", err)
	}
	started := time.Now()
	t, err := m.resolver.Resolve(ctx, query)
	m.gate.Release(1)

	status := "ok"
	if err != nil {
		status = "error"
	}
	m.metrics.ResolveDuration.Record(ctx, time.Since(started).Seconds(),
		metric.WithAttributes(observe.Attr("status", status)))

	if err != nil {
		m.log.Warn("track resolution failed", "guild", guildID, "query", query, "err", err)
		return nil, err
	}

	s := m.Session(guildID)
	s.Enqueue(t)
	s.Start()
	return t, nil
}

// Skip forces the guild's current playback to end. Returns false when
// nothing is playing.
func (m *Manager) Skip(guildID string) bool {
	return m.Session(guildID).Skip()
}

// Stop clears the guild's queue and halts playback; with disconnect set it
// also leaves the voice channel.
func (m *Manager) Stop(guildID string, disconnect bool) {
	m.Session(guildID).Stop(disconnect)
}

// NowPlaying returns the guild's currently playing track, or nil.
func (m *Manager) NowPlaying(guildID string) *track.Track {
	return m.Session(guildID).NowPlaying()
}

// Shutdown stops every session and tears down its voice connection. Used on
// process exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		s.Stop(true)
	}
}
