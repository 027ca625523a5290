package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tanq16/speedtest/internal/utils"
)

const updateBuffer = 64

// Monitor owns at most one transfer session at a time.
type Monitor struct {
	mu       sync.Mutex
	active   *Session
	interval time.Duration
	bufSize  int
	now      func() time.Time
}

type Option func(*Monitor)

// WithSampleInterval sets the minimum gap between two progress samples while
// bytes keep arriving. Zero samples on every read.
func WithSampleInterval(d time.Duration) Option {
	return func(m *Monitor) { m.interval = d }
}

func WithBufferSize(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.bufSize = n
		}
	}
}

// WithClock replaces the time source; it should be monotonic.
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

func New(opts ...Option) *Monitor {
	m := &Monitor{
		interval: 50 * time.Millisecond,
		bufSize:  utils.DefaultBufferSize,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start opens src and begins sampling it. The returned session is the handle
// for both its updates and its cancellation.
func (m *Monitor) Start(ctx context.Context, src Source) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		return nil, ErrSessionActive
	}
	sctx, cancel := context.WithCancel(ctx)
	s := &Session{
		ID:       uuid.New(),
		source:   src,
		interval: m.interval,
		bufSize:  m.bufSize,
		now:      m.now,
		ctx:      sctx,
		cancel:   cancel,
		updates:  make(chan Snapshot, updateBuffer),
		done:     make(chan struct{}),
		release:  m.release,
	}
	s.latest = Snapshot{SessionID: s.ID, State: StateRunning, Total: -1}
	m.active = s
	log.Info().Str("op", "monitor/start").Str("session", s.ID.String()).Msgf("Starting transfer from %s", src)
	go s.run()
	return s, nil
}

// Active returns the running session, or nil when idle.
func (m *Monitor) Active() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *Monitor) release(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == s {
		m.active = nil
	}
}
