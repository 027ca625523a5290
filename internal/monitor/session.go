package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Session is one download from start to completion, failure or abort.
type Session struct {
	ID uuid.UUID

	source   Source
	interval time.Duration
	bufSize  int
	now      func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	updates chan Snapshot
	done    chan struct{}
	release func(*Session)

	emitMu sync.Mutex // orders sends against Abort
	mu     sync.Mutex
	latest Snapshot
}

// Updates delivers snapshots in sample order. It is closed when the session
// ends; an aborted session sends nothing after Abort returns.
func (s *Session) Updates() <-chan Snapshot {
	return s.updates
}

// Done is closed once the transfer is fully torn down.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Latest returns the most recent snapshot.
func (s *Session) Latest() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

func (s *Session) State() State {
	return s.Latest().State
}

// Abort cancels the transfer if it is still running. It is safe to call any
// number of times and is a no-op once the session has ended on its own.
func (s *Session) Abort() {
	s.cancel()
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest.State == StateRunning {
		s.latest.State = StateAborted
		log.Info().Str("op", "monitor/session").Str("session", s.ID.String()).Msg("Transfer aborted")
	}
}

func (s *Session) run() {
	defer close(s.done)
	defer close(s.updates)
	defer s.release(s)
	defer s.cancel()

	start := s.now()
	body, total, err := s.source.Open(s.ctx)
	if err != nil {
		s.fail(err)
		return
	}
	defer body.Close()
	log.Debug().Str("op", "monitor/session").Str("session", s.ID.String()).Int64("total", total).Msg("Transfer opened")

	s.mu.Lock()
	s.latest.Total = total
	s.mu.Unlock()

	est := NewEstimator(start)
	buf := make([]byte, s.bufSize)
	var loaded int64
	lastSample := start
	pending := false
	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			loaded += int64(n)
			pending = true
		}
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			s.fail(fmt.Errorf("error reading response body: %w", readErr))
			return
		}
		now := s.now()
		if pending && (readErr != nil || now.Sub(lastSample) >= s.interval) {
			s.observe(est, Sample{Loaded: loaded, Total: total, At: now})
			lastSample = now
			pending = false
		}
		if readErr != nil {
			s.finish(StateCompleted, nil)
			log.Info().Str("op", "monitor/session").Str("session", s.ID.String()).Int64("bytes", loaded).Msg("Transfer completed")
			return
		}
	}
}

func (s *Session) observe(est *Estimator, sample Sample) {
	rate, changed := est.Observe(sample)
	if !changed {
		log.Debug().Str("op", "monitor/session").Str("session", s.ID.String()).Msg("Sample with no elapsed time, rate carried over")
	}
	s.publish(Snapshot{
		SessionID: s.ID,
		Loaded:    sample.Loaded,
		Total:     sample.Total,
		Progress:  sample.Progress(),
		Rate:      rate,
		State:     StateRunning,
	})
}

func (s *Session) fail(err error) {
	if s.ctx.Err() != nil {
		s.Abort()
		return
	}
	log.Error().Str("op", "monitor/session").Str("session", s.ID.String()).Err(err).Msg("Transfer failed")
	s.finish(StateFailed, err)
}

// finish emits the terminal snapshot, keeping the last progress and rate.
func (s *Session) finish(state State, err error) {
	s.mu.Lock()
	snap := s.latest
	s.mu.Unlock()
	snap.State = state
	snap.Err = err
	s.publish(snap)
}

// publish records snap as the latest and sends it, unless the session has
// already left the running state.
func (s *Session) publish(snap Snapshot) bool {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	if s.ctx.Err() != nil {
		return false
	}
	s.mu.Lock()
	if s.latest.State != StateRunning {
		s.mu.Unlock()
		return false
	}
	s.latest = snap
	s.mu.Unlock()
	select {
	case s.updates <- snap:
		return true
	case <-s.ctx.Done():
		return false
	}
}
