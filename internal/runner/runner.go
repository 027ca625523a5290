package runner

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tanq16/speedtest/internal/monitor"
	"github.com/tanq16/speedtest/internal/output"
)

// Runner binds the dashboard toggle to the monitor: it starts and aborts
// sessions and feeds their snapshots to the dashboard.
type Runner struct {
	mon    *monitor.Monitor
	dash   *output.Dashboard
	source monitor.Source

	mu      sync.Mutex
	session *monitor.Session // active session, nil when idle
	prev    *monitor.Session // last session, possibly still tearing down
	ended   chan monitor.Snapshot
	wg      sync.WaitGroup
}

func New(mon *monitor.Monitor, dash *output.Dashboard, source monitor.Source) *Runner {
	return &Runner{
		mon:    mon,
		dash:   dash,
		source: source,
		ended:  make(chan monitor.Snapshot, 1),
	}
}

// Toggle starts a session when idle and aborts the active one otherwise.
func (r *Runner) Toggle(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session != nil {
		s := r.session
		r.session = nil
		s.Abort()
		r.dash.MarkAborted()
		r.dash.SetRunning(false)
		return nil
	}
	if r.prev != nil {
		<-r.prev.Done()
	}
	s, err := r.mon.Start(ctx, r.source)
	if err != nil {
		return err
	}
	r.session = s
	r.prev = s
	r.dash.SetRunning(true)
	r.wg.Add(1)
	go r.pump(s)
	return nil
}

// Running reports whether a session is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil
}

// Ended delivers the final snapshot of every session that ended on its own
// (completed or failed). Only the newest one is kept.
func (r *Runner) Ended() <-chan monitor.Snapshot {
	return r.ended
}

// Stop aborts any active session and waits for it to be torn down.
func (r *Runner) Stop() {
	r.mu.Lock()
	s := r.session
	r.session = nil
	r.mu.Unlock()
	if s != nil {
		s.Abort()
		r.dash.MarkAborted()
		r.dash.SetRunning(false)
	}
	r.wg.Wait()
}

func (r *Runner) pump(s *monitor.Session) {
	defer r.wg.Done()
	for snap := range s.Updates() {
		r.dash.Apply(snap)
	}
	<-s.Done()

	r.mu.Lock()
	natural := r.session == s
	if natural {
		r.session = nil
		r.dash.SetRunning(false)
	}
	r.mu.Unlock()
	if !natural {
		return
	}
	final := s.Latest()
	log.Debug().Str("op", "runner/pump").Str("session", s.ID.String()).Str("state", final.State.String()).Msg("Session ended")
	for {
		select {
		case r.ended <- final:
			return
		default:
		}
		select {
		case <-r.ended:
		default:
		}
	}
}

// RunOnce starts a single session and waits for it to end.
func (r *Runner) RunOnce(ctx context.Context) (monitor.Snapshot, error) {
	if err := r.Toggle(ctx); err != nil {
		return monitor.Snapshot{}, err
	}
	select {
	case final := <-r.ended:
		return final, nil
	case <-ctx.Done():
		r.mu.Lock()
		s := r.prev
		r.mu.Unlock()
		r.Stop()
		return s.Latest(), ctx.Err()
	}
}
