package monitor

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionActive    = errors.New("a transfer session is already active")
	ErrUnexpectedStatus = errors.New("unexpected status code")
)

type State int

const (
	StateRunning State = iota
	StateCompleted
	StateAborted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Sample is one progress notification: cumulative bytes received and the
// expected total (-1 when the source did not report one).
type Sample struct {
	Loaded int64
	Total  int64
	At     time.Time
}

// Progress returns Loaded/Total clamped to [0,1]; 0 when the total is unknown.
func (s Sample) Progress() float64 {
	if s.Total <= 0 {
		return 0
	}
	p := float64(s.Loaded) / float64(s.Total)
	return max(0, min(p, 1))
}

// Snapshot is what a session emits after every processed sample and once more
// when it ends.
type Snapshot struct {
	SessionID uuid.UUID
	Loaded    int64
	Total     int64
	Progress  float64
	Rate      float64 // smoothed, bytes per second
	State     State
	Err       error
}

// Mbps converts the smoothed rate to megabits per second.
func (s Snapshot) Mbps() float64 {
	return s.Rate * 8 / 1_000_000
}

func (s Snapshot) Terminal() bool {
	return s.State != StateRunning
}
