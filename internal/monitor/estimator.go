package monitor

import "time"

// smoothingDivisor is the inverse EWMA weight: each update moves the estimate
// 1/8 of the way toward the newest instantaneous rate.
const smoothingDivisor = 8

// Estimator derives a smoothed bytes/s rate from cumulative byte counts.
// The first sample is measured against the session start, later ones against
// the previous accepted sample. All timestamps come from one clock.
type Estimator struct {
	start      time.Time
	lastAt     time.Time
	lastLoaded int64
	rate       float64
	seeded     bool
}

func NewEstimator(start time.Time) *Estimator {
	return &Estimator{start: start}
}

// Observe folds s into the estimate and reports whether it changed. Samples
// with no elapsed time since the previous accepted one are not folded in;
// their bytes are carried into the next sample instead.
func (e *Estimator) Observe(s Sample) (float64, bool) {
	prevAt := e.start
	if e.seeded {
		prevAt = e.lastAt
	}
	elapsed := s.At.Sub(prevAt)
	if elapsed <= 0 {
		return e.rate, false
	}
	delta := s.Loaded - e.lastLoaded
	ms := float64(elapsed) / float64(time.Millisecond)
	instant := float64(delta) * (1000 / ms)

	if !e.seeded {
		e.rate = instant
		e.seeded = true
	} else {
		e.rate += (instant - e.rate) / smoothingDivisor
	}
	e.lastAt = s.At
	e.lastLoaded = s.Loaded
	return e.rate, true
}

// Rate is the current smoothed estimate; ok is false until the first sample
// has been folded in.
func (e *Estimator) Rate() (rate float64, ok bool) {
	return e.rate, e.seeded
}
