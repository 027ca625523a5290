package monitor

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock advances by the next step on every call, then stands still.
type stepClock struct {
	mu    sync.Mutex
	t     time.Time
	steps []time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.steps) > 0 {
		c.t = c.t.Add(c.steps[0])
		c.steps = c.steps[1:]
	}
	return c.t
}

// scriptedReader returns one chunk per Read, then tail.
type scriptedReader struct {
	ctx    context.Context
	chunks []int
	tail   error // nil blocks until ctx is done
	closed bool
}

func (r *scriptedReader) Read(p []byte) (int, error) {
	if len(r.chunks) > 0 {
		n := min(r.chunks[0], len(p))
		r.chunks = r.chunks[1:]
		return n, nil
	}
	if r.tail == nil {
		<-r.ctx.Done()
		return 0, r.ctx.Err()
	}
	return 0, r.tail
}

func (r *scriptedReader) Close() error {
	r.closed = true
	return nil
}

type fakeSource struct {
	mu      sync.Mutex
	chunks  []int
	tail    error
	total   int64
	openErr error
	reader  *scriptedReader
}

func (f *fakeSource) Open(ctx context.Context) (io.ReadCloser, int64, error) {
	if f.openErr != nil {
		return nil, 0, f.openErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reader = &scriptedReader{ctx: ctx, chunks: append([]int(nil), f.chunks...), tail: f.tail}
	return f.reader, f.total, nil
}

func (f *fakeSource) String() string { return "fake" }

func newTestMonitor(steps ...time.Duration) *Monitor {
	clock := &stepClock{t: epoch, steps: steps}
	return New(WithClock(clock.Now), WithSampleInterval(0), WithBufferSize(1<<20))
}

func collect(t *testing.T, s *Session) []Snapshot {
	t.Helper()
	var got []Snapshot
	timeout := time.After(5 * time.Second)
	for {
		select {
		case snap, ok := <-s.Updates():
			if !ok {
				return got
			}
			got = append(got, snap)
		case <-timeout:
			t.Fatal("timeout waiting for session updates")
		}
	}
}

func TestSessionEmitsSmoothedSnapshots(t *testing.T) {
	m := newTestMonitor(0, time.Second, time.Second, time.Second)
	src := &fakeSource{chunks: []int{100_000, 200_000}, tail: io.EOF, total: 1_000_000}

	s, err := m.Start(context.Background(), src)
	require.NoError(t, err)
	got := collect(t, s)

	require.Len(t, got, 3)
	assert.Equal(t, StateRunning, got[0].State)
	assert.Equal(t, int64(100_000), got[0].Loaded)
	assert.Equal(t, 0.1, got[0].Progress)
	assert.Equal(t, float64(100_000), got[0].Rate)

	assert.Equal(t, 0.3, got[1].Progress)
	assert.Equal(t, float64(112_500), got[1].Rate)

	final := got[2]
	assert.Equal(t, StateCompleted, final.State)
	assert.True(t, final.Terminal())
	assert.NoError(t, final.Err)
	assert.Equal(t, got[1].Progress, final.Progress)
	assert.Equal(t, got[1].Rate, final.Rate)

	<-s.Done()
	assert.Equal(t, StateCompleted, s.State())
	assert.True(t, src.reader.closed)
	assert.Nil(t, m.Active())
}

func TestSessionProgressWithinBounds(t *testing.T) {
	m := newTestMonitor(0, 10*time.Millisecond, 10*time.Millisecond, 10*time.Millisecond, 10*time.Millisecond, 10*time.Millisecond)
	src := &fakeSource{chunks: []int{1, 500, 20, 479}, tail: io.EOF, total: 1_000}

	s, err := m.Start(context.Background(), src)
	require.NoError(t, err)

	var loaded int64
	for _, snap := range collect(t, s) {
		if snap.State == StateRunning {
			loaded = snap.Loaded
		}
		assert.GreaterOrEqual(t, snap.Progress, 0.0)
		assert.LessOrEqual(t, snap.Progress, 1.0)
		assert.Equal(t, float64(snap.Loaded)/float64(snap.Total), snap.Progress)
	}
	assert.Equal(t, int64(1_000), loaded)
}

func TestSessionAbortStopsEmission(t *testing.T) {
	m := newTestMonitor(0, time.Second)
	src := &fakeSource{chunks: []int{1_000}, total: 10_000}

	s, err := m.Start(context.Background(), src)
	require.NoError(t, err)

	first := <-s.Updates()
	assert.Equal(t, 0.1, first.Progress)

	s.Abort()
	s.Abort()
	rest := collect(t, s)
	assert.Empty(t, rest)

	<-s.Done()
	assert.Equal(t, StateAborted, s.State())
	assert.Equal(t, first.Rate, s.Latest().Rate)
	assert.Nil(t, m.Active())
}

func TestSessionAbortAfterCompletionIsNoop(t *testing.T) {
	m := newTestMonitor(0, time.Second, time.Second)
	src := &fakeSource{chunks: []int{500}, tail: io.EOF, total: 500}

	s, err := m.Start(context.Background(), src)
	require.NoError(t, err)
	collect(t, s)
	<-s.Done()

	before := s.Latest()
	assert.NotPanics(t, func() {
		s.Abort()
		s.Abort()
	})
	assert.Equal(t, before, s.Latest())
	assert.Equal(t, StateCompleted, s.State())
}

func TestSessionReadFailure(t *testing.T) {
	m := newTestMonitor(0, time.Second, time.Second)
	boom := errors.New("connection reset by peer")
	src := &fakeSource{chunks: []int{2_000}, tail: boom, total: 8_000}

	s, err := m.Start(context.Background(), src)
	require.NoError(t, err)
	got := collect(t, s)

	require.Len(t, got, 2)
	final := got[1]
	assert.Equal(t, StateFailed, final.State)
	assert.ErrorIs(t, final.Err, boom)
	assert.Equal(t, 0.25, final.Progress)
	assert.Equal(t, got[0].Rate, final.Rate)
}

func TestSessionOpenFailure(t *testing.T) {
	m := newTestMonitor()
	src := &fakeSource{openErr: ErrUnexpectedStatus}

	s, err := m.Start(context.Background(), src)
	require.NoError(t, err)
	got := collect(t, s)

	require.Len(t, got, 1)
	assert.Equal(t, StateFailed, got[0].State)
	assert.ErrorIs(t, got[0].Err, ErrUnexpectedStatus)
	assert.Zero(t, got[0].Progress)
}

func TestSessionParentCancelAborts(t *testing.T) {
	m := newTestMonitor(0, time.Second)
	src := &fakeSource{chunks: []int{10}, total: 100}
	ctx, cancel := context.WithCancel(context.Background())

	s, err := m.Start(ctx, src)
	require.NoError(t, err)
	<-s.Updates()
	cancel()

	assert.Empty(t, collect(t, s))
	assert.Equal(t, StateAborted, s.State())
}

func TestMonitorSingleSession(t *testing.T) {
	m := newTestMonitor(0, time.Second)
	src := &fakeSource{chunks: []int{10}, total: 100}

	s, err := m.Start(context.Background(), src)
	require.NoError(t, err)
	assert.Same(t, s, m.Active())

	_, err = m.Start(context.Background(), src)
	require.ErrorIs(t, err, ErrSessionActive)

	s.Abort()
	<-s.Done()

	next, err := m.Start(context.Background(), &fakeSource{tail: io.EOF, total: 0})
	require.NoError(t, err)
	collect(t, next)
	assert.Equal(t, StateCompleted, next.State())
}

func TestSessionSampleInterval(t *testing.T) {
	clock := &stepClock{t: epoch, steps: []time.Duration{0, 10 * time.Millisecond, 10 * time.Millisecond, 30 * time.Millisecond, 10 * time.Millisecond}}
	m := New(WithClock(clock.Now), WithSampleInterval(50*time.Millisecond), WithBufferSize(1<<20))
	src := &fakeSource{chunks: []int{100, 100, 100, 100}, tail: io.EOF, total: 400}

	s, err := m.Start(context.Background(), src)
	require.NoError(t, err)
	got := collect(t, s)

	// one sample at the 50ms mark, one flushed at EOF, then the terminal
	require.Len(t, got, 3)
	assert.Equal(t, int64(300), got[0].Loaded)
	assert.Equal(t, float64(6_000), got[0].Rate)
	assert.Equal(t, int64(400), got[1].Loaded)
	assert.Equal(t, StateCompleted, got[2].State)
	assert.Equal(t, 1.0, got[2].Progress)
}
