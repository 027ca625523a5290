package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/tanq16/speedtest/internal/monitor"
	"github.com/tanq16/speedtest/internal/utils"
)

// Dashboard is the terminal surface: a Run/Abort toggle, the progress
// percentage and the smoothed speed. It only mirrors what the monitor emits.
type Dashboard struct {
	mutex       sync.RWMutex
	out         io.Writer
	target      string
	running     bool
	progress    float64
	rate        float64
	loaded      int64
	total       int64
	state       string
	lastErr     error
	startTime   time.Time
	endTime     time.Time
	numLines    int
	doneCh      chan struct{}
	displayTick time.Duration
	displayWg   sync.WaitGroup
	stopOnce    sync.Once
}

func NewDashboard(out io.Writer, target string, tick time.Duration) *Dashboard {
	if tick <= 0 {
		tick = 100 * time.Millisecond
	}
	return &Dashboard{
		out:         out,
		target:      target,
		state:       "idle",
		total:       -1,
		doneCh:      make(chan struct{}),
		displayTick: tick,
	}
}

// SetRunning flips the toggle. Starting a new run clears the previous error.
func (d *Dashboard) SetRunning(running bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if running && !d.running {
		d.lastErr = nil
		d.state = "running"
		d.startTime = time.Now()
		d.endTime = time.Time{}
	}
	if !running && d.running {
		d.endTime = time.Now()
	}
	d.running = running
}

func (d *Dashboard) Running() bool {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.running
}

// Apply takes one snapshot from the monitor. Terminal snapshots record the
// outcome but leave progress and speed at their last values.
func (d *Dashboard) Apply(snap monitor.Snapshot) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.progress = snap.Progress
	d.rate = snap.Rate
	d.loaded = snap.Loaded
	d.total = snap.Total
	d.state = snap.State.String()
	if snap.Err != nil {
		d.lastErr = snap.Err
	}
}

// MarkAborted records a user abort; aborted sessions emit nothing further.
func (d *Dashboard) MarkAborted() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.state = monitor.StateAborted.String()
}

// Values returns the three observed values: running flag, progress, rate.
func (d *Dashboard) Values() (bool, float64, float64) {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.running, d.progress, d.rate
}

func (d *Dashboard) Err() error {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	return d.lastErr
}

func (d *Dashboard) GetStatusIndicator(state string) string {
	switch state {
	case "completed":
		return successStyle.Render(StyleSymbols["pass"])
	case "failed":
		return errorStyle.Render(StyleSymbols["fail"])
	case "aborted":
		return warningStyle.Render(StyleSymbols["warning"])
	case "running":
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["bullet"])
	}
}

// Render returns the dashboard lines without line terminators.
func (d *Dashboard) Render() []string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	indent := strings.Repeat(" ", 2)

	lines := []string{
		fmt.Sprintf("%s%s %s", indent, headerStyle.Render("speedtest"), streamStyle.Render(d.target)),
		fmt.Sprintf("%s%s %s", indent, buttonStyle.Render(ButtonLabel(d.running)), streamStyle.Render("space/enter toggle · q quit")),
	}

	barWidth := min(30, max(10, getTerminalWidth()-40))
	sizeText := utils.FormatBytes(uint64(max(d.loaded, 0)))
	if d.total >= 0 {
		sizeText += " of " + utils.FormatBytes(uint64(d.total))
	}
	lines = append(lines,
		fmt.Sprintf("%s%s %s %s %s", indent, PrintProgressBar(d.progress, barWidth), infoStyle.Render(FormatPercent(d.progress)), StyleSymbols["bullet"], debugStyle.Render(sizeText)),
		fmt.Sprintf("%s%s %s %s", indent, d.GetStatusIndicator(d.state), successStyle.Render(FormatMbps(d.rate)), debugStyle.Render(d.elapsed().String())),
	)
	if d.lastErr != nil {
		lines = append(lines, fmt.Sprintf("%s%s", indent, errorStyle.Render(fmt.Sprintf("Error: %v", d.lastErr))))
	}
	return lines
}

func (d *Dashboard) elapsed() time.Duration {
	if d.startTime.IsZero() {
		return 0
	}
	if !d.endTime.IsZero() {
		return d.endTime.Sub(d.startTime).Round(100 * time.Millisecond)
	}
	return time.Since(d.startTime).Round(100 * time.Millisecond)
}

func (d *Dashboard) updateDisplay() {
	lines := d.Render()
	var b strings.Builder
	if d.numLines > 0 {
		fmt.Fprintf(&b, "\033[%dA\033[J", d.numLines)
	}
	for _, line := range lines {
		b.WriteString(line)
		b.WriteString(lineEnd)
	}
	io.WriteString(d.out, b.String())
	d.numLines = len(lines)
}

func (d *Dashboard) StartDisplay() {
	d.displayWg.Add(1)
	go func() {
		defer d.displayWg.Done()
		ticker := time.NewTicker(d.displayTick)
		defer ticker.Stop()
		d.updateDisplay()
		for {
			select {
			case <-ticker.C:
				d.updateDisplay()
			case <-d.doneCh:
				d.updateDisplay()
				return
			}
		}
	}()
}

// StopDisplay draws a final frame and stops the refresh loop.
func (d *Dashboard) StopDisplay() {
	d.stopOnce.Do(func() { close(d.doneCh) })
	d.displayWg.Wait()
}

// Summary is the one-line result printed after a non-interactive run.
func (d *Dashboard) Summary() string {
	d.mutex.RLock()
	defer d.mutex.RUnlock()
	line := fmt.Sprintf("%s %s in %s at %s", d.state, FormatPercent(d.progress), d.elapsed(), FormatMbps(d.rate))
	switch d.state {
	case "completed":
		return successStyle.Render(line)
	case "failed":
		return errorStyle.Render(fmt.Sprintf("%s (%v)", line, d.lastErr))
	default:
		return warningStyle.Render(line)
	}
}
