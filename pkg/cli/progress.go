package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

const barWidth = 40

// ProgressReporter reports progress for long-running operations.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

// SimpleProgress is a single-line text progress bar.
//
// It also satisfies the reconciler's Recorder interface: each recorded
// store operation advances the bar and a finished run closes it.
type SimpleProgress struct {
	mu      sync.Mutex
	total   int64
	current int64
	failed  int64
	started time.Time
	writer  io.Writer
	done    bool
}

// NewProgressReporter creates a new progress reporter that writes to w.
// If w is nil, it defaults to os.Stderr so piped output stays clean.
func NewProgressReporter(w io.Writer) *SimpleProgress {
	if w == nil {
		w = os.Stderr
	}
	return &SimpleProgress{
		writer: w,
	}
}

// Start initializes the progress reporter with the total number of items.
func (p *SimpleProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.failed = 0
	p.done = false
	p.started = time.Now()

	p.render()
}

// Update sets the current progress.
func (p *SimpleProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.render()
}

// Finish draws the final state and ends the line. Calls after the first
// are ignored.
func (p *SimpleProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return
	}
	p.done = true
	if p.total == 0 {
		return
	}
	p.render()
	fmt.Fprintln(p.writer)
}

// Error reports an error during progress.
func (p *SimpleProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "\n✗ Error: %v\n", err)
}

// RecordOperation advances the bar by one store operation.
func (p *SimpleProgress) RecordOperation(op, result string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current++
	if result != "success" {
		p.failed++
	}
	p.render()
}

// ObserveReconcile finishes the bar when the run completes.
func (p *SimpleProgress) ObserveReconcile(mode, result string, d time.Duration) {
	p.Finish()
}

func (p *SimpleProgress) render() {
	if p.total == 0 {
		return
	}

	// A failed first step skips its follow-up, so current may stop short.
	current := min(p.current, p.total)
	percent := float64(current) / float64(p.total) * 100
	filled := int(float64(barWidth) * percent / 100)

	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	fmt.Fprintf(p.writer, "\rApplying: [%s] %.1f%% (%d/%d)", bar, percent, current, p.total)
	if p.failed > 0 {
		fmt.Fprintf(p.writer, " %d failed", p.failed)
	}
}
