package runner

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	phaseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	elapsedStyle = lipgloss.NewStyle().Faint(true)
)

// Progress renders a single self-overwriting status line while a run is in
// flight, refreshed once per second. Safe for use from multiple goroutines.
type Progress struct {
	out      io.Writer
	interval time.Duration

	mu      sync.Mutex
	phase   string
	start   time.Time
	started bool

	done     chan struct{}
	finished chan struct{}
	stop     sync.Once
}

// NewProgress creates a progress line writing to out. Pass io.Discard to
// silence it.
func NewProgress(out io.Writer) *Progress {
	return &Progress{
		out:      out,
		interval: time.Second,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Start begins rendering. Call Stop exactly once when the run ends; extra
// Stop calls are no-ops.
func (p *Progress) Start() {
	p.mu.Lock()
	p.start = time.Now()
	p.started = true
	p.mu.Unlock()
	go p.loop()
}

func (p *Progress) loop() {
	defer close(p.finished)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.render()
		case <-p.done:
			// Clear the status line before handing the terminal back.
			fmt.Fprint(p.out, "\r\x1b[2K")
			return
		}
	}
}

func (p *Progress) render() {
	p.mu.Lock()
	phase := p.phase
	elapsed := time.Since(p.start).Round(time.Second)
	p.mu.Unlock()

	fmt.Fprintf(p.out, "\r\x1b[2K%s %s",
		phaseStyle.Render(phase),
		elapsedStyle.Render(elapsed.String()))
}

// SetPhase updates the rendered phase label.
func (p *Progress) SetPhase(phase string) {
	p.mu.Lock()
	p.phase = phase
	p.mu.Unlock()
}

// Stop halts rendering and clears the line. Idempotent, and safe to call
// even if Start never ran.
func (p *Progress) Stop() {
	p.stop.Do(func() {
		p.mu.Lock()
		started := p.started
		p.mu.Unlock()

		close(p.done)
		if started {
			<-p.finished
		}
	})
}
