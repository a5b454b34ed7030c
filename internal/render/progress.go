package render

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Progress shows a spinner with a done counter while a fan-out runs. When
// disabled (non-terminal stderr) every method is a no-op.
type Progress struct {
	spinner *spinner.Spinner
	total   int
	done    int
	failed  int
}

// NewProgress creates a progress indicator for total calls writing to w.
func NewProgress(w io.Writer, total int, enabled bool) *Progress {
	p := &Progress{total: total}
	if !enabled {
		return p
	}
	p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	p.spinner.Writer = w
	p.spinner.Suffix = p.suffix()
	_ = p.spinner.Color("blue", "bold")
	return p
}

// Start starts the spinner.
func (p *Progress) Start() {
	if p.spinner != nil {
		p.spinner.Start()
	}
}

// Stop stops the spinner and clears its line.
func (p *Progress) Stop() {
	if p.spinner != nil {
		p.spinner.Stop()
	}
}

// Done records one finished call. Callers serialize calls to Done.
func (p *Progress) Done(alias string, ok bool) {
	p.done++
	if !ok {
		p.failed++
	}
	if p.spinner == nil {
		return
	}
	p.spinner.Lock()
	p.spinner.Suffix = p.suffix() + " " + StatusIcon(ok) + " " + alias
	p.spinner.Unlock()
}

// Counts returns finished and failed calls so far.
func (p *Progress) Counts() (done, failed int) {
	return p.done, p.failed
}

func (p *Progress) suffix() string {
	return fmt.Sprintf(" %d/%d models answered", p.done, p.total)
}
