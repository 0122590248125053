package main

import (
	"fmt"
	"io"
	"sync"
)

// progressPrinter prints a fixed number of dots over a run, then a newline
type progressPrinter struct {
	mu      sync.Mutex
	w       io.Writer
	width   int
	printed int
}

func newProgressPrinter(w io.Writer, width int) *progressPrinter {
	return &progressPrinter{w: w, width: width}
}

// Update matches simulator.Config.Progress
func (p *progressPrinter) Update(done, total int) {
	if total <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	want := done * p.width / total
	for p.printed < want {
		fmt.Fprint(p.w, ".")
		p.printed++
	}
	if done == total && p.printed == p.width {
		fmt.Fprintln(p.w)
		p.printed++
	}
}
