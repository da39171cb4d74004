package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/muesli/reflow/truncate"

	"github.com/dgnsrekt/navvoice/internal/route"
)

const maxInstructionWidth = 60

// eventPrinter prints instruction progress and tracks outstanding
// utterances so commands can wait for playback to settle.
type eventPrinter struct {
	w io.Writer

	mu      sync.Mutex
	pending []string
	idle    chan struct{}
}

func newEventPrinter(w io.Writer) *eventPrinter {
	p := &eventPrinter{w: w, idle: make(chan struct{})}
	close(p.idle)
	return p
}

// Queued records an instruction that was handed to the player.
func (p *eventPrinter) Queued(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pending) == 0 {
		p.idle = make(chan struct{})
	}
	p.pending = append(p.pending, text)
}

// Idle is closed once every queued instruction has finished.
func (p *eventPrinter) Idle() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idle
}

// Step prints a route step as it is applied.
func (p *eventPrinter) Step(step route.Step) {
	label := step.Action.String()
	switch step.Action {
	case route.ActionSay:
		label += " " + shorten(step.Text)
	case route.ActionWait:
		label += " " + step.Wait.String()
	}
	p.printf("%s %s\n", stepStyle.Render(fmt.Sprintf("%4d", step.Line)), stepStyle.Render(label))
}

// OnStart implements voice.InstructionListener.
func (p *eventPrinter) OnStart() {
	p.mu.Lock()
	current := ""
	if len(p.pending) > 0 {
		current = p.pending[0]
	}
	p.mu.Unlock()

	p.printf("%s %s\n", startStyle.Render("▶ speaking"), shorten(current))
}

// OnDone implements voice.InstructionListener.
func (p *eventPrinter) OnDone() {
	p.printf("%s %s\n", doneStyle.Render("✓ done"), shorten(p.pop(false)))
}

// OnError implements voice.InstructionListener. An interruption drops every
// queued instruction, since the engine flushes its queue.
func (p *eventPrinter) OnError(interrupted bool) {
	if interrupted {
		p.printf("%s %s\n", errorStyle.Render("■ interrupted"), shorten(p.pop(true)))
		return
	}
	p.printf("%s %s\n", errorStyle.Render("✗ error"), shorten(p.pop(false)))
}

func (p *eventPrinter) pop(all bool) string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pending) == 0 {
		return ""
	}
	text := p.pending[0]
	if all {
		p.pending = nil
	} else {
		p.pending = p.pending[1:]
	}
	if len(p.pending) == 0 {
		close(p.idle)
	}
	return text
}

// Flush forgets queued instructions that will never report back.
func (p *eventPrinter) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pending) == 0 {
		return
	}
	p.pending = nil
	close(p.idle)
}

func (p *eventPrinter) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.w, format, args...)
}

func shorten(text string) string {
	return truncate.StringWithTail(text, maxInstructionWidth, "…")
}
