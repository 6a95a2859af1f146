package intcode

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrDeadlock is returned by Pipeline.Run when every machine that has
	// not halted is waiting for input that no machine can produce.
	ErrDeadlock = errors.New("pipeline deadlock")

	// ErrRoundLimit is returned by Pipeline.Run when MaxRounds is exceeded.
	ErrRoundLimit = errors.New("pipeline round limit exceeded")
)

// Pipeline is a set of machines connected by shared channels, where each
// channel has exactly one producing and one consuming machine.
type Pipeline struct {
	Machines []*Machine

	// MaxRounds bounds the number of scheduling rounds performed by Run.
	// Zero means no limit.
	MaxRounds int
}

// Chain connects the output of each machine to the input of the next and
// returns the resulting Pipeline.
func Chain(ms ...*Machine) *Pipeline {
	for i := 1; i < len(ms); i++ {
		Connect(ms[i-1], ms[i])
	}
	return &Pipeline{Machines: ms}
}

// Loop is like Chain but also connects the output of the last machine to
// the input of the first, forming a feedback loop.
func Loop(ms ...*Machine) *Pipeline {
	p := Chain(ms...)
	if len(ms) > 0 {
		Connect(ms[len(ms)-1], ms[0])
	}
	return p
}

// Connect makes the output channel of from the input channel of to.
// Values already waiting on to's input are carried over. If from has no
// output channel a new one is created.
func Connect(from, to *Machine) {
	c := from.Output()
	if c == nil {
		c = NewChannel()
		from.SetOutput(c)
	}
	if old := to.Input(); old != nil && old != c {
		c.Send(old.Drain()...)
	}
	to.SetInput(c)
}

// Input returns the input channel of the first machine, or nil if the
// pipeline has no machines.
func (p *Pipeline) Input() *Channel {
	if len(p.Machines) == 0 {
		return nil
	}
	return p.Machines[0].Input()
}

// Output returns the output channel of the last machine, or nil if the
// pipeline has no machines.
func (p *Pipeline) Output() *Channel {
	if len(p.Machines) == 0 {
		return nil
	}
	return p.Machines[len(p.Machines)-1].Output()
}

// Halted reports whether every machine in the pipeline has halted.
func (p *Pipeline) Halted() bool {
	for _, m := range p.Machines {
		if m.Status() != Halted {
			return false
		}
	}
	return true
}

// Run invokes Run on each machine in turn until all of them have halted.
// It returns the first machine fault, ErrDeadlock if a whole round passes
// without any machine executing an instruction, ErrRoundLimit if MaxRounds
// is exceeded, or the context's error if ctx is done.
func (p *Pipeline) Run(ctx context.Context) error {
	for round := 1; !p.Halted(); round++ {
		if p.MaxRounds > 0 && round > p.MaxRounds {
			return ErrRoundLimit
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		progress := false
		for i, m := range p.Machines {
			before := m.Steps()
			if _, err := m.Run(); err != nil {
				return fmt.Errorf("machine %d: %w", i, err)
			}
			if m.Steps() != before {
				progress = true
			}
		}
		if !progress && !p.Halted() {
			return ErrDeadlock
		}
	}
	return nil
}
