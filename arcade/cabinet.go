// Package arcade implements an arcade cabinet driven by an Intcode program:
// a tile screen fed by the program's output and a joystick feeding its input.
package arcade

import (
	"context"

	"github.com/nf/intcode/intcode"
)

// Joystick positions.
const (
	Left    int64 = -1
	Neutral int64 = 0
	Right   int64 = 1
)

// Autopilot is a joystick that keeps the paddle under the ball.
func Autopilot(s *Screen) int64 {
	switch b, p := s.Ball(), s.Paddle(); {
	case b.X < p.X:
		return Left
	case b.X > p.X:
		return Right
	}
	return Neutral
}

// Cabinet connects a machine to a Screen and a joystick.
type Cabinet struct {
	// Joystick is consulted whenever the program waits for input.
	// If nil, Autopilot is used.
	Joystick func(*Screen) int64

	// Frame, if non-nil, is called each time the program waits for input,
	// after the screen has been updated.
	Frame func(*Screen)

	m   *intcode.Machine
	scr Screen
}

// New returns a Cabinet running program. If freePlay is set the program is
// patched to start without coins, by writing 2 at address 0.
func New(program []int64, freePlay bool) *Cabinet {
	if freePlay {
		program = intcode.Patch(program, 0, 2)
	}
	return &Cabinet{m: intcode.NewMachine(program)}
}

func (c *Cabinet) Machine() *intcode.Machine { return c.m }
func (c *Cabinet) Screen() *Screen            { return &c.scr }

// Play runs the program until it halts, drawing its output on the screen
// and answering each request for input with the joystick position.
func (c *Cabinet) Play(ctx context.Context) error {
	joy := c.Joystick
	if joy == nil {
		joy = Autopilot
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		st, err := c.m.Run()
		c.scr.Write(c.m.DrainOutput()...)
		if err != nil {
			return err
		}
		switch st {
		case intcode.Halted:
			return nil
		case intcode.AwaitingInput:
			if c.Frame != nil {
				c.Frame(&c.scr)
			}
			c.m.Input().Send(joy(&c.scr))
		}
	}
}
