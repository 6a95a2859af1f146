// Package robot implements a hull painting robot steered by an Intcode
// program. For each panel the program is given the panel's colour and
// answers with a colour to paint and a direction to turn.
package robot

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/nf/intcode/intcode"
)

// Color is the colour of a hull panel.
type Color int64

const (
	Black Color = 0
	White Color = 1
)

// Direction is the way the robot faces.
type Direction int

// Directions in clockwise order.
const (
	Up Direction = iota
	Right
	Down
	Left
)

var arrows = [...]byte{Up: '^', Right: '>', Down: 'v', Left: '<'}

func (d Direction) String() string { return string(arrows[d&3]) }

// turn returns d rotated 90 degrees left (0) or right (1).
func (d Direction) turn(cmd int64) Direction {
	if cmd == 0 {
		return (d + 3) % 4
	}
	return (d + 1) % 4
}

var moves = [...]image.Point{
	Up:    {0, -1},
	Right: {1, 0},
	Down:  {0, 1},
	Left:  {-1, 0},
}

// ErrCommand is wrapped by errors reporting output the robot cannot obey.
var ErrCommand = errors.New("robot: invalid command")

// Robot moves over an infinite hull of black panels, starting at the origin
// and facing up. Y grows downwards.
type Robot struct {
	m       *intcode.Machine
	pos     image.Point
	dir     Direction
	hull    map[image.Point]Color
	painted map[image.Point]bool
}

// New returns a Robot running program whose starting panel has colour
// start.
func New(program []int64, start Color) *Robot {
	m := intcode.NewMachine(program)
	m.StopOnOutput = true
	r := &Robot{
		m:       m,
		hull:    map[image.Point]Color{},
		painted: map[image.Point]bool{},
	}
	if start != Black {
		r.hull[r.pos] = start
	}
	return r
}

func (r *Robot) Machine() *intcode.Machine { return r.m }
func (r *Robot) Pos() image.Point          { return r.pos }
func (r *Robot) Dir() Direction            { return r.dir }

// At returns the colour of the panel at p.
func (r *Robot) At(p image.Point) Color { return r.hull[p] }

// Painted returns the number of panels painted at least once.
// A starting colour set by New does not count as painting.
func (r *Robot) Painted() int { return len(r.painted) }

// Run runs the program until it halts. The machine stops after every
// output value; once a colour and a turn have been produced the robot
// paints its panel, turns and steps forward.
func (r *Robot) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		st, err := r.m.Run()
		if err != nil {
			return err
		}
		out := r.m.Output()
		switch st {
		case intcode.Halted:
			if n := out.Len(); n > 0 {
				return fmt.Errorf("%w: program halted with %d unpaired output value(s)", ErrCommand, n)
			}
			return nil
		case intcode.AwaitingInput:
			r.m.Input().Send(int64(r.hull[r.pos]))
		case intcode.Ready:
			if out.Len() < 2 {
				continue
			}
			v := out.Drain()
			if err := r.obey(v[0], v[1]); err != nil {
				return err
			}
		}
	}
}

func (r *Robot) obey(paint, turn int64) error {
	if paint != int64(Black) && paint != int64(White) {
		return fmt.Errorf("%w: paint %d at %v", ErrCommand, paint, r.pos)
	}
	if turn != 0 && turn != 1 {
		return fmt.Errorf("%w: turn %d at %v", ErrCommand, turn, r.pos)
	}
	r.hull[r.pos] = Color(paint)
	r.painted[r.pos] = true
	r.dir = r.dir.turn(turn)
	r.pos = r.pos.Add(moves[r.dir])
	return nil
}

// Bounds returns the smallest rectangle containing every panel whose colour
// is known.
func (r *Robot) Bounds() image.Rectangle {
	var b image.Rectangle
	for p := range r.hull {
		b = b.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	return b
}

// String renders the hull within Bounds, white panels as '#' and black
// ones as '.'.
func (r *Robot) String() string {
	var (
		b  strings.Builder
		bb = r.Bounds()
	)
	for y := bb.Min.Y; y < bb.Max.Y; y++ {
		for x := bb.Min.X; x < bb.Max.X; x++ {
			c := byte('.')
			if r.hull[image.Pt(x, y)] == White {
				c = '#'
			}
			b.WriteByte(c)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
