package arcade

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Tile is the kind of object drawn at a screen position.
type Tile int64

const (
	Empty Tile = iota
	Wall
	Block
	Paddle
	Ball
)

func (t Tile) String() string {
	switch t {
	case Empty:
		return "empty"
	case Wall:
		return "wall"
	case Block:
		return "block"
	case Paddle:
		return "paddle"
	case Ball:
		return "ball"
	}
	return fmt.Sprintf("tile(%d)", int64(t))
}

// Screen is the arcade display. The program draws on it by producing
// triples of output values: x, y and a tile. The triple -1, 0, n sets the
// score to n instead.
type Screen struct {
	tiles   map[image.Point]Tile
	bounds  image.Rectangle
	score   int64
	ball    image.Point
	paddle  image.Point
	pending []int64
	ops     int // total count of draw operations
}

// Write draws the values produced by the program. Values that do not yet
// form a whole triple are kept until the next Write.
func (s *Screen) Write(vals ...int64) {
	s.pending = append(s.pending, vals...)
	n := len(s.pending) / 3 * 3
	for i := 0; i < n; i += 3 {
		s.put(s.pending[i], s.pending[i+1], s.pending[i+2])
	}
	s.pending = append(s.pending[:0], s.pending[n:]...)
}

func (s *Screen) put(x, y, v int64) {
	s.ops++
	if x == -1 && y == 0 {
		s.score = v
		return
	}
	if s.tiles == nil {
		s.tiles = map[image.Point]Tile{}
	}
	p, t := image.Pt(int(x), int(y)), Tile(v)
	s.tiles[p] = t
	s.bounds = s.bounds.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	switch t {
	case Ball:
		s.ball = p
	case Paddle:
		s.paddle = p
	}
}

func (s *Screen) Score() int64        { return s.score }
func (s *Screen) Ball() image.Point   { return s.ball }
func (s *Screen) Paddle() image.Point { return s.paddle }
func (s *Screen) Ops() int            { return s.ops }

// Bounds returns the smallest rectangle containing every drawn tile.
func (s *Screen) Bounds() image.Rectangle { return s.bounds }

// At returns the tile at p.
func (s *Screen) At(p image.Point) Tile { return s.tiles[p] }

// Count returns the number of positions showing tile t.
func (s *Screen) Count(t Tile) int {
	n := 0
	for _, v := range s.tiles {
		if v == t {
			n++
		}
	}
	return n
}

var tileRunes = map[Tile]byte{
	Empty:  ' ',
	Wall:   '#',
	Block:  '=',
	Paddle: '-',
	Ball:   'o',
}

func (s *Screen) String() string {
	var b strings.Builder
	for y := s.bounds.Min.Y; y < s.bounds.Max.Y; y++ {
		for x := s.bounds.Min.X; x < s.bounds.Max.X; x++ {
			r, ok := tileRunes[s.At(image.Pt(x, y))]
			if !ok {
				r = '?'
			}
			b.WriteByte(r)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

var palette = map[Tile]color.RGBA{
	Empty:  {0x10, 0x10, 0x18, 0xff},
	Wall:   {0x70, 0x70, 0x80, 0xff},
	Block:  {0x30, 0x90, 0xd0, 0xff},
	Paddle: {0xf0, 0xf0, 0xf0, 0xff},
	Ball:   {0xf0, 0xc0, 0x30, 0xff},
}

var scoreColor = color.RGBA{0xf0, 0xf0, 0xf0, 0xff}

// scoreHeight is the height in pixels of the score line below the tiles.
const scoreHeight = 16

// Image renders the screen with each tile drawn as a scale by scale square
// and the score written underneath.
func (s *Screen) Image(scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	b := s.bounds
	w, h := b.Dx()*scale, b.Dy()*scale
	if w < 8*basicfont.Face7x13.Advance {
		w = 8 * basicfont.Face7x13.Advance
	}
	m := image.NewRGBA(image.Rect(0, 0, w, h+scoreHeight))
	draw.Draw(m, m.Bounds(), image.NewUniform(palette[Empty]), image.Point{}, draw.Src)
	for p, t := range s.tiles {
		c, ok := palette[t]
		if !ok || t == Empty {
			continue
		}
		q := p.Sub(b.Min)
		r := image.Rectangle{Min: q.Mul(scale), Max: q.Add(image.Pt(1, 1)).Mul(scale)}
		draw.Draw(m, r, image.NewUniform(c), image.Point{}, draw.Src)
	}
	d := font.Drawer{
		Dst:  m,
		Src:  image.NewUniform(scoreColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(2, h+basicfont.Face7x13.Ascent+1),
	}
	d.DrawString(fmt.Sprintf("SCORE %d", s.score))
	return m
}
