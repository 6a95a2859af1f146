package intcode

import (
	"fmt"
	"strings"
)

// Channel is an unbounded FIFO queue of values connecting a machine's input
// or output to a driver or to another machine.
//
// A Channel shared by two machines has exactly one producer and one
// consumer. It is not safe for concurrent use.
type Channel struct {
	vals []int64
	head int
}

// NewChannel returns a Channel holding the given values.
func NewChannel(vals ...int64) *Channel {
	c := &Channel{}
	c.Send(vals...)
	return c
}

// Send appends values to the back of the channel.
func (c *Channel) Send(vals ...int64) {
	c.vals = append(c.vals, vals...)
}

// Recv removes and returns the value at the front of the channel.
// It reports false if the channel is empty.
func (c *Channel) Recv() (int64, bool) {
	if c.head == len(c.vals) {
		return 0, false
	}
	v := c.vals[c.head]
	c.head++
	if c.head == len(c.vals) {
		c.vals, c.head = c.vals[:0], 0
	}
	return v, true
}

// Len returns the number of values waiting in the channel.
func (c *Channel) Len() int { return len(c.vals) - c.head }

// Drain removes and returns every value waiting in the channel.
func (c *Channel) Drain() []int64 {
	if c.Len() == 0 {
		return nil
	}
	vals := make([]int64, c.Len())
	copy(vals, c.vals[c.head:])
	c.vals, c.head = c.vals[:0], 0
	return vals
}

func (c *Channel) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range c.vals[c.head:] {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", v)
	}
	b.WriteByte(']')
	return b.String()
}
