package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nf/intcode/intcode"
)

var errInputClosed = errors.New("console: input closed while the program waits for input")

// console connects a machine to a terminal. Output values in the ASCII
// range are written as characters, others as decimal lines, and each
// request for input is answered with a line read from in.
type console struct {
	in  *bufio.Reader
	out io.Writer
}

func newConsole(r io.Reader, w io.Writer) *console {
	return &console{in: bufio.NewReader(r), out: w}
}

func (c *console) run(m *intcode.Machine) error {
	for {
		st, err := m.Run()
		c.write(m.DrainOutput())
		if err != nil {
			return err
		}
		switch st {
		case intcode.Halted:
			return nil
		case intcode.AwaitingInput:
			line, err := c.in.ReadString('\n')
			if line == "" {
				if err == io.EOF {
					return errInputClosed
				}
				return err
			}
			if !strings.HasSuffix(line, "\n") {
				line += "\n"
			}
			for _, b := range []byte(line) {
				m.Input().Send(int64(b))
			}
		}
	}
}

func (c *console) write(vals []int64) {
	for _, v := range vals {
		if v >= 0 && v < 0x80 {
			c.out.Write([]byte{byte(v)})
		} else {
			fmt.Fprintf(c.out, "%d\n", v)
		}
	}
}
