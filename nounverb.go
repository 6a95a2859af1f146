package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/nf/intcode/intcode"
)

var errNoNounVerb = errors.New("no noun and verb produce the target")

// findNounVerb runs prog once for each noun and verb from 0 to 99, patched
// into addresses 1 and 2, and returns the first pair that leaves target at
// address 0. Runs that fault or wait for input are skipped.
func findNounVerb(prog []int64, target int64) (noun, verb int64, err error) {
	for noun = 0; noun < 100; noun++ {
		for verb = 0; verb < 100; verb++ {
			m := intcode.NewMachine(intcode.Patch(prog, 1, noun, verb))
			if st, err := m.Run(); err != nil || st != intcode.Halted {
				continue
			}
			if m.Peek(0) == target {
				return noun, verb, nil
			}
		}
	}
	return 0, 0, fmt.Errorf("%w %d", errNoNounVerb, target)
}

func runNounVerb(w io.Writer, file string, target int64) error {
	prog, err := intcode.ReadFile(file)
	if err != nil {
		return err
	}
	noun, verb, err := findNounVerb(prog, target)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, 100*noun+verb)
	return nil
}
