package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nf/intcode/intcode"
)

var errNoSignal = errors.New("amplifiers produced no signal")

func runAmplifiers(w io.Writer, file, phases string, loop, search bool) error {
	prog, err := intcode.ReadFile(file)
	if err != nil {
		return err
	}
	ph, err := parseValues(phases)
	if err != nil {
		return fmt.Errorf("-phases: %v", err)
	}
	if len(ph) == 0 {
		return fmt.Errorf("-phases: no settings")
	}
	if search {
		best, order, err := searchPhases(prog, ph, loop)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d %s\n", best, joinValues(order))
		return nil
	}
	sig, err := amplify(prog, ph, loop)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, sig)
	return nil
}

// amplify runs one copy of prog per phase setting, each copy first reading
// its phase and then the previous copy's output. The first copy is given
// the signal 0. If loop is set the last copy feeds the first.
func amplify(prog, phases []int64, loop bool) (int64, error) {
	ms := make([]*intcode.Machine, len(phases))
	for i, ph := range phases {
		ms[i] = intcode.NewMachine(prog)
		ms[i].Input().Send(ph)
	}
	var p *intcode.Pipeline
	if loop {
		p = intcode.Loop(ms...)
	} else {
		p = intcode.Chain(ms...)
	}
	p.Input().Send(0)
	if err := p.Run(context.Background()); err != nil {
		return 0, fmt.Errorf("phases %s: %w", joinValues(phases), err)
	}
	out := p.Output().Drain()
	if len(out) == 0 {
		return 0, fmt.Errorf("phases %s: %w", joinValues(phases), errNoSignal)
	}
	return out[len(out)-1], nil
}

// searchPhases tries every ordering of phases and returns the largest
// signal along with the ordering that produced it.
func searchPhases(prog, phases []int64, loop bool) (best int64, order []int64, err error) {
	err = permute(append([]int64(nil), phases...), func(p []int64) error {
		sig, err := amplify(prog, p, loop)
		if err != nil {
			return err
		}
		if order == nil || sig > best {
			best, order = sig, append(order[:0], p...)
		}
		return nil
	})
	return
}

// permute calls fn with each permutation of a, generated in place with
// Heap's algorithm. It stops at the first error.
func permute(a []int64, fn func([]int64) error) error {
	c := make([]int, len(a))
	if err := fn(a); err != nil {
		return err
	}
	for i := 0; i < len(a); {
		if c[i] >= i {
			c[i] = 0
			i++
			continue
		}
		if i%2 == 0 {
			a[0], a[i] = a[i], a[0]
		} else {
			a[c[i]], a[i] = a[i], a[c[i]]
		}
		if err := fn(a); err != nil {
			return err
		}
		c[i]++
		i = 0
	}
	return nil
}

func joinValues(vs []int64) string {
	s := make([]string, len(vs))
	for i, v := range vs {
		s[i] = fmt.Sprint(v)
	}
	return strings.Join(s, ",")
}
