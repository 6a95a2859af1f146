package intcode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMalformedProgram is wrapped by every ParseError.
var ErrMalformedProgram = errors.New("malformed program")

// ParseError reports a token of a program listing that is not a decimal
// integer.
type ParseError struct {
	Index int // position of the token in the listing
	Token string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%v: token %d is %q", ErrMalformedProgram, e.Index, e.Token)
}

func (e ParseError) Unwrap() error { return ErrMalformedProgram }

// ParseString parses a comma-separated list of signed decimal integers.
// Space around each token is ignored.
func ParseString(s string) ([]int64, error) {
	toks := strings.Split(strings.TrimSpace(s), ",")
	prog := make([]int64, len(toks))
	for i, t := range toks {
		t = strings.TrimSpace(t)
		v, err := strconv.ParseInt(t, 10, 64)
		if err != nil {
			return nil, ParseError{Index: i, Token: t}
		}
		prog[i] = v
	}
	return prog, nil
}

// Parse reads all of r and parses it as a program listing.
func Parse(r io.Reader) ([]int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseString(string(b))
}

// ReadFile parses the program listing in the named file.
func ReadFile(name string) ([]int64, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	prog, err := ParseString(string(b))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return prog, nil
}

// Patch returns a copy of program with vals written starting at address at.
// The copy is extended with zeros if vals reach past its end. Patch panics
// if at is negative.
func Patch(program []int64, at int, vals ...int64) []int64 {
	n := len(program)
	if end := at + len(vals); end > n {
		n = end
	}
	p := make([]int64, n)
	copy(p, program)
	copy(p[at:], vals)
	return p
}
