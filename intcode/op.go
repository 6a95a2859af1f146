package intcode

import (
	"fmt"
	"strings"
)

// Op represents an Intcode opcode, the low two decimal digits of an
// instruction word.
type Op int64

const (
	ADD Op = 1
	MUL Op = 2
	IN  Op = 3
	OUT Op = 4
	JT  Op = 5
	JF  Op = 6
	LT  Op = 7
	EQ  Op = 8
	RB  Op = 9
	HLT Op = 99
)

var opNames = map[Op]string{
	ADD: "add",
	MUL: "mul",
	IN:  "in",
	OUT: "out",
	JT:  "jt",
	JF:  "jf",
	LT:  "lt",
	EQ:  "eq",
	RB:  "rb",
	HLT: "hlt",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return fmt.Sprintf("op%d", int64(o))
}

// Valid reports whether o is a recognized opcode.
func (o Op) Valid() bool {
	_, ok := opNames[o]
	return ok
}

// Params reports the number of parameters consumed by o.
func (o Op) Params() int {
	switch o {
	case ADD, MUL, LT, EQ:
		return 3
	case JT, JF:
		return 2
	case IN, OUT, RB:
		return 1
	}
	return 0
}

// Writes reports whether the parameter at index i is a write target.
func (o Op) Writes(i int) bool {
	switch o {
	case ADD, MUL, LT, EQ:
		return i == 2
	case IN:
		return i == 0
	}
	return false
}

// Mode is a parameter addressing mode.
type Mode byte

const (
	Position  Mode = 0
	Immediate Mode = 1
	Relative  Mode = 2
)

func (m Mode) String() string {
	switch m {
	case Position:
		return "@"
	case Immediate:
		return "#"
	case Relative:
		return "~"
	}
	return "?"
}

// maxParams is the largest parameter count of any opcode.
const maxParams = 3

// Decode splits an instruction word into its opcode and parameter modes.
// It reports false if the opcode is not recognized or a mode digit is not
// one of the defined modes.
func Decode(word int64) (op Op, modes [maxParams]Mode, ok bool) {
	if word < 0 {
		return Op(word % 100), modes, false
	}
	op = Op(word % 100)
	if !op.Valid() {
		return op, modes, false
	}
	digits := word / 100
	for i := 0; i < op.Params(); i++ {
		m := Mode(digits % 10)
		if m > Relative {
			return op, modes, false
		}
		modes[i] = m
		digits /= 10
	}
	return op, modes, true
}

// Instruction is a decoded instruction and its raw operands.
type Instruction struct {
	Addr  int
	Word  int64
	Op    Op
	Modes [maxParams]Mode
	Args  [maxParams]int64
}

// Width returns the number of memory cells occupied by the instruction.
func (in Instruction) Width() int { return 1 + in.Op.Params() }

func (in Instruction) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%.4d %s", in.Addr, in.Op)
	for i := 0; i < in.Op.Params(); i++ {
		fmt.Fprintf(&b, " %s%d", in.Modes[i], in.Args[i])
	}
	return b.String()
}

// Disassemble decodes the instruction at addr in mem without executing it.
// Cells beyond the end of mem read as zero. It reports false if the word at
// addr does not decode.
func Disassemble(mem []int64, addr int) (Instruction, bool) {
	at := func(a int) int64 {
		if a < 0 || a >= len(mem) {
			return 0
		}
		return mem[a]
	}
	in := Instruction{Addr: addr, Word: at(addr)}
	var ok bool
	in.Op, in.Modes, ok = Decode(in.Word)
	if !ok {
		return in, false
	}
	for i := 0; i < in.Op.Params(); i++ {
		in.Args[i] = at(addr + 1 + i)
	}
	return in, true
}
