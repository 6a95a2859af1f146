// Package intcode provides an implementation of an Intcode computer, called
// Machine, and the plumbing to connect several machines into pipelines.
//
// A Machine never blocks. When it needs an input value that is not yet
// available it returns AwaitingInput to its caller, and the next call to Run
// retries the same instruction.
package intcode

import "fmt"

// Status is the run status of a Machine.
type Status byte

const (
	Ready         Status = iota // may continue executing
	AwaitingInput               // blocked on an empty input channel
	Halted                      // finished or faulted; terminal
)

func (s Status) String() string {
	switch s {
	case Ready:
		return "ready"
	case AwaitingInput:
		return "awaiting input"
	case Halted:
		return "halted"
	}
	return fmt.Sprintf("unknown (%d)", byte(s))
}

// Machine is an implementation of an Intcode computer.
//
// A Machine is not safe for concurrent use; distinct machines may run on
// distinct goroutines as long as they share no Channel.
type Machine struct {
	// StopOnOutput makes Run return after every output instruction,
	// so that a producer does not race ahead of its consumer.
	StopOnOutput bool

	// Trace, if non-nil, is called before each instruction executes.
	Trace func(m *Machine, in Instruction)

	mem     memory
	ip      int
	rb      int64
	status  Status
	err     error
	steps   int
	last    Op // opcode of the last completed instruction

	in, out *Channel
}

// NewMachine returns a Machine loaded with a copy of program and connected
// to fresh input and output channels.
func NewMachine(program []int64) *Machine {
	return &Machine{
		mem:    append(memory(nil), program...),
		status: Ready,
		in:     NewChannel(),
		out:    NewChannel(),
	}
}

// SetInput and SetOutput replace the machine's channels. A nil input
// channel is always empty, so IN suspends the machine with AwaitingInput;
// values sent to a nil output channel are discarded.
func (m *Machine) SetInput(c *Channel)  { m.in = c }
func (m *Machine) SetOutput(c *Channel) { m.out = c }
func (m *Machine) Input() *Channel      { return m.in }
func (m *Machine) Output() *Channel     { return m.out }

// DrainOutput returns the values produced since the last drain.
func (m *Machine) DrainOutput() []int64 {
	if m.out == nil {
		return nil
	}
	return m.out.Drain()
}

func (m *Machine) IP() int             { return m.ip }
func (m *Machine) RelativeBase() int64 { return m.rb }
func (m *Machine) Status() Status      { return m.status }
func (m *Machine) Steps() int          { return m.steps }
func (m *Machine) Len() int            { return len(m.mem) }

// Memory returns a copy of the machine's memory.
func (m *Machine) Memory() []int64 { return append([]int64(nil), m.mem...) }

// Next decodes the instruction at IP without executing it.
func (m *Machine) Next() (Instruction, bool) { return Disassemble(m.mem, m.ip) }

// Err returns the fault that halted the machine, or nil.
func (m *Machine) Err() error { return m.err }

// Peek returns the value at addr without extending memory.
func (m *Machine) Peek(addr int) int64 {
	if addr < 0 || addr >= len(m.mem) {
		return 0
	}
	return m.mem[addr]
}

// Run executes instructions until the machine halts, needs input that is
// not available, or, if StopOnOutput is set, produces an output value.
// Calling Run on a halted machine returns Halted and a nil error.
func (m *Machine) Run() (Status, error) {
	if m.status == Halted {
		return Halted, nil
	}
	m.status = Ready
	for {
		st, err := m.Step()
		if st != Ready || err != nil {
			return st, err
		}
		if m.StopOnOutput && m.last == OUT {
			return st, nil
		}
	}
}

// Step executes the instruction at IP. A fault halts the machine and is
// returned as a Fault. Step on a halted machine is a no-op.
func (m *Machine) Step() (st Status, err error) {
	if m.status == Halted {
		return Halted, nil
	}
	var (
		opIP = m.ip
		word int64
	)
	defer func() {
		if e := recover(); e != nil {
			f, ok := e.(faultAt)
			if !ok {
				panic(e)
			}
			m.status = Halted
			m.err = Fault{Code: f.code, Addr: opIP, Word: word, Operand: f.operand}
			st, err = m.status, m.err
		}
	}()

	word = m.mem.load(opIP)
	op, modes, ok := Decode(word)
	if !ok {
		panic(faultAt{IllegalOpcode, word})
	}
	in := Instruction{Addr: opIP, Word: word, Op: op, Modes: modes}
	for i := 0; i < op.Params(); i++ {
		in.Args[i] = m.mem.load(opIP + 1 + i)
		if op.Writes(i) && modes[i] == Immediate {
			panic(faultAt{InvalidWriteTarget, in.Args[i]})
		}
	}
	if m.Trace != nil {
		m.Trace(m, in)
	}

	next := opIP + in.Width()
	switch op {
	case ADD:
		m.write(in, 2, m.val(in, 0)+m.val(in, 1))
	case MUL:
		m.write(in, 2, m.val(in, 0)*m.val(in, 1))
	case IN:
		m.target(in, 0) // an invalid target faults before input is consumed
		v, ok := int64(0), false
		if m.in != nil {
			v, ok = m.in.Recv()
		}
		if !ok {
			m.status = AwaitingInput
			return m.status, nil
		}
		m.write(in, 0, v)
	case OUT:
		if v := m.val(in, 0); m.out != nil {
			m.out.Send(v)
		}
	case JT:
		if m.val(in, 0) != 0 {
			next = addr(m.val(in, 1))
		}
	case JF:
		if m.val(in, 0) == 0 {
			next = addr(m.val(in, 1))
		}
	case LT:
		m.write(in, 2, boolVal(m.val(in, 0) < m.val(in, 1)))
	case EQ:
		m.write(in, 2, boolVal(m.val(in, 0) == m.val(in, 1)))
	case RB:
		m.rb += m.val(in, 0)
	case HLT:
		m.status = Halted
		m.last = op
		m.steps++
		return m.status, nil
	}
	m.ip = next
	m.status = Ready
	m.last = op
	m.steps++
	return m.status, nil
}

// val resolves parameter i of in according to its mode.
func (m *Machine) val(in Instruction, i int) int64 {
	switch in.Modes[i] {
	case Immediate:
		return in.Args[i]
	case Relative:
		return m.mem.load(addr(m.rb + in.Args[i]))
	default:
		return m.mem.load(addr(in.Args[i]))
	}
}

// target resolves write-target parameter i of in to an address.
// Immediate targets were rejected when the instruction was decoded.
func (m *Machine) target(in Instruction, i int) int {
	switch in.Modes[i] {
	case Relative:
		return addr(m.rb + in.Args[i])
	default:
		return addr(in.Args[i])
	}
}

func (m *Machine) write(in Instruction, i int, v int64) {
	m.mem.store(m.target(in, i), v)
}

func boolVal(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// Fault is returned by Run and Step when execution is halted by an
// instruction that cannot be executed.
type Fault struct {
	Code    FaultCode
	Addr    int   // address of the faulting instruction
	Word    int64 // its instruction word
	Operand int64 // the offending value
}

func (f Fault) Error() string {
	switch f.Code {
	case IllegalOpcode:
		return fmt.Sprintf("%s %d at %.4d", f.Code, f.Word, f.Addr)
	default:
		return fmt.Sprintf("%s %d executing %d at %.4d", f.Code, f.Operand, f.Word, f.Addr)
	}
}

// Is reports whether target is the same FaultCode as f.
func (f Fault) Is(target error) bool {
	c, ok := target.(FaultCode)
	return ok && c == f.Code
}

// FaultCode signifies the type of condition that halted execution.
// A FaultCode is itself an error so that errors.Is(err, InvalidAddress)
// works on a returned Fault.
type FaultCode byte

const (
	IllegalOpcode      FaultCode = 0x01
	InvalidAddress     FaultCode = 0x02
	InvalidWriteTarget FaultCode = 0x03
)

func (c FaultCode) String() string {
	if s, ok := map[FaultCode]string{
		IllegalOpcode:      "illegal opcode",
		InvalidAddress:     "invalid address",
		InvalidWriteTarget: "immediate write target",
	}[c]; ok {
		return s
	}
	return fmt.Sprintf("unknown (%.2x)", byte(c))
}

func (c FaultCode) Error() string { return c.String() }

var _ error = Fault{}
