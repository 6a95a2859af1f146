package intcode

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

func TestNewMachine(t *testing.T) {
	prog := []int64{1, 0, 0, 0, 99}
	m := NewMachine(prog)
	prog[0] = 2
	if g := m.Peek(0); g != 1 {
		t.Errorf("Mem[0] == %d after editing program, want 1", g)
	}
	if _, err := m.Run(); err != nil {
		t.Fatal(err)
	}
	if g, w := prog, []int64{2, 0, 0, 0, 99}; !reflect.DeepEqual(g, w) {
		t.Errorf("program is %v after run, want %v", g, w)
	}
}

// Programs whose effect is visible in memory after they halt.
func TestRunMemory(t *testing.T) {
	for _, c := range []struct {
		prog, want []int64
	}{
		{[]int64{1, 0, 0, 0, 99}, []int64{2, 0, 0, 0, 99}},
		{[]int64{2, 3, 0, 3, 99}, []int64{2, 3, 0, 6, 99}},
		{[]int64{2, 4, 4, 5, 99, 0}, []int64{2, 4, 4, 5, 99, 9801}},
		{[]int64{1, 1, 1, 4, 99, 5, 6, 0, 99}, []int64{30, 1, 1, 4, 2, 5, 6, 0, 99}},
		{[]int64{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50},
			[]int64{3500, 9, 10, 70, 2, 3, 11, 0, 99, 30, 40, 50}},
		{[]int64{1002, 4, 3, 4, 33}, []int64{1002, 4, 3, 4, 99}},
		{[]int64{1101, 100, -1, 4, 0}, []int64{1101, 100, -1, 4, 99}},
	} {
		t.Run(fmt.Sprint(c.prog), func(t *testing.T) {
			m := NewMachine(c.prog)
			st, err := m.Run()
			if err != nil {
				t.Fatalf("Run returned error %v", err)
			}
			if st != Halted {
				t.Errorf("status is %v, want %v", st, Halted)
			}
			if g := m.Memory(); !reflect.DeepEqual(g, c.want) {
				t.Errorf("memory is\n\t%v\nwant\n\t%v", g, c.want)
			}
		})
	}
}

const (
	cmpTo8 = "3,21,1008,21,8,20,1005,20,22,107,8,21,20,1006,20,31," +
		"1106,0,36,98,0,0,1002,21,125,20,4,20,1105,1,46,104," +
		"999,1105,1,46,1101,1000,1,20,4,20,1105,1,46,98,99"
	quine = "109,1,204,-1,1001,100,1,100,1008,100,16,101,1006,101,0,99"
)

// Programs whose effect is visible in their output.
func TestRunOutput(t *testing.T) {
	for _, c := range []struct {
		prog     string
		in, want []int64
	}{
		{"3,0,4,0,99", []int64{7}, []int64{7}},
		{"3,9,8,9,10,9,4,9,99,-1,8", []int64{8}, []int64{1}},
		{"3,9,8,9,10,9,4,9,99,-1,8", []int64{7}, []int64{0}},
		{"3,9,7,9,10,9,4,9,99,-1,8", []int64{7}, []int64{1}},
		{"3,9,7,9,10,9,4,9,99,-1,8", []int64{9}, []int64{0}},
		{"3,3,1108,-1,8,3,4,3,99", []int64{8}, []int64{1}},
		{"3,3,1108,-1,8,3,4,3,99", []int64{2}, []int64{0}},
		{"3,3,1107,-1,8,3,4,3,99", []int64{1}, []int64{1}},
		{"3,3,1107,-1,8,3,4,3,99", []int64{9}, []int64{0}},
		{"3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9", []int64{0}, []int64{0}},
		{"3,12,6,12,15,1,13,14,13,4,13,99,-1,0,1,9", []int64{2}, []int64{1}},
		{"3,3,1105,-1,9,1101,0,0,12,4,12,99,1", []int64{0}, []int64{0}},
		{"3,3,1105,-1,9,1101,0,0,12,4,12,99,1", []int64{2}, []int64{1}},
		{cmpTo8, []int64{7}, []int64{999}},
		{cmpTo8, []int64{8}, []int64{1000}},
		{cmpTo8, []int64{9}, []int64{1001}},
		{"3,11,3,12,1,11,12,13,4,13,99,-1,-1,9", []int64{3, 5}, []int64{8}},
		{quine, nil, mustParse(quine)},
		{"1102,34915192,34915192,7,4,7,99,0", nil, []int64{1219070632396864}},
		{"104,1125899906842624,99", nil, []int64{1125899906842624}},
	} {
		t.Run(fmt.Sprintf("%.20s_%v", c.prog, c.in), func(t *testing.T) {
			m := NewMachine(mustParse(c.prog))
			m.Input().Send(c.in...)
			st, err := m.Run()
			if err != nil {
				t.Fatalf("Run returned error %v", err)
			}
			if st != Halted {
				t.Errorf("status is %v, want %v", st, Halted)
			}
			if g := m.DrainOutput(); !reflect.DeepEqual(g, c.want) {
				t.Errorf("output is %v, want %v", g, c.want)
			}
		})
	}
}

func TestExec(t *testing.T) {
	c := newExecTestCase
	for i, c := range []*execTestCase{
		// Input then output, supplied up front or after a pause.
		c(3, 0, 4, 0, 99).in(7).
			want().mem(0, 7).ip(4).out(7).status(Halted),
		c(3, 0, 4, 0, 99).
			want().status(AwaitingInput),
		c(3, 0, 4, 0, 99).
			want().status(AwaitingInput).
			then().in(7).
			want().mem(0, 7).ip(4).out(7).status(Halted),

		// Relative base, negative and positive.
		c(109, -5, 21101, 3, 4, 10, 204, 10, 99).
			want().mem(5, 7).ip(8).rb(-5).out(7).status(Halted),
		c(109, 20, 21101, 3, 4, -10, 204, -10, 99).
			want().mem(9, 0, 7).ip(8).rb(20).out(7).status(Halted),
		c(109, 6, 209, -1, 99, 7).
			want().ip(4).rb(13).status(Halted),

		// Jumps.
		c(1105, 0, 7, 104, 1, 99, 0, 104, 2, 99).
			want().ip(5).out(1).status(Halted),
		c(1105, 1, 7, 104, 1, 99, 0, 104, 2, 99).
			want().ip(9).out(2).status(Halted),
		c(1106, 0, 7, 104, 1, 99, 0, 104, 2, 99).
			want().ip(9).out(2).status(Halted),

		// Reads and writes beyond the program extend memory with zeros.
		c(1001, 10, 5, 12, 99).
			want().mem(5, 0, 0, 0, 0, 0, 0, 0, 5).ip(4).status(Halted),

		// Output stopping policy.
		c(104, 1, 104, 2, 99).stopOnOutput().
			want().ip(2).out(1).status(Ready).
			then().
			want().ip(4).out(2).status(Ready).
			then().
			want().status(Halted),

		// Faults.
		c(50).
			want().status(Halted).
			error(Fault{Code: IllegalOpcode, Addr: 0, Word: 50, Operand: 50}),
		c(1, 0, 0, 0, -3).
			want().mem(0, 2).ip(4).status(Halted).
			error(Fault{Code: IllegalOpcode, Addr: 4, Word: -3, Operand: -3}),
		c(301, 0, 0, 0, 99).
			want().status(Halted).
			error(Fault{Code: IllegalOpcode, Addr: 0, Word: 301, Operand: 301}),
		c(1, -1, 0, 0, 99).
			want().status(Halted).
			error(Fault{Code: InvalidAddress, Addr: 0, Word: 1, Operand: -1}),
		c(1105, 1, -1).
			want().status(Halted).
			error(Fault{Code: InvalidAddress, Addr: 0, Word: 1105, Operand: -1}),
		c(109, -10, 204, 3, 99).
			want().ip(2).rb(-10).status(Halted).
			error(Fault{Code: InvalidAddress, Addr: 2, Word: 204, Operand: -7}),
		c(11101, 1, 1, 0, 99).
			want().status(Halted).
			error(Fault{Code: InvalidWriteTarget, Addr: 0, Word: 11101, Operand: 0}),
		c(10007, -1, 0, 0, 99).
			want().status(Halted).
			error(Fault{Code: InvalidWriteTarget, Addr: 0, Word: 10007, Operand: 0}),
		c(103, 0, 99).in(7).
			want().in(7).status(Halted).
			error(Fault{Code: InvalidWriteTarget, Addr: 0, Word: 103, Operand: 0}),
	} {
		t.Run(fmt.Sprintf("%v_%d", Op(c.prog[0]%100), i), func(t *testing.T) {
			m := NewMachine(c.prog)
			m.StopOnOutput = c.stop
			for j, s := range c.steps {
				m.Input().Send(s.in...)
				st, err := m.Run()
				if err != s.err {
					t.Fatalf("run %d: got error %v, want %v", j, err, s.err)
				}
				if st != s.status {
					t.Errorf("run %d: status is %v, want %v", j, st, s.status)
				}
				if g, w := m.DrainOutput(), s.out; !reflect.DeepEqual(g, w) {
					t.Errorf("run %d: output is %v, want %v", j, g, w)
				}
				if s.ip >= 0 {
					if g := m.IP(); g != s.ip {
						t.Errorf("run %d: IP is %d, want %d", j, g, s.ip)
					}
				}
				if g := m.RelativeBase(); g != s.rb {
					t.Errorf("run %d: relative base is %d, want %d", j, g, s.rb)
				}
				for a, w := range s.mem {
					if g := m.Peek(a); g != w {
						t.Errorf("run %d: memory[%.4d] = %d, want %d", j, a, g, w)
					}
				}
				if g := m.Input().Len(); g != len(s.left) {
					t.Errorf("run %d: %d values left on input, want %d", j, g, len(s.left))
				}
			}
		})
	}
}

type execTestCase struct {
	prog  []int64
	stop  bool
	steps []*execStep
	set   *execStep
}

// execStep describes the input supplied before one call to Run and the
// machine state expected after it.
type execStep struct {
	in     []int64
	left   []int64
	out    []int64
	mem    map[int]int64
	ip     int
	rb     int64
	status Status
	err    error
	want   bool
}

func newExecTestCase(prog ...int64) *execTestCase {
	c := &execTestCase{prog: prog}
	return c.then()
}

func (c *execTestCase) then() *execTestCase {
	s := &execStep{mem: map[int]int64{}, ip: -1}
	c.steps = append(c.steps, s)
	c.set = s
	return c
}

func (c *execTestCase) stopOnOutput() *execTestCase {
	c.stop = true
	return c
}

func (c *execTestCase) in(vals ...int64) *execTestCase {
	if c.set.want {
		c.set.left = append(c.set.left, vals...)
	} else {
		c.set.in = append(c.set.in, vals...)
	}
	return c
}

func (c *execTestCase) want() *execTestCase {
	c.set.want = true
	return c
}

func (c *execTestCase) mem(addr int, vals ...int64) *execTestCase {
	for i, v := range vals {
		c.set.mem[addr+i] = v
	}
	return c
}

func (c *execTestCase) ip(addr int) *execTestCase {
	c.set.ip = addr
	return c
}

func (c *execTestCase) rb(v int64) *execTestCase {
	c.set.rb = v
	return c
}

func (c *execTestCase) out(vals ...int64) *execTestCase {
	c.set.out = append(c.set.out, vals...)
	return c
}

func (c *execTestCase) status(s Status) *execTestCase {
	c.set.status = s
	return c
}

func (c *execTestCase) error(err error) *execTestCase {
	c.set.err = err
	return c
}

func TestRunHalted(t *testing.T) {
	m := NewMachine([]int64{104, 42, 99})
	if st, err := m.Run(); st != Halted || err != nil {
		t.Fatalf("first Run returned %v, %v; want %v, nil", st, err, Halted)
	}
	m.DrainOutput()
	mem := m.Memory()
	for i := 0; i < 3; i++ {
		if st, err := m.Run(); st != Halted || err != nil {
			t.Errorf("Run after halt returned %v, %v; want %v, nil", st, err, Halted)
		}
		if st, err := m.Step(); st != Halted || err != nil {
			t.Errorf("Step after halt returned %v, %v; want %v, nil", st, err, Halted)
		}
	}
	if g := m.DrainOutput(); len(g) != 0 {
		t.Errorf("Run after halt produced output %v", g)
	}
	if g := m.Memory(); !reflect.DeepEqual(g, mem) {
		t.Errorf("Run after halt changed memory to %v, want %v", g, mem)
	}
}

func TestRunFaulted(t *testing.T) {
	m := NewMachine([]int64{1, -1, 0, 0, 99})
	_, err := m.Run()
	if !errors.Is(err, InvalidAddress) {
		t.Fatalf("Run returned %v, want %v", err, InvalidAddress)
	}
	var f Fault
	if !errors.As(err, &f) || f.Addr != 0 || f.Operand != -1 {
		t.Errorf("Run returned %#v, want a Fault at 0 with operand -1", err)
	}
	if errors.Is(err, IllegalOpcode) {
		t.Errorf("errors.Is(%v, %v) is true", err, IllegalOpcode)
	}
	if g := m.Err(); g != err {
		t.Errorf("Err returned %v, want %v", g, err)
	}
	if st, err := m.Run(); st != Halted || err != nil {
		t.Errorf("Run after fault returned %v, %v; want %v, nil", st, err, Halted)
	}
	if g, w := err.Error(), "invalid address -1 executing 1 at 0000"; g != w {
		t.Errorf("error text is %q, want %q", g, w)
	}
}

func TestStepResume(t *testing.T) {
	m := NewMachine(mustParse("3,0,3,1,1,0,1,2,4,2,99"))
	for _, w := range []struct {
		send   []int64
		status Status
		ip     int
	}{
		{nil, AwaitingInput, 0},
		{[]int64{3}, Ready, 2},
		{nil, AwaitingInput, 2},
		{[]int64{4}, Ready, 4},
		{nil, Ready, 8},
		{nil, Ready, 10},
		{nil, Halted, 10},
	} {
		m.Input().Send(w.send...)
		st, err := m.Step()
		if err != nil {
			t.Fatal(err)
		}
		if st != w.status || m.IP() != w.ip {
			t.Fatalf("Step left status %v at IP %d, want %v at %d", st, m.IP(), w.status, w.ip)
		}
	}
	if g, w := m.DrainOutput(), []int64{7}; !reflect.DeepEqual(g, w) {
		t.Errorf("output is %v, want %v", g, w)
	}
	if g, w := m.Steps(), 5; g != w {
		t.Errorf("Steps is %d, want %d", g, w)
	}
}

// Once halted, nothing a driver can do changes the machine's state.
func TestHaltedIsTerminal(t *testing.T) {
	m := NewMachine([]int64{109, 4, 1101, 1, 1, 0, 3, 1, 99})
	m.Input().Send(5)
	if st, err := m.Run(); st != Halted || err != nil {
		t.Fatalf("Run returned %v, %v", st, err)
	}
	mem, ip, rb := m.Memory(), m.IP(), m.RelativeBase()

	m.Input().Send(1, 2, 3)
	m.SetInput(NewChannel(7))
	m.SetOutput(NewChannel())
	m.StopOnOutput = true
	for i := 0; i < 3; i++ {
		m.Run()
		m.Step()
	}
	if g := m.Memory(); !reflect.DeepEqual(g, mem) {
		t.Errorf("memory of halted machine changed to %v, want %v", g, mem)
	}
	if m.IP() != ip || m.RelativeBase() != rb || m.Status() != Halted {
		t.Errorf("halted machine moved to IP %d, relative base %d, status %v; want %d, %d, %v",
			m.IP(), m.RelativeBase(), m.Status(), ip, rb, Halted)
	}
	if g := m.Input().Len(); g != 1 {
		t.Errorf("halted machine consumed input; %d values left, want 1", g)
	}
}

func TestNilChannels(t *testing.T) {
	m := NewMachine([]int64{3, 0, 99})
	m.SetInput(nil)
	for i := 0; i < 2; i++ {
		st, err := m.Run()
		if st != AwaitingInput || err != nil {
			t.Fatalf("Run with nil input returned %v, %v; want %v, nil", st, err, AwaitingInput)
		}
		if m.IP() != 0 {
			t.Fatalf("Run with nil input moved IP to %d", m.IP())
		}
	}
	m.SetInput(NewChannel(4))
	if st, err := m.Run(); st != Halted || err != nil {
		t.Fatalf("Run after connecting input returned %v, %v", st, err)
	}
	if g := m.Peek(0); g != 4 {
		t.Errorf("address 0 is %d, want 4", g)
	}

	m = NewMachine([]int64{104, 1, 104, 2, 99})
	m.SetOutput(nil)
	if st, err := m.Run(); st != Halted || err != nil {
		t.Fatalf("Run with nil output returned %v, %v; want %v, nil", st, err, Halted)
	}
	if g := m.DrainOutput(); g != nil {
		t.Errorf("DrainOutput with nil output returned %v", g)
	}
	if g := m.Steps(); g != 3 {
		t.Errorf("Steps is %d, want 3", g)
	}
}

func TestTrace(t *testing.T) {
	m := NewMachine([]int64{1101, 2, 3, 5, 104, 0, 99})
	var got []string
	m.Trace = func(m *Machine, in Instruction) { got = append(got, in.String()) }
	if _, err := m.Run(); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"0000 add #2 #3 @5",
		"0004 out #5",
		"0006 hlt",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("trace is\n\t%q\nwant\n\t%q", got, want)
	}
}

func TestMaxMemory(t *testing.T) {
	m := NewMachine([]int64{1101, 1, 1, MaxMemory, 99})
	_, err := m.Run()
	if !errors.Is(err, InvalidAddress) {
		t.Fatalf("Run returned %v, want %v", err, InvalidAddress)
	}
	if g := m.Len(); g != 5 {
		t.Errorf("memory grew to %d cells", g)
	}
}

func mustParse(s string) []int64 {
	p, err := ParseString(s)
	if err != nil {
		panic(err)
	}
	return p
}
