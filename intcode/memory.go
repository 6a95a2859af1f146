package intcode

// MaxMemory is the number of cells a machine may address. Memory grows on
// demand up to this size.
const MaxMemory = 1 << 24

// memory is the flat, zero-extending store shared by code and data.
// Out of range accesses panic with InvalidAddress, which the executor turns
// into a Fault.
type memory []int64

func (m *memory) grow(addr int) {
	if addr < 0 || addr >= MaxMemory {
		panic(faultAt{InvalidAddress, int64(addr)})
	}
	if addr < len(*m) {
		return
	}
	if addr < cap(*m) {
		// Cells between len and cap are never written, so still zero.
		*m = (*m)[:addr+1]
		return
	}
	n := len(*m) * 2
	if n <= addr {
		n = addr + 1
	}
	if n > MaxMemory {
		n = MaxMemory
	}
	grown := make(memory, addr+1, n)
	copy(grown, *m)
	*m = grown
}

func (m *memory) load(addr int) int64 {
	m.grow(addr)
	return (*m)[addr]
}

func (m *memory) store(addr int, v int64) {
	m.grow(addr)
	(*m)[addr] = v
}

// faultAt carries a fault code and the operand that caused it from the
// point of failure up to Step.
type faultAt struct {
	code    FaultCode
	operand int64
}

// addr converts a resolved operand to an address, panicking for values that
// cannot index memory.
func addr(v int64) int {
	if v < 0 || v >= MaxMemory {
		panic(faultAt{InvalidAddress, v})
	}
	return int(v)
}
