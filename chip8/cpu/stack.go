package cpu

import "errors"

// StackDepth is the number of nested subroutine calls supported.
const StackDepth = 16

var (
	// ErrStackOverflow is returned when calling with StackDepth return addresses already stored.
	ErrStackOverflow = errors.New("call stack overflow")
	// ErrStackUnderflow is returned when returning with no return address stored.
	ErrStackUnderflow = errors.New("call stack underflow")
)

// CallStack is a fixed depth LIFO of return addresses.
type CallStack struct {
	entries [StackDepth]uint16
	sp      int
}

// Push stores a return address.
func (s *CallStack) Push(address uint16) error {
	if s.sp >= StackDepth {
		return ErrStackOverflow
	}
	s.entries[s.sp] = address
	s.sp++
	return nil
}

// Pop removes and returns the most recent return address.
func (s *CallStack) Pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--
	return s.entries[s.sp], nil
}

// Len returns the number of stored return addresses.
func (s *CallStack) Len() int {
	return s.sp
}

// Snapshot returns the stored addresses, oldest first.
func (s *CallStack) Snapshot() []uint16 {
	out := make([]uint16, s.sp)
	copy(out, s.entries[:s.sp])
	return out
}

// Reset empties the stack.
func (s *CallStack) Reset() {
	s.entries = [StackDepth]uint16{}
	s.sp = 0
}
