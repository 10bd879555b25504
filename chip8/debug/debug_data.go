package debug

// CPUState contains all CPU register information for debugging
type CPUState struct {
	V      [16]uint8
	I      uint16
	PC     uint16
	Stack  []uint16
	Delay  uint8
	Sound  uint8
	Opcode uint16
	Cycles uint64

	WaitingForKey bool
	Halted        bool
}

// MemorySnapshot contains a snapshot of memory for disassembly
type MemorySnapshot struct {
	StartAddr uint16
	Bytes     []uint8
}

// DebuggerState represents the current debugger state
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStepInstruction
	DebuggerStepFrame
	DebuggerHalted
)

func (s DebuggerState) String() string {
	switch s {
	case DebuggerRunning:
		return "running"
	case DebuggerPaused:
		return "paused"
	case DebuggerStepInstruction:
		return "step instruction"
	case DebuggerStepFrame:
		return "step frame"
	case DebuggerHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// CompleteDebugData contains all debug information needed by debug displays
type CompleteDebugData struct {
	CPU           *CPUState
	Memory        *MemorySnapshot
	Keys          [16]bool
	DebuggerState DebuggerState
	Quirks        string
	ROMName       string
	ROMHash       uint64
	// Error is the message of the fatal error that halted the CPU, if any.
	Error string
}
