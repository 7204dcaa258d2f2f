package famicore

import "errors"

var (
	// ErrMalformedROM is returned when an iNES image fails validation.
	// It is always wrapped with the specific check that failed.
	ErrMalformedROM = errors.New("malformed rom")

	// ErrUnknownOpcode is returned by CPU.Step when the fetched opcode has
	// no entry in the descriptor table. Execution cannot continue past it:
	// skipping an unknown instruction would diverge machine state.
	ErrUnknownOpcode = errors.New("unknown opcode")
)
