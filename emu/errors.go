package emu

import "errors"

var (
	// ErrIllegalCondition is returned for the reserved condition encoding.
	// Nothing is mutated when it is returned.
	ErrIllegalCondition = errors.New("illegal condition")

	// ErrIllegalDestination is returned for a flag-setting instruction that
	// writes the PC, which would restore the CPSR from an SPSR on real
	// hardware. Nothing is mutated when it is returned.
	ErrIllegalDestination = errors.New("illegal destination: S bit with Rd = pc")

	// ErrUnsupportedInstruction is returned for words outside the
	// data-processing class.
	ErrUnsupportedInstruction = errors.New("unsupported instruction")

	// ErrMaxInstructions is returned by the emulator when its instruction
	// limit is reached.
	ErrMaxInstructions = errors.New("max instructions reached")
)
