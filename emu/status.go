package emu

import "strings"

// Flag is a single condition flag, given as its bit mask in the CPSR.
type Flag uint32

// CPSR condition flags.
const (
	FlagN Flag = 1 << 31 // Negative
	FlagZ Flag = 1 << 30 // Zero
	FlagC Flag = 1 << 29 // Carry
	FlagV Flag = 1 << 28 // Overflow
	FlagQ Flag = 1 << 27 // Saturation, reserved on ARMv4

	// FlagsNZCV covers the four flags written by data-processing
	// instructions.
	FlagsNZCV = FlagN | FlagZ | FlagC | FlagV
)

// StatusRegister is the current program status register. Only the flag
// bits are interpreted; every other bit is carried through untouched.
type StatusRegister uint32

// Set sets a flag, leaving all other bits unchanged.
func (s *StatusRegister) Set(f Flag) {
	*s |= StatusRegister(f)
}

// Clear clears a flag, leaving all other bits unchanged.
func (s *StatusRegister) Clear(f Flag) {
	*s &^= StatusRegister(f)
}

// SetTo sets or clears a flag.
func (s *StatusRegister) SetTo(f Flag, v bool) {
	if v {
		s.Set(f)
	} else {
		s.Clear(f)
	}
}

// IsSet reports whether a flag is set.
func (s StatusRegister) IsSet(f Flag) bool {
	return uint32(s)&uint32(f) != 0
}

// N reports the negative flag.
func (s StatusRegister) N() bool { return s.IsSet(FlagN) }

// Z reports the zero flag.
func (s StatusRegister) Z() bool { return s.IsSet(FlagZ) }

// C reports the carry flag.
func (s StatusRegister) C() bool { return s.IsSet(FlagC) }

// V reports the overflow flag.
func (s StatusRegister) V() bool { return s.IsSet(FlagV) }

// String lists the flags, upper case when set: "NzCvq".
func (s StatusRegister) String() string {
	var sb strings.Builder
	for _, f := range []struct {
		flag Flag
		name byte
	}{{FlagN, 'N'}, {FlagZ, 'Z'}, {FlagC, 'C'}, {FlagV, 'V'}, {FlagQ, 'Q'}} {
		if s.IsSet(f.flag) {
			sb.WriteByte(f.name)
		} else {
			sb.WriteByte(f.name + 'a' - 'A')
		}
	}
	return sb.String()
}
