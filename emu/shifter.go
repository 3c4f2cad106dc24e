package emu

import (
	"math/bits"

	"github.com/sarchlab/a32sim/insts"
)

// Shifter is the barrel shifter. It resolves an Operand2 into its value and
// the carry-out used by the logical opcodes.
type Shifter struct {
	regFile *RegFile
}

// NewShifter creates a barrel shifter reading from the given register file.
func NewShifter(regFile *RegFile) *Shifter {
	return &Shifter{regFile: regFile}
}

// Resolve computes the Operand2 value and the shifter carry-out. carryIn is
// the current C flag; it passes through whenever the operation shifts
// nothing out.
func (s *Shifter) Resolve(op insts.Operand2, carryIn bool) (uint32, bool) {
	switch op.Kind {
	case insts.Operand2Imm:
		return RotateImm(op.Imm8, op.Rotate, carryIn)
	case insts.Operand2RegRegShift:
		value := s.regFile.ReadReg(op.Rm)
		amount := s.regFile.ReadReg(op.Rs) & 0xFF
		return ShiftByRegister(value, op.ShiftType, amount, carryIn)
	default:
		value := s.regFile.ReadReg(op.Rm)
		return ShiftByImmediate(value, op.ShiftType, op.ShiftAmount, carryIn)
	}
}

// RotateImm rotates an 8-bit immediate right by twice the 4-bit rotate
// field. A zero rotation leaves the carry untouched; otherwise the carry-out
// is bit 31 of the result.
func RotateImm(imm8, rotate uint8, carryIn bool) (uint32, bool) {
	if rotate&0xF == 0 {
		return uint32(imm8), carryIn
	}
	value := bits.RotateLeft32(uint32(imm8), -2*int(rotate&0xF))
	return value, value>>31 == 1
}

// ShiftByImmediate applies a shift encoded as a 5-bit immediate. An amount
// of 0 means LSL #0 (no shift), LSR #32, ASR #32 or RRX depending on the
// shift type.
func ShiftByImmediate(value uint32, shiftType insts.ShiftType, amount uint8,
	carryIn bool) (uint32, bool) {
	amount &= 0x1F

	switch shiftType {
	case insts.ShiftLSL:
		if amount == 0 {
			return value, carryIn
		}
		return value << amount, (value>>(32-amount))&1 == 1
	case insts.ShiftLSR:
		if amount == 0 {
			return 0, value>>31 == 1
		}
		return value >> amount, (value>>(amount-1))&1 == 1
	case insts.ShiftASR:
		if amount == 0 {
			return signFill(value), value>>31 == 1
		}
		return uint32(int32(value) >> amount), (value>>(amount-1))&1 == 1
	default:
		if amount == 0 {
			// RRX
			result := value >> 1
			if carryIn {
				result |= 0x80000000
			}
			return result, value&1 == 1
		}
		return bits.RotateLeft32(value, -int(amount)), (value>>(amount-1))&1 == 1
	}
}

// ShiftByRegister applies a shift by the low byte of a register. An amount
// of 0 leaves both value and carry unchanged for every shift type.
func ShiftByRegister(value uint32, shiftType insts.ShiftType, amount uint32,
	carryIn bool) (uint32, bool) {
	amount &= 0xFF
	if amount == 0 {
		return value, carryIn
	}

	switch shiftType {
	case insts.ShiftLSL:
		switch {
		case amount < 32:
			return value << amount, (value>>(32-amount))&1 == 1
		case amount == 32:
			return 0, value&1 == 1
		default:
			return 0, false
		}
	case insts.ShiftLSR:
		switch {
		case amount < 32:
			return value >> amount, (value>>(amount-1))&1 == 1
		case amount == 32:
			return 0, value>>31 == 1
		default:
			return 0, false
		}
	case insts.ShiftASR:
		if amount >= 32 {
			return signFill(value), value>>31 == 1
		}
		return uint32(int32(value) >> amount), (value>>(amount-1))&1 == 1
	default:
		rot := amount & 0x1F
		if rot == 0 {
			return value, value>>31 == 1
		}
		return bits.RotateLeft32(value, -int(rot)), (value>>(rot-1))&1 == 1
	}
}

// signFill returns all ones if bit 31 is set, zero otherwise.
func signFill(value uint32) uint32 {
	return uint32(int32(value) >> 31)
}
