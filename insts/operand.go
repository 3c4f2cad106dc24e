package insts

import "math/bits"

// Operand2Kind selects how the second operand is produced.
type Operand2Kind uint8

// Operand2 shapes.
const (
	Operand2Imm         Operand2Kind = iota // 8-bit immediate rotated right by 2*Rotate
	Operand2RegImmShift                     // Rm shifted by a 5-bit immediate
	Operand2RegRegShift                     // Rm shifted by the low byte of Rs
)

// Operand2 is the undecoded second operand. Only the fields belonging to
// Kind are meaningful.
type Operand2 struct {
	Kind Operand2Kind

	// Operand2Imm
	Imm8   uint8
	Rotate uint8 // 4-bit field, the rotation is twice this value

	// Operand2RegImmShift and Operand2RegRegShift
	Rm          uint8
	ShiftType   ShiftType
	ShiftAmount uint8 // 0-31, Operand2RegImmShift only
	Rs          uint8 // Operand2RegRegShift only
}

// ImmValue returns the rotated immediate value for Operand2Imm.
func (o Operand2) ImmValue() uint32 {
	return bits.RotateLeft32(uint32(o.Imm8), -2*int(o.Rotate))
}

// IsRRX reports whether the operand is the rotate-right-extended form,
// encoded as ROR by an immediate 0.
func (o Operand2) IsRRX() bool {
	return o.Kind == Operand2RegImmShift && o.ShiftType == ShiftROR && o.ShiftAmount == 0
}

// decodeImmOperand decodes the rotated immediate form.
// Format: rotate[11:8] | imm8[7:0]
func decodeImmOperand(word uint32) Operand2 {
	return Operand2{
		Kind:   Operand2Imm,
		Imm8:   uint8(word & 0xFF),
		Rotate: uint8((word >> 8) & 0xF),
	}
}

// decodeRegOperand decodes the shifted register form.
// Immediate shift: amount[11:7] | type[6:5] | 0 | Rm[3:0]
// Register shift:  Rs[11:8] | 0 | type[6:5] | 1 | Rm[3:0]
func decodeRegOperand(word uint32) Operand2 {
	op := Operand2{
		Rm:        uint8(word & 0xF),
		ShiftType: ShiftType((word >> 5) & 0x3),
	}

	if (word>>4)&0x1 == 1 {
		op.Kind = Operand2RegRegShift
		op.Rs = uint8((word >> 8) & 0xF)
	} else {
		op.Kind = Operand2RegImmShift
		op.ShiftAmount = uint8((word >> 7) & 0x1F)
	}

	return op
}
