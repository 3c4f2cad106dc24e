package emu

import (
	"github.com/sarchlab/a32sim/insts"
)

// ALU implements the sixteen data-processing operations. It is pure: it
// computes a result and the flags that result would produce, and leaves
// committing them to the caller.
type ALU struct{}

// NewALU creates a new ALU.
func NewALU() *ALU {
	return &ALU{}
}

// Compute performs op on op1 (Rn) and op2 (the resolved Operand2).
// cpsr supplies the carry-in for ADC/SBC/RSC and the V flag kept by logical
// operations; shifterCarry is the barrel shifter carry-out. The returned
// status register is cpsr with N, Z, C and V updated as the S bit would
// require, all other bits preserved.
func (a *ALU) Compute(op insts.Op, op1, op2 uint32, cpsr StatusRegister,
	shifterCarry bool) (uint32, StatusRegister) {
	var (
		result uint32
		c      = cpsr.C()
		v      = cpsr.V()
	)

	switch op {
	case insts.OpAND, insts.OpTST:
		result, c = op1&op2, shifterCarry
	case insts.OpEOR, insts.OpTEQ:
		result, c = op1^op2, shifterCarry
	case insts.OpORR:
		result, c = op1|op2, shifterCarry
	case insts.OpMOV:
		result, c = op2, shifterCarry
	case insts.OpBIC:
		result, c = op1&^op2, shifterCarry
	case insts.OpMVN:
		result, c = ^op2, shifterCarry
	case insts.OpADD, insts.OpCMN:
		result, c, v = addWithCarry(op1, op2, false)
	case insts.OpADC:
		result, c, v = addWithCarry(op1, op2, cpsr.C())
	case insts.OpSUB, insts.OpCMP:
		result, c, v = subWithCarry(op1, op2, true)
	case insts.OpRSB:
		result, c, v = subWithCarry(op2, op1, true)
	case insts.OpSBC:
		result, c, v = subWithCarry(op1, op2, cpsr.C())
	case insts.OpRSC:
		result, c, v = subWithCarry(op2, op1, cpsr.C())
	}

	flags := cpsr
	flags.SetTo(FlagN, result>>31 == 1)
	flags.SetTo(FlagZ, result == 0)
	flags.SetTo(FlagC, c)
	flags.SetTo(FlagV, v)

	return result, flags
}

// addWithCarry computes op1 + op2 + carry.
// C: set if the unsigned sum does not fit in 32 bits.
// V: set if both operands share a sign and the result's sign differs.
func addWithCarry(op1, op2 uint32, carry bool) (result uint32, c, v bool) {
	var cin uint64
	if carry {
		cin = 1
	}

	sum := uint64(op1) + uint64(op2) + cin
	result = uint32(sum)
	c = sum>>32 != 0

	op1Sign := op1 >> 31
	op2Sign := op2 >> 31
	resultSign := result >> 31
	v = (op1Sign == op2Sign) && (op1Sign != resultSign)

	return result, c, v
}

// subWithCarry computes op1 - op2 - NOT carry, i.e. op1 + NOT op2 + carry.
// C: set if NO borrow occurred (op1 >= op2 + borrow, unsigned).
// V: set if the operands differ in sign and the result's sign matches the
// subtrahend's.
func subWithCarry(op1, op2 uint32, carry bool) (result uint32, c, v bool) {
	var borrow uint64
	if !carry {
		borrow = 1
	}

	result = op1 - op2 - uint32(borrow)
	c = uint64(op1) >= uint64(op2)+borrow

	op1Sign := op1 >> 31
	op2Sign := op2 >> 31
	resultSign := result >> 31
	v = (op1Sign != op2Sign) && (op2Sign == resultSign)

	return result, c, v
}
