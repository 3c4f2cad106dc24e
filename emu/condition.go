package emu

import (
	"fmt"

	"github.com/sarchlab/a32sim/insts"
)

// EvaluateCondition evaluates a condition code against the CPSR flags.
// The reserved encoding 0b1111 returns ErrIllegalCondition.
func EvaluateCondition(cond insts.Cond, cpsr StatusRegister) (bool, error) {
	n, z, c, v := cpsr.N(), cpsr.Z(), cpsr.C(), cpsr.V()

	switch cond {
	case insts.CondEQ:
		return z, nil
	case insts.CondNE:
		return !z, nil
	case insts.CondCS:
		return c, nil
	case insts.CondCC:
		return !c, nil
	case insts.CondMI:
		return n, nil
	case insts.CondPL:
		return !n, nil
	case insts.CondVS:
		return v, nil
	case insts.CondVC:
		return !v, nil
	case insts.CondHI:
		return c && !z, nil
	case insts.CondLS:
		return !c || z, nil
	case insts.CondGE:
		return n == v, nil
	case insts.CondLT:
		return n != v, nil
	case insts.CondGT:
		return !z && n == v, nil
	case insts.CondLE:
		return z || n != v, nil
	case insts.CondAL:
		return true, nil
	default:
		return false, fmt.Errorf("%w: 0b%04b", ErrIllegalCondition, uint8(cond))
	}
}
