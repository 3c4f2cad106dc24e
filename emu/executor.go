package emu

import (
	"fmt"

	"github.com/sarchlab/a32sim/insts"
)

// Executor executes decoded data-processing instructions against a
// register file. It is the only component that mutates the register file
// during execution.
type Executor struct {
	regFile *RegFile
	alu     *ALU
	shifter *Shifter
}

// NewExecutor creates an executor connected to the given register file.
func NewExecutor(regFile *RegFile) *Executor {
	return &Executor{
		regFile: regFile,
		alu:     NewALU(),
		shifter: NewShifter(regFile),
	}
}

// Execute executes inst against regFile. See Executor.Execute.
func Execute(inst *insts.Instruction, regFile *RegFile) error {
	return NewExecutor(regFile).Execute(inst)
}

// Execute runs one instruction. Either the condition fails and nothing
// changes, an error is returned and nothing changes, or the result and
// flags are committed together.
func (x *Executor) Execute(inst *insts.Instruction) error {
	cpsr := x.regFile.CPSR

	pass, err := EvaluateCondition(inst.Cond, cpsr)
	if err != nil {
		return err
	}
	if !pass {
		return nil
	}

	if inst.Format != insts.FormatDataProc {
		return fmt.Errorf("%w: 0x%08X", ErrUnsupportedInstruction, inst.Word)
	}

	// On hardware this restores the CPSR from the SPSR of the current mode.
	if inst.SetFlags && inst.Rd == RegPC {
		return fmt.Errorf("%w: %s", ErrIllegalDestination, inst)
	}

	op1 := x.regFile.ReadReg(inst.Rn)
	op2, shifterCarry := x.shifter.Resolve(inst.Operand2, cpsr.C())

	result, flags := x.alu.Compute(inst.Op, op1, op2, cpsr, shifterCarry)

	if inst.Op.WritesResult() {
		x.regFile.WriteReg(inst.Rd, result)
	}
	if inst.SetFlags {
		x.regFile.CPSR = flags
	}

	return nil
}

// WritesPC reports whether executing inst would write the program counter.
func WritesPC(inst *insts.Instruction) bool {
	return inst.Format == insts.FormatDataProc &&
		inst.Op.WritesResult() && inst.Rd == RegPC
}
