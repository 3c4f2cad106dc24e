// Package emu provides functional ARMv4 emulation.
package emu

import "fmt"

// Register indices with a conventional role.
const (
	RegSP uint8 = 13 // Stack pointer
	RegLR uint8 = 14 // Link register
	RegPC uint8 = 15 // Program counter
)

// NumRegs is the number of general-purpose registers.
const NumRegs = 16

// RegFile represents the ARM register file: R0-R12, SP, LR, PC and the
// CPSR. It is a plain value, so copying it snapshots the processor state.
type RegFile struct {
	// R holds registers R0-R15.
	R [NumRegs]uint32

	// CPSR holds the condition flags.
	CPSR StatusRegister
}

// ReadReg reads a register value. Only the low four bits of reg are used.
func (r *RegFile) ReadReg(reg uint8) uint32 {
	return r.R[reg&0xF]
}

// WriteReg writes a value to a register. Only the low four bits of reg are
// used.
func (r *RegFile) WriteReg(reg uint8, value uint32) {
	r.R[reg&0xF] = value
}

// PC returns the program counter.
func (r *RegFile) PC() uint32 {
	return r.R[RegPC]
}

// SetPC sets the program counter.
func (r *RegFile) SetPC(pc uint32) {
	r.R[RegPC] = pc
}

// SP returns the stack pointer.
func (r *RegFile) SP() uint32 {
	return r.R[RegSP]
}

// String dumps the registers four to a line, followed by the flags.
func (r *RegFile) String() string {
	s := ""
	for i := 0; i < NumRegs; i += 4 {
		s += fmt.Sprintf("%-3s=%08x %-3s=%08x %-3s=%08x %-3s=%08x\n",
			regLabel(i), r.R[i], regLabel(i+1), r.R[i+1],
			regLabel(i+2), r.R[i+2], regLabel(i+3), r.R[i+3])
	}
	s += fmt.Sprintf("cpsr=%08x [%s]", uint32(r.CPSR), r.CPSR)
	return s
}

func regLabel(i int) string {
	switch uint8(i) {
	case RegSP:
		return "sp"
	case RegLR:
		return "lr"
	case RegPC:
		return "pc"
	}
	return fmt.Sprintf("r%d", i)
}
