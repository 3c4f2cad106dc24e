package insts

import (
	"fmt"
	"strings"
)

// RegName returns the assembler name of a register index.
func RegName(r uint8) string {
	switch r {
	case 13:
		return "sp"
	case 14:
		return "lr"
	case 15:
		return "pc"
	default:
		return fmt.Sprintf("r%d", r)
	}
}

// String renders the instruction in UAL syntax, e.g. "ADDSNE r0, r1, #0xff".
// Unsupported words are rendered as a .word directive.
func (i *Instruction) String() string {
	if i.Format != FormatDataProc {
		return fmt.Sprintf(".word 0x%08x", i.Word)
	}

	var sb strings.Builder
	sb.WriteString(i.Op.String())

	// The comparison ops always set flags, the S is implied.
	if i.SetFlags && i.Op.WritesResult() {
		sb.WriteByte('S')
	}
	if i.Cond != CondAL {
		sb.WriteString(i.Cond.String())
	}
	sb.WriteByte(' ')

	switch {
	case !i.Op.WritesResult():
		sb.WriteString(RegName(i.Rn))
	case !i.Op.UsesRn():
		sb.WriteString(RegName(i.Rd))
	default:
		sb.WriteString(RegName(i.Rd))
		sb.WriteString(", ")
		sb.WriteString(RegName(i.Rn))
	}

	sb.WriteString(", ")
	sb.WriteString(i.Operand2.String())

	return sb.String()
}

func (o Operand2) String() string {
	switch o.Kind {
	case Operand2Imm:
		return fmt.Sprintf("#0x%x", o.ImmValue())
	case Operand2RegRegShift:
		return fmt.Sprintf("%s, %s %s", RegName(o.Rm), o.ShiftType, RegName(o.Rs))
	}

	switch {
	case o.IsRRX():
		return RegName(o.Rm) + ", rrx"
	case o.ShiftAmount == 0 && o.ShiftType == ShiftLSL:
		return RegName(o.Rm)
	case o.ShiftAmount == 0:
		// LSR #0 and ASR #0 encode a shift by 32
		return fmt.Sprintf("%s, %s #32", RegName(o.Rm), o.ShiftType)
	default:
		return fmt.Sprintf("%s, %s #%d", RegName(o.Rm), o.ShiftType, o.ShiftAmount)
	}
}
