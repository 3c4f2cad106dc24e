package insts

// Op represents a data-processing opcode. The values match the 4-bit
// opcode field of the instruction word.
type Op uint8

// Data-processing opcodes, in architectural encoding order.
const (
	OpAND Op = iota // Rd = Rn AND Op2
	OpEOR           // Rd = Rn EOR Op2
	OpSUB           // Rd = Rn - Op2
	OpRSB           // Rd = Op2 - Rn
	OpADD           // Rd = Rn + Op2
	OpADC           // Rd = Rn + Op2 + C
	OpSBC           // Rd = Rn - Op2 - NOT C
	OpRSC           // Rd = Op2 - Rn - NOT C
	OpTST           // flags of Rn AND Op2
	OpTEQ           // flags of Rn EOR Op2
	OpCMP           // flags of Rn - Op2
	OpCMN           // flags of Rn + Op2
	OpORR           // Rd = Rn OR Op2
	OpMOV           // Rd = Op2
	OpBIC           // Rd = Rn AND NOT Op2
	OpMVN           // Rd = NOT Op2
)

var opNames = [16]string{
	"AND", "EOR", "SUB", "RSB", "ADD", "ADC", "SBC", "RSC",
	"TST", "TEQ", "CMP", "CMN", "ORR", "MOV", "BIC", "MVN",
}

func (o Op) String() string {
	return opNames[o&0xF]
}

// IsLogical reports whether the opcode takes its carry flag from the
// barrel shifter and leaves V alone.
func (o Op) IsLogical() bool {
	switch o {
	case OpAND, OpEOR, OpTST, OpTEQ, OpORR, OpMOV, OpBIC, OpMVN:
		return true
	}
	return false
}

// IsAdditive reports whether the opcode computes flags as an addition.
func (o Op) IsAdditive() bool {
	return o == OpADD || o == OpADC || o == OpCMN
}

// IsSubtractive reports whether the opcode computes flags as a subtraction.
func (o Op) IsSubtractive() bool {
	switch o {
	case OpSUB, OpRSB, OpSBC, OpRSC, OpCMP:
		return true
	}
	return false
}

// WritesResult reports whether the opcode writes its result to Rd.
// TST, TEQ, CMP and CMN only update flags.
func (o Op) WritesResult() bool {
	return o < OpTST || o > OpCMN
}

// UsesRn reports whether the opcode reads its first operand from Rn.
func (o Op) UsesRn() bool {
	return o != OpMOV && o != OpMVN
}

// Format represents an instruction encoding class.
type Format uint8

// Instruction formats.
const (
	FormatUnsupported Format = iota // Branch, memory, multiply, PSR, coprocessor...
	FormatDataProc                  // Data Processing
)

// Cond represents an ARM condition code.
type Cond uint8

// ARM condition codes.
const (
	CondEQ Cond = 0b0000 // Equal (Z == 1)
	CondNE Cond = 0b0001 // Not Equal (Z == 0)
	CondCS Cond = 0b0010 // Carry Set / Unsigned higher or same (C == 1)
	CondCC Cond = 0b0011 // Carry Clear / Unsigned lower (C == 0)
	CondMI Cond = 0b0100 // Minus / Negative (N == 1)
	CondPL Cond = 0b0101 // Plus / Positive or zero (N == 0)
	CondVS Cond = 0b0110 // Overflow (V == 1)
	CondVC Cond = 0b0111 // No overflow (V == 0)
	CondHI Cond = 0b1000 // Unsigned higher (C == 1 && Z == 0)
	CondLS Cond = 0b1001 // Unsigned lower or same (C == 0 || Z == 1)
	CondGE Cond = 0b1010 // Signed greater than or equal (N == V)
	CondLT Cond = 0b1011 // Signed less than (N != V)
	CondGT Cond = 0b1100 // Signed greater than (Z == 0 && N == V)
	CondLE Cond = 0b1101 // Signed less than or equal (Z == 1 || N != V)
	CondAL Cond = 0b1110 // Always (unconditional)
	CondNV Cond = 0b1111 // Reserved, not a valid condition

	CondHS = CondCS
	CondLO = CondCC
)

var condNames = [15]string{
	"EQ", "NE", "CS", "CC", "MI", "PL", "VS", "VC",
	"HI", "LS", "GE", "LT", "GT", "LE", "AL",
}

// Valid reports whether c is one of the 15 defined condition codes.
func (c Cond) Valid() bool {
	return c < CondNV
}

func (c Cond) String() string {
	if !c.Valid() {
		return "NV"
	}
	return condNames[c]
}

// ShiftType represents a barrel shifter operation.
type ShiftType uint8

// Shift types.
const (
	ShiftLSL ShiftType = 0b00 // Logical shift left
	ShiftLSR ShiftType = 0b01 // Logical shift right
	ShiftASR ShiftType = 0b10 // Arithmetic shift right
	ShiftROR ShiftType = 0b11 // Rotate right (RRX when the immediate amount is 0)
)

var shiftNames = [4]string{"lsl", "lsr", "asr", "ror"}

func (s ShiftType) String() string {
	return shiftNames[s&0x3]
}

// Instruction represents a decoded ARM data-processing instruction.
type Instruction struct {
	Format Format // Encoding format
	Word   uint32 // Raw instruction word

	Cond     Cond  // Condition field, not validated by the decoder
	Op       Op    // Operation code
	SetFlags bool  // S bit
	Rn       uint8 // First operand register
	Rd       uint8 // Destination register

	Operand2 Operand2 // Second operand, resolved by the barrel shifter
}

// Decoder decodes ARM machine code into instructions.
type Decoder struct{}

// NewDecoder creates a new ARM instruction decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes a 32-bit ARM instruction word. It never fails: words that
// are not data-processing instructions come back as FormatUnsupported with
// only the condition field filled in.
func (d *Decoder) Decode(word uint32) *Instruction {
	inst := &Instruction{
		Format: FormatUnsupported,
		Word:   word,
		Cond:   Cond(word >> 28), // bits [31:28]
	}

	if d.isDataProcessing(word) {
		d.decodeDataProcessing(word, inst)
	}

	return inst
}

// isDataProcessing checks the encoding space shared with multiply, swap,
// halfword transfers and PSR transfers.
// Data processing: bits [27:26] == 0b00
func (d *Decoder) isDataProcessing(word uint32) bool {
	if (word>>26)&0x3 != 0b00 {
		return false
	}

	imm := (word>>25)&0x1 == 1
	bit7 := (word>>7)&0x1 == 1
	bit4 := (word>>4)&0x1 == 1

	// MUL/MLA, SWP, LDRH/STRH and friends: I=0, bit7=1, bit4=1
	if !imm && bit7 && bit4 {
		return false
	}

	// MRS/MSR/BX: comparison opcode without the S bit
	op := Op((word >> 21) & 0xF)
	s := (word>>20)&0x1 == 1
	if op >= OpTST && op <= OpCMN && !s {
		return false
	}

	return true
}

// decodeDataProcessing decodes the data-processing fields.
// Format: cond | 00 | I | opcode | S | Rn | Rd | operand2
func (d *Decoder) decodeDataProcessing(word uint32, inst *Instruction) {
	inst.Format = FormatDataProc

	imm := (word >> 25) & 0x1    // bit 25
	opcode := (word >> 21) & 0xF // bits [24:21]
	s := (word >> 20) & 0x1      // bit 20
	rn := (word >> 16) & 0xF     // bits [19:16]
	rd := (word >> 12) & 0xF     // bits [15:12]

	inst.Op = Op(opcode)
	inst.SetFlags = s == 1
	inst.Rn = uint8(rn)
	inst.Rd = uint8(rd)

	if imm == 1 {
		inst.Operand2 = decodeImmOperand(word)
	} else {
		inst.Operand2 = decodeRegOperand(word)
	}
}
