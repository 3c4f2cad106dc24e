// Package insts provides ARMv4 data-processing instruction definitions and
// decoding.
//
// This package turns 32-bit ARM machine words into structured instruction
// representations. It supports:
//   - Data Processing: AND, EOR, SUB, RSB, ADD, ADC, SBC, RSC, TST, TEQ,
//     CMP, CMN, ORR, MOV, BIC, MVN
//   - Operand2 in rotated-immediate, immediate-shift and register-shift form
//   - Classification of every other instruction class as unsupported
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0xE2810005) // ADD r0, r1, #5
//	fmt.Printf("Op: %v, Rd: %d, Rn: %d\n", inst.Op, inst.Rd, inst.Rn)
package insts
