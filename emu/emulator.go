package emu

import (
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/a32sim/insts"
)

// pcPrefetchOffset is how far ahead of the executing instruction the PC
// reads, because of the three-stage fetch/decode/execute pipeline.
const pcPrefetchOffset = 8

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Exited is true if the program terminated (via exit syscall).
	Exited bool

	// ExitCode is the exit status if Exited is true.
	ExitCode int64

	// Err is set if an error occurred during execution.
	Err error
}

// Emulator drives the fetch/decode/execute loop over a Memory.
type Emulator struct {
	regFile        *RegFile
	memory         *Memory
	decoder        *insts.Decoder
	decodeCache    *insts.DecodeCache
	executor       *Executor
	syscallHandler SyscallHandler

	// I/O
	stdout io.Writer
	stderr io.Writer
	trace  io.Writer

	// Execution state
	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stdout = w
	}
}

// WithStderr sets a custom stderr writer.
func WithStderr(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.stderr = w
	}
}

// WithTrace writes one line per executed instruction to w.
func WithTrace(w io.Writer) EmulatorOption {
	return func(e *Emulator) {
		e.trace = w
	}
}

// WithSyscallHandler sets a custom syscall handler.
func WithSyscallHandler(handler SyscallHandler) EmulatorOption {
	return func(e *Emulator) {
		e.syscallHandler = handler
	}
}

// WithMemory uses the given memory instead of an empty one.
func WithMemory(m *Memory) EmulatorOption {
	return func(e *Emulator) {
		e.memory = m
	}
}

// WithStackPointer sets the initial stack pointer value.
func WithStackPointer(sp uint32) EmulatorOption {
	return func(e *Emulator) {
		e.regFile.WriteReg(RegSP, sp)
	}
}

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// WithDecodeCache memoizes decoded instructions by address. Non-positive
// sizes select the defaults.
func WithDecodeCache(sets, ways int) EmulatorOption {
	return func(e *Emulator) {
		e.decodeCache = insts.NewDecodeCache(sets, ways)
	}
}

// NewEmulator creates a new ARM emulator.
func NewEmulator(opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile: &RegFile{},
		memory:  NewMemory(),
		decoder: insts.NewDecoder(),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	// Apply options first (may set memory/stdout/stderr)
	for _, opt := range opts {
		opt(e)
	}

	e.executor = NewExecutor(e.regFile)

	if e.syscallHandler == nil {
		e.syscallHandler = NewDefaultSyscallHandler(e.regFile, e.memory, e.stdout, e.stderr)
	}

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// Memory returns the emulator's memory.
func (e *Emulator) Memory() *Memory {
	return e.memory
}

// DecodeCache returns the decode cache, or nil if it is disabled.
func (e *Emulator) DecodeCache() *insts.DecodeCache {
	return e.decodeCache
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// LoadProgram loads program bytes at entry and sets the PC to it.
func (e *Emulator) LoadProgram(entry uint32, program []byte) {
	e.memory.LoadProgram(entry, program)
	e.regFile.SetPC(entry)
}

// Step executes a single instruction.
// Returns a StepResult indicating whether execution should continue.
func (e *Emulator) Step() StepResult {
	// Check instruction limit before executing
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{
			Err: fmt.Errorf("%w (%d)", ErrMaxInstructions, e.maxInstructions),
		}
	}

	// 1. Fetch
	pc := e.regFile.PC()
	word := e.memory.Read32(pc)

	// 2. Decode
	inst := e.decode(pc, word)

	// 3. Execute
	result := e.execute(pc, inst)
	if result.Err != nil {
		return result
	}

	e.instructionCount++

	if e.trace != nil {
		_, _ = fmt.Fprintf(e.trace, "%08x: %08x  %-28s [%s]\n",
			pc, word, inst, e.regFile.CPSR)
	}

	return result
}

// Run executes instructions until the program exits or an error occurs.
func (e *Emulator) Run() StepResult {
	for {
		result := e.Step()
		if result.Exited || result.Err != nil {
			return result
		}
	}
}

func (e *Emulator) decode(pc, word uint32) *insts.Instruction {
	if e.decodeCache != nil {
		return e.decodeCache.Decode(pc, word)
	}
	return e.decoder.Decode(word)
}

// execute runs inst, fetched from pc, and advances the PC. On error the
// register file is left exactly as it was before the fetch.
func (e *Emulator) execute(pc uint32, inst *insts.Instruction) StepResult {
	pass, err := EvaluateCondition(inst.Cond, e.regFile.CPSR)
	if err != nil {
		return StepResult{Err: fmt.Errorf("at PC=0x%08X: %w", pc, err)}
	}

	if pass && isSWI(inst.Word) {
		e.regFile.SetPC(pc + 4)
		sys := e.syscallHandler.Handle()
		return StepResult{Exited: sys.Exited, ExitCode: sys.ExitCode}
	}

	e.regFile.SetPC(pc + pcPrefetchOffset)

	if err := e.executor.Execute(inst); err != nil {
		e.regFile.SetPC(pc)
		return StepResult{Err: fmt.Errorf("at PC=0x%08X: %w", pc, err)}
	}

	// A taken write to R15 is a branch; everything else falls through.
	if !pass || !WritesPC(inst) {
		e.regFile.SetPC(pc + 4)
	}

	return StepResult{}
}

// isSWI checks for a software interrupt: bits [27:24] == 0b1111.
func isSWI(word uint32) bool {
	return (word>>24)&0xF == 0xF
}
