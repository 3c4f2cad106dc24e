package emu

import (
	"io"
)

// ARM EABI Linux syscall numbers.
const (
	SyscallExit  uint32 = 1 // exit(status)
	SyscallWrite uint32 = 4 // write(fd, buf, count)
)

// Linux error codes, returned negated in r0.
const (
	EIO    = 5  // I/O error
	EBADF  = 9  // Bad file descriptor
	ENOSYS = 38 // Function not implemented
)

// MaxWriteCount caps the bytes a single write syscall transfers. Larger
// requests are short writes, as on Linux.
const MaxWriteCount = 1 << 20

// writeChunkSize is the size of the staging buffer for guest writes.
const writeChunkSize = 4096

// SyscallResult represents the result of a syscall execution.
type SyscallResult struct {
	// Exited is true if the syscall caused program termination.
	Exited bool

	// ExitCode is the exit status if Exited is true.
	ExitCode int64
}

// SyscallHandler handles SWI instructions.
type SyscallHandler interface {
	// Handle executes the syscall indicated by the register file state.
	// ARM EABI convention:
	//   - Syscall number in r7
	//   - Arguments in r0-r5
	//   - Return value in r0
	Handle() SyscallResult
}

// DefaultSyscallHandler supports exit and write to stdout/stderr.
type DefaultSyscallHandler struct {
	regFile *RegFile
	memory  *Memory
	stdout  io.Writer
	stderr  io.Writer
}

// NewDefaultSyscallHandler creates a default syscall handler.
func NewDefaultSyscallHandler(regFile *RegFile, memory *Memory, stdout, stderr io.Writer) *DefaultSyscallHandler {
	return &DefaultSyscallHandler{
		regFile: regFile,
		memory:  memory,
		stdout:  stdout,
		stderr:  stderr,
	}
}

// Handle executes the syscall indicated by the register file state.
func (h *DefaultSyscallHandler) Handle() SyscallResult {
	switch h.regFile.ReadReg(7) {
	case SyscallExit:
		return SyscallResult{
			Exited:   true,
			ExitCode: int64(int32(h.regFile.ReadReg(0))),
		}
	case SyscallWrite:
		h.handleWrite()
	default:
		h.setReturn(-ENOSYS)
	}
	return SyscallResult{}
}

// handleWrite handles write(fd, buf, count) for fds 1 and 2. Guest memory
// is staged through a fixed-size buffer.
func (h *DefaultSyscallHandler) handleWrite() {
	fd := h.regFile.ReadReg(0)
	addr := h.regFile.ReadReg(1)
	count := h.regFile.ReadReg(2)

	var w io.Writer
	switch fd {
	case 1:
		w = h.stdout
	case 2:
		w = h.stderr
	default:
		h.setReturn(-EBADF)
		return
	}

	if count > MaxWriteCount {
		count = MaxWriteCount
	}

	var chunk [writeChunkSize]byte
	var written uint32
	for written < count {
		n := count - written
		if n > writeChunkSize {
			n = writeChunkSize
		}
		for i := uint32(0); i < n; i++ {
			chunk[i] = h.memory.Read8(addr + written + i)
		}

		if _, err := w.Write(chunk[:n]); err != nil {
			h.setReturn(-EIO)
			return
		}
		written += n
	}

	h.setReturn(int32(written))
}

func (h *DefaultSyscallHandler) setReturn(v int32) {
	h.regFile.WriteReg(0, uint32(v))
}
