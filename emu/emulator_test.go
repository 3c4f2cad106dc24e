package emu_test

import (
	"bytes"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/a32sim/emu"
)

var _ = Describe("Emulator", func() {
	var (
		e         *emu.Emulator
		stdoutBuf *bytes.Buffer
	)

	BeforeEach(func() {
		stdoutBuf = &bytes.Buffer{}
		e = emu.NewEmulator(
			emu.WithStdout(stdoutBuf),
		)
	})

	Describe("NewEmulator", func() {
		It("should create an emulator with initialized components", func() {
			Expect(e).NotTo(BeNil())
			Expect(e.RegFile()).NotTo(BeNil())
			Expect(e.Memory()).NotTo(BeNil())
			Expect(e.DecodeCache()).To(BeNil())
		})

		It("should apply the stack pointer option", func() {
			e = emu.NewEmulator(emu.WithStackPointer(0x8000))

			Expect(e.RegFile().SP()).To(Equal(uint32(0x8000)))
		})

		It("should use provided memory", func() {
			m := emu.NewMemory()
			m.Write32(0x40, 0xE3A0002A)

			e = emu.NewEmulator(emu.WithMemory(m))

			Expect(e.Memory()).To(BeIdenticalTo(m))
		})
	})

	Describe("LoadProgram", func() {
		It("should set the PC to the entry point", func() {
			e.LoadProgram(0x1000, []byte{0x00, 0x00, 0x00, 0x00})

			Expect(e.RegFile().PC()).To(Equal(uint32(0x1000)))
		})

		It("should load program bytes into memory", func() {
			e.LoadProgram(0x2000, []byte{0xDE, 0xAD, 0xBE, 0xEF})

			Expect(e.Memory().Read8(0x2000)).To(Equal(byte(0xDE)))
			Expect(e.Memory().Read32(0x2000)).To(Equal(uint32(0xEFBEADDE)))
		})
	})

	Describe("Step", func() {
		It("should execute and advance the PC by 4", func() {
			e.LoadProgram(0x1000, wordsToBytes(0xE3A00005)) // MOV r0, #5

			result := e.Step()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Exited).To(BeFalse())
			Expect(e.RegFile().ReadReg(0)).To(Equal(uint32(5)))
			Expect(e.RegFile().PC()).To(Equal(uint32(0x1004)))
			Expect(e.InstructionCount()).To(Equal(uint64(1)))
		})

		It("should read the pc 8 bytes ahead", func() {
			e.LoadProgram(0x1000, wordsToBytes(0xE28F0000)) // ADD r0, pc, #0

			e.Step()

			Expect(e.RegFile().ReadReg(0)).To(Equal(uint32(0x1008)))
			Expect(e.RegFile().PC()).To(Equal(uint32(0x1004)))
		})

		It("should branch on a write to the pc", func() {
			e.RegFile().WriteReg(14, 0x3000)
			e.LoadProgram(0x1000, wordsToBytes(0xE1A0F00E)) // MOV pc, lr

			e.Step()

			Expect(e.RegFile().PC()).To(Equal(uint32(0x3000)))
		})

		It("should fall through a skipped write to the pc", func() {
			e.RegFile().WriteReg(14, 0x3000)
			e.LoadProgram(0x1000, wordsToBytes(0x01A0F00E)) // MOVEQ pc, lr

			e.Step()

			Expect(e.RegFile().PC()).To(Equal(uint32(0x1004)))
		})

		It("should stop on an illegal condition with state untouched", func() {
			e.LoadProgram(0x1000, wordsToBytes(0xF3A00001))
			before := *e.RegFile()

			result := e.Step()

			Expect(result.Err).To(MatchError(emu.ErrIllegalCondition))
			Expect(*e.RegFile()).To(Equal(before))
			Expect(e.InstructionCount()).To(Equal(uint64(0)))
		})

		It("should stop on an unsupported instruction with the pc on it", func() {
			e.LoadProgram(0x1000, wordsToBytes(0xE5910000)) // LDR r0, [r1]

			result := e.Step()

			Expect(result.Err).To(MatchError(emu.ErrUnsupportedInstruction))
			Expect(result.Err.Error()).To(ContainSubstring("PC=0x00001000"))
			Expect(e.RegFile().PC()).To(Equal(uint32(0x1000)))
		})

		It("should stop on an illegal destination", func() {
			e.LoadProgram(0x1000, wordsToBytes(0xE1B0F00E)) // MOVS pc, lr

			result := e.Step()

			Expect(result.Err).To(MatchError(emu.ErrIllegalDestination))
		})

		It("should trace executed instructions", func() {
			trace := &bytes.Buffer{}
			e = emu.NewEmulator(emu.WithTrace(trace))
			e.LoadProgram(0x1000, wordsToBytes(0xE3B00000)) // MOVS r0, #0

			e.Step()

			Expect(trace.String()).To(ContainSubstring("00001000: e3b00000  MOVS r0, #0x0"))
			Expect(trace.String()).To(ContainSubstring("[nZcvq]"))
		})
	})

	Describe("Run", func() {
		It("should run until the exit syscall", func() {
			e.LoadProgram(0x1000, wordsToBytes(
				0xE3A00005, // MOV r0, #5
				0xE3A01003, // MOV r1, #3
				0xE0500001, // SUBS r0, r0, r1
				0x13A02001, // MOVNE r2, #1
				0x03A03001, // MOVEQ r3, #1
				0xE3A07001, // MOV r7, #1
				0xEF000000, // SWI #0
			))

			result := e.Run()

			Expect(result.Err).NotTo(HaveOccurred())
			Expect(result.Exited).To(BeTrue())
			Expect(result.ExitCode).To(Equal(int64(2)))
			Expect(e.RegFile().ReadReg(2)).To(Equal(uint32(1)))
			Expect(e.RegFile().ReadReg(3)).To(Equal(uint32(0)))
			Expect(e.InstructionCount()).To(Equal(uint64(7)))
			Expect(e.RegFile().PC()).To(Equal(uint32(0x101C)))
		})

		It("should write to stdout through the write syscall", func() {
			e.Memory().LoadProgram(0x2000, []byte("hi\n"))
			e.LoadProgram(0x1000, wordsToBytes(
				0xE3A00001, // MOV r0, #1
				0xE3A01A02, // MOV r1, #0x2000
				0xE3A02003, // MOV r2, #3
				0xE3A07004, // MOV r7, #4
				0xEF000000, // SWI #0
				0xE3A07001, // MOV r7, #1
				0xEF000000, // SWI #0
			))

			result := e.Run()

			Expect(result.Exited).To(BeTrue())
			Expect(result.ExitCode).To(Equal(int64(3)))
			Expect(stdoutBuf.String()).To(Equal("hi\n"))
		})

		It("should survive a write syscall with a huge count", func() {
			e.Memory().LoadProgram(0x2000, []byte("hi"))
			e.LoadProgram(0x1000, wordsToBytes(
				0xE3A00001, // MOV r0, #1
				0xE3A01A02, // MOV r1, #0x2000
				0xE3E0200F, // MVN r2, #0xf
				0xE3A07004, // MOV r7, #4
				0xEF000000, // SWI #0
			))

			var result emu.StepResult
			for i := 0; i < 5; i++ {
				result = e.Step()
				Expect(result.Err).NotTo(HaveOccurred())
			}

			Expect(result.Exited).To(BeFalse())
			Expect(e.RegFile().ReadReg(0)).To(Equal(uint32(emu.MaxWriteCount)))
			Expect(stdoutBuf.String()).To(HavePrefix("hi"))
			Expect(e.RegFile().PC()).To(Equal(uint32(0x1014)))
		})

		It("should stop at the instruction limit", func() {
			e = emu.NewEmulator(emu.WithMaxInstructions(5))
			e.LoadProgram(0x1000, wordsToBytes(0xE3A0FA01)) // MOV pc, #0x1000

			result := e.Run()

			Expect(result.Err).To(MatchError(emu.ErrMaxInstructions))
			Expect(e.InstructionCount()).To(Equal(uint64(5)))
		})

		It("should serve a loop from the decode cache", func() {
			e = emu.NewEmulator(emu.WithMaxInstructions(10), emu.WithDecodeCache(0, 0))
			e.LoadProgram(0x1000, wordsToBytes(0xE3A0FA01)) // MOV pc, #0x1000

			e.Run()

			Expect(e.DecodeCache().Stats().Misses).To(Equal(uint64(1)))
			Expect(e.DecodeCache().Stats().Hits).To(Equal(uint64(9)))
		})
	})
})

var _ = Describe("Memory", func() {
	var m *emu.Memory

	BeforeEach(func() {
		m = emu.NewMemory()
	})

	It("should read zero from untouched memory", func() {
		Expect(m.Read32(0xFFFF0000)).To(Equal(uint32(0)))
	})

	It("should store words little-endian", func() {
		m.Write32(0x100, 0x11223344)

		Expect(m.Read8(0x100)).To(Equal(byte(0x44)))
		Expect(m.Read8(0x103)).To(Equal(byte(0x11)))
		Expect(m.Read32(0x100)).To(Equal(uint32(0x11223344)))
	})

	It("should handle words across a page boundary", func() {
		m.Write32(0x0FFE, 0xAABBCCDD)

		Expect(m.Read32(0x0FFE)).To(Equal(uint32(0xAABBCCDD)))
	})
})

var _ = Describe("DefaultSyscallHandler", func() {
	var (
		regFile *emu.RegFile
		memory  *emu.Memory
		stdout  *bytes.Buffer
		stderr  *bytes.Buffer
		handler *emu.DefaultSyscallHandler
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		memory = emu.NewMemory()
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
		handler = emu.NewDefaultSyscallHandler(regFile, memory, stdout, stderr)
	})

	It("should exit with a signed status", func() {
		regFile.WriteReg(7, emu.SyscallExit)
		regFile.WriteReg(0, 0xFFFFFFFF)

		result := handler.Handle()

		Expect(result.Exited).To(BeTrue())
		Expect(result.ExitCode).To(Equal(int64(-1)))
	})

	It("should write to stderr", func() {
		memory.LoadProgram(0x100, []byte("oops"))
		regFile.WriteReg(7, emu.SyscallWrite)
		regFile.WriteReg(0, 2)
		regFile.WriteReg(1, 0x100)
		regFile.WriteReg(2, 4)

		result := handler.Handle()

		Expect(result.Exited).To(BeFalse())
		Expect(stderr.String()).To(Equal("oops"))
		Expect(regFile.ReadReg(0)).To(Equal(uint32(4)))
	})

	It("should write a buffer spanning several chunks", func() {
		data := bytes.Repeat([]byte("0123456789"), 1000)
		memory.LoadProgram(0x2000, data)
		regFile.WriteReg(7, emu.SyscallWrite)
		regFile.WriteReg(0, 1)
		regFile.WriteReg(1, 0x2000)
		regFile.WriteReg(2, uint32(len(data)))

		handler.Handle()

		Expect(stdout.Bytes()).To(Equal(data))
		Expect(regFile.ReadReg(0)).To(Equal(uint32(len(data))))
	})

	It("should cap a huge count at MaxWriteCount", func() {
		memory.LoadProgram(0x1000, []byte("hi"))
		regFile.WriteReg(7, emu.SyscallWrite)
		regFile.WriteReg(0, 1)
		regFile.WriteReg(1, 0x1000)
		regFile.WriteReg(2, 0xFFFFFFF0)

		result := handler.Handle()

		Expect(result.Exited).To(BeFalse())
		Expect(regFile.ReadReg(0)).To(Equal(uint32(emu.MaxWriteCount)))
		Expect(stdout.Len()).To(Equal(emu.MaxWriteCount))
		Expect(stdout.String()).To(HavePrefix("hi\x00"))
	})

	It("should return EIO when the writer fails", func() {
		handler = emu.NewDefaultSyscallHandler(regFile, memory, failingWriter{}, stderr)
		regFile.WriteReg(7, emu.SyscallWrite)
		regFile.WriteReg(0, 1)
		regFile.WriteReg(1, 0x1000)
		regFile.WriteReg(2, 4)

		handler.Handle()

		Expect(int32(regFile.ReadReg(0))).To(Equal(int32(-emu.EIO)))
		Expect(stderr.Len()).To(BeZero())
	})

	It("should reject unknown file descriptors", func() {
		regFile.WriteReg(7, emu.SyscallWrite)
		regFile.WriteReg(0, 5)

		handler.Handle()

		Expect(int32(regFile.ReadReg(0))).To(Equal(int32(-emu.EBADF)))
	})

	It("should reject unknown syscalls", func() {
		regFile.WriteReg(7, 999)

		result := handler.Handle()

		Expect(result.Exited).To(BeFalse())
		Expect(int32(regFile.ReadReg(0))).To(Equal(int32(-emu.ENOSYS)))
	})
})

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}
