// Package loader reads ARM program images for the emulator.
package loader

import (
	"bytes"
	"debug/elf"
	"fmt"
	"io"
	"os"
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// DefaultStackTop is the initial stack pointer given to loaded programs.
const DefaultStackTop = 0x00100000

// MaxSegmentSize bounds the in-memory size of a single ELF segment.
const MaxSegmentSize = 256 << 20

// bssChunkSize is the size of the zero buffer used to clear BSS.
const bssChunkSize = 4096

// Segment is a contiguous block of the program image.
type Segment struct {
	// VirtAddr is the address where this segment should be loaded.
	VirtAddr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program is a loaded image ready to be copied into emulator memory.
type Program struct {
	// EntryPoint is the address where execution should begin.
	EntryPoint uint32
	// Segments contains all loadable segments.
	Segments []Segment
	// InitialSP is the initial stack pointer value.
	InitialSP uint32
}

// MemoryWriter receives segment bytes.
type MemoryWriter interface {
	LoadProgram(addr uint32, data []byte)
}

// LoadInto copies every segment into mem. The BSS tail of a segment is
// written as zeros.
func (p *Program) LoadInto(mem MemoryWriter) {
	var zeros [bssChunkSize]byte

	for _, seg := range p.Segments {
		if len(seg.Data) > 0 {
			mem.LoadProgram(seg.VirtAddr, seg.Data)
		}

		filled := uint32(len(seg.Data))
		for filled < seg.MemSize {
			n := min(seg.MemSize-filled, bssChunkSize)
			mem.LoadProgram(seg.VirtAddr+filled, zeros[:n])
			filled += n
		}
	}
}

// Size returns the number of bytes the program occupies in memory.
func (p *Program) Size() uint32 {
	var total uint32
	for _, seg := range p.Segments {
		total += seg.MemSize
	}
	return total
}

// Load reads an ELF file or, when the file has no ELF magic, a raw binary
// placed at rawBase.
func Load(path string, rawBase uint32) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program: %w", err)
	}
	defer func() { _ = f.Close() }()

	magic := make([]byte, len(elf.ELFMAG))
	n, err := io.ReadFull(f, magic)
	if err == nil && bytes.Equal(magic[:n], []byte(elf.ELFMAG)) {
		return LoadELF(path)
	}

	return LoadRaw(path, rawBase)
}

// LoadRaw reads a flat binary image to be placed at base. Execution starts
// at base.
func LoadRaw(path string, base uint32) (*Program, error) {
	if base%4 != 0 {
		return nil, fmt.Errorf("raw load address 0x%x is not word aligned", base)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw binary: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("raw binary %s is empty", path)
	}
	if uint64(base)+uint64(len(data)) > 1<<32 {
		return nil, fmt.Errorf("raw binary does not fit at 0x%x", base)
	}

	return &Program{
		EntryPoint: base,
		InitialSP:  DefaultStackTop,
		Segments: []Segment{{
			VirtAddr: base,
			Data:     data,
			MemSize:  uint32(len(data)),
			Flags:    SegmentFlagRead | SegmentFlagWrite | SegmentFlagExecute,
		}},
	}, nil
}

// LoadELF parses a little-endian 32-bit ARM ELF executable.
func LoadELF(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file")
	}

	if f.Data != elf.ELFDATA2LSB {
		return nil, fmt.Errorf("not a little-endian ELF file")
	}

	if f.Machine != elf.EM_ARM {
		return nil, fmt.Errorf("not an ARM ELF file (machine type: %v)", f.Machine)
	}

	// Bit 0 of the entry selects Thumb state.
	if f.Entry&1 != 0 {
		return nil, fmt.Errorf("thumb entry point 0x%x is not supported", f.Entry)
	}

	prog := &Program{
		EntryPoint: uint32(f.Entry),
		InitialSP:  DefaultStackTop,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		if err := checkSegment(phdr); err != nil {
			return nil, err
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
			Flags:    segmentFlags(phdr.Flags),
		})
	}

	return prog, nil
}

func checkSegment(phdr *elf.Prog) error {
	if phdr.Filesz > phdr.Memsz {
		return fmt.Errorf("segment at 0x%x has file size 0x%x beyond its memory size 0x%x",
			phdr.Vaddr, phdr.Filesz, phdr.Memsz)
	}
	if phdr.Memsz > MaxSegmentSize {
		return fmt.Errorf("segment at 0x%x is too large (0x%x bytes)", phdr.Vaddr, phdr.Memsz)
	}
	if phdr.Vaddr+phdr.Memsz > 1<<32 {
		return fmt.Errorf("segment at 0x%x does not fit in the address space", phdr.Vaddr)
	}
	return nil
}

func segmentFlags(pf elf.ProgFlag) SegmentFlags {
	var flags SegmentFlags
	if pf&elf.PF_X != 0 {
		flags |= SegmentFlagExecute
	}
	if pf&elf.PF_W != 0 {
		flags |= SegmentFlagWrite
	}
	if pf&elf.PF_R != 0 {
		flags |= SegmentFlagRead
	}
	return flags
}
