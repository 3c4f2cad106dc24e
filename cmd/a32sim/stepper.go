package main

import (
	"fmt"
	"io"

	"github.com/pkg/term"

	"github.com/sarchlab/a32sim/emu"
	"github.com/sarchlab/a32sim/insts"
)

const stepperHelp = "[s]tep  [r]egisters  [c]ontinue  [q]uit"

// stepper drives an emulator one key press at a time.
type stepper struct {
	emulator *emu.Emulator
	decoder  *insts.Decoder
	in       io.Reader
	out      io.Writer
}

// runInteractive puts the controlling terminal into cbreak mode and steps
// the emulator on each key press.
func runInteractive(emulator *emu.Emulator) (emu.StepResult, error) {
	tty, err := term.Open("/dev/tty", term.CBreakMode)
	if err != nil {
		return emu.StepResult{}, fmt.Errorf("failed to open terminal: %w", err)
	}
	defer func() {
		_ = tty.Restore()
		_ = tty.Close()
	}()

	s := &stepper{
		emulator: emulator,
		decoder:  insts.NewDecoder(),
		in:       tty,
		out:      tty,
	}

	return s.run(), nil
}

// run returns when the program stops, the user quits or input ends.
func (s *stepper) run() emu.StepResult {
	fmt.Fprintf(s.out, "%s\n", stepperHelp)

	key := make([]byte, 1)
	for {
		s.printNext()

		if _, err := s.in.Read(key); err != nil {
			return emu.StepResult{}
		}

		switch key[0] {
		case 's', ' ', '\n', '\r':
			result := s.emulator.Step()
			if result.Exited || result.Err != nil {
				return result
			}
		case 'r':
			fmt.Fprintf(s.out, "%s\n", s.emulator.RegFile())
		case 'c':
			return s.emulator.Run()
		case 'q':
			return emu.StepResult{}
		default:
			fmt.Fprintf(s.out, "%s\n", stepperHelp)
		}
	}
}

func (s *stepper) printNext() {
	pc := s.emulator.RegFile().PC()
	word := s.emulator.Memory().Read32(pc)
	fmt.Fprintf(s.out, "%08x: %08x  %s\n", pc, word, s.decoder.Decode(word))
}
