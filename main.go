// Package main provides the entry point for a32sim.
// a32sim is a functional emulator for the ARMv4 data-processing instructions.
//
// For the full CLI, use: go run ./cmd/a32sim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("a32sim - ARMv4 Data-Processing Emulator")
	fmt.Println("")
	fmt.Println("Usage: a32sim [options] <program>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  -config     Path to configuration JSON file")
	fmt.Println("  -entry      Override entry point")
	fmt.Println("  -max        Stop after this many instructions")
	fmt.Println("  -trace      Print each executed instruction")
	fmt.Println("  -step       Single-step interactively")
	fmt.Println("  -statsview  Serve runtime statistics (statsview builds)")
	fmt.Println("  -v          Verbose output")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/a32sim' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/a32sim' instead.")
	}
}
