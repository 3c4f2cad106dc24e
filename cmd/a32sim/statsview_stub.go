//go:build !statsview

package main

import "io"

func launchStatsview(_ io.Writer) {}

func statsviewAvailable() bool {
	return false
}
