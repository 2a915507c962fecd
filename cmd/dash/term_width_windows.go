//go:build windows

package main

import (
	"os"

	"github.com/spf13/cast"
)

func terminalWidth(_ *os.File) int {
	if n := cast.ToInt(os.Getenv("COLUMNS")); n > 0 {
		return n
	}
	return 0
}
