//go:build !windows

package main

import (
	"os"

	"github.com/spf13/cast"
	"golang.org/x/sys/unix"
)

// terminalWidth reports the column count of f, falling back to $COLUMNS.
// Zero means unknown, e.g. when output is piped.
func terminalWidth(f *os.File) int {
	if ws, err := unix.IoctlGetWinsize(int(f.Fd()), unix.TIOCGWINSZ); err == nil && ws != nil && ws.Col > 0 {
		return int(ws.Col)
	}
	return columnsEnv()
}

func columnsEnv() int {
	if n := cast.ToInt(os.Getenv("COLUMNS")); n > 0 {
		return n
	}
	return 0
}
