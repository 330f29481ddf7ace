//go:build windows

// keys_windows.go - keyboard input stub for Windows builds

package main

import (
	"context"
	"fmt"
	"os"
	"time"
)

// runKeyboard has no Windows implementation: key handling relies on POSIX
// raw-mode non-blocking stdin. MIDI input still works, so this parks until
// the session ends.
func runKeyboard(ctx context.Context, pool *voicePool, hold time.Duration) error {
	fmt.Fprintln(os.Stderr, "fsplay: keyboard input is not supported on Windows; use -midi")
	<-ctx.Done()
	return nil
}
