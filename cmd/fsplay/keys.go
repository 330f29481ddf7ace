//go:build !windows

// keys.go - raw-mode terminal keyboard input for fsplay

package main

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"golang.org/x/term"

	formatsynth "github.com/intuitionamiga/FormatSynth"
)

// keyNotes maps the two tracker-style keyboard rows onto semitone offsets
// from the C of the current octave.
var keyNotes = map[byte]int{
	'z': 0, 's': 1, 'x': 2, 'd': 3, 'c': 4, 'v': 5,
	'g': 6, 'b': 7, 'h': 8, 'n': 9, 'j': 10, 'm': 11,
	'q': 12, '2': 13, 'w': 14, '3': 15, 'e': 16, 'r': 17,
	'5': 18, 't': 19, '6': 20, 'y': 21, '7': 22, 'u': 23,
}

// runKeyboard puts stdin into raw non-blocking mode and turns key presses
// into notes. Terminals report no key releases, so every note is released
// by a timer after hold elapses; a newer note on the same voice cancels the
// stale release.
func runKeyboard(ctx context.Context, pool *voicePool, hold time.Duration) error {
	fd := int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	if err := syscall.SetNonblock(fd, true); err != nil {
		return fmt.Errorf("failed to set nonblocking stdin: %w", err)
	}
	defer syscall.SetNonblock(fd, false)

	octave := 4 // C-4 = MIDI note 48 on the lower row
	buf := make([]byte, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, err := syscall.Read(fd, buf)
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil {
			return err
		}
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
			continue
		}

		switch b := buf[0]; b {
		case 0x1B, 0x03: // esc or ctrl-c
			pool.AllNotesOff()
			return nil
		case ' ':
			pool.AllNotesOff()
		case '+':
			if octave < 8 {
				octave++
			}
		case '-':
			if octave > 0 {
				octave--
			}
		case ',':
			v := pool.NudgeParam(formatsynth.PARAM_VOLUME, -1.0/16)
			fmt.Printf("\rvolume %.2f   ", v)
		case '.':
			v := pool.NudgeParam(formatsynth.PARAM_VOLUME, 1.0/16)
			fmt.Printf("\rvolume %.2f   ", v)
		case '[':
			v := pool.NudgeParam(formatsynth.PARAM_VIB_DEPTH, -1.0/16)
			fmt.Printf("\rvib depth %.2f", v)
		case ']':
			v := pool.NudgeParam(formatsynth.PARAM_VIB_DEPTH, 1.0/16)
			fmt.Printf("\rvib depth %.2f", v)
		default:
			offset, ok := keyNotes[b]
			if !ok {
				continue
			}
			note := octave*12 + offset
			if note > 127 {
				continue
			}
			h, gen := pool.NoteOn(note, 100)
			if h < 0 {
				continue
			}
			time.AfterFunc(hold, func() {
				pool.ReleaseIfCurrent(h, gen)
			})
		}
	}
}
