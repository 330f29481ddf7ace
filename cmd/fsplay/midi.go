// midi.go - MIDI input for fsplay via portmidi

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rakyll/portmidi"

	formatsynth "github.com/intuitionamiga/FormatSynth"
)

// runMIDI polls a MIDI input device (the system default when device is
// negative) and drives the voice pool with its note events. Controller 1
// (mod wheel) maps to vibrato depth and controller 7 to volume.
func runMIDI(ctx context.Context, pool *voicePool, device int) error {
	if err := portmidi.Initialize(); err != nil {
		return fmt.Errorf("portmidi: %w", err)
	}
	defer portmidi.Terminate()

	id := portmidi.DefaultInputDeviceID()
	if device >= 0 {
		id = portmidi.DeviceID(device)
		info := portmidi.Info(id)
		if info == nil || !info.IsInputAvailable {
			return fmt.Errorf("MIDI device %d is not an available input", device)
		}
	}
	if id < 0 {
		return fmt.Errorf("no MIDI input device found")
	}

	in, err := portmidi.NewInputStream(id, 1024)
	if err != nil {
		return fmt.Errorf("portmidi: %w", err)
	}
	defer in.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		events, err := in.Read(1024)
		if err != nil {
			return fmt.Errorf("portmidi read: %w", err)
		}
		if len(events) == 0 {
			time.Sleep(5 * time.Millisecond)
			continue
		}

		for _, event := range events {
			// Ignore the channel nibble; fsplay is omni.
			switch event.Status & 0xF0 {
			case 0x90:
				note := int(event.Data1)
				vel := int(event.Data2)
				if vel == 0 {
					// Running-status note-off.
					pool.NoteOff(note)
					break
				}
				pool.NoteOn(note, vel)
			case 0x80:
				pool.NoteOff(int(event.Data1))
			case 0xB0:
				value := float32(event.Data2) / 127.0
				switch event.Data1 {
				case 1:
					pool.SetParamAll(formatsynth.PARAM_VIB_DEPTH, value)
				case 7:
					pool.SetParamAll(formatsynth.PARAM_VOLUME, value)
				case 120, 123: // all sound off / all notes off
					pool.AllNotesOff()
				}
			}
		}
	}
}
