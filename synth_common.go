// synth_common.go - Shared constants, errors and helpers for the format synth engines

package formatsynth

import (
	"errors"
	"math"
)

// Timing and pool constants shared by every format engine
const (
	// TICKS_PER_SEC is the fixed tick rate driving envelope, vibrato and
	// arpeggio updates (the Amiga 50Hz frame rate), independent of the
	// audio sample rate.
	TICKS_PER_SEC = 50

	// MAX_PLAYERS is the number of voice slots in each engine context.
	MAX_PLAYERS = 8
)

// Shared parameter IDs for SetParam/GetParam. Values are normalised 0-1 and
// scaled onto each field's native integer range by the engine. IDs 10-15 are
// reserved; format-specific parameters start at PARAM_FORMAT_BASE.
const (
	PARAM_VOLUME = iota
	PARAM_ATTACK_SPEED
	PARAM_DECAY_SPEED
	PARAM_SUSTAIN_VOL
	PARAM_RELEASE_SPEED
	PARAM_VIB_SPEED
	PARAM_VIB_DEPTH
	PARAM_VIB_DELAY
	PARAM_ARP_SPEED
	PARAM_PORTAMENTO

	PARAM_FORMAT_BASE = 16
)

// Errors shared by every format engine. Decode errors are wrapped with the
// format's prefix ("soundmon: ...", "digmug: ..."), so errors.Is still
// matches the sentinel.
var (
	ErrInvalidHandle = errors.New("invalid player handle")
	ErrPoolExhausted = errors.New("player pool exhausted")
	ErrTooShort      = errors.New("instrument data too short")
	ErrInvalidHeader = errors.New("invalid instrument header")
	ErrUnsupported   = errors.New("unsupported instrument version")
)

// ErrorCode maps an engine error to the numeric code used by the historical
// hosts of these engines: -1 invalid argument/handle, -2 data too short,
// -3 invalid header, -4 unsupported version. Returns 0 for nil and -1 for
// anything unrecognised (fail closed).
func ErrorCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrTooShort):
		return -2
	case errors.Is(err, ErrInvalidHeader):
		return -3
	case errors.Is(err, ErrUnsupported):
		return -4
	default:
		return -1
	}
}

// volumeNorm normalises engine output to [-1,+1]: max envelope volume (64)
// times max signed 8-bit waveform amplitude (128).
const volumeNorm = 1.0 / (64.0 * 128.0)

// midiNoteToFreq converts a (possibly fractional) MIDI note number to a
// frequency in Hz. Standard equal temperament: A4 (note 69) = 440Hz.
func midiNoteToFreq(note float32) float32 {
	return 440.0 * float32(math.Pow(2.0, float64(note-69)/12.0))
}

// wavePhaseInc returns the per-sample phase increment that replays one
// waveLen-sample cycle at freq Hz.
func wavePhaseInc(freq float32, waveLen, sampleRate int) float32 {
	return freq * float32(waveLen) / float32(sampleRate)
}

// vibratoSine evaluates the 64-step vibrato LFO wheel at the given phase.
// A phase of 64 is one full sine cycle.
func vibratoSine(phase float32) float32 {
	return float32(math.Sin(float64(phase) * 6.283185307 / 64.0))
}

// velocityScale maps a MIDI velocity to a 0-1 volume scale. Velocity 0 falls
// back to a default of 64 rather than silence, so a sloppy host never
// triggers an inaudible note with a live envelope.
func velocityScale(velocity int) float32 {
	if velocity <= 0 {
		velocity = 64
	}
	if velocity > 127 {
		velocity = 127
	}
	return float32(velocity) / 127.0
}

// readUint32LE assembles a little-endian uint32 from four bytes at offset.
// Callers bounds-check data before calling.
func readUint32LE(data []byte, offset int) uint32 {
	return uint32(data[offset]) | uint32(data[offset+1])<<8 |
		uint32(data[offset+2])<<16 | uint32(data[offset+3])<<24
}

// putUint32LE writes v as four little-endian bytes at offset.
func putUint32LE(data []byte, offset int, v uint32) {
	data[offset] = byte(v)
	data[offset+1] = byte(v >> 8)
	data[offset+2] = byte(v >> 16)
	data[offset+3] = byte(v >> 24)
}
