// synth_common_test.go - Tests for shared constants, errors and helpers

package formatsynth

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

// TestErrorCode tests the mapping from engine errors to host error codes
func TestErrorCode(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"too short", ErrTooShort, -2},
		{"wrapped too short", fmt.Errorf("soundmon: %w: empty blob", ErrTooShort), -2},
		{"invalid header", ErrInvalidHeader, -3},
		{"wrapped invalid header", fmt.Errorf("digmug: %w: type 9", ErrInvalidHeader), -3},
		{"unsupported", ErrUnsupported, -4},
		{"invalid handle", ErrInvalidHandle, -1},
		{"pool exhausted", ErrPoolExhausted, -1},
		{"unknown error", errors.New("disk on fire"), -1},
	}
	for _, tc := range cases {
		if got := ErrorCode(tc.err); got != tc.want {
			t.Errorf("ErrorCode(%s) = %d, want %d", tc.name, got, tc.want)
		}
	}
}

// TestMidiNoteToFreq tests standard equal temperament tuning
func TestMidiNoteToFreq(t *testing.T) {
	cases := []struct {
		note float32
		want float64
	}{
		{69, 440.0},  // A4
		{81, 880.0},  // A5, one octave up
		{57, 220.0},  // A3, one octave down
		{60, 261.63}, // middle C
	}
	for _, tc := range cases {
		got := float64(midiNoteToFreq(tc.note))
		if math.Abs(got-tc.want) > 0.01 {
			t.Errorf("midiNoteToFreq(%v) = %f, want %f", tc.note, got, tc.want)
		}
	}
}

// TestMidiNoteToFreq_Fractional tests that fractional notes land between
// semitones, as vibrato and fine-tune bends require
func TestMidiNoteToFreq_Fractional(t *testing.T) {
	lo := midiNoteToFreq(69)
	mid := midiNoteToFreq(69.5)
	hi := midiNoteToFreq(70)
	if !(lo < mid && mid < hi) {
		t.Errorf("midiNoteToFreq not monotonic across a fraction: %f, %f, %f", lo, mid, hi)
	}
}

// TestWavePhaseInc tests that the phase increment replays one wave cycle at
// the requested frequency
func TestWavePhaseInc(t *testing.T) {
	inc := wavePhaseInc(440, 64, 44100)
	cyclesPerSec := float64(inc) * 44100 / 64
	if math.Abs(cyclesPerSec-440) > 0.01 {
		t.Errorf("wavePhaseInc(440, 64, 44100) replays %f Hz, want 440", cyclesPerSec)
	}
}

// TestVibratoSine tests the quarter points of the 64-step LFO wheel
func TestVibratoSine(t *testing.T) {
	cases := []struct {
		phase float32
		want  float64
	}{
		{0, 0},
		{16, 1},
		{32, 0},
		{48, -1},
	}
	for _, tc := range cases {
		got := float64(vibratoSine(tc.phase))
		if math.Abs(got-tc.want) > 1e-5 {
			t.Errorf("vibratoSine(%v) = %f, want %f", tc.phase, got, tc.want)
		}
	}
}

// TestVelocityScale tests velocity mapping including the zero fallback
func TestVelocityScale(t *testing.T) {
	cases := []struct {
		velocity int
		want     float32
	}{
		{127, 1.0},
		{64, float32(64) / 127.0},
		{1, float32(1) / 127.0},
		{0, float32(64) / 127.0},  // 0 falls back to the default 64
		{-5, float32(64) / 127.0}, // negative treated like 0
		{200, 1.0},                // clamped to 127
	}
	for _, tc := range cases {
		if got := velocityScale(tc.velocity); got != tc.want {
			t.Errorf("velocityScale(%d) = %f, want %f", tc.velocity, got, tc.want)
		}
	}
}

// TestUint32LE tests the little-endian length-field helpers byte by byte
func TestUint32LE(t *testing.T) {
	buf := make([]byte, 6)
	putUint32LE(buf, 1, 0x12345678)

	want := []byte{0x00, 0x78, 0x56, 0x34, 0x12, 0x00}
	for i := range buf {
		if buf[i] != want[i] {
			t.Errorf("putUint32LE byte %d = 0x%02X, want 0x%02X", i, buf[i], want[i])
		}
	}
	if got := readUint32LE(buf, 1); got != 0x12345678 {
		t.Errorf("readUint32LE = 0x%08X, want 0x12345678", got)
	}
}

// TestNewFormatSynth tests format name selection and aliases
func TestNewFormatSynth(t *testing.T) {
	for _, name := range []string{"soundmon", "sm", "bp", "bp3"} {
		s, err := NewFormatSynth(name, 44100)
		if err != nil {
			t.Fatalf("NewFormatSynth(%q) failed: %v", name, err)
		}
		if _, ok := s.(*SoundMonSynth); !ok {
			t.Errorf("NewFormatSynth(%q) = %T, want *SoundMonSynth", name, s)
		}
	}
	for _, name := range []string{"digmug", "dm", "dmu", "mug"} {
		s, err := NewFormatSynth(name, 44100)
		if err != nil {
			t.Fatalf("NewFormatSynth(%q) failed: %v", name, err)
		}
		if _, ok := s.(*DigMugSynth); !ok {
			t.Errorf("NewFormatSynth(%q) = %T, want *DigMugSynth", name, s)
		}
	}
}

// TestNewFormatSynth_Unknown tests that unknown formats are rejected
func TestNewFormatSynth_Unknown(t *testing.T) {
	if _, err := NewFormatSynth("ahx", 44100); err == nil {
		t.Error("NewFormatSynth(\"ahx\") should return error")
	}
}

// TestNewFormatSynth_BadRate tests that a non-positive sample rate is
// rejected for every format
func TestNewFormatSynth_BadRate(t *testing.T) {
	for _, name := range FormatSynthNames() {
		if _, err := NewFormatSynth(name, 0); err == nil {
			t.Errorf("NewFormatSynth(%q, 0) should return error", name)
		}
		if _, err := NewFormatSynth(name, -44100); err == nil {
			t.Errorf("NewFormatSynth(%q, -44100) should return error", name)
		}
	}
}
