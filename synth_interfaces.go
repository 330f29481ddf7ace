// synth_interfaces.go - Common interface implemented by every format synth engine

package formatsynth

import "fmt"

// FormatSynth is the common contract shared by all tracker-instrument synth
// engines. Each engine owns a fixed pool of voices addressed by integer
// handles, renders interleaved-free stereo float32 and is driven by the
// host's audio pull; no goroutines run inside an engine.
type FormatSynth interface {
	// CreatePlayer allocates a voice slot and returns its handle.
	// Returns ErrPoolExhausted once all slots are taken.
	CreatePlayer() (int, error)

	// DestroyPlayer releases a voice slot. The handle may be reused by a
	// later CreatePlayer call.
	DestroyPlayer(handle int) error

	// LoadInstrument parses an instrument blob into the voice's patch
	// memory. The voice keeps its previous patch when parsing fails.
	LoadInstrument(handle int, data []byte) error

	// NoteOn starts a note at the given MIDI note number and velocity,
	// retriggering from scratch if the voice is already sounding.
	NoteOn(handle int, note, velocity int) error

	// NoteOff releases the current note (envelope release phase, or an
	// immediate stop for formats without envelopes).
	NoteOff(handle int) error

	// Render produces len(left) frames of audio into the two channel
	// buffers and returns the frame count produced. A silent or invalid
	// voice yields zero-filled buffers and a zero count.
	Render(handle int, left, right []float32) int

	// SetParam stages a normalised 0-1 parameter value on the voice. The
	// value is scaled to the field's native range and applied at the next
	// tick boundary.
	SetParam(handle int, param int, value float32) error

	// GetParam reads back the current native value of a parameter,
	// rescaled to 0-1.
	GetParam(handle int, param int) (float32, error)

	// IsPlaying reports whether the voice is currently producing audio.
	IsPlaying(handle int) bool

	// SampleRate returns the output sample rate the engine was created
	// with.
	SampleRate() int

	// Close releases the engine context. All handles are invalid
	// afterwards.
	Close() error
}

// NewFormatSynth creates an engine for the named format at the given output
// sample rate. Recognised names cover the format's common aliases and file
// extensions.
func NewFormatSynth(format string, sampleRate int) (FormatSynth, error) {
	switch format {
	case "soundmon", "sm", "bp", "bp3":
		return NewSoundMonSynth(sampleRate)
	case "digmug", "dm", "dmu", "mug":
		return NewDigMugSynth(sampleRate)
	default:
		return nil, fmt.Errorf("unknown synth format %q", format)
	}
}

// FormatSynthNames lists the canonical format names accepted by
// NewFormatSynth, for host UIs and usage strings.
func FormatSynthNames() []string {
	return []string{"digmug", "soundmon"}
}
