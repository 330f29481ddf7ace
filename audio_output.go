// audio_output.go - Audio output backend abstraction and selection

package formatsynth

import "fmt"

// AudioSource supplies interleaved stereo float32 frames to an output
// backend. ReadSamples fills buf (len(buf)/2 frames) and returns the number
// of float32 values written; the backend zeroes any remainder. Backends call
// it from their real-time thread, so implementations must not allocate or
// block.
type AudioSource interface {
	ReadSamples(buf []float32) int
}

// AudioOutput is a playback backend pulling from an AudioSource.
type AudioOutput interface {
	Start() error
	Stop() error
	Close() error
	IsStarted() bool
}

// Audio backend names accepted by NewAudioOutput.
const (
	AUDIO_BACKEND_OTO   = "oto"
	AUDIO_BACKEND_MALGO = "malgo"
	AUDIO_BACKEND_BEEP  = "beep"
	AUDIO_BACKEND_ALSA  = "alsa"
)

// NewAudioOutput creates the named output backend pulling from src at the
// given sample rate. An empty name selects oto, the portable default; alsa
// needs Linux. The headless build tag stubs every backend out.
func NewAudioOutput(backend string, sampleRate int, src AudioSource) (AudioOutput, error) {
	switch backend {
	case "", AUDIO_BACKEND_OTO:
		return NewOtoOutput(sampleRate, src)
	case AUDIO_BACKEND_MALGO, "miniaudio":
		return NewMalgoOutput(sampleRate, src)
	case AUDIO_BACKEND_BEEP:
		return NewBeepOutput(sampleRate, src)
	case AUDIO_BACKEND_ALSA:
		return NewALSAOutput(sampleRate, src)
	}
	return nil, fmt.Errorf("unknown audio backend: %q", backend)
}

// AudioBackendNames lists the selectable backends for usage strings.
func AudioBackendNames() []string {
	return []string{AUDIO_BACKEND_OTO, AUDIO_BACKEND_MALGO, AUDIO_BACKEND_BEEP, AUDIO_BACKEND_ALSA}
}

// HeadlessOutput is a no-op AudioOutput. Headless builds return it from
// every backend constructor; it is also handy in tests that drive the
// source directly.
type HeadlessOutput struct {
	started bool
}

func (ho *HeadlessOutput) Start() error {
	ho.started = true
	return nil
}

func (ho *HeadlessOutput) Stop() error {
	ho.started = false
	return nil
}

func (ho *HeadlessOutput) Close() error {
	ho.started = false
	return nil
}

func (ho *HeadlessOutput) IsStarted() bool {
	return ho.started
}
