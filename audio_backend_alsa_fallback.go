//go:build !linux && !headless

// audio_backend_alsa_fallback.go - ALSA stub for non-Linux builds

package formatsynth

import "fmt"

func NewALSAOutput(sampleRate int, src AudioSource) (*HeadlessOutput, error) {
	return nil, fmt.Errorf("alsa output requires Linux with libasound installed")
}
