//go:build headless

package formatsynth

func NewOtoOutput(sampleRate int, src AudioSource) (*HeadlessOutput, error) {
	return &HeadlessOutput{}, nil
}

func NewMalgoOutput(sampleRate int, src AudioSource) (*HeadlessOutput, error) {
	return &HeadlessOutput{}, nil
}

func NewBeepOutput(sampleRate int, src AudioSource) (*HeadlessOutput, error) {
	return &HeadlessOutput{}, nil
}

func NewALSAOutput(sampleRate int, src AudioSource) (*HeadlessOutput, error) {
	return &HeadlessOutput{}, nil
}
