//go:build !headless

// audio_backend_oto.go - oto v3 audio output implementation

package formatsynth

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

// OtoOutput plays an AudioSource through oto's portable mixer. oto pulls
// samples via Read on its own real-time goroutine; the pre-allocated
// sample buffer keeps that path allocation-free.
type OtoOutput struct {
	ctx       *oto.Context
	player    *oto.Player
	src       AudioSource
	sampleBuf []float32
	started   bool
	mutex     sync.Mutex // Only for control operations, never the Read path
}

// NewOtoOutput opens an oto context at the given sample rate, stereo
// float32.
func NewOtoOutput(sampleRate int, src AudioSource) (*OtoOutput, error) {
	if src == nil {
		return nil, fmt.Errorf("oto output: nil source")
	}

	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	oo := &OtoOutput{
		ctx:       ctx,
		src:       src,
		sampleBuf: make([]float32, 4096),
	}
	oo.player = ctx.NewPlayer(oo)
	return oo, nil
}

func (oo *OtoOutput) Read(p []byte) (n int, err error) {
	numSamples := len(p) / 4

	// Should not grow after construction for typical oto buffer sizes.
	if len(oo.sampleBuf) < numSamples {
		oo.sampleBuf = make([]float32, numSamples)
	}
	samples := oo.sampleBuf[:numSamples]

	filled := oo.src.ReadSamples(samples)
	for i := filled; i < numSamples; i++ {
		samples[i] = 0
	}

	copy(p, (*[1 << 30]byte)(unsafe.Pointer(&samples[0]))[:len(p)])
	return len(p), nil
}

func (oo *OtoOutput) Start() error {
	oo.mutex.Lock()
	defer oo.mutex.Unlock()

	if !oo.started && oo.player != nil {
		oo.player.Play()
		oo.started = true
	}
	return nil
}

func (oo *OtoOutput) Stop() error {
	oo.mutex.Lock()
	defer oo.mutex.Unlock()

	if oo.started && oo.player != nil {
		oo.player.Pause()
		oo.started = false
	}
	return nil
}

func (oo *OtoOutput) Close() error {
	oo.mutex.Lock()
	defer oo.mutex.Unlock()

	oo.started = false
	if oo.player != nil {
		err := oo.player.Close()
		oo.player = nil
		return err
	}
	return nil
}

func (oo *OtoOutput) IsStarted() bool {
	oo.mutex.Lock()
	defer oo.mutex.Unlock()
	return oo.started
}
