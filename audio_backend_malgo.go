//go:build !headless

// audio_backend_malgo.go - miniaudio (malgo) audio output implementation

package formatsynth

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/gen2brain/malgo"
)

// MalgoOutput plays an AudioSource through miniaudio. The device calls the
// data callback on its own real-time thread with a raw byte buffer; samples
// are pulled into a pre-allocated float32 scratch and re-encoded as
// little-endian float32 frames.
type MalgoOutput struct {
	mctx      *malgo.AllocatedContext
	device    *malgo.Device
	src       AudioSource
	sampleBuf []float32
	started   bool
	mutex     sync.Mutex
}

// NewMalgoOutput opens the default playback device at the given sample
// rate, stereo float32.
func NewMalgoOutput(sampleRate int, src AudioSource) (*MalgoOutput, error) {
	if src == nil {
		return nil, fmt.Errorf("malgo output: nil source")
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		fmt.Fprint(os.Stderr, msg)
	})
	if err != nil {
		return nil, err
	}

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = 2
	cfg.SampleRate = uint32(sampleRate)

	mo := &MalgoOutput{
		mctx:      mctx,
		src:       src,
		sampleBuf: make([]float32, 4096),
	}

	device, err := malgo.InitDevice(mctx.Context, cfg, malgo.DeviceCallbacks{
		Data: mo.dataCallback,
	})
	if err != nil {
		mctx.Uninit()
		mctx.Free()
		return nil, err
	}
	mo.device = device
	return mo, nil
}

func (mo *MalgoOutput) dataCallback(out, _ []byte, framecount uint32) {
	numSamples := int(framecount) * 2
	if len(mo.sampleBuf) < numSamples {
		mo.sampleBuf = make([]float32, numSamples)
	}
	samples := mo.sampleBuf[:numSamples]

	filled := mo.src.ReadSamples(samples)
	for i := filled; i < numSamples; i++ {
		samples[i] = 0
	}

	for i, f := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
}

func (mo *MalgoOutput) Start() error {
	mo.mutex.Lock()
	defer mo.mutex.Unlock()

	if mo.started || mo.device == nil {
		return nil
	}
	if err := mo.device.Start(); err != nil {
		return err
	}
	mo.started = true
	return nil
}

func (mo *MalgoOutput) Stop() error {
	mo.mutex.Lock()
	defer mo.mutex.Unlock()

	if !mo.started || mo.device == nil {
		return nil
	}
	if err := mo.device.Stop(); err != nil {
		return err
	}
	mo.started = false
	return nil
}

func (mo *MalgoOutput) Close() error {
	mo.mutex.Lock()
	defer mo.mutex.Unlock()

	mo.started = false
	if mo.device != nil {
		mo.device.Uninit()
		mo.device = nil
	}
	if mo.mctx != nil {
		err := mo.mctx.Uninit()
		mo.mctx.Free()
		mo.mctx = nil
		return err
	}
	return nil
}

func (mo *MalgoOutput) IsStarted() bool {
	mo.mutex.Lock()
	defer mo.mutex.Unlock()
	return mo.started
}
