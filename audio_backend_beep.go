//go:build !headless

// audio_backend_beep.go - beep/speaker audio output implementation

package formatsynth

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// BeepOutput plays an AudioSource through beep's speaker package. The
// speaker owns a process-wide mixer, so only one BeepOutput should exist
// at a time.
type BeepOutput struct {
	streamer *SourceStreamer
	started  bool
	mutex    sync.Mutex
}

// NewBeepOutput initialises the speaker at the given sample rate with a
// 50ms buffer.
func NewBeepOutput(sampleRate int, src AudioSource) (*BeepOutput, error) {
	if src == nil {
		return nil, fmt.Errorf("beep output: nil source")
	}
	sr := beep.SampleRate(sampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/20)); err != nil {
		return nil, err
	}
	return &BeepOutput{streamer: NewSourceStreamer(src)}, nil
}

func (bo *BeepOutput) Start() error {
	bo.mutex.Lock()
	defer bo.mutex.Unlock()

	if !bo.started {
		speaker.Play(bo.streamer)
		bo.started = true
	}
	return nil
}

func (bo *BeepOutput) Stop() error {
	bo.mutex.Lock()
	defer bo.mutex.Unlock()

	if bo.started {
		speaker.Clear()
		bo.started = false
	}
	return nil
}

func (bo *BeepOutput) Close() error {
	bo.mutex.Lock()
	defer bo.mutex.Unlock()

	if bo.started {
		speaker.Clear()
		bo.started = false
	}
	speaker.Close()
	return nil
}

func (bo *BeepOutput) IsStarted() bool {
	bo.mutex.Lock()
	defer bo.mutex.Unlock()
	return bo.started
}
