//go:build linux && !headless

// audio_backend_alsa.go - ALSA audio output implementation (Linux only)

package formatsynth

/*
#cgo LDFLAGS: -lasound
#include <alsa/asoundlib.h>
#include <stdlib.h>

static snd_pcm_t* openPCM(const char* device, int* err) {
    snd_pcm_t* handle;
    *err = snd_pcm_open(&handle, device, SND_PCM_STREAM_PLAYBACK, 0);
    return handle;
}

static int setupPCM(snd_pcm_t* handle, unsigned int rate) {
    snd_pcm_hw_params_t* params;
    int err;

    snd_pcm_hw_params_alloca(&params);
    err = snd_pcm_hw_params_any(handle, params);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_access(handle, params, SND_PCM_ACCESS_RW_INTERLEAVED);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_format(handle, params, SND_PCM_FORMAT_FLOAT);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_channels(handle, params, 2);
    if (err < 0) return err;

    err = snd_pcm_hw_params_set_rate(handle, params, rate, 0);
    if (err < 0) return err;

    err = snd_pcm_hw_params(handle, params);
    if (err < 0) return err;

    return snd_pcm_prepare(handle);
}

static int writePCM(snd_pcm_t* handle, float* buffer, int frames) {
    return snd_pcm_writei(handle, buffer, frames);
}

static void closePCM(snd_pcm_t* handle) {
    if (handle != NULL) {
        snd_pcm_drain(handle);
        snd_pcm_close(handle);
    }
}
*/
import "C"
import (
	"fmt"
	"sync"
	"unsafe"
)

// ALSAOutput plays an AudioSource straight through libasound. ALSA's writei
// is a push API, so Start launches a pump goroutine that pulls from the
// source and blocks in the device's own flow control.
type ALSAOutput struct {
	handle  *C.snd_pcm_t
	src     AudioSource
	samples []float32
	started bool
	stop    chan struct{}
	done    chan struct{}
	mutex   sync.Mutex
}

// NewALSAOutput opens the default ALSA PCM device at the given sample rate,
// stereo float32.
func NewALSAOutput(sampleRate int, src AudioSource) (*ALSAOutput, error) {
	if src == nil {
		return nil, fmt.Errorf("alsa output: nil source")
	}

	dev := C.CString("default")
	defer C.free(unsafe.Pointer(dev))

	var cerr C.int
	handle := C.openPCM(dev, &cerr)
	if cerr < 0 {
		return nil, fmt.Errorf("failed to open PCM device: %s", C.GoString(C.snd_strerror(cerr)))
	}

	if cerr = C.setupPCM(handle, C.uint(sampleRate)); cerr < 0 {
		C.closePCM(handle)
		return nil, fmt.Errorf("failed to setup PCM: %s", C.GoString(C.snd_strerror(cerr)))
	}

	return &ALSAOutput{
		handle:  handle,
		src:     src,
		samples: make([]float32, 4096),
	}, nil
}

// pump pulls sample blocks from the source and pushes them into the
// device until told to stop. snd_pcm_writei provides the pacing.
func (ap *ALSAOutput) pump() {
	defer close(ap.done)

	for {
		select {
		case <-ap.stop:
			return
		default:
		}

		n := ap.src.ReadSamples(ap.samples)
		for i := n; i < len(ap.samples); i++ {
			ap.samples[i] = 0
		}

		frames := C.int(len(ap.samples) / 2)
		wrote := C.writePCM(ap.handle, (*C.float)(unsafe.Pointer(&ap.samples[0])), frames)
		if wrote < 0 {
			if wrote == -C.EPIPE {
				// Underrun: recover and retry once.
				C.snd_pcm_prepare(ap.handle)
				wrote = C.writePCM(ap.handle, (*C.float)(unsafe.Pointer(&ap.samples[0])), frames)
			}
			if wrote < 0 {
				return
			}
		}
	}
}

func (ap *ALSAOutput) Start() error {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()

	if ap.started || ap.handle == nil {
		return nil
	}
	ap.stop = make(chan struct{})
	ap.done = make(chan struct{})
	go ap.pump()
	ap.started = true
	return nil
}

func (ap *ALSAOutput) Stop() error {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()

	if !ap.started {
		return nil
	}
	close(ap.stop)
	<-ap.done
	ap.started = false
	return nil
}

func (ap *ALSAOutput) Close() error {
	if err := ap.Stop(); err != nil {
		return err
	}

	ap.mutex.Lock()
	defer ap.mutex.Unlock()

	if ap.handle != nil {
		C.closePCM(ap.handle)
		ap.handle = nil
	}
	return nil
}

func (ap *ALSAOutput) IsStarted() bool {
	ap.mutex.Lock()
	defer ap.mutex.Unlock()
	return ap.started
}
