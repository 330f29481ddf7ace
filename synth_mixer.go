// synth_mixer.go - Thread-safe voice mixer bridging a FormatSynth to an AudioSource

package formatsynth

import "sync"

// SynthMixer wraps a FormatSynth with a mutex and sums every sounding voice
// into one interleaved stereo stream. It implements both FormatSynth, as a
// locked pass-through for host control threads, and AudioSource, for the
// audio backend's real-time pull; the engines themselves are
// single-threaded by design and never lock.
type SynthMixer struct {
	synth FormatSynth
	gain  float32
	mu    sync.Mutex
	left  []float32
	right []float32
}

var (
	_ FormatSynth = (*SynthMixer)(nil)
	_ AudioSource = (*SynthMixer)(nil)
)

// NewSynthMixer wraps synth. The default gain is 1/MAX_PLAYERS so a full
// voice pool sums inside the unit range.
func NewSynthMixer(synth FormatSynth) *SynthMixer {
	return &SynthMixer{
		synth: synth,
		gain:  1.0 / float32(MAX_PLAYERS),
		left:  make([]float32, 4096),
		right: make([]float32, 4096),
	}
}

// SetGain adjusts the master gain applied to the voice sum.
func (m *SynthMixer) SetGain(gain float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gain = gain
}

// ReadSamples mixes all sounding voices into buf as interleaved stereo.
func (m *SynthMixer) ReadSamples(buf []float32) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	frames := len(buf) / 2
	if len(m.left) < frames {
		m.left = make([]float32, frames)
		m.right = make([]float32, frames)
	}
	left := m.left[:frames]
	right := m.right[:frames]

	for i := range buf {
		buf[i] = 0
	}

	for h := 0; h < MAX_PLAYERS; h++ {
		if !m.synth.IsPlaying(h) {
			continue
		}
		n := m.synth.Render(h, left, right)
		for i := 0; i < n; i++ {
			buf[i*2] += left[i] * m.gain
			buf[i*2+1] += right[i] * m.gain
		}
	}
	return frames * 2
}

func (m *SynthMixer) CreatePlayer() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.synth.CreatePlayer()
}

func (m *SynthMixer) DestroyPlayer(handle int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.synth.DestroyPlayer(handle)
}

func (m *SynthMixer) LoadInstrument(handle int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.synth.LoadInstrument(handle, data)
}

func (m *SynthMixer) NoteOn(handle, note, velocity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.synth.NoteOn(handle, note, velocity)
}

func (m *SynthMixer) NoteOff(handle int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.synth.NoteOff(handle)
}

func (m *SynthMixer) Render(handle int, left, right []float32) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.synth.Render(handle, left, right)
}

func (m *SynthMixer) SetParam(handle, param int, value float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.synth.SetParam(handle, param, value)
}

func (m *SynthMixer) GetParam(handle, param int) (float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.synth.GetParam(handle, param)
}

func (m *SynthMixer) IsPlaying(handle int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.synth.IsPlaying(handle)
}

func (m *SynthMixer) SampleRate() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.synth.SampleRate()
}

func (m *SynthMixer) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.synth.Close()
}
