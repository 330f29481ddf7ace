// digmug_engine.go - Digital Mugician wavetable/PCM synth engine
// Unlike SoundMon there is no volume envelope: notes play at the
// instrument's flat volume and stop dead on note-off. The 50Hz tick gates
// the arpeggio only; the vibrato LFO runs on its own sample counter.

package formatsynth

import "fmt"

// dmVoice is one slot in the Digital Mugician voice pool.
type dmVoice struct {
	alive   bool
	playing bool

	ins DigMugInstrument

	// Oscillator
	phase    float32 // [0, waveLen) in table-index units, byte units for PCM
	baseNote int
	velScale float32

	// Vibrato, counted in samples. The step threshold is fixed at note-on.
	vibPhase       float32
	vibTickCtr     int
	vibTickSamples int

	// 50Hz tick and arpeggio
	tickCtr    int
	arpIdx     int
	arpTickCtr int

	// Parameter writes staged for the next tick boundary
	pending     [PARAM_ARP_SPEED + 1]float32
	pendingMask uint16
}

// DigMugSynth renders Digital Mugician instruments through a fixed pool of
// MAX_PLAYERS voices addressed by handle.
type DigMugSynth struct {
	sampleRate     int
	samplesPerTick int
	voices         [MAX_PLAYERS]dmVoice
}

var _ FormatSynth = (*DigMugSynth)(nil)

// NewDigMugSynth creates a Digital Mugician engine rendering at the given
// sample rate.
func NewDigMugSynth(sampleRate int) (*DigMugSynth, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("digmug: invalid sample rate %d", sampleRate)
	}
	return &DigMugSynth{
		sampleRate:     sampleRate,
		samplesPerTick: sampleRate / TICKS_PER_SEC,
	}, nil
}

// SampleRate returns the output sample rate the engine was created with.
func (s *DigMugSynth) SampleRate() int { return s.sampleRate }

// Close releases all voices and invalidates outstanding handles.
func (s *DigMugSynth) Close() error {
	for i := range s.voices {
		s.voices[i] = dmVoice{}
	}
	return nil
}

func (s *DigMugSynth) voice(handle int) (*dmVoice, error) {
	if handle < 0 || handle >= MAX_PLAYERS || !s.voices[handle].alive {
		return nil, fmt.Errorf("digmug: %w %d", ErrInvalidHandle, handle)
	}
	return &s.voices[handle], nil
}

// CreatePlayer allocates the lowest free voice slot and returns its handle.
// Slots free up on DestroyPlayer and whenever a voice finishes sounding
// (note-off, or a one-shot sample exhausted).
func (s *DigMugSynth) CreatePlayer() (int, error) {
	for i := range s.voices {
		if !s.voices[i].alive {
			s.voices[i] = dmVoice{alive: true, baseNote: -1}
			return i, nil
		}
	}
	return -1, fmt.Errorf("digmug: %w", ErrPoolExhausted)
}

// DestroyPlayer releases a voice slot for reuse.
func (s *DigMugSynth) DestroyPlayer(handle int) error {
	v, err := s.voice(handle)
	if err != nil {
		return err
	}
	*v = dmVoice{}
	return nil
}

// LoadInstrument decodes an instrument blob into the voice. On a decode
// error the voice keeps its previous instrument.
func (s *DigMugSynth) LoadInstrument(handle int, data []byte) error {
	v, err := s.voice(handle)
	if err != nil {
		return err
	}
	ins, err := ParseDigMugInstrument(data)
	if err != nil {
		return err
	}
	v.ins = *ins
	return nil
}

// NoteOn starts a note, resetting the oscillator, vibrato and arpeggio.
// The vibrato step period is derived from the instrument's vibSpeed here
// and stays fixed for the life of the note. Velocity scales the flat
// playback volume; 0 falls back to 64.
func (s *DigMugSynth) NoteOn(handle, note, velocity int) error {
	v, err := s.voice(handle)
	if err != nil {
		return err
	}

	v.baseNote = note
	v.playing = true
	v.phase = 0
	v.vibPhase = 0
	v.vibTickCtr = 0
	if v.ins.VibSpeed > 0 {
		v.vibTickSamples = s.samplesPerTick * int(v.ins.VibSpeed)
	} else {
		v.vibTickSamples = s.samplesPerTick
	}
	v.arpIdx = 0
	v.arpTickCtr = 0
	v.tickCtr = 0
	v.velScale = velocityScale(velocity)
	return nil
}

// NoteOff stops the voice immediately; the format has no release phase, so
// this completes the note outright. The slot returns to the pool and the
// handle expires.
func (s *DigMugSynth) NoteOff(handle int) error {
	v, err := s.voice(handle)
	if err != nil {
		return err
	}
	v.playing = false
	v.alive = false
	return nil
}

// IsPlaying reports whether the voice is producing audio.
func (s *DigMugSynth) IsPlaying(handle int) bool {
	v, err := s.voice(handle)
	return err == nil && v.playing
}

// Render produces up to min(len(left), len(right)) frames of mono-duplicated
// stereo and returns the frame count actually produced. Both buffers are
// zeroed first. Render never allocates.
func (s *DigMugSynth) Render(handle int, left, right []float32) int {
	for i := range left {
		left[i] = 0
	}
	for i := range right {
		right[i] = 0
	}

	v, err := s.voice(handle)
	if err != nil || !v.playing {
		return 0
	}

	n := len(left)
	if len(right) < n {
		n = len(right)
	}

	volNorm := float32(v.ins.Volume) * volumeNorm * v.velScale

	produced := 0
	for i := 0; i < n; i++ {
		// Arpeggio advances on the 50Hz tick; staged parameter writes
		// land on the same boundary.
		v.tickCtr++
		if v.tickCtr >= s.samplesPerTick {
			v.tickCtr = 0
			if v.pendingMask != 0 {
				s.drainParams(v)
				volNorm = float32(v.ins.Volume) * volumeNorm * v.velScale
			}
			hasArp := false
			for a := 0; a < DM_ARP_TABLE_LEN; a++ {
				if v.ins.ArpTable[a] != 0 {
					hasArp = true
					break
				}
			}
			if hasArp && v.ins.ArpSpeed > 0 {
				v.arpTickCtr++
				if v.arpTickCtr >= int(v.ins.ArpSpeed) {
					v.arpTickCtr = 0
					v.arpIdx = (v.arpIdx + 1) % DM_ARP_TABLE_LEN
				}
			}
		}

		// Vibrato LFO, stepped on its own sample counter.
		var vibSemitones float32
		if v.ins.VibDepth > 0 {
			v.vibTickCtr++
			if v.vibTickCtr >= v.vibTickSamples {
				v.vibTickCtr = 0
				v.vibPhase += 1
				if v.vibPhase >= 64 {
					v.vibPhase -= 64
				}
			}
			vibSemitones = vibratoSine(v.vibPhase) * (float32(v.ins.VibDepth) / 32.0)
		}

		arpSemitones := float32(v.ins.ArpTable[v.arpIdx])
		freq := midiNoteToFreq(float32(v.baseNote) + arpSemitones + vibSemitones)

		var sample float32

		if v.ins.Type == DM_TYPE_WAVE {
			waveLen := v.ins.WaveLen
			if waveLen <= 0 {
				waveLen = DM_WAVE_MAX
			}
			idx := int(v.phase)
			if idx < 0 {
				idx = 0
			}
			if idx >= waveLen {
				idx = waveLen - 1
			}
			sample = float32(v.ins.WaveData[idx]) * volNorm

			v.phase += wavePhaseInc(freq, waveLen, s.sampleRate)
			if v.phase >= float32(waveLen) {
				v.phase -= float32(waveLen)
			}
		} else {
			if v.ins.PCMData == nil {
				v.playing = false
				v.alive = false
				break
			}
			idx := int(v.phase)
			if idx >= len(v.ins.PCMData) {
				if v.ins.LoopLen > 2 {
					for idx >= v.ins.LoopStart+v.ins.LoopLen {
						idx -= v.ins.LoopLen
					}
					v.phase = float32(idx)
				} else {
					// One-shot sample exhausted: the voice deactivates and
					// its slot returns to the pool.
					v.playing = false
					v.alive = false
					break
				}
			}
			if idx < len(v.ins.PCMData) {
				sample = float32(v.ins.PCMData[idx]) * volNorm
			}

			// PCM pitch bends with arpeggio and vibrato; the increment
			// is frequency-relative, scaled by the sample length.
			v.phase += (freq / float32(s.sampleRate)) * float32(len(v.ins.PCMData))
		}

		left[i] = sample
		right[i] = sample
		produced = i + 1
	}

	return produced
}

// applyParam scales a normalised 0-1 value onto the parameter's native
// field range. Only the parameters the format actually has are mapped.
func (s *DigMugSynth) applyParam(v *dmVoice, param int, value float32) {
	switch param {
	case PARAM_VOLUME:
		v.ins.Volume = uint8(value * 64.0)
	case PARAM_VIB_SPEED:
		v.ins.VibSpeed = uint8(value * 63.0)
	case PARAM_VIB_DEPTH:
		v.ins.VibDepth = uint8(value * 63.0)
	case PARAM_ARP_SPEED:
		v.ins.ArpSpeed = uint8(value * 15.0)
	}
}

func (s *DigMugSynth) drainParams(v *dmVoice) {
	for id := 0; id <= PARAM_ARP_SPEED; id++ {
		if v.pendingMask&(1<<uint(id)) != 0 {
			s.applyParam(v, id, v.pending[id])
		}
	}
	v.pendingMask = 0
}

func (s *DigMugSynth) paramSupported(param int) bool {
	switch param {
	case PARAM_VOLUME, PARAM_VIB_SPEED, PARAM_VIB_DEPTH, PARAM_ARP_SPEED:
		return true
	}
	return false
}

// SetParam stages a parameter write. On a sounding voice the write lands at
// the next tick boundary; on an idle voice it applies immediately. The
// format has no envelope, so only volume, vibrato and arpeggio parameters
// exist.
func (s *DigMugSynth) SetParam(handle, param int, value float32) error {
	v, err := s.voice(handle)
	if err != nil {
		return err
	}
	if !s.paramSupported(param) {
		return fmt.Errorf("digmug: unknown parameter %d", param)
	}
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	if v.playing {
		v.pending[param] = value
		v.pendingMask |= 1 << uint(param)
		return nil
	}
	s.applyParam(v, param, value)
	return nil
}

// GetParam reads the current native value of a parameter rescaled to 0-1.
func (s *DigMugSynth) GetParam(handle, param int) (float32, error) {
	v, err := s.voice(handle)
	if err != nil {
		return -1, err
	}
	switch param {
	case PARAM_VOLUME:
		return float32(v.ins.Volume) / 64.0, nil
	case PARAM_VIB_SPEED:
		return float32(v.ins.VibSpeed) / 63.0, nil
	case PARAM_VIB_DEPTH:
		return float32(v.ins.VibDepth) / 63.0, nil
	case PARAM_ARP_SPEED:
		return float32(v.ins.ArpSpeed) / 15.0, nil
	}
	return -1, fmt.Errorf("digmug: unknown parameter %d", param)
}
