// soundmon_engine.go - SoundMon wavetable/PCM synth engine
// Envelope, vibrato and arpeggio all run at the 50Hz tick rate; only the
// oscillator runs per sample.

package formatsynth

import (
	"fmt"
	"math"
)

// smVoice is one slot in the SoundMon voice pool. Voices are value types
// inside the context array so rendering never allocates.
type smVoice struct {
	alive   bool
	playing bool

	ins SoundMonInstrument

	// Oscillator
	phase       float32 // [0, waveLen) in table-index units, byte units for PCM
	phaseInc    float32 // per-sample step at the base note
	vibPhaseInc float32 // current step with vibrato and arpeggio applied
	baseNote    int

	// Tick sub-sample counter
	sampleCtr int

	// Envelope
	envPhase       int
	envVol         float32 // [0, 64]
	envTickCtr     int
	sustainTickCtr int
	releaseFromVol float32 // volume held when release began
	velScale       float32 // note-on velocity as a 0-1 gain on envelope targets

	// Vibrato
	vibDelayCtr int
	vibPhase    float32 // LFO wheel position [0, 64)
	vibTickCtr  int

	// Arpeggio
	arpIdx     int
	arpTickCtr int

	// Parameter writes staged for the next tick boundary
	pending     [PARAM_PORTAMENTO + 1]float32
	pendingMask uint16
}

// SoundMonSynth renders SoundMon instruments through a fixed pool of
// MAX_PLAYERS voices addressed by handle.
type SoundMonSynth struct {
	sampleRate     int
	samplesPerTick int
	voices         [MAX_PLAYERS]smVoice
}

var _ FormatSynth = (*SoundMonSynth)(nil)

// NewSoundMonSynth creates a SoundMon engine rendering at the given sample
// rate.
func NewSoundMonSynth(sampleRate int) (*SoundMonSynth, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("soundmon: invalid sample rate %d", sampleRate)
	}
	return &SoundMonSynth{
		sampleRate:     sampleRate,
		samplesPerTick: sampleRate / TICKS_PER_SEC,
	}, nil
}

// SampleRate returns the output sample rate the engine was created with.
func (s *SoundMonSynth) SampleRate() int { return s.sampleRate }

// Close releases all voices. The engine holds no OS resources, so this
// only invalidates outstanding handles.
func (s *SoundMonSynth) Close() error {
	for i := range s.voices {
		s.voices[i] = smVoice{}
	}
	return nil
}

func (s *SoundMonSynth) voice(handle int) (*smVoice, error) {
	if handle < 0 || handle >= MAX_PLAYERS || !s.voices[handle].alive {
		return nil, fmt.Errorf("soundmon: %w %d", ErrInvalidHandle, handle)
	}
	return &s.voices[handle], nil
}

// CreatePlayer allocates the lowest free voice slot and returns its handle.
// Slots free up on DestroyPlayer and whenever a voice finishes sounding
// (release complete, or a one-shot sample exhausted).
func (s *SoundMonSynth) CreatePlayer() (int, error) {
	for i := range s.voices {
		if !s.voices[i].alive {
			s.voices[i] = smVoice{alive: true, baseNote: -1}
			return i, nil
		}
	}
	return -1, fmt.Errorf("soundmon: %w", ErrPoolExhausted)
}

// DestroyPlayer releases a voice slot for reuse.
func (s *SoundMonSynth) DestroyPlayer(handle int) error {
	v, err := s.voice(handle)
	if err != nil {
		return err
	}
	*v = smVoice{}
	return nil
}

// LoadInstrument decodes an instrument blob into the voice. On a decode
// error the voice keeps its previous instrument. Loading does not stop a
// sounding note; the new patch takes over mid-stream like a hardware
// instrument swap.
func (s *SoundMonSynth) LoadInstrument(handle int, data []byte) error {
	v, err := s.voice(handle)
	if err != nil {
		return err
	}
	ins, err := ParseSoundMonInstrument(data)
	if err != nil {
		return err
	}
	v.ins = *ins
	return nil
}

// NoteOn starts a note, resetting the envelope, vibrato and arpeggio state.
// PCM instruments apply their transpose to the note first, clamped to the
// MIDI range. Velocity scales the envelope targets; 0 falls back to 64.
func (s *SoundMonSynth) NoteOn(handle, note, velocity int) error {
	v, err := s.voice(handle)
	if err != nil {
		return err
	}

	actualNote := note
	if v.ins.Type == SM_TYPE_PCM {
		actualNote += int(v.ins.Transpose)
		if actualNote < 0 {
			actualNote = 0
		}
		if actualNote > 127 {
			actualNote = 127
		}
	}

	v.baseNote = actualNote
	v.playing = true
	v.phase = 0
	v.sampleCtr = 0
	v.envPhase = SM_ENV_ATTACK
	v.envTickCtr = 0
	v.sustainTickCtr = 0
	v.vibDelayCtr = int(v.ins.VibDelay)
	v.vibPhase = 0
	v.vibTickCtr = 0
	v.arpIdx = 0
	v.arpTickCtr = 0

	v.velScale = velocityScale(velocity)
	if v.ins.AttackSpeed == 0 {
		// Instant attack: audible from the very first sample.
		v.envVol = float32(v.ins.AttackVol) * v.velScale
	} else {
		v.envVol = 0
	}

	ws := v.ins.WaveLen
	if ws <= 0 {
		ws = SM_WAVE_LEN
	}
	v.phaseInc = wavePhaseInc(midiNoteToFreq(float32(actualNote)), ws, s.sampleRate)
	v.vibPhaseInc = v.phaseInc
	return nil
}

// NoteOff moves the envelope into release from whatever volume it currently
// holds. A voice already releasing or off is left alone. Once the release
// runs to completion the voice deactivates, its slot returns to the pool
// and the handle expires.
func (s *SoundMonSynth) NoteOff(handle int) error {
	v, err := s.voice(handle)
	if err != nil {
		return err
	}
	if v.playing && v.envPhase != SM_ENV_OFF && v.envPhase != SM_ENV_RELEASE {
		v.envPhase = SM_ENV_RELEASE
		v.envTickCtr = 0
		v.releaseFromVol = v.envVol
	}
	return nil
}

// IsPlaying reports whether the voice is producing audio.
func (s *SoundMonSynth) IsPlaying(handle int) bool {
	v, err := s.voice(handle)
	return err == nil && v.playing
}

// tick advances the 50Hz state machines: staged parameters, envelope,
// vibrato, arpeggio, then the combined phase increment.
func (s *SoundMonSynth) tick(v *smVoice) {
	if !v.playing {
		return
	}

	if v.pendingMask != 0 {
		s.drainParams(v)
	}

	// Envelope. All interpolating phases run over speed*4+1 ticks; speed 0
	// snaps to the target immediately.
	switch v.envPhase {
	case SM_ENV_ATTACK:
		v.envTickCtr++
		target := float32(v.ins.AttackVol) * v.velScale
		if v.ins.AttackSpeed > 0 {
			v.envVol = target * (float32(v.envTickCtr) / (float32(v.ins.AttackSpeed)*4 + 1))
			if v.envVol >= target {
				v.envVol = target
				v.envPhase = SM_ENV_DECAY
				v.envTickCtr = 0
			}
		} else {
			v.envVol = target
			v.envPhase = SM_ENV_DECAY
			v.envTickCtr = 0
		}

	case SM_ENV_DECAY:
		v.envTickCtr++
		attack := float32(v.ins.AttackVol) * v.velScale
		decay := float32(v.ins.DecayVol) * v.velScale
		if v.ins.DecaySpeed > 0 {
			t := float32(v.envTickCtr) / (float32(v.ins.DecaySpeed)*4 + 1)
			v.envVol = attack + (decay-attack)*t
			if t >= 1 {
				v.envVol = decay
				v.envPhase = SM_ENV_SUSTAIN
				v.sustainTickCtr = 0
				v.envTickCtr = 0
			}
		} else {
			v.envVol = decay
			v.envPhase = SM_ENV_SUSTAIN
			v.sustainTickCtr = 0
			v.envTickCtr = 0
		}

	case SM_ENV_SUSTAIN:
		v.envVol = float32(v.ins.SustainVol) * v.velScale
		if v.ins.SustainLen > 0 {
			v.sustainTickCtr++
			if v.sustainTickCtr >= int(v.ins.SustainLen) {
				// Sustain timeout: auto-release.
				v.envPhase = SM_ENV_RELEASE
				v.envTickCtr = 0
				v.releaseFromVol = v.envVol
			}
		}

	case SM_ENV_RELEASE:
		v.envTickCtr++
		if v.ins.ReleaseSpeed > 0 {
			t := float32(v.envTickCtr) / (float32(v.ins.ReleaseSpeed)*4 + 1)
			v.envVol = v.releaseFromVol * (1 - t)
			if t >= 1 || v.envVol <= 0 {
				v.envVol = 0
				v.envPhase = SM_ENV_OFF
				v.playing = false
				// Off is terminal: the slot returns to the pool and the
				// handle expires.
				v.alive = false
			}
		} else {
			v.envVol = 0
			v.envPhase = SM_ENV_OFF
			v.playing = false
			v.alive = false
		}
	}

	// Vibrato. The delay counts down first; while it runs the LFO
	// contributes nothing.
	var vibSemitones float32
	if v.ins.VibDepth > 0 {
		if v.vibDelayCtr > 0 {
			v.vibDelayCtr--
		} else {
			v.vibTickCtr++
			if v.ins.VibSpeed > 0 && v.vibTickCtr >= int(v.ins.VibSpeed) {
				v.vibTickCtr = 0
				v.vibPhase += 1
				if v.vibPhase >= 64 {
					v.vibPhase -= 64
				}
			}
			vibSemitones = vibratoSine(v.vibPhase) * (float32(v.ins.VibDepth) / 32.0)
		}
	}

	// Arpeggio. An all-zero table is the disabled sentinel and must not
	// advance the counter.
	var arpSemitones float32
	hasArp := false
	for i := 0; i < SM_ARP_TABLE_LEN; i++ {
		if v.ins.ArpTable[i] != 0 {
			hasArp = true
			break
		}
	}
	if hasArp {
		v.arpTickCtr++
		speed := int(v.ins.ArpSpeed)
		if speed < 1 {
			speed = 1
		}
		if v.arpTickCtr >= speed {
			v.arpTickCtr = 0
			v.arpIdx = (v.arpIdx + 1) % SM_ARP_TABLE_LEN
		}
		arpSemitones = float32(v.ins.ArpTable[v.arpIdx])
	}

	// Recompute the phase increment with vibrato and arpeggio applied.
	if v.baseNote >= 0 {
		freq := midiNoteToFreq(float32(v.baseNote) + arpSemitones + vibSemitones)
		ws := v.ins.WaveLen
		if ws <= 0 {
			ws = SM_WAVE_LEN
		}
		v.vibPhaseInc = wavePhaseInc(freq, ws, s.sampleRate)
	}
}

// Render produces up to min(len(left), len(right)) frames of mono-duplicated
// stereo and returns the frame count actually produced. Both buffers are
// zeroed first, so a voice that dies mid-buffer leaves a silent remainder.
// Render never allocates.
func (s *SoundMonSynth) Render(handle int, left, right []float32) int {
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

	produced := 0
	for i := 0; i < n; i++ {
		v.sampleCtr++
		if v.sampleCtr >= s.samplesPerTick {
			v.sampleCtr = 0
			s.tick(v)
			if !v.playing {
				break
			}
		}

		vol := v.envVol * volumeNorm
		var sample float32

		if v.ins.Type == SM_TYPE_SYNTH {
			ws := v.ins.WaveLen
			if ws <= 0 {
				ws = SM_WAVE_LEN
			}
			idx := int(v.phase) & (ws - 1)
			if idx < 0 {
				idx = 0
			}
			if idx >= ws {
				idx = ws - 1
			}
			sample = float32(v.ins.Wave[idx]) * vol

			v.phase += v.vibPhaseInc
			if v.phase >= float32(ws) {
				v.phase -= float32(ws)
			}
			if v.phase < 0 {
				v.phase = 0
			}
		} else if v.ins.Type == SM_TYPE_PCM && v.ins.PCMData != nil {
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
					v.envPhase = SM_ENV_OFF
					v.alive = false
					break
				}
			}
			if idx < len(v.ins.PCMData) {
				sample = float32(v.ins.PCMData[idx]) * vol
			}

			// PCM pitch follows the note plus finetune (1/8 semitone
			// units); vibrato and arpeggio do not bend PCM playback.
			freq := midiNoteToFreq(float32(v.baseNote)) *
				float32(math.Pow(2, float64(v.ins.Finetune)/8.0/12.0))
			v.phase += freq / float32(s.sampleRate)
		}

		left[i] = sample
		right[i] = sample
		produced = i + 1
	}

	return produced
}

// applyParam scales a normalised 0-1 value onto the parameter's native
// field range.
func (s *SoundMonSynth) applyParam(v *smVoice, param int, value float32) {
	switch param {
	case PARAM_VOLUME:
		// Volume rescales the envelope targets together; decay sits at
		// half the attack level like the original player's default curve.
		v.ins.AttackVol = uint8(value * 64.0)
		v.ins.SustainVol = uint8(value * 64.0)
		v.ins.DecayVol = uint8(value * 64.0 * 0.5)
	case PARAM_ATTACK_SPEED:
		v.ins.AttackSpeed = uint8(value * 63.0)
	case PARAM_DECAY_SPEED:
		v.ins.DecaySpeed = uint8(value * 63.0)
	case PARAM_SUSTAIN_VOL:
		v.ins.SustainVol = uint8(value * 64.0)
	case PARAM_RELEASE_SPEED:
		v.ins.ReleaseSpeed = uint8(value * 63.0)
	case PARAM_VIB_SPEED:
		v.ins.VibSpeed = uint8(value * 63.0)
	case PARAM_VIB_DEPTH:
		v.ins.VibDepth = uint8(value * 63.0)
	case PARAM_VIB_DELAY:
		v.ins.VibDelay = uint8(value * 255.0)
	case PARAM_ARP_SPEED:
		v.ins.ArpSpeed = uint8(value * 15.0)
	case PARAM_PORTAMENTO:
		v.ins.PortSpeed = uint8(value * 63.0)
	}
}

func (s *SoundMonSynth) drainParams(v *smVoice) {
	for id := 0; id <= PARAM_PORTAMENTO; id++ {
		if v.pendingMask&(1<<uint(id)) != 0 {
			s.applyParam(v, id, v.pending[id])
		}
	}
	v.pendingMask = 0
}

// SetParam stages a parameter write. On a sounding voice the write lands at
// the next tick boundary so automation never steps mid-sample; on an idle
// voice it applies immediately.
func (s *SoundMonSynth) SetParam(handle, param int, value float32) error {
	v, err := s.voice(handle)
	if err != nil {
		return err
	}
	if param < 0 || param > PARAM_PORTAMENTO {
		return fmt.Errorf("soundmon: unknown parameter %d", param)
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
// Writes staged by SetParam are not visible until their tick lands.
func (s *SoundMonSynth) GetParam(handle, param int) (float32, error) {
	v, err := s.voice(handle)
	if err != nil {
		return -1, err
	}
	switch param {
	case PARAM_VOLUME:
		return float32(v.ins.AttackVol) / 64.0, nil
	case PARAM_ATTACK_SPEED:
		return float32(v.ins.AttackSpeed) / 63.0, nil
	case PARAM_DECAY_SPEED:
		return float32(v.ins.DecaySpeed) / 63.0, nil
	case PARAM_SUSTAIN_VOL:
		return float32(v.ins.SustainVol) / 64.0, nil
	case PARAM_RELEASE_SPEED:
		return float32(v.ins.ReleaseSpeed) / 63.0, nil
	case PARAM_VIB_SPEED:
		return float32(v.ins.VibSpeed) / 63.0, nil
	case PARAM_VIB_DEPTH:
		return float32(v.ins.VibDepth) / 63.0, nil
	case PARAM_VIB_DELAY:
		return float32(v.ins.VibDelay) / 255.0, nil
	case PARAM_ARP_SPEED:
		return float32(v.ins.ArpSpeed) / 15.0, nil
	case PARAM_PORTAMENTO:
		return float32(v.ins.PortSpeed) / 63.0, nil
	}
	return -1, fmt.Errorf("soundmon: unknown parameter %d", param)
}
