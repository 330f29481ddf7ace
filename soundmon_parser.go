// soundmon_parser.go - SoundMon instrument blob parsing and encoding

package formatsynth

import "fmt"

// SoundMonInstrument is a decoded SoundMon instrument. Synth instruments
// (Type 0) play a 64-byte wavetable through the ADSR/vibrato/arpeggio
// machinery; PCM instruments (Type 1) replay a signed 8-bit sample with an
// instant-attack envelope derived from the sample volume.
type SoundMonInstrument struct {
	Type int

	// Synth waveform. WaveType selects a built-in shape; a custom wave in
	// the blob overrides it.
	WaveType int
	Wave     [SM_WAVE_LEN]int8
	WaveLen  int

	// Envelope (volumes 0-64, speeds in ticks)
	AttackVol    uint8
	DecayVol     uint8
	SustainVol   uint8
	ReleaseVol   uint8
	AttackSpeed  uint8
	DecaySpeed   uint8
	SustainLen   uint8
	ReleaseSpeed uint8

	// Vibrato
	VibDelay uint8
	VibSpeed uint8
	VibDepth uint8

	// Arpeggio
	ArpTable [SM_ARP_TABLE_LEN]int8
	ArpSpeed uint8

	// Portamento
	PortSpeed uint8

	// PCM sample
	PCMData   []int8
	LoopStart int
	LoopLen   int
	PCMVolume uint8
	Finetune  int8
	Transpose int8
}

// ParseSoundMonInstrument decodes an instrument blob. Byte 0 selects the
// instrument type; see soundmon_constants.go for the field layout.
//
// A synth blob whose custom-wave length overruns the data falls back to the
// built-in waveform, and a PCM blob whose sample payload overruns the data
// decodes to a silent instrument; neither is an error, matching the
// original player's tolerance of truncated songs.
func ParseSoundMonInstrument(data []byte) (*SoundMonInstrument, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("soundmon: %w: empty blob", ErrTooShort)
	}

	ins := &SoundMonInstrument{Type: int(data[0])}

	switch ins.Type {
	case SM_TYPE_SYNTH:
		return parseSoundMonSynth(ins, data)
	case SM_TYPE_PCM:
		return parseSoundMonPCM(ins, data)
	default:
		return nil, fmt.Errorf("soundmon: %w: unknown instrument type %d", ErrInvalidHeader, ins.Type)
	}
}

func parseSoundMonSynth(ins *SoundMonInstrument, data []byte) (*SoundMonInstrument, error) {
	if len(data) < SM_SYNTH_HEADER_LEN {
		return nil, fmt.Errorf("soundmon: %w: synth header needs %d bytes, have %d",
			ErrTooShort, SM_SYNTH_HEADER_LEN, len(data))
	}

	ins.WaveType = int(data[SM_OFF_WAVE_TYPE] & 0x0F)
	ins.ArpSpeed = data[SM_OFF_ARP_SPEED]
	ins.AttackVol = data[SM_OFF_ATTACK_VOL]
	ins.DecayVol = data[SM_OFF_DECAY_VOL]
	ins.SustainVol = data[SM_OFF_SUSTAIN_VOL]
	ins.ReleaseVol = data[SM_OFF_RELEASE_VOL]
	ins.AttackSpeed = data[SM_OFF_ATTACK_SPEED]
	ins.DecaySpeed = data[SM_OFF_DECAY_SPEED]
	ins.SustainLen = data[SM_OFF_SUSTAIN_LEN]
	ins.ReleaseSpeed = data[SM_OFF_REL_SPEED]
	ins.VibDelay = data[SM_OFF_VIB_DELAY]
	ins.VibSpeed = data[SM_OFF_VIB_SPEED]
	ins.VibDepth = data[SM_OFF_VIB_DEPTH]
	ins.PortSpeed = data[SM_OFF_PORT_SPEED]

	for i := 0; i < SM_ARP_TABLE_LEN; i++ {
		ins.ArpTable[i] = int8(data[SM_OFF_ARP_TABLE+i])
	}

	waveDataLen := int(readUint32LE(data, SM_OFF_WAVE_LEN))
	if waveDataLen > 0 && len(data) >= SM_OFF_WAVE_DATA+waveDataLen {
		ws := waveDataLen
		if ws > SM_WAVE_LEN {
			ws = SM_WAVE_LEN
		}
		for i := 0; i < ws; i++ {
			ins.Wave[i] = int8(data[SM_OFF_WAVE_DATA+i])
		}
		ins.WaveLen = ws
	} else {
		ins.Wave = SoundMonWaves[ins.WaveType]
		ins.WaveLen = SM_WAVE_LEN
	}

	return ins, nil
}

func parseSoundMonPCM(ins *SoundMonInstrument, data []byte) (*SoundMonInstrument, error) {
	if len(data) < SM_PCM_HEADER_LEN {
		return nil, fmt.Errorf("soundmon: %w: pcm header needs %d bytes, have %d",
			ErrTooShort, SM_PCM_HEADER_LEN, len(data))
	}

	ins.PCMVolume = data[SM_PCM_OFF_VOLUME]
	ins.Finetune = int8(data[SM_PCM_OFF_FINETUNE])
	ins.Transpose = int8(data[SM_PCM_OFF_TRANSPOSE])

	pcmLen := int(readUint32LE(data, SM_PCM_OFF_LENGTH))
	loopStart := int(readUint32LE(data, SM_PCM_OFF_LOOP_START))
	loopLen := int(readUint32LE(data, SM_PCM_OFF_LOOP_LEN))

	if pcmLen > 0 && len(data) >= SM_PCM_OFF_DATA+pcmLen {
		ins.PCMData = make([]int8, pcmLen)
		for i := 0; i < pcmLen; i++ {
			ins.PCMData[i] = int8(data[SM_PCM_OFF_DATA+i])
		}
		ins.LoopStart = loopStart
		ins.LoopLen = loopLen
	}

	// PCM plays at the sample's own volume with an instant attack,
	// holding until note-off and fading over a short fixed release.
	ins.AttackVol = ins.PCMVolume
	ins.DecayVol = ins.PCMVolume
	ins.SustainVol = ins.PCMVolume
	ins.SustainLen = 0
	ins.AttackSpeed = 0
	ins.DecaySpeed = 0
	ins.ReleaseSpeed = 4

	return ins, nil
}

// Encode serialises the instrument back into blob form, the inverse of
// ParseSoundMonInstrument. A synth instrument with WaveLen > 0 emits its
// waveform as custom wave data; set WaveLen to 0 to reference the built-in
// shape selected by WaveType instead.
func (ins *SoundMonInstrument) Encode() []byte {
	if ins.Type == SM_TYPE_PCM {
		return ins.encodePCM()
	}
	return ins.encodeSynth()
}

func (ins *SoundMonInstrument) encodeSynth() []byte {
	data := make([]byte, SM_SYNTH_HEADER_LEN+ins.WaveLen)
	data[SM_OFF_TYPE] = SM_TYPE_SYNTH
	data[SM_OFF_WAVE_TYPE] = byte(ins.WaveType & 0x0F)
	data[SM_OFF_ARP_SPEED] = ins.ArpSpeed
	data[SM_OFF_ATTACK_VOL] = ins.AttackVol
	data[SM_OFF_DECAY_VOL] = ins.DecayVol
	data[SM_OFF_SUSTAIN_VOL] = ins.SustainVol
	data[SM_OFF_RELEASE_VOL] = ins.ReleaseVol
	data[SM_OFF_ATTACK_SPEED] = ins.AttackSpeed
	data[SM_OFF_DECAY_SPEED] = ins.DecaySpeed
	data[SM_OFF_SUSTAIN_LEN] = ins.SustainLen
	data[SM_OFF_REL_SPEED] = ins.ReleaseSpeed
	data[SM_OFF_VIB_DELAY] = ins.VibDelay
	data[SM_OFF_VIB_SPEED] = ins.VibSpeed
	data[SM_OFF_VIB_DEPTH] = ins.VibDepth
	data[SM_OFF_PORT_SPEED] = ins.PortSpeed
	for i := 0; i < SM_ARP_TABLE_LEN; i++ {
		data[SM_OFF_ARP_TABLE+i] = byte(ins.ArpTable[i])
	}
	if ins.WaveLen > 0 {
		putUint32LE(data, SM_OFF_WAVE_LEN, uint32(ins.WaveLen))
		for i := 0; i < ins.WaveLen && i < SM_WAVE_LEN; i++ {
			data[SM_OFF_WAVE_DATA+i] = byte(ins.Wave[i])
		}
	}
	return data
}

func (ins *SoundMonInstrument) encodePCM() []byte {
	data := make([]byte, SM_PCM_HEADER_LEN+len(ins.PCMData))
	data[SM_OFF_TYPE] = SM_TYPE_PCM
	data[SM_PCM_OFF_VOLUME] = ins.PCMVolume
	data[SM_PCM_OFF_FINETUNE] = byte(ins.Finetune)
	data[SM_PCM_OFF_TRANSPOSE] = byte(ins.Transpose)
	putUint32LE(data, SM_PCM_OFF_LENGTH, uint32(len(ins.PCMData)))
	putUint32LE(data, SM_PCM_OFF_LOOP_START, uint32(ins.LoopStart))
	putUint32LE(data, SM_PCM_OFF_LOOP_LEN, uint32(ins.LoopLen))
	for i, s := range ins.PCMData {
		data[SM_PCM_OFF_DATA+i] = byte(s)
	}
	return data
}
