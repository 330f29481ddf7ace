// digmug_parser.go - Digital Mugician instrument blob parsing and encoding

package formatsynth

import "fmt"

// DigMugInstrument is a decoded Digital Mugician instrument. Wavetable
// instruments (Type 0) cycle an embedded waveform of up to 128 bytes; PCM
// instruments (Type 1) replay a signed 8-bit sample. Both run arpeggio and
// vibrato; the format has no volume envelope, notes play at a flat volume
// and stop dead on note-off.
type DigMugInstrument struct {
	Type int

	// Wavetable. The slot indices and morph fields are stored for
	// round-tripping; the rendered waveform is the embedded data.
	WaveIdx   [DM_WAVE_SLOTS]uint8
	WaveData  [DM_WAVE_MAX]int8
	WaveLen   int
	WaveBlend uint8
	WaveSpeed uint8

	Volume uint8

	// Arpeggio
	ArpTable [DM_ARP_TABLE_LEN]int8
	ArpSpeed uint8

	// Vibrato
	VibSpeed uint8
	VibDepth uint8

	// PCM sample
	PCMData   []int8
	LoopStart int
	LoopLen   int
}

// ParseDigMugInstrument decodes an instrument blob. Byte 0 selects the
// instrument type; see digmug_constants.go for the field layout.
//
// A wavetable blob with no usable embedded waveform (length zero, over 128,
// or overrunning the data) falls back to a generated sawtooth rather than
// failing, and a PCM blob whose payload overruns the data decodes to a
// silent instrument.
func ParseDigMugInstrument(data []byte) (*DigMugInstrument, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("digmug: %w: empty blob", ErrTooShort)
	}

	ins := &DigMugInstrument{Type: int(data[0])}

	switch ins.Type {
	case DM_TYPE_WAVE:
		return parseDigMugWave(ins, data)
	case DM_TYPE_PCM:
		return parseDigMugPCM(ins, data)
	default:
		return nil, fmt.Errorf("digmug: %w: unknown instrument type %d", ErrInvalidHeader, ins.Type)
	}
}

func parseDigMugWave(ins *DigMugInstrument, data []byte) (*DigMugInstrument, error) {
	if len(data) < DM_WAVE_HEADER_LEN {
		return nil, fmt.Errorf("digmug: %w: wavetable header needs %d bytes, have %d",
			ErrTooShort, DM_WAVE_HEADER_LEN, len(data))
	}

	for i := 0; i < DM_WAVE_SLOTS; i++ {
		ins.WaveIdx[i] = data[DM_OFF_WAVE_IDX+i]
	}
	ins.WaveBlend = data[DM_OFF_WAVE_BLEND] & 0x3F
	ins.WaveSpeed = data[DM_OFF_WAVE_SPEED] & 0x3F
	ins.Volume = clampVolume64(data[DM_OFF_VOLUME])
	ins.ArpSpeed = data[DM_OFF_ARP_SPEED] & 0x0F

	for i := 0; i < DM_ARP_TABLE_LEN; i++ {
		ins.ArpTable[i] = int8(data[DM_OFF_ARP_TABLE+i])
	}

	ins.VibSpeed = data[DM_OFF_VIB_SPEED] & 0x3F
	ins.VibDepth = data[DM_OFF_VIB_DEPTH] & 0x3F

	waveDataLen := int(readUint32LE(data, DM_OFF_WAVE_LEN))
	if waveDataLen > 0 && waveDataLen <= DM_WAVE_MAX && len(data) >= DM_OFF_WAVE_DATA+waveDataLen {
		for i := 0; i < waveDataLen; i++ {
			ins.WaveData[i] = int8(data[DM_OFF_WAVE_DATA+i])
		}
		ins.WaveLen = waveDataLen
	} else {
		// Fallback sawtooth so a broken blob still makes a sound.
		for i := 0; i < DM_WAVE_MAX; i++ {
			ins.WaveData[i] = int8(127 - i*2)
		}
		ins.WaveLen = DM_WAVE_MAX
	}

	return ins, nil
}

func parseDigMugPCM(ins *DigMugInstrument, data []byte) (*DigMugInstrument, error) {
	if len(data) < DM_PCM_HEADER_LEN {
		return nil, fmt.Errorf("digmug: %w: pcm header needs %d bytes, have %d",
			ErrTooShort, DM_PCM_HEADER_LEN, len(data))
	}

	ins.Volume = clampVolume64(data[DM_PCM_OFF_VOLUME])
	ins.ArpSpeed = data[DM_PCM_OFF_ARP_SPEED] & 0x0F

	for i := 0; i < DM_ARP_TABLE_LEN; i++ {
		ins.ArpTable[i] = int8(data[DM_PCM_OFF_ARP_TABLE+i])
	}

	ins.VibSpeed = data[DM_PCM_OFF_VIB_SPEED] & 0x3F
	ins.VibDepth = data[DM_PCM_OFF_VIB_DEPTH] & 0x3F

	pcmLen := int(readUint32LE(data, DM_PCM_OFF_LENGTH))
	loopStart := int(readUint32LE(data, DM_PCM_OFF_LOOP_START))
	loopLen := int(readUint32LE(data, DM_PCM_OFF_LOOP_LEN))

	if pcmLen > 0 && len(data) >= DM_PCM_OFF_DATA+pcmLen {
		ins.PCMData = make([]int8, pcmLen)
		for i := 0; i < pcmLen; i++ {
			ins.PCMData[i] = int8(data[DM_PCM_OFF_DATA+i])
		}
		ins.LoopStart = loopStart
		ins.LoopLen = loopLen
	}

	return ins, nil
}

func clampVolume64(v uint8) uint8 {
	if v > 64 {
		return 64
	}
	return v
}

// Encode serialises the instrument back into blob form, the inverse of
// ParseDigMugInstrument. A wavetable instrument with WaveLen 0 encodes with
// no embedded waveform, which decodes to the fallback sawtooth.
func (ins *DigMugInstrument) Encode() []byte {
	if ins.Type == DM_TYPE_PCM {
		return ins.encodePCM()
	}
	return ins.encodeWave()
}

func (ins *DigMugInstrument) encodeWave() []byte {
	data := make([]byte, DM_WAVE_HEADER_LEN+ins.WaveLen)
	data[DM_OFF_TYPE] = DM_TYPE_WAVE
	for i := 0; i < DM_WAVE_SLOTS; i++ {
		data[DM_OFF_WAVE_IDX+i] = ins.WaveIdx[i]
	}
	data[DM_OFF_WAVE_BLEND] = ins.WaveBlend & 0x3F
	data[DM_OFF_WAVE_SPEED] = ins.WaveSpeed & 0x3F
	data[DM_OFF_VOLUME] = ins.Volume
	data[DM_OFF_ARP_SPEED] = ins.ArpSpeed & 0x0F
	for i := 0; i < DM_ARP_TABLE_LEN; i++ {
		data[DM_OFF_ARP_TABLE+i] = byte(ins.ArpTable[i])
	}
	data[DM_OFF_VIB_SPEED] = ins.VibSpeed & 0x3F
	data[DM_OFF_VIB_DEPTH] = ins.VibDepth & 0x3F
	if ins.WaveLen > 0 {
		putUint32LE(data, DM_OFF_WAVE_LEN, uint32(ins.WaveLen))
		for i := 0; i < ins.WaveLen && i < DM_WAVE_MAX; i++ {
			data[DM_OFF_WAVE_DATA+i] = byte(ins.WaveData[i])
		}
	}
	return data
}

func (ins *DigMugInstrument) encodePCM() []byte {
	data := make([]byte, DM_PCM_HEADER_LEN+len(ins.PCMData))
	data[DM_OFF_TYPE] = DM_TYPE_PCM
	data[DM_PCM_OFF_VOLUME] = ins.Volume
	data[DM_PCM_OFF_ARP_SPEED] = ins.ArpSpeed & 0x0F
	for i := 0; i < DM_ARP_TABLE_LEN; i++ {
		data[DM_PCM_OFF_ARP_TABLE+i] = byte(ins.ArpTable[i])
	}
	data[DM_PCM_OFF_VIB_SPEED] = ins.VibSpeed & 0x3F
	data[DM_PCM_OFF_VIB_DEPTH] = ins.VibDepth & 0x3F
	putUint32LE(data, DM_PCM_OFF_LENGTH, uint32(len(ins.PCMData)))
	putUint32LE(data, DM_PCM_OFF_LOOP_START, uint32(ins.LoopStart))
	putUint32LE(data, DM_PCM_OFF_LOOP_LEN, uint32(ins.LoopLen))
	for i, s := range ins.PCMData {
		data[DM_PCM_OFF_DATA+i] = byte(s)
	}
	return data
}
