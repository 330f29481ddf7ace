// digmug_constants.go - Digital Mugician instrument blob layout and engine constants

package formatsynth

// Digital Mugician instrument blob header (shared byte 0)
const (
	DM_TYPE_WAVE = 0
	DM_TYPE_PCM  = 1
)

// Wavetable instrument blob layout (type 0, minimum 24 bytes)
// All multi-byte fields are little-endian.
const (
	DM_OFF_TYPE       = 0  // Instrument type (0=wavetable)
	DM_OFF_WAVE_IDX   = 1  // 4 waveform slot indices (stored, data is embedded)
	DM_OFF_WAVE_BLEND = 5  // Morph position across the 4 slots (0-63)
	DM_OFF_WAVE_SPEED = 6  // Morph rate per tick (0-63)
	DM_OFF_VOLUME     = 7  // Playback volume, clamped to 64
	DM_OFF_ARP_SPEED  = 8  // Ticks per arpeggio step in low nibble
	DM_OFF_ARP_TABLE  = 9  // 8 signed semitone offsets
	DM_OFF_VIB_SPEED  = 17 // Ticks per LFO step (0-63)
	DM_OFF_VIB_DEPTH  = 18 // Depth in 1/32 semitone units (0-63)
	DM_OFF_WAVE_LEN   = 20 // Embedded waveform length (1-128)
	DM_OFF_WAVE_DATA  = 24 // One waveform cycle, signed 8-bit

	DM_WAVE_HEADER_LEN = 24
)

// PCM instrument blob layout (type 1, minimum 25 bytes)
const (
	DM_PCM_OFF_VOLUME     = 1  // Playback volume, clamped to 64
	DM_PCM_OFF_ARP_SPEED  = 2  // Ticks per arpeggio step in low nibble
	DM_PCM_OFF_ARP_TABLE  = 3  // 8 signed semitone offsets
	DM_PCM_OFF_VIB_SPEED  = 11 // Ticks per LFO step (0-63)
	DM_PCM_OFF_VIB_DEPTH  = 12 // Depth in 1/32 semitone units (0-63)
	DM_PCM_OFF_LENGTH     = 13 // Sample length in bytes
	DM_PCM_OFF_LOOP_START = 17 // Loop start offset
	DM_PCM_OFF_LOOP_LEN   = 21 // Loop length (<=2 means one-shot)
	DM_PCM_OFF_DATA       = 25 // Signed 8-bit sample bytes follow

	DM_PCM_HEADER_LEN = 25
)

// Engine limits
const (
	DM_WAVE_MAX      = 128 // Maximum embedded waveform length
	DM_ARP_TABLE_LEN = 8   // Arpeggio table entries
	DM_WAVE_SLOTS    = 4   // Waveform morph slots
)
