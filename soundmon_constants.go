// soundmon_constants.go - SoundMon instrument blob layout and engine constants

package formatsynth

// SoundMon instrument blob header (shared byte 0)
// Byte 0 selects synth (0) or PCM sampler (1); higher values are invalid.
const (
	SM_TYPE_SYNTH = 0
	SM_TYPE_PCM   = 1
)

// Synth instrument blob layout (type 0, minimum 36 bytes)
// All multi-byte fields are little-endian.
const (
	SM_OFF_TYPE         = 0  // Instrument type (0=synth)
	SM_OFF_WAVE_TYPE    = 1  // Built-in wave select in low nibble (0-15)
	SM_OFF_ARP_SPEED    = 3  // Ticks per arpeggio step (0 treated as 1)
	SM_OFF_ATTACK_VOL   = 4  // Envelope attack target (0-64)
	SM_OFF_DECAY_VOL    = 5  // Envelope decay target (0-64)
	SM_OFF_SUSTAIN_VOL  = 6  // Envelope sustain level (0-64)
	SM_OFF_RELEASE_VOL  = 7  // Stored, release always fades to zero
	SM_OFF_ATTACK_SPEED = 8  // Attack interpolation speed
	SM_OFF_DECAY_SPEED  = 9  // Decay interpolation speed
	SM_OFF_SUSTAIN_LEN  = 10 // Sustain hold ticks (0=until note off)
	SM_OFF_REL_SPEED    = 11 // Release interpolation speed
	SM_OFF_VIB_DELAY    = 12 // Ticks before vibrato onset
	SM_OFF_VIB_SPEED    = 13 // Wheel steps per tick
	SM_OFF_VIB_DEPTH    = 14 // Depth, semitone offset = depth/32
	SM_OFF_PORT_SPEED   = 15 // Portamento speed (stored)
	SM_OFF_ARP_TABLE    = 16 // 16 semitone offsets, all-zero = no arpeggio
	SM_OFF_WAVE_LEN     = 32 // Custom wave length (0=use built-in)
	SM_OFF_WAVE_DATA    = 36 // Custom wave bytes follow the header

	SM_SYNTH_HEADER_LEN = 36
)

// PCM instrument blob layout (type 1, minimum 16 bytes)
const (
	SM_PCM_OFF_VOLUME     = 1  // Playback volume (0-64)
	SM_PCM_OFF_FINETUNE   = 2  // Signed, semitone offset = finetune/8
	SM_PCM_OFF_TRANSPOSE  = 3  // Signed semitone transpose
	SM_PCM_OFF_LENGTH     = 4  // Sample length in bytes
	SM_PCM_OFF_LOOP_START = 8  // Loop start offset
	SM_PCM_OFF_LOOP_LEN   = 12 // Loop length (<=2 means one-shot)
	SM_PCM_OFF_DATA       = 16 // Signed 8-bit sample bytes follow

	SM_PCM_HEADER_LEN = 16
)

// Envelope phases, advanced once per 50Hz tick
const (
	SM_ENV_OFF = iota
	SM_ENV_ATTACK
	SM_ENV_DECAY
	SM_ENV_SUSTAIN
	SM_ENV_RELEASE
)

// Engine limits
const (
	SM_WAVE_LEN      = 64 // Built-in synth waveform length in bytes
	SM_NUM_WAVES     = 16 // Built-in waveform count
	SM_ARP_TABLE_LEN = 16 // Arpeggio table entries
)
