// script.go - Lua timeline bindings for fsrender

package main

import (
	"fmt"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"

	formatsynth "github.com/intuitionamiga/FormatSynth"
)

// renderBlock is the frame count pulled from the mixer per wait() iteration.
const renderBlock = 2048

// scriptHost wires a Lua state to a synth engine. Script calls mutate voices
// through the mixer; wait() advances time by pulling rendered audio into the
// frames accumulator, which main encodes as a WAV once the script returns.
type scriptHost struct {
	L      *lua.LState
	mixer  *formatsynth.SynthMixer
	format string
	rate   int
	frames [][2]float64
	buf    []float32
}

func newScriptHost(synth formatsynth.FormatSynth, format string) *scriptHost {
	sh := &scriptHost{
		L:      lua.NewState(),
		mixer:  formatsynth.NewSynthMixer(synth),
		format: format,
		rate:   synth.SampleRate(),
		buf:    make([]float32, renderBlock*2),
	}

	funcs := map[string]lua.LGFunction{
		"player":      sh.luaPlayer,
		"load":        sh.luaLoad,
		"instrument":  sh.luaInstrument,
		"note_on":     sh.luaNoteOn,
		"note_off":    sh.luaNoteOff,
		"set_param":   sh.luaSetParam,
		"get_param":   sh.luaGetParam,
		"is_playing":  sh.luaIsPlaying,
		"wait":        sh.luaWait,
		"gain":        sh.luaGain,
		"sample_rate": sh.luaSampleRate,
	}
	for name, fn := range funcs {
		sh.L.SetGlobal(name, sh.L.NewFunction(fn))
	}

	params := map[string]int{
		"PARAM_VOLUME":        formatsynth.PARAM_VOLUME,
		"PARAM_ATTACK_SPEED":  formatsynth.PARAM_ATTACK_SPEED,
		"PARAM_DECAY_SPEED":   formatsynth.PARAM_DECAY_SPEED,
		"PARAM_SUSTAIN_VOL":   formatsynth.PARAM_SUSTAIN_VOL,
		"PARAM_RELEASE_SPEED": formatsynth.PARAM_RELEASE_SPEED,
		"PARAM_VIB_SPEED":     formatsynth.PARAM_VIB_SPEED,
		"PARAM_VIB_DEPTH":     formatsynth.PARAM_VIB_DEPTH,
		"PARAM_VIB_DELAY":     formatsynth.PARAM_VIB_DELAY,
		"PARAM_ARP_SPEED":     formatsynth.PARAM_ARP_SPEED,
		"PARAM_PORTAMENTO":    formatsynth.PARAM_PORTAMENTO,
	}
	for name, id := range params {
		sh.L.SetGlobal(name, lua.LNumber(id))
	}

	return sh
}

func (sh *scriptHost) RunFile(path string) error {
	if err := sh.L.DoFile(path); err != nil {
		return fmt.Errorf("script %s: %w", path, err)
	}
	return nil
}

func (sh *scriptHost) Close() {
	sh.L.Close()
}

func (sh *scriptHost) luaPlayer(L *lua.LState) int {
	h, err := sh.mixer.CreatePlayer()
	if err != nil {
		L.RaiseError("player: %v", err)
	}
	L.Push(lua.LNumber(h))
	return 1
}

func (sh *scriptHost) luaLoad(L *lua.LState) int {
	h := L.CheckInt(1)
	path := L.CheckString(2)
	blob, err := os.ReadFile(path)
	if err != nil {
		L.RaiseError("load: %v", err)
	}
	if err := sh.mixer.LoadInstrument(h, blob); err != nil {
		L.RaiseError("load %s: %v", path, err)
	}
	return 0
}

func (sh *scriptHost) luaInstrument(L *lua.LState) int {
	h := L.CheckInt(1)
	tbl := L.CheckTable(2)

	var blob []byte
	switch sh.format {
	case "digmug", "dm", "dmu", "mug":
		blob = buildDigMug(tbl)
	default:
		blob = buildSoundMon(tbl)
	}
	if err := sh.mixer.LoadInstrument(h, blob); err != nil {
		L.RaiseError("instrument: %v", err)
	}
	return 0
}

func (sh *scriptHost) luaNoteOn(L *lua.LState) int {
	h := L.CheckInt(1)
	note := L.CheckInt(2)
	vel := L.OptInt(3, 100)
	if err := sh.mixer.NoteOn(h, note, vel); err != nil {
		L.RaiseError("note_on: %v", err)
	}
	return 0
}

func (sh *scriptHost) luaNoteOff(L *lua.LState) int {
	if err := sh.mixer.NoteOff(L.CheckInt(1)); err != nil {
		L.RaiseError("note_off: %v", err)
	}
	return 0
}

func (sh *scriptHost) luaSetParam(L *lua.LState) int {
	h := L.CheckInt(1)
	id := L.CheckInt(2)
	value := float32(L.CheckNumber(3))
	if err := sh.mixer.SetParam(h, id, value); err != nil {
		L.RaiseError("set_param: %v", err)
	}
	return 0
}

func (sh *scriptHost) luaGetParam(L *lua.LState) int {
	h := L.CheckInt(1)
	id := L.CheckInt(2)
	v, err := sh.mixer.GetParam(h, id)
	if err != nil {
		L.RaiseError("get_param: %v", err)
	}
	L.Push(lua.LNumber(v))
	return 1
}

func (sh *scriptHost) luaIsPlaying(L *lua.LState) int {
	L.Push(lua.LBool(sh.mixer.IsPlaying(L.CheckInt(1))))
	return 1
}

func (sh *scriptHost) luaWait(L *lua.LState) int {
	sec := float64(L.CheckNumber(1))
	if sec < 0 {
		L.RaiseError("wait: negative duration")
	}
	sh.render(int(sec * float64(sh.rate)))
	return 0
}

func (sh *scriptHost) luaGain(L *lua.LState) int {
	sh.mixer.SetGain(float32(L.CheckNumber(1)))
	return 0
}

func (sh *scriptHost) luaSampleRate(L *lua.LState) int {
	L.Push(lua.LNumber(sh.rate))
	return 1
}

// render pulls the given number of stereo frames from the mixer and appends
// them to the output accumulator.
func (sh *scriptHost) render(frames int) {
	for frames > 0 {
		n := frames
		if n > renderBlock {
			n = renderBlock
		}
		got := sh.mixer.ReadSamples(sh.buf[:n*2]) / 2
		for i := 0; i < got; i++ {
			sh.frames = append(sh.frames, [2]float64{
				float64(sh.buf[i*2]),
				float64(sh.buf[i*2+1]),
			})
		}
		frames -= n
	}
}

// tblInt reads an integer field from a Lua table, or def when absent.
func tblInt(tbl *lua.LTable, key string, def int) int {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return def
}

// tblArp copies a Lua array of semitone offsets into an arpeggio table.
// Entries beyond len(out) are ignored.
func tblArp(tbl *lua.LTable, key string, out []int8) {
	arr, ok := tbl.RawGetString(key).(*lua.LTable)
	if !ok {
		return
	}
	n := arr.Len()
	for i := 0; i < n && i < len(out); i++ {
		if num, ok := arr.RawGetInt(i + 1).(lua.LNumber); ok {
			out[i] = int8(num)
		}
	}
}

// waveIndex resolves a wave field given either as a numeric index or as one
// of the built-in wave names.
func waveIndex(v lua.LValue) int {
	switch w := v.(type) {
	case lua.LNumber:
		return int(w) & (formatsynth.SM_NUM_WAVES - 1)
	case lua.LString:
		name := strings.ToLower(string(w))
		for i, n := range formatsynth.SoundMonWaveNames {
			if n == name {
				return i
			}
		}
	}
	return 0
}

// buildSoundMon encodes a SoundMon synth patch from a Lua table. Unset
// fields fall back to a plain plucked envelope.
func buildSoundMon(tbl *lua.LTable) []byte {
	ins := &formatsynth.SoundMonInstrument{
		WaveType:     waveIndex(tbl.RawGetString("wave")),
		AttackVol:    uint8(tblInt(tbl, "attack_vol", 64)),
		DecayVol:     uint8(tblInt(tbl, "decay_vol", 48)),
		SustainVol:   uint8(tblInt(tbl, "sustain_vol", 40)),
		ReleaseVol:   uint8(tblInt(tbl, "release_vol", 0)),
		AttackSpeed:  uint8(tblInt(tbl, "attack_speed", 1)),
		DecaySpeed:   uint8(tblInt(tbl, "decay_speed", 3)),
		SustainLen:   uint8(tblInt(tbl, "sustain_len", 0)),
		ReleaseSpeed: uint8(tblInt(tbl, "release_speed", 6)),
		VibDelay:     uint8(tblInt(tbl, "vib_delay", 0)),
		VibSpeed:     uint8(tblInt(tbl, "vib_speed", 0)),
		VibDepth:     uint8(tblInt(tbl, "vib_depth", 0)),
		ArpSpeed:     uint8(tblInt(tbl, "arp_speed", 0)),
	}
	tblArp(tbl, "arp", ins.ArpTable[:])
	return ins.Encode()
}

// buildDigMug encodes a Digital Mugician wavetable patch from a Lua table.
// The wave field accepts either a raw sample array (up to 128 entries) or a
// built-in wave name/index, which seeds the embedded wavetable.
func buildDigMug(tbl *lua.LTable) []byte {
	ins := &formatsynth.DigMugInstrument{
		Volume:   uint8(tblInt(tbl, "volume", 64)),
		VibSpeed: uint8(tblInt(tbl, "vib_speed", 0)),
		VibDepth: uint8(tblInt(tbl, "vib_depth", 0)),
		ArpSpeed: uint8(tblInt(tbl, "arp_speed", 0)),
	}
	tblArp(tbl, "arp", ins.ArpTable[:])

	switch w := tbl.RawGetString("wave").(type) {
	case *lua.LTable:
		n := w.Len()
		if n > formatsynth.DM_WAVE_MAX {
			n = formatsynth.DM_WAVE_MAX
		}
		for i := 0; i < n; i++ {
			if num, ok := w.RawGetInt(i + 1).(lua.LNumber); ok {
				ins.WaveData[i] = int8(num)
			}
		}
		ins.WaveLen = n
	default:
		idx := waveIndex(w)
		copy(ins.WaveData[:], formatsynth.SoundMonWaves[idx][:])
		ins.WaveLen = formatsynth.SM_WAVE_LEN
	}
	return ins.Encode()
}
