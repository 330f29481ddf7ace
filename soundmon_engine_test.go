// soundmon_engine_test.go - Tests for the SoundMon engine, envelope and
// voice pool

package formatsynth

import (
	"errors"
	"testing"
)

// newSMTestSynth creates an engine at a low sample rate (160 samples per
// tick) so tick-boundary tests stay fast.
func newSMTestSynth(t *testing.T) *SoundMonSynth {
	t.Helper()
	s, err := NewSoundMonSynth(8000)
	if err != nil {
		t.Fatalf("NewSoundMonSynth failed: %v", err)
	}
	return s
}

// smTestPatch returns a square-wave patch with an instant attack, an
// indefinite sustain at full volume and no vibrato or arpeggio.
func smTestPatch() *SoundMonInstrument {
	return &SoundMonInstrument{
		Type:         SM_TYPE_SYNTH,
		WaveType:     1, // square
		AttackVol:    64,
		DecayVol:     64,
		SustainVol:   64,
		ReleaseSpeed: 4,
	}
}

func smLoadVoice(t *testing.T, s *SoundMonSynth, ins *SoundMonInstrument) int {
	t.Helper()
	h, err := s.CreatePlayer()
	if err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}
	if err := s.LoadInstrument(h, ins.Encode()); err != nil {
		t.Fatalf("LoadInstrument failed: %v", err)
	}
	return h
}

// TestSoundMon_CreatePlayer tests slot allocation order and reuse after
// destroy
func TestSoundMon_CreatePlayer(t *testing.T) {
	s := newSMTestSynth(t)

	h0, err := s.CreatePlayer()
	if err != nil || h0 != 0 {
		t.Fatalf("first CreatePlayer = (%d, %v), want (0, nil)", h0, err)
	}
	h1, err := s.CreatePlayer()
	if err != nil || h1 != 1 {
		t.Fatalf("second CreatePlayer = (%d, %v), want (1, nil)", h1, err)
	}

	if err := s.DestroyPlayer(h0); err != nil {
		t.Fatalf("DestroyPlayer failed: %v", err)
	}
	h, err := s.CreatePlayer()
	if err != nil || h != 0 {
		t.Errorf("CreatePlayer after destroy = (%d, %v), want (0, nil)", h, err)
	}
}

// TestSoundMon_PoolExhausted tests the hard 8-voice limit
func TestSoundMon_PoolExhausted(t *testing.T) {
	s := newSMTestSynth(t)
	for i := 0; i < MAX_PLAYERS; i++ {
		if _, err := s.CreatePlayer(); err != nil {
			t.Fatalf("CreatePlayer %d failed: %v", i, err)
		}
	}

	h, err := s.CreatePlayer()
	if err == nil {
		t.Fatal("9th CreatePlayer should fail")
	}
	if !errors.Is(err, ErrPoolExhausted) {
		t.Errorf("error %v should wrap ErrPoolExhausted", err)
	}
	if h != -1 {
		t.Errorf("exhausted CreatePlayer handle = %d, want -1", h)
	}
	if ErrorCode(err) != -1 {
		t.Errorf("ErrorCode = %d, want -1", ErrorCode(err))
	}
}

// TestSoundMon_InvalidHandle tests that every operation fails closed on bad
// handles
func TestSoundMon_InvalidHandle(t *testing.T) {
	s := newSMTestSynth(t)

	for _, h := range []int{-1, 3, MAX_PLAYERS, 99} {
		if err := s.LoadInstrument(h, smTestPatch().Encode()); !errors.Is(err, ErrInvalidHandle) {
			t.Errorf("LoadInstrument(%d) error = %v, want ErrInvalidHandle", h, err)
		}
		if err := s.NoteOn(h, 60, 100); !errors.Is(err, ErrInvalidHandle) {
			t.Errorf("NoteOn(%d) error = %v, want ErrInvalidHandle", h, err)
		}
		if err := s.NoteOff(h); !errors.Is(err, ErrInvalidHandle) {
			t.Errorf("NoteOff(%d) error = %v, want ErrInvalidHandle", h, err)
		}
		if s.IsPlaying(h) {
			t.Errorf("IsPlaying(%d) = true, want false", h)
		}
		left := make([]float32, 16)
		right := make([]float32, 16)
		if n := s.Render(h, left, right); n != 0 {
			t.Errorf("Render(%d) = %d, want 0", h, n)
		}
		if err := s.SetParam(h, PARAM_VOLUME, 0.5); !errors.Is(err, ErrInvalidHandle) {
			t.Errorf("SetParam(%d) error = %v, want ErrInvalidHandle", h, err)
		}
		v, err := s.GetParam(h, PARAM_VOLUME)
		if !errors.Is(err, ErrInvalidHandle) || v != -1 {
			t.Errorf("GetParam(%d) = (%f, %v), want (-1, ErrInvalidHandle)", h, v, err)
		}
	}
}

// TestSoundMon_LoadKeepsPreviousOnError tests that a failed decode does not
// clobber the loaded patch
func TestSoundMon_LoadKeepsPreviousOnError(t *testing.T) {
	s := newSMTestSynth(t)
	h := smLoadVoice(t, s, smTestPatch())

	err := s.LoadInstrument(h, []byte{0x09})
	if !errors.Is(err, ErrInvalidHeader) {
		t.Fatalf("error = %v, want ErrInvalidHeader", err)
	}

	vol, err := s.GetParam(h, PARAM_VOLUME)
	if err != nil {
		t.Fatalf("GetParam failed: %v", err)
	}
	if vol != 1.0 {
		t.Errorf("volume after failed load = %f, want 1.0", vol)
	}
}

// TestSoundMon_InstantAttackFirstSample tests that attackSpeed 0 makes the
// very first rendered sample audible at full envelope volume
func TestSoundMon_InstantAttackFirstSample(t *testing.T) {
	s := newSMTestSynth(t)
	h := smLoadVoice(t, s, smTestPatch())

	if err := s.NoteOn(h, 60, 127); err != nil {
		t.Fatalf("NoteOn failed: %v", err)
	}

	left := make([]float32, 10)
	right := make([]float32, 10)
	n := s.Render(h, left, right)
	if n != 10 {
		t.Fatalf("Render = %d, want 10", n)
	}

	// Square wave sample 127 at envelope volume 64: 127 * 64 / (64*128).
	want := float32(127) * (float32(64) * float32(volumeNorm))
	if left[0] != want {
		t.Errorf("left[0] = %f, want %f", left[0], want)
	}
	if right[0] != left[0] {
		t.Errorf("right[0] = %f, want mono duplicate %f", right[0], left[0])
	}
}

// TestSoundMon_AttackMonotonic tests that the attack ramp never decreases
// on its way to the attack target
func TestSoundMon_AttackMonotonic(t *testing.T) {
	s := newSMTestSynth(t)
	ins := smTestPatch()
	ins.AttackSpeed = 3 // 13-tick attack ramp
	h := smLoadVoice(t, s, ins)
	s.NoteOn(h, 60, 127)

	v := &s.voices[h]
	if v.envVol != 0 {
		t.Fatalf("ramped attack should start at 0, got %f", v.envVol)
	}

	prev := v.envVol
	for i := 0; i < 13; i++ {
		s.tick(v)
		if v.envVol < prev {
			t.Fatalf("envelope fell from %f to %f during attack", prev, v.envVol)
		}
		prev = v.envVol
	}
	if v.envVol != 64 {
		t.Errorf("attack end volume = %f, want 64", v.envVol)
	}
	if v.envPhase != SM_ENV_DECAY {
		t.Errorf("envPhase = %d, want decay", v.envPhase)
	}
}

// TestSoundMon_DecayReachesSustain tests the decay interpolation and the
// hand-off into sustain
func TestSoundMon_DecayReachesSustain(t *testing.T) {
	s := newSMTestSynth(t)
	ins := smTestPatch()
	ins.DecaySpeed = 2 // 9-tick decay ramp
	ins.DecayVol = 32
	ins.SustainVol = 24
	h := smLoadVoice(t, s, ins)
	s.NoteOn(h, 60, 127)

	v := &s.voices[h]
	s.tick(v) // instant attack
	if v.envPhase != SM_ENV_DECAY || v.envVol != 64 {
		t.Fatalf("after attack: phase %d vol %f, want decay at 64", v.envPhase, v.envVol)
	}

	for i := 0; i < 9; i++ {
		s.tick(v)
	}
	if v.envPhase != SM_ENV_SUSTAIN {
		t.Fatalf("after 9 decay ticks: phase = %d, want sustain", v.envPhase)
	}
	if v.envVol != 32 {
		t.Errorf("decay end volume = %f, want 32", v.envVol)
	}

	s.tick(v)
	if v.envVol != 24 {
		t.Errorf("sustain volume = %f, want 24", v.envVol)
	}
}

// TestSoundMon_SustainHolds tests that sustainLen 0 holds the sustain level
// indefinitely
func TestSoundMon_SustainHolds(t *testing.T) {
	s := newSMTestSynth(t)
	h := smLoadVoice(t, s, smTestPatch())
	s.NoteOn(h, 60, 127)

	v := &s.voices[h]
	for i := 0; i < 10000; i++ {
		s.tick(v)
	}
	if v.envPhase != SM_ENV_SUSTAIN {
		t.Errorf("envPhase after 10000 ticks = %d, want sustain", v.envPhase)
	}
	if !v.playing {
		t.Error("voice should still be playing")
	}
	if v.envVol != 64 {
		t.Errorf("envVol = %f, want 64", v.envVol)
	}
}

// TestSoundMon_SustainTimeoutAutoReleases tests that a non-zero sustainLen
// releases the note by itself
func TestSoundMon_SustainTimeoutAutoReleases(t *testing.T) {
	s := newSMTestSynth(t)
	ins := smTestPatch()
	ins.SustainLen = 5
	h := smLoadVoice(t, s, ins)
	s.NoteOn(h, 60, 127)

	// 1 attack tick + 1 decay tick + 5 sustain ticks.
	v := &s.voices[h]
	for i := 0; i < 7; i++ {
		s.tick(v)
	}
	if v.envPhase != SM_ENV_RELEASE {
		t.Fatalf("envPhase after sustain timeout = %d, want release", v.envPhase)
	}

	// releaseSpeed 4: 17 ticks to silence, then the slot frees itself.
	for i := 0; i < 17; i++ {
		s.tick(v)
	}
	if v.playing || v.alive {
		t.Errorf("voice after release: playing=%v alive=%v, want both false", v.playing, v.alive)
	}
}

// TestSoundMon_ReleaseFromHeldVolume tests that note-off releases from the
// envelope's current volume, not from the sustain setting
func TestSoundMon_ReleaseFromHeldVolume(t *testing.T) {
	s := newSMTestSynth(t)
	ins := smTestPatch()
	ins.DecaySpeed = 10 // 41-tick decay so note-off lands mid-decay
	ins.DecayVol = 0
	ins.SustainVol = 64
	h := smLoadVoice(t, s, ins)
	s.NoteOn(h, 60, 127)

	v := &s.voices[h]
	s.tick(v) // attack
	s.tick(v) // first decay step
	held := v.envVol
	if held >= 64 || held <= 0 {
		t.Fatalf("mid-decay volume = %f, want between 0 and 64", held)
	}

	s.NoteOff(h)
	if v.envPhase != SM_ENV_RELEASE {
		t.Fatalf("envPhase = %d, want release", v.envPhase)
	}
	if v.releaseFromVol != held {
		t.Errorf("releaseFromVol = %f, want held %f", v.releaseFromVol, held)
	}

	s.tick(v)
	if v.envVol >= held {
		t.Errorf("first release tick volume = %f, should fall below %f", v.envVol, held)
	}
	rt := float32(1) / (float32(4)*4 + 1)
	want := held * (1 - rt)
	if v.envVol != want {
		t.Errorf("first release tick volume = %f, want %f", v.envVol, want)
	}
}

// TestSoundMon_NoteOffDuringReleaseIsNoop tests that repeated note-offs do
// not restart the release ramp
func TestSoundMon_NoteOffDuringReleaseIsNoop(t *testing.T) {
	s := newSMTestSynth(t)
	h := smLoadVoice(t, s, smTestPatch())
	s.NoteOn(h, 60, 127)
	s.NoteOff(h)

	v := &s.voices[h]
	s.tick(v)
	s.tick(v)
	ctr := v.envTickCtr
	from := v.releaseFromVol

	s.NoteOff(h)
	if v.envTickCtr != ctr || v.releaseFromVol != from {
		t.Error("second NoteOff should not restart the release")
	}
}

// TestSoundMon_ZeroDepthVibratoNeutral tests that vibrato with depth 0 is
// bit-identical to no vibrato at all, whatever the speed and delay
func TestSoundMon_ZeroDepthVibratoNeutral(t *testing.T) {
	mk := func(vibSpeed, vibDelay uint8) []float32 {
		s := newSMTestSynth(t)
		ins := smTestPatch()
		ins.VibDepth = 0
		ins.VibSpeed = vibSpeed
		ins.VibDelay = vibDelay
		h := smLoadVoice(t, s, ins)
		s.NoteOn(h, 72, 127)
		left := make([]float32, 2000)
		right := make([]float32, 2000)
		s.Render(h, left, right)
		return left
	}

	plain := mk(0, 0)
	spun := mk(6, 3)
	for i := range plain {
		if plain[i] != spun[i] {
			t.Fatalf("sample %d differs: %f vs %f", i, plain[i], spun[i])
		}
	}
}

// TestSoundMon_VibratoBendsPitch tests the LFO quarter-wheel bend of the
// phase increment
func TestSoundMon_VibratoBendsPitch(t *testing.T) {
	s := newSMTestSynth(t)
	ins := smTestPatch()
	ins.VibDepth = 32 // +/- one semitone
	ins.VibSpeed = 1
	h := smLoadVoice(t, s, ins)
	s.NoteOn(h, 60, 127)

	v := &s.voices[h]
	for i := 0; i < 16; i++ {
		s.tick(v)
	}
	// vibPhase 16 is the crest of the wheel: exactly +1 semitone.
	if v.vibPhase != 16 {
		t.Fatalf("vibPhase = %f, want 16", v.vibPhase)
	}
	want := wavePhaseInc(midiNoteToFreq(61), SM_WAVE_LEN, 8000)
	got := v.vibPhaseInc
	if diff := got - want; diff > 1e-4 || diff < -1e-4 {
		t.Errorf("vibPhaseInc at crest = %f, want %f", got, want)
	}
}

// TestSoundMon_VibratoDelayCountsDown tests that the LFO contributes
// nothing until the delay expires
func TestSoundMon_VibratoDelayCountsDown(t *testing.T) {
	s := newSMTestSynth(t)
	ins := smTestPatch()
	ins.VibDepth = 32
	ins.VibSpeed = 1
	ins.VibDelay = 3
	h := smLoadVoice(t, s, ins)
	s.NoteOn(h, 60, 127)

	v := &s.voices[h]
	base := v.phaseInc
	for i := 0; i < 3; i++ {
		s.tick(v)
		if v.vibPhaseInc != base {
			t.Fatalf("tick %d: vibrato bent pitch during delay", i+1)
		}
	}
	if v.vibDelayCtr != 0 {
		t.Fatalf("vibDelayCtr = %d, want 0", v.vibDelayCtr)
	}

	s.tick(v)
	if v.vibPhase != 1 {
		t.Errorf("vibPhase after delay = %f, want 1", v.vibPhase)
	}
}

// TestSoundMon_AllZeroArpNeverAdvances tests the disabled-arpeggio sentinel
func TestSoundMon_AllZeroArpNeverAdvances(t *testing.T) {
	s := newSMTestSynth(t)
	ins := smTestPatch()
	ins.ArpSpeed = 1
	h := smLoadVoice(t, s, ins)
	s.NoteOn(h, 60, 127)

	v := &s.voices[h]
	for i := 0; i < 500; i++ {
		s.tick(v)
	}
	if v.arpIdx != 0 {
		t.Errorf("arpIdx = %d, want 0", v.arpIdx)
	}
	if v.arpTickCtr != 0 {
		t.Errorf("arpTickCtr = %d, want 0", v.arpTickCtr)
	}
}

// TestSoundMon_ArpCyclesTable tests stepping and wrap-around through the
// 16-entry table
func TestSoundMon_ArpCyclesTable(t *testing.T) {
	s := newSMTestSynth(t)
	ins := smTestPatch()
	ins.ArpSpeed = 2
	ins.ArpTable[1] = 12
	h := smLoadVoice(t, s, ins)
	s.NoteOn(h, 60, 127)

	v := &s.voices[h]
	s.tick(v)
	s.tick(v)
	if v.arpIdx != 1 {
		t.Fatalf("arpIdx after 2 ticks = %d, want 1", v.arpIdx)
	}
	// Entry 1 is +12 semitones: the phase increment doubles.
	want := wavePhaseInc(midiNoteToFreq(72), SM_WAVE_LEN, 8000)
	if diff := v.vibPhaseInc - want; diff > 1e-4 || diff < -1e-4 {
		t.Errorf("vibPhaseInc = %f, want %f", v.vibPhaseInc, want)
	}

	// 16 steps bring the index back to 0.
	for i := 0; i < 30; i++ {
		s.tick(v)
	}
	if v.arpIdx != 0 {
		t.Errorf("arpIdx after full cycle = %d, want 0", v.arpIdx)
	}
}

// TestSoundMon_ArpSpeedZeroStepsEveryTick tests the speed floor of one tick
// per step
func TestSoundMon_ArpSpeedZeroStepsEveryTick(t *testing.T) {
	s := newSMTestSynth(t)
	ins := smTestPatch()
	ins.ArpSpeed = 0
	ins.ArpTable[1] = 7
	h := smLoadVoice(t, s, ins)
	s.NoteOn(h, 60, 127)

	v := &s.voices[h]
	s.tick(v)
	if v.arpIdx != 1 {
		t.Errorf("arpIdx after 1 tick = %d, want 1", v.arpIdx)
	}
}

// TestSoundMon_ReleaseFreesVoiceForReuse tests that rendering through the
// release tail hands the slot back to the pool
func TestSoundMon_ReleaseFreesVoiceForReuse(t *testing.T) {
	s := newSMTestSynth(t)
	handles := make([]int, MAX_PLAYERS)
	for i := range handles {
		h, err := s.CreatePlayer()
		if err != nil {
			t.Fatalf("CreatePlayer %d failed: %v", i, err)
		}
		handles[i] = h
	}
	if _, err := s.CreatePlayer(); !errors.Is(err, ErrPoolExhausted) {
		t.Fatalf("pool should be exhausted, got %v", err)
	}

	h := handles[0]
	if err := s.LoadInstrument(h, smTestPatch().Encode()); err != nil {
		t.Fatalf("LoadInstrument failed: %v", err)
	}
	s.NoteOn(h, 60, 127)
	s.NoteOff(h)

	// releaseSpeed 4 silences in 17 ticks; render 20 ticks worth.
	left := make([]float32, 20*160)
	right := make([]float32, 20*160)
	produced := s.Render(h, left, right)
	if produced >= len(left) {
		t.Fatalf("voice should die mid-buffer, produced %d of %d", produced, len(left))
	}

	if s.IsPlaying(h) {
		t.Error("voice should be inactive after release")
	}
	if err := s.NoteOn(h, 60, 127); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("expired handle NoteOn error = %v, want ErrInvalidHandle", err)
	}

	reused, err := s.CreatePlayer()
	if err != nil {
		t.Fatalf("CreatePlayer after release failed: %v", err)
	}
	if reused != h {
		t.Errorf("reused slot = %d, want %d", reused, h)
	}
}

// TestSoundMon_EndToEnd walks a full note at 44.1kHz: instant attack,
// sustained hold, note-off, release to silence
func TestSoundMon_EndToEnd(t *testing.T) {
	s, err := NewSoundMonSynth(44100)
	if err != nil {
		t.Fatalf("NewSoundMonSynth failed: %v", err)
	}
	ins := &SoundMonInstrument{
		Type:         SM_TYPE_SYNTH,
		WaveType:     1,
		AttackVol:    64,
		DecayVol:     40,
		SustainVol:   40,
		ReleaseSpeed: 4,
	}
	h := smLoadVoice(t, s, ins)

	if err := s.NoteOn(h, 60, 127); err != nil {
		t.Fatalf("NoteOn failed: %v", err)
	}

	left := make([]float32, 10)
	right := make([]float32, 10)
	if n := s.Render(h, left, right); n != 10 {
		t.Fatalf("Render = %d, want 10", n)
	}
	want := float32(127) * (float32(64) * float32(volumeNorm))
	if left[0] != want {
		t.Errorf("first sample = %f, want %f (envelope 64)", left[0], want)
	}

	if err := s.NoteOff(h); err != nil {
		t.Fatalf("NoteOff failed: %v", err)
	}

	// 17 release ticks at 882 samples per tick, plus slack.
	tail := make([]float32, 19*882)
	tailR := make([]float32, 19*882)
	produced := s.Render(h, tail, tailR)
	if produced >= len(tail) {
		t.Fatalf("voice should fall silent mid-buffer, produced %d", produced)
	}
	if tail[len(tail)-1] != 0 || tailR[len(tailR)-1] != 0 {
		t.Error("post-release samples should be silent")
	}
	if s.IsPlaying(h) {
		t.Error("voice should report inactive after release")
	}
}

// TestSoundMon_PCMLoopLandsInWindow tests that a looping sample wraps into
// [loopStart, loopStart+loopLen), never outside
func TestSoundMon_PCMLoopLandsInWindow(t *testing.T) {
	s := newSMTestSynth(t)
	pcm := make([]int8, 100)
	for i := range pcm {
		pcm[i] = int8(i)
	}
	ins := &SoundMonInstrument{
		Type:      SM_TYPE_PCM,
		PCMVolume: 64,
		PCMData:   pcm,
		LoopStart: 20,
		LoopLen:   30,
	}
	h := smLoadVoice(t, s, ins)
	s.NoteOn(h, 60, 127)

	left := make([]float32, 1)
	right := make([]float32, 1)
	v := &s.voices[h]

	cases := []struct {
		phase float32
		land  int8
	}{
		{150, 30}, // 150 -> 120 -> 90 -> 60 -> 30
		{100, 40}, // 100 -> 70 -> 40
		{131, 41}, // 131 -> 101 -> 71 -> 41
	}
	for _, tc := range cases {
		v.phase = tc.phase
		s.Render(h, left, right)
		// PCM bytes hold their own index, so the output names the landing
		// spot directly.
		want := float32(tc.land) * (float32(64) * float32(volumeNorm))
		if left[0] != want {
			t.Errorf("phase %.0f landed on %f, want sample %d (%f)",
				tc.phase, left[0], tc.land, want)
		}
		if land := int(v.phase); land < 20 || land >= 50 {
			t.Errorf("phase %.0f landed at %d, outside [20,50)", tc.phase, land)
		}
	}
}

// TestSoundMon_PCMLoopNeverEscapes renders a looping sample long enough to
// wrap many times and checks every output stays inside the loop range
func TestSoundMon_PCMLoopNeverEscapes(t *testing.T) {
	s := newSMTestSynth(t)
	pcm := make([]int8, 100)
	for i := range pcm {
		pcm[i] = int8(i)
	}
	ins := &SoundMonInstrument{
		Type:      SM_TYPE_PCM,
		PCMVolume: 64,
		PCMData:   pcm,
		LoopStart: 20,
		LoopLen:   30,
	}
	h := smLoadVoice(t, s, ins)
	s.NoteOn(h, 60, 127)

	left := make([]float32, 8000)
	right := make([]float32, 8000)
	if n := s.Render(h, left, right); n != 8000 {
		t.Fatalf("looping sample stopped early: %d", n)
	}

	// Middle C advances ~0.0327 bytes per sample, so the first pass over
	// the sample ends near sample 3058; after that everything replays from
	// byte 20 onward.
	vol := float32(64) * float32(volumeNorm)
	for i := 3100; i < 8000; i++ {
		idx := left[i] / vol
		if idx < 20 || idx >= 100 {
			t.Fatalf("sample %d reads byte %f, outside the looped region", i, idx)
		}
	}
}

// TestSoundMon_PCMOneShotFreesVoice tests that a non-looping sample
// deactivates the voice and returns its slot when it runs out
func TestSoundMon_PCMOneShotFreesVoice(t *testing.T) {
	s := newSMTestSynth(t)
	ins := &SoundMonInstrument{
		Type:      SM_TYPE_PCM,
		PCMVolume: 64,
		PCMData:   make([]int8, 50),
	}
	h := smLoadVoice(t, s, ins)
	s.NoteOn(h, 60, 127)

	left := make([]float32, 4000)
	right := make([]float32, 4000)
	produced := s.Render(h, left, right)
	if produced >= 4000 {
		t.Fatalf("one-shot sample should exhaust, produced %d", produced)
	}
	if s.IsPlaying(h) {
		t.Error("voice should be inactive after exhaustion")
	}
	if err := s.NoteOn(h, 60, 127); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("expired handle error = %v, want ErrInvalidHandle", err)
	}
	if reused, err := s.CreatePlayer(); err != nil || reused != h {
		t.Errorf("CreatePlayer = (%d, %v), want (%d, nil)", reused, err, h)
	}
}

// TestSoundMon_PCMTransposeClamps tests transpose clamping to the MIDI
// range at note-on
func TestSoundMon_PCMTransposeClamps(t *testing.T) {
	s := newSMTestSynth(t)
	ins := &SoundMonInstrument{
		Type:      SM_TYPE_PCM,
		PCMVolume: 64,
		PCMData:   make([]int8, 1000),
		Transpose: 120,
	}
	h := smLoadVoice(t, s, ins)
	s.NoteOn(h, 60, 127)
	if got := s.voices[h].baseNote; got != 127 {
		t.Errorf("baseNote with transpose +120 = %d, want 127", got)
	}

	ins.Transpose = -120
	h2 := smLoadVoice(t, s, ins)
	s.NoteOn(h2, 60, 127)
	if got := s.voices[h2].baseNote; got != 0 {
		t.Errorf("baseNote with transpose -120 = %d, want 0", got)
	}
}

// TestSoundMon_PCMFinetune tests the 1/8-semitone finetune on PCM playback
// rate
func TestSoundMon_PCMFinetune(t *testing.T) {
	s := newSMTestSynth(t)
	ins := &SoundMonInstrument{
		Type:      SM_TYPE_PCM,
		PCMVolume: 64,
		PCMData:   make([]int8, 1000),
		Finetune:  8, // exactly one semitone up
	}
	h := smLoadVoice(t, s, ins)
	s.NoteOn(h, 60, 127)

	left := make([]float32, 100)
	right := make([]float32, 100)
	s.Render(h, left, right)

	want := 100 * midiNoteToFreq(61) / 8000
	got := s.voices[h].phase
	if diff := got - want; diff > 0.01 || diff < -0.01 {
		t.Errorf("phase after 100 samples = %f, want %f", got, want)
	}
}

// TestSoundMon_ParamStagedUntilTick tests that writes on a sounding voice
// land at the next tick boundary, not mid-buffer
func TestSoundMon_ParamStagedUntilTick(t *testing.T) {
	s := newSMTestSynth(t)
	h := smLoadVoice(t, s, smTestPatch())
	s.NoteOn(h, 60, 127)

	if err := s.SetParam(h, PARAM_VIB_DEPTH, 1.0); err != nil {
		t.Fatalf("SetParam failed: %v", err)
	}
	if got, _ := s.GetParam(h, PARAM_VIB_DEPTH); got != 0 {
		t.Errorf("staged write visible immediately: %f", got)
	}

	// 159 samples: still short of the 160-sample tick.
	left := make([]float32, 159)
	right := make([]float32, 159)
	s.Render(h, left, right)
	if got, _ := s.GetParam(h, PARAM_VIB_DEPTH); got != 0 {
		t.Errorf("staged write landed before the tick: %f", got)
	}

	// One more sample crosses the boundary.
	s.Render(h, left[:1], right[:1])
	if got, _ := s.GetParam(h, PARAM_VIB_DEPTH); got != 1.0 {
		t.Errorf("staged write after tick = %f, want 1.0", got)
	}
}

// TestSoundMon_ParamIdleAppliesImmediately tests the no-staging path for
// voices that are not sounding
func TestSoundMon_ParamIdleAppliesImmediately(t *testing.T) {
	s := newSMTestSynth(t)
	h := smLoadVoice(t, s, smTestPatch())

	if err := s.SetParam(h, PARAM_VOLUME, 0.5); err != nil {
		t.Fatalf("SetParam failed: %v", err)
	}
	if got, _ := s.GetParam(h, PARAM_VOLUME); got != 0.5 {
		t.Errorf("idle volume = %f, want 0.5", got)
	}
	v := &s.voices[h]
	if v.ins.AttackVol != 32 || v.ins.SustainVol != 32 || v.ins.DecayVol != 16 {
		t.Errorf("volume fields = %d/%d/%d, want 32/32/16",
			v.ins.AttackVol, v.ins.SustainVol, v.ins.DecayVol)
	}
}

// TestSoundMon_ParamClampsAndRejects tests value clamping and unknown IDs
func TestSoundMon_ParamClampsAndRejects(t *testing.T) {
	s := newSMTestSynth(t)
	h := smLoadVoice(t, s, smTestPatch())

	s.SetParam(h, PARAM_VOLUME, 2.0)
	if got, _ := s.GetParam(h, PARAM_VOLUME); got != 1.0 {
		t.Errorf("over-range volume = %f, want clamped 1.0", got)
	}
	s.SetParam(h, PARAM_VOLUME, -0.5)
	if got, _ := s.GetParam(h, PARAM_VOLUME); got != 0 {
		t.Errorf("under-range volume = %f, want clamped 0", got)
	}

	if err := s.SetParam(h, 10, 0.5); err == nil {
		t.Error("reserved parameter 10 should be rejected")
	}
	if err := s.SetParam(h, PARAM_FORMAT_BASE, 0.5); err == nil {
		t.Error("format-specific range should be rejected")
	}
	v, err := s.GetParam(h, 42)
	if err == nil || v != -1 {
		t.Errorf("GetParam(42) = (%f, %v), want (-1, error)", v, err)
	}
}

// TestSoundMon_VelocityScalesEnvelope tests that velocity scales the
// envelope targets linearly
func TestSoundMon_VelocityScalesEnvelope(t *testing.T) {
	s := newSMTestSynth(t)
	h := smLoadVoice(t, s, smTestPatch())
	s.NoteOn(h, 60, 64)

	left := make([]float32, 1)
	right := make([]float32, 1)
	s.Render(h, left, right)

	vs := float32(64) / 127.0
	want := float32(127) * (float32(64) * vs * float32(volumeNorm))
	if left[0] != want {
		t.Errorf("velocity-64 sample = %f, want %f", left[0], want)
	}
}

// TestSoundMon_RetriggerDuringRelease tests that a releasing voice can be
// re-noted while its slot is still held
func TestSoundMon_RetriggerDuringRelease(t *testing.T) {
	s := newSMTestSynth(t)
	h := smLoadVoice(t, s, smTestPatch())
	s.NoteOn(h, 60, 127)
	s.NoteOff(h)

	v := &s.voices[h]
	s.tick(v)
	s.tick(v)
	if v.envPhase != SM_ENV_RELEASE {
		t.Fatalf("envPhase = %d, want release", v.envPhase)
	}

	if err := s.NoteOn(h, 72, 127); err != nil {
		t.Fatalf("retrigger failed: %v", err)
	}
	if v.envPhase != SM_ENV_ATTACK {
		t.Errorf("envPhase after retrigger = %d, want attack", v.envPhase)
	}
	if v.envVol != 64 {
		t.Errorf("envVol after retrigger = %f, want 64 (instant attack)", v.envVol)
	}
	if !v.playing {
		t.Error("retriggered voice should be playing")
	}
}

// TestSoundMon_RenderBufferMismatch tests that the shorter channel buffer
// bounds the frame count and the rest stays zeroed
func TestSoundMon_RenderBufferMismatch(t *testing.T) {
	s := newSMTestSynth(t)
	h := smLoadVoice(t, s, smTestPatch())
	s.NoteOn(h, 60, 127)

	left := make([]float32, 100)
	right := make([]float32, 50)
	n := s.Render(h, left, right)
	if n != 50 {
		t.Errorf("Render = %d, want 50", n)
	}
	for i := 50; i < 100; i++ {
		if left[i] != 0 {
			t.Fatalf("left[%d] = %f, want 0 beyond the rendered range", i, left[i])
		}
	}
}

// TestSoundMon_RenderDoesNotAllocate tests the real-time guarantee on the
// render path
func TestSoundMon_RenderDoesNotAllocate(t *testing.T) {
	s := newSMTestSynth(t)
	h := smLoadVoice(t, s, smTestPatch())
	s.NoteOn(h, 60, 127)

	left := make([]float32, 512)
	right := make([]float32, 512)
	allocs := testing.AllocsPerRun(50, func() {
		s.Render(h, left, right)
	})
	if allocs != 0 {
		t.Errorf("Render allocates %v times per call, want 0", allocs)
	}
}

// TestSoundMon_Close tests that closing the engine expires every handle
func TestSoundMon_Close(t *testing.T) {
	s := newSMTestSynth(t)
	h := smLoadVoice(t, s, smTestPatch())
	s.NoteOn(h, 60, 127)

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if s.IsPlaying(h) {
		t.Error("voice should be inactive after Close")
	}
	if err := s.NoteOn(h, 60, 127); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("NoteOn after Close error = %v, want ErrInvalidHandle", err)
	}
}
