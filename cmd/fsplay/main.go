// fsplay - interactive player for SoundMon and Digital Mugician instruments
//
// Plays an instrument blob (or a built-in default patch) through a chosen
// audio backend, driven by the terminal keyboard and optionally a MIDI
// input device.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	formatsynth "github.com/intuitionamiga/FormatSynth"
)

func main() {
	format := flag.String("format", "soundmon", "Synth format: "+strings.Join(formatsynth.FormatSynthNames(), ", "))
	backend := flag.String("backend", "oto", "Audio backend: "+strings.Join(formatsynth.AudioBackendNames(), ", "))
	rate := flag.Int("rate", 44100, "Output sample rate in Hz")
	instFile := flag.String("inst", "", "Instrument blob file (default: built-in patch)")
	wave := flag.Int("wave", 0, "Built-in waveform for the default patch (0-15)")
	midi := flag.Bool("midi", false, "Read notes from the default MIDI input device")
	mididev := flag.Int("mididev", -1, "MIDI input device ID (-1 = system default; implies -midi)")
	hold := flag.Duration("hold", 250*time.Millisecond, "Auto note-off delay for keyboard notes")
	gain := flag.Float64("gain", 0, "Master gain (0 = automatic)")
	list := flag.Bool("list", false, "List formats, backends and built-in waveforms, then exit")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fsplay [options]\n\nPlays tracker instruments from the keyboard.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  z s x d c v g b h n j m   lower octave (C through B)\n")
		fmt.Fprintf(os.Stderr, "  q 2 w 3 e r 5 t 6 y 7 u   upper octave\n")
		fmt.Fprintf(os.Stderr, "  + / -                     octave up / down\n")
		fmt.Fprintf(os.Stderr, "  , / .                     volume down / up\n")
		fmt.Fprintf(os.Stderr, "  [ / ]                     vibrato depth down / up\n")
		fmt.Fprintf(os.Stderr, "  space                     all notes off\n")
		fmt.Fprintf(os.Stderr, "  esc                       quit\n")
		fmt.Fprintf(os.Stderr, "\nBuilt-in waveforms:\n")
		for i, name := range formatsynth.SoundMonWaveNames {
			fmt.Fprintf(os.Stderr, "  %2d  %s\n", i, name)
		}
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  fsplay -wave 10\n")
		fmt.Fprintf(os.Stderr, "  fsplay -format digmug -backend beep\n")
		fmt.Fprintf(os.Stderr, "  fsplay -inst bass.smi -midi\n")
	}
	flag.Parse()

	if flag.NArg() != 0 {
		flag.Usage()
		os.Exit(1)
	}
	if *list {
		fmt.Printf("Formats:  %s\n", strings.Join(formatsynth.FormatSynthNames(), ", "))
		fmt.Printf("Backends: %s\n", strings.Join(formatsynth.AudioBackendNames(), ", "))
		fmt.Println("Waveforms:")
		for i, name := range formatsynth.SoundMonWaveNames {
			fmt.Printf("  %2d  %s\n", i, name)
		}
		return
	}
	if *wave < 0 || *wave >= formatsynth.SM_NUM_WAVES {
		fmt.Fprintf(os.Stderr, "error: -wave must be 0-%d\n", formatsynth.SM_NUM_WAVES-1)
		os.Exit(1)
	}

	blob, err := instrumentBlob(*instFile, *format, *wave)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	synth, err := formatsynth.NewFormatSynth(*format, *rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer synth.Close()

	mixer := formatsynth.NewSynthMixer(synth)
	if *gain > 0 {
		mixer.SetGain(float32(*gain))
	}

	pool, err := newVoicePool(mixer, blob)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	out, err := formatsynth.NewAudioOutput(*backend, *rate, mixer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := out.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("fsplay: %s @ %dHz via %s (esc quits)\n", *format, *rate, *backend)

	g, ctx := errgroup.WithContext(interruptContext())
	cancelCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g.Go(func() error {
		defer cancel()
		return runKeyboard(cancelCtx, pool, *hold)
	})
	if *midi || *mididev >= 0 {
		g.Go(func() error {
			return runMIDI(cancelCtx, pool, *mididev)
		})
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func interruptContext() context.Context {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ctx
}

// instrumentBlob loads the named blob file, or builds a default patch for
// the format when no file is given.
func instrumentBlob(path, format string, wave int) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	switch format {
	case "digmug", "dm", "dmu", "mug":
		ins := &formatsynth.DigMugInstrument{
			Type:     formatsynth.DM_TYPE_WAVE,
			Volume:   64,
			VibSpeed: 6,
			VibDepth: 8,
		}
		// Seed the embedded waveform from the SoundMon shape table.
		ins.WaveLen = formatsynth.SM_WAVE_LEN
		for i := 0; i < formatsynth.SM_WAVE_LEN; i++ {
			ins.WaveData[i] = formatsynth.SoundMonWaves[wave][i]
		}
		return ins.Encode(), nil
	default:
		ins := &formatsynth.SoundMonInstrument{
			Type:         formatsynth.SM_TYPE_SYNTH,
			WaveType:     wave,
			AttackVol:    64,
			DecayVol:     48,
			SustainVol:   40,
			AttackSpeed:  1,
			DecaySpeed:   3,
			ReleaseSpeed: 6,
			VibDelay:     20,
			VibSpeed:     4,
			VibDepth:     10,
		}
		return ins.Encode(), nil
	}
}

// voicePool allocates an engine voice per note and remembers which handle
// sounds which note so note-offs land on the right voice. Finished voices
// hand their slots back to the engine on their own (release tail complete,
// or note-off for formats without one), so each note-on creates a fresh
// player, loads the patch and re-applies any sticky parameter overrides.
type voicePool struct {
	mixer *formatsynth.SynthMixer
	blob  []byte

	mu     sync.Mutex
	notes  map[int]int     // MIDI note -> handle
	order  []int           // handles in note-on order, oldest first
	seq    map[int]uint64  // handle -> generation, guards stale auto-offs
	params map[int]float32 // sticky overrides from MIDI CC or key nudges
}

func newVoicePool(mixer *formatsynth.SynthMixer, blob []byte) (*voicePool, error) {
	// Decode the patch once up front so a bad blob fails at startup rather
	// than on the first keypress. The probe also seeds the sticky parameter
	// map with the patch's own levels, giving nudges a real baseline.
	h, err := mixer.CreatePlayer()
	if err != nil {
		return nil, err
	}
	if err := mixer.LoadInstrument(h, blob); err != nil {
		mixer.DestroyPlayer(h)
		return nil, err
	}
	params := make(map[int]float32)
	for _, id := range []int{formatsynth.PARAM_VOLUME, formatsynth.PARAM_VIB_DEPTH} {
		if v, err := mixer.GetParam(h, id); err == nil {
			params[id] = v
		}
	}
	mixer.DestroyPlayer(h)

	return &voicePool{
		mixer:  mixer,
		blob:   blob,
		notes:  make(map[int]int),
		seq:    make(map[int]uint64),
		params: params,
	}, nil
}

// NoteOn starts note on a fresh voice and returns the handle and its
// generation for use with ReleaseIfCurrent. When the pool is exhausted the
// oldest note (or release tail) is stolen. Returns handle -1 if no voice
// could be started.
func (p *voicePool) NoteOn(note, velocity int) (int, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	h, err := p.mixer.CreatePlayer()
	for err != nil && len(p.order) > 0 {
		oldest := p.order[0]
		p.order = p.order[1:]
		for n, held := range p.notes {
			if held == oldest {
				delete(p.notes, n)
			}
		}
		p.mixer.DestroyPlayer(oldest)
		h, err = p.mixer.CreatePlayer()
	}
	if err != nil {
		return -1, 0
	}
	if err := p.mixer.LoadInstrument(h, p.blob); err != nil {
		p.mixer.DestroyPlayer(h)
		return -1, 0
	}
	for id, v := range p.params {
		p.mixer.SetParam(h, id, v)
	}

	// The engine may re-issue a slot an earlier note finished with; drop
	// the stale bookkeeping entry so order holds each handle once.
	for i, old := range p.order {
		if old == h {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	p.order = append(p.order, h)
	p.seq[h]++
	gen := p.seq[h]
	p.notes[note] = h

	p.mixer.NoteOn(h, note, velocity)
	return h, gen
}

// NoteOff releases the voice last assigned to note. The engine reclaims the
// slot itself once the voice finishes sounding.
func (p *voicePool) NoteOff(note int) {
	p.mu.Lock()
	h, ok := p.notes[note]
	if ok {
		delete(p.notes, note)
	}
	p.mu.Unlock()
	if ok {
		p.mixer.NoteOff(h)
	}
}

// ReleaseIfCurrent releases handle h only if no newer note has claimed it.
func (p *voicePool) ReleaseIfCurrent(h int, gen uint64) {
	p.mu.Lock()
	current := p.seq[h] == gen
	p.mu.Unlock()
	if current {
		p.mixer.NoteOff(h)
	}
}

// AllNotesOff releases every voice this pool has started.
func (p *voicePool) AllNotesOff() {
	p.mu.Lock()
	handles := append([]int(nil), p.order...)
	p.notes = make(map[int]int)
	p.mu.Unlock()
	for _, h := range handles {
		p.mixer.NoteOff(h)
	}
}

// SetParamAll applies a parameter to every sounding voice and records it as
// a sticky override for voices started later. Per-format unsupported IDs
// are ignored.
func (p *voicePool) SetParamAll(param int, value float32) {
	p.mu.Lock()
	p.params[param] = value
	handles := append([]int(nil), p.order...)
	p.mu.Unlock()
	for _, h := range handles {
		p.mixer.SetParam(h, param, value)
	}
}

// NudgeParam shifts a sticky parameter by delta, clamped to [0,1], applies
// it to every sounding voice and returns the new value.
func (p *voicePool) NudgeParam(param int, delta float32) float32 {
	p.mu.Lock()
	v := p.params[param] + delta
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.params[param] = v
	handles := append([]int(nil), p.order...)
	p.mu.Unlock()
	for _, h := range handles {
		p.mixer.SetParam(h, param, v)
	}
	return v
}
