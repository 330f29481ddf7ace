// fsrender - offline script-driven renderer for SoundMon and Digital
// Mugician instruments
//
// Runs a Lua timeline script against a synth engine and writes the mixed
// output as a WAV file. No audio device is needed; rendering runs as fast
// as the engine allows.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/wav"

	formatsynth "github.com/intuitionamiga/FormatSynth"
)

func main() {
	format := flag.String("format", "soundmon", "Synth format: "+strings.Join(formatsynth.FormatSynthNames(), ", "))
	rate := flag.Int("rate", 44100, "Render sample rate in Hz")
	outFile := flag.String("o", "out.wav", "Output WAV file")
	depth := flag.Int("depth", 2, "WAV sample precision in bytes (1, 2 or 3)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: fsrender [options] script.lua\n\nRenders a Lua note timeline to a WAV file.\n\nScript API:\n")
		fmt.Fprintf(os.Stderr, "  player() -> handle            allocate a voice\n")
		fmt.Fprintf(os.Stderr, "  load(handle, path)            load an instrument blob file\n")
		fmt.Fprintf(os.Stderr, "  instrument(handle, table)     build and load a patch from a table\n")
		fmt.Fprintf(os.Stderr, "  note_on(handle, note, vel)    start a note (MIDI numbering)\n")
		fmt.Fprintf(os.Stderr, "  note_off(handle)              release a note\n")
		fmt.Fprintf(os.Stderr, "  set_param(handle, id, value)  stage a normalised parameter\n")
		fmt.Fprintf(os.Stderr, "  get_param(handle, id)         read a normalised parameter\n")
		fmt.Fprintf(os.Stderr, "  is_playing(handle)            true while the voice sounds\n")
		fmt.Fprintf(os.Stderr, "  wait(seconds)                 render forward in time\n")
		fmt.Fprintf(os.Stderr, "  gain(value)                   set the master mix gain\n")
		fmt.Fprintf(os.Stderr, "  sample_rate()                 the render rate in Hz\n")
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  fsrender -o melody.wav melody.lua\n")
		fmt.Fprintf(os.Stderr, "  fsrender -format digmug -rate 48000 chords.lua\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	if *depth < 1 || *depth > 3 {
		fmt.Fprintf(os.Stderr, "error: -depth must be 1, 2 or 3\n")
		os.Exit(1)
	}

	synth, err := formatsynth.NewFormatSynth(*format, *rate)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer synth.Close()

	host := newScriptHost(synth, *format)
	defer host.Close()

	if err := host.RunFile(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if len(host.frames) == 0 {
		fmt.Fprintf(os.Stderr, "error: script rendered no audio (missing wait()?)\n")
		os.Exit(1)
	}

	fi, err := os.Create(*outFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	err = wav.Encode(fi, &bufferStreamer{data: host.frames}, beep.Format{
		SampleRate:  beep.SampleRate(*rate),
		NumChannels: 2,
		Precision:   *depth,
	})
	if cerr := fi.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", *outFile, err)
		os.Exit(1)
	}

	seconds := float64(len(host.frames)) / float64(*rate)
	fmt.Printf("fsrender: wrote %s (%.2fs at %dHz)\n", *outFile, seconds, *rate)
}

// bufferStreamer replays rendered frames for the WAV encoder.
type bufferStreamer struct {
	data [][2]float64
	pos  int
}

func (bs *bufferStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if bs.pos >= len(bs.data) {
		return 0, false
	}
	n = copy(samples, bs.data[bs.pos:])
	bs.pos += n
	return n, true
}

func (bs *bufferStreamer) Err() error { return nil }
