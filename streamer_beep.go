// streamer_beep.go - beep.Streamer adapter over an AudioSource

package formatsynth

import "github.com/gopxl/beep"

// SourceStreamer adapts an AudioSource to beep's pull-model Streamer so an
// engine mix can feed the speaker package or beep's encoders. The stream is
// perpetual; a silent source yields zeros, never EOF.
type SourceStreamer struct {
	src AudioSource
	buf []float32
}

var _ beep.Streamer = (*SourceStreamer)(nil)

func NewSourceStreamer(src AudioSource) *SourceStreamer {
	return &SourceStreamer{
		src: src,
		buf: make([]float32, 4096),
	}
}

func (ss *SourceStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	need := len(samples) * 2
	if len(ss.buf) < need {
		ss.buf = make([]float32, need)
	}
	buf := ss.buf[:need]

	filled := ss.src.ReadSamples(buf)
	for i := filled; i < need; i++ {
		buf[i] = 0
	}

	for i := range samples {
		samples[i][0] = float64(buf[i*2])
		samples[i][1] = float64(buf[i*2+1])
	}
	return len(samples), true
}

func (ss *SourceStreamer) Err() error { return nil }
