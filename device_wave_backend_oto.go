//go:build !headless

// device_wave_backend_oto.go - live audio sink for the Wave device

/*
Adapts the teacher's OtoPlayer (audio_backend_oto.go) — which drains a
SoundChip's lock-free sample ring through an oto.Player — into a small
push-based sink: the Wave device calls Push(sample) once per tick and
this backend buffers those samples for oto's pull-based Read callback.
Simpler than the teacher's ring buffer since our single voice has no
multi-channel mixing to do.
*/

package main

import (
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
)

const otoSampleRate = 1000 // matches Wave's documented instructions-per-second clock

// otoWaveSink streams WaveDevice samples to the host speaker via oto.
type otoWaveSink struct {
	ctx    *oto.Context
	player *oto.Player

	mu  sync.Mutex
	buf []float32
}

// newOtoWaveSink opens an oto playback context and starts a player that
// pulls buffered samples pushed via Push.
func newOtoWaveSink() (*otoWaveSink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   otoSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	sink := &otoWaveSink{ctx: ctx}
	sink.player = ctx.NewPlayer(sink)
	sink.player.Play()
	return sink, nil
}

// Push appends one generated sample to the playback buffer.
func (s *otoWaveSink) Push(sample float32) {
	s.mu.Lock()
	s.buf = append(s.buf, sample)
	s.mu.Unlock()
}

// Read implements io.Reader for oto.Player, draining the pushed-sample
// buffer or emitting silence if the guest hasn't produced enough yet.
func (s *otoWaveSink) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(p) / 4
	for i := 0; i < n; i++ {
		var v float32
		if i < len(s.buf) {
			v = s.buf[i]
		}
		putFloat32LE(p[i*4:i*4+4], v)
	}
	if n <= len(s.buf) {
		s.buf = s.buf[n:]
	} else {
		s.buf = s.buf[:0]
	}
	return len(p), nil
}

func putFloat32LE(dst []byte, v float32) {
	bits := math.Float32bits(v)
	dst[0] = byte(bits)
	dst[1] = byte(bits >> 8)
	dst[2] = byte(bits >> 16)
	dst[3] = byte(bits >> 24)
}

// Close stops playback and releases the oto player.
func (s *otoWaveSink) Close() error {
	if s.player != nil {
		s.player.Close()
	}
	return nil
}
