//go:build !headless

package main

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-pluck/internal/live"
)

// player pulls interleaved stereo float32 frames from the live engine.
type player struct {
	ctx    *oto.Context
	player *oto.Player
	engine *live.Engine

	buf []float32
	mu  sync.Mutex
}

func newPlayer(sampleRate, bufferFrames int, engine *live.Engine) (*player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	engine.Reserve(bufferFrames)
	p := &player{ctx: ctx, engine: engine, buf: make([]float32, 2*bufferFrames)}
	p.player = ctx.NewPlayer(p)
	p.player.SetBufferSize(bufferFrames * 8)
	return p, nil
}

// Read implements io.Reader for oto. It runs on the audio goroutine and
// fills b in chunks of the preallocated buffer.
func (p *player) Read(b []byte) (int, error) {
	samples := len(b) / 4
	samples -= samples % 2
	for done := 0; done < samples; {
		out := p.buf[:min(len(p.buf), samples-done)]
		p.engine.RenderInterleaved(out)
		for i, v := range out {
			binary.LittleEndian.PutUint32(b[4*(done+i):], math.Float32bits(v))
		}
		done += len(out)
	}
	return samples * 4, nil
}

func (p *player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.player.Play()
}

func (p *player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.player.Close()
}
