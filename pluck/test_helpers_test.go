package pluck

import (
	"math"
	"testing"
)

func measureFundamentalFreq(samples []float32, sampleRate float32) float32 {
	startIdx := len(samples) / 10
	crossings := 0
	for i := startIdx + 1; i < len(samples); i++ {
		if (samples[i-1] < 0 && samples[i] >= 0) || (samples[i-1] >= 0 && samples[i] < 0) {
			crossings++
		}
	}
	if crossings == 0 {
		return 0
	}
	duration := float32(len(samples)-startIdx) / sampleRate
	return float32(crossings) / (2.0 * duration)
}

func windowRMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func requireFinite(t *testing.T, samples []float32) {
	t.Helper()
	for i, s := range samples {
		if !isFinite(s) {
			t.Fatalf("non-finite sample at %d: %f", i, s)
		}
	}
}

// renderVoice renders frames samples of v in blocks of blockSize.
func renderVoice(v *Voice, frames int, blockSize int) ([]float32, []float32) {
	left := make([]float32, frames)
	right := make([]float32, frames)
	for start := 0; start < frames; start += blockSize {
		n := min(blockSize, frames-start)
		v.Render(left[start:start+n], right[start:start+n], 0, n)
		v.endBlock()
	}
	return left, right
}

// renderSynth runs an event-free synth for frames samples.
func renderSynth(s *Synth, p Params, frames int, blockSize int) ([]float32, []float32) {
	left := make([]float32, frames)
	right := make([]float32, frames)
	for start := 0; start < frames; start += blockSize {
		end := min(start+blockSize, frames)
		s.Process(left[start:end], right[start:end], nil, p)
	}
	return left, right
}

func deterministicParams() Params {
	p := NewDefaultParams()
	p.Color = 0
	return p
}
