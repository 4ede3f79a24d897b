package pluck

import (
	"math"

	"github.com/cwbudde/algo-approx"
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

// midiNoteToFreq converts MIDI note number to frequency in Hz.
func midiNoteToFreq(note int) float32 {
	const a4Freq = 440.0
	const a4Note = 69
	exponent := float32(note-a4Note) / 12.0
	return a4Freq * pow2Approx(exponent)
}

func pow2Approx(x float32) float32 {
	const ln2 = 0.69314718055994530942
	return approx.FastExp(x * ln2)
}

// centsToRatio is exact; stereo spreads are only a few cents wide.
func centsToRatio(cents float32) float32 {
	return float32(math.Exp2(float64(cents) / 1200.0))
}

// delayForNote returns the loop length in samples for a note detuned by cents.
func delayForNote(sampleRate float32, note int, cents float32) float32 {
	return sampleRate / (midiNoteToFreq(note) * centsToRatio(cents))
}

func isFinite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}

func clampf(v, lo, hi float32) float32 {
	if !(v == v) {
		return lo
	}
	return float32(dspcore.Clamp(float64(v), float64(lo), float64(hi)))
}

func maxf(a float32, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func roundToInt(x float32) int {
	return int(math.Round(float64(x)))
}
