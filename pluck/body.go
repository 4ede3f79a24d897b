package pluck

import (
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

const (
	bodyFreqHz      = 200.0
	bodyQ           = 8.0
	bodyResonantMix = 3.0
)

// BodyCoupling adds a narrow 200 Hz body resonance on top of the string mix.
type BodyCoupling struct {
	left  *biquad.Section
	right *biquad.Section
}

// NewBodyCoupling designs the resonator for sampleRate.
func NewBodyCoupling(sampleRate int) *BodyCoupling {
	c := design.Bandpass(bodyFreqHz, bodyQ, float64(sampleRate))
	// design.Bandpass has a peak gain of Q; bring it to 0 dB.
	c.B0 /= bodyQ
	c.B1 /= bodyQ
	c.B2 /= bodyQ
	return &BodyCoupling{
		left:  biquad.NewSection(c),
		right: biquad.NewSection(c),
	}
}

// Process mixes strength*3*bandpass(x) into both channels in place.
// The filters keep running at strength 0 so raising it does not click.
func (b *BodyCoupling) Process(left, right []float32, strength float32) {
	s := float64(strength) * bodyResonantMix
	for i := range left {
		x := float64(left[i])
		left[i] = float32(x + s*b.left.ProcessSample(x))
	}
	for i := range right {
		x := float64(right[i])
		right[i] = float32(x + s*b.right.ProcessSample(x))
	}
}

// Reset clears the filter state.
func (b *BodyCoupling) Reset() {
	b.left.Reset()
	b.right.Reset()
}
