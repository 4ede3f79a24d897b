package pluck

import (
	"math"

	"github.com/cwbudde/algo-pluck/dsp"
)

const (
	// feedbackTarget is the loop amplitude reached after Decay seconds.
	feedbackTarget = 0.001
	// feedbackTimeConstant scales Decay; 1.0 makes Decay the loop's T60.
	feedbackTimeConstant = 1.0
	maxFeedbackGain      = 0.999
)

// Resonator is the stereo Karplus-Strong loop: two fractional delay lines,
// each closed through a one-pole damper and a feedback gain.
type Resonator struct {
	sampleRate float32

	lineL *dsp.FracDelay
	lineR *dsp.FracDelay
	dampL dsp.OnePole
	dampR dsp.OnePole

	lenL dsp.Ramp
	lenR dsp.Ramp

	gain float32
}

// NewResonator allocates both delay lines at capacity samples.
func NewResonator(sampleRate float32, capacity int) *Resonator {
	r := &Resonator{
		sampleRate: sampleRate,
		lineL:      dsp.NewFracDelay(capacity),
		lineR:      dsp.NewFracDelay(capacity),
		gain:       maxFeedbackGain,
	}
	r.SetDamping(0)
	return r
}

// FeedbackGain returns the loop gain that brings the amplitude down to
// feedbackTarget after decay seconds at the given loop length.
func FeedbackGain(sampleRate, delayLen, decay float32) float32 {
	if delayLen <= 0 || sampleRate <= 0 {
		return 0
	}
	cps := float64(sampleRate / delayLen)
	t := float64(feedbackTimeConstant * decay)
	if t <= 0 {
		return 0
	}
	g := math.Pow(feedbackTarget, 1/(t*cps))
	return clampf(float32(g), 0, maxFeedbackGain)
}

// DampingCoeff maps damp 0..1 onto the one-pole coefficient 0.99..0.01.
func DampingCoeff(damp float32) float32 {
	return 0.99 + clampf(damp, 0, 1)*(0.01-0.99)
}

// SetDamping sets the damper amount (0 bright .. 1 dull).
func (r *Resonator) SetDamping(damp float32) {
	c := DampingCoeff(damp)
	r.dampL.SetCoeff(c)
	r.dampR.SetCoeff(c)
}

// SetDecay recomputes the feedback gain for the centre loop length.
func (r *Resonator) SetDecay(decay float32, centerLen float32) {
	r.gain = FeedbackGain(r.sampleRate, centerLen, decay)
}

// Gain returns the current feedback gain.
func (r *Resonator) Gain() float32 {
	return r.gain
}

// SetInterpolation selects the fractional read mode of both lines.
func (r *Resonator) SetInterpolation(mode dsp.Interpolation) {
	r.lineL.SetInterpolation(mode)
	r.lineR.SetInterpolation(mode)
}

// SnapDelay sets both loop lengths with no ramp.
func (r *Resonator) SnapDelay(left, right float32) {
	capacity := r.lineL.Cap()
	r.lenL.Reset(dsp.ClampDelay(left, capacity))
	r.lenR.Reset(dsp.ClampDelay(right, capacity))
	r.lineL.SetDelay(r.lenL.Current())
	r.lineR.SetDelay(r.lenR.Current())
}

// GlideDelay ramps both loop lengths to new targets over rampSamples.
func (r *Resonator) GlideDelay(left, right float32, rampSamples int) {
	capacity := r.lineL.Cap()
	r.lenL.SetLength(rampSamples)
	r.lenR.SetLength(rampSamples)
	r.lenL.SetTarget(dsp.ClampDelay(left, capacity))
	r.lenR.SetTarget(dsp.ClampDelay(right, capacity))
}

// Delay returns the current left and right loop lengths.
func (r *Resonator) Delay() (float32, float32) {
	return r.lineL.Delay(), r.lineR.Delay()
}

// Tick runs one sample through both loops. exL/exR are added after the
// damper, scale is the fade multiplier, and unity bypasses the feedback gain
// (used while the first period is still being written). The returned
// samples are what was pushed back into the lines.
func (r *Resonator) Tick(exL, exR, scale float32, unity bool) (float32, float32) {
	r.lineL.SetDelay(r.lenL.Next())
	r.lineR.SetDelay(r.lenR.Next())

	fL := r.dampL.Process(r.lineL.Read()) + exL
	fR := r.dampR.Process(r.lineR.Read()) + exR
	fL *= scale
	fR *= scale
	if !isFinite(fL) {
		fL = 0
	}
	if !isFinite(fR) {
		fR = 0
	}

	g := r.gain
	if unity {
		g = 1
	}
	outL := fL * g
	outR := fR * g
	r.lineL.Push(outL)
	r.lineR.Push(outR)
	r.dampL.SetState(outL)
	r.dampR.SetState(outR)
	return outL, outR
}

// Reset silences both loops.
func (r *Resonator) Reset() {
	r.lineL.Reset()
	r.lineR.Reset()
	r.dampL.Reset()
	r.dampR.Reset()
}
