package dsp

import dspcore "github.com/cwbudde/algo-dsp/dsp/core"

// Ramp moves linearly towards a target over a fixed number of steps.
type Ramp struct {
	current   float32
	target    float32
	step      float32
	remaining int
	length    int
}

// SetLength sets the ramp duration in samples used by later SetTarget calls.
func (r *Ramp) SetLength(samples int) {
	if samples < 1 {
		samples = 1
	}
	r.length = samples
}

// SetTarget starts a ramp from the current value to target.
func (r *Ramp) SetTarget(target float32) {
	if target == r.target {
		return
	}
	r.target = target
	if r.length <= 1 {
		r.current = target
		r.remaining = 0
		return
	}
	r.remaining = r.length
	r.step = (target - r.current) / float32(r.length)
}

// Reset jumps to value with no ramp in progress.
func (r *Ramp) Reset(value float32) {
	r.current = value
	r.target = value
	r.remaining = 0
	r.step = 0
}

// Next advances one sample and returns the value.
func (r *Ramp) Next() float32 {
	if r.remaining == 0 {
		return r.current
	}
	r.remaining--
	if r.remaining == 0 {
		r.current = r.target
	} else {
		r.current += r.step
	}
	return r.current
}

// Current returns the value without advancing.
func (r *Ramp) Current() float32 {
	return r.current
}

// Target returns the value being ramped to.
func (r *Ramp) Target() float32 {
	return r.target
}

// Ramping reports whether the ramp has steps left.
func (r *Ramp) Ramping() bool {
	return r.remaining > 0
}

// OnePole is the loop damping filter: y += a*(x-y). With a close to 1 it
// passes the input through, with a close to 0 it smears it heavily.
type OnePole struct {
	a float32
	y float32
}

// SetCoeff sets a, clamped to [0,1].
func (o *OnePole) SetCoeff(a float32) {
	o.a = float32(dspcore.Clamp(float64(a), 0, 1))
}

// Coeff returns the filter coefficient.
func (o *OnePole) Coeff() float32 {
	return o.a
}

// Process filters one sample against the stored state without updating it.
// The loop stores its own post-gain sample with SetState.
func (o *OnePole) Process(x float32) float32 {
	return o.y + o.a*(x-o.y)
}

// SetState replaces the filter memory.
func (o *OnePole) SetState(y float32) {
	o.y = float32(dspcore.FlushDenormals(float64(y)))
}

// State returns the filter memory.
func (o *OnePole) State() float32 {
	return o.y
}

// Reset zeroes the filter memory.
func (o *OnePole) Reset() {
	o.y = 0
}

// Slew is a one-pole slew limiter. Rate 1 passes the input unchanged.
type Slew struct {
	rate float32
	y    float32
}

// NewSlew creates a limiter with the given rate in (0,1].
func NewSlew(rate float32) *Slew {
	s := &Slew{}
	s.SetRate(rate)
	return s
}

// SetRate sets the per-sample follow rate, clamped to [0.001, 1].
func (s *Slew) SetRate(rate float32) {
	s.rate = float32(dspcore.Clamp(float64(rate), 0.001, 1))
}

// Process smooths one sample.
func (s *Slew) Process(x float32) float32 {
	if s.rate >= 1 {
		s.y = x
		return x
	}
	s.y += s.rate * (x - s.y)
	s.y = float32(dspcore.FlushDenormals(float64(s.y)))
	return s.y
}

// Reset zeroes the limiter state.
func (s *Slew) Reset() {
	s.y = 0
}
