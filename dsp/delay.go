// Package dsp contains the small allocation-free building blocks of the
// string loop: a fractional delay line and a few one-pole smoothers.
package dsp

import "github.com/cwbudde/algo-dsp/dsp/interp"

// Interpolation selects how fractional delay reads are computed.
type Interpolation int

const (
	Linear Interpolation = iota
	Cubic
)

// FracDelay is a fixed-capacity circular delay line with a fractional read
// position. The buffer is allocated once and never resized.
type FracDelay struct {
	buf      []float32
	writePos int
	delay    float32
	mode     Interpolation
}

// NewFracDelay creates a delay line holding capacity samples (minimum 4).
func NewFracDelay(capacity int) *FracDelay {
	if capacity < 4 {
		capacity = 4
	}
	return &FracDelay{
		buf:   make([]float32, capacity),
		delay: 1,
	}
}

// Cap returns the buffer capacity in samples.
func (d *FracDelay) Cap() int {
	return len(d.buf)
}

// ClampDelay limits a delay length to [1, capacity-1].
func ClampDelay(samples float32, capacity int) float32 {
	hi := float32(capacity - 1)
	if !(samples >= 1) {
		return 1
	}
	if samples > hi {
		return hi
	}
	return samples
}

// SetDelay sets the read delay in samples, clamped to [1, Cap()-1], and
// returns the value actually applied.
func (d *FracDelay) SetDelay(samples float32) float32 {
	d.delay = ClampDelay(samples, len(d.buf))
	return d.delay
}

// Delay returns the current read delay.
func (d *FracDelay) Delay() float32 {
	return d.delay
}

// SetInterpolation picks linear (default) or cubic Hermite reads.
func (d *FracDelay) SetInterpolation(mode Interpolation) {
	d.mode = mode
}

// Read returns the sample written Delay() samples ago.
func (d *FracDelay) Read() float32 {
	intDelay := int(d.delay)
	frac := d.delay - float32(intDelay)
	x0 := d.tap(intDelay)
	x1 := d.tap(intDelay + 1)
	if d.mode == Linear || frac == 0 {
		return x0 + frac*(x1-x0)
	}
	xm1 := x0
	if intDelay > 1 {
		xm1 = d.tap(intDelay - 1)
	}
	x2 := d.tap(intDelay + 2)
	return float32(interp.Hermite4(float64(frac), float64(xm1), float64(x0), float64(x1), float64(x2)))
}

// Push writes the next sample and advances the write head.
func (d *FracDelay) Push(x float32) {
	d.buf[d.writePos] = x
	d.writePos++
	if d.writePos == len(d.buf) {
		d.writePos = 0
	}
}

// Reset zeroes the buffer and rewinds the write head.
func (d *FracDelay) Reset() {
	clear(d.buf)
	d.writePos = 0
}

// tap returns the sample pushed n steps ago (n >= 1).
func (d *FracDelay) tap(n int) float32 {
	pos := d.writePos - n
	for pos < 0 {
		pos += len(d.buf)
	}
	return d.buf[pos]
}
