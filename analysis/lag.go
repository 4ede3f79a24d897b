package analysis

import (
	"math"

	algofft "github.com/cwbudde/algo-fft"
)

// lagWindow bounds how much of each signal is cross-correlated.
const lagWindow = 1 << 16

// estimateLag returns the shift in [-maxLag, maxLag] that best aligns cand
// with ref: a positive lag means cand starts lag samples into ref. The
// cross-correlation is computed as an FFT convolution with the reversed
// candidate.
func estimateLag(ref, cand []float64, maxLag int) int {
	if len(ref) == 0 || len(cand) == 0 || maxLag < 1 {
		return 0
	}
	r := ref[:min(len(ref), lagWindow+maxLag)]
	c := cand[:min(len(cand), lagWindow)]

	a := make([]float32, len(r))
	for i, v := range r {
		a[i] = float32(v)
	}
	b := make([]float32, len(c))
	for i, v := range c {
		b[len(c)-1-i] = float32(v)
	}
	corr := make([]float32, len(a)+len(b)-1)
	if err := algofft.ConvolveReal(corr, a, b); err != nil {
		return estimateLagDirect(r, c, maxLag)
	}

	// corr[k] holds the product sum for lag k-(len(c)-1).
	zero := len(c) - 1
	best := 0
	bestVal := math.Inf(-1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		k := zero + lag
		if k < 0 || k >= len(corr) {
			continue
		}
		if v := float64(corr[k]); v > bestVal {
			bestVal = v
			best = lag
		}
	}
	return best
}

func estimateLagDirect(ref, cand []float64, maxLag int) int {
	best := 0
	bestVal := math.Inf(-1)
	for lag := -maxLag; lag <= maxLag; lag++ {
		if s := dotAtLag(ref, cand, lag); s > bestVal {
			bestVal = s
			best = lag
		}
	}
	return best
}

func dotAtLag(a, b []float64, lag int) float64 {
	ai, bi := 0, 0
	if lag >= 0 {
		ai = lag
	} else {
		bi = -lag
	}
	n := min(len(a)-ai, len(b)-bi)
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[ai+i] * b[bi+i]
	}
	return sum
}

func alignByLag(ref, cand []float64, lag int) ([]float64, []float64) {
	if lag >= 0 {
		if lag >= len(ref) {
			return nil, nil
		}
		return ref[lag:], cand
	}
	o := -lag
	if o >= len(cand) {
		return nil, nil
	}
	return ref, cand[o:]
}
