package analysis

import (
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

const (
	spectrumSize    = 4096
	maxPitchFFTSize = 16384
)

// magnitudes returns the Hann-windowed magnitude spectrum of the first size
// samples of x (zero padded). size must be a power of two.
func magnitudes(x []float64, size int) ([]float64, error) {
	plan, err := algofft.NewPlanReal64(size)
	if err != nil {
		return nil, err
	}
	buf := make([]float64, size)
	n := min(len(x), size)
	for i := 0; i < n; i++ {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
		buf[i] = x[i] * w
	}
	spec := make([]complex128, size/2+1)
	plan.Forward(spec, buf)

	mag := make([]float64, len(spec))
	for k, c := range spec {
		mag[k] = cmplx.Abs(c)
	}
	return mag, nil
}

func spectralRMSEDB(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n < 512 {
		return 0
	}
	size := min(nextPow2(n), spectrumSize)
	ma, err := magnitudes(a[:min(n, size)], size)
	if err != nil {
		return 0
	}
	mb, err := magnitudes(b[:min(n, size)], size)
	if err != nil {
		return 0
	}
	bins := size / 2
	var sum float64
	for k := 1; k < bins; k++ {
		d := linToDB(ma[k]) - linToDB(mb[k])
		sum += d * d
	}
	return math.Sqrt(sum / float64(bins-1))
}

// Fundamental estimates the pitch of x in Hz, searching [minHz, maxHz]. The
// first tenth of the signal is skipped so the attack transient does not
// dominate. It returns 0 when no peak is found.
func Fundamental(x []float64, sampleRate int, minHz, maxHz float64) float64 {
	if sampleRate <= 0 || len(x) < 64 || maxHz <= minHz {
		return 0
	}
	body := x[len(x)/10:]
	size := min(nextPow2(len(body)), maxPitchFFTSize)
	mag, err := magnitudes(body, size)
	if err != nil {
		return 0
	}
	binHz := float64(sampleRate) / float64(size)
	lo := max(1, int(math.Floor(minHz/binHz)))
	hi := min(len(mag)-2, int(math.Ceil(maxHz/binHz)))
	if hi <= lo {
		return 0
	}

	peak := lo
	for k := lo; k <= hi; k++ {
		if mag[k] > mag[peak] {
			peak = k
		}
	}
	if mag[peak] <= 0 {
		return 0
	}

	// The strongest partial may be a harmonic; prefer a strong subharmonic.
	for div := 4; div >= 2; div-- {
		k := int(math.Round(float64(peak) / float64(div)))
		if k < lo {
			continue
		}
		best := localPeak(mag, k, 2)
		if mag[best] > 0.2*mag[peak] {
			peak = best
			break
		}
	}
	return (float64(peak) + parabolicOffset(mag, peak)) * binHz
}

func localPeak(mag []float64, center, radius int) int {
	best := center
	for k := max(1, center-radius); k <= min(len(mag)-2, center+radius); k++ {
		if mag[k] > mag[best] {
			best = k
		}
	}
	return best
}

// parabolicOffset refines a peak bin from its log-magnitude neighbours.
func parabolicOffset(mag []float64, k int) float64 {
	if k <= 0 || k >= len(mag)-1 {
		return 0
	}
	a := linToDB(mag[k-1])
	b := linToDB(mag[k])
	c := linToDB(mag[k+1])
	den := a - 2*b + c
	if math.Abs(den) < 1e-12 {
		return 0
	}
	return 0.5 * (a - c) / den
}

// CentsBetween returns the interval from ref to f in cents.
func CentsBetween(ref, f float64) float64 {
	if ref <= 0 || f <= 0 {
		return math.NaN()
	}
	return 1200 * math.Log2(f/ref)
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
