package analysis

import "math"

const (
	envFrame = 256
	envHop   = 128
)

// Envelope returns frame RMS values of x.
func Envelope(x []float64, frame, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := range out {
		start := i * hop
		out[i] = rms(x[start : start+frame])
	}
	return out
}

// DecayRate fits a line to the envelope in dB from its peak down to 60 dB
// below it and returns the slope in dB per second. It is NaN when the
// envelope is too short to fit.
func DecayRate(env []float64, hopSec float64) float64 {
	if len(env) < 8 || hopSec <= 0 {
		return math.NaN()
	}
	peakIdx := 0
	peak := math.Inf(-1)
	for i, v := range env {
		if db := linToDB(v); db > peak {
			peak = db
			peakIdx = i
		}
	}
	start := peakIdx + 1
	if start >= len(env)-4 {
		return math.NaN()
	}

	floor := peak - 60
	end := len(env)
	for i := start; i < len(env); i++ {
		if linToDB(env[i]) < floor {
			end = i
			break
		}
	}
	if end-start < 6 {
		return math.NaN()
	}

	var sx, sy, sxx, sxy float64
	n := float64(end - start)
	for i := start; i < end; i++ {
		x := float64(i-start) * hopSec
		y := linToDB(env[i])
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if math.Abs(den) < 1e-12 {
		return math.NaN()
	}
	return (n*sxy - sx*sy) / den
}

// T60 estimates the time in seconds for x to fall by 60 dB. It returns
// +Inf for signals that do not decay and NaN when no fit is possible.
func T60(x []float64, sampleRate int) float64 {
	if sampleRate <= 0 {
		return math.NaN()
	}
	slope := DecayRate(Envelope(x, envFrame, envHop), float64(envHop)/float64(sampleRate))
	if math.IsNaN(slope) {
		return slope
	}
	if slope >= 0 {
		return math.Inf(1)
	}
	return -60 / slope
}

func rms(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func linToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20 * math.Log10(x)
}
