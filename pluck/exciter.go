package pluck

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-pluck/dsp"
)

const (
	squareAmp         = 0.43
	minExciteVelocity = 0.1
)

// Exciter renders one period of excitation: a velocity-shaped bipolar pulse
// cross-faded with a gated noise burst.
type Exciter struct {
	rng   *rand.Rand
	slewL *dsp.Slew
	slewR *dsp.Slew
}

// NewExciter creates an exciter with its own noise source.
func NewExciter(seed int64) *Exciter {
	return &Exciter{
		rng:   rand.New(rand.NewSource(seed)),
		slewL: dsp.NewSlew(1),
		slewR: dsp.NewSlew(1),
	}
}

// PulseWidth maps velocity to the fraction of each half period that is lit.
// It reaches 2 at full velocity, so loud notes fill the whole half period.
func PulseWidth(velocity float32) float32 {
	return 2 * clampf((velocity-minExciteVelocity)/(1-minExciteVelocity), 0.01, 1)
}

// ExciteSpec describes one excitation period.
type ExciteSpec struct {
	Velocity float32
	Color    float32
	SlewRate float32
	DelayLen float32 // fractional loop length; sets the square period
	Stereo   bool
}

// Generate fills dstL/dstR with round(DelayLen) samples (limited to the
// buffer length minus one) and returns that count. Velocity shapes the pulse
// width only; the caller applies velocity gain when injecting.
func (e *Exciter) Generate(dstL, dstR []float32, s ExciteSpec) int {
	capacity := min(len(dstL), len(dstR))
	n := roundToInt(dsp.ClampDelay(s.DelayLen, capacity))
	if n < 1 {
		return 0
	}
	if n > capacity-1 {
		n = capacity - 1
	}

	pw := PulseWidth(s.Velocity)
	color := clampf(s.Color, 0, 1)
	half := s.DelayLen * 0.5
	e.slewL.SetRate(s.SlewRate)
	e.slewR.SetRate(s.SlewRate)
	e.slewL.Reset()
	e.slewR.Reset()

	for i := 0; i < n; i++ {
		fi := float32(i)
		var square float32
		if fi < half {
			if fi/half < pw {
				square = squareAmp
			}
		} else if (fi-half)/half < pw {
			square = -squareAmp
		}

		gated := fi/float32(n) < pw
		noiseL := e.slewL.Process(e.noise(gated))
		dstL[i] = square + color*(noiseL-square)
		if s.Stereo {
			noiseR := e.slewR.Process(e.noise(gated))
			dstR[i] = square + color*(noiseR-square)
		} else {
			dstR[i] = dstL[i]
		}
	}
	return n
}

func (e *Exciter) noise(gated bool) float32 {
	r := e.rng.Float32()*2 - 1
	if !gated {
		return 0
	}
	return r
}

// DecayBudget returns how many samples a note may sound before its fade is
// forced. Low notes, long decay and light damping all extend it; curve sets
// how strongly register matters (0.5 gives a 60x spread across the range).
func DecayBudget(sampleRate float32, note int, decay, damp, curve float32) int {
	const lo, hi = 24.0, 108.0
	n := clampf(float32(note), lo, hi)
	ratio := math.Pow(60, 2*float64(clampf(curve, 0, 1)))
	mult := math.Pow(ratio, float64((hi-n)/(hi-lo)))

	base := clampf(decay, 0.05, 60)
	normDamp := clampf(damp/0.65, 0, 1)
	dampMult := 1 - 0.5*normDamp
	total := float64(base*dampMult) * mult * 0.25
	return int(float64(sampleRate) * total)
}
