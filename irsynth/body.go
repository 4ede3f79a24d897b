// Package irsynth generates synthetic stereo impulse responses for the
// convolution stage: a short instrument body and an optional room tail.
package irsynth

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
)

// BodyConfig describes a hollow plucked-instrument body: one Helmholtz air
// resonance plus the modes of an orthotropic top plate.
type BodyConfig struct {
	SampleRate int
	DurationS  float64
	Seed       int64

	AirHz    float64 // sound hole air resonance; 0 disables it
	AirDecay float64 // seconds
	AirLevel float64

	TopHz          float64 // lowest top-plate mode
	PlateRatio     float64 // Lx/Ly
	StiffnessRatio float64 // Dx/Dy
	Modes          int
	Brightness     float64

	LowDecayS   float64
	HighDecayS  float64
	CrossoverHz float64

	DirectLevel float64
	StereoWidth float64
	FadeOutS    float64

	NormalizePeak float64
}

// DefaultBodyConfig is a classical guitar body.
func DefaultBodyConfig() BodyConfig {
	return BodyConfig{
		SampleRate:     48000,
		DurationS:      0.12,
		Seed:           1,
		AirHz:          98,
		AirDecay:       0.08,
		AirLevel:       0.8,
		TopHz:          190,
		PlateRatio:     1.3,
		StiffnessRatio: 12,
		Modes:          40,
		Brightness:     1.0,
		LowDecayS:      0.06,
		HighDecayS:     0.012,
		CrossoverHz:    1200,
		DirectLevel:    0.7,
		StereoWidth:    0.3,
		FadeOutS:       0.005,
		NormalizePeak:  0.9,
	}
}

// BodyPreset returns a body tuned like a named instrument: guitar, harp
// or banjo.
func BodyPreset(name string) (BodyConfig, error) {
	cfg := DefaultBodyConfig()
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "guitar":
	case "harp":
		// Long soundboard, no real sound hole resonance.
		cfg.AirHz = 0
		cfg.TopHz = 120
		cfg.PlateRatio = 4
		cfg.StiffnessRatio = 18
		cfg.LowDecayS = 0.1
		cfg.Brightness = 0.7
		cfg.DurationS = 0.2
	case "banjo":
		// Drum head: stiff, bright and short.
		cfg.AirHz = 0
		cfg.TopHz = 330
		cfg.PlateRatio = 1
		cfg.StiffnessRatio = 1
		cfg.LowDecayS = 0.025
		cfg.HighDecayS = 0.006
		cfg.Brightness = 1.8
		cfg.DurationS = 0.06
	default:
		return cfg, fmt.Errorf("unknown body preset %q", name)
	}
	return cfg, nil
}

func (c *BodyConfig) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.DurationS <= 0 {
		return fmt.Errorf("duration must be > 0")
	}
	if c.Modes < 1 {
		return fmt.Errorf("modes must be >= 1")
	}
	if c.TopHz <= 0 || c.AirHz < 0 {
		return fmt.Errorf("resonance frequencies must be positive")
	}
	if c.AirHz > 0 && c.AirDecay <= 0 {
		return fmt.Errorf("air decay must be > 0")
	}
	if c.Brightness <= 0 || c.PlateRatio <= 0 || c.StiffnessRatio <= 0 {
		return fmt.Errorf("brightness, plate ratio and stiffness ratio must be > 0")
	}
	if c.LowDecayS <= 0 || c.HighDecayS <= 0 || c.CrossoverHz <= 0 {
		return fmt.Errorf("decay times and crossover must be > 0")
	}
	if c.DirectLevel < 0 || c.StereoWidth < 0 {
		return fmt.Errorf("direct level and stereo width must be >= 0")
	}
	if c.NormalizePeak <= 0 {
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// GenerateBody synthesizes the body IR. The same seed always gives the same
// response.
func GenerateBody(cfg BodyConfig) ([]float32, []float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	n := max(1, int(math.Round(cfg.DurationS*float64(cfg.SampleRate))))
	left := make([]float64, n)
	right := make([]float64, n)
	rng := rand.New(rand.NewSource(cfg.Seed))

	left[0] += cfg.DirectLevel
	right[0] += cfg.DirectLevel

	if cfg.AirHz > 0 {
		decay := math.Exp(-1.0 / (cfg.AirDecay * float64(cfg.SampleRate)))
		addMode(left, cfg.AirLevel, cfg.AirHz, 0, decay, cfg.SampleRate)
		addMode(right, cfg.AirLevel, cfg.AirHz, 0, decay, cfg.SampleRate)
	}

	maxF := math.Max(500, 0.45*float64(cfg.SampleRate))
	freqs := plateModes(cfg.TopHz, maxF, cfg.Modes, cfg.PlateRatio, cfg.StiffnessRatio)
	logCross := math.Log(cfg.CrossoverHz)
	tilt := 0.7 + 0.9/cfg.Brightness
	for _, f := range freqs {
		amp := 0.9 / math.Pow(1.0+f/cfg.TopHz, tilt)
		amp *= 0.7 + 0.6*rng.Float64()

		blend := 1.0 / (1.0 + math.Exp(-3.0*(math.Log(f)-logCross)))
		tau := cfg.LowDecayS*(1.0-blend) + cfg.HighDecayS*blend
		decay := math.Exp(-1.0 / (tau * float64(cfg.SampleRate)))

		// Each channel hears the mode at a slightly different level and phase.
		pan := (rng.Float64()*2.0 - 1.0) * cfg.StereoWidth
		phi := rng.Float64() * 2.0 * math.Pi
		addMode(left, amp*(1.0-0.5*pan), f, phi, decay, cfg.SampleRate)
		addMode(right, amp*(1.0+0.5*pan), f, phi+0.3*pan, decay, cfg.SampleRate)
	}

	removeDC(left, 0.995)
	removeDC(right, 0.995)
	fadeOut(left, cfg.FadeOutS, cfg.SampleRate)
	fadeOut(right, cfg.FadeOutS, cfg.SampleRate)
	l, r := normalize(left, right, cfg.NormalizePeak)
	return l, r, nil
}

// plateModes returns up to maxModes eigenfrequencies of a simply supported
// orthotropic plate, lowest first, scaled so the (1,1) mode sits at f11.
func plateModes(f11, maxF float64, maxModes int, ratio, stiffness float64) []float64 {
	sqrtS := math.Sqrt(stiffness)
	r2 := ratio * ratio
	norm := math.Sqrt(stiffness + 2*sqrtS*r2 + r2*r2)

	mMax := int(math.Sqrt(maxF/f11*norm/sqrtS)) + 2
	nMax := int(math.Sqrt(maxF/f11*norm)) + 2
	freqs := make([]float64, 0, mMax*nMax)
	for m := 1; m <= mMax; m++ {
		m2 := float64(m * m)
		for k := 1; k <= nMax; k++ {
			k2 := float64(k * k)
			f := f11 * math.Sqrt(stiffness*m2*m2+2*sqrtS*m2*k2*r2+k2*k2*r2*r2) / norm
			if f > maxF {
				break
			}
			freqs = append(freqs, f)
		}
	}
	sort.Float64s(freqs)
	if len(freqs) > maxModes {
		freqs = freqs[:maxModes]
	}
	return freqs
}

// addMode adds an exponentially decaying sinusoid using the two-term
// cosine recurrence.
func addMode(out []float64, amp, freq, phase, decay float64, sampleRate int) {
	if len(out) == 0 {
		return
	}
	w := 2.0 * math.Pi * freq / float64(sampleRate)
	c2 := 2.0 * math.Cos(w)
	x0 := math.Cos(phase)
	x1 := math.Cos(phase + w)
	env := amp
	out[0] += env * x0
	if len(out) == 1 {
		return
	}
	env *= decay
	out[1] += env * x1
	for i := 2; i < len(out); i++ {
		x0, x1 = x1, c2*x1-x0
		env *= decay
		out[i] += env * x1
	}
}

func removeDC(x []float64, r float64) {
	prevIn, prevOut := 0.0, 0.0
	for i, v := range x {
		y := v - prevIn + r*prevOut
		prevIn = v
		prevOut = y
		x[i] = y
	}
}

// fadeOut applies a raised-cosine fade over the last fadeS seconds.
func fadeOut(x []float64, fadeS float64, sampleRate int) {
	if fadeS <= 0 || len(x) == 0 {
		return
	}
	n := min(len(x), int(math.Round(fadeS*float64(sampleRate))))
	start := len(x) - n
	for i := 0; i < n; i++ {
		x[start+i] *= 0.5 * (1.0 + math.Cos(math.Pi*float64(i)/float64(n)))
	}
}

func normalize(left, right []float64, target float64) ([]float32, []float32) {
	peak := 1e-12
	for i := range left {
		peak = math.Max(peak, math.Abs(left[i]))
		peak = math.Max(peak, math.Abs(right[i]))
	}
	g := target / peak
	outL := make([]float32, len(left))
	outR := make([]float32, len(right))
	for i := range left {
		outL[i] = float32(left[i] * g)
		outR[i] = float32(right[i] * g)
	}
	return outL, outR
}
