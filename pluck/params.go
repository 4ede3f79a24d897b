package pluck

import (
	"github.com/cwbudde/algo-pluck/dsp"
	"github.com/cwbudde/algo-pluck/tuning"
)

const (
	// MinNote and MaxNote bound the playable range; other notes are dropped.
	MinNote = 12
	MaxNote = 108

	// PoolSize is the number of voices allocated up front.
	PoolSize = 36

	// MaxBufferSize is the capacity of every per-voice delay and exciter buffer.
	MaxBufferSize = 8192

	MinMaxVoices = 4
	MaxMaxVoices = PoolSize
)

// Params is the per-block parameter snapshot handed to Synth.Process.
type Params struct {
	Decay float32 // loop T60 in seconds, 0.25..60
	Damp  float32 // loop lowpass amount, 0..0.65
	Color float32 // exciter blend, 0 = square, 1 = noise

	Gate   bool // note-off fades, same-note retrigger restarts
	Stereo bool

	FineTune        float32 // cents, -100..100
	StereoMicrotune float32 // cents of L/R detune, 0..5

	MaxVoices int

	GateDamping     float32 // gated release time in seconds, 0..1
	ExciterSlewRate float32 // noise smoothing, 0.1..1 (1 = off)
	DampingCurve    float32 // register dependence of the sustain budget, 0..1

	Tuning tuning.Type

	BodyCoupling float32 // 0..1
	IRWetMix     float32
	IRDryMix     float32
	OutputGain   float32

	Interpolation dsp.Interpolation
}

// NewDefaultParams creates default parameters.
func NewDefaultParams() Params {
	return Params{
		Decay:           3.0,
		Damp:            0.2,
		Color:           0.5,
		Gate:            false,
		Stereo:          true,
		FineTune:        0,
		StereoMicrotune: 0,
		MaxVoices:       16,
		GateDamping:     0,
		ExciterSlewRate: 1.0,
		DampingCurve:    0.5,
		Tuning:          tuning.Equal,
		BodyCoupling:    0,
		IRWetMix:        0,
		IRDryMix:        1,
		OutputGain:      0.3,
		Interpolation:   dsp.Linear,
	}
}

// Clamped returns a copy with every field forced into its valid range.
func (p Params) Clamped() Params {
	p.Decay = clampf(p.Decay, 0.25, 60)
	p.Damp = clampf(p.Damp, 0, 0.65)
	p.Color = clampf(p.Color, 0, 1)
	p.FineTune = clampf(p.FineTune, -100, 100)
	p.StereoMicrotune = clampf(p.StereoMicrotune, 0, 5)
	if p.MaxVoices < MinMaxVoices {
		p.MaxVoices = MinMaxVoices
	}
	if p.MaxVoices > MaxMaxVoices {
		p.MaxVoices = MaxMaxVoices
	}
	p.GateDamping = clampf(p.GateDamping, 0, 1)
	p.ExciterSlewRate = clampf(p.ExciterSlewRate, 0.1, 1)
	p.DampingCurve = clampf(p.DampingCurve, 0, 1)
	if p.Tuning < tuning.Equal || p.Tuning > tuning.Custom {
		p.Tuning = tuning.Equal
	}
	p.BodyCoupling = clampf(p.BodyCoupling, 0, 1)
	p.IRWetMix = clampf(p.IRWetMix, 0, 1)
	p.IRDryMix = clampf(p.IRDryMix, 0, 1)
	p.OutputGain = clampf(p.OutputGain, 0, 4)
	if p.Interpolation != dsp.Cubic {
		p.Interpolation = dsp.Linear
	}
	return p
}
