package main

import (
	"math"

	"github.com/cwbudde/algo-pluck/config"
)

type knobDef struct {
	Name string
	Min  float64
	Max  float64
	// Log maps the normalized position exponentially, for ranges that span
	// decades.
	Log bool
}

type candidate struct {
	Vals []float64
}

// knobDefs are the parameters fitted against a reference pluck. Velocity is
// not an engine parameter but shapes the exciter, so it is fitted too.
func knobDefs() []knobDef {
	return []knobDef{
		{Name: "decay", Min: 0.25, Max: 60, Log: true},
		{Name: "damp", Min: 0, Max: 0.65},
		{Name: "color", Min: 0, Max: 1},
		{Name: "finetune", Min: -50, Max: 50},
		{Name: "exciter_slew_rate", Min: 0.1, Max: 1},
		{Name: "damping_curve", Min: 0, Max: 1},
		{Name: "velocity", Min: 0.1, Max: 1},
	}
}

func initCandidate(base *config.Config, velocity float64) ([]knobDef, candidate) {
	defs := knobDefs()
	p := base.Params
	vals := make([]float64, len(defs))
	for i, d := range defs {
		var v float64
		switch d.Name {
		case "decay":
			v = float64(p.Decay)
		case "damp":
			v = float64(p.Damp)
		case "color":
			v = float64(p.Color)
		case "finetune":
			v = float64(p.FineTune)
		case "exciter_slew_rate":
			v = float64(p.ExciterSlewRate)
		case "damping_curve":
			v = float64(p.DampingCurve)
		case "velocity":
			v = velocity
		}
		vals[i] = clamp(v, d.Min, d.Max)
	}
	return defs, candidate{Vals: vals}
}

// applyCandidate returns a copy of base with the candidate values applied,
// plus the candidate velocity.
func applyCandidate(base *config.Config, defs []knobDef, c candidate) (*config.Config, float32) {
	out := *base
	p := &out.Params
	velocity := float32(0.8)
	for i, d := range defs {
		v := float32(clamp(c.Vals[i], d.Min, d.Max))
		switch d.Name {
		case "decay":
			p.Decay = v
		case "damp":
			p.Damp = v
		case "color":
			p.Color = v
		case "finetune":
			p.FineTune = v
		case "exciter_slew_rate":
			p.ExciterSlewRate = v
		case "damping_curve":
			p.DampingCurve = v
		case "velocity":
			velocity = v
		}
	}
	out.Params = p.Clamped()
	return &out, velocity
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i, d := range defs {
		u := clamp(pos[i], 0, 1)
		if d.Log && d.Min > 0 {
			vals[i] = d.Min * math.Pow(d.Max/d.Min, u)
		} else {
			vals[i] = d.Min + u*(d.Max-d.Min)
		}
	}
	return candidate{Vals: vals}
}

func cloneCandidate(c candidate) candidate {
	return candidate{Vals: append([]float64(nil), c.Vals...)}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
