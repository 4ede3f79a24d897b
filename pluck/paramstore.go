package pluck

import (
	"fmt"
	"math"
	"strings"
	"sync/atomic"

	"github.com/cwbudde/algo-pluck/dsp"
	"github.com/cwbudde/algo-pluck/tuning"
)

// ParamID names a host-facing parameter.
type ParamID int

const (
	ParamDecay ParamID = iota
	ParamDamp
	ParamColor
	ParamGate
	ParamStereo
	ParamFineTune
	ParamStereoMicrotune
	ParamMaxVoices
	ParamGateDamping
	ParamExciterSlewRate
	ParamDampingCurve
	ParamTuning
	ParamBodyCoupling
	ParamIRWetMix
	ParamIRDryMix
	ParamOutputGain
	ParamInterpolation
	numParams
)

// ParamInfo describes range and default of a parameter.
type ParamInfo struct {
	ID      ParamID
	Name    string
	Min     float64
	Max     float64
	Default float64
}

var paramInfos = [numParams]ParamInfo{
	{ParamDecay, "decay", 0.25, 60, 3.0},
	{ParamDamp, "damp", 0, 0.65, 0.2},
	{ParamColor, "color", 0, 1, 0.5},
	{ParamGate, "gate", 0, 1, 0},
	{ParamStereo, "stereo", 0, 1, 1},
	{ParamFineTune, "finetune", -100, 100, 0},
	{ParamStereoMicrotune, "stereo_microtune", 0, 5, 0},
	{ParamMaxVoices, "max_voices", MinMaxVoices, MaxMaxVoices, 16},
	{ParamGateDamping, "gate_damping", 0, 1, 0},
	{ParamExciterSlewRate, "exciter_slew_rate", 0.1, 1, 1},
	{ParamDampingCurve, "damping_curve", 0, 1, 0.5},
	{ParamTuning, "tuning", float64(tuning.Equal), float64(tuning.Custom), float64(tuning.Equal)},
	{ParamBodyCoupling, "body_coupling", 0, 1, 0},
	{ParamIRWetMix, "ir_wet", 0, 1, 0},
	{ParamIRDryMix, "ir_dry", 0, 1, 1},
	{ParamOutputGain, "output_gain", 0, 4, 0.3},
	{ParamInterpolation, "interpolation", float64(dsp.Linear), float64(dsp.Cubic), float64(dsp.Linear)},
}

// ParamInfos lists every parameter description.
func ParamInfos() []ParamInfo {
	out := make([]ParamInfo, len(paramInfos))
	copy(out, paramInfos[:])
	return out
}

// LookupParam finds a parameter by name, case-insensitive.
func LookupParam(name string) (ParamInfo, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, info := range paramInfos {
		if info.Name == key {
			return info, nil
		}
	}
	return ParamInfo{}, fmt.Errorf("unknown parameter %q", name)
}

// ParamStore holds plain parameter values as atomic float bits so a control
// thread can write while the render thread takes snapshots.
type ParamStore struct {
	values [numParams]atomic.Uint64
}

// NewParamStore creates a store at default values.
func NewParamStore() *ParamStore {
	s := &ParamStore{}
	for _, info := range paramInfos {
		s.values[info.ID].Store(math.Float64bits(info.Default))
	}
	return s
}

// Set stores a plain value clamped to the parameter range.
func (s *ParamStore) Set(id ParamID, value float64) {
	if id < 0 || id >= numParams {
		return
	}
	info := paramInfos[id]
	if math.IsNaN(value) {
		value = info.Default
	}
	value = math.Max(info.Min, math.Min(info.Max, value))
	s.values[id].Store(math.Float64bits(value))
}

// SetByName stores a value by parameter name.
func (s *ParamStore) SetByName(name string, value float64) error {
	info, err := LookupParam(name)
	if err != nil {
		return err
	}
	s.Set(info.ID, value)
	return nil
}

// Get returns the plain value of a parameter.
func (s *ParamStore) Get(id ParamID) float64 {
	if id < 0 || id >= numParams {
		return 0
	}
	return math.Float64frombits(s.values[id].Load())
}

// Load copies p into the store.
func (s *ParamStore) Load(p Params) {
	s.Set(ParamDecay, float64(p.Decay))
	s.Set(ParamDamp, float64(p.Damp))
	s.Set(ParamColor, float64(p.Color))
	s.Set(ParamGate, boolToFloat(p.Gate))
	s.Set(ParamStereo, boolToFloat(p.Stereo))
	s.Set(ParamFineTune, float64(p.FineTune))
	s.Set(ParamStereoMicrotune, float64(p.StereoMicrotune))
	s.Set(ParamMaxVoices, float64(p.MaxVoices))
	s.Set(ParamGateDamping, float64(p.GateDamping))
	s.Set(ParamExciterSlewRate, float64(p.ExciterSlewRate))
	s.Set(ParamDampingCurve, float64(p.DampingCurve))
	s.Set(ParamTuning, float64(p.Tuning))
	s.Set(ParamBodyCoupling, float64(p.BodyCoupling))
	s.Set(ParamIRWetMix, float64(p.IRWetMix))
	s.Set(ParamIRDryMix, float64(p.IRDryMix))
	s.Set(ParamOutputGain, float64(p.OutputGain))
	s.Set(ParamInterpolation, float64(p.Interpolation))
}

// Snapshot reads every parameter once into a Params value.
func (s *ParamStore) Snapshot() Params {
	return Params{
		Decay:           float32(s.Get(ParamDecay)),
		Damp:            float32(s.Get(ParamDamp)),
		Color:           float32(s.Get(ParamColor)),
		Gate:            s.Get(ParamGate) > 0.5,
		Stereo:          s.Get(ParamStereo) > 0.5,
		FineTune:        float32(s.Get(ParamFineTune)),
		StereoMicrotune: float32(s.Get(ParamStereoMicrotune)),
		MaxVoices:       int(math.Round(s.Get(ParamMaxVoices))),
		GateDamping:     float32(s.Get(ParamGateDamping)),
		ExciterSlewRate: float32(s.Get(ParamExciterSlewRate)),
		DampingCurve:    float32(s.Get(ParamDampingCurve)),
		Tuning:          tuning.Type(math.Round(s.Get(ParamTuning))),
		BodyCoupling:    float32(s.Get(ParamBodyCoupling)),
		IRWetMix:        float32(s.Get(ParamIRWetMix)),
		IRDryMix:        float32(s.Get(ParamIRDryMix)),
		OutputGain:      float32(s.Get(ParamOutputGain)),
		Interpolation:   dsp.Interpolation(math.Round(s.Get(ParamInterpolation))),
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
