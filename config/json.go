// Package config loads the JSON render configuration shared by the
// command-line tools.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-pluck/dsp"
	"github.com/cwbudde/algo-pluck/pluck"
	"github.com/cwbudde/algo-pluck/tuning"
)

// File is the JSON schema. Absent fields keep their current value.
type File struct {
	Decay           *float32 `json:"decay,omitempty"`
	Damp            *float32 `json:"damp,omitempty"`
	Color           *float32 `json:"color,omitempty"`
	Gate            *bool    `json:"gate,omitempty"`
	Stereo          *bool    `json:"stereo,omitempty"`
	FineTune        *float32 `json:"finetune,omitempty"`
	StereoMicrotune *float32 `json:"stereo_microtune,omitempty"`
	MaxVoices       *int     `json:"max_voices,omitempty"`
	GateDamping     *float32 `json:"gate_damping,omitempty"`
	ExciterSlewRate *float32 `json:"exciter_slew_rate,omitempty"`
	DampingCurve    *float32 `json:"damping_curve,omitempty"`
	BodyCoupling    *float32 `json:"body_coupling,omitempty"`
	IRWetMix        *float32 `json:"ir_wet,omitempty"`
	IRDryMix        *float32 `json:"ir_dry,omitempty"`
	OutputGain      *float32 `json:"output_gain,omitempty"`

	Interpolation string `json:"interpolation,omitempty"`
	Tuning        string `json:"tuning,omitempty"`
	TuningFile    string `json:"tuning_file,omitempty"`
	IRWavPath     string `json:"ir_wav_path,omitempty"`
}

// Config is a resolved configuration: engine parameters plus the external
// files the engine should load.
type Config struct {
	Params     pluck.Params
	TuningFile string
	IRWavPath  string
}

// Default returns the engine defaults with no external files.
func Default() *Config {
	return &Config{Params: pluck.NewDefaultParams()}
}

// LoadJSON reads path and applies it on top of the defaults. Relative file
// references are resolved against the directory of path.
func LoadJSON(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	c := Default()
	if err := ApplyFile(c, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Dir(path)
	c.TuningFile = resolve(base, c.TuningFile)
	c.IRWavPath = resolve(base, c.IRWavPath)
	return c, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// ApplyFile validates f and applies it onto dst.
func ApplyFile(dst *Config, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination config")
	}
	if f == nil {
		return nil
	}
	p := &dst.Params

	if err := setRange(&p.Decay, f.Decay, "decay", 0.25, 60); err != nil {
		return err
	}
	if err := setRange(&p.Damp, f.Damp, "damp", 0, 0.65); err != nil {
		return err
	}
	if err := setRange(&p.Color, f.Color, "color", 0, 1); err != nil {
		return err
	}
	if f.Gate != nil {
		p.Gate = *f.Gate
	}
	if f.Stereo != nil {
		p.Stereo = *f.Stereo
	}
	if err := setRange(&p.FineTune, f.FineTune, "finetune", -100, 100); err != nil {
		return err
	}
	if err := setRange(&p.StereoMicrotune, f.StereoMicrotune, "stereo_microtune", 0, 5); err != nil {
		return err
	}
	if f.MaxVoices != nil {
		if *f.MaxVoices < pluck.MinMaxVoices || *f.MaxVoices > pluck.MaxMaxVoices {
			return fmt.Errorf("max_voices must be in [%d,%d]", pluck.MinMaxVoices, pluck.MaxMaxVoices)
		}
		p.MaxVoices = *f.MaxVoices
	}
	if err := setRange(&p.GateDamping, f.GateDamping, "gate_damping", 0, 1); err != nil {
		return err
	}
	if err := setRange(&p.ExciterSlewRate, f.ExciterSlewRate, "exciter_slew_rate", 0.1, 1); err != nil {
		return err
	}
	if err := setRange(&p.DampingCurve, f.DampingCurve, "damping_curve", 0, 1); err != nil {
		return err
	}
	if err := setRange(&p.BodyCoupling, f.BodyCoupling, "body_coupling", 0, 1); err != nil {
		return err
	}
	if err := setRange(&p.IRWetMix, f.IRWetMix, "ir_wet", 0, 1); err != nil {
		return err
	}
	if err := setRange(&p.IRDryMix, f.IRDryMix, "ir_dry", 0, 1); err != nil {
		return err
	}
	if f.OutputGain != nil {
		if *f.OutputGain <= 0 || *f.OutputGain > 4 {
			return fmt.Errorf("output_gain must be in (0,4]")
		}
		p.OutputGain = *f.OutputGain
	}

	if s := strings.TrimSpace(f.Interpolation); s != "" {
		mode, err := ParseInterpolation(s)
		if err != nil {
			return err
		}
		p.Interpolation = mode
	}
	if s := strings.TrimSpace(f.Tuning); s != "" {
		t, err := tuning.ParseType(s)
		if err != nil {
			return err
		}
		p.Tuning = t
	}
	if s := strings.TrimSpace(f.TuningFile); s != "" {
		dst.TuningFile = s
		if strings.TrimSpace(f.Tuning) == "" {
			p.Tuning = tuning.Custom
		}
	}
	if p.Tuning == tuning.Custom && dst.TuningFile == "" {
		return fmt.Errorf("tuning %q needs a tuning_file", tuning.Custom)
	}
	if s := strings.TrimSpace(f.IRWavPath); s != "" {
		dst.IRWavPath = s
	}
	return nil
}

func setRange(dst *float32, v *float32, name string, lo, hi float32) error {
	if v == nil {
		return nil
	}
	if !(*v >= lo && *v <= hi) {
		return fmt.Errorf("%s must be in [%g,%g], got %g", name, lo, hi, *v)
	}
	*dst = *v
	return nil
}

// ParseInterpolation accepts "linear" or "cubic".
func ParseInterpolation(s string) (dsp.Interpolation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "linear", "lin":
		return dsp.Linear, nil
	case "cubic", "hermite":
		return dsp.Cubic, nil
	}
	return dsp.Linear, fmt.Errorf("unknown interpolation %q", s)
}

// ToFile converts c back into its JSON form with every field set.
func ToFile(c *Config) *File {
	p := c.Params
	interp := "linear"
	if p.Interpolation == dsp.Cubic {
		interp = "cubic"
	}
	return &File{
		Decay:           &p.Decay,
		Damp:            &p.Damp,
		Color:           &p.Color,
		Gate:            &p.Gate,
		Stereo:          &p.Stereo,
		FineTune:        &p.FineTune,
		StereoMicrotune: &p.StereoMicrotune,
		MaxVoices:       &p.MaxVoices,
		GateDamping:     &p.GateDamping,
		ExciterSlewRate: &p.ExciterSlewRate,
		DampingCurve:    &p.DampingCurve,
		BodyCoupling:    &p.BodyCoupling,
		IRWetMix:        &p.IRWetMix,
		IRDryMix:        &p.IRDryMix,
		OutputGain:      &p.OutputGain,
		Interpolation:   interp,
		Tuning:          p.Tuning.String(),
		TuningFile:      c.TuningFile,
		IRWavPath:       c.IRWavPath,
	}
}

// SaveJSON writes c as indented JSON.
func SaveJSON(path string, c *Config) error {
	b, err := json.MarshalIndent(ToFile(c), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// Apply loads the configured tuning file and IR into s. Errors leave s in
// its previous state.
func (c *Config) Apply(s *pluck.Synth) error {
	if c.TuningFile != "" {
		if err := s.LoadTuningFile(c.TuningFile); err != nil {
			return fmt.Errorf("tuning file: %w", err)
		}
	}
	if c.IRWavPath != "" {
		if err := s.LoadIR(c.IRWavPath); err != nil {
			return fmt.Errorf("impulse response: %w", err)
		}
	}
	return nil
}
