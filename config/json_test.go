package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-pluck/dsp"
	"github.com/cwbudde/algo-pluck/pluck"
	"github.com/cwbudde/algo-pluck/tuning"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadJSONAppliesFieldsAndResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "render.json")
	writeFile(t, cfgPath, `{
  "decay": 8,
  "damp": 0.4,
  "color": 0.1,
  "gate": true,
  "max_voices": 8,
  "interpolation": "cubic",
  "tuning_file": "tunings/stretch.tun",
  "ir_wav_path": "ir.wav"
}`)

	c, err := LoadJSON(cfgPath)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	p := c.Params
	if p.Decay != 8 || p.Damp != 0.4 || p.Color != 0.1 || !p.Gate || p.MaxVoices != 8 {
		t.Fatalf("fields not applied: %+v", p)
	}
	if p.Interpolation != dsp.Cubic {
		t.Fatalf("expected cubic interpolation")
	}
	if p.Tuning != tuning.Custom {
		t.Fatalf("a tuning file should select the custom table, got %v", p.Tuning)
	}
	if want := filepath.Join(dir, "tunings", "stretch.tun"); c.TuningFile != want {
		t.Fatalf("tuning path: got %q want %q", c.TuningFile, want)
	}
	if want := filepath.Join(dir, "ir.wav"); c.IRWavPath != want {
		t.Fatalf("ir path: got %q want %q", c.IRWavPath, want)
	}
	// untouched fields keep their defaults
	if p.Stereo != true || p.OutputGain != 0.3 {
		t.Fatalf("defaults lost: %+v", p)
	}
}

func TestLoadJSONRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"decay":         `{"decay": 0.1}`,
		"damp":          `{"damp": 0.9}`,
		"max voices":    `{"max_voices": 64}`,
		"output gain":   `{"output_gain": 0}`,
		"tuning":        `{"tuning": "bogus"}`,
		"custom":        `{"tuning": "custom"}`,
		"interpolation": `{"interpolation": "sinc"}`,
		"syntax":        `{"decay": }`,
	}
	dir := t.TempDir()
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.json")
			writeFile(t, path, content)
			if _, err := LoadJSON(path); err == nil {
				t.Fatalf("expected error for %s", content)
			}
		})
	}
}

func TestApplyFileKeepsExplicitTuning(t *testing.T) {
	c := Default()
	f := &File{Tuning: "just", TuningFile: "/abs/x.tun"}
	if err := ApplyFile(c, f); err != nil {
		t.Fatalf("ApplyFile: %v", err)
	}
	if c.Params.Tuning != tuning.Just || c.TuningFile != "/abs/x.tun" {
		t.Fatalf("explicit tuning should win: %+v", c)
	}
	if err := ApplyFile(nil, f); err == nil {
		t.Fatalf("nil destination should fail")
	}
	if err := ApplyFile(c, nil); err != nil {
		t.Fatalf("nil file is a no-op: %v", err)
	}
}

func TestSaveJSONRoundTrip(t *testing.T) {
	c := Default()
	c.Params.Decay = 5.5
	c.Params.Color = 0.9
	c.Params.Tuning = tuning.Meantone
	c.Params.Interpolation = dsp.Cubic
	c.Params.MaxVoices = 12

	path := filepath.Join(t.TempDir(), "out.json")
	if err := SaveJSON(path, c); err != nil {
		t.Fatalf("SaveJSON: %v", err)
	}
	got, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if got.Params != c.Params {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got.Params, c.Params)
	}
}

func TestApplyLoadsTuningIntoSynth(t *testing.T) {
	dir := t.TempDir()
	tun := filepath.Join(dir, "octave.tun")
	writeFile(t, tun, "0\n0\n0\n0\n0\n0\n0\n0\n0\n0\n0\n-5\n")

	c := Default()
	if err := ApplyFile(c, &File{TuningFile: tun}); err != nil {
		t.Fatalf("ApplyFile: %v", err)
	}
	s, err := pluck.NewSynth(44100)
	if err != nil {
		t.Fatalf("NewSynth: %v", err)
	}
	if err := c.Apply(s); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := s.Tuning(); got.Type != tuning.Custom || got.CentDeviation(59) != -5 {
		t.Fatalf("custom tuning not installed: %+v", got)
	}

	c.IRWavPath = filepath.Join(dir, "missing.wav")
	if err := c.Apply(s); err == nil {
		t.Fatalf("missing IR should fail")
	}
}
