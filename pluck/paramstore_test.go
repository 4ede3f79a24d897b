package pluck

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-pluck/dsp"
	"github.com/cwbudde/algo-pluck/tuning"
)

func TestParamStoreDefaultsMatchParams(t *testing.T) {
	got := NewParamStore().Snapshot()
	if got != NewDefaultParams() {
		t.Fatalf("default snapshot mismatch:\n got %+v\nwant %+v", got, NewDefaultParams())
	}
}

func TestParamStoreClampsAndRejectsNaN(t *testing.T) {
	s := NewParamStore()
	s.Set(ParamDecay, 500)
	if got := s.Get(ParamDecay); got != 60 {
		t.Fatalf("decay should clamp to 60, got %f", got)
	}
	s.Set(ParamDamp, -1)
	if got := s.Get(ParamDamp); got != 0 {
		t.Fatalf("damp should clamp to 0, got %f", got)
	}
	s.Set(ParamColor, math.NaN())
	if got := s.Get(ParamColor); got != 0.5 {
		t.Fatalf("NaN should fall back to the default, got %f", got)
	}
	s.Set(numParams, 1)
	if s.Get(numParams) != 0 {
		t.Fatalf("unknown ids read as zero")
	}
}

func TestParamStoreByName(t *testing.T) {
	s := NewParamStore()
	if err := s.SetByName(" Max_Voices ", 8); err != nil {
		t.Fatalf("SetByName: %v", err)
	}
	if got := s.Snapshot().MaxVoices; got != 8 {
		t.Fatalf("expected 8 voices, got %d", got)
	}
	if err := s.SetByName("sustain", 1); err == nil {
		t.Fatalf("expected error for unknown parameter")
	}
	if len(ParamInfos()) != int(numParams) {
		t.Fatalf("every parameter needs a description")
	}
}

func TestParamStoreLoadSnapshotRoundTrip(t *testing.T) {
	p := NewDefaultParams()
	p.Decay = 12
	p.Damp = 0.5
	p.Gate = true
	p.Stereo = false
	p.FineTune = -25
	p.MaxVoices = 24
	p.Tuning = tuning.Meantone
	p.Interpolation = dsp.Cubic
	p.OutputGain = 1

	s := NewParamStore()
	s.Load(p)
	if got := s.Snapshot(); got != p {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, p)
	}
}
