package wavio

import (
	"math"
	"path/filepath"
	"testing"
)

func TestWriteStereoReadBack(t *testing.T) {
	const sr = 48000
	left := make([]float32, 480)
	right := make([]float32, 480)
	for i := range left {
		left[i] = 0.5 * float32(math.Sin(2*math.Pi*440*float64(i)/sr))
		right[i] = -left[i]
	}
	path := filepath.Join(t.TempDir(), "out", "tone.wav")
	if err := WriteStereo(path, left, right, sr); err != nil {
		t.Fatalf("WriteStereo: %v", err)
	}

	l, r, err := ReadStereo32(path, sr)
	if err != nil {
		t.Fatalf("ReadStereo32: %v", err)
	}
	if len(l) != len(left) || len(r) != len(right) {
		t.Fatalf("length mismatch: got %d/%d want %d", len(l), len(r), len(left))
	}
	for i := range left {
		if math.Abs(float64(l[i]-left[i])) > 1e-3 || math.Abs(float64(r[i]-right[i])) > 1e-3 {
			t.Fatalf("sample %d: got (%f,%f) want (%f,%f)", i, l[i], r[i], left[i], right[i])
		}
	}

	mono, rate, err := ReadMono(path)
	if err != nil {
		t.Fatalf("ReadMono: %v", err)
	}
	if rate != sr {
		t.Fatalf("sample rate: got %d want %d", rate, sr)
	}
	for i, v := range mono {
		if math.Abs(v) > 1e-3 {
			t.Fatalf("opposite channels should cancel, sample %d = %f", i, v)
		}
	}
}

func TestWriteStereoLengthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := WriteStereo(path, make([]float32, 3), make([]float32, 4), 44100); err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestResampleSameRateIsIdentity(t *testing.T) {
	in := []float64{1, 2, 3}
	out, err := Resample(in, 44100, 44100)
	if err != nil {
		t.Fatalf("Resample: %v", err)
	}
	if &out[0] != &in[0] {
		t.Fatalf("equal rates should return the input slice")
	}
}
