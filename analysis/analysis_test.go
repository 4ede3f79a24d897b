package analysis

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-pluck/pluck"
)

func makeDecaySine(sr int, freq, durationSec, decaySec float64) []float64 {
	n := max(1, int(float64(sr)*durationSec))
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(sr)
		out[i] = math.Exp(-t/decaySec) * math.Sin(2*math.Pi*freq*t)
	}
	return out
}

func randomSignal(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}

func TestCompareIdenticalSignalsHasLowDistance(t *testing.T) {
	sr := 48000
	x := makeDecaySine(sr, 440, 1.5, 0.7)
	m := Compare(x, x, sr)
	if m.LagSamples != 0 {
		t.Fatalf("identical signals should align at lag 0, got %d", m.LagSamples)
	}
	if m.Score > 0.05 {
		t.Fatalf("expected very low score for identical signals, got %f", m.Score)
	}
	if m.Similarity < 0.85 {
		t.Fatalf("expected high similarity for identical signals, got %f", m.Similarity)
	}
}

func TestCompareDifferentSignalsHasHigherDistance(t *testing.T) {
	sr := 48000
	a := makeDecaySine(sr, 261.63, 1.8, 0.8)
	b := makeDecaySine(sr, 330.0, 0.8, 0.25)
	m := Compare(a, b, sr)
	if m.Score < 0.25 {
		t.Fatalf("expected higher score for different signals, got %f", m.Score)
	}
	if m.Dominant == "" {
		t.Fatalf("a dominant component should be reported")
	}
}

func TestCompareReportsPitchOffset(t *testing.T) {
	sr := 48000
	a := makeDecaySine(sr, 440, 1.5, 1.0)
	b := makeDecaySine(sr, 440*math.Pow(2, 10.0/1200), 1.5, 1.0)
	m := Compare(a, b, sr)
	if math.Abs(m.PitchDiffCents-10) > 2 {
		t.Fatalf("expected about 10 cents pitch difference, got %.2f", m.PitchDiffCents)
	}
}

func TestCompareDegenerateInputs(t *testing.T) {
	if m := Compare(nil, []float64{1, 2}, 48000); m.Score != 1 || m.Similarity != 0 {
		t.Fatalf("empty reference should score worst: %+v", m)
	}
	if m := Compare([]float64{1}, []float64{1}, 0); m.Score != 1 {
		t.Fatalf("zero sample rate should score worst: %+v", m)
	}
}

func TestEstimateLagFindsShifts(t *testing.T) {
	const n = 8192
	ref := randomSignal(n, 7)

	cand := make([]float64, n)
	copy(cand, ref[237:])
	if got := estimateLag(ref, cand, 600); got != 237 {
		t.Fatalf("positive shift: got %d want 237", got)
	}

	cand = make([]float64, n)
	copy(cand[191:], ref)
	if got := estimateLag(ref, cand, 600); got != -191 {
		t.Fatalf("negative shift: got %d want -191", got)
	}
}

func TestEstimateLagMatchesDirect(t *testing.T) {
	const n = 16000
	ref := randomSignal(n, 23)
	cand := make([]float64, n)
	copy(cand, ref[443:])
	if got, want := estimateLag(ref, cand, 1000), estimateLagDirect(ref, cand, 1000); got != want {
		t.Fatalf("estimateLag() = %d, direct = %d", got, want)
	}
}

func TestDecayRateAndT60(t *testing.T) {
	const sr = 48000
	const tau = 0.5
	x := makeDecaySine(sr, 330, 3, tau)
	want := -20 / (tau * math.Ln10)
	got := DecayRate(Envelope(x, envFrame, envHop), float64(envHop)/sr)
	if math.Abs(got-want) > 0.5 {
		t.Fatalf("decay rate: got %.2f dB/s want %.2f", got, want)
	}
	if t60 := T60(x, sr); math.Abs(t60-60/-want) > 0.05 {
		t.Fatalf("T60: got %.3f s want %.3f", t60, 60/-want)
	}
	if !math.IsNaN(DecayRate(nil, 0.01)) {
		t.Fatalf("empty envelope should give NaN")
	}
}

func TestFundamental(t *testing.T) {
	const sr = 48000
	if f := Fundamental(makeDecaySine(sr, 440, 1, 2), sr, 20, 5000); math.Abs(f-440) > 0.5 {
		t.Fatalf("pure tone: got %.2f Hz", f)
	}

	// second harmonic louder than the fundamental
	x := make([]float64, sr)
	for i := range x {
		ph := 2 * math.Pi * 110 * float64(i) / sr
		x[i] = 0.4*math.Sin(ph) + math.Sin(2*ph)
	}
	if f := Fundamental(x, sr, 20, 5000); math.Abs(f-110) > 0.5 {
		t.Fatalf("weak fundamental: got %.2f Hz want 110", f)
	}
	if Fundamental(nil, sr, 20, 5000) != 0 {
		t.Fatalf("empty input should give 0")
	}
}

func TestCentsBetween(t *testing.T) {
	if c := CentsBetween(440, 880); math.Abs(c-1200) > 1e-9 {
		t.Fatalf("octave should be 1200 cents, got %f", c)
	}
	if !math.IsNaN(CentsBetween(0, 440)) {
		t.Fatalf("zero reference should give NaN")
	}
}

func renderPluck(t *testing.T, sr, note int, decay float32) []float64 {
	t.Helper()
	s, err := pluck.NewSynth(sr)
	if err != nil {
		t.Fatalf("NewSynth: %v", err)
	}
	p := pluck.NewDefaultParams()
	p.Decay = decay
	p.Damp = 0
	p.Color = 0
	const frames = 96000
	const block = 256
	left, right := make([]float32, frames), make([]float32, frames)
	events := []pluck.Event{pluck.NoteOnAt(0, note, 0.9)}
	for start := 0; start < frames; start += block {
		s.Process(left[start:start+block], right[start:start+block], events, p)
		events = nil
	}
	mono := make([]float64, frames)
	for i := range mono {
		mono[i] = 0.5 * (float64(left[i]) + float64(right[i]))
	}
	return mono
}

func TestRenderedPluckPitchAndDecay(t *testing.T) {
	const sr = 48000
	x := renderPluck(t, sr, 57, 1)
	if f := Fundamental(x, sr, 20, 5000); math.Abs(f-220)/220 > 0.01 {
		t.Fatalf("note 57 should measure near 220 Hz, got %.2f", f)
	}

	short := T60(x, sr)
	long := T60(renderPluck(t, sr, 57, 3), sr)
	if !(short > 0 && long > short) {
		t.Fatalf("longer decay should ring longer: T60(1)=%.2f T60(3)=%.2f", short, long)
	}
}
