// Package analysis measures how close a rendered pluck is to a reference
// recording.
package analysis

import "math"

// Score weights; they sum to 1.
const (
	WeightTime     = 0.20
	WeightEnvelope = 0.25
	WeightSpectral = 0.25
	WeightDecay    = 0.15
	WeightPitch    = 0.15
)

// Metrics contains distance and similarity measurements between two signals.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`
	LagSamples      int `json:"lag_samples"`

	TimeRMSE        float64 `json:"time_rmse"`
	EnvelopeRMSEDB  float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB  float64 `json:"spectral_rmse_db"`
	RefDecayDBPerS  float64 `json:"ref_decay_db_per_s"`
	CandDecayDBPerS float64 `json:"cand_decay_db_per_s"`
	DecayDiffDBPerS float64 `json:"decay_diff_db_per_s"`
	RefPitchHz      float64 `json:"ref_pitch_hz"`
	CandPitchHz     float64 `json:"cand_pitch_hz"`
	PitchDiffCents  float64 `json:"pitch_diff_cents"`

	TimeNorm     float64 `json:"time_norm"`
	EnvelopeNorm float64 `json:"envelope_norm"`
	SpectralNorm float64 `json:"spectral_norm"`
	DecayNorm    float64 `json:"decay_norm"`
	PitchNorm    float64 `json:"pitch_norm"`
	Dominant     string  `json:"dominant"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

// Pitch search range for Compare; covers MIDI notes 12..108 with margin.
const (
	minPitchHz = 15
	maxPitchHz = 5000
)

// Compare aligns candidate to reference and returns distance metrics with a
// combined score in [0,1] (0 = identical).
func Compare(reference, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
		Score:           1,
	}
	if sampleRate <= 0 {
		return m
	}

	ref := normalizeRMS(trimLeadingSilence(reference, 1e-6), 0.1)
	cand := normalizeRMS(trimLeadingSilence(candidate, 1e-6), 0.1)
	if len(ref) < 2 || len(cand) < 2 {
		return m
	}

	maxLag := min(sampleRate/2, len(ref)-1, len(cand)-1)
	m.LagSamples = estimateLag(ref, cand, max(maxLag, 1))
	refA, candA := alignByLag(ref, cand, m.LagSamples)
	n := min(len(refA), len(candA), sampleRate*12)
	if n < 256 {
		return m
	}
	refA = refA[:n]
	candA = candA[:n]
	m.AlignedFrames = n

	m.TimeRMSE = rmse(refA, candA)

	refEnv := Envelope(refA, envFrame, envHop)
	candEnv := Envelope(candA, envFrame, envHop)
	if envN := min(len(refEnv), len(candEnv)); envN > 0 {
		diff := make([]float64, envN)
		for i := range diff {
			diff[i] = linToDB(refEnv[i]) - linToDB(candEnv[i])
		}
		m.EnvelopeRMSEDB = rms(diff)
	}

	m.SpectralRMSEDB = spectralRMSEDB(refA, candA)

	hopSec := float64(envHop) / float64(sampleRate)
	m.RefDecayDBPerS = DecayRate(refEnv, hopSec)
	m.CandDecayDBPerS = DecayRate(candEnv, hopSec)
	if isFinite(m.RefDecayDBPerS) && isFinite(m.CandDecayDBPerS) {
		m.DecayDiffDBPerS = math.Abs(m.RefDecayDBPerS - m.CandDecayDBPerS)
	}

	m.RefPitchHz = Fundamental(refA, sampleRate, minPitchHz, maxPitchHz)
	m.CandPitchHz = Fundamental(candA, sampleRate, minPitchHz, maxPitchHz)
	if c := CentsBetween(m.RefPitchHz, m.CandPitchHz); isFinite(c) {
		m.PitchDiffCents = math.Abs(c)
	}

	m.TimeNorm = clamp01(m.TimeRMSE / 0.25)
	m.EnvelopeNorm = clamp01(m.EnvelopeRMSEDB / 30)
	m.SpectralNorm = clamp01(m.SpectralRMSEDB / 30)
	m.DecayNorm = clamp01(m.DecayDiffDBPerS / 40)
	m.PitchNorm = clamp01(m.PitchDiffCents / 100)

	parts := []struct {
		name string
		v    float64
	}{
		{"time", m.TimeNorm * WeightTime},
		{"envelope", m.EnvelopeNorm * WeightEnvelope},
		{"spectral", m.SpectralNorm * WeightSpectral},
		{"decay", m.DecayNorm * WeightDecay},
		{"pitch", m.PitchNorm * WeightPitch},
	}
	var score, top float64
	for _, p := range parts {
		score += p.v
		if p.v > top {
			top = p.v
			m.Dominant = p.name
		}
	}
	m.Score = clamp01(score)
	m.Similarity = math.Exp(-4 * m.Score)
	return m
}

func trimLeadingSilence(x []float64, threshold float64) []float64 {
	for i, v := range x {
		if math.Abs(v) > threshold {
			return x[i:]
		}
	}
	return nil
}

func normalizeRMS(x []float64, target float64) []float64 {
	r := rms(x)
	out := make([]float64, len(x))
	if r <= 1e-12 {
		copy(out, x)
		return out
	}
	g := target / r
	for i, v := range x {
		out[i] = v * g
	}
	return out
}

func rmse(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
