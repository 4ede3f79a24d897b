package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cwbudde/algo-pluck/analysis"
	"github.com/cwbudde/algo-pluck/config"
	"github.com/cwbudde/algo-pluck/internal/render"
	"github.com/cwbudde/algo-pluck/internal/wavio"
	"github.com/cwbudde/algo-pluck/pluck"
)

func main() {
	referencePath := flag.String("reference", "", "Reference WAV path")
	candidatePath := flag.String("candidate", "", "Candidate WAV path; if empty, render one from -config")
	configPath := flag.String("config", "", "JSON config for the rendered candidate")
	note := flag.Int("note", 60, "MIDI note for the rendered candidate")
	velocity := flag.Float64("velocity", 0.8, "Velocity 0..1 for the rendered candidate")
	sampleRate := flag.Int("sample-rate", 48000, "Analysis sample rate in Hz")
	maxDuration := flag.Float64("max-duration", 30, "Maximum rendered duration in seconds")
	writeCandidate := flag.String("write-candidate", "", "Optional path to write the rendered candidate")
	jsonOut := flag.Bool("json", false, "Print metrics as JSON")
	flag.Parse()

	if *referencePath == "" {
		die("-reference is required")
	}
	ref, err := readMono(*referencePath, *sampleRate)
	if err != nil {
		die("failed to read reference: %v", err)
	}

	var cand []float64
	if *candidatePath != "" {
		cand, err = readMono(*candidatePath, *sampleRate)
		if err != nil {
			die("failed to read candidate: %v", err)
		}
	} else {
		left, right, err := renderCandidate(*configPath, *note, float32(*velocity), *sampleRate, *maxDuration)
		if err != nil {
			die("failed to render candidate: %v", err)
		}
		cand = wavio.MixToMono(left, right)
		if *writeCandidate != "" {
			if err := wavio.WriteStereo(*writeCandidate, left, right, *sampleRate); err != nil {
				die("failed to write candidate wav: %v", err)
			}
		}
	}

	metrics := analysis.Compare(ref, cand, *sampleRate)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(metrics); err != nil {
			die("json encode failed: %v", err)
		}
		return
	}

	fmt.Printf("Reference frames: %d\n", metrics.ReferenceFrames)
	fmt.Printf("Candidate frames: %d\n", metrics.CandidateFrames)
	fmt.Printf("Aligned frames:   %d\n", metrics.AlignedFrames)
	fmt.Printf("Lag:              %d samples (%.3f ms)\n", metrics.LagSamples, 1000.0*float64(metrics.LagSamples)/float64(metrics.SampleRate))
	fmt.Println()
	fmt.Printf("Component        Raw          Norm   Weight  Contribution\n")
	fmt.Printf("─────────────────────────────────────────────────────────\n")
	printComp := func(name string, raw string, norm, weight float64, dominant bool) {
		marker := ""
		if dominant {
			marker = " ◄"
		}
		fmt.Printf("%-16s %-12s %5.1f%%  ×%.2f   → %.4f%s\n", name, raw, norm*100, weight, norm*weight, marker)
	}
	printComp("Time RMSE", fmt.Sprintf("%.6f", metrics.TimeRMSE), metrics.TimeNorm, analysis.WeightTime, metrics.Dominant == "time")
	printComp("Envelope RMSE", fmt.Sprintf("%.1f dB", metrics.EnvelopeRMSEDB), metrics.EnvelopeNorm, analysis.WeightEnvelope, metrics.Dominant == "envelope")
	printComp("Spectral RMSE", fmt.Sprintf("%.1f dB", metrics.SpectralRMSEDB), metrics.SpectralNorm, analysis.WeightSpectral, metrics.Dominant == "spectral")
	printComp("Decay diff", fmt.Sprintf("%.1f dB/s", metrics.DecayDiffDBPerS), metrics.DecayNorm, analysis.WeightDecay, metrics.Dominant == "decay")
	printComp("Pitch diff", fmt.Sprintf("%.1f cents", metrics.PitchDiffCents), metrics.PitchNorm, analysis.WeightPitch, metrics.Dominant == "pitch")
	fmt.Printf("─────────────────────────────────────────────────────────\n")
	fmt.Printf("Score:            %.4f  (0 best, 1 worst)\n", metrics.Score)
	fmt.Printf("Similarity:       %.2f%%\n", metrics.Similarity*100.0)
	fmt.Printf("Dominant factor:  %s\n", metrics.Dominant)
	fmt.Printf("\nDecay slopes: ref=%.1f dB/s  cand=%.1f dB/s\n", metrics.RefDecayDBPerS, metrics.CandDecayDBPerS)
	fmt.Printf("Pitch:        ref=%.2f Hz  cand=%.2f Hz\n", metrics.RefPitchHz, metrics.CandPitchHz)
}

func readMono(path string, sampleRate int) ([]float64, error) {
	x, sr, err := wavio.ReadMono(path)
	if err != nil {
		return nil, err
	}
	return wavio.Resample(x, sr, sampleRate)
}

func renderCandidate(configPath string, note int, velocity float32, sampleRate int, maxDuration float64) ([]float32, []float32, error) {
	cfg := config.Default()
	if configPath != "" {
		c, err := config.LoadJSON(configPath)
		if err != nil {
			return nil, nil, err
		}
		cfg = c
	}
	s, err := pluck.NewSynth(sampleRate, pluck.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, nil))))
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Apply(s); err != nil {
		return nil, nil, err
	}
	opt := render.DefaultOptions()
	opt.MaxDuration = maxDuration
	left, right := render.Render(s, cfg.Params, []render.TimedEvent{{Event: pluck.NoteOnAt(0, note, velocity)}}, opt)
	return left, right, nil
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
