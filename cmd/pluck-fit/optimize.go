package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/cwbudde/mayfly"

	"github.com/cwbudde/algo-pluck/analysis"
	"github.com/cwbudde/algo-pluck/config"
	"github.com/cwbudde/algo-pluck/internal/render"
	"github.com/cwbudde/algo-pluck/internal/wavio"
	"github.com/cwbudde/algo-pluck/pluck"
)

type fitSettings struct {
	reference   []float64
	base        *config.Config
	defs        []knobDef
	note        int
	sampleRate  int
	seed        int64
	timeBudget  float64
	maxEvals    int
	reportEvery int
	maxDuration float64

	variant    string
	pop        int
	roundEvals int

	// onImprove is called with every new best candidate.
	onImprove func(best candidate, m analysis.Metrics, evals int)
}

type fitResult struct {
	best        candidate
	bestMetrics analysis.Metrics
	evals       int
	elapsed     float64
}

func renderCandidate(base *config.Config, note int, defs []knobDef, c candidate, sampleRate int, maxDuration float64) ([]float32, []float32, error) {
	cfg, velocity := applyCandidate(base, defs, c)
	s, err := pluck.NewSynth(sampleRate)
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

func writeCandidateWAV(path string, st *fitSettings, c candidate) error {
	left, right, err := renderCandidate(st.base, st.note, st.defs, c, st.sampleRate, st.maxDuration)
	if err != nil {
		return err
	}
	return wavio.WriteStereo(path, left, right, st.sampleRate)
}

func runFit(st *fitSettings, init candidate) (*fitResult, error) {
	evaluate := func(c candidate) (analysis.Metrics, error) {
		left, right, err := renderCandidate(st.base, st.note, st.defs, c, st.sampleRate, st.maxDuration)
		if err != nil {
			return analysis.Metrics{}, err
		}
		return analysis.Compare(st.reference, wavio.MixToMono(left, right), st.sampleRate), nil
	}

	start := time.Now()
	deadline := start.Add(time.Duration(st.timeBudget * float64(time.Second)))

	best := cloneCandidate(init)
	bestM, err := evaluate(best)
	if err != nil {
		return nil, fmt.Errorf("initial evaluation failed: %w", err)
	}
	evals := 1
	improves := 0
	fmt.Printf("Start score=%.4f similarity=%.2f%%\n", bestM.Score, bestM.Similarity*100.0)

	for round := 1; evals < st.maxEvals && time.Now().Before(deadline); round++ {
		budget := min(st.roundEvals, st.maxEvals-evals)
		iters := max(1, budget/(2*st.pop))

		cfg, err := newMayflyConfig(st.variant, st.pop, len(st.defs), iters)
		if err != nil {
			return nil, err
		}
		cfg.Rand = rand.New(rand.NewSource(st.seed + int64(round)*7919))
		cfg.ObjectiveFunc = func(pos []float64) float64 {
			if evals >= st.maxEvals || time.Now().After(deadline) {
				return bestM.Score + 1.0
			}
			cand := fromNormalized(pos, st.defs)
			m, err := evaluate(cand)
			evals++
			if err != nil {
				return bestM.Score + 0.8
			}
			if m.Score < bestM.Score {
				best = cand
				bestM = m
				improves++
				fmt.Printf("Improved #%d eval=%d score=%.4f sim=%.2f%% dominant=%s\n", improves, evals, bestM.Score, bestM.Similarity*100.0, bestM.Dominant)
				if st.onImprove != nil {
					st.onImprove(best, bestM, evals)
				}
			}
			if st.reportEvery > 0 && evals%st.reportEvery == 0 {
				fmt.Printf("Progress round=%d eval=%d elapsed=%.1fs best=%.4f\n", round, evals, time.Since(start).Seconds(), bestM.Score)
			}
			return m.Score
		}

		if _, err := runMayfly(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "mayfly round %d failed: %v\n", round, err)
		}
	}

	return &fitResult{
		best:        best,
		bestMetrics: bestM,
		evals:       evals,
		elapsed:     time.Since(start).Seconds(),
	}, nil
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	// Crossover draws NC/2 pairs from both populations.
	cfg.NC = 2 * pop
	cfg.NM = max(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}
