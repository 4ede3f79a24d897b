package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cwbudde/algo-pluck/analysis"
	"github.com/cwbudde/algo-pluck/config"
	"github.com/cwbudde/algo-pluck/internal/wavio"
)

func main() {
	referencePath := flag.String("reference", "", "Reference WAV of a single pluck")
	configPath := flag.String("config", "", "Base JSON config (optional)")
	outputConfig := flag.String("output-config", "fitted.json", "Path to write the best fitted config")
	reportPath := flag.String("report", "", "Report JSON path (default: <output-config>.report.json)")
	note := flag.Int("note", 60, "MIDI note of the reference")
	velocity := flag.Float64("velocity", 0.8, "Starting velocity 0..1")
	sampleRate := flag.Int("sample-rate", 48000, "Render/analysis sample rate")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 60.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 2000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 20, "Print progress every N evaluations")
	maxDuration := flag.Float64("max-duration", 10.0, "Maximum render duration in seconds")
	writeBest := flag.String("write-best-candidate", "", "Optional WAV path for the best candidate")
	resume := flag.Bool("resume", true, "Resume from a previous report when available")

	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per Mayfly round")
	flag.Parse()

	if *referencePath == "" {
		die("-reference is required")
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	*mayflyPop = max(2, *mayflyPop)
	*mayflyRoundEvals = max(*mayflyRoundEvals, *mayflyPop*2)

	base := config.Default()
	if *configPath != "" {
		c, err := config.LoadJSON(*configPath)
		if err != nil {
			die("failed to load config: %v", err)
		}
		base = c
	}

	raw, refSR, err := wavio.ReadMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	ref, err := wavio.Resample(raw, refSR, *sampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}

	defs, init := initCandidate(base, *velocity)
	if *resume {
		path := *reportPath
		if path == "" {
			path = defaultReportPath(*outputConfig)
		}
		if resumed, ok, err := loadCandidateFromReport(path, defs, init); err != nil {
			fmt.Fprintf(os.Stderr, "resume skipped (%s): %v\n", path, err)
		} else if ok {
			init = resumed
			fmt.Printf("Resumed candidate from %s\n", path)
		}
	}

	variant := strings.ToLower(*mayflyVariant)
	report := runReport{
		ReferencePath: *referencePath,
		ConfigPath:    *configPath,
		SampleRate:    *sampleRate,
		Note:          *note,
		MayflyVariant: variant,
	}
	st := &fitSettings{
		reference:   ref,
		base:        base,
		defs:        defs,
		note:        *note,
		sampleRate:  *sampleRate,
		seed:        *seed,
		timeBudget:  *timeBudget,
		maxEvals:    *maxEvals,
		reportEvery: max(1, *reportEvery),
		maxDuration: *maxDuration,
		variant:     variant,
		pop:         *mayflyPop,
		roundEvals:  *mayflyRoundEvals,
	}
	st.onImprove = func(best candidate, m analysis.Metrics, evals int) {
		rep := report
		rep.Evaluations = evals
		rep.BestMetrics = m
		if err := writeOutputs(*outputConfig, *reportPath, rep, base, defs, best); err != nil {
			fmt.Fprintf(os.Stderr, "checkpoint write failed: %v\n", err)
		}
	}

	res, err := runFit(st, init)
	if err != nil {
		die("%v", err)
	}

	report.Evaluations = res.evals
	report.DurationSec = res.elapsed
	report.BestMetrics = res.bestMetrics
	if err := writeOutputs(*outputConfig, *reportPath, report, base, defs, res.best); err != nil {
		die("failed to write outputs: %v", err)
	}
	if *writeBest != "" {
		if err := writeCandidateWAV(*writeBest, st, res.best); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write best candidate wav: %v\n", err)
		}
	}

	fmt.Printf("Done evals=%d elapsed=%.1fs best_score=%.4f best_similarity=%.2f%% variant=%s\n",
		res.evals, res.elapsed, res.bestMetrics.Score, res.bestMetrics.Similarity*100.0, variant)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
