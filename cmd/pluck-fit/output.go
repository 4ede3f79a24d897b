package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-pluck/analysis"
	"github.com/cwbudde/algo-pluck/config"
)

type runReport struct {
	ReferencePath  string             `json:"reference_path"`
	ConfigPath     string             `json:"config_path"`
	OutputConfig   string             `json:"output_config"`
	SampleRate     int                `json:"sample_rate"`
	Note           int                `json:"note"`
	DurationSec    float64            `json:"elapsed_seconds"`
	Evaluations    int                `json:"evaluations"`
	MayflyVariant  string             `json:"mayfly_variant"`
	BestScore      float64            `json:"best_score"`
	BestSimilarity float64            `json:"best_similarity"`
	BestMetrics    analysis.Metrics   `json:"best_metrics"`
	BestKnobs      map[string]float64 `json:"best_knobs"`
	BestVelocity   float64            `json:"best_velocity"`
}

func defaultReportPath(outputConfig string) string {
	return outputConfig + ".report.json"
}

// writeOutputs stores the fitted config and a report next to it. File paths
// inside the config are made relative to the output location.
func writeOutputs(outputConfig, reportPath string, rep runReport, base *config.Config, defs []knobDef, best candidate) error {
	cfg, velocity := applyCandidate(base, defs, best)
	out := *cfg
	out.TuningFile = relativeTo(outputConfig, out.TuningFile)
	out.IRWavPath = relativeTo(outputConfig, out.IRWavPath)
	if err := config.SaveJSON(outputConfig, &out); err != nil {
		return err
	}

	rep.OutputConfig = outputConfig
	rep.BestScore = rep.BestMetrics.Score
	rep.BestSimilarity = rep.BestMetrics.Similarity
	rep.BestVelocity = float64(velocity)
	rep.BestKnobs = make(map[string]float64, len(defs))
	for i, d := range defs {
		rep.BestKnobs[d.Name] = best.Vals[i]
	}
	if reportPath == "" {
		reportPath = defaultReportPath(outputConfig)
	}
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(reportPath, append(b, '\n'), 0o644)
}

func relativeTo(configPath, target string) string {
	if target == "" {
		return ""
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return target
	}
	absDir, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return target
	}
	rel, err := filepath.Rel(absDir, absTarget)
	if err != nil {
		return target
	}
	return filepath.ToSlash(rel)
}

// loadCandidateFromReport resumes from the best knobs of an earlier run.
// A missing report is not an error.
func loadCandidateFromReport(path string, defs []knobDef, fallback candidate) (candidate, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fallback, false, nil
		}
		return fallback, false, err
	}
	var rep runReport
	if err := json.Unmarshal(b, &rep); err != nil {
		return fallback, false, err
	}
	if len(rep.BestKnobs) == 0 {
		return fallback, false, nil
	}

	vals := append([]float64(nil), fallback.Vals...)
	updated := false
	for i, d := range defs {
		if v, ok := rep.BestKnobs[d.Name]; ok {
			vals[i] = clamp(v, d.Min, d.Max)
			updated = true
		}
	}
	if !updated {
		return fallback, false, nil
	}
	return candidate{Vals: vals}, true, nil
}
