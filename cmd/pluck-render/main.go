package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cwbudde/algo-pluck/config"
	"github.com/cwbudde/algo-pluck/internal/render"
	"github.com/cwbudde/algo-pluck/internal/wavio"
	"github.com/cwbudde/algo-pluck/pluck"
	"github.com/cwbudde/algo-pluck/tuning"
)

func main() {
	configPath := flag.String("config", "", "JSON config file (optional)")
	notes := flag.String("notes", "69:0.8:0", "Notes as note:velocity:start[:length], comma separated")
	midiPath := flag.String("midi", "", "Standard MIDI file to render instead of -notes")
	duration := flag.Float64("duration", 0, "Duration in seconds; 0 renders until the output decays")
	decayDBFS := flag.Float64("decay-dbfs", -90, "Auto-stop threshold in dBFS when -duration is 0")
	maxDuration := flag.Float64("max-duration", 30, "Upper bound in seconds for auto-stop renders")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	blockSize := flag.Int("block", 128, "Processing block size")
	tuningName := flag.String("tuning", "", "Tuning preset (equal, well, just, pythagorean, meantone)")
	tuningFile := flag.String("tuning-file", "", "Custom .tun file; selects the custom tuning")
	irPath := flag.String("ir", "", "Impulse response WAV for the convolution stage")
	output := flag.String("output", "output.wav", "Output WAV file path")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	logger := newLogger(*verbose)

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.LoadJSON(*configPath)
		if err != nil {
			die("loading config %q: %v", *configPath, err)
		}
		cfg = c
	}
	if *tuningName != "" {
		t, err := tuning.ParseType(*tuningName)
		if err != nil {
			die("%v", err)
		}
		cfg.Params.Tuning = t
	}
	if *tuningFile != "" {
		cfg.TuningFile = *tuningFile
		cfg.Params.Tuning = tuning.Custom
	}
	if *irPath != "" {
		cfg.IRWavPath = *irPath
		if cfg.Params.IRWetMix == 0 {
			cfg.Params.IRWetMix = 1
		}
	}

	var events []render.TimedEvent
	var err error
	if *midiPath != "" {
		events, err = render.ReadMIDI(*midiPath)
	} else {
		events, err = render.ParseNotes(*notes)
	}
	if err != nil {
		die("%v", err)
	}

	synth, err := pluck.NewSynth(*sampleRate, pluck.WithLogger(logger))
	if err != nil {
		die("%v", err)
	}
	if err := cfg.Apply(synth); err != nil {
		die("%v", err)
	}

	opt := render.DefaultOptions()
	opt.BlockSize = *blockSize
	opt.Duration = *duration
	opt.DecayDBFS = *decayDBFS
	opt.MaxDuration = *maxDuration

	logger.Debug("render settings",
		"events", len(events),
		"sample_rate", *sampleRate,
		"block", *blockSize,
		"tuning", cfg.Params.Tuning.String(),
		"decay", cfg.Params.Decay,
		"damp", cfg.Params.Damp,
		"color", cfg.Params.Color,
	)
	fmt.Printf("Rendering %d events at %d Hz (tuning: %s)...\n", len(events), *sampleRate, synth.Tuning().Name)

	left, right := render.Render(synth, cfg.Params, events, opt)
	if err := wavio.WriteStereo(*output, left, right, *sampleRate); err != nil {
		die("writing %s: %v", *output, err)
	}

	st := synth.Stats()
	logger.Debug("voice stats",
		"started", st.Started,
		"re_excited", st.ReExcited,
		"retriggered", st.Retriggered,
		"stolen", st.Stolen,
		"dropped", st.Dropped,
		"rejected", st.Rejected,
	)
	fmt.Printf("Successfully wrote %s (%d frames, %.3fs)\n", *output, len(left), float64(len(left))/float64(*sampleRate))
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
