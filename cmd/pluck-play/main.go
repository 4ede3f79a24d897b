//go:build !headless

package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/cwbudde/algo-pluck/config"
	"github.com/cwbudde/algo-pluck/internal/live"
	"github.com/cwbudde/algo-pluck/pluck"
)

func main() {
	configPath := flag.String("config", "", "JSON config file (optional)")
	sampleRate := flag.Int("sample-rate", 48000, "Output sample rate in Hz")
	bufferFrames := flag.Int("buffer", 512, "Audio buffer size in frames")
	velocity := flag.Float64("velocity", 0.8, "Note velocity 0..1")
	hold := flag.Duration("hold", 400*time.Millisecond, "Key hold time before note-off in gate mode")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()
	*bufferFrames = max(64, *bufferFrames)

	logger := newLogger(*verbose)

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		die("stdin is not a terminal")
	}

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.LoadJSON(*configPath)
		if err != nil {
			die("loading config %q: %v", *configPath, err)
		}
		cfg = c
	}

	synth, err := pluck.NewSynth(*sampleRate, pluck.WithLogger(logger))
	if err != nil {
		die("%v", err)
	}
	if err := cfg.Apply(synth); err != nil {
		die("%v", err)
	}
	engine := live.New(synth, cfg.Params)

	out, err := newPlayer(*sampleRate, *bufferFrames, engine)
	if err != nil {
		die("audio init failed: %v", err)
	}
	defer out.Close()
	out.Start()

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		out.Close()
		die("failed to set raw mode: %v", err)
	}
	defer term.Restore(fd, oldState)

	printHelp()
	base := 48
	gate := cfg.Params.Gate
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			return
		}
		a := mapKey(buf[0])
		switch a.kind {
		case actNote:
			note := base + a.offset
			engine.NoteOn(note, float32(*velocity))
			if gate {
				time.AfterFunc(*hold, func() { engine.NoteOff(note) })
			}
		case actOctaveDown:
			base = shiftOctave(base, -1, pluck.MinNote, pluck.MaxNote)
			status("octave base %d", base)
		case actOctaveUp:
			base = shiftOctave(base, 1, pluck.MinNote, pluck.MaxNote)
			status("octave base %d", base)
		case actGate:
			gate = !gate
			engine.Params().Set(pluck.ParamGate, boolToFloat(gate))
			status("gate %v", gate)
		case actTuning:
			engine.Params().Set(pluck.ParamTuning, float64(a.tuning))
			status("tuning %s", a.tuning)
		case actParam:
			info, err := pluck.LookupParam(a.param)
			if err != nil {
				continue
			}
			engine.Params().Set(info.ID, engine.Params().Get(info.ID)+a.delta)
			status("%s %.2f", info.Name, engine.Params().Get(info.ID))
		case actPanic:
			engine.Control(pluck.CCAllSoundOff, 0)
			status("all sound off")
		case actQuit:
			engine.Control(pluck.CCAllSoundOff, 0)
			time.Sleep(50 * time.Millisecond)
			fmt.Print("\r\n")
			return
		}
	}
}

func printHelp() {
	fmt.Print("pluck-play\r\n")
	fmt.Print("  a w s e d f t g y h u j k o l p ; '  play notes\r\n")
	fmt.Print("  - =  octave down/up    [  toggle gate\r\n")
	fmt.Print("  1-5  tuning (equal, well, just, pythagorean, meantone)\r\n")
	fmt.Print("  z/x decay  c/v damp  b/n color  ,/m body\r\n")
	fmt.Print("  space  all sound off    q/esc  quit\r\n")
}

// status prints a line in raw mode, where "\n" does not return the carriage.
func status(format string, args ...any) {
	fmt.Printf("\r"+format+"\r\n", args...)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
