package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-pluck/internal/wavio"
	"github.com/cwbudde/algo-pluck/irsynth"
)

func main() {
	preset := flag.String("preset", "guitar", "Body preset: guitar|harp|banjo")
	output := flag.String("output", "body.wav", "Output WAV path")
	sampleRate := flag.Int("sample-rate", 48000, "Output sample rate")
	seed := flag.Int64("seed", 1, "Random seed")
	duration := flag.Float64("duration", 0, "Body length in seconds (0 keeps the preset)")
	roomMix := flag.Float64("room", 0, "Room send level; 0 writes the dry body")
	roomScale := flag.Float64("room-scale", 1, "Room size relative to a 4.2 x 3.6 x 2.6 m practice room")
	roomAbsorption := flag.Float64("room-absorption", 0.3, "Mean wall absorption, 0..1")
	roomDuration := flag.Float64("room-duration", 0, "Room length in seconds (0 derives it from RT60)")
	flag.Parse()

	body, err := irsynth.BodyPreset(*preset)
	if err != nil {
		die("%v", err)
	}
	body.SampleRate = *sampleRate
	body.Seed = *seed
	if *duration > 0 {
		body.DurationS = *duration
	}

	left, right, err := irsynth.GenerateBody(body)
	if err != nil {
		die("body: %v", err)
	}
	if *roomMix > 0 {
		room := irsynth.DefaultRoomConfig().Scaled(*roomScale)
		room.SampleRate = *sampleRate
		room.Seed = *seed
		room.Absorption = *roomAbsorption
		room.DurationS = *roomDuration
		fmt.Printf("Room RT60: %.3f s\n", room.ReverbTime())
		rl, rr, err := irsynth.GenerateRoom(room)
		if err != nil {
			die("room: %v", err)
		}
		left, right, err = irsynth.PlaceInRoom(left, right, rl, rr, *roomMix, body.NormalizePeak)
		if err != nil {
			die("room: %v", err)
		}
	}

	if err := wavio.WriteStereo(*output, left, right, *sampleRate); err != nil {
		die("wav write error: %v", err)
	}
	peak, rms := stats(left, right)
	fmt.Printf("Wrote %s\n", *output)
	fmt.Printf("Preset: %s, SampleRate: %d Hz, Duration: %.3f s, Samples: %d\n", *preset, *sampleRate, float64(len(left))/float64(*sampleRate), len(left))
	fmt.Printf("Peak: %.6f, RMS: %.6f\n", peak, rms)
}

func stats(left, right []float32) (peak, rms float64) {
	if len(left) == 0 {
		return 0, 0
	}
	var sum float64
	for i := range left {
		l, r := float64(left[i]), float64(right[i])
		peak = math.Max(peak, math.Max(math.Abs(l), math.Abs(r)))
		sum += l*l + r*r
	}
	return peak, math.Sqrt(sum / float64(2*len(left)))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
