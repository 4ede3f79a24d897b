// Package render drives a pluck.Synth offline from a list of timed events,
// for the command-line tools.
package render

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-pluck/pluck"
)

// TimedEvent is an engine event placed in seconds; the renderer converts
// the time into a block offset.
type TimedEvent struct {
	Time  float64
	Event pluck.Event
}

// Options control an offline render.
type Options struct {
	BlockSize int

	// Duration renders a fixed length in seconds. When zero the render runs
	// until the output stays below DecayDBFS for HoldBlocks blocks, bounded
	// by MinDuration and MaxDuration.
	Duration    float64
	DecayDBFS   float64
	HoldBlocks  int
	MinDuration float64
	MaxDuration float64
}

// DefaultOptions renders until the output falls below -90 dBFS.
func DefaultOptions() Options {
	return Options{
		BlockSize:   128,
		DecayDBFS:   -90,
		HoldBlocks:  6,
		MinDuration: 0.5,
		MaxDuration: 30,
	}
}

// Render plays events through s and returns the stereo output.
func Render(s *pluck.Synth, p pluck.Params, events []TimedEvent, opt Options) ([]float32, []float32) {
	sr := s.SampleRate()
	block := max(1, opt.BlockSize)

	evs := append([]TimedEvent(nil), events...)
	sort.SliceStable(evs, func(i, j int) bool { return evs[i].Time < evs[j].Time })
	lastEvent := 0
	if len(evs) > 0 {
		lastEvent = frameOf(evs[len(evs)-1].Time, sr)
	}

	autoStop := opt.Duration <= 0
	maxFrames := max(1, int(float64(sr)*opt.Duration))
	minFrames := 0
	if autoStop {
		minFrames = max(int(float64(sr)*opt.MinDuration), lastEvent)
		maxFrames = max(minFrames, int(float64(sr)*opt.MaxDuration), 1)
	}
	threshold := math.Pow(10, opt.DecayDBFS/20)
	hold := max(1, opt.HoldBlocks)

	left := make([]float32, 0, maxFrames)
	right := make([]float32, 0, maxFrames)
	bufL := make([]float32, block)
	bufR := make([]float32, block)
	scratch := make([]pluck.Event, 0, 64)

	next := 0
	below := 0
	for frame := 0; frame < maxFrames; frame += block {
		n := min(block, maxFrames-frame)
		scratch = scratch[:0]
		for next < len(evs) && frameOf(evs[next].Time, sr) < frame+n {
			ev := evs[next].Event
			ev.Offset = max(0, frameOf(evs[next].Time, sr)-frame)
			scratch = append(scratch, ev)
			next++
		}

		outL, outR := bufL[:n], bufR[:n]
		clear(outL)
		clear(outR)
		s.Process(outL, outR, scratch, p)
		left = append(left, outL...)
		right = append(right, outR...)

		if autoStop && frame+n >= minFrames && next == len(evs) {
			if stereoRMS(outL, outR) < threshold {
				below++
				if below >= hold {
					break
				}
			} else {
				below = 0
			}
		}
	}
	return left, right
}

func frameOf(sec float64, sampleRate int) int {
	return max(0, int(math.Round(sec*float64(sampleRate))))
}

func stereoRMS(l, r []float32) float64 {
	if len(l) == 0 {
		return 0
	}
	var sum float64
	for i := range l {
		sum += float64(l[i])*float64(l[i]) + float64(r[i])*float64(r[i])
	}
	return math.Sqrt(sum / float64(2*len(l)))
}

// ParseNotes reads a comma separated list of note:velocity:start[:length]
// entries, with velocity in 0..1 and times in seconds. Without a length the
// note is never released.
func ParseNotes(list string) ([]TimedEvent, error) {
	var out []TimedEvent
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		parts := strings.Split(item, ":")
		if len(parts) < 2 || len(parts) > 4 {
			return nil, fmt.Errorf("note %q: want note:velocity[:start[:length]]", item)
		}
		note, err := strconv.Atoi(parts[0])
		if err != nil {
			return nil, fmt.Errorf("note %q: %w", item, err)
		}
		vel, err := strconv.ParseFloat(parts[1], 32)
		if err != nil || vel < 0 || vel > 1 {
			return nil, fmt.Errorf("note %q: velocity must be in [0,1]", item)
		}
		var start, length float64
		if len(parts) > 2 {
			if start, err = strconv.ParseFloat(parts[2], 64); err != nil || start < 0 {
				return nil, fmt.Errorf("note %q: bad start time", item)
			}
		}
		if len(parts) > 3 {
			if length, err = strconv.ParseFloat(parts[3], 64); err != nil || length <= 0 {
				return nil, fmt.Errorf("note %q: bad length", item)
			}
		}
		out = append(out, TimedEvent{Time: start, Event: pluck.NoteOnAt(0, note, float32(vel))})
		if length > 0 {
			out = append(out, TimedEvent{Time: start + length, Event: pluck.NoteOffAt(0, note)})
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no notes in %q", list)
	}
	return out, nil
}
