package render

import (
	"math"
	"path/filepath"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cwbudde/algo-pluck/pluck"
)

func newSynth(t *testing.T, sr int) *pluck.Synth {
	t.Helper()
	s, err := pluck.NewSynth(sr)
	if err != nil {
		t.Fatalf("NewSynth: %v", err)
	}
	return s
}

func TestParseNotes(t *testing.T) {
	evs, err := ParseNotes("60:0.8:0, 64:0.7:0.25:0.5")
	if err != nil {
		t.Fatalf("ParseNotes: %v", err)
	}
	if len(evs) != 3 {
		t.Fatalf("expected 3 events, got %d", len(evs))
	}
	if evs[0].Event.Kind != pluck.NoteOn || evs[0].Event.Note != 60 || evs[0].Event.Velocity != 0.8 {
		t.Fatalf("first note mismatch: %+v", evs[0])
	}
	if evs[2].Event.Kind != pluck.NoteOff || evs[2].Time != 0.75 {
		t.Fatalf("length should add a note-off at 0.75 s: %+v", evs[2])
	}

	for _, empty := range []string{"", " , "} {
		if _, err := ParseNotes(empty); err == nil {
			t.Fatalf("expected error for empty list %q", empty)
		}
	}

	for _, bad := range []string{"60", "x:0.5", "60:2", "60:0.5:-1", "60:0.5:0:0", "1:2:3:4:5"} {
		if _, err := ParseNotes(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestRenderPlacesEventsOnTheirSample(t *testing.T) {
	const sr = 44100
	s := newSynth(t, sr)
	p := pluck.NewDefaultParams()
	p.Color = 0
	opt := DefaultOptions()
	opt.Duration = 0.05

	left, right := Render(s, p, []TimedEvent{{Time: 0.01, Event: pluck.NoteOnAt(0, 60, 1)}}, opt)
	if len(left) != int(sr*0.05) || len(right) != len(left) {
		t.Fatalf("fixed duration should give %d frames, got %d", int(sr*0.05), len(left))
	}
	for i := 0; i < 441; i++ {
		if left[i] != 0 {
			t.Fatalf("sample %d should be silent before the note", i)
		}
	}
	if left[441] == 0 {
		t.Fatalf("note should start at sample 441")
	}
}

func TestRenderAutoStopsAfterDecay(t *testing.T) {
	const sr = 44100
	s := newSynth(t, sr)
	p := pluck.NewDefaultParams()
	p.Decay = 0.25
	p.Damp = 0.5
	opt := DefaultOptions()
	opt.MaxDuration = 20

	left, _ := Render(s, p, []TimedEvent{{Time: 0, Event: pluck.NoteOnAt(0, 69, 1)}}, opt)
	if len(left) >= 20*sr {
		t.Fatalf("render should stop once the note has faded")
	}
	if len(left) < int(0.5*sr) {
		t.Fatalf("render should honour the minimum duration, got %d frames", len(left))
	}
	tail := left[len(left)-opt.BlockSize:]
	for _, v := range tail {
		if math.Abs(float64(v)) > 1e-4 {
			t.Fatalf("tail should be near silent, got %g", v)
		}
	}
}

func TestReadMIDI(t *testing.T) {
	clock := smf.MetricTicks(960)
	var tr smf.Track
	tr.Add(0, smf.MetaTempo(120))
	tr.Add(0, midi.NoteOn(0, 60, 127))
	tr.Add(clock.Ticks4th(), midi.NoteOff(0, 60))
	tr.Add(0, midi.ControlChange(0, 123, 0))
	tr.Add(0, midi.ControlChange(0, 7, 100))
	tr.Close(0)

	f := smf.New()
	f.TimeFormat = clock
	if err := f.Add(tr); err != nil {
		t.Fatalf("add track: %v", err)
	}
	path := filepath.Join(t.TempDir(), "pluck.mid")
	if err := f.WriteFile(path); err != nil {
		t.Fatalf("write midi: %v", err)
	}

	evs, err := ReadMIDI(path)
	if err != nil {
		t.Fatalf("ReadMIDI: %v", err)
	}
	if len(evs) != 3 {
		t.Fatalf("expected note on, note off and all-notes-off, got %+v", evs)
	}
	if evs[0].Event.Kind != pluck.NoteOn || evs[0].Event.Velocity != 1 || evs[0].Time != 0 {
		t.Fatalf("note on mismatch: %+v", evs[0])
	}
	if evs[1].Event.Kind != pluck.NoteOff || math.Abs(evs[1].Time-0.5) > 1e-6 {
		t.Fatalf("note off should land at 0.5 s: %+v", evs[1])
	}
	if evs[2].Event.Kind != pluck.Control || evs[2].Event.Controller != pluck.CCAllNotesOff {
		t.Fatalf("all-notes-off mismatch: %+v", evs[2])
	}

	if _, err := ReadMIDI(filepath.Join(t.TempDir(), "missing.mid")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}
