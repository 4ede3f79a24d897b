package tuning

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestEqualTemperamentIsZero(t *testing.T) {
	tb := EqualTemperament()
	for note := 0; note < 128; note++ {
		if got := tb.CentDeviation(note); got != 0 {
			t.Fatalf("note %d: expected 0 cents, got %f", note, got)
		}
	}
}

func TestPresetsLookupByPitchClass(t *testing.T) {
	tb := Preset(Just)
	if got := tb.CentDeviation(61); got != 70.7 {
		t.Fatalf("C#4 in just intonation: expected 70.7, got %f", got)
	}
	if got := tb.CentDeviation(71); got != -31.2 {
		t.Fatalf("B4 in just intonation: expected -31.2, got %f", got)
	}
	if got := tb.CentDeviation(-1); got != 0 {
		t.Fatalf("negative note should have no deviation, got %f", got)
	}
	if got := tb.CentDeviation(128); got != 0 {
		t.Fatalf("note 128 should have no deviation, got %f", got)
	}
}

func TestPresetNamesAndUnknownFallback(t *testing.T) {
	cases := []struct {
		typ  Type
		name string
	}{
		{Equal, "Equal Temperament"},
		{Well, "Well Temperament"},
		{Just, "Just Intonation"},
		{Pythagorean, "Pythagorean"},
		{Meantone, "Meantone"},
	}
	for _, tc := range cases {
		tb := Preset(tc.typ)
		if tb.Name != tc.name || tb.Type != tc.typ {
			t.Fatalf("preset %d: got %q/%v", tc.typ, tb.Name, tb.Type)
		}
	}
	if tb := Preset(Custom); tb.Type != Equal {
		t.Fatalf("custom preset should fall back to equal, got %v", tb.Type)
	}
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]Type{
		"Just Intonation": Just,
		"meantone":        Meantone,
		" well ":          Well,
		"pyth":            Pythagorean,
		"custom":          Custom,
	} {
		got, err := ParseType(in)
		if err != nil {
			t.Fatalf("ParseType(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseType(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseType("bohlen-pierce"); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestParseSkipsCommentsAndTakesFirstTwelve(t *testing.T) {
	src := `! kirnberger-ish
# another comment

0
-5.9
-7.8
-3.9
junk line
-9.8
-2.0
-7.8 ; F#
-5.9
-11.7
-3.9
-7.8
-5.9
99
`
	got, err := Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Preset(Well).Cents
	if got != want {
		t.Fatalf("parsed cents mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestParseTooFewValues(t *testing.T) {
	_, err := Parse(strings.NewReader("0\n1\n2\n"))
	if !errors.Is(err, ErrTooFewValues) {
		t.Fatalf("expected ErrTooFewValues, got %v", err)
	}
}

func TestLoadFileRoundTrip(t *testing.T) {
	want := [12]float32{0, 1.5, -2.25, 3, 4, -5, 6.5, 7, -8, 9, 10.75, -11}
	var b strings.Builder
	b.WriteString("! custom.tun\n")
	for _, v := range want {
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
		b.WriteString("\n")
	}
	path := filepath.Join(t.TempDir(), "custom.tun")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write tuning file: %v", err)
	}

	tb, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if tb.Type != Custom || tb.Name != "custom" {
		t.Fatalf("unexpected table identity: %v %q", tb.Type, tb.Name)
	}
	if tb.Cents != want {
		t.Fatalf("cents mismatch:\n got %v\nwant %v", tb.Cents, want)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.tun")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
