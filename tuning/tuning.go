// Package tuning holds 12-tone cent deviation tables used to detune notes
// away from 12-TET, plus the built-in historical temperaments.
package tuning

import (
	"fmt"
	"strings"
)

// Type identifies a built-in temperament or a loaded custom table.
type Type int

const (
	Equal Type = iota
	Well
	Just
	Pythagorean
	Meantone
	Custom
)

var typeNames = [...]string{
	Equal:       "Equal Temperament",
	Well:        "Well Temperament",
	Just:        "Just Intonation",
	Pythagorean: "Pythagorean",
	Meantone:    "Meantone",
	Custom:      "Custom",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType accepts a display name ("Just Intonation") or a short name
// ("just"), case-insensitive.
func ParseType(name string) (Type, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range typeNames {
		if key == strings.ToLower(n) {
			return Type(i), nil
		}
	}
	switch key {
	case "equal", "12tet", "et":
		return Equal, nil
	case "well", "kirnberger":
		return Well, nil
	case "just", "ji":
		return Just, nil
	case "pyth":
		return Pythagorean, nil
	case "quarter-comma":
		return Meantone, nil
	}
	return Equal, fmt.Errorf("unknown tuning type %q", name)
}

// Table maps pitch class (C=0 .. B=11) to a cent deviation from 12-TET.
// It is a plain value; copying it gives a voice its own snapshot.
type Table struct {
	Type  Type
	Name  string
	Cents [12]float32
}

// Presets in C, C#, D, ... B order. Well is a Kirnberger III approximation,
// Meantone is quarter-comma.
var presetCents = map[Type][12]float32{
	Equal:       {},
	Well:        {0, -5.9, -7.8, -3.9, -9.8, -2.0, -7.8, -5.9, -11.7, -3.9, -7.8, -5.9},
	Just:        {0, 70.7, 3.9, 15.6, -13.7, -2.0, 68.8, 2.0, 82.4, -15.6, 17.6, -31.2},
	Pythagorean: {0, 13.7, 3.9, 17.6, 7.8, -2.0, 11.7, 2.0, 15.6, 5.9, 19.6, 9.8},
	Meantone:    {0, -24.3, -6.8, -31.2, -13.7, 3.4, -20.9, -3.4, -27.7, -10.3, -34.5, -17.1},
}

// Preset returns the built-in table for t. Custom and unknown types yield
// equal temperament.
func Preset(t Type) Table {
	cents, ok := presetCents[t]
	if !ok {
		t = Equal
	}
	return Table{Type: t, Name: t.String(), Cents: cents}
}

// EqualTemperament is the zero table.
func EqualTemperament() Table {
	return Preset(Equal)
}

// NewCustom wraps loaded cent values as a Custom table.
func NewCustom(name string, cents [12]float32) Table {
	if name == "" {
		name = Custom.String()
	}
	return Table{Type: Custom, Name: name, Cents: cents}
}

// CentDeviation returns the deviation for a MIDI note (0..127). Notes
// outside the MIDI range have no deviation.
func (t Table) CentDeviation(note int) float32 {
	if note < 0 || note > 127 {
		return 0
	}
	return t.Cents[note%12]
}
