package main

import (
	"strings"

	"github.com/cwbudde/algo-pluck/tuning"
)

type actionKind int

const (
	actNone actionKind = iota
	actNote
	actOctaveDown
	actOctaveUp
	actGate
	actTuning
	actParam
	actPanic
	actQuit
)

type keyAction struct {
	kind   actionKind
	offset int // semitones above the current base note
	tuning tuning.Type
	param  string
	delta  float64
}

// Two rows of a piano layout: the home row holds the white keys, the row
// above the black keys. "a" is the base C.
const noteKeys = "awsedftgyhujkolp;'"

var paramKeys = map[byte]keyAction{
	'z': {kind: actParam, param: "decay", delta: -0.5},
	'x': {kind: actParam, param: "decay", delta: 0.5},
	'c': {kind: actParam, param: "damp", delta: -0.05},
	'v': {kind: actParam, param: "damp", delta: 0.05},
	'b': {kind: actParam, param: "color", delta: -0.1},
	'n': {kind: actParam, param: "color", delta: 0.1},
	'm': {kind: actParam, param: "body_coupling", delta: 0.1},
	',': {kind: actParam, param: "body_coupling", delta: -0.1},
}

func mapKey(b byte) keyAction {
	if i := strings.IndexByte(noteKeys, b); i >= 0 {
		return keyAction{kind: actNote, offset: i}
	}
	if a, ok := paramKeys[b]; ok {
		return a
	}
	switch b {
	case '-':
		return keyAction{kind: actOctaveDown}
	case '=':
		return keyAction{kind: actOctaveUp}
	case '[':
		return keyAction{kind: actGate}
	case '1', '2', '3', '4', '5':
		return keyAction{kind: actTuning, tuning: tuning.Type(b - '1')}
	case ' ':
		return keyAction{kind: actPanic}
	case 'q', 0x03, 0x1b:
		return keyAction{kind: actQuit}
	}
	return keyAction{}
}

// shiftOctave moves base by dir octaves while keeping every note key inside
// the playable range.
func shiftOctave(base, dir, lo, hi int) int {
	next := base + 12*dir
	if next < lo || next+len(noteKeys)-1 > hi {
		return base
	}
	return next
}
