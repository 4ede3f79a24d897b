package pluck

// EventKind tags an Event.
type EventKind uint8

const (
	NoteOn EventKind = iota
	NoteOff
	Control
)

// MIDI channel-mode controllers handled by the synth.
const (
	CCAllSoundOff = 120
	CCAllNotesOff = 123
)

// Event is a note or controller message positioned inside the current block.
type Event struct {
	Kind       EventKind
	Note       int     // 0..127
	Velocity   float32 // 0..1; a NoteOn with zero velocity is a NoteOff
	Offset     int     // sample position within the block
	Controller int
	Value      int
}

// NoteOnAt builds a NoteOn event.
func NoteOnAt(offset, note int, velocity float32) Event {
	return Event{Kind: NoteOn, Note: note, Velocity: velocity, Offset: offset}
}

// NoteOffAt builds a NoteOff event.
func NoteOffAt(offset, note int) Event {
	return Event{Kind: NoteOff, Note: note, Offset: offset}
}

// ControlAt builds a controller event.
func ControlAt(offset, controller, value int) Event {
	return Event{Kind: Control, Controller: controller, Value: value, Offset: offset}
}
