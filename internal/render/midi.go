package render

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cwbudde/algo-pluck/pluck"
)

// ReadMIDI converts the note and all-notes/all-sound-off messages of every
// track in a standard MIDI file into timed events. Channels are merged.
func ReadMIDI(path string) ([]TimedEvent, error) {
	var out []TimedEvent
	err := smf.ReadTracks(path).Do(func(te smf.TrackEvent) {
		if ev, ok := convert(midi.Message(te.Message)); ok {
			out = append(out, TimedEvent{
				Time:  float64(te.AbsMicroSeconds) / 1e6,
				Event: ev,
			})
		}
	}).Error()
	if err != nil {
		return nil, fmt.Errorf("read midi %s: %w", path, err)
	}
	return out, nil
}

func convert(msg midi.Message) (pluck.Event, bool) {
	var ch, key, vel, ctl, val uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return pluck.NoteOnAt(0, int(key), float32(vel)/127), true
	case msg.GetNoteEnd(&ch, &key):
		return pluck.NoteOffAt(0, int(key)), true
	case msg.GetControlChange(&ch, &ctl, &val):
		if ctl == pluck.CCAllSoundOff || ctl == pluck.CCAllNotesOff {
			return pluck.ControlAt(0, int(ctl), int(val)), true
		}
	}
	return pluck.Event{}, false
}
