package pluck

import "github.com/cwbudde/algo-pluck/tuning"

// Stats counts allocation outcomes since the pool was created.
type Stats struct {
	Started     uint64
	ReExcited   uint64
	Retriggered uint64
	Stolen      uint64
	Dropped     uint64
	Rejected    uint64
}

// Pool owns a fixed set of voices and assigns notes to them. Every
// allocation and re-excitation stamps the voice with a strictly increasing
// age so stealing can find the oldest sounding voice.
type Pool struct {
	voices  []*Voice
	ages    []uint64
	counter uint64
	stats   Stats
}

// NewPool allocates size voices with the given capabilities.
func NewPool(sampleRate int, size int, caps Capabilities) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		voices: make([]*Voice, size),
		ages:   make([]uint64, size),
	}
	for i := range p.voices {
		p.voices[i] = NewVoice(sampleRate, caps, int64(i+1))
	}
	return p
}

// Len returns the pool size.
func (p *Pool) Len() int { return len(p.voices) }

// Voice returns voice i.
func (p *Pool) Voice(i int) *Voice { return p.voices[i] }

// Age returns the allocation stamp of voice i.
func (p *Pool) Age(i int) uint64 { return p.ages[i] }

// Stats returns a copy of the allocation counters.
func (p *Pool) Stats() Stats { return p.stats }

// ActiveVoices counts sounding voices, fading ones included.
func (p *Pool) ActiveVoices() int {
	n := 0
	for _, v := range p.voices {
		if v.Active() {
			n++
		}
	}
	return n
}

// NoteOn assigns a note and returns the voice index, or -1 when the note was
// rejected or dropped. offset is the position inside the current block.
func (p *Pool) NoteOn(note int, velocity float32, offset int, prm Params, tb tuning.Table) int {
	if note < MinNote || note > MaxNote {
		p.stats.Rejected++
		return -1
	}

	for i, v := range p.voices {
		if !v.Active() || v.Note() != note {
			continue
		}
		if prm.Gate {
			v.Clear()
			v.ResetBuffers()
			p.stats.Retriggered++
			break
		}
		v.ScheduleReExcite(offset, velocity, prm)
		p.counter++
		p.ages[i] = p.counter
		p.stats.ReExcited++
		return i
	}

	limit := min(prm.Clamped().MaxVoices, len(p.voices))
	if p.ActiveVoices() >= limit {
		if i := p.oldest(); i >= 0 {
			p.voices[i].Clear()
			p.voices[i].ResetBuffers()
			p.stats.Stolen++
		}
	}

	i := p.firstIdle()
	if i < 0 {
		p.stats.Dropped++
		return -1
	}
	p.voices[i].Start(note, velocity, prm, tb)
	p.counter++
	p.ages[i] = p.counter
	p.stats.Started++
	return i
}

// NoteOff releases every voice playing note.
func (p *Pool) NoteOff(note int) {
	for _, v := range p.voices {
		if v.Active() && v.Note() == note {
			v.Stop(true)
		}
	}
}

// AllNotesOff releases every sounding voice as if its key went up.
func (p *Pool) AllNotesOff() {
	for _, v := range p.voices {
		v.Stop(true)
	}
}

// StopAll silences every voice immediately and zeroes its buffers.
func (p *Pool) StopAll() {
	for _, v := range p.voices {
		v.Clear()
		v.ResetBuffers()
	}
}

// Update pushes live parameters to sounding voices.
func (p *Pool) Update(prm Params) {
	for _, v := range p.voices {
		v.Update(prm)
	}
}

// Render adds n samples of every sounding voice into outL/outR at start.
func (p *Pool) Render(outL, outR []float32, start, n int) {
	for _, v := range p.voices {
		v.Render(outL, outR, start, n)
	}
}

func (p *Pool) endBlock() {
	for _, v := range p.voices {
		v.endBlock()
	}
}

// oldest returns the sounding voice with the smallest age; the lowest slot
// wins ties.
func (p *Pool) oldest() int {
	idx := -1
	var best uint64
	for i, v := range p.voices {
		if !v.Active() {
			continue
		}
		if idx < 0 || p.ages[i] < best {
			idx = i
			best = p.ages[i]
		}
	}
	return idx
}

func (p *Pool) firstIdle() int {
	for i, v := range p.voices {
		if !v.Active() {
			return i
		}
	}
	return -1
}
