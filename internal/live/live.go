// Package live drives a Synth from a real-time audio callback while notes
// and parameter changes arrive from another goroutine.
package live

import (
	"sync"

	"github.com/cwbudde/algo-pluck/pluck"
)

// Engine queues events from control goroutines and hands them to the synth
// at the start of the next rendered block. Parameters live in a ParamStore
// and are snapshotted once per block.
type Engine struct {
	synth  *pluck.Synth
	params *pluck.ParamStore

	mu      sync.Mutex
	pending []pluck.Event

	// Render side only.
	block []pluck.Event
	left  []float32
	right []float32
}

// defaultFrames is the scratch size used until Reserve is called.
const defaultFrames = 512

// New wraps s with a parameter store initialized from p.
func New(s *pluck.Synth, p pluck.Params) *Engine {
	store := pluck.NewParamStore()
	store.Load(p)
	e := &Engine{
		synth:   s,
		params:  store,
		pending: make([]pluck.Event, 0, 64),
		block:   make([]pluck.Event, 0, 64),
	}
	e.Reserve(defaultFrames)
	return e
}

// Reserve sizes the interleaving scratch buffers. Call it before audio
// starts; RenderInterleaved never allocates and splits larger requests.
func (e *Engine) Reserve(frames int) {
	frames = max(1, frames)
	e.left = make([]float32, frames)
	e.right = make([]float32, frames)
}

// Synth returns the wrapped synth. Callers must not render it directly.
func (e *Engine) Synth() *pluck.Synth { return e.synth }

// Params returns the parameter store read by the render goroutine.
func (e *Engine) Params() *pluck.ParamStore { return e.params }

func (e *Engine) push(ev pluck.Event) {
	e.mu.Lock()
	e.pending = append(e.pending, ev)
	e.mu.Unlock()
}

// NoteOn queues a note-on for the next block.
func (e *Engine) NoteOn(note int, velocity float32) {
	e.push(pluck.NoteOnAt(0, note, velocity))
}

// NoteOff queues a note-off for the next block.
func (e *Engine) NoteOff(note int) {
	e.push(pluck.NoteOffAt(0, note))
}

// Control queues a controller message for the next block.
func (e *Engine) Control(controller, value int) {
	e.push(pluck.ControlAt(0, controller, value))
}

// Render fills left and right with the next block. Both are overwritten.
func (e *Engine) Render(left, right []float32) {
	e.mu.Lock()
	e.block = append(e.block[:0], e.pending...)
	e.pending = e.pending[:0]
	e.mu.Unlock()

	clear(left)
	clear(right)
	e.synth.Process(left, right, e.block, e.params.Snapshot())
}

// RenderInterleaved fills dst with len(dst)/2 interleaved stereo frames,
// in chunks of the reserved size. Queued events land in the first chunk.
func (e *Engine) RenderInterleaved(dst []float32) {
	frames := len(dst) / 2
	for done := 0; done < frames; {
		n := min(len(e.left), frames-done)
		l := e.left[:n]
		r := e.right[:n]
		e.Render(l, r)
		out := dst[2*done:]
		for i := 0; i < n; i++ {
			out[2*i] = l[i]
			out[2*i+1] = r[i]
		}
		done += n
	}
}
