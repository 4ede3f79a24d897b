package pluck

import (
	"github.com/cwbudde/algo-pluck/tuning"
)

const (
	// budgetFadeSamples is the fade length once the sustain budget runs out,
	// and the floor for gated releases.
	budgetFadeSamples = 64

	startGlideSeconds  = 0.02
	reExciteGlideSecs  = 0.001
	noReExcitePending  = -1
	reExciterIdleIndex = -1
)

// Capabilities switch optional voice behaviour. The zero value is a plain
// mono-tuned string that restarts on retrigger.
type Capabilities struct {
	StereoDetune bool // apply StereoMicrotune as opposite L/R detune
	ReExcite     bool // retrigger adds energy instead of restarting
	Tuning       bool // honour the tuning table; otherwise 12-TET
}

// FullCapabilities enables every optional behaviour.
func FullCapabilities() Capabilities {
	return Capabilities{StereoDetune: true, ReExcite: true, Tuning: true}
}

// Voice is one plucked string: exciter buffers, the resonator loop, and the
// play/fade state that decides when it goes silent.
type Voice struct {
	sampleRate float32
	caps       Capabilities
	res        *Resonator
	exc        *Exciter

	excL, excR []float32
	reL, reR   []float32
	excLen     int
	excIndex   int
	reLen      int
	reIndex    int

	note       int
	active     bool
	velocity   float32
	reVelocity float32

	// counter runs from the last (re)excitation; it drives the unity-gain
	// first period and the sustain budget.
	counter    int
	periodLen  int
	maxSamples int

	fading      bool
	fadeCounter int
	fadeLen     int

	pendingOffset   int
	pendingVelocity float32

	params    Params
	table     tuning.Table
	centerLen float32
}

// NewVoice allocates all buffers for a voice at the given sample rate.
func NewVoice(sampleRate int, caps Capabilities, seed int64) *Voice {
	sr := float32(sampleRate)
	v := &Voice{
		sampleRate:    sr,
		caps:          caps,
		res:           NewResonator(sr, MaxBufferSize),
		exc:           NewExciter(seed),
		excL:          make([]float32, MaxBufferSize),
		excR:          make([]float32, MaxBufferSize),
		reL:           make([]float32, MaxBufferSize),
		reR:           make([]float32, MaxBufferSize),
		note:          -1,
		reIndex:       reExciterIdleIndex,
		pendingOffset: noReExcitePending,
		params:        NewDefaultParams(),
		table:         tuning.EqualTemperament(),
	}
	return v
}

// Note returns the sounding note, or -1 when idle.
func (v *Voice) Note() int { return v.note }

// Active reports whether the voice is sounding (including while fading).
func (v *Voice) Active() bool { return v.active }

// Fading reports whether a fade-out is in progress.
func (v *Voice) Fading() bool { return v.fading }

// Capabilities returns the voice's configured behaviour.
func (v *Voice) Capabilities() Capabilities { return v.caps }

// Delay returns the current left/right loop lengths in samples.
func (v *Voice) Delay() (float32, float32) { return v.res.Delay() }

// Start begins a new note with fresh loop state. tb is copied; later tuning
// changes do not reach a sounding voice.
func (v *Voice) Start(note int, velocity float32, p Params, tb tuning.Table) {
	v.params = p.Clamped()
	v.table = tb
	if !v.caps.Tuning {
		v.table = tuning.EqualTemperament()
	}
	v.note = note
	v.velocity = clampf(velocity, 0, 1)

	v.res.Reset()
	v.res.SetInterpolation(v.params.Interpolation)
	left, right, center := v.delayLengths()
	v.res.SnapDelay(left, right)
	v.res.SetDamping(v.params.Damp)
	v.res.SetDecay(v.params.Decay, center)
	v.centerLen = center

	v.excLen = v.exc.Generate(v.excL, v.excR, v.exciteSpec(v.velocity))
	v.excIndex = 0
	v.reIndex = reExciterIdleIndex
	v.periodLen = v.excLen
	v.counter = 0
	v.maxSamples = v.budget()

	v.fading = false
	v.fadeCounter = 0
	v.pendingOffset = noReExcitePending
	v.active = true
}

// Update applies the live per-block parameters to a sounding voice: decay,
// damping and detune. Color, stereo and the tuning table keep the values
// captured at the last (re)excitation.
func (v *Voice) Update(p Params) {
	if !v.active {
		return
	}
	p = p.Clamped()
	v.params.Decay = p.Decay
	v.params.Damp = p.Damp
	v.params.Gate = p.Gate
	v.params.GateDamping = p.GateDamping
	v.params.FineTune = p.FineTune
	v.params.StereoMicrotune = p.StereoMicrotune
	v.params.Interpolation = p.Interpolation

	left, right, center := v.delayLengths()
	v.res.GlideDelay(left, right, v.glideSamples(startGlideSeconds))
	v.res.SetInterpolation(p.Interpolation)
	v.res.SetDamping(p.Damp)
	v.res.SetDecay(p.Decay, center)
	v.centerLen = center
}

// ScheduleReExcite arranges a re-excitation at block sample offset.
// Color and stereo are read from p at that moment's snapshot.
func (v *Voice) ScheduleReExcite(offset int, velocity float32, p Params) {
	if offset < 0 {
		offset = 0
	}
	v.pendingOffset = offset
	v.pendingVelocity = clampf(velocity, 0, 1)
	p = p.Clamped()
	v.params.Color = p.Color
	v.params.Stereo = p.Stereo
	v.params.ExciterSlewRate = p.ExciterSlewRate
	v.params.DampingCurve = p.DampingCurve
}

// PendingReExcite returns the scheduled offset, or -1.
func (v *Voice) PendingReExcite() int { return v.pendingOffset }

func (v *Voice) reExcite() {
	v.pendingOffset = noReExcitePending
	if !v.caps.ReExcite {
		v.Start(v.note, v.pendingVelocity, v.params, v.table)
		return
	}

	v.reVelocity = v.pendingVelocity
	left, right, center := v.delayLengths()
	v.res.GlideDelay(left, right, v.glideSamples(reExciteGlideSecs))
	v.res.SetDecay(v.params.Decay, center)
	v.centerLen = center

	v.reLen = v.exc.Generate(v.reL, v.reR, v.exciteSpec(v.reVelocity))
	v.reIndex = 0
	v.periodLen = v.reLen
	v.counter = 0
	v.maxSamples = v.budget()
	v.fading = false
	v.fadeCounter = 0
}

// Stop releases the note. Without allowTail the voice is cleared at once;
// with it, a gated voice fades over GateDamping (at least 64 samples) and an
// ungated voice rings on until its budget runs out.
func (v *Voice) Stop(allowTail bool) {
	if !v.active {
		return
	}
	if !allowTail {
		v.Clear()
		return
	}
	if v.params.Gate {
		v.startFade(max(budgetFadeSamples, int(v.params.GateDamping*v.sampleRate)))
	}
}

// Clear marks the voice idle without touching its buffers.
func (v *Voice) Clear() {
	v.active = false
	v.note = -1
	v.fading = false
	v.fadeCounter = 0
	v.pendingOffset = noReExcitePending
	v.reIndex = reExciterIdleIndex
}

// ResetBuffers zeroes every buffer and the loop state. Calling it twice is
// the same as calling it once.
func (v *Voice) ResetBuffers() {
	v.Clear()
	v.res.Reset()
	clear(v.excL)
	clear(v.excR)
	clear(v.reL)
	clear(v.reR)
	v.excLen = 0
	v.excIndex = 0
	v.reLen = 0
	v.counter = 0
	v.periodLen = 0
}

// Render adds n samples into outL/outR starting at start. A pending
// re-excitation fires when the block position reaches its offset.
func (v *Voice) Render(outL, outR []float32, start, n int) {
	if !v.active {
		return
	}
	for i := 0; i < n; i++ {
		idx := start + i
		if v.pendingOffset == idx {
			v.reExcite()
		}

		var exL, exR float32
		if v.excIndex < v.excLen {
			exL += v.excL[v.excIndex] * v.velocity
			exR += v.excR[v.excIndex] * v.velocity
			v.excIndex++
		}
		if v.reIndex >= 0 {
			exL += v.reL[v.reIndex] * v.reVelocity
			exR += v.reR[v.reIndex] * v.reVelocity
			v.reIndex++
			if v.reIndex >= v.reLen {
				v.reIndex = reExciterIdleIndex
			}
		}

		if !v.fading && v.counter >= v.maxSamples {
			v.startFade(budgetFadeSamples)
		}
		scale := float32(1)
		if v.fading {
			v.fadeCounter++
			scale = maxf(0, 1-float32(v.fadeCounter)/float32(v.fadeLen))
			if scale <= 0 {
				v.Clear()
				return
			}
		}

		oL, oR := v.res.Tick(exL, exR, scale, v.counter < v.periodLen)
		outL[idx] += oL
		outR[idx] += oR
		v.counter++
	}
}

// endBlock carries a re-excitation that was not reached this block over to
// the start of the next one.
func (v *Voice) endBlock() {
	if v.pendingOffset > 0 {
		v.pendingOffset = 0
	}
}

func (v *Voice) startFade(samples int) {
	if v.fading {
		return
	}
	v.fading = true
	v.fadeCounter = 0
	v.fadeLen = max(samples, 1)
}

func (v *Voice) delayLengths() (left, right, center float32) {
	cents := v.params.FineTune + v.table.CentDeviation(v.note)
	center = delayForNote(v.sampleRate, v.note, cents)
	if !v.caps.StereoDetune || !v.params.Stereo || v.params.StereoMicrotune == 0 {
		return center, center, center
	}
	micro := v.params.StereoMicrotune
	left = delayForNote(v.sampleRate, v.note, cents-micro)
	right = delayForNote(v.sampleRate, v.note, cents+micro)
	return left, right, center
}

func (v *Voice) exciteSpec(velocity float32) ExciteSpec {
	return ExciteSpec{
		Velocity: velocity,
		Color:    v.params.Color,
		SlewRate: v.params.ExciterSlewRate,
		DelayLen: v.centerLen,
		Stereo:   v.params.Stereo,
	}
}

func (v *Voice) budget() int {
	return DecayBudget(v.sampleRate, v.note, v.params.Decay, v.params.Damp, v.params.DampingCurve)
}

func (v *Voice) glideSamples(seconds float32) int {
	return max(1, int(seconds*v.sampleRate))
}
