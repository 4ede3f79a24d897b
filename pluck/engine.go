package pluck

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-pluck/tuning"
)

// DefaultMaxBlockSize is the largest block rendered in one pass; longer
// buffers are split internally.
const DefaultMaxBlockSize = 1024

// Synth is the polyphonic engine: it orders events inside a block, feeds
// them to the voice pool at their exact sample positions, and applies the
// shared output stage.
type Synth struct {
	sampleRate int
	pool       *Pool

	table      tuning.Table
	custom     tuning.Table
	hasCustom  bool
	lastTuning tuning.Type

	body     *BodyCoupling
	conv     *Convolver
	irLoaded bool

	mixL, mixR []float32
	order      []int

	logger *slog.Logger
}

type synthConfig struct {
	poolSize     int
	caps         Capabilities
	maxBlockSize int
	logger       *slog.Logger
}

// Option configures NewSynth.
type Option func(*synthConfig)

// WithPoolSize sets how many voices are allocated (default PoolSize).
func WithPoolSize(n int) Option {
	return func(c *synthConfig) { c.poolSize = n }
}

// WithCapabilities sets the behaviour of every voice (default all enabled).
func WithCapabilities(caps Capabilities) Option {
	return func(c *synthConfig) { c.caps = caps }
}

// WithMaxBlockSize sets the internal render chunk size.
func WithMaxBlockSize(n int) Option {
	return func(c *synthConfig) { c.maxBlockSize = n }
}

// WithLogger routes non-realtime diagnostics (tuning and IR changes).
func WithLogger(l *slog.Logger) Option {
	return func(c *synthConfig) { c.logger = l }
}

// NewSynth creates an engine with every buffer allocated up front.
func NewSynth(sampleRate int, opts ...Option) (*Synth, error) {
	cfg := synthConfig{
		poolSize:     PoolSize,
		caps:         FullCapabilities(),
		maxBlockSize: DefaultMaxBlockSize,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be > 0, got %d", sampleRate)
	}
	if cfg.poolSize < 1 {
		return nil, fmt.Errorf("pool size must be >= 1, got %d", cfg.poolSize)
	}
	if cfg.maxBlockSize < 1 {
		return nil, fmt.Errorf("max block size must be >= 1, got %d", cfg.maxBlockSize)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Synth{
		sampleRate: sampleRate,
		pool:       NewPool(sampleRate, cfg.poolSize, cfg.caps),
		table:      tuning.EqualTemperament(),
		lastTuning: tuning.Equal,
		body:       NewBodyCoupling(sampleRate),
		conv:       NewConvolver(sampleRate),
		mixL:       make([]float32, cfg.maxBlockSize),
		mixR:       make([]float32, cfg.maxBlockSize),
		order:      make([]int, 0, 256),
		logger:     logger,
	}, nil
}

// SampleRate returns the engine rate.
func (s *Synth) SampleRate() int { return s.sampleRate }

// Pool exposes the voice pool.
func (s *Synth) Pool() *Pool { return s.pool }

// Stats returns the pool allocation counters.
func (s *Synth) Stats() Stats { return s.pool.Stats() }

// ActiveVoices counts sounding voices.
func (s *Synth) ActiveVoices() int { return s.pool.ActiveVoices() }

// Tuning returns the table new notes are tuned with.
func (s *Synth) Tuning() tuning.Table { return s.table }

// SetLogger replaces the diagnostics logger; nil discards.
func (s *Synth) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	s.logger = l
}

// StopAll silences every voice immediately.
func (s *Synth) StopAll() {
	s.pool.StopAll()
}

// SetTuning silences all voices and installs tb for subsequent notes. It
// must not run concurrently with Process.
func (s *Synth) SetTuning(tb tuning.Table) {
	s.installTuning(tb)
	s.logger.Debug("tuning changed", "name", tb.Name, "type", tb.Type.String())
}

// SetTuningPreset installs a built-in temperament, or the last loaded custom
// table for tuning.Custom.
func (s *Synth) SetTuningPreset(t tuning.Type) {
	if !s.selectTuning(t) {
		s.logger.Warn("custom tuning selected but none loaded")
		return
	}
	s.logger.Debug("tuning changed", "name", s.table.Name, "type", s.table.Type.String())
}

func (s *Synth) installTuning(tb tuning.Table) {
	s.pool.StopAll()
	s.table = tb
	if tb.Type == tuning.Custom {
		s.custom = tb
		s.hasCustom = true
	}
}

// selectTuning reports false when Custom is requested before any custom
// table was loaded; the current table then stays in place.
func (s *Synth) selectTuning(t tuning.Type) bool {
	s.lastTuning = t
	if t == tuning.Custom {
		if !s.hasCustom {
			return false
		}
		s.installTuning(s.custom)
		return true
	}
	s.installTuning(tuning.Preset(t))
	return true
}

// LoadTuningFile parses a .tun file and installs it as the custom table.
// On error the current table and voices are left untouched.
func (s *Synth) LoadTuningFile(path string) error {
	tb, err := tuning.LoadFile(path)
	if err != nil {
		s.logger.Warn("tuning file rejected", "path", path, "err", err)
		return err
	}
	s.lastTuning = tuning.Custom
	s.installTuning(tb)
	s.logger.Info("tuning file loaded", "path", path, "name", tb.Name)
	return nil
}

// SetIR installs a stereo impulse response for the convolution stage.
func (s *Synth) SetIR(left, right []float32) error {
	if err := s.conv.SetIR(left, right); err != nil {
		return err
	}
	s.irLoaded = true
	return nil
}

// LoadIR reads an impulse response WAV for the convolution stage.
func (s *Synth) LoadIR(path string) error {
	if err := s.conv.SetIRFromWAV(path); err != nil {
		s.logger.Warn("impulse response rejected", "path", path, "err", err)
		return err
	}
	s.irLoaded = true
	s.logger.Info("impulse response loaded", "path", path, "length", s.conv.IRLen())
	return nil
}

// Process renders one block and adds it, scaled by OutputGain, into
// outL/outR. Events are applied at their Offset (clamped to the block);
// events sharing an offset keep their slice order. Process never allocates
// for blocks of up to 256 events.
func (s *Synth) Process(outL, outR []float32, events []Event, p Params) {
	p = p.Clamped()
	if p.Tuning != s.lastTuning {
		s.selectTuning(p.Tuning)
	}
	s.pool.Update(p)

	n := min(len(outL), len(outR))
	s.sortEvents(events)
	next := 0
	for start := 0; start < n; start += len(s.mixL) {
		end := min(start+len(s.mixL), n)
		next = s.renderChunk(outL[start:end], outR[start:end], events, next, start, end == n, p)
	}
}

func (s *Synth) renderChunk(outL, outR []float32, events []Event, next, base int, last bool, p Params) int {
	n := len(outL)
	mixL := s.mixL[:n]
	mixR := s.mixR[:n]
	clear(mixL)
	clear(mixR)

	pos := 0
	for ; next < len(s.order); next++ {
		ev := events[s.order[next]]
		off := ev.Offset - base
		if off >= n && !last {
			break
		}
		off = max(0, min(off, n-1))
		if off > pos {
			s.pool.Render(mixL, mixR, pos, off-pos)
			pos = off
		}
		s.handle(ev, off, p)
	}
	if pos < n {
		s.pool.Render(mixL, mixR, pos, n-pos)
	}
	s.pool.endBlock()

	s.body.Process(mixL, mixR, p.BodyCoupling)
	if s.irLoaded && p.IRWetMix > 0 {
		s.conv.Process(mixL, mixR, p.IRWetMix, p.IRDryMix)
	}
	for i := 0; i < n; i++ {
		outL[i] += mixL[i] * p.OutputGain
		outR[i] += mixR[i] * p.OutputGain
	}
	return next
}

func (s *Synth) handle(ev Event, off int, p Params) {
	switch ev.Kind {
	case NoteOn:
		if ev.Velocity <= 0 {
			s.pool.NoteOff(ev.Note)
			return
		}
		s.pool.NoteOn(ev.Note, ev.Velocity, off, p, s.table)
	case NoteOff:
		s.pool.NoteOff(ev.Note)
	case Control:
		switch ev.Controller {
		case CCAllSoundOff:
			s.pool.StopAll()
		case CCAllNotesOff:
			s.pool.AllNotesOff()
		}
	}
}

// sortEvents fills s.order with event indices ordered by offset. Insertion
// sort keeps equal offsets stable.
func (s *Synth) sortEvents(events []Event) {
	s.order = s.order[:0]
	for i := range events {
		s.order = append(s.order, i)
		for j := len(s.order) - 1; j > 0; j-- {
			if events[s.order[j-1]].Offset <= events[s.order[j]].Offset {
				break
			}
			s.order[j-1], s.order[j] = s.order[j], s.order[j-1]
		}
	}
}
