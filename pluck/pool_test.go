package pluck

import (
	"sort"
	"testing"

	"github.com/cwbudde/algo-pluck/tuning"
)

func activeNotes(p *Pool) []int {
	var notes []int
	for i := 0; i < p.Len(); i++ {
		if v := p.Voice(i); v.Active() {
			notes = append(notes, v.Note())
		}
	}
	sort.Ints(notes)
	return notes
}

func TestPoolStealsOldestAtCap(t *testing.T) {
	const sr = 44100
	pool := NewPool(sr, PoolSize, FullCapabilities())
	prm := deterministicParams()
	prm.MaxVoices = 4
	eq := tuning.EqualTemperament()

	for _, n := range []int{60, 62, 64, 65} {
		if pool.NoteOn(n, 0.8, 0, prm, eq) < 0 {
			t.Fatalf("note %d should be allocated", n)
		}
	}
	left, right := make([]float32, 256), make([]float32, 256)
	pool.Render(left, right, 0, 256)

	slot := pool.NoteOn(67, 0.8, 0, prm, eq)
	if slot != 0 {
		t.Fatalf("stolen slot 0 should be reused, got %d", slot)
	}
	got := activeNotes(pool)
	want := []int{62, 64, 65, 67}
	if len(got) != len(want) {
		t.Fatalf("active notes: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("active notes: got %v want %v", got, want)
		}
	}
	st := pool.Stats()
	if st.Stolen != 1 || st.Started != 5 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if pool.Age(0) != 5 {
		t.Fatalf("new note should carry the newest age, got %d", pool.Age(0))
	}
}

func TestPoolStealTieBreaksOnLowestSlot(t *testing.T) {
	pool := NewPool(44100, 8, FullCapabilities())
	prm := deterministicParams()
	eq := tuning.EqualTemperament()
	for _, n := range []int{50, 52, 54} {
		pool.NoteOn(n, 1, 0, prm, eq)
	}
	for i := range pool.ages {
		pool.ages[i] = 7
	}
	if got := pool.oldest(); got != 0 {
		t.Fatalf("equal ages should pick the first slot, got %d", got)
	}
	pool.Voice(0).Clear()
	if got := pool.oldest(); got != 1 {
		t.Fatalf("idle voices are never stolen, got %d", got)
	}
}

func TestPoolAgesIncreaseStrictly(t *testing.T) {
	pool := NewPool(44100, PoolSize, FullCapabilities())
	prm := deterministicParams()
	eq := tuning.EqualTemperament()
	var last uint64
	for _, n := range []int{40, 41, 40, 42, 41} {
		slot := pool.NoteOn(n, 0.7, 0, prm, eq)
		if age := pool.Age(slot); age <= last {
			t.Fatalf("note %d: age %d not greater than %d", n, age, last)
		} else {
			last = age
		}
	}
}

func TestPoolGateRetriggerIsHardRestart(t *testing.T) {
	const sr = 44100
	pool := NewPool(sr, PoolSize, FullCapabilities())
	prm := deterministicParams()
	prm.Gate = true
	eq := tuning.EqualTemperament()

	first := pool.NoteOn(60, 0.8, 0, prm, eq)
	left, right := make([]float32, 1000), make([]float32, 1000)
	pool.Render(left, right, 0, 1000)

	second := pool.NoteOn(60, 0.8, 10, prm, eq)
	if second != first {
		t.Fatalf("cleared slot should be reused first-fit: %d vs %d", second, first)
	}
	v := pool.Voice(second)
	if v.counter != 0 || v.excIndex != 0 {
		t.Fatalf("retrigger should start from scratch: counter=%d excIndex=%d", v.counter, v.excIndex)
	}
	if v.PendingReExcite() != noReExcitePending {
		t.Fatalf("gated retrigger must not schedule a re-excite")
	}
	st := pool.Stats()
	if st.Retriggered != 1 || st.Started != 2 || st.ReExcited != 0 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if pool.ActiveVoices() != 1 {
		t.Fatalf("expected one sounding voice, got %d", pool.ActiveVoices())
	}
}

func TestPoolNonGateRetriggerSchedulesReExcite(t *testing.T) {
	pool := NewPool(44100, PoolSize, FullCapabilities())
	prm := deterministicParams()
	eq := tuning.EqualTemperament()

	slot := pool.NoteOn(60, 0.8, 0, prm, eq)
	left, right := make([]float32, 512), make([]float32, 512)
	pool.Render(left, right, 0, 512)

	again := pool.NoteOn(60, 0.5, 10, prm, eq)
	if again != slot {
		t.Fatalf("re-excite should target the sounding voice %d, got %d", slot, again)
	}
	v := pool.Voice(slot)
	if v.PendingReExcite() != 10 {
		t.Fatalf("expected pending re-excite at 10, got %d", v.PendingReExcite())
	}
	if v.counter == 0 {
		t.Fatalf("delay line state should be preserved until the offset")
	}
	if pool.ActiveVoices() != 1 {
		t.Fatalf("re-excite must not allocate a second voice")
	}
	if pool.Age(slot) != 2 || pool.Stats().ReExcited != 1 {
		t.Fatalf("re-excite should refresh the age: age=%d stats=%+v", pool.Age(slot), pool.Stats())
	}
}

func TestPoolRejectsOutOfRangeNotes(t *testing.T) {
	pool := NewPool(44100, 4, FullCapabilities())
	prm := deterministicParams()
	eq := tuning.EqualTemperament()
	for _, n := range []int{0, MinNote - 1, MaxNote + 1, 127} {
		if slot := pool.NoteOn(n, 1, 0, prm, eq); slot != -1 {
			t.Fatalf("note %d should be rejected, got slot %d", n, slot)
		}
	}
	if pool.ActiveVoices() != 0 || pool.Stats().Rejected != 4 {
		t.Fatalf("rejected notes must not sound: %+v", pool.Stats())
	}
	for _, n := range []int{MinNote, MaxNote} {
		if pool.NoteOn(n, 1, 0, prm, eq) < 0 {
			t.Fatalf("boundary note %d should be accepted", n)
		}
	}
}

func TestPoolSmallerThanMaxVoicesSteals(t *testing.T) {
	pool := NewPool(44100, 4, FullCapabilities())
	prm := deterministicParams()
	prm.MaxVoices = 16
	eq := tuning.EqualTemperament()
	for off, n := range []int{60, 62, 64, 65} {
		if pool.NoteOn(n, 1, off, prm, eq) < 0 {
			t.Fatalf("note %d should be allocated", n)
		}
	}
	if slot := pool.NoteOn(67, 1, 4, prm, eq); slot != 0 {
		t.Fatalf("oldest slot 0 should be stolen, got %d", slot)
	}
	got := activeNotes(pool)
	want := []int{62, 64, 65, 67}
	for i := range want {
		if len(got) != len(want) || got[i] != want[i] {
			t.Fatalf("active notes: got %v want %v", got, want)
		}
	}
	st := pool.Stats()
	if st.Stolen != 1 || st.Dropped != 0 || st.Started != 5 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestPoolNoteOffRespectsGate(t *testing.T) {
	pool := NewPool(44100, 4, FullCapabilities())
	eq := tuning.EqualTemperament()

	prm := deterministicParams()
	slot := pool.NoteOn(60, 1, 0, prm, eq)
	pool.NoteOff(60)
	if pool.Voice(slot).Fading() {
		t.Fatalf("ungated note-off should let the string ring")
	}

	prm.Gate = true
	pool.Update(prm)
	pool.NoteOff(60)
	if !pool.Voice(slot).Fading() {
		t.Fatalf("gated note-off should start the fade")
	}
}

func TestPoolStopAllAndAllNotesOff(t *testing.T) {
	pool := NewPool(44100, 8, FullCapabilities())
	prm := deterministicParams()
	prm.Gate = true
	eq := tuning.EqualTemperament()
	for _, n := range []int{48, 52, 55} {
		pool.NoteOn(n, 1, 0, prm, eq)
	}
	pool.AllNotesOff()
	for i := 0; i < pool.Len(); i++ {
		if v := pool.Voice(i); v.Active() && !v.Fading() {
			t.Fatalf("voice %d should be fading after all-notes-off", i)
		}
	}
	pool.StopAll()
	if pool.ActiveVoices() != 0 {
		t.Fatalf("StopAll should silence everything, %d active", pool.ActiveVoices())
	}
}
