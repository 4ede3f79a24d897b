package dsp

import (
	"math"
	"testing"
)

func TestFracDelayClampsLength(t *testing.T) {
	d := NewFracDelay(64)
	cases := []struct {
		in, want float32
	}{
		{0, 1},
		{-5, 1},
		{float32(math.NaN()), 1},
		{10.5, 10.5},
		{63, 63},
		{64, 63},
		{1e9, 63},
	}
	for _, tc := range cases {
		if got := d.SetDelay(tc.in); got != tc.want {
			t.Fatalf("SetDelay(%f) = %f, want %f", tc.in, got, tc.want)
		}
		if d.Delay() != tc.want {
			t.Fatalf("Delay() = %f after SetDelay(%f)", d.Delay(), tc.in)
		}
	}
}

func TestFracDelayIntegerDelayReturnsImpulse(t *testing.T) {
	d := NewFracDelay(32)
	d.SetDelay(5)
	var out []float32
	for i := 0; i < 12; i++ {
		out = append(out, d.Read())
		x := float32(0)
		if i == 0 {
			x = 1
		}
		d.Push(x)
	}
	for i, v := range out {
		want := float32(0)
		if i == 5 {
			want = 1
		}
		if v != want {
			t.Fatalf("sample %d: got %f want %f (out=%v)", i, v, want, out)
		}
	}
}

func TestFracDelayLinearHalfSample(t *testing.T) {
	d := NewFracDelay(16)
	d.SetDelay(2.5)
	d.Push(1)
	d.Push(0)
	d.Push(0)
	// impulse sits 3 samples back; a 2.5 delay splits it evenly between taps 2 and 3
	if got := d.Read(); math.Abs(float64(got-0.5)) > 1e-6 {
		t.Fatalf("expected 0.5, got %f", got)
	}
}

func TestFracDelayCubicMatchesLinearOnRamp(t *testing.T) {
	lin := NewFracDelay(16)
	cub := NewFracDelay(16)
	cub.SetInterpolation(Cubic)
	for i := 0; i < 10; i++ {
		lin.Push(float32(i))
		cub.Push(float32(i))
	}
	lin.SetDelay(3.25)
	cub.SetDelay(3.25)
	if a, b := lin.Read(), cub.Read(); math.Abs(float64(a-b)) > 1e-5 {
		t.Fatalf("linear ramp should interpolate identically: linear=%f cubic=%f", a, b)
	}
}

func TestFracDelayReset(t *testing.T) {
	d := NewFracDelay(8)
	for i := 0; i < 20; i++ {
		d.Push(1)
	}
	d.Reset()
	for n := 1; n < d.Cap(); n++ {
		d.SetDelay(float32(n))
		if d.Read() != 0 {
			t.Fatalf("tap %d not cleared", n)
		}
	}
}

func TestRampReachesTargetExactly(t *testing.T) {
	var r Ramp
	r.SetLength(4)
	r.Reset(10)
	r.SetTarget(14)
	want := []float32{11, 12, 13, 14, 14}
	for i, w := range want {
		if got := r.Next(); math.Abs(float64(got-w)) > 1e-5 {
			t.Fatalf("step %d: got %f want %f", i, got, w)
		}
	}
	if r.Ramping() {
		t.Fatalf("ramp should be finished")
	}
}

func TestSlewRateOnePassesThrough(t *testing.T) {
	s := NewSlew(1)
	for _, x := range []float32{0.3, -0.8, 1, 0} {
		if got := s.Process(x); got != x {
			t.Fatalf("rate 1 should pass %f, got %f", x, got)
		}
	}
}

func TestSlewSmoothsStep(t *testing.T) {
	s := NewSlew(0.25)
	first := s.Process(1)
	if first != 0.25 {
		t.Fatalf("expected 0.25 after one step, got %f", first)
	}
	var last float32
	for i := 0; i < 200; i++ {
		last = s.Process(1)
	}
	if math.Abs(float64(last-1)) > 1e-4 {
		t.Fatalf("slew should settle at 1, got %f", last)
	}
}

func TestOnePoleCoefficientClamp(t *testing.T) {
	var o OnePole
	o.SetCoeff(2)
	if o.Coeff() != 1 {
		t.Fatalf("coefficient should clamp to 1, got %f", o.Coeff())
	}
	o.SetState(0.5)
	if got := o.Process(1); got != 1 {
		t.Fatalf("a=1 should pass input, got %f", got)
	}
	o.SetCoeff(0)
	if got := o.Process(1); got != 0.5 {
		t.Fatalf("a=0 should hold state, got %f", got)
	}
}
