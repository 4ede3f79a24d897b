package irsynth

import (
	"fmt"
	"math"
	"math/rand"

	algofft "github.com/cwbudde/algo-fft"
)

const speedOfSound = 343.0

// RoomConfig describes a shoebox room with one source and a spaced pair of
// pickups. Early reflections come from image sources up to MaxOrder; the
// diffuse tail decays with the Sabine reverberation time.
type RoomConfig struct {
	SampleRate int
	Seed       int64

	Width  float64 // metres, x
	Depth  float64 // metres, y
	Height float64 // metres, z

	Source     [3]float64
	Listener   [3]float64
	MicSpacing float64 // left/right pickup distance along x

	Absorption     float64 // mean wall absorption, 0 < a < 1
	HighAbsorption float64 // extra treble loss per bounce, 0..1
	MaxOrder       int
	LateLevel      float64
	DurationS      float64 // 0 derives the length from the reverberation time

	NormalizePeak float64
}

// DefaultRoomConfig is a small furnished practice room.
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		SampleRate:     48000,
		Seed:           1,
		Width:          4.2,
		Depth:          3.6,
		Height:         2.6,
		Source:         [3]float64{1.4, 1.2, 1.0},
		Listener:       [3]float64{2.6, 2.4, 1.2},
		MicSpacing:     0.2,
		Absorption:     0.3,
		HighAbsorption: 0.4,
		MaxOrder:       4,
		LateLevel:      0.5,
		NormalizePeak:  0.9,
	}
}

// Scaled returns the room with every dimension and position multiplied by s.
func (c RoomConfig) Scaled(s float64) RoomConfig {
	c.Width *= s
	c.Depth *= s
	c.Height *= s
	for i := range c.Source {
		c.Source[i] *= s
		c.Listener[i] *= s
	}
	return c
}

func (c *RoomConfig) Validate() error {
	if c.SampleRate < 8000 {
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	}
	if c.Width <= 0 || c.Depth <= 0 || c.Height <= 0 {
		return fmt.Errorf("room dimensions must be > 0")
	}
	dims := [3]float64{c.Width, c.Depth, c.Height}
	half := c.MicSpacing / 2
	for a := range dims {
		lo, hi := c.Listener[a], c.Listener[a]
		if a == 0 {
			lo -= half
			hi += half
		}
		if c.Source[a] <= 0 || c.Source[a] >= dims[a] || lo <= 0 || hi >= dims[a] {
			return fmt.Errorf("source and pickups must lie inside the room")
		}
	}
	if c.Absorption <= 0 || c.Absorption >= 1 {
		return fmt.Errorf("absorption must be in (0, 1)")
	}
	if c.HighAbsorption < 0 || c.HighAbsorption > 1 {
		return fmt.Errorf("high absorption must be in [0, 1]")
	}
	if c.MaxOrder < 0 || c.LateLevel < 0 || c.DurationS < 0 || c.MicSpacing < 0 {
		return fmt.Errorf("order, late level, duration and mic spacing must be >= 0")
	}
	if c.NormalizePeak <= 0 {
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

func (c *RoomConfig) volume() float64 { return c.Width * c.Depth * c.Height }

func (c *RoomConfig) surface() float64 {
	return 2 * (c.Width*c.Depth + c.Width*c.Height + c.Depth*c.Height)
}

// ReverbTime returns the Sabine RT60 in seconds.
func (c *RoomConfig) ReverbTime() float64 {
	return 0.161 * c.volume() / (c.surface() * c.Absorption)
}

func (c *RoomConfig) frames() int {
	d := c.DurationS
	if d <= 0 {
		d = math.Min(1.2*c.ReverbTime(), 4)
	}
	return max(1, int(math.Round(d*float64(c.SampleRate))))
}

// GenerateRoom renders the room response, peak-normalized.
func GenerateRoom(cfg RoomConfig) ([]float32, []float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	left, right := roomResponse(cfg)
	l, r := normalize(left, right, cfg.NormalizePeak)
	return l, r, nil
}

func roomResponse(cfg RoomConfig) ([]float64, []float64) {
	n := cfg.frames()
	left := make([]float64, n)
	right := make([]float64, n)
	micL, micR := cfg.Listener, cfg.Listener
	micL[0] -= cfg.MicSpacing / 2
	micR[0] += cfg.MicSpacing / 2
	addImages(left, cfg, micL)
	addImages(right, cfg, micR)
	addLateTail(left, right, cfg, rand.New(rand.NewSource(cfg.Seed)))

	removeDC(left, 0.995)
	removeDC(right, 0.995)
	fadeOut(left, 0.01, cfg.SampleRate)
	fadeOut(right, 0.01, cfg.SampleRate)
	return left, right
}

// addImages sums every image source up to MaxOrder as seen from mic. Each
// bounce scales the pressure by sqrt(1-Absorption) and smears the arrival a
// little wider, which stands in for treble loss at the walls.
func addImages(out []float64, cfg RoomConfig, mic [3]float64) {
	dims := [3]float64{cfg.Width, cfg.Depth, cfg.Height}
	beta := math.Sqrt(1 - cfg.Absorption)
	sr := float64(cfg.SampleRate)
	n := cfg.MaxOrder
	for nx := -n; nx <= n; nx++ {
		for ny := -n; ny <= n; ny++ {
			for nz := -n; nz <= n; nz++ {
				order := absInt(nx) + absInt(ny) + absInt(nz)
				if order > n {
					continue
				}
				img := [3]int{nx, ny, nz}
				var d2 float64
				for a := range dims {
					d := imageCoord(cfg.Source[a], dims[a], img[a]) - mic[a]
					d2 += d * d
				}
				dist := math.Max(math.Sqrt(d2), 0.1)
				amp := math.Pow(beta, float64(order)) / dist
				width := 1 + int(float64(order)*cfg.HighAbsorption*4)
				addTap(out, dist/speedOfSound*sr, amp, width)
			}
		}
	}
}

// imageCoord mirrors src across the walls of a room of the given size n
// times along one axis.
func imageCoord(src, size float64, n int) float64 {
	if n%2 == 0 {
		return float64(n)*size + src
	}
	return float64(n)*size + size - src
}

// addTap places an arrival at a fractional position, spread over width
// samples with a Hann shape of unit sum.
func addTap(out []float64, pos, amp float64, width int) {
	if width <= 1 {
		i := int(pos)
		frac := pos - float64(i)
		if i < len(out) {
			out[i] += amp * (1 - frac)
		}
		if i+1 < len(out) {
			out[i+1] += amp * frac
		}
		return
	}
	hann := func(k int) float64 {
		return 0.5 - 0.5*math.Cos(2*math.Pi*float64(k+1)/float64(width+1))
	}
	var sum float64
	for k := 0; k < width; k++ {
		sum += hann(k)
	}
	start := int(pos) - width/2
	for k := 0; k < width; k++ {
		if i := start + k; i >= 0 && i < len(out) {
			out[i] += amp * hann(k) / sum
		}
	}
}

// addLateTail adds decorrelated noise from the mixing time sqrt(V) ms on,
// decaying 60 dB over the reverberation time. Its level starts near the
// strength of the last image order.
func addLateTail(left, right []float64, cfg RoomConfig, rng *rand.Rand) {
	if cfg.LateLevel == 0 {
		return
	}
	sr := float64(cfg.SampleRate)
	rt := cfg.ReverbTime()
	mix := math.Sqrt(cfg.volume()) / 1000
	start := int(mix * sr)
	ramp := max(1, int(0.005*sr))
	meanFree := 4 * cfg.volume() / cfg.surface()
	level := cfg.LateLevel * math.Pow(math.Sqrt(1-cfg.Absorption), float64(cfg.MaxOrder)) / meanFree
	a := 1 - 0.9*cfg.HighAbsorption
	var lpL, lpR float64
	for i := start; i < len(left); i++ {
		t := float64(i) / sr
		env := level * math.Exp(-6.91*t/rt) * math.Min(1, float64(i-start)/float64(ramp))
		lpL += a * (rng.NormFloat64() - lpL)
		lpR += a * (rng.NormFloat64() - lpR)
		left[i] += env * lpL
		right[i] += env * lpR
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// PlaceInRoom convolves a body response with a room response per channel
// and blends the result with the dry body: out = body + mix*(body*room).
// The output is len(body)+len(room)-1 samples, peak-normalized to peak.
func PlaceInRoom(bodyL, bodyR, roomL, roomR []float32, mix, peak float64) ([]float32, []float32, error) {
	if len(bodyL) == 0 || len(bodyL) != len(bodyR) || len(roomL) == 0 || len(roomL) != len(roomR) {
		return nil, nil, fmt.Errorf("body and room responses must be non-empty stereo pairs")
	}
	if mix < 0 || peak <= 0 {
		return nil, nil, fmt.Errorf("mix must be >= 0 and peak > 0")
	}
	n := len(bodyL) + len(roomL) - 1
	wetL := make([]float32, n)
	wetR := make([]float32, n)
	if err := algofft.ConvolveReal(wetL, bodyL, roomL); err != nil {
		return nil, nil, err
	}
	if err := algofft.ConvolveReal(wetR, bodyR, roomR); err != nil {
		return nil, nil, err
	}

	left := make([]float64, n)
	right := make([]float64, n)
	for i := 0; i < n; i++ {
		left[i] = mix * float64(wetL[i])
		right[i] = mix * float64(wetR[i])
	}
	for i := range bodyL {
		left[i] += float64(bodyL[i])
		right[i] += float64(bodyR[i])
	}
	l, r := normalize(left, right, peak)
	return l, r, nil
}
