package pluck

import (
	"fmt"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"

	"github.com/cwbudde/algo-pluck/internal/wavio"
)

const convPartSize = 128

// Convolver is a stereo impulse-response stage (cabinet, body or room). The
// wet path runs one partition behind the dry path; Process never allocates.
type Convolver struct {
	sampleRate int
	partSize   int
	irLen      int

	leftOLA  *dspconv.StreamingOverlapAddT[float32, complex64]
	rightOLA *dspconv.StreamingOverlapAddT[float32, complex64]

	inL, inR   []float32
	outL, outR []float32
	fill       int
}

// NewConvolver creates a convolver with a unit impulse loaded.
func NewConvolver(sampleRate int) *Convolver {
	c := &Convolver{
		sampleRate: sampleRate,
		partSize:   convPartSize,
		inL:        make([]float32, convPartSize),
		inR:        make([]float32, convPartSize),
		outL:       make([]float32, convPartSize),
		outR:       make([]float32, convPartSize),
	}
	_ = c.SetIR([]float32{1.0}, []float32{1.0})
	return c
}

// Latency returns the wet path delay in samples.
func (c *Convolver) Latency() int { return c.partSize }

// IRLen returns the longer of the two loaded impulse responses.
func (c *Convolver) IRLen() int { return c.irLen }

// Process mixes dry*x + wet*conv(x) into left/right in place.
func (c *Convolver) Process(left, right []float32, wet, dry float32) {
	n := min(len(left), len(right))
	for i := 0; i < n; i++ {
		c.inL[c.fill] = left[i]
		c.inR[c.fill] = right[i]
		wl := c.outL[c.fill]
		wr := c.outR[c.fill]
		c.fill++
		if c.fill == c.partSize {
			c.fill = 0
			errL := c.leftOLA.ProcessBlockTo(c.outL, c.inL)
			errR := c.rightOLA.ProcessBlockTo(c.outR, c.inR)
			if errL != nil || errR != nil {
				// Fall back to passing the partition through.
				copy(c.outL, c.inL)
				copy(c.outR, c.inR)
			}
		}
		left[i] = dry*left[i] + wet*wl
		right[i] = dry*right[i] + wet*wr
	}
}

// SetIR configures left/right impulse responses. An empty side gets a unit
// impulse.
func (c *Convolver) SetIR(leftIR []float32, rightIR []float32) error {
	if len(leftIR) == 0 {
		leftIR = []float32{1.0}
	}
	if len(rightIR) == 0 {
		rightIR = []float32{1.0}
	}

	leftOLA, err := dspconv.NewStreamingOverlapAdd32(leftIR, c.partSize)
	if err != nil {
		return fmt.Errorf("left ir: %w", err)
	}
	rightOLA, err := dspconv.NewStreamingOverlapAdd32(rightIR, c.partSize)
	if err != nil {
		return fmt.Errorf("right ir: %w", err)
	}
	c.leftOLA = leftOLA
	c.rightOLA = rightOLA
	c.irLen = max(len(leftIR), len(rightIR))
	c.Reset()
	return nil
}

// SetIRFromWAV loads a mono or stereo IR, resampled to the engine rate.
func (c *Convolver) SetIRFromWAV(path string) error {
	left, right, err := wavio.ReadStereo32(path, c.sampleRate)
	if err != nil {
		return err
	}
	return c.SetIR(left, right)
}

// Reset clears convolver history and overlap buffers.
func (c *Convolver) Reset() {
	if c.leftOLA != nil {
		c.leftOLA.Reset()
	}
	if c.rightOLA != nil {
		c.rightOLA.Reset()
	}
	clear(c.inL)
	clear(c.inR)
	clear(c.outL)
	clear(c.outR)
	c.fill = 0
}
