// Package wavio reads and writes the WAV files used by the command-line
// tools and the IR loader.
package wavio

import (
	"fmt"
	"os"
	"path/filepath"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

func readPCM(path string) (*audio.Float32Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("invalid wav buffer: %s", path)
	}
	if buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid wav sample-rate: %d", buf.Format.SampleRate)
	}
	return buf, nil
}

// ReadMono returns the channel average of a WAV file and its sample rate.
func ReadMono(path string) ([]float64, int, error) {
	buf, err := readPCM(path)
	if err != nil {
		return nil, 0, err
	}
	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < ch; c++ {
			sum += float64(buf.Data[i*ch+c])
		}
		out[i] = sum / float64(ch)
	}
	return out, buf.Format.SampleRate, nil
}

// ReadStereo32 returns left/right channels resampled to targetRate. Mono
// files are duplicated; channels past the second are ignored.
func ReadStereo32(path string, targetRate int) ([]float32, []float32, error) {
	buf, err := readPCM(path)
	if err != nil {
		return nil, nil, err
	}
	numCh := buf.Format.NumChannels
	frames := len(buf.Data) / numCh
	if frames == 0 {
		return nil, nil, fmt.Errorf("empty wav data: %s", path)
	}

	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := range frames {
		left[i] = float64(buf.Data[i*numCh])
		if numCh == 1 {
			right[i] = left[i]
		} else {
			right[i] = float64(buf.Data[i*numCh+1])
		}
	}

	left, err = Resample(left, buf.Format.SampleRate, targetRate)
	if err != nil {
		return nil, nil, err
	}
	right, err = Resample(right, buf.Format.SampleRate, targetRate)
	if err != nil {
		return nil, nil, err
	}
	return To32(left), To32(right), nil
}

// Resample converts in from fromRate to toRate; equal rates return in.
func Resample(in []float64, fromRate int, toRate int) ([]float64, error) {
	if fromRate == toRate {
		return in, nil
	}
	r, err := dspresample.NewForRates(
		float64(fromRate),
		float64(toRate),
		dspresample.WithQuality(dspresample.QualityBest),
	)
	if err != nil {
		return nil, err
	}
	return r.Process(in), nil
}

// WriteStereo writes 16-bit stereo PCM from separate channels.
func WriteStereo(path string, left []float32, right []float32, sampleRate int) error {
	if len(left) != len(right) {
		return fmt.Errorf("left/right length mismatch")
	}
	data := make([]float32, len(left)*2)
	for i := 0; i < len(left); i++ {
		data[i*2] = left[i]
		data[i*2+1] = right[i]
	}
	return write(path, data, 2, sampleRate)
}

// WriteMono writes 16-bit mono PCM.
func WriteMono(path string, data []float32, sampleRate int) error {
	return write(path, data, 1, sampleRate)
}

func write(path string, samples []float32, channels int, sampleRate int) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	defer enc.Close()

	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: channels,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}
	return enc.Write(buf)
}

// MixToMono averages two channels.
func MixToMono(left, right []float32) []float64 {
	n := min(len(left), len(right))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = 0.5 * (float64(left[i]) + float64(right[i]))
	}
	return out
}

// To32 narrows a float64 signal.
func To32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}
