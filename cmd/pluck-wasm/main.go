//go:build js && wasm

package main

import (
	"os"
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-pluck/internal/live"
	"github.com/cwbudde/algo-pluck/pluck"
	"github.com/cwbudde/algo-pluck/tuning"
)

const maxFrames = 128

var (
	engine       *live.Engine
	outputBuffer []float32
)

func main() {
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmNoteOn", js.FuncOf(wasmNoteOn))
	js.Global().Set("wasmNoteOff", js.FuncOf(wasmNoteOff))
	js.Global().Set("wasmAllSoundOff", js.FuncOf(wasmAllSoundOff))
	js.Global().Set("wasmSetParam", js.FuncOf(wasmSetParam))
	js.Global().Set("wasmSetTuning", js.FuncOf(wasmSetTuning))
	js.Global().Set("wasmLoadTuning", js.FuncOf(wasmLoadTuning))
	js.Global().Set("wasmLoadIR", js.FuncOf(wasmLoadIR))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM pluck module loaded")
	<-c
}

func wasmInit(this js.Value, args []js.Value) any {
	if len(args) < 1 {
		return nil
	}
	sampleRate := args[0].Int()
	s, err := pluck.NewSynth(sampleRate, pluck.WithMaxBlockSize(maxFrames))
	if err != nil {
		println("init failed:", err.Error())
		return nil
	}
	engine = live.New(s, pluck.NewDefaultParams())
	outputBuffer = make([]float32, maxFrames*2)
	println("Pluck synth initialized at", sampleRate, "Hz")
	return nil
}

// wasmNoteOn takes a MIDI note and a velocity in 0..1.
func wasmNoteOn(this js.Value, args []js.Value) any {
	if len(args) < 2 || engine == nil {
		return nil
	}
	engine.NoteOn(args[0].Int(), float32(args[1].Float()))
	return nil
}

func wasmNoteOff(this js.Value, args []js.Value) any {
	if len(args) < 1 || engine == nil {
		return nil
	}
	engine.NoteOff(args[0].Int())
	return nil
}

func wasmAllSoundOff(this js.Value, args []js.Value) any {
	if engine == nil {
		return nil
	}
	engine.Control(pluck.CCAllSoundOff, 0)
	return nil
}

// wasmSetParam sets a parameter by name and returns false for unknown names.
func wasmSetParam(this js.Value, args []js.Value) any {
	if len(args) < 2 || engine == nil {
		return false
	}
	if err := engine.Params().SetByName(args[0].String(), args[1].Float()); err != nil {
		println(err.Error())
		return false
	}
	return true
}

func wasmSetTuning(this js.Value, args []js.Value) any {
	if len(args) < 1 || engine == nil {
		return false
	}
	t, err := tuning.ParseType(args[0].String())
	if err != nil {
		println(err.Error())
		return false
	}
	engine.Params().Set(pluck.ParamTuning, float64(t))
	return true
}

// wasmLoadTuning installs a custom table from the text of a .tun file.
func wasmLoadTuning(this js.Value, args []js.Value) any {
	if len(args) < 1 || engine == nil {
		return false
	}
	path, err := writeTemp("tuning.tun", []byte(args[0].String()))
	if err != nil {
		println("Failed to write tuning file:", err.Error())
		return false
	}
	if err := engine.Synth().LoadTuningFile(path); err != nil {
		println("Failed to load tuning:", err.Error())
		return false
	}
	engine.Params().Set(pluck.ParamTuning, float64(tuning.Custom))
	return true
}

// wasmLoadIR loads a WAV impulse response from an ArrayBuffer.
func wasmLoadIR(this js.Value, args []js.Value) any {
	if len(args) < 1 || engine == nil {
		return false
	}
	arrayBuffer := js.Global().Get("Uint8Array").New(args[0])
	length := arrayBuffer.Get("byteLength").Int()
	if length == 0 {
		println("IR data is empty")
		return false
	}
	irData := make([]byte, length)
	js.CopyBytesToGo(irData, arrayBuffer)

	path, err := writeTemp("ir.wav", irData)
	if err != nil {
		println("Failed to write IR file:", err.Error())
		return false
	}
	if err := engine.Synth().LoadIR(path); err != nil {
		println("Failed to load IR:", err.Error())
		return false
	}
	println("IR loaded successfully:", length, "bytes")
	return true
}

// wasmProcessBlock renders up to 128 interleaved stereo frames and returns
// the buffer address in linear memory.
func wasmProcessBlock(this js.Value, args []js.Value) any {
	if len(args) < 1 || engine == nil {
		return 0
	}
	numFrames := min(max(args[0].Int(), 0), maxFrames)
	engine.RenderInterleaved(outputBuffer[:2*numFrames])

	ptr := &outputBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) any {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}

func writeTemp(name string, data []byte) (string, error) {
	path := "/tmp/" + name
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
