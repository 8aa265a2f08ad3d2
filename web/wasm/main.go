//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/cwbudde/acoustics-lab/dsp/render"
	"github.com/cwbudde/acoustics-lab/internal/lab"
	"github.com/cwbudde/acoustics-lab/internal/web"
)

var (
	engine *lab.Engine
	ctx    *render.Context
	funcs  []js.Func
)

func main() {
	api := js.Global().Get("Object").New()
	api.Set("init", export(func(args []js.Value) any {
		if engine != nil {
			return js.Null()
		}

		sr := 48000.0
		if len(args) > 0 {
			sr = args[0].Float()
		}

		c, err := render.NewContext(sr)
		if err != nil {
			return err.Error()
		}

		e := lab.NewEngine(func() (lab.Renderer, error) { return lab.NewSoftware(c), nil })
		if err := e.Init(); err != nil {
			return err.Error()
		}

		engine, ctx = e, c

		return js.Null()
	}))

	api.Set("startWeighting", export(call(func() error { return engine.StartWeightingDemo() })))
	api.Set("stopWeighting", export(call(func() error { return engine.StopWeightingDemo() })))
	api.Set("startANC", export(call(func() error { return engine.StartANCDemo() })))
	api.Set("stopANC", export(call(func() error { return engine.StopANCDemo() })))
	api.Set("stopAll", export(call(func() error { return engine.StopAll() })))

	api.Set("setWeighting", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}

		p, err := lab.ParseProfile(args[0].String())
		if err != nil {
			return err.Error()
		}

		if _, err := engine.SetWeighting(p); err != nil {
			return err.Error()
		}

		return js.Null()
	}))

	api.Set("setSource", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}

		k, err := lab.ParseSourceKind(args[0].String())
		if err != nil {
			return err.Error()
		}

		return result(engine.SetSourceKind(k))
	}))

	api.Set("setFrequency", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}

		return result(engine.SetFrequency(args[0].Float()))
	}))

	api.Set("setPhase", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}

		return result(engine.SetPhase(args[0].Float()))
	}))

	api.Set("setLatency", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}

		return result(engine.SetLatency(args[0].Bool()))
	}))

	api.Set("toggleANC", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}

		return result(engine.ToggleANC(args[0].Bool()))
	}))

	api.Set("setMasterGain", export(func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Null()
		}

		return result(engine.SetMasterGain(args[0].Float()))
	}))

	api.Set("status", export(func(_ []js.Value) any {
		if engine == nil {
			return js.Null()
		}

		data, err := json.Marshal(web.NewStatusPayload(engine.Status()))
		if err != nil {
			return js.Null()
		}

		return string(data)
	}))

	api.Set("frequencyData", export(tapBytes(func(t *lab.Tap) []byte { return t.FrequencyData() })))
	api.Set("timeDomainData", export(tapBytes(func(t *lab.Tap) []byte { return t.TimeDomainData() })))

	api.Set("render", export(func(args []js.Value) any {
		if ctx == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}

		n := args[0].Int()
		buf := make([]float32, n)
		ctx.Render(buf)

		arr := js.Global().Get("Float32Array").New(n)
		for i := 0; i < n; i++ {
			arr.SetIndex(i, buf[i])
		}

		return arr
	}))

	api.Set("responseCurve", export(func(args []js.Value) any {
		if ctx == nil || len(args) < 2 {
			return js.Global().Get("Float32Array").New(0)
		}

		p, err := lab.ParseProfile(args[0].String())
		if err != nil {
			return js.Global().Get("Float32Array").New(0)
		}

		input := args[1]
		freqs := make([]float64, input.Length())
		for i := 0; i < input.Length(); i++ {
			freqs[i] = input.Index(i).Float()
		}

		resp, err := p.ResponseDB(freqs, ctx.SampleRate())
		if err != nil {
			return js.Global().Get("Float32Array").New(0)
		}

		arr := js.Global().Get("Float32Array").New(len(resp))
		for i := range resp {
			arr.SetIndex(i, resp[i])
		}

		return arr
	}))

	js.Global().Set("AcousticsLab", api)
	select {}
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)

	return f
}

// call adapts an argument-less control call. Errors are returned to
// JavaScript as strings, success as null.
func call(fn func() error) func([]js.Value) any {
	return func(_ []js.Value) any {
		if engine == nil {
			return lab.ErrNotInitialized.Error()
		}

		return result(fn())
	}
}

func result(err error) any {
	if err != nil {
		return err.Error()
	}

	return js.Null()
}

// tapBytes returns a Uint8Array snapshot of the tap named by the first
// argument.
func tapBytes(read func(*lab.Tap) []byte) func([]js.Value) any {
	return func(args []js.Value) any {
		if engine == nil || len(args) < 1 {
			return js.Global().Get("Uint8Array").New(0)
		}

		name := args[0].String()
		for _, t := range engine.Taps() {
			if t.Name() != name {
				continue
			}

			data := read(t)
			arr := js.Global().Get("Uint8Array").New(len(data))
			js.CopyBytesToJS(arr, data)

			return arr
		}

		return js.Global().Get("Uint8Array").New(0)
	}
}
