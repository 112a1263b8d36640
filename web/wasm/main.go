//go:build js && wasm

package main

import (
	"bytes"
	"context"
	"syscall/js"

	"github.com/cwbudde/algo-sampler/dsp/wav"
	"github.com/cwbudde/algo-sampler/internal/sampler"
)

var (
	session *sampler.Session
	scratch [][]float64
	funcs   []js.Func
)

func main() {
	api := js.Global().Get("Object").New()
	api.Set("init", export(func(args []js.Value) any {
		sr := 48000.0
		if len(args) > 0 {
			sr = args[0].Float()
		}
		if session != nil {
			session.Close()
		}
		s, err := sampler.NewSession(sampler.WithSampleRate(sr))
		if err != nil {
			return err.Error()
		}
		session = s
		return js.Null()
	}))

	api.Set("load", export(func(args []js.Value) any {
		if session == nil || len(args) < 2 {
			return "not initialized"
		}
		data := make([]byte, args[0].Length())
		js.CopyBytesToGo(data, args[0])
		buf, err := wav.Decode(bytes.NewReader(data))
		if err != nil {
			return err.Error()
		}
		if err := session.Load(args[1].String(), buf, true); err != nil {
			return err.Error()
		}
		return js.Null()
	}))

	api.Set("render", export(func(args []js.Value) any {
		if session == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		n := args[0].Int()
		ch := session.Chain().Channels()
		if len(scratch) != ch || len(scratch[0]) != n {
			scratch = make([][]float64, ch)
			for i := range scratch {
				scratch[i] = make([]float64, n)
			}
		}
		if err := session.Chain().Process(scratch); err != nil {
			return js.Global().Get("Float32Array").New(0)
		}
		arr := js.Global().Get("Float32Array").New(n * ch)
		for c := range scratch {
			for i, v := range scratch[c] {
				arr.SetIndex(c*n+i, v)
			}
		}
		return arr
	}))

	api.Set("addRegion", export(func(args []js.Value) any {
		if session == nil || len(args) < 2 {
			return js.Null()
		}
		r, ok := session.AddRegion(args[0].Float(), args[1].Float())
		if !ok {
			return js.Null()
		}
		return r.ID
	}))

	api.Set("regions", export(func(args []js.Value) any {
		if session == nil {
			return js.Global().Get("Array").New(0)
		}
		regions := session.Regions()
		arr := js.Global().Get("Array").New(len(regions))
		for i, r := range regions {
			obj := js.Global().Get("Object").New()
			obj.Set("id", r.ID)
			obj.Set("start", r.Start)
			obj.Set("end", r.End)
			obj.Set("loop", r.Loop)
			arr.SetIndex(i, obj)
		}
		return arr
	}))

	api.Set("halve", regionOp(func(id string) error { _, err := session.Halve(id); return err }))
	api.Set("double", regionOp(func(id string) error { _, err := session.Double(id); return err }))
	api.Set("deleteRegion", regionOp(func(id string) error { return session.DeleteRegion(id) }))
	api.Set("trim", regionOp(func(id string) error { return session.Trim(id) }))
	api.Set("loop", regionOp(func(id string) error { return session.LoopRegion(id) }))

	api.Set("applyEffect", export(func(args []js.Value) any {
		if session == nil || len(args) < 2 {
			return "not initialized"
		}
		kind, err := sampler.ParseKind(args[1].String())
		if err != nil {
			return err.Error()
		}
		return errValue(session.ApplyEffect(context.Background(), args[0].String(), kind))
	}))

	api.Set("adjust", export(func(args []js.Value) any {
		if session == nil || len(args) < 2 {
			return js.Null()
		}
		p, err := sampler.ParseParam(args[0].String())
		if err != nil {
			return js.Null()
		}
		v, err := session.Controller().Adjust(p, args[1].Float())
		if err != nil {
			return js.Null()
		}
		return v
	}))

	api.Set("volume", export(func(args []js.Value) any {
		if session == nil || len(args) < 1 {
			return js.Null()
		}
		return session.Controller().SetVolumeKnob(args[0].Float())
	}))

	api.Set("freeze", export(func(args []js.Value) any {
		if session == nil {
			return "not initialized"
		}
		return errValue(session.Freeze(context.Background()))
	}))

	api.Set("cancel", export(func(args []js.Value) any {
		if session == nil {
			return js.Null()
		}
		return errValue(session.Cancel())
	}))

	api.Set("setEQ", export(func(args []js.Value) any {
		if session == nil || len(args) < 2 {
			return js.Null()
		}
		v, err := session.Chain().SetEQGain(args[0].Int(), args[1].Float())
		if err != nil {
			return js.Null()
		}
		return v
	}))

	api.Set("drawEQ", export(func(args []js.Value) any {
		if session == nil || len(args) < 4 {
			return js.Null()
		}
		return errValue(session.Chain().DrawEQ(args[0].Int(), args[1].Float(), args[2].Int(), args[3].Float()))
	}))

	api.Set("resetEQ", export(func(args []js.Value) any {
		if session == nil {
			return js.Null()
		}
		if len(args) > 0 {
			return errValue(session.Chain().ResetEQBand(args[0].Int()))
		}
		session.Chain().ResetEQ()
		return js.Null()
	}))

	api.Set("spectrum", export(func(args []js.Value) any {
		if session == nil || len(args) < 1 {
			return js.Global().Get("Float32Array").New(0)
		}
		input := args[0]
		freqs := make([]float64, input.Length())
		for i := range freqs {
			freqs[i] = input.Index(i).Float()
		}
		db := session.Chain().Spectrum(freqs)
		arr := js.Global().Get("Float32Array").New(len(db))
		for i := range db {
			arr.SetIndex(i, db[i])
		}
		return arr
	}))

	api.Set("export", export(func(args []js.Value) any {
		if session == nil {
			return js.Null()
		}
		blob, err := session.Export(context.Background())
		if err != nil {
			return js.Null()
		}
		arr := js.Global().Get("Uint8Array").New(len(blob))
		js.CopyBytesToJS(arr, blob)
		return arr
	}))

	api.Set("play", export(func(args []js.Value) any {
		if session != nil {
			session.Play()
		}
		return js.Null()
	}))

	api.Set("pause", export(func(args []js.Value) any {
		if session != nil {
			session.Pause()
		}
		return js.Null()
	}))

	api.Set("stop", export(func(args []js.Value) any {
		if session != nil {
			session.Stop()
		}
		return js.Null()
	}))

	api.Set("seek", export(func(args []js.Value) any {
		if session != nil && len(args) > 0 {
			session.Seek(args[0].Float())
		}
		return js.Null()
	}))

	api.Set("position", export(func(args []js.Value) any {
		if session == nil {
			return 0
		}
		return session.Position()
	}))

	api.Set("bpm", export(func(args []js.Value) any {
		if session == nil {
			return js.Null()
		}
		if bpm, ok := session.BPM(); ok {
			return bpm
		}
		return js.Null()
	}))

	js.Global().Set("AlgoSampler", api)
	select {}
}

// regionOp exports fn taking a region ID as its first argument.
func regionOp(fn func(id string) error) js.Func {
	return export(func(args []js.Value) any {
		if session == nil || len(args) < 1 {
			return "not initialized"
		}
		return errValue(fn(args[0].String()))
	})
}

// errValue maps nil to null and an error to its message.
func errValue(err error) any {
	if err == nil {
		return js.Null()
	}
	return err.Error()
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
