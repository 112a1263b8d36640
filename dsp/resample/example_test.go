package resample_test

import (
	"fmt"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
	"github.com/cwbudde/algo-sampler/dsp/resample"
)

func ExampleNewForRates() {
	r, _ := resample.NewForRates(44100, 48000)
	up, down := r.Ratio()
	fmt.Printf("ratio=%d/%d\n", up, down)
	// Output:
	// ratio=160/147
}

func ExampleBuffer() {
	b, _ := buffer.New(2, 44100, 44100)
	out, _ := resample.Buffer(b, 48000)
	fmt.Println(out.Frames(), out.SampleRate)
	// Output:
	// 48000 48000
}
