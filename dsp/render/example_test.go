package render_test

import (
	"context"
	"fmt"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
	"github.com/cwbudde/algo-sampler/dsp/render"
)

func ExampleRenderEffect() {
	src, _ := buffer.New(1, 8, 8)
	for i := range src.Channel(0) {
		src.Channel(0)[i] = float64(i)
	}

	out, err := render.RenderEffect(context.Background(), src, 0.25, 0.75, render.Reverse{})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(out.Channel(0))
	// Output: [0 1 5 4 3 2 6 7]
}
