package buffer

import (
	"sync"

	"github.com/cwbudde/algo-sampler/dsp/core"
)

// Block is a planar channels x frames scratch area.
type Block struct {
	Data [][]float64
}

// Pool provides sync.Pool-based Block reuse to reduce GC pressure in the
// render loops of the live and offline graphs.
type Pool struct {
	pool sync.Pool
}

// NewPool returns a Pool ready for use.
func NewPool() *Pool {
	return &Pool{
		pool: sync.Pool{
			New: func() any {
				return &Block{}
			},
		},
	}
}

// Get returns a zeroed Block with the requested shape.
// Callers must return it via Put when done.
func (p *Pool) Get(channels, frames int) *Block {
	blk := p.pool.Get().(*Block)
	blk.Data = core.EnsureBlock(blk.Data, channels, frames)
	core.ZeroBlock(blk.Data)

	return blk
}

// Put returns a Block to the pool for reuse.
// The caller must not use the block after calling Put.
func (p *Pool) Put(blk *Block) {
	if blk == nil {
		return
	}

	p.pool.Put(blk)
}
