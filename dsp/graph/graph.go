package graph

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/cwbudde/algo-sampler/dsp/buffer"
	"github.com/cwbudde/algo-sampler/dsp/core"
)

var (
	// ErrUnknownNode is returned for IDs not present in the graph.
	ErrUnknownNode = errors.New("graph: unknown node")
	// ErrCycle is returned when a connection would close a loop.
	ErrCycle = errors.New("graph: connection would create a cycle")
	// ErrShape is returned when a render target does not match the graph.
	ErrShape = errors.New("graph: output shape mismatch")
)

var blocks = buffer.NewPool()

type entry struct {
	name string
	node Node
	out  *buffer.Block
	live bool
}

// Graph is a set of nodes and edges rendered into a destination node.
// A Graph is not safe for concurrent use.
type Graph struct {
	cfg      core.RenderConfig
	channels int

	nodes []entry
	edges []Edge
	dest  NodeID

	order    []NodeID
	incoming [][]NodeID
	dirty    bool

	in    *buffer.Block
	inV   [][]float64
	outV  [][]float64
	frame int64
}

// New returns an empty graph with a destination node.
func New(channels int, opts ...core.RenderOption) (*Graph, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("graph: channel count must be > 0: %d", channels)
	}

	g := &Graph{
		cfg:      core.ApplyRenderOptions(opts...),
		channels: channels,
		dirty:    true,
	}
	g.in = blocks.Get(channels, g.cfg.BlockSize)
	g.inV = make([][]float64, channels)
	g.outV = make([][]float64, channels)
	g.dest = g.Add("destination", NewSum())

	return g, nil
}

// SampleRate returns the render sample rate.
func (g *Graph) SampleRate() float64 { return g.cfg.SampleRate }

// BlockSize returns the render quantum in frames.
func (g *Graph) BlockSize() int { return g.cfg.BlockSize }

// Channels returns the channel count of every node buffer.
func (g *Graph) Channels() int { return g.channels }

// Destination returns the node whose output Render delivers.
func (g *Graph) Destination() NodeID { return g.dest }

// Add inserts n and returns its ID.
func (g *Graph) Add(name string, n Node) NodeID {
	g.nodes = append(g.nodes, entry{
		name: name,
		node: n,
		out:  blocks.Get(g.channels, g.cfg.BlockSize),
		live: true,
	})
	g.dirty = true

	return NodeID(len(g.nodes) - 1)
}

// Remove disconnects id from everything and drops it. Removing an unknown or
// already removed node is a no-op.
func (g *Graph) Remove(id NodeID) {
	if !g.has(id) || id == g.dest {
		return
	}

	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool {
		return e.From == id || e.To == id
	})

	e := &g.nodes[id]
	blocks.Put(e.out)
	e.out = nil
	e.node = nil
	e.live = false
	g.dirty = true
}

// Node returns the node behind id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	if !g.has(id) {
		return nil, false
	}

	return g.nodes[id].node, true
}

// Name returns the label id was added with.
func (g *Graph) Name(id NodeID) string {
	if id < 0 || int(id) >= len(g.nodes) {
		return ""
	}

	return g.nodes[id].name
}

// Len returns the number of live nodes, destination included.
func (g *Graph) Len() int {
	n := 0
	for _, e := range g.nodes {
		if e.live {
			n++
		}
	}

	return n
}

// Connect adds the edge from -> to. Connecting an existing edge again is a
// no-op.
func (g *Graph) Connect(from, to NodeID) error {
	if !g.has(from) {
		return fmt.Errorf("%w: %d", ErrUnknownNode, from)
	}

	if !g.has(to) {
		return fmt.Errorf("%w: %d", ErrUnknownNode, to)
	}

	if from == to || g.reaches(to, from) {
		return fmt.Errorf("%w: %d->%d", ErrCycle, from, to)
	}

	e := Edge{From: from, To: to}

	i, found := slices.BinarySearchFunc(g.edges, e, compareEdges)
	if found {
		return nil
	}

	g.edges = slices.Insert(g.edges, i, e)
	g.dirty = true

	return nil
}

// Disconnect removes the edge from -> to and reports whether it existed.
// Missing edges and unknown nodes are not an error.
func (g *Graph) Disconnect(from, to NodeID) bool {
	i, found := slices.BinarySearchFunc(g.edges, Edge{From: from, To: to}, compareEdges)
	if !found {
		return false
	}

	g.edges = slices.Delete(g.edges, i, i+1)
	g.dirty = true

	return true
}

// DisconnectAll removes every outgoing edge of id and returns how many were
// removed.
func (g *Graph) DisconnectAll(id NodeID) int {
	before := len(g.edges)

	g.edges = slices.DeleteFunc(g.edges, func(e Edge) bool { return e.From == id })
	if len(g.edges) != before {
		g.dirty = true
	}

	return before - len(g.edges)
}

// Connected reports whether the edge from -> to exists.
func (g *Graph) Connected(from, to NodeID) bool {
	_, found := slices.BinarySearchFunc(g.edges, Edge{From: from, To: to}, compareEdges)
	return found
}

// Edges returns a sorted copy of all edges.
func (g *Graph) Edges() []Edge {
	return slices.Clone(g.edges)
}

// Render fills out (channels x frames) with the destination output, running
// as many quanta as needed.
func (g *Graph) Render(out [][]float64) error {
	return g.render(context.Background(), out)
}

// Close returns node buffers to the shared pool. The graph must not be used
// afterwards.
func (g *Graph) Close() {
	for i := range g.nodes {
		if g.nodes[i].out != nil {
			blocks.Put(g.nodes[i].out)
			g.nodes[i].out = nil
		}
	}

	blocks.Put(g.in)
	g.in = nil
}

func (g *Graph) render(ctx context.Context, out [][]float64) error {
	if len(out) != g.channels {
		return fmt.Errorf("%w: %d channels, want %d", ErrShape, len(out), g.channels)
	}

	frames := len(out[0])
	for ch := range out {
		if len(out[ch]) != frames {
			return fmt.Errorf("%w: channel %d has %d frames, want %d", ErrShape, ch, len(out[ch]), frames)
		}
	}

	if g.dirty {
		g.compile()
	}

	for off := 0; off < frames; off += g.cfg.BlockSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := min(g.cfg.BlockSize, frames-off)
		g.quantum(n)

		dst := g.nodes[g.dest].out.Data
		for ch := range out {
			copy(out[ch][off:off+n], dst[ch][:n])
		}
	}

	return nil
}

func (g *Graph) quantum(frames int) {
	pctx := &Context{SampleRate: g.cfg.SampleRate, Frame: g.frame}

	in, out := g.inV, g.outV

	for _, id := range g.order {
		for ch := range in {
			in[ch] = g.in.Data[ch][:frames]
			core.Zero(in[ch])
		}

		for _, parent := range g.incoming[id] {
			src := g.nodes[parent].out.Data
			for ch := range in {
				core.AddInto(in[ch], src[ch][:frames])
			}
		}

		e := g.nodes[id]
		for ch := range out {
			out[ch] = e.out.Data[ch][:frames]
			core.Zero(out[ch])
		}

		e.node.Process(pctx, in, out)
	}

	g.frame += int64(frames)
}

// compile orders live nodes with Kahn's algorithm. Seeds are taken in ID
// order and edges are kept sorted, so equal topologies give equal orders.
func (g *Graph) compile() {
	n := len(g.nodes)
	indegree := make([]int, n)
	outgoing := make([][]NodeID, n)
	g.incoming = make([][]NodeID, n)

	for _, e := range g.edges {
		outgoing[e.From] = append(outgoing[e.From], e.To)
		g.incoming[e.To] = append(g.incoming[e.To], e.From)
		indegree[e.To]++
	}

	queue := make([]NodeID, 0, n)
	for id := range n {
		if g.nodes[id].live && indegree[id] == 0 {
			queue = append(queue, NodeID(id))
		}
	}

	g.order = g.order[:0]
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		g.order = append(g.order, id)
		for _, child := range outgoing[id] {
			indegree[child]--
			if indegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	g.dirty = false
}

func (g *Graph) has(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes) && g.nodes[id].live
}

// reaches reports whether to is reachable from from along existing edges.
func (g *Graph) reaches(from, to NodeID) bool {
	seen := map[NodeID]bool{from: true}
	stack := []NodeID{from}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if id == to {
			return true
		}

		for _, e := range g.edges {
			if e.From == id && !seen[e.To] {
				seen[e.To] = true
				stack = append(stack, e.To)
			}
		}
	}

	return false
}

func compareEdges(a, b Edge) int {
	switch {
	case edgeLess(a, b):
		return -1
	case edgeLess(b, a):
		return 1
	default:
		return 0
	}
}
