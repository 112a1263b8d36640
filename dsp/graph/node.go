package graph

import "fmt"

// Node processes one quantum. in holds the summed inputs, out receives the
// node output; both are channels x frames and never alias.
type Node interface {
	Process(ctx *Context, in, out [][]float64)
}

// Context describes the quantum being rendered.
type Context struct {
	SampleRate float64
	// Frame is the absolute index of the first frame of the quantum.
	Frame int64
}

// NodeID identifies a node within one Graph. IDs are never reused.
type NodeID int

// Edge is a directed connection.
type Edge struct {
	From NodeID
	To   NodeID
}

func (e Edge) String() string {
	return fmt.Sprintf("%d->%d", e.From, e.To)
}

func edgeLess(a, b Edge) bool {
	if a.From != b.From {
		return a.From < b.From
	}

	return a.To < b.To
}
