package sampler

import (
	"slices"

	"github.com/cwbudde/algo-sampler/dsp/eq"
	"github.com/cwbudde/algo-sampler/dsp/graph"
)

// NoNode marks an absent handle.
const NoNode graph.NodeID = -1

// Routing is the shape of the live chain.
type Routing int

const (
	// RoutingClean is source -> eqSum -> filters -> master.
	RoutingClean Routing = iota
	// RoutingSerial inserts the effect between source and eqSum.
	RoutingSerial
	// RoutingParallel feeds eqSum with both the dry source and the effect.
	RoutingParallel
)

func (r Routing) String() string {
	switch r {
	case RoutingClean:
		return "clean"
	case RoutingSerial:
		return "serial"
	case RoutingParallel:
		return "parallel"
	default:
		return "unknown"
	}
}

// RoutingFor returns the routing used while k is previewed.
func RoutingFor(k Kind) Routing {
	switch k {
	case KindDistortion, KindBitcrush:
		return RoutingSerial
	case KindDelay:
		return RoutingParallel
	case KindNone, KindReverse:
		return RoutingClean
	default:
		return RoutingClean
	}
}

// Handles names the nodes a plan wires together. Effect and Preview are
// NoNode when no preview is active.
type Handles struct {
	Source      graph.NodeID
	Effect      graph.NodeID
	EQSum       graph.NodeID
	Preview     graph.NodeID
	Filters     [eq.Bands]graph.NodeID
	Master      graph.NodeID
	Analyser    graph.NodeID
	Destination graph.NodeID
}

// Topology is the complete edge set of the live chain.
type Topology struct {
	Routing Routing
	Edges   []graph.Edge
}

// Plan derives the topology from the previewed kind and the node handles.
// It is a pure function: equal inputs give equal, sorted edge sets.
func Plan(k Kind, h Handles) Topology {
	routing := RoutingFor(k)
	if routing != RoutingClean && (h.Effect == NoNode || h.Preview == NoNode) {
		routing = RoutingClean
	}

	edges := make([]graph.Edge, 0, eq.Bands+8)
	add := func(from, to graph.NodeID) {
		edges = append(edges, graph.Edge{From: from, To: to})
	}

	switch routing {
	case RoutingSerial:
		add(h.Source, h.Effect)
		add(h.Effect, h.EQSum)
	case RoutingParallel:
		add(h.Source, h.EQSum)
		add(h.Source, h.Effect)
		add(h.Effect, h.EQSum)
	case RoutingClean:
		add(h.Source, h.EQSum)
	}

	first := h.EQSum
	if routing != RoutingClean {
		add(h.EQSum, h.Preview)
		first = h.Preview
	}

	add(first, h.Filters[0])

	for i := 1; i < eq.Bands; i++ {
		add(h.Filters[i-1], h.Filters[i])
	}

	add(h.Filters[eq.Bands-1], h.Master)
	add(h.Master, h.Destination)
	add(h.Master, h.Analyser)

	slices.SortFunc(edges, func(a, b graph.Edge) int {
		if a.From != b.From {
			return int(a.From - b.From)
		}

		return int(a.To - b.To)
	})

	return Topology{Routing: routing, Edges: edges}
}
