package sampler

import (
	"slices"
	"testing"

	"github.com/cwbudde/algo-sampler/dsp/eq"
	"github.com/cwbudde/algo-sampler/dsp/graph"
)

func testHandles() Handles {
	h := Handles{Destination: 0, Source: 1, EQSum: 2, Effect: 20, Preview: 21, Master: 13, Analyser: 14}
	for i := range h.Filters {
		h.Filters[i] = graph.NodeID(3 + i)
	}

	return h
}

func hasEdge(edges []graph.Edge, from, to graph.NodeID) bool {
	return slices.Contains(edges, graph.Edge{From: from, To: to})
}

func TestPlanRouting(t *testing.T) {
	h := testHandles()

	tests := []struct {
		kind    Kind
		routing Routing
		present [][2]graph.NodeID
		absent  [][2]graph.NodeID
	}{
		{
			kind:    KindNone,
			routing: RoutingClean,
			present: [][2]graph.NodeID{{h.Source, h.EQSum}, {h.EQSum, h.Filters[0]}},
			absent:  [][2]graph.NodeID{{h.Source, h.Effect}, {h.EQSum, h.Preview}},
		},
		{
			kind:    KindDistortion,
			routing: RoutingSerial,
			present: [][2]graph.NodeID{{h.Source, h.Effect}, {h.Effect, h.EQSum}, {h.EQSum, h.Preview}, {h.Preview, h.Filters[0]}},
			absent:  [][2]graph.NodeID{{h.Source, h.EQSum}, {h.EQSum, h.Filters[0]}},
		},
		{
			kind:    KindBitcrush,
			routing: RoutingSerial,
			present: [][2]graph.NodeID{{h.Source, h.Effect}, {h.Effect, h.EQSum}},
			absent:  [][2]graph.NodeID{{h.Source, h.EQSum}},
		},
		{
			kind:    KindDelay,
			routing: RoutingParallel,
			present: [][2]graph.NodeID{{h.Source, h.EQSum}, {h.Source, h.Effect}, {h.Effect, h.EQSum}, {h.EQSum, h.Preview}},
		},
		{
			kind:    KindReverse,
			routing: RoutingClean,
			present: [][2]graph.NodeID{{h.Source, h.EQSum}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			top := Plan(tt.kind, h)
			if top.Routing != tt.routing {
				t.Fatalf("Routing = %s, want %s", top.Routing, tt.routing)
			}

			for _, e := range tt.present {
				if !hasEdge(top.Edges, e[0], e[1]) {
					t.Fatalf("missing edge %d->%d in %v", e[0], e[1], top.Edges)
				}
			}

			for _, e := range tt.absent {
				if hasEdge(top.Edges, e[0], e[1]) {
					t.Fatalf("unexpected edge %d->%d", e[0], e[1])
				}
			}

			for i := 1; i < eq.Bands; i++ {
				if !hasEdge(top.Edges, h.Filters[i-1], h.Filters[i]) {
					t.Fatalf("filter %d not chained", i)
				}
			}

			for _, e := range [][2]graph.NodeID{{h.Filters[eq.Bands-1], h.Master}, {h.Master, h.Destination}, {h.Master, h.Analyser}} {
				if !hasEdge(top.Edges, e[0], e[1]) {
					t.Fatalf("missing tail edge %d->%d", e[0], e[1])
				}
			}
		})
	}
}

func TestPlanIsPureAndSorted(t *testing.T) {
	h := testHandles()

	a := Plan(KindDelay, h)
	b := Plan(KindDelay, h)

	if !slices.Equal(a.Edges, b.Edges) {
		t.Fatalf("Plan not deterministic: %v vs %v", a.Edges, b.Edges)
	}

	if !slices.IsSortedFunc(a.Edges, func(x, y graph.Edge) int {
		if x.From != y.From {
			return int(x.From - y.From)
		}

		return int(x.To - y.To)
	}) {
		t.Fatalf("edges not sorted: %v", a.Edges)
	}
}

func TestPlanWithoutEffectNodesIsClean(t *testing.T) {
	h := testHandles()
	h.Effect, h.Preview = NoNode, NoNode

	top := Plan(KindDistortion, h)
	if top.Routing != RoutingClean {
		t.Fatalf("Routing = %s, want clean", top.Routing)
	}

	for _, e := range top.Edges {
		if e.From == NoNode || e.To == NoNode {
			t.Fatalf("edge references NoNode: %v", e)
		}
	}
}
