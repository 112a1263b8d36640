// Package graph renders a small directed graph of audio nodes in fixed-size
// quanta.
//
// Edges are explicit (from, to) pairs. A node's input for a quantum is the
// sum of the outputs of every node connected to it, so parallel paths that
// meet at one node are mixed, not averaged. Nodes run in a stable
// topological order; connections that would close a cycle are rejected.
// Feedback loops therefore live inside a node (see DelayNode).
//
// The same Graph type drives real-time pulls (Render on demand) and offline
// renders (Offline), which keeps the two paths sample-identical for the same
// topology and parameters.
package graph
