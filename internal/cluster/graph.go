// Package cluster turns verified similar pairs into equivalence classes
// via an undirected similarity graph and connected components (spec
// §4.5).
package cluster

import (
	"github.com/standardbeagle/codecollage/internal/minhash"
	"github.com/standardbeagle/codecollage/internal/types"
)

// Graph is an undirected adjacency list over snippet ids, with the edge
// weight (estimated Jaccard) retained for centroid selection.
type Graph struct {
	adj     map[types.SnippetID][]types.SnippetID
	weights map[[2]types.SnippetID]float64
}

// BuildGraph adds one edge per pair whose similarity is at least
// threshold (spec §4.5: "edge for every verified pair (threshold
// applied once — use either similarity_threshold or a second
// cluster_threshold, typically looser)").
func BuildGraph(pairs []minhash.DuplicatePair, threshold float64) *Graph {
	g := &Graph{
		adj:     make(map[types.SnippetID][]types.SnippetID),
		weights: make(map[[2]types.SnippetID]float64),
	}
	for _, p := range pairs {
		if p.Similarity < threshold {
			continue
		}
		g.addEdge(p.A, p.B, p.Similarity)
	}
	return g
}

func (g *Graph) addEdge(a, b types.SnippetID, weight float64) {
	g.adj[a] = append(g.adj[a], b)
	g.adj[b] = append(g.adj[b], a)
	g.weights[edgeKey(a, b)] = weight
}

func edgeKey(a, b types.SnippetID) [2]types.SnippetID {
	if a <= b {
		return [2]types.SnippetID{a, b}
	}
	return [2]types.SnippetID{b, a}
}

// WeightOf returns the stored edge weight between a and b, or 0 if they
// are not adjacent.
func (g *Graph) WeightOf(a, b types.SnippetID) float64 {
	return g.weights[edgeKey(a, b)]
}

// Neighbors returns id's adjacent snippet ids.
func (g *Graph) Neighbors(id types.SnippetID) []types.SnippetID {
	return g.adj[id]
}
