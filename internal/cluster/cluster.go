package cluster

import (
	"time"

	"github.com/standardbeagle/codecollage/internal/config"
	"github.com/standardbeagle/codecollage/internal/logging"
	"github.com/standardbeagle/codecollage/internal/minhash"
	"github.com/standardbeagle/codecollage/internal/types"
)

// ConnectedComponents enumerates components of g by iterative DFS with
// an explicit stack (spec §4.5 "Enumerate connected components by
// iterative DFS" — not union-find, so every traversal edge stays
// inspectable for the "path in the similarity graph" invariant in §8).
// allIDs fixes visiting order, which in turn fixes component (and so
// cluster) labelling order (spec §5 "Ordering guarantees").
func ConnectedComponents(g *Graph, allIDs []types.SnippetID) [][]types.SnippetID {
	visited := make(map[types.SnippetID]bool, len(allIDs))
	var components [][]types.SnippetID

	for _, seed := range allIDs {
		if visited[seed] {
			continue
		}

		var component []types.SnippetID
		stack := []types.SnippetID{seed}
		visited[seed] = true

		for len(stack) > 0 {
			n := len(stack) - 1
			id := stack[n]
			stack = stack[:n]
			component = append(component, id)

			for _, next := range g.Neighbors(id) {
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}

		components = append(components, component)
	}

	return components
}

// Options controls BuildClusters' policy choices that the spec leaves
// to the caller.
type Options struct {
	MinClusterSize int  // spec §4.5 "min_cluster_size"
	EmitSingletons bool // spec §4.5: singletons may be dropped or emitted, caller's choice
}

// BuildClusters verifies candidate pairs against cfg's cluster
// threshold, builds the similarity graph, extracts connected
// components by iterative DFS, and selects a centroid per component
// (spec §4.5). snippetOrder fixes visiting (and so labelling) order.
func BuildClusters(idx *minhash.LSHIndex, snippetOrder []types.SnippetID, cfg config.LSH, opts Options) []types.Cluster {
	pairs := idx.FindAllDuplicates(cfg.ClusterThreshold)
	g := BuildGraph(pairs, cfg.ClusterThreshold)
	components := ConnectedComponents(g, snippetOrder)

	var clusters []types.Cluster
	for _, members := range components {
		if len(members) < opts.MinClusterSize {
			if !opts.EmitSingletons || len(members) != 1 {
				continue
			}
		}

		centroid, similarity := selectCentroid(g, members)
		clusters = append(clusters, types.Cluster{
			SnippetIDs: members,
			CentroidID: centroid,
			Similarity: similarity,
			CreatedAt:  time.Now().Unix(),
		})
	}

	logging.Stage("index", "built %d clusters from %d candidate pairs", len(clusters), len(pairs))
	return clusters
}

// selectCentroid returns the member maximising mean Jaccard to all other
// members, ties broken by first occurrence in members (spec §4.5
// "Centroid selection"). A singleton's centroid is itself with
// similarity 1.0 by convention. Members connected only transitively
// (no direct verified edge) contribute a weight of 0 to the mean — the
// graph never computed their pairwise Jaccard, and treating it as
// unknown-but-nonzero would overstate cluster cohesion.
func selectCentroid(g *Graph, members []types.SnippetID) (types.SnippetID, float64) {
	if len(members) == 1 {
		return members[0], 1.0
	}

	var bestID types.SnippetID
	bestMean := -1.0
	var clusterSum float64
	var clusterPairs int

	for i, a := range members {
		var sum float64
		for j, b := range members {
			if i == j {
				continue
			}
			w := g.WeightOf(a, b)
			sum += w
			if j > i {
				clusterSum += w
				clusterPairs++
			}
		}
		mean := sum / float64(len(members)-1)
		if mean > bestMean {
			bestMean = mean
			bestID = a
		}
	}

	overallMean := 1.0
	if clusterPairs > 0 {
		overallMean = clusterSum / float64(clusterPairs)
	}
	return bestID, overallMean
}
