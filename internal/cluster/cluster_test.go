package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codecollage/internal/config"
	"github.com/standardbeagle/codecollage/internal/minhash"
	"github.com/standardbeagle/codecollage/internal/types"
)

func buildLinearGraph() (*Graph, []types.SnippetID) {
	// a-b-c chain plus isolated d.
	pairs := []minhash.DuplicatePair{
		{A: "a", B: "b", Similarity: 0.9},
		{A: "b", B: "c", Similarity: 0.85},
	}
	g := BuildGraph(pairs, 0.7)
	return g, []types.SnippetID{"a", "b", "c", "d"}
}

func TestConnectedComponents_ChainPlusIsolatedNode(t *testing.T) {
	g, ids := buildLinearGraph()
	components := ConnectedComponents(g, ids)

	require.Len(t, components, 2)
	assert.ElementsMatch(t, []types.SnippetID{"a", "b", "c"}, components[0])
	assert.Equal(t, []types.SnippetID{"d"}, components[1])
}

func TestConnectedComponents_VisitingOrderFollowsAllIDs(t *testing.T) {
	pairs := []minhash.DuplicatePair{{A: "x", B: "y", Similarity: 0.9}}
	g := BuildGraph(pairs, 0.7)

	first := ConnectedComponents(g, []types.SnippetID{"y", "x"})
	require.Len(t, first, 1)
	assert.Equal(t, types.SnippetID("y"), first[0][0], "seed order fixes traversal start")
}

func TestConnectedComponents_EdgeBelowThresholdIsDropped(t *testing.T) {
	pairs := []minhash.DuplicatePair{{A: "a", B: "b", Similarity: 0.5}}
	g := BuildGraph(pairs, 0.7)
	components := ConnectedComponents(g, []types.SnippetID{"a", "b"})

	require.Len(t, components, 2)
}

func TestSelectCentroid_Singleton(t *testing.T) {
	g := BuildGraph(nil, 0.7)
	id, sim := selectCentroid(g, []types.SnippetID{"only"})
	assert.Equal(t, types.SnippetID("only"), id)
	assert.Equal(t, 1.0, sim)
}

func TestSelectCentroid_PicksHighestMeanSimilarity(t *testing.T) {
	// b is similar to both a and c; a and c are not directly connected.
	pairs := []minhash.DuplicatePair{
		{A: "a", B: "b", Similarity: 0.9},
		{A: "b", B: "c", Similarity: 0.9},
	}
	g := BuildGraph(pairs, 0.7)
	id, _ := selectCentroid(g, []types.SnippetID{"a", "b", "c"})
	assert.Equal(t, types.SnippetID("b"), id)
}

func TestSelectCentroid_TieBrokenByFirstOccurrence(t *testing.T) {
	pairs := []minhash.DuplicatePair{
		{A: "a", B: "b", Similarity: 0.8},
		{A: "c", B: "d", Similarity: 0.8},
		{A: "a", B: "c", Similarity: 0.8},
		{A: "a", B: "d", Similarity: 0.8},
		{A: "b", B: "c", Similarity: 0.8},
		{A: "b", B: "d", Similarity: 0.8},
	}
	g := BuildGraph(pairs, 0.7)
	id, sim := selectCentroid(g, []types.SnippetID{"a", "b", "c", "d"})
	assert.Equal(t, types.SnippetID("a"), id, "all members tie on mean similarity, first wins")
	assert.InDelta(t, 0.8, sim, 1e-9)
}

func TestBuildClusters_DropsSingletonsByDefault(t *testing.T) {
	idx := minhash.NewLSHIndex(4, 5)
	ctx := minhash.NewLshContext(1, 20)
	sigA := minhash.Signature(ctx, []string{"func", "add", "a", "b", "return", "a", "plus", "b"}, 3)
	sigB := minhash.Signature(ctx, []string{"func", "add", "a", "b", "return", "a", "plus", "b", "end"}, 3)
	sigLonely := minhash.Signature(ctx, []string{"completely", "unrelated", "stream"}, 3)

	idx.Add("a", sigA)
	idx.Add("b", sigB)
	idx.Add("lonely", sigLonely)

	cfg := config.LSH{ClusterThreshold: 0.3}
	clusters := BuildClusters(idx, []types.SnippetID{"a", "b", "lonely"}, cfg, Options{MinClusterSize: 2})

	require.Len(t, clusters, 1)
	assert.ElementsMatch(t, []types.SnippetID{"a", "b"}, clusters[0].SnippetIDs)
}

func TestBuildClusters_EmitSingletonsWhenRequested(t *testing.T) {
	idx := minhash.NewLSHIndex(4, 5)
	ctx := minhash.NewLshContext(1, 20)
	sigLonely := minhash.Signature(ctx, []string{"completely", "unrelated", "stream"}, 3)
	idx.Add("lonely", sigLonely)

	cfg := config.LSH{ClusterThreshold: 0.3}
	clusters := BuildClusters(idx, []types.SnippetID{"lonely"}, cfg, Options{MinClusterSize: 2, EmitSingletons: true})

	require.Len(t, clusters, 1)
	assert.Equal(t, []types.SnippetID{"lonely"}, clusters[0].SnippetIDs)
	assert.Equal(t, types.SnippetID("lonely"), clusters[0].CentroidID)
}

func TestDedup_ExactHashMatchDropsSecondOccurrence(t *testing.T) {
	ctx := minhash.NewLshContext(1, 20)
	sig := minhash.Signature(ctx, []string{"func", "add", "a", "b"}, 3)

	snippets := []types.Snippet{
		{ID: "1", Hash: "same", Signature: sig},
		{ID: "2", Hash: "same", Signature: sig},
	}

	kept := Dedup(snippets, 0.8)
	require.Len(t, kept, 1)
	assert.Equal(t, types.SnippetID("1"), kept[0].ID)
}

func TestDedup_NearDuplicateDetectedViaLSH(t *testing.T) {
	ctx := minhash.NewLshContext(1, 100)
	sigA := minhash.Signature(ctx, []string{"func", "add", "a", "b", "return", "a", "plus", "b"}, 3)
	sigB := minhash.Signature(ctx, []string{"func", "add", "a", "b", "return", "a", "plus", "b", "end"}, 3)

	snippets := []types.Snippet{
		{ID: "1", Hash: "h1", Signature: sigA},
		{ID: "2", Hash: "h2", Signature: sigB},
	}

	kept := Dedup(snippets, 0.3)
	require.Len(t, kept, 1, "near-duplicate under a loose threshold should be dropped")
}

func TestDedup_OrderSensitive(t *testing.T) {
	ctx := minhash.NewLshContext(1, 100)
	sigA := minhash.Signature(ctx, []string{"func", "add", "a", "b", "return", "a", "plus", "b"}, 3)
	sigB := minhash.Signature(ctx, []string{"func", "add", "a", "b", "return", "a", "plus", "b", "end"}, 3)

	forward := []types.Snippet{
		{ID: "1", Hash: "h1", Signature: sigA},
		{ID: "2", Hash: "h2", Signature: sigB},
	}
	reversed := []types.Snippet{
		{ID: "2", Hash: "h2", Signature: sigB},
		{ID: "1", Hash: "h1", Signature: sigA},
	}

	keptForward := Dedup(forward, 0.3)
	keptReversed := Dedup(reversed, 0.3)

	require.Len(t, keptForward, 1)
	require.Len(t, keptReversed, 1)
	assert.NotEqual(t, keptForward[0].ID, keptReversed[0].ID, "kept survivor follows input order, not identity")
}
