package minhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/codecollage/internal/types"
)

func TestSignatureLength(t *testing.T) {
	ctx := NewLshContext(0x5eed, 100)
	sig := Signature(ctx, []string{"func", "add", "a", "b", "return"}, 3)
	assert.Len(t, sig, 100)
}

func TestSignatureDeterministicGivenFixedSeed(t *testing.T) {
	ctx1 := NewLshContext(42, 20)
	ctx2 := NewLshContext(42, 20)
	tokens := []string{"func", "add", "a", "b", "return", "a", "plus", "b"}
	assert.Equal(t, Signature(ctx1, tokens, 3), Signature(ctx2, tokens, 3))
}

func TestSignatureShingleWindowLargerThanTokenCount(t *testing.T) {
	ctx := NewLshContext(1, 10)
	sig := Signature(ctx, []string{"a", "b"}, 3)
	for _, v := range sig {
		assert.Equal(t, uint32(sentinelMax), v)
	}
}

func TestEstimatedJaccard_IdenticalSignaturesAgreeFully(t *testing.T) {
	ctx := NewLshContext(7, 30)
	tokens := []string{"func", "add", "a", "b", "return", "a", "plus", "b"}
	sig := Signature(ctx, tokens, 3)
	assert.Equal(t, 1.0, EstimatedJaccard(sig, sig))
}

func TestEstimatedJaccard_LengthMismatchReturnsZero(t *testing.T) {
	assert.Equal(t, 0.0, EstimatedJaccard([]uint32{1, 2}, []uint32{1}))
}

func TestShingles_DeduplicatesRepeatedWindows(t *testing.T) {
	shingles := Shingles([]string{"a", "b", "a", "b"}, 2)
	assert.ElementsMatch(t, []string{"a b", "b a"}, shingles)
}

func TestLSHIndex_CandidatePairsAndVerification(t *testing.T) {
	ctx := NewLshContext(99, 20)
	idx := NewLSHIndex(4, 5)

	sigA := Signature(ctx, []string{"func", "add", "a", "b", "return", "a", "plus", "b"}, 3)
	sigB := Signature(ctx, []string{"func", "add", "a", "b", "return", "a", "plus", "b", "end"}, 3)
	sigC := Signature(ctx, []string{"completely", "unrelated", "token", "stream", "here", "now"}, 3)

	idx.Add("a", sigA)
	idx.Add("b", sigB)
	idx.Add("c", sigC)

	pairs := idx.CandidatePairs()
	require.NotEmpty(t, pairs)

	dupes := idx.FindAllDuplicates(0.3)
	found := false
	for _, d := range dupes {
		if (d.A == "a" && d.B == "b") || (d.A == "b" && d.B == "a") {
			found = true
		}
	}
	assert.True(t, found, "expected a/b to be found as similar")
}

func TestLSHIndex_QueryExcludesSelf(t *testing.T) {
	ctx := NewLshContext(5, 20)
	idx := NewLSHIndex(4, 5)
	sig := Signature(ctx, []string{"func", "add", "a", "b", "return"}, 3)
	idx.Add("only", sig)

	candidates := idx.Query("only")
	assert.Empty(t, candidates)
}

func TestLSHIndex_StatsTracksOccupancy(t *testing.T) {
	ctx := NewLshContext(1, 10)
	idx := NewLSHIndex(2, 5)
	idx.Add(types.SnippetID("s1"), Signature(ctx, []string{"a", "b", "c", "d"}, 3))

	stats := idx.Stats()
	assert.Equal(t, 1, stats.NumSignatures)
	assert.Equal(t, 2, stats.Bands)
	assert.GreaterOrEqual(t, stats.TotalBuckets, 1)
}
