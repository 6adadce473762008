package cluster

import (
	"github.com/standardbeagle/codecollage/internal/minhash"
	"github.com/standardbeagle/codecollage/internal/types"
)

// Dedup runs the optional pre-cluster de-duplication pass (spec §4.5):
// for each incoming snippet, an exact content-hash match against an
// already-kept snippet drops it outright; otherwise an LSH query against
// threshold drops it if any already-kept candidate reaches it. The
// returned slice is the kept set, in the order snippets were presented.
//
// This pass is order-sensitive — different input orderings yield
// different kept sets — and deliberately not idempotent across
// reorderings (spec §4.5, §9 "De-duplication order sensitivity"). Callers
// that want reproducibility across runs should sort snippets by content
// hash before calling Dedup; CodeCollage's ingest pipeline does not, by
// default, so that file-walk order is preserved for readability.
func Dedup(snippets []types.Snippet, threshold float64) []types.Snippet {
	seenHashes := make(map[string]types.SnippetID)
	idx := minhash.NewLSHIndex(defaultDedupBands, defaultDedupRows)

	kept := make([]types.Snippet, 0, len(snippets))
	for _, s := range snippets {
		if _, dup := seenHashes[s.Hash]; dup {
			continue
		}

		candidates := idx.QueryBySignature(s.Signature)
		isDup := false
		for _, cand := range candidates {
			candSig, ok := idx.Signature(cand)
			if !ok {
				continue
			}
			if minhash.EstimatedJaccard(s.Signature, candSig) >= threshold {
				isDup = true
				break
			}
		}
		if isDup {
			continue
		}

		seenHashes[s.Hash] = s.ID
		idx.Add(s.ID, s.Signature)
		kept = append(kept, s)
	}
	return kept
}

// defaultDedupBands/Rows are fixed at the de-dup signature length
// (these must match the signature length produced upstream — callers
// pass fully-formed signatures, so this index never regenerates them,
// only re-buckets what it's given).
const (
	defaultDedupBands = 20
	defaultDedupRows  = 5
)
