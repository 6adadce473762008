package minhash

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/codecollage/internal/types"
)

// band is one band's buckets, keeping insertion order of bucket keys
// alongside the map so iteration is reproducible (spec §4.4 "Bucket
// iteration order is insertion order").
type band struct {
	members map[uint64][]types.SnippetID
	keys    []uint64
}

func newBand() *band {
	return &band{members: make(map[uint64][]types.SnippetID)}
}

func (b *band) add(key uint64, id types.SnippetID) {
	if _, ok := b.members[key]; !ok {
		b.keys = append(b.keys, key)
	}
	b.members[key] = append(b.members[key], id)
}

// LSHIndex is an in-memory, per-run, single-owner banded LSH index over
// MinHash signatures (spec §4.4, §5 "The LSH index is in-memory,
// per-run, and single-owner"). It is additionally safe for concurrent
// Add/Query from multiple goroutines, since the pipeline may compute
// signatures in parallel (spec §5).
type LSHIndex struct {
	bands       int
	rowsPerBand int

	mu         sync.RWMutex
	bandSlots  []*band
	signatures map[types.SnippetID][]uint32
	order      []types.SnippetID
}

// NewLSHIndex creates an index for signatures of length bands*rowsPerBand.
func NewLSHIndex(bands, rowsPerBand int) *LSHIndex {
	bandSlots := make([]*band, bands)
	for i := range bandSlots {
		bandSlots[i] = newBand()
	}
	return &LSHIndex{
		bands:       bands,
		rowsPerBand: rowsPerBand,
		bandSlots:   bandSlots,
		signatures:  make(map[types.SnippetID][]uint32),
	}
}

// Add inserts id's signature into every band bucket. Signatures shorter
// than bands*rowsPerBand are ignored (a caller bug, not a runtime panic).
func (idx *LSHIndex) Add(id types.SnippetID, sig []uint32) {
	if len(sig) < idx.bands*idx.rowsPerBand {
		return
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, exists := idx.signatures[id]; !exists {
		idx.order = append(idx.order, id)
	}
	idx.signatures[id] = sig

	for b := 0; b < idx.bands; b++ {
		key := idx.hashBand(sig, b)
		idx.bandSlots[b].add(key, id)
	}
}

func (idx *LSHIndex) hashBand(sig []uint32, band int) uint64 {
	start := band * idx.rowsPerBand
	end := start + idx.rowsPerBand

	h := xxhash.New()
	var buf [4]byte
	for i := start; i < end; i++ {
		binary.LittleEndian.PutUint32(buf[:], sig[i])
		h.Write(buf[:])
	}
	return h.Sum64()
}

// Query returns the ids that share at least one band bucket with id,
// excluding id itself. These are candidates for verification, not
// confirmed matches (spec §4.4 "Candidate generation").
func (idx *LSHIndex) Query(id types.SnippetID) []types.SnippetID {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	sig, ok := idx.signatures[id]
	if !ok {
		return nil
	}

	seen := make(map[types.SnippetID]bool)
	var out []types.SnippetID
	for b := 0; b < idx.bands; b++ {
		key := idx.hashBand(sig, b)
		for _, other := range idx.bandSlots[b].members[key] {
			if other == id || seen[other] {
				continue
			}
			seen[other] = true
			out = append(out, other)
		}
	}
	return out
}

// QueryBySignature returns the ids already in the index that share at
// least one band bucket with sig. Unlike Query, sig need not already be
// present in the index — this lets a caller probe "who would I collide
// with" before deciding whether to Add at all (spec §4.5's dedup pass,
// which must check candidates before the new snippet is inserted).
func (idx *LSHIndex) QueryBySignature(sig []uint32) []types.SnippetID {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(sig) < idx.bands*idx.rowsPerBand {
		return nil
	}

	seen := make(map[types.SnippetID]bool)
	var out []types.SnippetID
	for b := 0; b < idx.bands; b++ {
		key := idx.hashBand(sig, b)
		for _, other := range idx.bandSlots[b].members[key] {
			if seen[other] {
				continue
			}
			seen[other] = true
			out = append(out, other)
		}
	}
	return out
}

// DuplicatePair is a verified candidate pair (spec §4.4 "Verification").
type DuplicatePair struct {
	A, B       types.SnippetID
	Similarity float64
}

// CandidatePairs enumerates every pair of ids sharing a bucket in any
// band, in bucket-then-pair order (spec §4.4 "Tie-breaks and
// determinism" — this order determines downstream cluster labelling).
// Each pair is emitted once even if it shares more than one band.
func (idx *LSHIndex) CandidatePairs() [][2]types.SnippetID {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var pairs [][2]types.SnippetID
	seen := make(map[[2]types.SnippetID]bool)

	for b := 0; b < idx.bands; b++ {
		for _, key := range idx.bandSlots[b].keys {
			members := idx.bandSlots[b].members[key]
			if len(members) < 2 {
				continue
			}
			for i := 0; i < len(members); i++ {
				for j := i + 1; j < len(members); j++ {
					pair := canonicalPair(members[i], members[j])
					if seen[pair] {
						continue
					}
					seen[pair] = true
					pairs = append(pairs, pair)
				}
			}
		}
	}
	return pairs
}

func canonicalPair(a, b types.SnippetID) [2]types.SnippetID {
	if a <= b {
		return [2]types.SnippetID{a, b}
	}
	return [2]types.SnippetID{b, a}
}

// FindAllDuplicates returns every candidate pair whose full-signature
// estimated Jaccard is at least threshold (spec §4.4 "Verification":
// verification uses the full signature, not the bucket match).
func (idx *LSHIndex) FindAllDuplicates(threshold float64) []DuplicatePair {
	pairs := idx.CandidatePairs()

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	out := make([]DuplicatePair, 0, len(pairs))
	for _, p := range pairs {
		sim := EstimatedJaccard(idx.signatures[p[0]], idx.signatures[p[1]])
		if sim >= threshold {
			out = append(out, DuplicatePair{A: p[0], B: p[1], Similarity: sim})
		}
	}
	return out
}

// Signature returns the stored signature for id, if present.
func (idx *LSHIndex) Signature(id types.SnippetID) ([]uint32, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	sig, ok := idx.signatures[id]
	return sig, ok
}

// Stats summarises index occupancy, used by verbose diagnostics.
type LSHStats struct {
	NumSignatures int
	Bands         int
	RowsPerBand   int
	TotalBuckets  int
	MaxBucketSize int
}

func (idx *LSHIndex) Stats() LSHStats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	stats := LSHStats{
		NumSignatures: len(idx.signatures),
		Bands:         idx.bands,
		RowsPerBand:   idx.rowsPerBand,
	}
	for _, b := range idx.bandSlots {
		stats.TotalBuckets += len(b.members)
		for _, members := range b.members {
			if len(members) > stats.MaxBucketSize {
				stats.MaxBucketSize = len(members)
			}
		}
	}
	return stats
}
