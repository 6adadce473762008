package minhash

import "math"

// sentinelMax is the signature value used for a hash position when there
// are no shingles to minimise over (spec §8 boundary case: "Shingle
// window larger than token count → signature vector of the sentinel max
// value").
const sentinelMax = math.MaxUint32

// Shingles forms the set of contiguous size-token shingles from tokens,
// each rendered as the tokens joined by a single space (spec §4.4
// "Signature generation"). Order of the returned slice is the order
// shingles were first seen; duplicates are removed since shingles form
// a set.
func Shingles(tokens []string, size int) []string {
	if size <= 0 || len(tokens) < size {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for i := 0; i+size <= len(tokens); i++ {
		s := joinTokens(tokens[i : i+size])
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func joinTokens(tokens []string) string {
	total := len(tokens) - 1
	for _, t := range tokens {
		total += len(t)
	}
	buf := make([]byte, 0, total)
	for i, t := range tokens {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, t...)
	}
	return string(buf)
}

// Signature computes the K-element MinHash signature of tokens' shingle
// set under ctx's hash family: for each hash function, the minimum hash
// value over all shingles (spec §4.4). A token list with fewer than
// shingleSize tokens yields zero shingles and an all-sentinel signature,
// matching the spec's documented boundary behaviour rather than
// panicking.
func Signature(ctx *LshContext, tokens []string, shingleSize int) []uint32 {
	sig := make([]uint32, ctx.K())
	for i := range sig {
		sig[i] = sentinelMax
	}

	shingles := Shingles(tokens, shingleSize)
	for _, sh := range shingles {
		base := poly31(sh)
		for i, f := range ctx.funcs {
			v := f.apply(base)
			if v < sig[i] {
				sig[i] = v
			}
		}
	}
	return sig
}

// EstimatedJaccard returns the fraction of signature positions at which
// a and b agree, an unbiased estimator of the Jaccard similarity of
// their underlying shingle sets (spec §4.4 "Verification"). Signatures
// must be the same length (same LshContext); a length mismatch returns 0.
func EstimatedJaccard(a, b []uint32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	agree := 0
	for i := range a {
		if a[i] == b[i] {
			agree++
		}
	}
	return float64(agree) / float64(len(a))
}
