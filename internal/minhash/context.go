// Package minhash computes MinHash signatures over token shingles and
// buckets them with banded LSH for sub-quadratic candidate generation
// (spec §4.4).
package minhash

import "math/rand"

// signaturePrime is p in the spec's hash family h(s) = (a*poly31(s) + b)
// mod p, chosen as 2^31-1 (a Mersenne prime, convenient for the modulo).
const signaturePrime = (1 << 31) - 1

// polyBase is the rolling-hash base used by poly31.
const polyBase = 31

// hashFn is one member of the K-function family: h(s) = (a*poly31(s)+b) mod p.
type hashFn struct {
	a, b uint64
}

func (h hashFn) apply(x uint64) uint32 {
	return uint32((h.a*x + h.b) % signaturePrime)
}

// LshContext carries the deterministic hash-function family used to
// compute every signature in one run. Per spec §9 ("Global state"), this
// is passed explicitly to every component that computes signatures
// rather than stashed in a package-level variable — two datasets built
// with different contexts have incomparable signatures.
type LshContext struct {
	seed  uint64
	funcs []hashFn
}

// NewLshContext builds a context with k = bands*rowsPerBand hash
// functions, deterministically seeded from seed. The same seed always
// produces the same family, which is what makes signatures comparable
// across separate runs against the same dataset.
func NewLshContext(seed uint64, k int) *LshContext {
	r := rand.New(rand.NewSource(int64(seed)))
	funcs := make([]hashFn, k)
	for i := range funcs {
		funcs[i] = hashFn{
			a: uint64(r.Int63n(signaturePrime-1)) + 1, // a must be non-zero
			b: uint64(r.Int63n(signaturePrime)),
		}
	}
	return &LshContext{seed: seed, funcs: funcs}
}

// Seed returns the seed the context was constructed with.
func (c *LshContext) Seed() uint64 { return c.seed }

// K returns the signature length (number of hash functions).
func (c *LshContext) K() int { return len(c.funcs) }

// poly31 is the polynomial rolling hash of s with base 31, reduced mod
// signaturePrime at each step to avoid uint64 overflow on long shingles.
func poly31(s string) uint64 {
	var h uint64
	for i := 0; i < len(s); i++ {
		h = (h*polyBase + uint64(s[i])) % signaturePrime
	}
	return h
}
