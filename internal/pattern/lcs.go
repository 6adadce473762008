package pattern

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codecollage/internal/config"
	"github.com/standardbeagle/codecollage/internal/types"
)

// lcsConfidence is the fixed confidence convention for LCS patterns
// (spec §4.6 "for LCS, fixed at 0.8").
const lcsConfidence = 0.8

// LCSMiner computes the longest common subsequence of every pair of
// snippets within a cluster (spec §4.6 "LCS tier" — quadratic within
// cluster size, not globally quadratic) and emits one pattern per pair
// whose LCS reaches at least 3 tokens.
//
// Duplicate LCS content surfaced by different pairs is coalesced by
// content: frequencies sum and snippet sets union (spec §9 "Duplicate
// LCS patterns" — the recommended resolution, chosen here explicitly
// rather than preserving the source's per-pair duplicate instances).
type LCSMiner struct{}

const minLCSLength = 3

func (LCSMiner) Mine(snippets []types.Snippet, clusters []types.Cluster, _ config.Mining) []types.Pattern {
	byID := indexByID(snippets)
	coalescer := newLCSCoalescer()
	for _, c := range clusters {
		coalescer.absorb(clusterPairLCS(c, byID))
	}
	return coalescer.patterns()
}

// MineParallel is equivalent to Mine but processes cluster partitions
// concurrently, up to runtime.NumCPU() at a time (spec §5 "An
// implementer may parallelise ... pairwise LCS, over cluster
// partitions"). Each cluster's pairwise LCS work is independent; the
// only shared state is the coalescer's map, guarded by a mutex.
func (LCSMiner) MineParallel(snippets []types.Snippet, clusters []types.Cluster, _ config.Mining) []types.Pattern {
	byID := indexByID(snippets)
	coalescer := newLCSCoalescer()

	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	var mu sync.Mutex

	for _, c := range clusters {
		c := c
		g.Go(func() error {
			results := clusterPairLCS(c, byID)
			mu.Lock()
			coalescer.absorb(results)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // no goroutine returns an error; Wait only orders completion

	return coalescer.patterns()
}

func indexByID(snippets []types.Snippet) map[types.SnippetID]types.Snippet {
	byID := make(map[types.SnippetID]types.Snippet, len(snippets))
	for _, s := range snippets {
		byID[s.ID] = s
	}
	return byID
}

// lcsMatch is one pair's surviving LCS content, prior to coalescing.
type lcsMatch struct {
	content string
	a, b    types.Snippet
}

// clusterPairLCS runs every pair within one cluster's membership through
// the LCS DP and returns the pairs whose shared subsequence reaches
// minLCSLength (spec §4.6 "LCS tier").
func clusterPairLCS(c types.Cluster, byID map[types.SnippetID]types.Snippet) []lcsMatch {
	members := c.SnippetIDs
	var matches []lcsMatch
	for i := 0; i < len(members); i++ {
		a, ok := byID[members[i]]
		if !ok {
			continue
		}
		for j := i + 1; j < len(members); j++ {
			b, ok := byID[members[j]]
			if !ok {
				continue
			}
			seq := longestCommonSubsequence(a.Tokens, b.Tokens)
			if len(seq) < minLCSLength {
				continue
			}
			matches = append(matches, lcsMatch{content: strings.Join(seq, " "), a: a, b: b})
		}
	}
	return matches
}

// lcsCoalescer merges lcsMatch values sharing identical content into one
// pattern, summing frequency and unioning snippet/language sets (spec §9
// "Duplicate LCS patterns" — coalesce by content, the recommended
// resolution).
type lcsCoalescer struct {
	acc   map[string]*ngramAccumulator
	freq  map[string]int
	order []string
}

func newLCSCoalescer() *lcsCoalescer {
	return &lcsCoalescer{acc: make(map[string]*ngramAccumulator), freq: make(map[string]int)}
}

func (c *lcsCoalescer) absorb(matches []lcsMatch) {
	for _, m := range matches {
		a, exists := c.acc[m.content]
		if !exists {
			a = &ngramAccumulator{snippets: newSnippetIDSet(), languages: newLanguageSet()}
			c.acc[m.content] = a
			c.order = append(c.order, m.content)
		}
		a.snippets.add(m.a.ID)
		a.snippets.add(m.b.ID)
		a.languages.add(m.a.Language)
		a.languages.add(m.b.Language)
		c.freq[m.content] += 2 // each pair contributes a frequency of 2, spec §4.6
	}
}

func (c *lcsCoalescer) patterns() []types.Pattern {
	var patterns []types.Pattern
	for _, content := range c.order {
		a := c.acc[content]
		p := stampedPattern(fmt.Sprintf("lcs:%x", hashContent(content)), types.PatternLCS, content)
		p.Frequency = c.freq[content]
		p.SnippetIDs = a.snippets.slice()
		p.Languages = a.languages.slice()
		p.Confidence = lcsConfidence
		patterns = append(patterns, p)
	}
	return patterns
}

// longestCommonSubsequence computes the LCS of a and b using the
// standard O(m*n) dynamic-programming table and backtrack (spec §4.6).
func longestCommonSubsequence(a, b []string) []string {
	m, n := len(a), len(b)
	if m == 0 || n == 0 {
		return nil
	}

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}
	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	seq := make([]string, dp[m][n])
	i, j, k := m, n, dp[m][n]
	for i > 0 && j > 0 {
		switch {
		case a[i-1] == b[j-1]:
			k--
			seq[k] = a[i-1]
			i--
			j--
		case dp[i-1][j] >= dp[i][j-1]:
			i--
		default:
			j--
		}
	}
	return seq
}

func hashContent(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}
