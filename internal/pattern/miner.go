// Package pattern mines recurring structure out of a clustered snippet
// corpus: n-gram token runs, pairwise longest-common-subsequences within
// clusters, and per-language structural canonical forms (spec §4.6).
package pattern

import (
	"sort"
	"time"

	"github.com/standardbeagle/codecollage/internal/config"
	"github.com/standardbeagle/codecollage/internal/logging"
	"github.com/standardbeagle/codecollage/internal/types"
)

// Miner is one mining tier. The three tiers share little code beyond
// ranking, so Mine dispatches across a tagged slice of Miners rather than
// a class hierarchy (spec §9 "Dynamic dispatch over pattern tiers").
type Miner interface {
	Mine(snippets []types.Snippet, clusters []types.Cluster, cfg config.Mining) []types.Pattern
}

// Tier selects which Miners Mine runs; an empty Tier runs all three.
type Tier string

const (
	TierNGram      Tier = "ngram"
	TierLCS        Tier = "lcs"
	TierStructural Tier = "ast"
)

// Mine runs the requested tiers over snippets/clusters and returns the
// combined pattern set in ranked order (spec §4.6 "Ranking").
func Mine(snippets []types.Snippet, clusters []types.Cluster, cfg config.Mining, tiers ...Tier) []types.Pattern {
	if len(tiers) == 0 {
		tiers = []Tier{TierNGram, TierLCS, TierStructural}
	}

	var miners []Miner
	for _, t := range tiers {
		switch t {
		case TierNGram:
			miners = append(miners, NGramMiner{})
		case TierLCS:
			miners = append(miners, LCSMiner{})
		case TierStructural:
			miners = append(miners, StructuralMiner{})
		}
	}

	var all []types.Pattern
	for _, m := range miners {
		all = append(all, m.Mine(snippets, clusters, cfg)...)
	}

	Rank(all)
	logging.Stage("synth", "mined %d patterns across %d tier(s)", len(all), len(miners))
	return all
}

// Rank sorts patterns in place by (descending frequency, descending
// language diversity, descending snippet count) — spec §4.6 "Ranking".
func Rank(patterns []types.Pattern) {
	sort.SliceStable(patterns, func(i, j int) bool {
		a, b := patterns[i], patterns[j]
		if a.Frequency != b.Frequency {
			return a.Frequency > b.Frequency
		}
		if len(a.Languages) != len(b.Languages) {
			return len(a.Languages) > len(b.Languages)
		}
		return len(a.SnippetIDs) > len(b.SnippetIDs)
	})
}

func stampedPattern(id string, typ types.PatternType, content string) types.Pattern {
	return types.Pattern{
		ID:        types.PatternID(id),
		Type:      typ,
		Content:   content,
		CreatedAt: time.Now().Unix(),
	}
}

// languageSet collects the distinct languages contributing to a pattern,
// in first-seen order (spec's ordering guarantees apply to emission, not
// to this internal bookkeeping, so a plain slice scan is enough here).
type languageSet struct {
	seen  map[types.Language]bool
	order []types.Language
}

func newLanguageSet() *languageSet {
	return &languageSet{seen: make(map[types.Language]bool)}
}

func (s *languageSet) add(lang types.Language) {
	if s.seen[lang] {
		return
	}
	s.seen[lang] = true
	s.order = append(s.order, lang)
}

func (s *languageSet) slice() []types.Language {
	return s.order
}

// snippetIDSet collects distinct snippet ids in first-seen order.
type snippetIDSet struct {
	seen  map[types.SnippetID]bool
	order []types.SnippetID
}

func newSnippetIDSet() *snippetIDSet {
	return &snippetIDSet{seen: make(map[types.SnippetID]bool)}
}

func (s *snippetIDSet) add(id types.SnippetID) {
	if s.seen[id] {
		return
	}
	s.seen[id] = true
	s.order = append(s.order, id)
}

func (s *snippetIDSet) slice() []types.SnippetID {
	return s.order
}

func (s *snippetIDSet) len() int {
	return len(s.order)
}
