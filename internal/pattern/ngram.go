package pattern

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/codecollage/internal/config"
	"github.com/standardbeagle/codecollage/internal/types"
)

// NGramMiner slides a length-n window over each snippet's token sequence
// and counts (ngram string) -> (occurrences, snippet set, language set),
// emitting any ngram with count >= min_frequency (spec §4.6 "N-gram
// tier"). The candidate population for confidence is the full snippet
// set passed in, since n-gram mining runs globally, not per cluster.
type NGramMiner struct{}

type ngramAccumulator struct {
	count     int
	snippets  *snippetIDSet
	languages *languageSet
}

func (NGramMiner) Mine(snippets []types.Snippet, _ []types.Cluster, cfg config.Mining) []types.Pattern {
	n := cfg.NgramSize
	if n <= 0 {
		n = config.DefaultNgramSize
	}
	minFreq := cfg.MinFrequency
	if minFreq <= 0 {
		minFreq = config.DefaultMinFrequency
	}

	acc := make(map[string]*ngramAccumulator)
	var order []string

	for _, s := range snippets {
		seenInSnippet := make(map[string]bool)
		for _, gram := range slideWindow(s.Tokens, n) {
			a, ok := acc[gram]
			if !ok {
				a = &ngramAccumulator{snippets: newSnippetIDSet(), languages: newLanguageSet()}
				acc[gram] = a
				order = append(order, gram)
			}
			if !seenInSnippet[gram] {
				seenInSnippet[gram] = true
				a.count++
			}
			a.snippets.add(s.ID)
			a.languages.add(s.Language)
		}
	}

	population := len(snippets)
	var patterns []types.Pattern
	for _, gram := range order {
		a := acc[gram]
		if a.count < minFreq {
			continue
		}
		p := stampedPattern(fmt.Sprintf("ngram:%s", gram), types.PatternNGram, gram)
		p.Frequency = a.snippets.len()
		p.SnippetIDs = a.snippets.slice()
		p.Languages = a.languages.slice()
		p.Confidence = confidenceRatio(a.snippets.len(), population)
		patterns = append(patterns, p)
	}
	return patterns
}

// slideWindow returns every contiguous length-n token run, joined with a
// single space, in sequence order (duplicates within one snippet are
// left in — callers that need per-snippet occurrence counts dedupe
// separately, as NGramMiner does above).
func slideWindow(tokens []string, n int) []string {
	if n <= 0 || len(tokens) < n {
		return nil
	}
	out := make([]string, 0, len(tokens)-n+1)
	for i := 0; i+n <= len(tokens); i++ {
		out = append(out, strings.Join(tokens[i:i+n], " "))
	}
	return out
}

func confidenceRatio(contributing, population int) float64 {
	if population <= 0 {
		return 0
	}
	ratio := float64(contributing) / float64(population)
	if ratio > 1 {
		ratio = 1
	}
	return ratio
}
