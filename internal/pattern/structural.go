package pattern

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/standardbeagle/codecollage/internal/config"
	"github.com/standardbeagle/codecollage/internal/types"
)

// StructuralMiner applies a regex suite to raw snippet content, erasing
// identifiers and conditions to produce canonical declaration/control
// shapes, and counts canonical-form occurrences across all snippets
// (spec §4.6 "Structural tier").
//
// The regexes keep the source keyword (func/function/def/fn, if/while/
// for/...) in the canonical form, so "func ID(...)" and "function ID(...)"
// never collapse into one bucket — per-language canonical forms cannot
// co-mine across languages (spec §9 "Structural cross-language
// canonicalisation"; unifying the suite into one unkeyworded shape is
// noted there as future work, not attempted here).
type StructuralMiner struct{}

var (
	funcDeclPattern = regexp.MustCompile(`(?m)^[ \t]*(?:[\w.<>\[\]]+\s+)?(func|function|def|fn)\s+([A-Za-z_]\w*)\s*\(([^)]*)\)`)
	controlPattern  = regexp.MustCompile(`\b(if|while|for|switch)\s*\(([^()]*)\)`)
	bareControl     = regexp.MustCompile(`\b(try|finally)\b`)
	catchPattern    = regexp.MustCompile(`\bcatch\s*(\(([^()]*)\))?`)
	classPattern    = regexp.MustCompile(`\bclass\s+([A-Za-z_]\w*)(?:\s+extends\s+([A-Za-z_]\w*))?`)
)

func (StructuralMiner) Mine(snippets []types.Snippet, _ []types.Cluster, cfg config.Mining) []types.Pattern {
	minFreq := cfg.MinFrequency
	if minFreq <= 0 {
		minFreq = config.DefaultMinFrequency
	}

	acc := make(map[string]*ngramAccumulator)
	var order []string

	record := func(form string, s types.Snippet) {
		a, ok := acc[form]
		if !ok {
			a = &ngramAccumulator{snippets: newSnippetIDSet(), languages: newLanguageSet()}
			acc[form] = a
			order = append(order, form)
		}
		a.snippets.add(s.ID)
		a.languages.add(s.Language)
	}

	for _, s := range snippets {
		for _, form := range canonicalForms(s.Content) {
			record(form, s)
		}
	}

	population := len(snippets)
	var patterns []types.Pattern
	for _, form := range order {
		a := acc[form]
		if a.snippets.len() < minFreq {
			continue
		}
		p := stampedPattern(fmt.Sprintf("ast:%x", hashContent(form)), types.PatternStructural, form)
		p.Frequency = a.snippets.len()
		p.SnippetIDs = a.snippets.slice()
		p.Languages = a.languages.slice()
		p.Confidence = confidenceRatio(a.snippets.len(), population)
		patterns = append(patterns, p)
	}
	return patterns
}

// canonicalForms extracts every declaration/control/class canonical
// shape present in content, in match order. Duplicates within one
// snippet are kept (one snippet can declare two functions), the
// accumulator above still counts the snippet only once per form.
func canonicalForms(content string) []string {
	var forms []string

	for _, m := range funcDeclPattern.FindAllStringSubmatch(content, -1) {
		forms = append(forms, fmt.Sprintf("%s ID(%s)", m[1], paramPlaceholder(m[3])))
	}
	for _, m := range controlPattern.FindAllStringSubmatch(content, -1) {
		forms = append(forms, fmt.Sprintf("%s (CONDITION)", m[1]))
	}
	for _, kw := range bareControl.FindAllStringSubmatch(content, -1) {
		forms = append(forms, kw[1])
	}
	for _, m := range catchPattern.FindAllStringSubmatch(content, -1) {
		if m[1] == "" {
			forms = append(forms, "catch")
		} else {
			forms = append(forms, "catch (CONDITION)")
		}
	}
	for _, m := range classPattern.FindAllStringSubmatch(content, -1) {
		if m[2] == "" {
			forms = append(forms, "class ID")
		} else {
			forms = append(forms, "class ID extends ID")
		}
	}
	return forms
}

// paramPlaceholder erases a non-empty parameter list to CONDITION,
// matching the canonical form the spec itself uses for a function
// declaration's parameter list (spec §8 scenario 3: "function ID(CONDITION)" /
// "def ID(CONDITION)"). An empty parameter list stays empty.
func paramPlaceholder(params string) string {
	if strings.TrimSpace(params) == "" {
		return ""
	}
	return "CONDITION"
}
