package tokenizer

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/codecollage/internal/types"
)

// stripComments removes single- and multi-line comments appropriate to
// lang's comment family, without touching characters inside string or
// rune literals (so a "//" inside a string is not mistaken for a
// comment). It never panics on malformed input; an unterminated comment
// or string simply runs to end of file.
func stripComments(content string, family commentFamily) string {
	if family == familyNone {
		return content
	}

	var out strings.Builder
	out.Grow(len(content))

	runes := []rune(content)
	n := len(runes)
	inString := false
	var stringDelim rune

	lineComment, blockComment := commentMarkers(family)

	for i := 0; i < n; i++ {
		r := runes[i]

		if inString {
			out.WriteRune(r)
			if r == '\\' && i+1 < n {
				i++
				out.WriteRune(runes[i])
				continue
			}
			if r == stringDelim {
				inString = false
			}
			continue
		}

		if r == '"' || r == '\'' || r == '`' {
			inString = true
			stringDelim = r
			out.WriteRune(r)
			continue
		}

		if lineComment != "" && hasPrefixAt(runes, i, lineComment) {
			for i < n && runes[i] != '\n' {
				i++
			}
			if i < n {
				out.WriteRune('\n')
			}
			continue
		}

		if blockComment.open != "" && hasPrefixAt(runes, i, blockComment.open) {
			i += len(blockComment.open)
			for i < n && !hasPrefixAt(runes, i, blockComment.close) {
				i++
			}
			i += len(blockComment.close) - 1
			out.WriteRune(' ')
			continue
		}

		out.WriteRune(r)
	}

	return out.String()
}

type blockMarker struct{ open, close string }

func commentMarkers(family commentFamily) (lineComment string, block blockMarker) {
	switch family {
	case familyC:
		return "//", blockMarker{"/*", "*/"}
	case familyHashLine:
		return "#", blockMarker{}
	case familyDashSQL:
		return "--", blockMarker{"/*", "*/"}
	case familyHTML:
		return "", blockMarker{"<!--", "-->"}
	default:
		return "", blockMarker{}
	}
}

func hasPrefixAt(runes []rune, i int, prefix string) bool {
	pr := []rune(prefix)
	if i+len(pr) > len(runes) {
		return false
	}
	for k, p := range pr {
		if runes[i+k] != p {
			return false
		}
	}
	return true
}

// stringLiteralPattern matches double- or single-quoted literals,
// including escaped-quote content, so replaceStringLiterals can collapse
// them to a placeholder without caring what the string actually holds.
var stringLiteralPattern = regexp.MustCompile(`"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`)

// replaceStringLiterals swaps every string literal for an empty literal
// of the same quote style, so textual differences inside strings never
// affect token similarity (spec §4.2 step 3).
func replaceStringLiterals(content string) string {
	return stringLiteralPattern.ReplaceAllStringFunc(content, func(m string) string {
		if strings.HasPrefix(m, "'") {
			return "''"
		}
		return `""`
	})
}

var whitespacePattern = regexp.MustCompile(`\s+`)

func collapseWhitespace(content string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(content, " "))
}

// keywordStandins maps a closed set of declaration keywords across
// languages to uppercase canonical forms, so the token stream shows one
// shape across dialects (spec §4.2 step 5).
var keywordStandins = map[string]string{
	"var":      "VAR",
	"let":      "VAR",
	"const":    "VAR",
	"function": "FUNC",
	"def":      "FUNC",
	"fn":       "FUNC",
	"class":    "CLASS",
	"async":    "ASYNC",
}

var keywordPattern = regexp.MustCompile(`\b(var|let|const|function|def|fn|class|async)\b`)

// substituteKeywords replaces recognised keywords with their stand-in.
// Idempotent: the stand-ins are uppercase and the pattern only matches
// lowercase keywords, so running it twice is a no-op.
func substituteKeywords(content string) string {
	return keywordPattern.ReplaceAllStringFunc(content, func(m string) string {
		return keywordStandins[m]
	})
}

// Normalize runs the full normalisation pipeline (spec §4.2 steps 1-5) and
// returns the normalised text, suitable for keyword-aware comparisons
// such as the LCS pattern tier. It is idempotent: Normalize(Normalize(x))
// == Normalize(x), because every step's output is a fixed point of
// itself (comments are gone, strings are already bare placeholders,
// whitespace is already single-spaced, keywords are already uppercase).
func Normalize(content string, lang types.Language) string {
	family := familyFor(lang)
	s := stripComments(content, family)
	s = replaceStringLiterals(s)
	s = collapseWhitespace(s)
	s = substituteKeywords(s)
	return s
}
