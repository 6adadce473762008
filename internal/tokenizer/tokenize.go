package tokenizer

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/standardbeagle/codecollage/internal/types"
)

var nonIdentifierRun = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Tokenize splits normalized on non-identifier characters, drops tokens
// shorter than 2 characters, drops pure integers, lowercases what's left,
// and preserves insertion order (spec §4.2 "Tokenisation"). It never
// panics on adversarial input; the caller is responsible for skipping
// unreadable files before they reach here.
func Tokenize(normalized string) []string {
	pieces := nonIdentifierRun.Split(normalized, -1)
	tokens := make([]string, 0, len(pieces))
	for _, p := range pieces {
		if len(p) < 2 {
			continue
		}
		if isPureInteger(p) {
			continue
		}
		tokens = append(tokens, strings.ToLower(p))
	}
	return tokens
}

func isPureInteger(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Result is the normalised-and-tokenised view of one piece of source
// text: the token bag used for shingling/MinHash and pattern mining, and
// the keyword-standardised text it was split from.
type Result struct {
	Language   types.Language
	Normalized string
	Tokens     []string
}

// Run detects nothing about lang itself (callers already know it from
// the file extension) and applies the full normalise-then-tokenise
// pipeline in one call.
func Run(content string, lang types.Language) Result {
	normalized := Normalize(content, lang)
	return Result{
		Language:   lang,
		Normalized: normalized,
		Tokens:     Tokenize(normalized),
	}
}
