package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/standardbeagle/codecollage/internal/types"
)

// minContentLength is the non-whitespace character floor below which a
// candidate snippet is discarded (spec §4.3).
const minContentLength = 20

// maxWholeFileLines is the line count ceiling for the whole-file fallback
// when no function/class start is found (spec §4.3).
const maxWholeFileLines = 50

// RawSnippet is a pre-hash, pre-token extracted fragment: just content,
// language and line range. The tokenizer and hasher fill in the rest as
// the pipeline assembles a types.Snippet.
type RawSnippet struct {
	Content  string
	Language types.Language
	FilePath string
	Lines    types.LineRange
}

// braceDeclPattern matches a line beginning a function or class/struct
// declaration in a brace language. It is intentionally loose: this is a
// heuristic extractor, not a parser (spec §4.3, §1 non-goals).
var braceDeclPattern = regexp.MustCompile(
	`^\s*(?:(?:export|public|private|protected|static|async|final|abstract)\s+)*` +
		`(?:func|function|def|class|struct|interface)\b`)

// closerPattern matches a line whose trimmed content is a bare closing
// brace.
var closerPattern = regexp.MustCompile(`^\s*}\s*$`)

// pythonDeclPattern matches a Python function or class declaration.
var pythonDeclPattern = regexp.MustCompile(`^(\s*)(?:def|class)\s+\w`)

// ExtractFile splits content (from a file of the given language) into
// snippets using the brace-language heuristic, the Python indentation
// heuristic, or falls back to one whole-file snippet for small files
// (spec §4.3). Snippets below minContentLength non-whitespace characters
// are discarded. Emitted in file order.
func ExtractFile(content string, lang types.Language, filePath string) []RawSnippet {
	lines := strings.Split(content, "\n")

	var raw []RawSnippet
	switch lang {
	case types.LangPython:
		raw = extractPython(lines)
	default:
		raw = extractBraceLanguage(lines)
	}

	if len(raw) == 0 && len(lines) <= maxWholeFileLines {
		raw = []RawSnippet{{
			Content: content,
			Lines:   types.LineRange{Start: 1, End: len(lines)},
		}}
	}

	out := make([]RawSnippet, 0, len(raw))
	for _, r := range raw {
		if nonWhitespaceLen(r.Content) <= minContentLength {
			continue
		}
		r.Language = lang
		r.FilePath = filePath
		out = append(out, r)
	}
	return out
}

func extractBraceLanguage(lines []string) []RawSnippet {
	var out []RawSnippet
	i := 0
	for i < len(lines) {
		if !braceDeclPattern.MatchString(lines[i]) {
			i++
			continue
		}
		start := i
		indent := leadingWhitespace(lines[i])
		end := len(lines) - 1
		for j := i + 1; j < len(lines); j++ {
			if closerPattern.MatchString(lines[j]) && leadingWhitespace(lines[j]) <= indent {
				end = j
				break
			}
		}
		out = append(out, RawSnippet{
			Content: strings.Join(lines[start:end+1], "\n"),
			Lines:   types.LineRange{Start: start + 1, End: end + 1},
		})
		i = end + 1
	}
	return out
}

func extractPython(lines []string) []RawSnippet {
	var out []RawSnippet
	i := 0
	for i < len(lines) {
		m := pythonDeclPattern.FindStringSubmatch(lines[i])
		if m == nil {
			i++
			continue
		}
		start := i
		indent := len(m[1])
		end := len(lines) - 1
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == "" {
				continue
			}
			if leadingWhitespace(lines[j]) <= indent {
				end = j - 1
				break
			}
		}
		if end-start+1 < 3 {
			i++
			continue
		}
		out = append(out, RawSnippet{
			Content: strings.Join(lines[start:end+1], "\n"),
			Lines:   types.LineRange{Start: start + 1, End: end + 1},
		})
		i = end + 1
	}
	return out
}

func leadingWhitespace(line string) int {
	n := 0
	for _, r := range line {
		if r != ' ' && r != '\t' {
			break
		}
		n++
	}
	return n
}

func nonWhitespaceLen(s string) int {
	n := 0
	for _, r := range s {
		if !strings.ContainsRune(" \t\n\r", r) {
			n++
		}
	}
	return n
}

// ContentHash returns the SHA-256 hex digest of content (spec §3
// "content hash (SHA-256 hex)").
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
