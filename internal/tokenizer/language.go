// Package tokenizer normalises raw source text into a comparable bag of
// tokens (spec §4.2). Language detection is by file extension only; no
// content sniffing, no parsing.
package tokenizer

import (
	"path/filepath"
	"strings"

	"github.com/standardbeagle/codecollage/internal/types"
)

// extensionLanguages maps 25 recognised extensions to 18 Language tags.
// Anything absent from this table is types.LangUnknown and gets filtered
// out upstream by the extractor's extension allowlist.
var extensionLanguages = map[string]types.Language{
	".go":    types.LangGo,
	".js":    types.LangJavaScript,
	".mjs":   types.LangJavaScript,
	".cjs":   types.LangJavaScript,
	".jsx":   types.LangJSX,
	".ts":    types.LangTypeScript,
	".tsx":   types.LangTSX,
	".py":    types.LangPython,
	".java":  types.LangJava,
	".c":     types.LangC,
	".h":     types.LangC,
	".cpp":   types.LangCpp,
	".cc":    types.LangCpp,
	".hpp":   types.LangCpp,
	".rs":    types.LangRust,
	".rb":    types.LangRuby,
	".php":   types.LangPHP,
	".cs":    types.LangCSharp,
	".kt":    types.LangKotlin,
	".swift": types.LangSwift,
	".sh":    types.LangShell,
	".bash":  types.LangShell,
	".sql":   types.LangSQL,
	".html":  types.LangHTML,
	".htm":   types.LangHTML,
}

// DetectLanguage maps path's extension to a Language tag, types.LangUnknown
// if the extension is not recognised.
func DetectLanguage(path string) types.Language {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extensionLanguages[ext]; ok {
		return lang
	}
	return types.LangUnknown
}

// commentFamily groups languages that share the same comment syntax, so
// the stripping rules in normalize.go are written once per family rather
// than once per language.
type commentFamily int

const (
	familyC          commentFamily = iota // //, /* */
	familyHashLine                        // #, no block comments
	familyDashSQL                         // --, /* */ (Lua/SQL share this)
	familyHTML                            // <!-- -->, no line comments
	familyNone                            // unknown languages: no stripping
)

func familyFor(lang types.Language) commentFamily {
	switch lang {
	case types.LangGo, types.LangJavaScript, types.LangTypeScript, types.LangJSX, types.LangTSX,
		types.LangJava, types.LangC, types.LangCpp, types.LangRust, types.LangPHP,
		types.LangCSharp, types.LangKotlin, types.LangSwift:
		return familyC
	case types.LangPython, types.LangRuby, types.LangShell:
		return familyHashLine
	case types.LangSQL:
		return familyDashSQL
	case types.LangHTML:
		return familyHTML
	default:
		return familyNone
	}
}
