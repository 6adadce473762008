// Package pipeline orchestrates the ingest, index, and synth stages over
// the store, enforcing the EMPTY -> INGESTED -> INDEXED -> SYNTHESISED
// state machine (spec §4.7) and threading config through to each
// algorithmic stage.
package pipeline

import (
	"os"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	ccerrors "github.com/standardbeagle/codecollage/internal/errors"
	"github.com/standardbeagle/codecollage/internal/extractor"
	"github.com/standardbeagle/codecollage/internal/logging"
	"github.com/standardbeagle/codecollage/internal/store"
	"github.com/standardbeagle/codecollage/internal/tokenizer"
	"github.com/standardbeagle/codecollage/internal/types"
)

// IngestOptions mirrors the `ingest` CLI command's flags (spec §6).
type IngestOptions struct {
	Roots     []string
	Recursive bool
	Walk      extractor.WalkOptions
}

// IngestStats summarises one ingest run for CLI/JSON reporting.
type IngestStats struct {
	FilesWalked     int
	FilesSkipped    int
	SnippetsWritten int
}

// Ingest walks opts.Roots, extracts snippets from every matching file,
// tokenizes each, and appends the resulting records to the store's
// snippets log (spec §4.2, §4.3). Files that cannot be read as UTF-8
// text are logged and skipped, not fatal (spec §7).
func Ingest(s *store.Store, opts IngestOptions) (IngestStats, error) {
	paths, err := extractor.Walk(opts.Roots, opts.Recursive, opts.Walk)
	if err != nil {
		return IngestStats{}, err
	}

	var stats IngestStats
	stats.FilesWalked = len(paths)

	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			logging.Warn("ingest", "skipping unreadable file %s: %v", path, err)
			stats.FilesSkipped++
			continue
		}
		if !utf8.Valid(raw) {
			logging.Warn("ingest", "skipping non-UTF-8 file %s", path)
			stats.FilesSkipped++
			continue
		}

		lang := tokenizer.DetectLanguage(path)
		for _, rs := range extractor.ExtractFile(string(raw), lang, path) {
			tok := tokenizer.Run(rs.Content, lang)
			snippet := types.Snippet{
				ID:        types.SnippetID(uuid.NewString()),
				Content:   rs.Content,
				Language:  lang,
				FilePath:  rs.FilePath,
				Lines:     rs.Lines,
				Hash:      extractor.ContentHash(rs.Content),
				Tokens:    tok.Tokens,
				CreatedAt: time.Now().Unix(),
			}
			if err := s.Append(store.Snippets, snippet); err != nil {
				return stats, err
			}
			stats.SnippetsWritten++
		}
	}

	logging.Stage("ingest", "walked %d files, skipped %d, wrote %d snippets", stats.FilesWalked, stats.FilesSkipped, stats.SnippetsWritten)
	return stats, nil
}

// RequireIngested returns ccerrors.EmptyDatasetError if the snippets
// dataset hasn't been populated yet (spec §4.7 state machine guard).
func RequireIngested(s *store.Store, stage string) error {
	empty, err := s.IsEmpty(store.Snippets)
	if err != nil {
		return err
	}
	if empty {
		return ccerrors.NewEmptyDatasetError(stage, string(store.Snippets))
	}
	return nil
}
