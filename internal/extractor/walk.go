// Package extractor walks source trees and cuts files into
// function/class-sized snippets (spec §4.3).
package extractor

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/codecollage/internal/config"
	"github.com/standardbeagle/codecollage/internal/logging"
	"github.com/standardbeagle/codecollage/pkg/pathutil"
)

// WalkOptions controls which files Walk visits.
type WalkOptions struct {
	Extensions []string // e.g. ".go", ".js" — defaults to config.DefaultExtensions
	Include    []string // doublestar glob patterns; empty means "match everything"
	Exclude    []string // doublestar glob patterns checked after Include
}

// Walk performs a deterministic pre-order traversal of roots, skipping
// the fixed directory skip-list (spec §5 "Ordering guarantees") and
// returns the absolute paths of files that pass the extension and
// include/exclude filters, in traversal order.
func Walk(roots []string, recursive bool, opts WalkOptions) ([]string, error) {
	extSet := make(map[string]bool, len(opts.Extensions))
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = config.DefaultExtensions
	}
	for _, e := range exts {
		extSet[strings.ToLower(e)] = true
	}

	skip := make(map[string]bool, len(config.DefaultSkipDirs))
	for _, d := range config.DefaultSkipDirs {
		skip[d] = true
	}

	var out []string
	var skipped int

	for _, root := range roots {
		absRoot, err := filepath.Abs(root)
		if err != nil {
			absRoot = root
		}

		info, err := os.Stat(absRoot)
		if err != nil {
			logging.Warn("ingest", "cannot stat %s: %v", root, err)
			skipped++
			continue
		}

		// --include/--exclude globs are written relative to the root
		// being walked (e.g. "internal/**/*.go"); resolve them against
		// absRoot up front so matchesFilters can compare like for like
		// against the absolute paths filepath.Walk produces, instead
		// of only ever matching via the basename fallback.
		rootOpts := opts
		rootOpts.Include = resolvePatterns(opts.Include, absRoot)
		rootOpts.Exclude = resolvePatterns(opts.Exclude, absRoot)

		if !info.IsDir() {
			if matchesFilters(absRoot, extSet, rootOpts) {
				out = append(out, absRoot)
			}
			continue
		}

		err = filepath.Walk(absRoot, func(path string, fi os.FileInfo, walkErr error) error {
			if walkErr != nil {
				logging.Warn("ingest", "walk error at %s: %v", path, walkErr)
				return nil
			}
			if fi.IsDir() {
				if path != absRoot && skip[fi.Name()] {
					return filepath.SkipDir
				}
				if path != absRoot && !recursive {
					return filepath.SkipDir
				}
				return nil
			}
			if matchesFilters(path, extSet, rootOpts) {
				out = append(out, path)
			} else {
				skipped++
			}
			return nil
		})
		if err != nil {
			logging.Warn("ingest", "walking %s: %v", root, err)
		}
	}

	logging.Stage("ingest", "discovered %d files, skipped %d", len(out), skipped)
	return out, nil
}

// resolvePatterns joins each relative glob pattern onto root so it can be
// compared directly against the absolute paths filepath.Walk produces.
// A pattern that is already absolute is only cleaned (ToAbsolute applies
// filepath.Clean to absolute input).
func resolvePatterns(patterns []string, root string) []string {
	if len(patterns) == 0 {
		return nil
	}
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = filepath.ToSlash(pathutil.ToAbsolute(p, root))
	}
	return out
}

func matchesFilters(path string, extSet map[string]bool, opts WalkOptions) bool {
	if !extSet[strings.ToLower(filepath.Ext(path))] {
		return false
	}
	if len(opts.Include) > 0 && !matchesAny(opts.Include, path) {
		return false
	}
	if matchesAny(opts.Exclude, path) {
		return false
	}
	return true
}

func matchesAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, path); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(p, filepath.Base(path)); err == nil && ok {
			return true
		}
	}
	return false
}
