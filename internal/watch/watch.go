// Package watch wraps fsnotify to keep the snippets log current between
// batch ingest runs (spec §2 "occasional incremental growth"). It never
// triggers re-clustering or re-synthesis: that stays a full index/synth
// re-run, per the append-only, non-streaming design spec.md's Non-goals
// call out.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/standardbeagle/codecollage/internal/config"
	"github.com/standardbeagle/codecollage/internal/extractor"
	"github.com/standardbeagle/codecollage/internal/logging"
	"github.com/standardbeagle/codecollage/internal/store"
	"github.com/standardbeagle/codecollage/internal/tokenizer"
	"github.com/standardbeagle/codecollage/internal/types"

	"github.com/google/uuid"
)

// OnIngested is called after a touched file's snippets are appended,
// once per watch-triggered ingest batch (used by cmd/codecollage to
// print progress).
type OnIngested func(path string, snippetsWritten int)

// Watcher monitors a root directory for file create/write events and
// incrementally appends new snippet records for the touched file (spec
// §4.8). Existing snippet records for a changed path are never retracted.
type Watcher struct {
	fsw  *fsnotify.Watcher
	s    *store.Store
	walk extractor.WalkOptions

	onIngested OnIngested

	stopOnce sync.Once
	done     chan struct{}
}

// New creates a Watcher that will append to s using walk to decide which
// touched files are in scope. Only walk.Extensions is consulted (exact,
// case-sensitive match; an empty list admits every file); the
// include/exclude globs are not applied to touched files.
func New(s *store.Store, walk extractor.WalkOptions) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{fsw: fsw, s: s, walk: walk, done: make(chan struct{})}, nil
}

// OnIngested registers a progress callback.
func (w *Watcher) OnIngested(fn OnIngested) { w.onIngested = fn }

// Start recursively adds watches under root, skipping the fixed
// directory skip-list (spec §5), and begins processing events in a
// background goroutine. It returns once the initial watch tree is set up.
func (w *Watcher) Start(root string) error {
	if err := w.addWatches(root); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the underlying fsnotify watcher and waits for the event
// loop to exit.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		err = w.fsw.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) addWatches(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if isSkippedDir(filepath.Base(path)) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			logging.Warn("watch", "failed to add watch for %s: %v", path, err)
		}
		return nil
	})
}

func isSkippedDir(name string) bool {
	for _, skip := range config.DefaultSkipDirs {
		if name == skip {
			return true
		}
	}
	return false
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Warn("watch", "fsnotify error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		if err == nil && info.IsDir() && event.Op&fsnotify.Create != 0 {
			if !isSkippedDir(filepath.Base(event.Name)) {
				if err := w.fsw.Add(event.Name); err != nil {
					logging.Warn("watch", "failed to add watch for new directory %s: %v", event.Name, err)
				}
			}
		}
		return
	}

	if !w.inScope(event.Name) {
		return
	}

	written, err := w.ingestOne(event.Name)
	if err != nil {
		logging.Warn("watch", "failed to ingest %s: %v", event.Name, err)
		return
	}
	if w.onIngested != nil {
		w.onIngested(event.Name, written)
	}
}

func (w *Watcher) inScope(path string) bool {
	ext := filepath.Ext(path)
	if len(w.walk.Extensions) == 0 {
		return true
	}
	for _, e := range w.walk.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// ingestOne re-extracts and re-tokenizes one touched file and appends
// its snippets. It does not deduplicate against what is already stored
// for this path — a rapid sequence of saves on the same file produces
// one snippet batch per save, left for the next `index` run to dedup
// and cluster (spec §4.8).
func (w *Watcher) ingestOne(path string) (int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	lang := tokenizer.DetectLanguage(path)
	written := 0
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
		if err := w.s.Append(store.Snippets, snippet); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
