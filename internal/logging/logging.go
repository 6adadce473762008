// Package logging provides the stage-prefixed diagnostic logging used
// across the pipeline. It is deliberately thin: plain writes to an
// io.Writer, no levels framework, no structured fields — matching the
// density of the teacher repo's own debug logging.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu     sync.Mutex
	output io.Writer = os.Stderr
	quiet  bool
)

// SetOutput redirects log output. Passing nil discards everything.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetQuiet suppresses all stage logging while v is true.
func SetQuiet(v bool) {
	mu.Lock()
	defer mu.Unlock()
	quiet = v
}

// Stage logs one line prefixed with the pipeline stage name, e.g.
// "[ingest] skipped 3 files: unreadable UTF-8".
func Stage(stage, format string, args ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if quiet || output == nil {
		return
	}
	fmt.Fprintf(output, "[%s] "+format+"\n", append([]interface{}{stage}, args...)...)
}

// Warn logs a recoverable per-file or per-record problem. Used for the
// "logged, skipped" paths in spec §7 (bad file, malformed record).
func Warn(stage, format string, args ...interface{}) {
	Stage(stage, "warning: "+format, args...)
}
