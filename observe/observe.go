// Package observe holds the two observational sinks the generator and the
// emitted parser call into: a progress sink during collection construction,
// and a debug/trace sink during an emitted parser's runtime. Neither is
// load-bearing; both default to no-ops.
package observe

import (
	"log"

	"github.com/google/uuid"
)

// ProgressSink receives a human-readable message at the phase boundaries of
// lalr.BuildCollection: the start of closure construction and of lookahead
// resolution (finished false), and a final "collection built" call
// (finished true). Simplification and table construction report nothing.
type ProgressSink interface {
	Progress(message string, finished bool)
}

// NoOpProgress discards every call. It is the default sink.
type NoOpProgress struct{}

func (NoOpProgress) Progress(string, bool) {}

// LogProgress logs each progress message through the standard library
// logger, tagging every message from one construction run with the same
// short run id so interleaved log output from concurrent generator runs can
// be told apart.
type LogProgress struct {
	runID string
}

// NewLogProgress returns a LogProgress tagged with a freshly generated run
// id.
func NewLogProgress() *LogProgress {
	return &LogProgress{runID: uuid.NewString()[:8]}
}

func (p *LogProgress) Progress(message string, finished bool) {
	status := "..."
	if finished {
		status = "done"
	}
	log.Printf("[lalrgen %s] %s (%s)", p.runID, message, status)
}

// TraceSink receives parser runtime events. The emit runtime reports
// reduces and partial-match invocations; state entries, shifts, and jumps
// are not reported.
type TraceSink interface {
	Trace(event string, state int, detail string)
}

// NoOpTrace discards every call. It is the default sink.
type NoOpTrace struct{}

func (NoOpTrace) Trace(string, int, string) {}

// LogTrace logs each trace event through the standard library logger.
type LogTrace struct{}

func (LogTrace) Trace(event string, state int, detail string) {
	log.Printf("[lalrgen trace] state=%d %s: %s", state, event, detail)
}
