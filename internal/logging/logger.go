// Package logging provides leveled logging and render event tracing for fliplot.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - An EventLogger for structured JSONL render events (.fliplot/events.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nvandessel/fliplot/internal/constants"
)

// LevelTrace is a custom slog level below Debug.
// At this level per-column parse details are logged.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a level name ("info", "debug", "trace", case-insensitive)
// to a slog.Level. Unknown values map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled text logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if l, ok := a.Value.Any().(slog.Level); ok && l == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

// EventLogger appends render events to a JSONL file.
// It is safe for concurrent use, and a nil *EventLogger is a no-op.
type EventLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewEventLogger opens dir/events.jsonl for append.
// At info level it returns nil and creates nothing. It also returns nil
// when the file cannot be opened.
func NewEventLogger(dir string, level string) *EventLogger {
	if ParseLevel(level) == slog.LevelInfo {
		return nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}

	path := filepath.Join(dir, constants.EventsFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}

	return &EventLogger{file: f}
}

// Log writes one event line. "event" and "time" keys are set on a copy of
// fields; the caller's map is left untouched.
func (el *EventLogger) Log(event string, fields map[string]any) {
	if el == nil || el.file == nil {
		return
	}

	entry := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		entry[k] = v
	}
	entry["event"] = event
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	el.mu.Lock()
	defer el.mu.Unlock()
	if el.file == nil {
		return
	}
	_, _ = el.file.Write(data)
}

// Close closes the underlying file.
func (el *EventLogger) Close() {
	if el == nil {
		return
	}

	el.mu.Lock()
	defer el.mu.Unlock()

	if el.file != nil {
		el.file.Close()
		el.file = nil
	}
}
