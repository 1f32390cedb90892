package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// LogRecord is a captured log record. Attrs include those added with
// Logger.With.
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type recordSink struct {
	mu      sync.Mutex
	records []LogRecord
}

// LogRecorder is a slog.Handler that keeps every record it receives.
// Handlers derived through WithAttrs share the same records.
type LogRecorder struct {
	sink  *recordSink
	attrs []slog.Attr
	group string
}

// NewLogRecorder creates an empty recorder
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{sink: &recordSink{}}
}

// NewTestLogger creates a debug level logger backed by a recorder
func NewTestLogger(t *testing.T) (*slog.Logger, *LogRecorder) {
	t.Helper()
	rec := NewLogRecorder()
	return slog.New(rec), rec
}

func (h *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (h *LogRecorder) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		key := a.Key
		if h.group != "" {
			key = h.group + "." + key
		}
		attrs[key] = a.Value.Any()
		return true
	})

	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	h.sink.records = append(h.sink.records, LogRecord{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	return nil
}

func (h *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *LogRecorder) WithGroup(name string) slog.Handler {
	next := *h
	if next.group != "" {
		name = next.group + "." + name
	}
	next.group = name
	return &next
}

// Records returns a copy of everything captured so far
func (h *LogRecorder) Records() []LogRecord {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	out := make([]LogRecord, len(h.sink.records))
	copy(out, h.sink.records)
	return out
}

// ByLevel returns the records logged at level
func (h *LogRecorder) ByLevel(level slog.Level) []LogRecord {
	var out []LogRecord
	for _, r := range h.Records() {
		if r.Level == level {
			out = append(out, r)
		}
	}
	return out
}

// Find returns the first record at level whose message contains message
func (h *LogRecorder) Find(level slog.Level, message string) (LogRecord, bool) {
	for _, r := range h.ByLevel(level) {
		if strings.Contains(r.Message, message) {
			return r, true
		}
	}
	return LogRecord{}, false
}

// Count returns the number of records at level whose message contains message
func (h *LogRecorder) Count(level slog.Level, message string) int {
	n := 0
	for _, r := range h.ByLevel(level) {
		if strings.Contains(r.Message, message) {
			n++
		}
	}
	return n
}

// AssertLogged fails the test unless a matching record was captured
func AssertLogged(t *testing.T, h *LogRecorder, level slog.Level, message string) LogRecord {
	t.Helper()
	r, ok := h.Find(level, message)
	if !ok {
		var seen []string
		for _, rec := range h.Records() {
			seen = append(seen, rec.Level.String()+" "+rec.Message)
		}
		assert.Failf(t, "log record not found", "want %s %q, captured: %v", level, message, seen)
	}
	return r
}

// AssertNoErrors fails the test if anything was logged at error level
func AssertNoErrors(t *testing.T, h *LogRecorder) {
	t.Helper()
	for _, r := range h.ByLevel(slog.LevelError) {
		assert.Failf(t, "unexpected error log", "%s: %v", r.Message, r.Attrs)
	}
}
