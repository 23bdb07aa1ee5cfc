// Package testutil provides test helpers, currently a recording slog
// handler for asserting on log output.
package testutil

import (
	"context"
	"log/slog"
	"sync"
)

// LogRecord is one captured log record.
type LogRecord struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type recorderState struct {
	mu      sync.Mutex
	records []LogRecord
}

// LogRecorder is a slog.Handler that captures records in memory. It is
// safe for concurrent use; derived handlers share the record buffer.
type LogRecorder struct {
	state *recorderState
	attrs []slog.Attr
}

// NewLogRecorder creates an empty recorder.
func NewLogRecorder() *LogRecorder {
	return &LogRecorder{state: &recorderState{}}
}

// Logger returns a logger writing into the recorder.
func (h *LogRecorder) Logger() *slog.Logger {
	return slog.New(h)
}

// Enabled implements slog.Handler; every level is captured.
func (h *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (h *LogRecorder) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	h.state.records = append(h.state.records, LogRecord{Level: r.Level, Message: r.Message, Attrs: attrs})
	return nil
}

// WithAttrs implements slog.Handler.
func (h *LogRecorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &LogRecorder{state: h.state, attrs: merged}
}

// WithGroup implements slog.Handler. Groups are flattened; tests using
// this recorder only assert on messages and top-level attributes.
func (h *LogRecorder) WithGroup(string) slog.Handler { return h }

// Records returns a copy of the captured records.
func (h *LogRecorder) Records() []LogRecord {
	h.state.mu.Lock()
	defer h.state.mu.Unlock()
	out := make([]LogRecord, len(h.state.records))
	copy(out, h.state.records)
	return out
}

// HasMessage reports whether any captured record carries msg.
func (h *LogRecorder) HasMessage(msg string) bool {
	for _, r := range h.Records() {
		if r.Message == msg {
			return true
		}
	}
	return false
}

// CountLevel returns the number of records at the given level.
func (h *LogRecorder) CountLevel(level slog.Level) int {
	n := 0
	for _, r := range h.Records() {
		if r.Level == level {
			n++
		}
	}
	return n
}
