package spies

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// LogHandlerSpy is a slog.Handler that captures log records.
type LogHandlerSpy struct {
	mu          sync.Mutex
	records     []slog.Record
	logToStdout bool
}

// NewLogHandlerSpy creates a LogHandlerSpy, optionally also logging to stdout for debugging tests.
func NewLogHandlerSpy(logToStdout bool) *LogHandlerSpy {
	return &LogHandlerSpy{logToStdout: logToStdout}
}

func (s *LogHandlerSpy) Handle(ctx context.Context, record slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record.Clone())

	if s.logToStdout {
		_ = slog.NewJSONHandler(os.Stdout, nil).Handle(ctx, record)
	}

	return nil
}

func (s *LogHandlerSpy) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (s *LogHandlerSpy) WithAttrs(_ []slog.Attr) slog.Handler {
	return s
}

func (s *LogHandlerSpy) WithGroup(_ string) slog.Handler {
	return s
}

// Logger returns a *slog.Logger writing into the spy.
func (s *LogHandlerSpy) Logger() *slog.Logger {
	return slog.New(s)
}

// Records returns a copy of all captured records.
func (s *LogHandlerSpy) Records() []slog.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]slog.Record, len(s.records))
	copy(out, s.records)

	return out
}

// HasMessage checks if a record at the given level contains the message fragment.
func (s *LogHandlerSpy) HasMessage(level slog.Level, fragment string) bool {
	for _, r := range s.Records() {
		if r.Level == level && strings.Contains(r.Message, fragment) {
			return true
		}
	}

	return false
}

// CountLevel returns the number of captured records at the given level.
func (s *LogHandlerSpy) CountLevel(level slog.Level) int {
	count := 0

	for _, r := range s.Records() {
		if r.Level == level {
			count++
		}
	}

	return count
}
