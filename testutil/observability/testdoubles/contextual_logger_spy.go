package testdoubles

import (
	"context"
	"sync"

	"github.com/indraarianggi/nestjs-library-app-sub000/eventstore"
)

// LogRecord is one captured log call.
type LogRecord struct {
	Level   string
	Message string
	Args    []any
}

// Attr returns the value logged under key, or nil.
func (r LogRecord) Attr(key string) any {
	for i := 0; i+1 < len(r.Args); i += 2 {
		if k, ok := r.Args[i].(string); ok && k == key {
			return r.Args[i+1]
		}
	}

	return nil
}

// ContextualLoggerSpy captures calls made through eventstore.ContextualLogger.
type ContextualLoggerSpy struct {
	mu      sync.Mutex
	records []LogRecord
}

func NewContextualLoggerSpy() *ContextualLoggerSpy {
	return &ContextualLoggerSpy{}
}

func (s *ContextualLoggerSpy) DebugContext(_ context.Context, msg string, args ...any) {
	s.record("debug", msg, args)
}

func (s *ContextualLoggerSpy) InfoContext(_ context.Context, msg string, args ...any) {
	s.record("info", msg, args)
}

func (s *ContextualLoggerSpy) WarnContext(_ context.Context, msg string, args ...any) {
	s.record("warn", msg, args)
}

func (s *ContextualLoggerSpy) ErrorContext(_ context.Context, msg string, args ...any) {
	s.record("error", msg, args)
}

func (s *ContextualLoggerSpy) record(level, msg string, args []any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, LogRecord{Level: level, Message: msg, Args: args})
}

// Records returns a copy of all captured records in call order.
func (s *ContextualLoggerSpy) Records() []LogRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]LogRecord(nil), s.records...)
}

// RecordsAt returns the captured records of one level.
func (s *ContextualLoggerSpy) RecordsAt(level string) []LogRecord {
	var found []LogRecord
	for _, r := range s.Records() {
		if r.Level == level {
			found = append(found, r)
		}
	}

	return found
}

// HasMessage reports whether msg was logged at level.
func (s *ContextualLoggerSpy) HasMessage(level, msg string) bool {
	for _, r := range s.RecordsAt(level) {
		if r.Message == msg {
			return true
		}
	}

	return false
}

var _ eventstore.ContextualLogger = (*ContextualLoggerSpy)(nil)
