package logger

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
)

// Entry is one message captured by a TestLogger
type Entry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// TestLogger records messages so tests can assert on them, and echoes them
// through t.Logf when T is set
type TestLogger struct {
	T *testing.T

	mu      *sync.Mutex
	entries *[]Entry
	fields  map[string]interface{}
}

// NewTestLogger creates a new test logger
func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{
		T:       t,
		mu:      &sync.Mutex{},
		entries: &[]Entry{},
		fields:  map[string]interface{}{},
	}
}

func (l *TestLogger) log(level, msg string) {
	l.mu.Lock()
	*l.entries = append(*l.entries, Entry{Level: level, Message: msg, Fields: l.fields})
	l.mu.Unlock()

	if l.T != nil {
		l.T.Logf("[%s] %s%s", strings.ToUpper(level), msg, formatFields(l.fields))
	}
}

func (l *TestLogger) Debug(msg string) { l.log("debug", msg) }
func (l *TestLogger) Info(msg string)  { l.log("info", msg) }
func (l *TestLogger) Warn(msg string)  { l.log("warn", msg) }
func (l *TestLogger) Error(msg string) { l.log("error", msg) }
func (l *TestLogger) Fatal(msg string) { l.log("fatal", msg) }

// WithField returns a logger sharing the recorded entries with one more field
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a logger sharing the recorded entries with more fields
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &TestLogger{T: l.T, mu: l.mu, entries: l.entries, fields: merged}
}

// Entries returns a copy of everything logged so far
func (l *TestLogger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), *l.entries...)
}

// Messages returns the messages logged at level
func (l *TestLogger) Messages(level string) []string {
	var out []string
	for _, e := range l.Entries() {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}

func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, fields[k])
	}
	return sb.String()
}

// NewMockLogger creates a simple logger for use in tests
// It can be called with or without a testing.T parameter
func NewMockLogger(t ...*testing.T) Logger {
	if len(t) > 0 {
		return NewTestLogger(t[0])
	}
	return NewTestLogger(nil)
}
