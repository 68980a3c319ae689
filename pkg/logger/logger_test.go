package logger

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func captureOutput(f func()) string {
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	outputChan := make(chan string)
	go func() {
		var buf bytes.Buffer
		io.Copy(&buf, r)
		outputChan <- buf.String()
	}()

	f()

	w.Close()
	os.Stdout = oldStdout
	return <-outputChan
}

func TestNewLogger(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	output := captureOutput(func() {
		NewLogger().Info("to stdout")
	})

	assert.Contains(t, output, "to stdout")
	assert.Contains(t, output, `"level":"info"`)
}

func TestLevels(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)

	tests := []struct {
		level string
		log   func(Logger)
	}{
		{"debug", func(l Logger) { l.Debug("debug message") }},
		{"info", func(l Logger) { l.Info("info message") }},
		{"warn", func(l Logger) { l.Warn("warn message") }},
		{"error", func(l Logger) { l.Error("error message") }},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewLoggerWithWriter(&buf))

			assert.Contains(t, buf.String(), tt.level+" message")
			assert.Contains(t, buf.String(), `"level":"`+tt.level+`"`)
		})
	}
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	l := NewLoggerWithWriter(&buf)
	l.Info("filtered")
	l.Warn("kept")

	assert.NotContains(t, buf.String(), "filtered")
	assert.Contains(t, buf.String(), "kept")
}

func TestNewLoggerWithLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	tests := []struct {
		name          string
		level         string
		expectedLevel zerolog.Level
	}{
		{"debug level", "debug", zerolog.DebugLevel},
		{"info level", "info", zerolog.InfoLevel},
		{"warn level", "warn", zerolog.WarnLevel},
		{"warning level", "warning", zerolog.WarnLevel},
		{"error level", "error", zerolog.ErrorLevel},
		{"fatal level", "fatal", zerolog.FatalLevel},
		{"panic level", "panic", zerolog.PanicLevel},
		{"disabled level", "disabled", zerolog.Disabled},
		{"off level", "off", zerolog.Disabled},
		{"unknown level defaults to info", "unknown", zerolog.InfoLevel},
		{"empty string defaults to info", "", zerolog.InfoLevel},
		{"mixed case", "DEBUG", zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLoggerWithLevel(tt.level)
			assert.IsType(t, &zerologLogger{}, logger)
			assert.Equal(t, tt.expectedLevel, zerolog.GlobalLevel())
		})
	}
}

func TestNewLeveledLogger(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	var buf bytes.Buffer

	l := NewLeveledLogger(&buf, "warn")
	l.Info("hidden")
	l.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}

func TestWithFields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	var buf bytes.Buffer

	base := NewLoggerWithWriter(&buf)
	withFields := base.WithFields(map[string]interface{}{
		"document_id":   "d1",
		"warning_count": 3,
		"sanitized":     true,
		"nil_field":     nil,
	}).WithField("layout", "section")
	withFields.Info("imported")

	out := buf.String()
	assert.Contains(t, out, `"document_id":"d1"`)
	assert.Contains(t, out, `"warning_count":3`)
	assert.Contains(t, out, `"sanitized":true`)
	assert.Contains(t, out, `"nil_field":null`)
	assert.Contains(t, out, `"layout":"section"`)

	buf.Reset()
	base.Info("plain")
	assert.NotContains(t, buf.String(), "document_id")
}

func TestTestLoggerRecords(t *testing.T) {
	l := NewTestLogger(t)

	l.Info("started")
	child := l.WithField("warning_count", 2)
	child.Warn("import produced warnings")

	entries := l.Entries()
	assert.Len(t, entries, 2)
	assert.Equal(t, []string{"import produced warnings"}, l.Messages("warn"))
	assert.Equal(t, 2, entries[1].Fields["warning_count"])
	assert.Empty(t, entries[0].Fields)
}

func TestNewMockLogger(t *testing.T) {
	assert.NotNil(t, NewMockLogger())
	assert.NotNil(t, NewMockLogger(t))
}
