package barkeep

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AttemptLogger is the interface for journaling model attempts.
type AttemptLogger interface {
	LogAttempt(attempt AttemptLog) error
}

// Attempt outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeTransportError = "transport_error"
	OutcomeParseFailure   = "parse_failure"
	OutcomeCanceled       = "canceled"
)

// NewAttemptLogFilePath returns a file path under dir named after the session and task, so
// journals from different sessions are easy to tell apart.
func NewAttemptLogFilePath(dir, sessionID, task string) string {
	return filepath.Join(dir, fmt.Sprintf(
		"%d.%s.%s.json",
		time.Now().Unix(),
		strings.ReplaceAll(strings.ToLower(task), " ", "_"),
		sessionID,
	))
}

// AttemptLog represents a single model attempt made by the fallback loop
type AttemptLog struct {
	Attempt   int       `json:"attempt"`
	Task      string    `json:"task"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
	Duration  string    `json:"duration"`
	Outcome   string    `json:"outcome"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// FileAttemptLogger accumulates attempts and flushes them to a writer at the end
type FileAttemptLogger struct {
	attempts []AttemptLog
	writer   io.Writer
}

// NewFileAttemptLogger creates a new file-based attempt logger
func NewFileAttemptLogger(writer io.Writer) *FileAttemptLogger {
	return &FileAttemptLogger{
		attempts: make([]AttemptLog, 0),
		writer:   writer,
	}
}

// LogAttempt buffers an attempt (does not flush immediately)
func (l *FileAttemptLogger) LogAttempt(attempt AttemptLog) error {
	l.attempts = append(l.attempts, attempt)
	return nil
}

// Attempts returns the buffered attempts.
func (l *FileAttemptLogger) Attempts() []AttemptLog {
	return l.attempts
}

// Flush writes all buffered attempts to the writer
func (l *FileAttemptLogger) Flush() error {
	if l.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"generation_session": map[string]any{
			"timestamp": time.Now(),
			"attempts":  l.attempts,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal attempt log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write attempt log: %w", err)
	}

	l.attempts = l.attempts[:0]
	return nil
}

// NoOpAttemptLogger discards all attempts
type NoOpAttemptLogger struct{}

// NewNoOpAttemptLogger creates a new no-op attempt logger
func NewNoOpAttemptLogger() *NoOpAttemptLogger {
	return &NoOpAttemptLogger{}
}

func (nop *NoOpAttemptLogger) LogAttempt(attempt AttemptLog) error {
	return nil
}

// StdoutAttemptLogger writes each attempt as a JSON line to stdout (for Lambda/CloudWatch)
type StdoutAttemptLogger struct {
	out io.Writer
}

// NewStdoutAttemptLogger creates a new stdout-based attempt logger
func NewStdoutAttemptLogger() *StdoutAttemptLogger {
	return &StdoutAttemptLogger{out: os.Stdout}
}

func (l *StdoutAttemptLogger) LogAttempt(attempt AttemptLog) error {
	data, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(l.out, string(data))
	return err
}
