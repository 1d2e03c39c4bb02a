// Package audit records every change hosts-page-blocker makes to the hosts file.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Actions written to the log.
const (
	ActionBlock   = "block"
	ActionUnblock = "unblock"
	ActionRestore = "restore"
	ActionWatch   = "watch-apply"
)

// Entry represents a single audit log entry.
type Entry struct {
	Timestamp string `json:"timestamp"`
	UID       int    `json:"uid"`
	Action    string `json:"action"`
	Details   any    `json:"details,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// Logger appends JSON lines to the audit log. A nil *Logger discards entries.
type Logger struct {
	mu      sync.Mutex
	closer  io.Closer
	encoder *json.Encoder
	now     func() time.Time
}

// Open creates the log directory if needed and opens path for appending.
func Open(path string) (*Logger, error) {
	// #nosec G301 - Log directory permissions are intentionally 0755
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// #nosec G302,G304 - path is the platform default or set by the administrator
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	logger := New(file)
	logger.closer = file
	return logger, nil
}

// New creates a Logger writing to w.
func New(w io.Writer) *Logger {
	return &Logger{
		encoder: json.NewEncoder(w),
		now:     time.Now,
	}
}

// Log writes an audit entry. err == nil marks the action as successful.
func (l *Logger) Log(action string, details any, err error) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{
		Timestamp: l.now().UTC().Format(time.RFC3339),
		UID:       os.Getuid(),
		Action:    action,
		Details:   details,
		Success:   err == nil,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	// Ignore encoding errors - audit logging should not fail the operation
	_ = l.encoder.Encode(entry)
}

// Close closes the underlying file, if any.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closer != nil {
		err := l.closer.Close()
		l.closer = nil // Prevent double close
		return err
	}
	return nil
}
