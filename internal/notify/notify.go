// Package notify is the transient user-facing notification channel.
package notify

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Severity of a notification. The pipeline only emits SeverityError.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Notifier accepts one notification per call.
type Notifier interface {
	Notify(sev Severity, message string)
}

// Func adapts a function to Notifier.
type Func func(sev Severity, message string)

func (f Func) Notify(sev Severity, message string) { f(sev, message) }

// Discard drops every notification.
var Discard Notifier = Func(func(Severity, string) {})

// Console writes notifications to w (stderr in the CLI) and logs them.
type Console struct {
	mu  sync.Mutex
	w   io.Writer
	log *zap.Logger
}

// NewConsole returns a Notifier printing "<severity>: <message>" lines.
func NewConsole(w io.Writer, log *zap.Logger) *Console {
	if log == nil {
		log = zap.NewNop()
	}
	return &Console{w: w, log: log}
}

func (c *Console) Notify(sev Severity, message string) {
	c.mu.Lock()
	_, _ = fmt.Fprintf(c.w, "%s: %s\n", sev, message)
	c.mu.Unlock()
	c.log.Debug("notify", zap.String("severity", string(sev)), zap.String("message", message))
}

// Entry is a recorded notification.
type Entry struct {
	Severity Severity
	Message  string
}

// Recorder keeps notifications in memory; safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) Notify(sev Severity, message string) {
	r.mu.Lock()
	r.entries = append(r.entries, Entry{Severity: sev, Message: message})
	r.mu.Unlock()
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Len is the number of notifications recorded.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
