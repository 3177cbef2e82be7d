// Package task is a small in-process progress handle (SetName,
// SetDescription, SetProgress, leveled logging, terminal Success/Fail)
// implemented locally: this module has no terminal-UI dependency, only
// CLI-appropriate plain-text progress reporting.
package task

import (
	"fmt"
	"sync"

	"github.com/flanksource/jsvm/pkg/logging"
)

// Task is a handle for one long-running operation (fetch, install).
// Safe for concurrent use; a nil *Task is valid and discards everything,
// so callers that don't want progress reporting can pass nil.
type Task struct {
	mu          sync.Mutex
	name        string
	description string
	current     int
	total       int
	verbosity   int
}

// New creates a Task with the given display name.
func New(name string) *Task {
	return &Task{name: name}
}

// Name returns the task's display name.
func (t *Task) Name() string {
	if t == nil {
		return ""
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.name
}

// SetName updates the task's display name.
func (t *Task) SetName(name string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.name = name
	t.mu.Unlock()
}

// SetDescription updates the one-line status shown alongside the name.
func (t *Task) SetDescription(desc string) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.description = desc
	t.mu.Unlock()
	logging.Debugf("%s: %s", t.Name(), desc)
}

// SetProgress records current/total byte or item counts.
func (t *Task) SetProgress(current, total int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	t.current = current
	t.total = total
	t.mu.Unlock()
}

// V returns a verbosity-scoped view of t; Infof on it only logs when
// verbosity <= the task's configured level (always, here, since this
// module doesn't expose a verbosity dial to the CLI beyond log level).
func (t *Task) V(verbosity int) *Task {
	if t == nil {
		return nil
	}
	return &Task{name: t.name, verbosity: verbosity}
}

// Debugf logs at debug level, prefixed with the task name.
func (t *Task) Debugf(format string, args ...interface{}) { t.logf(logging.Debugf, format, args...) }

// Infof logs at info level, prefixed with the task name.
func (t *Task) Infof(format string, args ...interface{}) { t.logf(logging.Infof, format, args...) }

// Warnf logs at warn level, prefixed with the task name.
func (t *Task) Warnf(format string, args ...interface{}) { t.logf(logging.Warnf, format, args...) }

// Errorf logs at error level, prefixed with the task name.
func (t *Task) Errorf(format string, args ...interface{}) { t.logf(logging.Errorf, format, args...) }

func (t *Task) logf(sink func(string, ...interface{}), format string, args ...interface{}) {
	if t == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	name := t.Name()
	if name == "" {
		sink("%s", msg)
		return
	}
	sink("%s: %s", name, msg)
}

// Success marks the task complete. Terminal; this module has no
// surrounding UI to notify, so it's a log line at info level.
func (t *Task) Success() {
	if t == nil {
		return
	}
	t.Infof("done")
}

// Fail marks the task failed with err.
func (t *Task) Fail(err error) {
	if t == nil {
		return
	}
	t.Errorf("failed: %v", err)
}
