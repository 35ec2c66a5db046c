package store

import (
	"errors"
	"fmt"

	"github.com/akyairhashvil/ascetic/internal/models"
)

var (
	// ErrCapacityExceeded rejects an add or cross-bucket move into a
	// full bucket.
	ErrCapacityExceeded = errors.New("section is at capacity")
	// ErrLockViolation rejects a title/due-date edit on a focus-locked
	// task.
	ErrLockViolation = errors.New("focus task is edit-locked")
	// ErrEmptyTitle rejects saving an empty title on a non-focus task.
	ErrEmptyTitle = errors.New("title cannot be empty")
	// ErrTaskNotFound rejects operations on an unknown task id.
	ErrTaskNotFound = errors.New("task not found")
	// ErrUnknownSection rejects moves into an undefined bucket.
	ErrUnknownSection = errors.New("unknown section")
)

// OpError wraps a store operation failure with its context.
type OpError struct {
	Op      string
	TaskID  string
	Section models.SectionID
	Err     error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.TaskID != "" && e.Section != "":
		return fmt.Sprintf("%s task %s -> %s: %v", e.Op, e.TaskID, e.Section, e.Err)
	case e.TaskID != "":
		return fmt.Sprintf("%s task %s: %v", e.Op, e.TaskID, e.Err)
	case e.Section != "":
		return fmt.Sprintf("%s %s: %v", e.Op, e.Section, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func wrapErr(op, taskID string, section models.SectionID, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, TaskID: taskID, Section: section, Err: err}
}
