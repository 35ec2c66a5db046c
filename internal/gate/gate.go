// Package gate implements the trading checklist: a mandatory block of
// acknowledgements that a trading-tagged task must clear before it may
// be marked done.
package gate

import (
	"errors"
	"fmt"

	"github.com/akyairhashvil/ascetic/internal/config"
)

// ErrChecklistIncomplete rejects a confirm while any item is unchecked.
var ErrChecklistIncomplete = errors.New("checklist incomplete")

// ErrNotOpen rejects a confirm without a pending task.
var ErrNotOpen = errors.New("no task pending confirmation")

// Gate holds the transient checklist state for one pending completion.
// The checked vector resets on open and on a successful confirm; it is
// never persisted.
type Gate struct {
	items    []string
	checked  []bool
	pending  string
	complete func(taskID string) error
}

// New creates a gate that reports confirmed completions through
// complete.
func New(complete func(taskID string) error) *Gate {
	return &Gate{
		items:    config.TradingChecklist,
		checked:  make([]bool, len(config.TradingChecklist)),
		complete: complete,
	}
}

// Items returns the fixed ordered checklist text.
func (g *Gate) Items() []string { return g.items }

// Open stages a task for gated completion and resets the checklist.
func (g *Gate) Open(taskID string) {
	g.pending = taskID
	g.checked = make([]bool, len(g.items))
}

// IsOpen reports whether a completion is pending.
func (g *Gate) IsOpen() bool { return g.pending != "" }

// PendingTask returns the staged task id.
func (g *Gate) PendingTask() string { return g.pending }

// Toggle flips one acknowledgement.
func (g *Gate) Toggle(i int) {
	if i >= 0 && i < len(g.checked) {
		g.checked[i] = !g.checked[i]
	}
}

// Checked reports the state of one acknowledgement.
func (g *Gate) Checked(i int) bool {
	return i >= 0 && i < len(g.checked) && g.checked[i]
}

// AllChecked reports whether every acknowledgement is in place.
func (g *Gate) AllChecked() bool {
	for _, c := range g.checked {
		if !c {
			return false
		}
	}
	return true
}

// Confirm completes the pending task once all items are checked, then
// resets the gate. An incomplete checklist is rejected without any
// state change.
func (g *Gate) Confirm() error {
	if g.pending == "" {
		return ErrNotOpen
	}
	if !g.AllChecked() {
		return ErrChecklistIncomplete
	}
	id := g.pending
	if g.complete != nil {
		if err := g.complete(id); err != nil {
			return fmt.Errorf("confirm %s: %w", id, err)
		}
	}
	g.reset()
	return nil
}

// Cancel discards the pending task without touching it.
func (g *Gate) Cancel() {
	g.reset()
}

func (g *Gate) reset() {
	g.pending = ""
	g.checked = make([]bool, len(g.items))
}
