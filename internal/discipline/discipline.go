// Package discipline derives the passive "pain" signals and the focus
// edit lock for a task. Everything here is a pure function of
// (task, now): no counters are stored, so a display refresh and the
// authoritative state can never drift apart.
package discipline

import (
	"fmt"
	"time"

	"github.com/akyairhashvil/ascetic/internal/config"
	"github.com/akyairhashvil/ascetic/internal/models"
)

// State is the full derived view of a task at a single instant.
type State struct {
	// TimerRunning is true once the task has an accepted non-empty
	// title edit on record.
	TimerRunning bool
	// SinceTitleEdit is now minus the last accepted title edit.
	// Meaningless when TimerRunning is false.
	SinceTitleEdit time.Duration
	// FocusLocked blocks title/due-date edits on a focus task until the
	// lock window has fully elapsed.
	FocusLocked bool
	// RemainingLock is the time left in the lock window; zero when
	// unlocked.
	RemainingLock time.Duration
	// StaleToday flags a task that has overstayed in the Today bucket.
	StaleToday bool
	// Stagnant flags a task untouched for longer than the stagnation
	// threshold.
	Stagnant bool
	// PastDue flags an uncompleted task whose due date has passed.
	PastDue bool
}

// Assessor computes task state against configurable thresholds. The
// zero value is not usable; call NewAssessor.
type Assessor struct {
	LockDuration   time.Duration
	StaleThreshold time.Duration
	StagnantAfter  time.Duration
}

// NewAssessor returns an assessor with the production thresholds.
func NewAssessor() Assessor {
	return Assessor{
		LockDuration:   config.FocusEditLock,
		StaleThreshold: config.StaleTodayThreshold,
		StagnantAfter:  config.StagnationThreshold,
	}
}

// Assess derives the task's state at the given instant.
func (a Assessor) Assess(task models.Task, now time.Time) State {
	nowMs := models.TimeToMillis(now)

	var st State
	st.TimerRunning = task.LastTitleEditAt > 0
	if st.TimerRunning {
		st.SinceTitleEdit = time.Duration(nowMs-task.LastTitleEditAt) * time.Millisecond
	}
	st.FocusLocked = task.IsFocus && st.TimerRunning && st.SinceTitleEdit < a.LockDuration
	if st.FocusLocked {
		st.RemainingLock = a.LockDuration - st.SinceTitleEdit
		if st.RemainingLock < 0 {
			st.RemainingLock = 0
		}
	}

	st.StaleToday = task.Section == models.SectionToday &&
		task.DateAddedToToday > 0 &&
		time.Duration(nowMs-task.DateAddedToToday)*time.Millisecond > a.StaleThreshold

	st.Stagnant = task.Section != models.SectionDone &&
		time.Duration(nowMs-task.UpdatedAt)*time.Millisecond > a.StagnantAfter

	st.PastDue = task.DueDate > 0 && nowMs > task.DueDate && task.Section != models.SectionDone

	return st
}

// FormatRemaining renders a lock countdown as hh:mm:ss.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// NormalizeDueDate moves a user-chosen due date to the last instant of
// that calendar day, so a task is overdue only once the day has passed.
func NormalizeDueDate(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 23, 59, 59, 999_000_000, day.Location())
}
