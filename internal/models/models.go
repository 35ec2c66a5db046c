package models

import "time"

// SectionID identifies one of the fixed planning buckets.
type SectionID string

const (
	SectionToday    SectionID = "today"
	SectionTomorrow SectionID = "tomorrow"
	SectionThisWeek SectionID = "thisWeek"
	SectionNextWeek SectionID = "nextWeek"
	SectionMonth    SectionID = "month"
	SectionDone     SectionID = "done"
)

// SectionConfig describes a bucket and its capacity. Limit 0 means unbounded.
type SectionConfig struct {
	ID    SectionID
	Title string
	Limit int
}

// Unbounded reports whether the section accepts any number of tasks.
func (c SectionConfig) Unbounded() bool { return c.Limit <= 0 }

// Subtask is a checklist line inside a task.
type Subtask struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

// Task is a single planner item. All timestamps are epoch milliseconds;
// LastTitleEditAt is 0 while the discipline timer is disarmed (empty/draft
// title). DateAddedToToday and DueDate are 0 when not applicable.
type Task struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Section          SectionID `json:"section"`
	CreatedAt        int64     `json:"createdAt"`
	UpdatedAt        int64     `json:"updatedAt"`
	LastTitleEditAt  int64     `json:"lastTitleEditAt"`
	DateAddedToToday int64     `json:"dateAddedToToday,omitempty"`
	DueDate          int64     `json:"dueDate,omitempty"`
	IsFocus          bool      `json:"isFocus"`
	Tags             []string  `json:"tags"`
	Subtasks         []Subtask `json:"subtasks"`
}

// Snapshot is the whole exportable state exchanged with the remote store.
// FocusStartTime is a decimal-string epoch-millisecond timestamp, or nil
// when no weekly focus period is active.
type Snapshot struct {
	Tasks          []Task  `json:"tasks"`
	AppTitle       string  `json:"appTitle"`
	FocusStartTime *string `json:"focusStartTime"`
	UpdatedAt      int64   `json:"updatedAt"`
}

// TimeToMillis converts a time to epoch milliseconds.
func TimeToMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// MillisToTime converts epoch milliseconds to a time.
func MillisToTime(ms int64) time.Time {
	return time.UnixMilli(ms)
}
