// Package store owns the authoritative in-memory task collection. Every
// mutation is synchronous, enforces the bucket capacity and completion
// gating rules, mirrors the collection to the persistence port best
// effort, and emits exactly one feedback signal.
package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/akyairhashvil/ascetic/internal/config"
	"github.com/akyairhashvil/ascetic/internal/discipline"
	"github.com/akyairhashvil/ascetic/internal/models"
	"github.com/akyairhashvil/ascetic/internal/notify"
	"github.com/akyairhashvil/ascetic/internal/util"
	"github.com/google/uuid"
)

// Persister mirrors the full collection to local storage. Failures are
// logged and swallowed: the in-memory collection is the source of truth.
type Persister interface {
	ReplaceTasks(ctx context.Context, tasks []models.Task) error
}

// Store holds the task collection and its mutation rules.
type Store struct {
	mu        sync.Mutex
	tasks     []models.Task
	persist   Persister
	notifier  notify.Notifier
	assessor  discipline.Assessor
	now       func() time.Time
	newID     func() string
	celebrate func()
}

// New creates a store mirroring to persist and signaling through
// notifier. Either may be nil.
func New(persist Persister, notifier notify.Notifier) *Store {
	s := &Store{
		persist:   persist,
		notifier:  notifier,
		assessor:  discipline.NewAssessor(),
		now:       time.Now,
		newID:     uuid.NewString,
		celebrate: func() {},
	}
	if s.notifier == nil {
		s.notifier = notify.Silent{}
	}
	return s
}

// SetClock overrides the time source. Used by tests.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// SetNotifier replaces the feedback sink.
func (s *Store) SetNotifier(n notify.Notifier) {
	if n == nil {
		n = notify.Silent{}
	}
	s.notifier = n
}

// SetAssessor overrides the discipline thresholds. Used by tests.
func (s *Store) SetAssessor(a discipline.Assessor) { s.assessor = a }

// SetCelebration registers the hook fired on each completion.
func (s *Store) SetCelebration(fn func()) {
	if fn == nil {
		fn = func() {}
	}
	s.celebrate = fn
}

// Load replaces the whole collection without persisting or signaling.
// Used on startup and by the sync pull.
func (s *Store) Load(tasks []models.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make([]models.Task, len(tasks))
	copy(s.tasks, tasks)
	for i := range s.tasks {
		if s.tasks[i].Tags == nil {
			s.tasks[i].Tags = []string{}
		}
		if s.tasks[i].Subtasks == nil {
			s.tasks[i].Subtasks = []models.Subtask{}
		}
	}
}

// Flush mirrors the current collection to the persistence port.
func (s *Store) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirror()
}

// Tasks returns a copy of the collection.
func (s *Store) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.tasks[i], true
	}
	return models.Task{}, false
}

// BySection returns the tasks resident in a bucket, in insertion order.
func (s *Store) BySection(id models.SectionID) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Task
	for _, t := range s.tasks {
		if t.Section == id {
			out = append(out, t)
		}
	}
	return out
}

// CountSection returns how many tasks occupy a bucket.
func (s *Store) CountSection(id models.SectionID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked(id)
}

// Add creates a task in the given bucket, rejecting when the bucket is
// at capacity.
func (s *Store) Add(section models.SectionID, rawTitle string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := config.SectionByID(section)
	if !ok {
		s.notifier.Notify(notify.Error)
		return models.Task{}, wrapErr("add", "", section, ErrUnknownSection)
	}
	if !cfg.Unbounded() && s.countLocked(section) >= cfg.Limit {
		s.notifier.Notify(notify.Error)
		return models.Task{}, wrapErr("add", "", section, ErrCapacityExceeded)
	}

	nowMs := models.TimeToMillis(s.now())
	title := strings.TrimSpace(rawTitle)
	task := models.Task{
		ID:        s.newID(),
		Title:     title,
		Section:   section,
		CreatedAt: nowMs,
		UpdatedAt: nowMs,
		// The discipline timer arms only on an accepted edit, never on
		// creation.
		LastTitleEditAt: 0,
		Tags:            util.ExtractTags(title),
		Subtasks:        []models.Subtask{},
	}
	if section == models.SectionToday {
		task.DateAddedToToday = nowMs
	}
	s.tasks = append(s.tasks, task)
	s.mirror()
	s.notifier.Notify(notify.Success)
	return task, nil
}

// Delete removes a task unconditionally.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return wrapErr("delete", id, "", ErrTaskNotFound)
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	s.mirror()
	s.notifier.Notify(notify.Medium)
	return nil
}

// Update replaces a task record wholesale, keyed by id. Callers are
// responsible for producing a valid next state; lock checks live in
// CommitEdit.
func (s *Store) Update(task models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(task.ID)
	if i < 0 {
		return wrapErr("update", task.ID, "", ErrTaskNotFound)
	}
	s.tasks[i] = task
	s.mirror()
	return nil
}

// Move transfers a task between buckets. A move into a full bucket other
// than the task's own is rejected; moving a task onto its current bucket
// is a no-op that is never capacity-blocked.
func (s *Store) Move(id string, target models.SectionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveLocked(id, target)
}

func (s *Store) moveLocked(id string, target models.SectionID) error {
	i := s.indexOf(id)
	if i < 0 {
		return wrapErr("move", id, target, ErrTaskNotFound)
	}
	cfg, ok := config.SectionByID(target)
	if !ok {
		s.notifier.Notify(notify.Error)
		return wrapErr("move", id, target, ErrUnknownSection)
	}
	task := &s.tasks[i]
	if task.Section == target {
		s.notifier.Notify(notify.Medium)
		return nil
	}
	if !cfg.Unbounded() && s.countLocked(target) >= cfg.Limit {
		s.notifier.Notify(notify.Error)
		return wrapErr("move", id, target, ErrCapacityExceeded)
	}

	completed := target == models.SectionDone
	task.Section = target
	task.UpdatedAt = models.TimeToMillis(s.now())
	if target == models.SectionToday {
		task.DateAddedToToday = task.UpdatedAt
	} else {
		task.IsFocus = false
	}
	s.mirror()
	if completed {
		s.celebrate()
		s.notifier.Notify(notify.Success)
	} else {
		s.notifier.Notify(notify.Medium)
	}
	return nil
}

// SetFocus stars or unstars a task. Starring unstars any other task in
// Today, so at most one focus task exists at a time.
func (s *Store) SetFocus(id string, focused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return wrapErr("focus", id, "", ErrTaskNotFound)
	}
	if focused {
		for j := range s.tasks {
			if j != i && s.tasks[j].IsFocus {
				s.tasks[j].IsFocus = false
			}
		}
	}
	s.tasks[i].IsFocus = focused
	s.mirror()
	s.notifier.Notify(notify.Medium)
	return nil
}

// CommitEdit applies an accepted title/due-date edit. This is the only
// path that arms or disarms the discipline timer: lastTitleEditAt
// becomes 0 when the trimmed title is empty, now otherwise. An empty
// title is a valid draft state on the focus task only.
func (s *Store) CommitEdit(id, rawTitle string, due *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return wrapErr("edit", id, "", ErrTaskNotFound)
	}
	task := &s.tasks[i]
	now := s.now()
	if s.assessor.Assess(*task, now).FocusLocked {
		s.notifier.Notify(notify.Error)
		return wrapErr("edit", id, "", ErrLockViolation)
	}
	title := strings.TrimSpace(rawTitle)
	if title == "" && !task.IsFocus {
		s.notifier.Notify(notify.Error)
		return wrapErr("edit", id, "", ErrEmptyTitle)
	}

	nowMs := models.TimeToMillis(now)
	task.Title = title
	task.Tags = util.ExtractTags(title)
	if due != nil {
		task.DueDate = models.TimeToMillis(discipline.NormalizeDueDate(*due))
	} else {
		task.DueDate = 0
	}
	if title == "" {
		task.LastTitleEditAt = 0
	} else {
		task.LastTitleEditAt = nowMs
	}
	task.UpdatedAt = nowMs
	s.mirror()
	s.notifier.Notify(notify.Success)
	return nil
}

// AddSubtask appends a checklist line to a task.
func (s *Store) AddSubtask(taskID, title string) (models.Subtask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(taskID)
	if i < 0 {
		return models.Subtask{}, wrapErr("add subtask", taskID, "", ErrTaskNotFound)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Subtask{}, wrapErr("add subtask", taskID, "", ErrEmptyTitle)
	}
	sub := models.Subtask{ID: s.newID(), Title: title}
	s.tasks[i].Subtasks = append(s.tasks[i].Subtasks, sub)
	s.tasks[i].UpdatedAt = models.TimeToMillis(s.now())
	s.mirror()
	s.notifier.Notify(notify.Light)
	return sub, nil
}

// ToggleSubtask flips a subtask's completion state.
func (s *Store) ToggleSubtask(taskID, subID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(taskID)
	if i < 0 {
		return wrapErr("toggle subtask", taskID, "", ErrTaskNotFound)
	}
	for j := range s.tasks[i].Subtasks {
		if s.tasks[i].Subtasks[j].ID == subID {
			s.tasks[i].Subtasks[j].IsCompleted = !s.tasks[i].Subtasks[j].IsCompleted
			s.tasks[i].UpdatedAt = models.TimeToMillis(s.now())
			s.mirror()
			s.notifier.Notify(notify.Light)
			return nil
		}
	}
	return wrapErr("toggle subtask", taskID, "", ErrTaskNotFound)
}

// AttemptComplete drives the completion flow. A task already in Done is
// re-opened back into Today. A trading-tagged task is deferred: gated is
// true and the caller must obtain checklist confirmation before
// completing. Anything else moves straight to Done.
func (s *Store) AttemptComplete(id string) (gated bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false, wrapErr("complete", id, "", ErrTaskNotFound)
	}
	task := s.tasks[i]
	if task.Section == models.SectionDone {
		return false, s.moveLocked(id, models.SectionToday)
	}
	if util.HasAnyTag(task.Tags, config.TradingTags) {
		return true, nil
	}
	return false, s.moveLocked(id, models.SectionDone)
}

// CompleteGated finishes a completion previously deferred by the
// trading gate.
func (s *Store) CompleteGated(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.moveLocked(id, models.SectionDone)
}

func (s *Store) indexOf(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) countLocked(id models.SectionID) int {
	n := 0
	for i := range s.tasks {
		if s.tasks[i].Section == id {
			n++
		}
	}
	return n
}

// mirror writes the collection through the persistence port. Must be
// called with the lock held.
func (s *Store) mirror() {
	if s.persist == nil {
		return
	}
	snapshot := make([]models.Task, len(s.tasks))
	copy(snapshot, s.tasks)
	util.LogError("persist tasks", s.persist.ReplaceTasks(context.Background(), snapshot))
}
