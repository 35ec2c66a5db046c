package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/akyairhashvil/ascetic/internal/discipline"
	"github.com/akyairhashvil/ascetic/internal/models"
	"github.com/akyairhashvil/ascetic/internal/notify"
)

// recorder captures every feedback signal in order.
type recorder struct {
	signals []notify.Category
}

func (r *recorder) Notify(c notify.Category) { r.signals = append(r.signals, c) }

func (r *recorder) last() (notify.Category, bool) {
	if len(r.signals) == 0 {
		return 0, false
	}
	return r.signals[len(r.signals)-1], true
}

// failingPersister always errors; the store must swallow it.
type failingPersister struct{ calls int }

func (p *failingPersister) ReplaceTasks(context.Context, []models.Task) error {
	p.calls++
	return errors.New("disk gone")
}

func newTestStore(t *testing.T) (*Store, *recorder) {
	t.Helper()
	rec := &recorder{}
	st := New(nil, rec)
	seq := 0
	st.SetClock(func() time.Time { return time.UnixMilli(1_700_000_000_000) })
	st.newID = func() string {
		seq++
		return fmt.Sprintf("id-%d", seq)
	}
	return st, rec
}

func TestAddStartsWithDisarmedTimer(t *testing.T) {
	st, rec := newTestStore(t)
	task, err := st.Add(models.SectionToday, "  Сделать отчет #работа  ")
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if task.Title != "Сделать отчет #работа" {
		t.Fatalf("Title = %q, want trimmed", task.Title)
	}
	if task.LastTitleEditAt != 0 {
		t.Fatalf("LastTitleEditAt = %d, want 0 on creation", task.LastTitleEditAt)
	}
	if len(task.Tags) != 1 || task.Tags[0] != "#работа" {
		t.Fatalf("Tags = %v, want [#работа]", task.Tags)
	}
	if task.DateAddedToToday == 0 {
		t.Fatal("DateAddedToToday not stamped on a Today add")
	}
	if c, _ := rec.last(); c != notify.Success {
		t.Fatalf("signal = %v, want success", c)
	}
}

func TestAddOutsideTodayHasNoEntryStamp(t *testing.T) {
	st, _ := newTestStore(t)
	task, err := st.Add(models.SectionMonth, "цель")
	if err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if task.DateAddedToToday != 0 {
		t.Fatalf("DateAddedToToday = %d outside Today", task.DateAddedToToday)
	}
}

func TestAddRejectsFullBucket(t *testing.T) {
	st, rec := newTestStore(t)
	for i := 0; i < 3; i++ {
		if _, err := st.Add(models.SectionToday, fmt.Sprintf("задача %d", i)); err != nil {
			t.Fatalf("Add() #%d error: %v", i, err)
		}
	}
	_, err := st.Add(models.SectionToday, "четвертая")
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("Add() into full Today = %v, want ErrCapacityExceeded", err)
	}
	if c, _ := rec.last(); c != notify.Error {
		t.Fatalf("signal = %v, want error", c)
	}
	if st.CountSection(models.SectionToday) != 3 {
		t.Fatalf("CountSection = %d after a rejected add", st.CountSection(models.SectionToday))
	}
}

func TestAddUnknownSection(t *testing.T) {
	st, _ := newTestStore(t)
	if _, err := st.Add("someday", "x"); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("Add() = %v, want ErrUnknownSection", err)
	}
}

func TestDoneIsUnbounded(t *testing.T) {
	st, _ := newTestStore(t)
	for i := 0; i < 25; i++ {
		if _, err := st.Add(models.SectionDone, fmt.Sprintf("готово %d", i)); err != nil {
			t.Fatalf("Add() into Done #%d error: %v", i, err)
		}
	}
}

func TestMoveIntoFullBucketRejected(t *testing.T) {
	st, rec := newTestStore(t)
	for i := 0; i < 3; i++ {
		st.Add(models.SectionToday, fmt.Sprintf("сегодня %d", i))
	}
	task, _ := st.Add(models.SectionTomorrow, "завтра")

	err := st.Move(task.ID, models.SectionToday)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("Move() into full Today = %v, want ErrCapacityExceeded", err)
	}
	got, _ := st.Get(task.ID)
	if got.Section != models.SectionTomorrow {
		t.Fatalf("Section = %q after a rejected move", got.Section)
	}
	if c, _ := rec.last(); c != notify.Error {
		t.Fatalf("signal = %v, want error", c)
	}
}

func TestMoveSameBucketIsNoOp(t *testing.T) {
	st, rec := newTestStore(t)
	for i := 0; i < 3; i++ {
		st.Add(models.SectionToday, fmt.Sprintf("сегодня %d", i))
	}
	task := st.BySection(models.SectionToday)[0]
	st.SetFocus(task.ID, true)
	before, _ := st.Get(task.ID)

	// Never capacity-blocked even though the bucket is full.
	if err := st.Move(task.ID, models.SectionToday); err != nil {
		t.Fatalf("Move() onto own bucket = %v", err)
	}
	after, _ := st.Get(task.ID)
	if after.UpdatedAt != before.UpdatedAt || after.IsFocus != before.IsFocus ||
		after.DateAddedToToday != before.DateAddedToToday {
		t.Fatal("same-bucket move mutated the task")
	}
	if c, _ := rec.last(); c != notify.Medium {
		t.Fatalf("signal = %v, want medium", c)
	}
}

func TestMoveLeavingTodayClearsFocus(t *testing.T) {
	st, _ := newTestStore(t)
	task, _ := st.Add(models.SectionToday, "фокус")
	st.SetFocus(task.ID, true)

	if err := st.Move(task.ID, models.SectionThisWeek); err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	got, _ := st.Get(task.ID)
	if got.IsFocus {
		t.Fatal("IsFocus survived leaving Today")
	}
}

func TestMoveIntoTodayStampsEntry(t *testing.T) {
	st, _ := newTestStore(t)
	task, _ := st.Add(models.SectionTomorrow, "задача")
	later := time.UnixMilli(1_700_000_100_000)
	st.SetClock(func() time.Time { return later })

	if err := st.Move(task.ID, models.SectionToday); err != nil {
		t.Fatalf("Move() error: %v", err)
	}
	got, _ := st.Get(task.ID)
	if got.DateAddedToToday != models.TimeToMillis(later) {
		t.Fatalf("DateAddedToToday = %d, want %d", got.DateAddedToToday, models.TimeToMillis(later))
	}
	if got.UpdatedAt != models.TimeToMillis(later) {
		t.Fatalf("UpdatedAt = %d, want %d", got.UpdatedAt, models.TimeToMillis(later))
	}
}

func TestSetFocusIsExclusive(t *testing.T) {
	st, _ := newTestStore(t)
	a, _ := st.Add(models.SectionToday, "первая")
	b, _ := st.Add(models.SectionToday, "вторая")

	st.SetFocus(a.ID, true)
	st.SetFocus(b.ID, true)

	focused := 0
	for _, task := range st.Tasks() {
		if task.IsFocus {
			focused++
			if task.ID != b.ID {
				t.Fatalf("focus on %s, want %s", task.ID, b.ID)
			}
		}
	}
	if focused != 1 {
		t.Fatalf("focused = %d, want 1", focused)
	}
}

func TestSetFocusDoesNotTouchUpdatedAt(t *testing.T) {
	st, _ := newTestStore(t)
	task, _ := st.Add(models.SectionToday, "задача")
	before, _ := st.Get(task.ID)
	st.SetClock(func() time.Time { return time.UnixMilli(1_700_000_500_000) })

	st.SetFocus(task.ID, true)
	after, _ := st.Get(task.ID)
	if after.UpdatedAt != before.UpdatedAt {
		t.Fatal("starring changed UpdatedAt")
	}
}

func TestCommitEditArmsAndDisarmsTimer(t *testing.T) {
	st, _ := newTestStore(t)
	task, _ := st.Add(models.SectionToday, "черновик")
	st.SetFocus(task.ID, true)
	now := time.UnixMilli(1_700_000_200_000)
	st.SetClock(func() time.Time { return now })

	if err := st.CommitEdit(task.ID, "Готовая формулировка", nil); err != nil {
		t.Fatalf("CommitEdit() error: %v", err)
	}
	got, _ := st.Get(task.ID)
	if got.LastTitleEditAt != models.TimeToMillis(now) {
		t.Fatalf("LastTitleEditAt = %d, want %d", got.LastTitleEditAt, models.TimeToMillis(now))
	}

	// An empty title on the focus task disarms the timer again.
	st.SetAssessor(discipline.Assessor{LockDuration: 0, StaleThreshold: time.Hour, StagnantAfter: time.Hour})
	if err := st.CommitEdit(task.ID, "   ", nil); err != nil {
		t.Fatalf("CommitEdit(empty) on focus = %v", err)
	}
	got, _ = st.Get(task.ID)
	if got.LastTitleEditAt != 0 {
		t.Fatalf("LastTitleEditAt = %d after an empty edit, want 0", got.LastTitleEditAt)
	}
}

func TestCommitEditEmptyTitleRejectedOffFocus(t *testing.T) {
	st, rec := newTestStore(t)
	task, _ := st.Add(models.SectionTomorrow, "задача")
	if err := st.CommitEdit(task.ID, "  ", nil); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("CommitEdit(empty) = %v, want ErrEmptyTitle", err)
	}
	if c, _ := rec.last(); c != notify.Error {
		t.Fatalf("signal = %v, want error", c)
	}
}

func TestCommitEditLockBoundary(t *testing.T) {
	st, rec := newTestStore(t)
	st.SetAssessor(discipline.Assessor{
		LockDuration:   time.Minute,
		StaleThreshold: 24 * time.Hour,
		StagnantAfter:  3 * 24 * time.Hour,
	})
	task, _ := st.Add(models.SectionToday, "фокус")
	st.SetFocus(task.ID, true)

	t0 := time.UnixMilli(1_700_000_000_000)
	st.SetClock(func() time.Time { return t0 })
	if err := st.CommitEdit(task.ID, "формулировка", nil); err != nil {
		t.Fatalf("arming edit error: %v", err)
	}

	st.SetClock(func() time.Time { return t0.Add(59_999 * time.Millisecond) })
	if err := st.CommitEdit(task.ID, "правка", nil); !errors.Is(err, ErrLockViolation) {
		t.Fatalf("CommitEdit() inside lock = %v, want ErrLockViolation", err)
	}
	if c, _ := rec.last(); c != notify.Error {
		t.Fatalf("signal = %v, want error", c)
	}
	got, _ := st.Get(task.ID)
	if got.Title != "формулировка" {
		t.Fatalf("Title = %q after a rejected edit", got.Title)
	}

	st.SetClock(func() time.Time { return t0.Add(60_001 * time.Millisecond) })
	if err := st.CommitEdit(task.ID, "правка", nil); err != nil {
		t.Fatalf("CommitEdit() after lock = %v", err)
	}
}

func TestCommitEditDueDate(t *testing.T) {
	st, _ := newTestStore(t)
	task, _ := st.Add(models.SectionThisWeek, "задача")
	due := time.Date(2025, 6, 1, 10, 0, 0, 0, time.Local)

	if err := st.CommitEdit(task.ID, "задача", &due); err != nil {
		t.Fatalf("CommitEdit() error: %v", err)
	}
	got, _ := st.Get(task.ID)
	want := models.TimeToMillis(discipline.NormalizeDueDate(due))
	if got.DueDate != want {
		t.Fatalf("DueDate = %d, want end of day %d", got.DueDate, want)
	}

	if err := st.CommitEdit(task.ID, "задача", nil); err != nil {
		t.Fatalf("CommitEdit() error: %v", err)
	}
	got, _ = st.Get(task.ID)
	if got.DueDate != 0 {
		t.Fatalf("DueDate = %d after clearing, want 0", got.DueDate)
	}
}

func TestAttemptCompletePlainTask(t *testing.T) {
	st, rec := newTestStore(t)
	task, _ := st.Add(models.SectionToday, "обычная")

	gated, err := st.AttemptComplete(task.ID)
	if err != nil || gated {
		t.Fatalf("AttemptComplete() = %v, %v; want false, nil", gated, err)
	}
	got, _ := st.Get(task.ID)
	if got.Section != models.SectionDone {
		t.Fatalf("Section = %q, want done", got.Section)
	}
	if c, _ := rec.last(); c != notify.Success {
		t.Fatalf("signal = %v, want success", c)
	}
}

func TestAttemptCompleteTradingIsGated(t *testing.T) {
	st, _ := newTestStore(t)
	task, _ := st.Add(models.SectionToday, "Сделка #трейдинг")

	gated, err := st.AttemptComplete(task.ID)
	if err != nil {
		t.Fatalf("AttemptComplete() error: %v", err)
	}
	if !gated {
		t.Fatal("gated = false for a trading-tagged task")
	}
	got, _ := st.Get(task.ID)
	if got.Section != models.SectionToday {
		t.Fatalf("Section = %q, trading task moved without confirmation", got.Section)
	}

	if err := st.CompleteGated(task.ID); err != nil {
		t.Fatalf("CompleteGated() error: %v", err)
	}
	got, _ = st.Get(task.ID)
	if got.Section != models.SectionDone {
		t.Fatalf("Section = %q after confirmation, want done", got.Section)
	}
}

func TestAttemptCompleteReopensDoneTask(t *testing.T) {
	st, _ := newTestStore(t)
	task, _ := st.Add(models.SectionDone, "закрытая")

	gated, err := st.AttemptComplete(task.ID)
	if err != nil || gated {
		t.Fatalf("AttemptComplete() = %v, %v; want false, nil", gated, err)
	}
	got, _ := st.Get(task.ID)
	if got.Section != models.SectionToday {
		t.Fatalf("Section = %q, want today", got.Section)
	}
	if got.DateAddedToToday == 0 {
		t.Fatal("DateAddedToToday not stamped on reopen")
	}
}

func TestReopenBlockedByFullToday(t *testing.T) {
	st, _ := newTestStore(t)
	for i := 0; i < 3; i++ {
		st.Add(models.SectionToday, fmt.Sprintf("сегодня %d", i))
	}
	task, _ := st.Add(models.SectionDone, "закрытая")

	_, err := st.AttemptComplete(task.ID)
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("reopen into full Today = %v, want ErrCapacityExceeded", err)
	}
	got, _ := st.Get(task.ID)
	if got.Section != models.SectionDone {
		t.Fatalf("Section = %q after a blocked reopen", got.Section)
	}
}

func TestCelebrationFiresOncePerCompletion(t *testing.T) {
	st, _ := newTestStore(t)
	fired := 0
	st.SetCelebration(func() { fired++ })

	task, _ := st.Add(models.SectionToday, "задача")
	if _, err := st.AttemptComplete(task.ID); err != nil {
		t.Fatalf("AttemptComplete() error: %v", err)
	}
	if fired != 1 {
		t.Fatalf("celebration fired %d times, want 1", fired)
	}

	// Reopening is not a completion.
	if _, err := st.AttemptComplete(task.ID); err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	if fired != 1 {
		t.Fatalf("celebration fired %d times after a reopen, want 1", fired)
	}
}

func TestExactlyOneSignalPerOperation(t *testing.T) {
	st, rec := newTestStore(t)
	task, _ := st.Add(models.SectionToday, "задача")
	st.Delete(task.ID)
	st.Add(models.SectionToday, "вторая")
	if len(rec.signals) != 3 {
		t.Fatalf("signals = %v, want one per operation", rec.signals)
	}
}

func TestSubtasks(t *testing.T) {
	st, rec := newTestStore(t)
	task, _ := st.Add(models.SectionToday, "задача")

	sub, err := st.AddSubtask(task.ID, "  шаг один  ")
	if err != nil {
		t.Fatalf("AddSubtask() error: %v", err)
	}
	if sub.Title != "шаг один" {
		t.Fatalf("subtask Title = %q, want trimmed", sub.Title)
	}
	if c, _ := rec.last(); c != notify.Light {
		t.Fatalf("signal = %v, want light", c)
	}

	if _, err := st.AddSubtask(task.ID, "   "); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("AddSubtask(blank) = %v, want ErrEmptyTitle", err)
	}

	if err := st.ToggleSubtask(task.ID, sub.ID); err != nil {
		t.Fatalf("ToggleSubtask() error: %v", err)
	}
	got, _ := st.Get(task.ID)
	if !got.Subtasks[0].IsCompleted {
		t.Fatal("subtask not toggled")
	}
	if err := st.ToggleSubtask(task.ID, "missing"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("ToggleSubtask(missing) = %v, want ErrTaskNotFound", err)
	}
}

func TestLoadNormalizesNilSlices(t *testing.T) {
	st, _ := newTestStore(t)
	st.Load([]models.Task{{ID: "t1", Title: "x", Section: models.SectionToday}})
	got, _ := st.Get("t1")
	if got.Tags == nil || got.Subtasks == nil {
		t.Fatal("Load() left nil slices")
	}
}

func TestPersistFailureIsSwallowed(t *testing.T) {
	rec := &recorder{}
	persist := &failingPersister{}
	st := New(persist, rec)

	if _, err := st.Add(models.SectionToday, "задача"); err != nil {
		t.Fatalf("Add() surfaced a persistence error: %v", err)
	}
	if persist.calls != 1 {
		t.Fatalf("persister called %d times, want 1", persist.calls)
	}
	if c, _ := rec.last(); c != notify.Success {
		t.Fatalf("signal = %v, want success despite the mirror failure", c)
	}
}

func TestOpErrorCarriesContext(t *testing.T) {
	st, _ := newTestStore(t)
	_, err := st.Add("nope", "x")
	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatalf("error %T does not unwrap to *OpError", err)
	}
	if opErr.Op != "add" {
		t.Fatalf("Op = %q, want add", opErr.Op)
	}
}
