// Package syncer moves the whole local state to and from the remote
// snapshot store. There is no merge: push overwrites the bin, pull
// overwrites the local collection, title, and focus-period start.
package syncer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/akyairhashvil/ascetic/internal/config"
	"github.com/akyairhashvil/ascetic/internal/focusperiod"
	"github.com/akyairhashvil/ascetic/internal/models"
	"github.com/akyairhashvil/ascetic/internal/notify"
	"github.com/akyairhashvil/ascetic/internal/store"
	"github.com/akyairhashvil/ascetic/internal/util"
)

// SnapshotPort is the remote snapshot store contract.
//
//go:generate mockgen -source=syncer.go -destination=mock_port_test.go -package=syncer
type SnapshotPort interface {
	Put(ctx context.Context, snap models.Snapshot) error
	Get(ctx context.Context) (models.Snapshot, error)
}

// Settings persists the app title and focus-period start outside the
// task collection.
type Settings interface {
	GetSetting(ctx context.Context, key string) (string, bool)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error
}

// Syncer orchestrates push and pull. Snapshot, Apply, and the Push/Pull
// convenience wrappers mutate the shared store, settings, and period;
// the caller must keep those on one goroutine. Fetch and Upload are the
// I/O-only halves and are safe to run in the background.
type Syncer struct {
	store     *store.Store
	settings  Settings
	period    *focusperiod.Period
	port      SnapshotPort
	notifier  notify.Notifier
	celebrate func()
	now       func() time.Time

	// busy is an advisory re-entry guard for the UI; it is not a lock.
	busy atomic.Bool
}

// New wires the orchestrator. notifier and celebrate may be nil.
func New(st *store.Store, settings Settings, period *focusperiod.Period, port SnapshotPort, notifier notify.Notifier) *Syncer {
	s := &Syncer{
		store:     st,
		settings:  settings,
		period:    period,
		port:      port,
		notifier:  notifier,
		celebrate: func() {},
		now:       time.Now,
	}
	if s.notifier == nil {
		s.notifier = notify.Silent{}
	}
	return s
}

// SetClock overrides the time source. Used by tests.
func (s *Syncer) SetClock(now func() time.Time) { s.now = now }

// SetNotifier replaces the feedback sink.
func (s *Syncer) SetNotifier(n notify.Notifier) {
	if n == nil {
		n = notify.Silent{}
	}
	s.notifier = n
}

// SetCelebration registers the hook fired on a successful pull.
func (s *Syncer) SetCelebration(fn func()) {
	if fn == nil {
		fn = func() {}
	}
	s.celebrate = fn
}

// Busy reports whether a sync action is in flight. Advisory only.
func (s *Syncer) Busy() bool { return s.busy.Load() }

// Snapshot assembles the current exportable state.
func (s *Syncer) Snapshot(ctx context.Context) models.Snapshot {
	title, _ := s.settings.GetSetting(ctx, config.SettingAppTitle)
	return models.Snapshot{
		Tasks:          s.store.Tasks(),
		AppTitle:       title,
		FocusStartTime: s.period.StartMillis(),
		UpdatedAt:      models.TimeToMillis(s.now()),
	}
}

// Upload writes an already-assembled snapshot to the remote bin. Pure
// I/O; safe to call from a background goroutine.
func (s *Syncer) Upload(ctx context.Context, snap models.Snapshot) error {
	s.busy.Store(true)
	defer s.busy.Store(false)
	return s.port.Put(ctx, snap)
}

// Fetch reads the remote snapshot without touching any local state.
// Pure I/O; safe to call from a background goroutine.
func (s *Syncer) Fetch(ctx context.Context) (models.Snapshot, error) {
	s.busy.Store(true)
	defer s.busy.Store(false)
	return s.port.Get(ctx)
}

// Push writes the whole local state to the remote bin. No retry; the
// failure surfaces to the caller.
func (s *Syncer) Push(ctx context.Context) error {
	if err := s.Upload(ctx, s.Snapshot(ctx)); err != nil {
		s.notifier.Notify(notify.Error)
		return err
	}
	s.notifier.Notify(notify.Success)
	return nil
}

// Pull replaces the local task collection, app title, and focus-period
// start with the remote snapshot. On failure nothing local changes. On
// success the period expiry check runs immediately against the fetched
// start so the title lock state is consistent without waiting for the
// next tick.
func (s *Syncer) Pull(ctx context.Context) error {
	snap, err := s.Fetch(ctx)
	if err != nil {
		s.notifier.Notify(notify.Error)
		return err
	}
	s.Apply(ctx, snap)
	s.notifier.Notify(notify.Success)
	return nil
}

// Apply replaces the local task collection, app title, and focus-period
// start with a fetched snapshot. Mutates shared state; the UI calls it
// from the update loop, never from the fetch goroutine.
func (s *Syncer) Apply(ctx context.Context, snap models.Snapshot) {
	s.store.Load(snap.Tasks)
	s.store.Flush()

	util.LogError("persist app title", s.settings.SetSetting(ctx, config.SettingAppTitle, snap.AppTitle))
	s.period.SetStartMillis(snap.FocusStartTime)
	s.persistPeriod(ctx)

	if s.period.Check(s.now()) {
		// Period elapsed while we were away: clear the title the same
		// way the periodic check would.
		util.LogError("persist app title", s.settings.SetSetting(ctx, config.SettingAppTitle, ""))
		s.persistPeriod(ctx)
	}

	s.celebrate()
}

func (s *Syncer) persistPeriod(ctx context.Context) {
	if start := s.period.StartMillis(); start != nil {
		util.LogError("persist focus period", s.settings.SetSetting(ctx, config.SettingFocusStartTime, *start))
	} else {
		util.LogError("persist focus period", s.settings.DeleteSetting(ctx, config.SettingFocusStartTime))
	}
}
