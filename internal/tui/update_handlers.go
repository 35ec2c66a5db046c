package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/akyairhashvil/ascetic/internal/config"
	"github.com/akyairhashvil/ascetic/internal/export"
	"github.com/akyairhashvil/ascetic/internal/models"
	"github.com/akyairhashvil/ascetic/internal/notify"
	"github.com/akyairhashvil/ascetic/internal/store"
	"github.com/akyairhashvil/ascetic/internal/util"
	tea "github.com/charmbracelet/bubbletea"
)

func (m DashboardModel) handleTick(_ TickMsg) (tea.Model, tea.Cmd) {
	now := m.now()
	if m.firework.ticks > 0 {
		m.firework.ticks--
	}
	// Expiry needs evaluating at least once per minute; the per-second
	// tick that drives the lock countdown more than covers it.
	if m.period.Check(now) {
		m.appTitle = ""
		ctx := context.Background()
		util.LogError("persist app title", m.settings.SetSetting(ctx, config.SettingAppTitle, ""))
		util.LogError("clear focus period", m.settings.DeleteSetting(ctx, config.SettingFocusStartTime))
		m.notify(notify.Success)
		m.message = "Неделя фокуса завершена."
	}
	return m, tickCmd()
}

func (m DashboardModel) handleSyncDone(msg syncDoneMsg) (tea.Model, tea.Cmd) {
	m.syncBusy = false
	if msg.err != nil {
		m.notify(notify.Error)
		m.message = fmt.Sprintf("Ошибка синхронизации: %v", msg.err)
		return m, nil
	}
	if msg.pull {
		// The fetched snapshot is applied here, on the update loop,
		// then the title is re-read from settings.
		m.sync.Apply(context.Background(), msg.snap)
		if title, ok := m.settings.GetSetting(context.Background(), config.SettingAppTitle); ok {
			m.appTitle = title
		}
		m.clampCursor()
		m.message = "Загружено из облака."
	} else {
		m.message = "Выгружено в облако."
	}
	m.notify(notify.Success)
	m.mode = modeNormal
	return m, nil
}

func (m DashboardModel) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "left", "h":
		if m.sectionIdx > 0 {
			m.sectionIdx--
			m.taskIdx = 0
		}
		return m, nil
	case "right", "l":
		if m.sectionIdx < len(config.Sections)-1 {
			m.sectionIdx++
			m.taskIdx = 0
		}
		return m, nil
	case "up", "k":
		if m.taskIdx > 0 {
			m.taskIdx--
		}
		return m, nil
	case "down", "j":
		if m.taskIdx < len(m.store.BySection(m.focusedSection().ID))-1 {
			m.taskIdx++
		}
		return m, nil

	case "z":
		id := m.focusedSection().ID
		m.collapsed[id] = !m.collapsed[id]
		return m, nil

	case "a":
		if m.focusedSection().ID == models.SectionDone {
			m.message = "В \"Сделано\" задачи не добавляются."
			return m, nil
		}
		m.mode = modeAddTask
		m.input.Reset()
		m.input.Focus()
		return m, nil

	case "enter", "e":
		return m.enterEditMode()

	case "d":
		if task, ok := m.cursorTask(); ok {
			if err := m.store.Delete(task.ID); err != nil {
				m.message = err.Error()
			} else {
				m.message = "Удалено."
			}
			m.clampCursor()
		}
		return m, nil

	case " ", "c":
		return m.attemptComplete()

	case "f":
		task, ok := m.cursorTask()
		if !ok {
			return m, nil
		}
		if task.Section != models.SectionToday {
			m.message = "Фокус назначается только в \"Сегодня\"."
			return m, nil
		}
		if err := m.store.SetFocus(task.ID, !task.IsFocus); err != nil {
			m.message = err.Error()
		}
		return m, nil

	case "x":
		if task, ok := m.cursorTask(); ok {
			m.expanded[task.ID] = !m.expanded[task.ID]
		}
		return m, nil

	case "n":
		if _, ok := m.cursorTask(); ok {
			m.mode = modeSubtask
			m.subInput.Reset()
			m.subInput.Focus()
		}
		return m, nil

	case "m":
		if _, ok := m.cursorTask(); ok {
			m.mode = modeMove
		}
		return m, nil

	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		return m.toggleSubtaskByKey(msg.String())

	case "T":
		return m.enterTitleMode()

	case "S":
		m.mode = modeSync
		m.message = ""
		return m, nil

	case "P":
		path := filepath.Join(util.DataDir(config.AppName), fmt.Sprintf("report_%s.pdf", m.now().Format("2006-01-02")))
		if err := export.GeneratePDFReport(path, m.store.Tasks(), m.appTitle, m.now()); err != nil {
			m.message = fmt.Sprintf("Ошибка отчёта: %v", err)
		} else {
			m.message = fmt.Sprintf("Отчёт: %s", path)
		}
		return m, nil
	}
	return m, nil
}

func (m DashboardModel) enterEditMode() (tea.Model, tea.Cmd) {
	task, ok := m.cursorTask()
	if !ok {
		return m, nil
	}
	if m.assessor.Assess(task, m.now()).FocusLocked {
		// The lock blocks entering edit mode at all, not just the save.
		m.notify(notify.Error)
		m.message = "Дисциплина: фокус заблокирован."
		return m, nil
	}
	m.mode = modeEditTask
	m.editingID = task.ID
	m.editTitle.SetValue(task.Title)
	m.editTitle.Focus()
	m.editDate.Blur()
	m.editOnDate = false
	if task.DueDate > 0 {
		m.editDate.SetValue(models.MillisToTime(task.DueDate).Format("2006-01-02"))
	} else {
		m.editDate.Reset()
	}
	return m, nil
}

func (m DashboardModel) enterTitleMode() (tea.Model, tea.Cmd) {
	if m.period.Locked(m.now()) {
		m.notify(notify.Error)
		if hours, ok := m.period.HoursRemaining(m.now()); ok {
			m.message = fmt.Sprintf("Слово недели заблокировано ещё %d ч.", hours)
		}
		return m, nil
	}
	m.mode = modeTitle
	m.titleInput.SetValue(m.appTitle)
	m.titleInput.Focus()
	return m, nil
}

func (m DashboardModel) attemptComplete() (tea.Model, tea.Cmd) {
	task, ok := m.cursorTask()
	if !ok {
		return m, nil
	}
	gated, err := m.store.AttemptComplete(task.ID)
	if err != nil {
		if errors.Is(err, store.ErrCapacityExceeded) {
			m.message = "Нельзя перенести: раздел переполнен."
		} else {
			m.message = err.Error()
		}
		return m, nil
	}
	if gated {
		m.gate.Open(task.ID)
		m.mode = modeGate
		return m, nil
	}
	m.clampCursor()
	return m, nil
}

func (m DashboardModel) toggleSubtaskByKey(key string) (tea.Model, tea.Cmd) {
	task, ok := m.cursorTask()
	if !ok || !m.expanded[task.ID] {
		return m, nil
	}
	idx := int(key[0] - '1')
	if idx < 0 || idx >= len(task.Subtasks) {
		return m, nil
	}
	if err := m.store.ToggleSubtask(task.ID, task.Subtasks[idx].ID); err != nil {
		m.message = err.Error()
	}
	return m, nil
}

func (m *DashboardModel) notify(c notify.Category) {
	m.signal.last = c
	m.signal.at = m.now()
	m.signal.any = true
}

// pushCmd uploads a snapshot assembled on the update loop. The closure
// touches nothing shared besides the port.
func (m DashboardModel) pushCmd(snap models.Snapshot) tea.Cmd {
	sy := m.sync
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		return syncDoneMsg{pull: false, err: sy.Upload(ctx, snap)}
	}
}

// pullCmd only fetches; the snapshot is applied in handleSyncDone so
// the period and celebration state never mutate off the update loop.
func (m DashboardModel) pullCmd() tea.Cmd {
	sy := m.sync
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		snap, err := sy.Fetch(ctx)
		return syncDoneMsg{pull: true, snap: snap, err: err}
	}
}
