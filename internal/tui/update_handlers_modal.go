package tui

import (
	"context"
	"strings"
	"time"

	"github.com/akyairhashvil/ascetic/internal/config"
	"github.com/akyairhashvil/ascetic/internal/gate"
	"github.com/akyairhashvil/ascetic/internal/notify"
	"github.com/akyairhashvil/ascetic/internal/util"
	tea "github.com/charmbracelet/bubbletea"
)

func (m DashboardModel) handleAddInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			return m, nil
		}
		if _, err := m.store.Add(m.focusedSection().ID, title); err != nil {
			m.message = "Лимит исчерпан. Завершите что-то."
			return m, nil
		}
		m.mode = modeNormal
		m.input.Reset()
		m.input.Blur()
		m.message = ""
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m DashboardModel) handleEditInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		m.editTitle.Blur()
		m.editDate.Blur()
		return m, nil
	case "tab":
		m.editOnDate = !m.editOnDate
		if m.editOnDate {
			m.editTitle.Blur()
			m.editDate.Focus()
		} else {
			m.editDate.Blur()
			m.editTitle.Focus()
		}
		return m, nil
	case "enter":
		var due *time.Time
		if v := strings.TrimSpace(m.editDate.Value()); v != "" {
			parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
			if err != nil {
				m.message = "Дата в формате YYYY-MM-DD."
				return m, nil
			}
			due = &parsed
		}
		if err := m.store.CommitEdit(m.editingID, m.editTitle.Value(), due); err != nil {
			m.message = err.Error()
			return m, nil
		}
		m.mode = modeNormal
		m.editTitle.Blur()
		m.editDate.Blur()
		m.message = ""
		return m, nil
	}
	var cmd tea.Cmd
	if m.editOnDate {
		m.editDate, cmd = m.editDate.Update(msg)
	} else {
		m.editTitle, cmd = m.editTitle.Update(msg)
	}
	return m, cmd
}

func (m DashboardModel) handleSubtaskInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		m.subInput.Blur()
		return m, nil
	case "enter":
		task, ok := m.cursorTask()
		if !ok {
			m.mode = modeNormal
			return m, nil
		}
		if _, err := m.store.AddSubtask(task.ID, m.subInput.Value()); err != nil {
			m.message = err.Error()
			return m, nil
		}
		m.expanded[task.ID] = true
		m.mode = modeNormal
		m.subInput.Reset()
		m.subInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.subInput, cmd = m.subInput.Update(msg)
	return m, cmd
}

func (m DashboardModel) handleMoveMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "esc" {
		m.mode = modeNormal
		return m, nil
	}
	if len(key) != 1 {
		return m, nil
	}
	idx := int(key[0] - '1')
	if idx < 0 || idx >= len(config.Sections) {
		return m, nil
	}
	task, ok := m.cursorTask()
	if !ok {
		m.mode = modeNormal
		return m, nil
	}
	target := config.Sections[idx]
	if err := m.store.Move(task.ID, target.ID); err != nil {
		m.message = "Нельзя перенести. \"" + target.Title + "\" переполнен."
	} else {
		m.message = ""
	}
	m.mode = modeNormal
	m.clampCursor()
	return m, nil
}

func (m DashboardModel) handleTitleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		m.titleInput.Blur()
		return m, nil
	case "enter":
		// Commit: persist the title; a non-empty commit with no active
		// period starts the weekly lock.
		value := m.titleInput.Value()
		m.appTitle = value
		ctx := context.Background()
		util.LogError("persist app title", m.settings.SetSetting(ctx, config.SettingAppTitle, value))
		if m.period.Commit(value, m.now()) {
			if start := m.period.StartMillis(); start != nil {
				util.LogError("persist focus period", m.settings.SetSetting(ctx, config.SettingFocusStartTime, *start))
			}
			m.notify(notify.Heavy)
		}
		m.mode = modeNormal
		m.titleInput.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	return m, cmd
}

func (m DashboardModel) handleGateMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.gate.Cancel()
		m.mode = modeNormal
		return m, nil
	case "1", "2", "3", "4", "5":
		m.gate.Toggle(int(msg.String()[0] - '1'))
		m.notify(notify.Light)
		return m, nil
	case "enter":
		if err := m.gate.Confirm(); err != nil {
			if err == gate.ErrChecklistIncomplete {
				m.notify(notify.Error)
				m.message = "Подтверди все пункты."
			} else {
				m.message = err.Error()
			}
			return m, nil
		}
		m.mode = modeNormal
		m.message = ""
		m.clampCursor()
		return m, nil
	}
	return m, nil
}

func (m DashboardModel) handleSyncMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.syncBusy {
		// No cancellation of an in-flight call; ignore keys until done.
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.mode = modeNormal
		return m, nil
	case "u":
		m.syncBusy = true
		m.message = "Выгрузка..."
		// Assemble the snapshot here so the upload goroutine never
		// reads the period or settings.
		return m, m.pushCmd(m.sync.Snapshot(context.Background()))
	case "d":
		m.syncBusy = true
		m.message = "Загрузка..."
		return m, m.pullCmd()
	}
	return m, nil
}
