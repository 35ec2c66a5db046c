package tui

import (
	"fmt"
	"strings"

	"github.com/akyairhashvil/ascetic/internal/config"
)

func (m DashboardModel) View() string {
	if m.quitting {
		return ""
	}
	switch m.mode {
	case modeGate:
		return m.renderGateModal()
	case modeSync:
		return m.renderSyncModal()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	now := m.now()
	for si, section := range config.Sections {
		tasks := m.store.BySection(section.ID)

		limit := "∞"
		if !section.Unbounded() {
			limit = fmt.Sprintf("%d", section.Limit)
		}
		counter := fmt.Sprintf("%d/%s", len(tasks), limit)
		if !section.Unbounded() && len(tasks) >= section.Limit {
			counter = styleFull.Render(counter)
		} else {
			counter = styleSubtle.Render(counter)
		}

		name := section.Title
		if si == m.sectionIdx {
			name = styleFocused.Render(name)
		} else {
			name = styleSection.Render(name)
		}
		marker := "▾"
		if m.collapsed[section.ID] {
			marker = "▸"
		}
		b.WriteString(fmt.Sprintf("%s %s  %s\n", marker, name, counter))

		if m.collapsed[section.ID] {
			continue
		}
		for ti, task := range tasks {
			selected := si == m.sectionIdx && ti == m.taskIdx && m.mode == modeNormal
			st := m.assessor.Assess(task, now)
			b.WriteString(m.renderTaskLine(task, st, selected))
			b.WriteString("\n")
			if m.expanded[task.ID] {
				b.WriteString(m.renderSubtasks(task))
			}
		}
		if len(tasks) == 0 {
			b.WriteString(styleSubtle.Render("    список пуст") + "\n")
		}
		switch {
		case m.mode == modeAddTask && si == m.sectionIdx:
			b.WriteString("  + " + m.input.View() + "\n")
		case m.mode == modeEditTask && si == m.sectionIdx:
			b.WriteString("  ✎ " + m.editTitle.View() + "  📅 " + m.editDate.View() + "\n")
		case m.mode == modeSubtask && si == m.sectionIdx:
			b.WriteString("    + " + m.subInput.View() + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m DashboardModel) renderHeader() string {
	var b strings.Builder
	now := m.now()

	if m.mode == modeTitle {
		b.WriteString(styleHeader.Render("Слово недели: ") + m.titleInput.View() + "\n")
	} else {
		title := m.appTitle
		if title == "" {
			title = styleSubtle.Render("Слово недели...")
		} else {
			title = styleHeader.Render(title)
		}
		b.WriteString(title)
		if m.period.Locked(now) {
			if hours, ok := m.period.HoursRemaining(now); ok {
				b.WriteString(styleLocked.Render(fmt.Sprintf("  🔒 до смены фокуса: %d ч.", hours)))
			}
		}
		b.WriteString("\n")
	}
	b.WriteString(styleSubtle.Render("Фокус на результате.") + "\n")

	if m.firework.ticks > 0 {
		b.WriteString(styleCelebrate.Render("✦ ✦ ✦  СДЕЛАНО  ✦ ✦ ✦") + "\n")
	}
	return b.String()
}

func (m DashboardModel) renderFooter() string {
	var b strings.Builder
	if m.message != "" {
		b.WriteString(m.message + "\n")
	}
	if m.signal.any {
		b.WriteString(styleSubtle.Render("· "+m.signal.last.String()) + "\n")
	}
	help := "a: добавить  e: изменить  space: завершить  f: фокус  m: перенос  d: удалить  x/n: подзадачи  T: слово недели  S: облако  P: отчёт  q: выход"
	if m.mode == modeMove {
		help = "перенос: 1-6 выбрать раздел, esc отмена"
	}
	b.WriteString(styleSubtle.Render(truncate(help, m.width)))
	return b.String()
}

func (m DashboardModel) renderGateModal() string {
	var b strings.Builder
	b.WriteString(styleHeader.Render("#трейдинг") + "\n")
	b.WriteString(styleSubtle.Render("Подтверди дисциплину перед закрытием.") + "\n\n")
	for i, item := range m.gate.Items() {
		b.WriteString(fmt.Sprintf("%s %s\n", checkbox(m.gate.Checked(i)), item))
	}
	b.WriteString("\n")
	if m.gate.AllChecked() {
		b.WriteString("enter: закрыть  esc: отмена")
	} else {
		b.WriteString(styleSubtle.Render("1-5: отметить  esc: отмена"))
	}
	if m.message != "" {
		b.WriteString("\n" + stylePain.Render(m.message))
	}
	return styleModal.Render(b.String())
}

func (m DashboardModel) renderSyncModal() string {
	var b strings.Builder
	b.WriteString(styleHeader.Render("Синхронизация") + "\n\n")
	if m.syncBusy {
		b.WriteString("Обработка...\n")
	} else {
		b.WriteString("u: выгрузить в облако\n")
		b.WriteString("d: загрузить из облака (заменит текущее)\n")
		b.WriteString("esc: закрыть\n")
	}
	if m.message != "" {
		b.WriteString("\n" + m.message)
	}
	return styleModal.Render(b.String())
}
