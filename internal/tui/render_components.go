package tui

import (
	"fmt"
	"strings"

	"github.com/akyairhashvil/ascetic/internal/discipline"
	"github.com/akyairhashvil/ascetic/internal/models"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	styleHeader    = lipgloss.NewStyle().Bold(true)
	styleSubtle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleSection   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	styleFocused   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81"))
	stylePain      = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleStagnant  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Faint(true)
	styleDone      = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Strikethrough(true)
	styleLocked    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleUnlocked  = lipgloss.NewStyle().Foreground(lipgloss.Color("83"))
	styleFull      = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	styleCursor    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("231"))
	styleCelebrate = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220"))
	styleTag       = lipgloss.NewStyle().Foreground(lipgloss.Color("105"))
	styleModal     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(1, 2)
)

// truncate cuts a rendered line to the terminal width without breaking
// escape sequences.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

// renderTaskLine draws one task row with its pain markers.
func (m DashboardModel) renderTaskLine(task models.Task, st discipline.State, selected bool) string {
	var b strings.Builder

	cursor := "  "
	if selected {
		cursor = styleCursor.Render("> ")
	}
	b.WriteString(cursor)

	b.WriteString(checkbox(task.Section == models.SectionDone))
	b.WriteString(" ")

	title := task.Title
	if title == "" {
		title = "Сформулируй Фокус дня..."
	}
	switch {
	case task.Section == models.SectionDone:
		title = styleDone.Render(title)
	case st.StaleToday || st.PastDue:
		title = stylePain.Render(title)
	case st.Stagnant:
		title = styleStagnant.Render(title)
	}
	b.WriteString(title)

	if task.IsFocus {
		if st.FocusLocked {
			b.WriteString(styleLocked.Render(" ★ " + discipline.FormatRemaining(st.RemainingLock)))
		} else {
			b.WriteString(styleUnlocked.Render(" ★ можно редактировать"))
		}
	}
	if st.PastDue {
		b.WriteString(stylePain.Render(" !"))
	}
	if task.DueDate > 0 {
		due := models.MillisToTime(task.DueDate)
		b.WriteString(styleSubtle.Render(fmt.Sprintf(" до %d.%d.%d", due.Day(), int(due.Month()), due.Year())))
	}
	for _, tag := range task.Tags {
		b.WriteString(" " + styleTag.Render(tag))
	}
	if n := len(task.Subtasks); n > 0 {
		done := 0
		for _, sub := range task.Subtasks {
			if sub.IsCompleted {
				done++
			}
		}
		b.WriteString(styleSubtle.Render(fmt.Sprintf(" %d/%d", done, n)))
	}

	return truncate(b.String(), m.width)
}

func (m DashboardModel) renderSubtasks(task models.Task) string {
	var b strings.Builder
	for i, sub := range task.Subtasks {
		line := fmt.Sprintf("      %d %s %s", i+1, checkbox(sub.IsCompleted), sub.Title)
		if sub.IsCompleted {
			line = styleDone.Render(line)
		} else {
			line = styleSubtle.Render(line)
		}
		b.WriteString(truncate(line, m.width))
		b.WriteString("\n")
	}
	return b.String()
}
