package export

import (
	"fmt"
	"time"

	"github.com/akyairhashvil/ascetic/internal/config"
	"github.com/akyairhashvil/ascetic/internal/discipline"
	"github.com/akyairhashvil/ascetic/internal/models"
	"github.com/go-pdf/fpdf"
)

// GeneratePDFReport renders the board as a discipline report: every
// section with its tasks, pain markers, and a completion summary.
func GeneratePDFReport(path string, tasks []models.Task, appTitle string, now time.Time) error {
	assessor := discipline.NewAssessor()

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	header := "Discipline Report"
	if appTitle != "" {
		header = fmt.Sprintf("Discipline Report: %s", appTitle)
	}
	pdf.Cell(40, 10, header)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 8, now.Format("2006-01-02 15:04"))
	pdf.Ln(10)

	totalDone := 0
	for _, section := range config.Sections {
		var inSection []models.Task
		for _, t := range tasks {
			if t.Section == section.ID {
				inSection = append(inSection, t)
			}
		}

		pdf.SetFont("Arial", "B", 14)
		title := fmt.Sprintf("%s (%d", section.Title, len(inSection))
		if section.Unbounded() {
			title += ")"
		} else {
			title += fmt.Sprintf("/%d)", section.Limit)
		}
		pdf.Cell(0, 10, title)
		pdf.Ln(8)

		pdf.SetFont("Arial", "", 12)
		if len(inSection) == 0 {
			pdf.Cell(0, 8, "  - empty")
			pdf.Ln(8)
			continue
		}
		for _, t := range inSection {
			mark := "[ ]"
			if t.Section == models.SectionDone {
				mark = "[x]"
				totalDone++
			}
			line := fmt.Sprintf("%s %s", mark, t.Title)
			st := assessor.Assess(t, now)
			switch {
			case st.PastDue:
				line += "  (past due)"
			case st.StaleToday:
				line += "  (stale)"
			case st.Stagnant:
				line += "  (stagnant)"
			}
			if t.IsFocus {
				line += "  *focus*"
			}
			pdf.MultiCell(0, 8, line, "", "", false)
			for _, sub := range t.Subtasks {
				subMark := "[ ]"
				if sub.IsCompleted {
					subMark = "[x]"
				}
				pdf.MultiCell(0, 6, fmt.Sprintf("      %s %s", subMark, sub.Title), "", "", false)
			}
		}
		pdf.Ln(4)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Total Completed: %d", totalDone))

	return pdf.OutputFileAndClose(path)
}
