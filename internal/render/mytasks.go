package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskboard/internal/mytasks"
)

// MyTasks renders a task list as aligned rows.
func MyTasks(rows []mytasks.Row) string {
	if len(rows) == 0 {
		return mutedStyle.Render("nothing assigned")
	}
	nameW, projectW := len("TASK"), len("PROJECT")
	for _, r := range rows {
		nameW = max(nameW, lipgloss.Width(r.Task.Name))
		projectW = max(projectW, lipgloss.Width(r.Project.Name))
	}
	nameCol := lipgloss.NewStyle().Width(nameW + 2)
	projectCol := lipgloss.NewStyle().Width(projectW + 2)
	statusCol := lipgloss.NewStyle().Width(len("Not Started") + 2)

	var b strings.Builder
	b.WriteString(titleStyle.Render(nameCol.Render("TASK") + projectCol.Render("PROJECT") + statusCol.Render("STATUS") + "DUE"))
	for _, r := range rows {
		due := "-"
		if r.Task.DueDate != nil {
			due = r.Task.DueDate.Format("2006-01-02")
		}
		b.WriteString("\n")
		b.WriteString(nameCol.Render(r.Task.Name))
		b.WriteString(projectCol.Render(r.Project.Name))
		b.WriteString(statusCol.Render(statusStyle(r.Task.Status).Render(r.Task.Status)))
		b.WriteString(due)
	}
	return b.String()
}

// Summary is the one-line footer under a task list.
func Summary(shown, total, dropped int) string {
	s := fmt.Sprintf("%d of %d tasks", shown, total)
	if dropped > 0 {
		s += fmt.Sprintf(", %d skipped", dropped)
	}
	return mutedStyle.Render(s)
}
