package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"taskboard/internal/board"
)

// Board lays the sections out side by side.
func Board(v board.View) string {
	var errs []string
	panes := make([]string, 0, len(v.Panes))
	for p := range v.Panes {
		panes = append(panes, string(p))
	}
	sort.Strings(panes)
	for _, p := range panes {
		if msg := v.Panes[board.Pane(p)].Error; msg != "" {
			errs = append(errs, errorStyle.Render("! "+msg))
		}
	}

	if len(v.Sections) == 0 {
		empty := mutedStyle.Render("no sections")
		if _, loaded := v.Panes[board.PaneSections]; !loaded {
			empty = mutedStyle.Render("loading…")
		}
		return lipgloss.JoinVertical(lipgloss.Left, append(errs, empty)...)
	}

	cols := make([]string, 0, len(v.Sections))
	for _, s := range v.Sections {
		cols = append(cols, column(s, v))
	}
	out := lipgloss.JoinHorizontal(lipgloss.Top, cols...)
	return lipgloss.JoinVertical(lipgloss.Left, append(errs, out)...)
}

func column(s board.SectionView, v board.View) string {
	header := titleStyle.Render(s.Title) + mutedStyle.Render(fmt.Sprintf(" %d", len(s.Tasks)))
	if s.Collapsed {
		return collapsedStyle.Render(header)
	}
	lines := []string{header}
	tasks := s.Tasks
	// scroll offset counts whole cards
	if off := v.Scroll[s.ID]; off > 0 && off < len(tasks) {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("↑ %d more", off)))
		tasks = tasks[off:]
	}
	for _, t := range tasks {
		lines = append(lines, card(t, v))
	}
	return columnStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func card(t board.TaskView, v board.View) string {
	if t.IsNew {
		name := t.Name
		if v.Focus != nil && v.Focus.TaskID == t.ID {
			name += "▏"
		}
		return draftStyle.Render("+ " + name)
	}
	var meta []string
	if t.DueDate != nil {
		meta = append(meta, t.DueDate.Format("Jan 2"))
	}
	if t.LikeCount > 0 {
		heart := "♡"
		if t.Liked {
			heart = "♥"
		}
		meta = append(meta, fmt.Sprintf("%s%d", heart, t.LikeCount))
	}
	if t.CommentCount > 0 {
		meta = append(meta, fmt.Sprintf("✉%d", t.CommentCount))
	}
	if t.Cover != "" {
		meta = append(meta, "▣")
	}
	line := statusStyle(t.Status).Render("● ") + t.Name
	if len(meta) > 0 {
		line += " " + mutedStyle.Render(strings.Join(meta, " "))
	}
	if v.Dragging == t.ID {
		return draggedStyle.Render(line)
	}
	return line
}

// Terminal repaints the whole board on every view.
type Terminal struct {
	mu sync.Mutex
	w  io.Writer
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) Render(v board.View) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprint(t.w, "\033[H\033[2J")
	fmt.Fprintln(t.w, Board(v))
}
