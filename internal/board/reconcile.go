package board

import (
	"slices"

	"taskboard/internal/model"
	"taskboard/internal/ordering"
)

// Draft is a task being typed inline. It exists only in this session
// until it gets a name; CommittedAs is set once it has been written.
type Draft struct {
	ID          string
	SectionID   string
	Name        string
	Index       int
	CommittedAs string
}

// Column is one section of the presentation layout.
type Column struct {
	SectionID string
	TaskIDs   []string
}

// Layout is the order the board is presented in. Commits read it; they
// never re-derive order from task fields.
type Layout struct {
	Columns []Column
}

// Distribute builds the layout from authoritative sections and tasks and
// the session's drafts. It returns the drafts still pending: drafts whose
// committed task has arrived, or whose section is gone, are dropped.
func Distribute(sections []model.Section, tasks []model.Task, drafts []Draft) (Layout, []Draft) {
	secs := slices.Clone(sections)
	ordering.SortSections(secs)

	known := make(map[string]bool, len(secs))
	for _, s := range secs {
		known[s.ID] = true
	}

	seen := make(map[string]bool, len(tasks))
	bySection := make(map[string][]model.Task, len(secs))
	for _, t := range tasks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		bySection[t.SectionID] = append(bySection[t.SectionID], t)
	}

	kept := make([]Draft, 0, len(drafts))
	for _, d := range drafts {
		if d.CommittedAs != "" && seen[d.CommittedAs] {
			continue
		}
		if !known[d.SectionID] {
			continue
		}
		kept = append(kept, d)
	}

	layout := Layout{Columns: make([]Column, 0, len(secs))}
	for _, s := range secs {
		ts := bySection[s.ID]
		ordering.SortTasks(ts)
		ids := ordering.TaskIDs(ts)
		var local []Draft
		for _, d := range kept {
			if d.SectionID == s.ID {
				local = append(local, d)
			}
		}
		// lowest index first, so each draft lands where it was shown
		slices.SortStableFunc(local, func(a, b Draft) int { return a.Index - b.Index })
		for _, d := range local {
			ids = ordering.Insert(ids, d.ID, d.Index)
		}
		layout.Columns = append(layout.Columns, Column{SectionID: s.ID, TaskIDs: ids})
	}
	return layout, kept
}

// Column returns the index of the section's column, or -1.
func (l Layout) Column(sectionID string) int {
	for i, c := range l.Columns {
		if c.SectionID == sectionID {
			return i
		}
	}
	return -1
}

// Locate finds the column and position of a task, or -1, -1.
func (l Layout) Locate(taskID string) (int, int) {
	for ci, c := range l.Columns {
		if ti := slices.Index(c.TaskIDs, taskID); ti >= 0 {
			return ci, ti
		}
	}
	return -1, -1
}

// SectionIDs returns the sections in presentation order.
func (l Layout) SectionIDs() []string {
	ids := make([]string, len(l.Columns))
	for i, c := range l.Columns {
		ids[i] = c.SectionID
	}
	return ids
}

// Clone deep copies the layout.
func (l Layout) Clone() Layout {
	out := Layout{Columns: make([]Column, len(l.Columns))}
	for i, c := range l.Columns {
		out.Columns[i] = Column{SectionID: c.SectionID, TaskIDs: slices.Clone(c.TaskIDs)}
	}
	return out
}

// Equal reports whether two layouts present the same order.
func (l Layout) Equal(o Layout) bool {
	return slices.EqualFunc(l.Columns, o.Columns, func(a, b Column) bool {
		return a.SectionID == b.SectionID && slices.Equal(a.TaskIDs, b.TaskIDs)
	})
}
