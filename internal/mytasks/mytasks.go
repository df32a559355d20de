// Package mytasks gathers the tasks assigned to one user across every
// project, from the task index.
package mytasks

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/store"
)

type SortBy string

const (
	SortDue      SortBy = "due"
	SortProject  SortBy = "project"
	SortStatus   SortBy = "status"
	SortPriority SortBy = "priority"
)

// ParseSortBy accepts "" as SortDue.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(s) {
	case "", SortDue:
		return SortDue, nil
	case SortProject, SortStatus, SortPriority:
		return SortBy(s), nil
	}
	return "", fmt.Errorf("unknown sort %q", s)
}

// Row is one assigned task with the project it belongs to.
type Row struct {
	Task    model.TaskIndex `json:"task"`
	Project ProjectRef      `json:"project"`
}

type ProjectRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// List is the fetched result. Views over it never touch the store.
type List struct {
	UserID  string
	Rows    []Row
	Dropped int
}

type Options struct {
	SortBy        SortBy
	HideCompleted bool
	ProjectID     string
	Status        string
}

type Aggregator struct {
	index    *repository.TaskIndexMaintainer
	projects *repository.ProjectRepository
	logger   *slog.Logger
}

func NewAggregator(st store.Store, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		index:    repository.NewTaskIndexMaintainer(st),
		projects: repository.NewProjectRepository(st),
		logger:   logger,
	}
}

// Fetch reads the user's index entries and resolves their projects. Entries
// whose project does not resolve are dropped with a warning.
func (a *Aggregator) Fetch(ctx context.Context, userID string) (*List, error) {
	entries, err := a.index.ListByAssignee(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list assigned tasks: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProjectID)
	}
	projects, err := a.projects.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	list := &List{UserID: userID, Rows: make([]Row, 0, len(entries))}
	for _, e := range entries {
		p, ok := projects[e.ProjectID]
		if !ok {
			a.logger.Warn("dropping task with unresolved project", "task", e.TaskID, "project", e.ProjectID)
			list.Dropped++
			continue
		}
		list.Rows = append(list.Rows, Row{Task: e, Project: ProjectRef{ID: p.ID, Name: p.Name}})
	}
	return list, nil
}

// View filters and sorts a copy of the fetched rows.
func (l *List) View(opts Options) []Row {
	rows := make([]Row, 0, len(l.Rows))
	for _, r := range l.Rows {
		if opts.HideCompleted && r.Task.Status == model.StatusCompleted {
			continue
		}
		if opts.ProjectID != "" && r.Task.ProjectID != opts.ProjectID {
			continue
		}
		if opts.Status != "" && r.Task.Status != opts.Status {
			continue
		}
		rows = append(rows, r)
	}

	by := compareDue
	switch opts.SortBy {
	case SortProject:
		by = func(a, b Row) int {
			return cmp.Or(cmp.Compare(a.Project.Name, b.Project.Name), cmp.Compare(a.Project.ID, b.Project.ID), compareDue(a, b))
		}
	case SortStatus:
		by = func(a, b Row) int {
			return cmp.Or(cmp.Compare(statusRank(a.Task.Status), statusRank(b.Task.Status)), compareDue(a, b))
		}
	case SortPriority:
		by = func(a, b Row) int {
			return cmp.Or(cmp.Compare(priorityRank(a.Task.Priority), priorityRank(b.Task.Priority)), compareDue(a, b))
		}
	}
	slices.SortStableFunc(rows, by)
	return rows
}

// compareDue puts the soonest first and undated tasks last.
func compareDue(a, b Row) int {
	da, db := a.Task.DueDate, b.Task.DueDate
	switch {
	case da == nil && db != nil:
		return 1
	case da != nil && db == nil:
		return -1
	case da != nil && db != nil:
		if c := da.Compare(*db); c != 0 {
			return c
		}
	}
	return cmp.Or(cmp.Compare(a.Task.Name, b.Task.Name), cmp.Compare(a.Task.TaskID, b.Task.TaskID))
}

func statusRank(s string) int {
	switch s {
	case model.StatusNotStarted:
		return 0
	case model.StatusInProgress:
		return 1
	case model.StatusCompleted:
		return 2
	}
	return 3
}

func priorityRank(p string) int {
	switch p {
	case model.PriorityHigh:
		return 0
	case model.PriorityMedium:
		return 1
	case model.PriorityLow:
		return 2
	}
	return 3
}
