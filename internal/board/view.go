package board

import (
	"time"

	"taskboard/internal/model"
)

// Pane is an independently loaded part of the board.
type Pane string

const (
	PaneSections    Pane = "sections"
	PaneTasks       Pane = "tasks"
	PaneAttachments Pane = "attachments"
)

type PaneState struct {
	Loaded bool   `json:"loaded"`
	Error  string `json:"error,omitempty"`
}

// View is everything a renderer needs to paint the board.
type View struct {
	ProjectID string             `json:"project_id"`
	Sections  []SectionView      `json:"sections"`
	Scroll    map[string]int     `json:"scroll,omitempty"`
	Focus     *Focus             `json:"focus,omitempty"`
	Panes     map[Pane]PaneState `json:"panes"`
	Dragging  string             `json:"dragging,omitempty"`
}

type SectionView struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Order     int        `json:"order"`
	Collapsed bool       `json:"collapsed"`
	Tasks     []TaskView `json:"tasks"`
}

type TaskView struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	SectionID    string     `json:"section_id"`
	Order        int        `json:"order"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	Assignees    []string   `json:"assignees"`
	LikeCount    int        `json:"like_count"`
	Liked        bool       `json:"liked"`
	CommentCount int        `json:"comment_count"`
	Cover        string     `json:"cover,omitempty"`
	IsNew        bool       `json:"is_new,omitempty"`
}

// Focus asks the renderer to focus a task's name field after painting.
type Focus struct {
	TaskID    string `json:"task_id"`
	SelectAll bool   `json:"select_all"`
}

// Renderer paints a view. Render is called with the session lock held and
// must not call back into the session.
type Renderer interface {
	Render(v View)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(v View)

func (f RendererFunc) Render(v View) { f(v) }

// TaskIDs lists the task ids of a section view in display order.
func (s SectionView) TaskIDs() []string {
	ids := make([]string, len(s.Tasks))
	for i, t := range s.Tasks {
		ids[i] = t.ID
	}
	return ids
}

// Section returns the section view with id, if present.
func (v View) Section(id string) (SectionView, bool) {
	for _, s := range v.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return SectionView{}, false
}

func taskView(t model.Task, userID string, covers map[string]string) TaskView {
	assignees := t.Assignees
	if assignees == nil {
		assignees = []string{}
	}
	return TaskView{
		ID:           t.ID,
		Name:         t.Name,
		SectionID:    t.SectionID,
		Order:        t.Order,
		Status:       t.Status,
		Priority:     t.Priority,
		DueDate:      t.DueDate,
		Assignees:    assignees,
		LikeCount:    t.LikeCount,
		Liked:        t.LikedBy[userID],
		CommentCount: t.CommentCount,
		Cover:        covers[t.Thread()],
	}
}
