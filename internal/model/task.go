package model

import (
	"slices"
	"time"
)

const (
	StatusNotStarted = "Not Started"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Task lives under exactly one section. (SectionID, Order) is unique at
// rest.
type Task struct {
	ID           string          `json:"-"`
	Name         string          `json:"name"`
	ProjectID    string          `json:"projectId"`
	SectionID    string          `json:"sectionId"`
	Order        int             `json:"order"`
	Status       string          `json:"status"`
	Priority     string          `json:"priority,omitempty"`
	DueDate      *time.Time      `json:"dueDate,omitempty"`
	Assignees    []string        `json:"assignees"`
	CustomFields map[string]any  `json:"customFields,omitempty"`
	LikedBy      map[string]bool `json:"likedBy,omitempty"`
	LikeCount    int             `json:"likeCount"`
	CommentCount int             `json:"commentCount"`
	ThreadID     string          `json:"threadId,omitempty"`
}

// Thread returns the chat thread id of the task.
func (t Task) Thread() string {
	if t.ThreadID != "" {
		return t.ThreadID
	}
	return t.ID
}

// Path returns the primary document path of the task.
func (t Task) Path() string {
	return TaskPath(t.ProjectID, t.SectionID, t.ID)
}

// Normalize fills defaults the store relies on for queries.
func (t *Task) Normalize() {
	if t.Status == "" {
		t.Status = StatusNotStarted
	}
	t.Assignees = UniqueIDs(t.Assignees)
	if t.DueDate != nil {
		d := DueDate(*t.DueDate)
		t.DueDate = &d
	}
}

// DueDate is the stored form of a due date: UTC, whole seconds. It encodes
// to a fixed-width RFC 3339 string, so string order in the store is time
// order.
func DueDate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// UniqueIDs returns ids without duplicates or blanks, never nil.
func UniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
