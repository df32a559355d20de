package model

import (
	"strings"
	"time"
)

// TaskIndex mirrors the cross-cutting fields of a task for queries that
// span projects. It is only ever written together with the task.
type TaskIndex struct {
	TaskID    string          `json:"taskId"`
	Path      string          `json:"path"`
	ProjectID string          `json:"projectId"`
	SectionID string          `json:"sectionId"`
	Name      string          `json:"name"`
	Status    string          `json:"status"`
	Priority  string          `json:"priority,omitempty"`
	DueDate   *time.Time      `json:"dueDate,omitempty"`
	Assignees []string        `json:"assignees"`
	LikeCount int             `json:"likeCount"`
	LikedBy   map[string]bool `json:"likedBy,omitempty"`
}

// IndexedFields are the task fields copied into TaskIndex.
var IndexedFields = []string{"name", "status", "priority", "dueDate", "assignees", "likeCount", "likedBy"}

// IsIndexedField reports whether an update key touches a mirrored field.
// Dotted keys such as "likedBy.u1" count as their top-level field.
func IsIndexedField(key string) bool {
	top, _, _ := strings.Cut(key, ".")
	for _, f := range IndexedFields {
		if f == top {
			return true
		}
	}
	return false
}

func NewTaskIndex(t Task) TaskIndex {
	assignees := t.Assignees
	if assignees == nil {
		assignees = []string{}
	}
	return TaskIndex{
		TaskID:    t.ID,
		Path:      t.Path(),
		ProjectID: t.ProjectID,
		SectionID: t.SectionID,
		Name:      t.Name,
		Status:    t.Status,
		Priority:  t.Priority,
		DueDate:   t.DueDate,
		Assignees: assignees,
		LikeCount: t.LikeCount,
		LikedBy:   t.LikedBy,
	}
}
