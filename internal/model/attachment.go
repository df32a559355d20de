package model

import (
	"strings"
	"time"
)

// Attachment is a file posted in a task's chat thread.
type Attachment struct {
	ID          string    `json:"-"`
	ProjectID   string    `json:"projectId"`
	ThreadID    string    `json:"threadId"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (a Attachment) IsImage() bool {
	return strings.HasPrefix(a.ContentType, "image/")
}
