package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/store"
)

type AttachmentRepository struct {
	store store.Store
}

func NewAttachmentRepository(s store.Store) *AttachmentRepository {
	return &AttachmentRepository{store: s}
}

// AttachmentsQuery selects every attachment posted in any thread of a project.
func AttachmentsQuery(projectID string) store.Query {
	return store.Group(model.CollectionAttachments).Where("projectId", store.OpEqual, projectID)
}

// Create stores an attachment under its thread
func (r *AttachmentRepository) Create(ctx context.Context, a *model.Attachment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	data, err := store.Encode(a)
	if err != nil {
		return err
	}
	return r.store.Set(ctx, model.AttachmentPath(a.ProjectID, a.ThreadID, a.ID), data)
}

// BuildAttachmentIndex maps each thread to the URL of its earliest image.
func BuildAttachmentIndex(attachments []model.Attachment) map[string]string {
	earliest := make(map[string]model.Attachment)
	for _, a := range attachments {
		if !a.IsImage() || a.ThreadID == "" || a.URL == "" {
			continue
		}
		cur, ok := earliest[a.ThreadID]
		if !ok || a.CreatedAt.Before(cur.CreatedAt) || (a.CreatedAt.Equal(cur.CreatedAt) && a.ID < cur.ID) {
			earliest[a.ThreadID] = a
		}
	}
	index := make(map[string]string, len(earliest))
	for thread, a := range earliest {
		index[thread] = a.URL
	}
	return index
}
