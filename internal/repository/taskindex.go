package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/store"
)

// DenormalizedPair names a primary document and the index document that
// mirrors part of it. Both are required; there is no way to address one
// without the other.
type DenormalizedPair struct {
	primary string
	index   string
}

func NewDenormalizedPair(primary, index string) (DenormalizedPair, error) {
	if err := store.ValidateDocPath(primary); err != nil {
		return DenormalizedPair{}, err
	}
	if err := store.ValidateDocPath(index); err != nil {
		return DenormalizedPair{}, err
	}
	return DenormalizedPair{primary: primary, index: index}, nil
}

func (p DenormalizedPair) Primary() string { return p.primary }
func (p DenormalizedPair) Index() string   { return p.index }

// UpdateDenormalized queues the same update on both documents of pair. The
// index receives only the fields it mirrors.
func UpdateDenormalized(tx store.Tx, pair DenormalizedPair, fields map[string]any) {
	tx.Update(pair.primary, fields)
	mirrored := make(map[string]any, len(fields))
	for k, v := range fields {
		if model.IsIndexedField(k) {
			mirrored[k] = v
		}
	}
	if len(mirrored) > 0 {
		tx.Update(pair.index, mirrored)
	}
}

// placement fields change only through reorder and move
var protectedFields = []string{"projectId", "sectionId", "order", "likeCount", "likedBy"}

// TaskIndexMaintainer is the only writer of a task's cross-cutting fields
// outside its section.
type TaskIndexMaintainer struct {
	store store.Store
}

func NewTaskIndexMaintainer(s store.Store) *TaskIndexMaintainer {
	return &TaskIndexMaintainer{store: s}
}

// IndexQuery selects index documents of tasks assigned to userID, soonest
// due first.
func IndexQuery(userID string) store.Query {
	return store.Collection(model.CollectionTaskIndex).
		Where("assignees", store.OpArrayContains, userID).
		OrderBy("dueDate", false)
}

// ListByAssignee returns index documents of tasks assigned to userID
func (m *TaskIndexMaintainer) ListByAssignee(ctx context.Context, userID string) ([]model.TaskIndex, error) {
	docs, err := m.store.Query(ctx, IndexQuery(userID))
	if err != nil {
		return nil, err
	}
	out := make([]model.TaskIndex, 0, len(docs))
	for _, d := range docs {
		idx, err := DecodeTaskIndex(d)
		if err != nil {
			continue
		}
		out = append(out, idx)
	}
	return out, nil
}

// UpdateTask resolves the task through its index document and updates the
// primary and index documents in one transaction.
func (m *TaskIndexMaintainer) UpdateTask(ctx context.Context, taskID string, fields map[string]any) error {
	fields, err := normalizeTaskFields(fields)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}
	return m.withPair(ctx, taskID, func(tx store.Tx, pair DenormalizedPair) error {
		UpdateDenormalized(tx, pair, fields)
		return nil
	})
}

// SetLiked records or clears userID's like. The count moves by a
// commutative increment and only when the presence actually changes, so
// it never double counts and never drops below zero. It reports whether
// anything changed.
func (m *TaskIndexMaintainer) SetLiked(ctx context.Context, taskID, userID string, liked bool) (bool, error) {
	if userID == "" || strings.Contains(userID, ".") {
		return false, ErrInvalidUserID
	}
	changed := false
	err := m.withPair(ctx, taskID, func(tx store.Tx, pair DenormalizedPair) error {
		doc, err := tx.Get(ctx, pair.Primary())
		if err != nil {
			return err
		}
		key := "likedBy." + userID
		current, _ := store.GetField(doc.Data, key)
		if (current == true) == liked {
			return nil
		}
		fields := map[string]any{key: true, "likeCount": store.Increment(1)}
		if !liked {
			fields = map[string]any{key: store.DeleteField, "likeCount": store.Increment(-1)}
		}
		UpdateDenormalized(tx, pair, fields)
		changed = true
		return nil
	})
	return changed, err
}

func (m *TaskIndexMaintainer) withPair(ctx context.Context, taskID string, fn func(tx store.Tx, pair DenormalizedPair) error) error {
	indexPath := model.TaskIndexPath(taskID)
	err := m.store.RunTransaction(ctx, func(tx store.Tx) error {
		doc, err := tx.Get(ctx, indexPath)
		if err != nil {
			return err
		}
		idx, err := DecodeTaskIndex(doc)
		if err != nil {
			return err
		}
		pair, err := NewDenormalizedPair(idx.Path, indexPath)
		if err != nil {
			return err
		}
		return fn(tx, pair)
	})
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidPath) {
		return fmt.Errorf("%w: %w", ErrTaskNotFound, err)
	}
	return err
}

func normalizeTaskFields(fields map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		top, _, _ := strings.Cut(k, ".")
		for _, p := range protectedFields {
			if top == p {
				return nil, fmt.Errorf("%w: %s", ErrProtectedField, k)
			}
		}
		switch k {
		case "assignees":
			ids, ok := v.([]string)
			if !ok {
				return nil, fmt.Errorf("assignees must be a list of user ids")
			}
			v = model.UniqueIDs(ids)
		case "dueDate":
			switch d := v.(type) {
			case time.Time:
				v = model.DueDate(d)
			case *time.Time:
				if d == nil {
					v = store.DeleteField
				} else {
					v = model.DueDate(*d)
				}
			case nil:
				v = store.DeleteField
			}
		}
		out[k] = v
	}
	return out, nil
}
