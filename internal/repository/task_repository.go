package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"taskboard/internal/model"
	"taskboard/internal/ordering"
	"taskboard/internal/store"
)

type TaskRepository struct {
	store store.Store
}

func NewTaskRepository(s store.Store) *TaskRepository {
	return &TaskRepository{store: s}
}

// TasksQuery selects every task of a project, across all sections.
func TasksQuery(projectID string) store.Query {
	return store.Group(model.CollectionTasks).
		Where("projectId", store.OpEqual, projectID).
		OrderBy("order", false)
}

// Create writes the task and its index document in one batch. When
// sectionOrder is given it is the final order of the section including the
// new task; every task in it is renumbered in the same batch.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task, sectionOrder []string) error {
	if task.ID == "" || task.ProjectID == "" || task.SectionID == "" {
		return fmt.Errorf("create task: id, project and section are required")
	}
	task.Normalize()
	if sectionOrder != nil {
		i := slices.Index(sectionOrder, task.ID)
		if i < 0 {
			return fmt.Errorf("create task: %s missing from section order", task.ID)
		}
		task.Order = i
	}
	assignments, err := renumber(sectionOrder)
	if err != nil {
		return err
	}
	data, err := store.Encode(task)
	if err != nil {
		return err
	}
	index, err := store.Encode(model.NewTaskIndex(*task))
	if err != nil {
		return err
	}
	return r.store.Batch(ctx, func(b *store.WriteBatch) {
		b.Set(task.Path(), data)
		b.Set(model.TaskIndexPath(task.ID), index)
		for _, a := range assignments {
			if a.ID == task.ID {
				continue
			}
			b.Update(model.TaskPath(task.ProjectID, task.SectionID, a.ID), map[string]any{"order": a.Order})
		}
	})
}

// GetIndex reads the index document of a task
func (r *TaskRepository) GetIndex(ctx context.Context, taskID string) (*model.TaskIndex, error) {
	doc, err := r.store.Get(ctx, model.TaskIndexPath(taskID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidPath) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	idx, err := DecodeTaskIndex(doc)
	if err != nil {
		return nil, err
	}
	return &idx, nil
}

// GetByID locates the task through its index and reads the primary document
func (r *TaskRepository) GetByID(ctx context.Context, taskID string) (*model.Task, error) {
	idx, err := r.GetIndex(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return r.GetByPath(ctx, idx.Path)
}

func (r *TaskRepository) GetByPath(ctx context.Context, path string) (*model.Task, error) {
	doc, err := r.store.Get(ctx, path)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	t, err := DecodeTask(doc)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetBySection retrieves all tasks in a section, in board order
func (r *TaskRepository) GetBySection(ctx context.Context, projectID, sectionID string) ([]model.Task, error) {
	docs, err := r.store.Query(ctx, store.Collection(model.TasksPath(projectID, sectionID)))
	if err != nil {
		return nil, err
	}
	tasks, _ := DecodeTasks(docs)
	ordering.SortTasks(tasks)
	return tasks, nil
}

// Reorder writes order = index for every task of one section, in one batch
func (r *TaskRepository) Reorder(ctx context.Context, projectID, sectionID string, taskIDs []string) error {
	assignments, err := renumber(taskIDs)
	if err != nil {
		return err
	}
	err = r.store.Batch(ctx, func(b *store.WriteBatch) {
		for _, a := range assignments {
			b.Update(model.TaskPath(projectID, sectionID, a.ID), map[string]any{"order": a.Order})
		}
	})
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrTaskNotFound, err)
	}
	return err
}

// renumber assigns order = index and refuses lists that name an id twice
func renumber(ids []string) ([]ordering.Assignment, error) {
	assignments := ordering.Renumber(ids)
	if !ordering.Distinct(assignments) {
		return nil, fmt.Errorf("%w: %v", ErrDuplicateID, ids)
	}
	return assignments, nil
}

// Move describes a task changing sections. FromOrder is the final order of
// the origin section without the task; ToOrder is the final order of the
// destination section with it.
type Move struct {
	ProjectID     string
	TaskID        string
	FromSectionID string
	ToSectionID   string
	FromOrder     []string
	ToOrder       []string
}

// MoveTask moves a task between sections. The task document is re-created
// under the destination, the origin copy deleted, the index locator
// rewritten and both sections renumbered, all in one transaction.
func (r *TaskRepository) MoveTask(ctx context.Context, m Move) error {
	if m.FromSectionID == m.ToSectionID {
		return r.Reorder(ctx, m.ProjectID, m.ToSectionID, m.ToOrder)
	}
	newOrder := slices.Index(m.ToOrder, m.TaskID)
	if newOrder < 0 {
		return fmt.Errorf("move task: %s missing from destination order", m.TaskID)
	}
	fromOrder, err := renumber(m.FromOrder)
	if err != nil {
		return err
	}
	toOrder, err := renumber(m.ToOrder)
	if err != nil {
		return err
	}
	from := model.TaskPath(m.ProjectID, m.FromSectionID, m.TaskID)
	to := model.TaskPath(m.ProjectID, m.ToSectionID, m.TaskID)

	err = r.store.RunTransaction(ctx, func(tx store.Tx) error {
		// full field set, so the destination copy is never partial
		doc, err := tx.Get(ctx, from)
		if err != nil {
			return err
		}
		data := doc.Data
		data["sectionId"] = m.ToSectionID
		data["order"] = newOrder

		tx.Set(to, data)
		tx.Delete(from)
		tx.Update(model.TaskIndexPath(m.TaskID), map[string]any{
			"path":      to,
			"sectionId": m.ToSectionID,
		})
		for _, a := range fromOrder {
			tx.Update(model.TaskPath(m.ProjectID, m.FromSectionID, a.ID), map[string]any{"order": a.Order})
		}
		for _, a := range toOrder {
			if a.ID == m.TaskID {
				continue
			}
			tx.Update(model.TaskPath(m.ProjectID, m.ToSectionID, a.ID), map[string]any{"order": a.Order})
		}
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrTaskNotFound, err)
	}
	return err
}

// Delete removes a task and its index document together
func (r *TaskRepository) Delete(ctx context.Context, taskID string) error {
	err := r.store.RunTransaction(ctx, func(tx store.Tx) error {
		doc, err := tx.Get(ctx, model.TaskIndexPath(taskID))
		if err != nil {
			return err
		}
		idx, err := DecodeTaskIndex(doc)
		if err != nil {
			return err
		}
		tx.Delete(idx.Path)
		tx.Delete(doc.Path)
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrTaskNotFound
	}
	return err
}
