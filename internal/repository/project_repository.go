package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/store"
)

type ProjectRepository struct {
	store store.Store
}

func NewProjectRepository(s store.Store) *ProjectRepository {
	return &ProjectRepository{store: s}
}

// Create adds a new project owned by ownerID
func (r *ProjectRepository) Create(ctx context.Context, name, ownerID string) (*model.Project, error) {
	p := model.NewProject(uuid.NewString(), name, ownerID, time.Now().UTC())
	data, err := store.Encode(p)
	if err != nil {
		return nil, err
	}
	if err := r.store.Set(ctx, model.ProjectPath(p.ID), data); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByID retrieves a project by its ID
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	doc, err := r.store.Get(ctx, model.ProjectPath(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidPath) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	p, err := DecodeProject(doc)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByIDs resolves many projects at once. Ids that do not resolve are
// simply absent from the result.
func (r *ProjectRepository) GetByIDs(ctx context.Context, ids []string) (map[string]model.Project, error) {
	out := make(map[string]model.Project, len(ids))
	ids = model.UniqueIDs(ids)
	for start := 0; start < len(ids); start += store.MaxInValues {
		chunk := ids[start:min(start+store.MaxInValues, len(ids))]
		q := store.Collection(model.CollectionProjects).Where(store.FieldID, store.OpIn, chunk)
		docs, err := r.store.Query(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("resolve projects: %w", err)
		}
		for _, d := range docs {
			p, err := DecodeProject(d)
			if err != nil {
				continue
			}
			out[p.ID] = p
		}
	}
	return out, nil
}

// ListForMember returns the projects userID belongs to
func (r *ProjectRepository) ListForMember(ctx context.Context, userID string) ([]model.Project, error) {
	q := store.Collection(model.CollectionProjects).
		Where("memberIds", store.OpArrayContains, userID).
		OrderBy("name", false)
	docs, err := r.store.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	projects := make([]model.Project, 0, len(docs))
	for _, d := range docs {
		p, err := DecodeProject(d)
		if err != nil {
			continue
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// SetMember adds a user to the project with the given role or changes the role
func (r *ProjectRepository) SetMember(ctx context.Context, projectID, userID string, role model.Role) (*model.Project, error) {
	var updated model.Project
	err := r.store.RunTransaction(ctx, func(tx store.Tx) error {
		doc, err := tx.Get(ctx, model.ProjectPath(projectID))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrProjectNotFound
			}
			return err
		}
		p, err := DecodeProject(doc)
		if err != nil {
			return err
		}
		p.SetMember(userID, role)
		tx.Update(model.ProjectPath(projectID), map[string]any{
			"members":   p.Members,
			"memberIds": p.MemberIDs,
		})
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
