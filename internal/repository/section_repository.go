package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/ordering"
	"taskboard/internal/store"
)

type SectionRepository struct {
	store store.Store
}

func NewSectionRepository(s store.Store) *SectionRepository {
	return &SectionRepository{store: s}
}

// SectionsQuery selects every section of a project.
func SectionsQuery(projectID string) store.Query {
	return store.Collection(model.SectionsPath(projectID)).OrderBy("order", false)
}

// Create appends a section after the existing ones
func (r *SectionRepository) Create(ctx context.Context, projectID, title string) (*model.Section, error) {
	existing, err := r.GetByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	orders := make([]int, len(existing))
	for i, s := range existing {
		orders[i] = s.Order
	}
	section := model.Section{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Title:     title,
		Order:     ordering.Next(orders),
	}
	data, err := store.Encode(section)
	if err != nil {
		return nil, err
	}
	if err := r.store.Set(ctx, model.SectionPath(projectID, section.ID), data); err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *SectionRepository) GetByID(ctx context.Context, projectID, sectionID string) (*model.Section, error) {
	doc, err := r.store.Get(ctx, model.SectionPath(projectID, sectionID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidPath) {
			return nil, ErrSectionNotFound
		}
		return nil, err
	}
	s, err := DecodeSection(doc)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByProject returns the sections of a project in board order
func (r *SectionRepository) GetByProject(ctx context.Context, projectID string) ([]model.Section, error) {
	docs, err := r.store.Query(ctx, SectionsQuery(projectID))
	if err != nil {
		return nil, err
	}
	sections, _ := DecodeSections(docs)
	ordering.SortSections(sections)
	return sections, nil
}

// Rename changes the section title
func (r *SectionRepository) Rename(ctx context.Context, projectID, sectionID, title string) error {
	return r.update(ctx, projectID, sectionID, map[string]any{"title": title})
}

// SetCollapsed stores whether the column is collapsed
func (r *SectionRepository) SetCollapsed(ctx context.Context, projectID, sectionID string, collapsed bool) error {
	return r.update(ctx, projectID, sectionID, map[string]any{"collapsed": collapsed})
}

func (r *SectionRepository) update(ctx context.Context, projectID, sectionID string, fields map[string]any) error {
	err := r.store.Update(ctx, model.SectionPath(projectID, sectionID), fields)
	if errors.Is(err, store.ErrNotFound) {
		return ErrSectionNotFound
	}
	return err
}

// ReorderSections writes order = index for every section, in one batch
func (r *SectionRepository) ReorderSections(ctx context.Context, projectID string, sectionIDs []string) error {
	assignments, err := renumber(sectionIDs)
	if err != nil {
		return err
	}
	err = r.store.Batch(ctx, func(b *store.WriteBatch) {
		for _, a := range assignments {
			b.Update(model.SectionPath(projectID, a.ID), map[string]any{"order": a.Order})
		}
	})
	if errors.Is(err, store.ErrNotFound) {
		return ErrSectionNotFound
	}
	return err
}
