package board

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"taskboard/internal/model"
	"taskboard/internal/ordering"
)

const draftPrefix = "draft-"

// AddDraft inserts an unnamed task at index of a section. It lives only in
// this session until BlurDraft commits it; its name field gets focus on the
// next paint.
func (s *Session) AddDraft(sectionID string, index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return "", ErrNotAttached
	}
	ci := s.layout.Column(sectionID)
	if ci < 0 {
		return "", fmt.Errorf("%w: section %s", ErrUnknownTarget, sectionID)
	}
	index = max(0, min(index, len(s.layout.Columns[ci].TaskIDs)))
	d := Draft{ID: draftPrefix + uuid.NewString(), SectionID: sectionID, Index: index}
	s.drafts = append(s.drafts, d)
	s.layout.Columns[ci].TaskIDs = ordering.Insert(s.layout.Columns[ci].TaskIDs, d.ID, index)
	s.focus = d.ID
	s.renderLocked()
	return d.ID, nil
}

// RenameDraft records what has been typed so far.
func (s *Session) RenameDraft(id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.draftIndex(id)
	if i < 0 {
		return ErrUnknownDraft
	}
	s.drafts[i].Name = name
	s.renderLocked()
	return nil
}

// BlurDraft finishes editing a draft. An empty name discards it without a
// write. Otherwise the task, its index document and the renumbered section
// go out in one batch. The returned id is the stored task's. A failed
// write keeps the draft so the user can try again.
func (s *Session) BlurDraft(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	i := s.draftIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return "", ErrUnknownDraft
	}
	d := s.drafts[i]
	if d.CommittedAs != "" {
		s.mu.Unlock()
		return d.CommittedAs, nil
	}

	name := strings.TrimSpace(d.Name)
	if name == "" {
		s.drafts = slices.Delete(s.drafts, i, i+1)
		if ci, ti := s.layout.Locate(id); ci >= 0 {
			s.layout.Columns[ci].TaskIDs = slices.Delete(s.layout.Columns[ci].TaskIDs, ti, ti+1)
		}
		s.renderLocked()
		s.mu.Unlock()
		return "", nil
	}

	task := model.Task{
		ID:        uuid.NewString(),
		Name:      name,
		ProjectID: s.projectID,
		SectionID: d.SectionID,
		Status:    model.StatusNotStarted,
	}
	var order []string
	if ci := s.layout.Column(d.SectionID); ci >= 0 {
		for _, tid := range s.layout.Columns[ci].TaskIDs {
			if tid == id {
				order = append(order, task.ID)
			} else if sid, ok := s.storedID(tid); ok {
				order = append(order, sid)
			}
		}
	}
	if !slices.Contains(order, task.ID) {
		order = append(order, task.ID)
	}
	s.drafts[i].Name = name
	s.drafts[i].CommittedAs = task.ID
	s.beginCommitLocked()
	s.mu.Unlock()

	err := s.tasks.Create(ctx, &task, order)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		if j := s.draftIndex(id); j >= 0 {
			s.drafts[j].CommittedAs = ""
		}
	}
	s.endCommitLocked("create", err)
	if err != nil {
		return "", fmt.Errorf("create task: %w", err)
	}
	return task.ID, nil
}

// pinDraftsLocked records where each draft sits in the layout now, so the
// next distribution puts it back in the same place.
func (s *Session) pinDraftsLocked() {
	for i, d := range s.drafts {
		if ci, ti := s.layout.Locate(d.ID); ci >= 0 {
			s.drafts[i].Index = ti
		}
	}
}

func (s *Session) draftPins() map[string]int {
	pins := make(map[string]int, len(s.drafts))
	for _, d := range s.drafts {
		pins[d.ID] = d.Index
	}
	return pins
}

// restorePinsLocked puts drafts back where they were before a drag that
// did not stick.
func (s *Session) restorePinsLocked(pins map[string]int) {
	for i, d := range s.drafts {
		if idx, ok := pins[d.ID]; ok {
			s.drafts[i].Index = idx
		}
	}
}

func (s *Session) draftIndex(id string) int {
	return slices.IndexFunc(s.drafts, func(d Draft) bool { return d.ID == id })
}

// Scroll remembers a column's scroll offset so repaints keep it.
func (s *Session) Scroll(sectionID string, offset int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scroll[sectionID] = max(0, offset)
}

// SetCollapsed stores a column's collapsed flag. The change shows up with
// the next sections snapshot.
func (s *Session) SetCollapsed(ctx context.Context, sectionID string, collapsed bool) error {
	s.mu.Lock()
	if !s.attached {
		s.mu.Unlock()
		return ErrNotAttached
	}
	projectID := s.projectID
	s.beginCommitLocked()
	s.mu.Unlock()

	err := s.sections.SetCollapsed(ctx, projectID, sectionID, collapsed)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.endCommitLocked("collapse", err)
	return err
}
