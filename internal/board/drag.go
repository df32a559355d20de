package board

import (
	"context"
	"fmt"
	"math"
	"slices"

	"taskboard/internal/ordering"
	"taskboard/internal/repository"
	"taskboard/internal/store"
)

type phase int

const (
	phaseIdle phase = iota
	phasePressed
	phaseDragging
	phaseCommitting
)

func (p phase) String() string {
	switch p {
	case phasePressed:
		return "pressed"
	case phaseDragging:
		return "dragging"
	case phaseCommitting:
		return "committing"
	}
	return "idle"
}

type TargetKind string

const (
	TargetTask    TargetKind = "task"
	TargetSection TargetKind = "section"
)

// ControlHandle is the drag handle. Any other control is a button: pressing
// it can only ever produce a click.
const ControlHandle = "handle"

// Target is what the pointer went down on.
type Target struct {
	Kind    TargetKind `json:"kind"`
	ID      string     `json:"id"`
	Control string     `json:"control,omitempty"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type OutcomeKind string

const (
	OutcomeClick            OutcomeKind = "click"
	OutcomeNoop             OutcomeKind = "noop"
	OutcomeReordered        OutcomeKind = "reordered"
	OutcomeMoved            OutcomeKind = "moved"
	OutcomeColumnsReordered OutcomeKind = "columns_reordered"
)

// Outcome reports what a finished gesture did.
type Outcome struct {
	Kind      OutcomeKind `json:"kind"`
	Target    Target      `json:"target"`
	SectionID string      `json:"section_id,omitempty"`
}

type gesture struct {
	phase  phase
	target Target
	start  Point
	origin Layout
	// draft positions when the drag started
	pins map[string]int
}

func (g gesture) draggable() bool {
	return g.target.Control == "" || g.target.Control == ControlHandle
}

// PointerDown starts a gesture on target.
func (s *Session) PointerDown(target Target, at Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return ErrNotAttached
	}
	switch s.gesture.phase {
	case phaseIdle:
	case phaseCommitting:
		return ErrBusy
	default:
		return ErrGestureActive
	}
	if err := s.checkTargetLocked(target); err != nil {
		return err
	}
	s.gesture = gesture{phase: phasePressed, target: target, start: at}
	return nil
}

func (s *Session) checkTargetLocked(target Target) error {
	switch target.Kind {
	case TargetTask:
		if s.isDraft(target.ID) {
			return ErrNotDraggable
		}
		if ci, _ := s.layout.Locate(target.ID); ci < 0 {
			return fmt.Errorf("%w: task %s", ErrUnknownTarget, target.ID)
		}
	case TargetSection:
		if s.layout.Column(target.ID) < 0 {
			return fmt.Errorf("%w: section %s", ErrUnknownTarget, target.ID)
		}
	default:
		return fmt.Errorf("%w: kind %q", ErrUnknownTarget, target.Kind)
	}
	return nil
}

// PointerMove turns a press into a drag once the pointer has travelled
// past the threshold.
func (s *Session) PointerMove(at Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := &s.gesture
	switch g.phase {
	case phaseIdle:
		return ErrNoGesture
	case phasePressed:
	default:
		return nil
	}
	if !g.draggable() || math.Hypot(at.X-g.start.X, at.Y-g.start.Y) < s.threshold {
		return nil
	}
	// a snapshot may have removed the target since the press
	if err := s.checkTargetLocked(g.target); err != nil {
		s.gesture = gesture{}
		return err
	}
	g.phase = phaseDragging
	g.origin = s.layout.Clone()
	g.pins = s.draftPins()
	s.logger.Debug("drag started", "project", s.projectID, "kind", g.target.Kind, "id", g.target.ID)
	s.renderLocked()
	return nil
}

// DragOver moves the dragged element in the presentation layout. For a
// task it is placed in sectionID at index; for a column sectionID is
// ignored and index is the column position.
func (s *Session) DragOver(sectionID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.gesture
	if g.phase != phaseDragging {
		return ErrNoGesture
	}
	switch g.target.Kind {
	case TargetSection:
		ids := ordering.Move(s.layout.SectionIDs(), g.target.ID, index)
		cols := make([]Column, 0, len(ids))
		for _, id := range ids {
			cols = append(cols, s.layout.Columns[s.layout.Column(id)])
		}
		s.layout.Columns = cols
	case TargetTask:
		to := s.layout.Column(sectionID)
		if to < 0 {
			return fmt.Errorf("%w: section %s", ErrUnknownTarget, sectionID)
		}
		from, _ := s.layout.Locate(g.target.ID)
		if from < 0 {
			return fmt.Errorf("%w: task %s", ErrUnknownTarget, g.target.ID)
		}
		if from == to {
			s.layout.Columns[to].TaskIDs = ordering.Move(s.layout.Columns[to].TaskIDs, g.target.ID, index)
		} else {
			s.layout.Columns[from].TaskIDs, s.layout.Columns[to].TaskIDs = ordering.Transfer(
				s.layout.Columns[from].TaskIDs, s.layout.Columns[to].TaskIDs, g.target.ID, index)
		}
		s.pinDraftsLocked()
	}
	s.renderLocked()
	return nil
}

// PointerUp ends the gesture. A press that never became a drag is a click.
// A drag commits the final presentation order in one atomic write; while
// it is in flight incoming snapshots are held back.
func (s *Session) PointerUp(ctx context.Context) (Outcome, error) {
	s.mu.Lock()
	g := s.gesture
	switch g.phase {
	case phaseIdle:
		s.mu.Unlock()
		return Outcome{}, ErrNoGesture
	case phaseCommitting:
		s.mu.Unlock()
		return Outcome{}, ErrBusy
	case phasePressed:
		s.gesture = gesture{}
		s.mu.Unlock()
		return Outcome{Kind: OutcomeClick, Target: g.target}, nil
	}

	if s.layout.Equal(g.origin) {
		s.gesture = gesture{}
		if s.deferred {
			s.distributeLocked()
		} else {
			s.renderLocked()
		}
		s.mu.Unlock()
		return Outcome{Kind: OutcomeNoop, Target: g.target}, nil
	}

	out, commit := s.planCommitLocked(g)
	gen := s.generation
	refresh, apply := repository.TasksQuery(s.projectID), s.applyTasks
	if g.target.Kind == TargetSection {
		refresh, apply = repository.SectionsQuery(s.projectID), s.applySections
	}
	s.gesture.phase = phaseCommitting
	s.beginCommitLocked()
	s.mu.Unlock()

	err := commit(ctx)
	// a snapshot pushed while the write was in flight may predate it; read
	// the pane again so the layout is rebuilt from state that includes it
	var fresh []store.Document
	var ferr error
	if err == nil {
		fresh, ferr = s.store.Query(ctx, refresh)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gesture = gesture{}
	switch {
	case err != nil:
		s.restorePinsLocked(g.pins)
	case ferr != nil:
		s.logger.Warn("refresh after commit failed", "project", s.projectID, "err", ferr)
	case gen == s.generation:
		apply(fresh)
	}
	s.endCommitLocked(string(out.Kind), err)
	if err != nil {
		return out, fmt.Errorf("commit %s: %w", out.Kind, err)
	}
	return out, nil
}

// planCommitLocked reads the write off the presentation layout. Drafts are
// in the layout but never part of a stored order.
func (s *Session) planCommitLocked(g gesture) (Outcome, func(context.Context) error) {
	projectID := s.projectID
	if g.target.Kind == TargetSection {
		ids := s.layout.SectionIDs()
		return Outcome{Kind: OutcomeColumnsReordered, Target: g.target}, func(ctx context.Context) error {
			return s.sections.ReorderSections(ctx, projectID, ids)
		}
	}

	fromCol, _ := g.origin.Locate(g.target.ID)
	toCol, _ := s.layout.Locate(g.target.ID)
	from := g.origin.Columns[fromCol].SectionID
	to := s.layout.Columns[toCol].SectionID
	toOrder := s.storedOrder(s.layout.Columns[toCol].TaskIDs)

	if from == to {
		return Outcome{Kind: OutcomeReordered, Target: g.target, SectionID: to}, func(ctx context.Context) error {
			return s.tasks.Reorder(ctx, projectID, to, toOrder)
		}
	}

	var fromOrder []string
	if ci := s.layout.Column(from); ci >= 0 {
		fromOrder = s.storedOrder(s.layout.Columns[ci].TaskIDs)
	}
	move := repository.Move{
		ProjectID:     projectID,
		TaskID:        g.target.ID,
		FromSectionID: from,
		ToSectionID:   to,
		FromOrder:     fromOrder,
		ToOrder:       toOrder,
	}
	return Outcome{Kind: OutcomeMoved, Target: g.target, SectionID: to}, func(ctx context.Context) error {
		return s.tasks.MoveTask(ctx, move)
	}
}

func (s *Session) storedOrder(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if sid, ok := s.storedID(id); ok {
			out = append(out, sid)
		}
	}
	return out
}

// storedID maps a layout id to the id it has in the store. Drafts that
// were committed but not yet echoed back count under their task id.
func (s *Session) storedID(id string) (string, bool) {
	i := s.draftIndex(id)
	if i < 0 {
		return id, true
	}
	if c := s.drafts[i].CommittedAs; c != "" {
		return c, true
	}
	return "", false
}

func (s *Session) isDraft(id string) bool {
	return slices.ContainsFunc(s.drafts, func(d Draft) bool { return d.ID == id })
}

// CancelDrag abandons a press or drag and restores the last snapshot. A
// commit already under way is not affected.
func (s *Session) CancelDrag() {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.gesture.phase {
	case phasePressed:
		s.gesture = gesture{}
	case phaseDragging:
		pins := s.gesture.pins
		s.gesture = gesture{}
		s.restorePinsLocked(pins)
		s.recoverLocked()
	}
}
