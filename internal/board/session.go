// Package board keeps one user's view of a project board in step with the
// document store: it owns the live subscriptions, merges snapshots with
// local drafts and drags, and commits reorders as atomic writes.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/store"
)

// DefaultDragThreshold is how far the pointer must travel, in pixels,
// before a press becomes a drag.
const DefaultDragThreshold = 5.0

var (
	ErrNotAttached   = errors.New("session is not attached to a project")
	ErrGestureActive = errors.New("another gesture is in progress")
	ErrNoGesture     = errors.New("no gesture in progress")
	ErrUnknownTarget = errors.New("unknown drag target")
	ErrNotDraggable  = errors.New("target cannot be dragged")
	ErrUnknownDraft  = errors.New("unknown draft")
	ErrBusy          = errors.New("board is busy")
)

type Option func(*Session)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

func WithDragThreshold(px float64) Option {
	return func(s *Session) { s.threshold = px }
}

// Session is the board state of one user looking at one project.
type Session struct {
	store     store.Store
	tasks     *repository.TaskRepository
	sections  *repository.SectionRepository
	renderer  Renderer
	logger    *slog.Logger
	threshold float64

	mu         sync.Mutex
	idle       *sync.Cond
	attached   bool
	userID     string
	projectID  string
	generation uint64
	cancels    []func()

	sectionList []model.Section
	taskList    []model.Task
	covers      map[string]string
	panes       map[Pane]PaneState

	drafts []Draft
	layout Layout
	scroll map[string]int
	focus  string

	gesture  gesture
	inFlight int
	deferred bool
}

func NewSession(st store.Store, r Renderer, opts ...Option) *Session {
	s := &Session{
		store:     st,
		tasks:     repository.NewTaskRepository(st),
		sections:  repository.NewSectionRepository(st),
		renderer:  r,
		logger:    slog.Default(),
		threshold: DefaultDragThreshold,
	}
	s.idle = sync.NewCond(&s.mu)
	for _, opt := range opts {
		opt(s)
	}
	s.resetLocked()
	return s
}

// Init attaches a new session to projectID and returns it with its
// teardown func.
func Init(ctx context.Context, st store.Store, projectID, userID string, r Renderer, opts ...Option) (*Session, func(), error) {
	s := NewSession(st, r, opts...)
	if err := s.Attach(ctx, userID, projectID); err != nil {
		return nil, nil, err
	}
	return s, s.Detach, nil
}

// Attach subscribes to the sections, tasks and attachments of projectID.
// Re-attaching to the current project is a no-op. Switching projects
// waits for in-flight commits, then drops the previous subscriptions.
func (s *Session) Attach(ctx context.Context, userID, projectID string) error {
	s.mu.Lock()
	if s.attached && s.projectID == projectID {
		s.userID = userID
		s.mu.Unlock()
		return nil
	}
	s.waitIdleLocked()
	old := s.detachLocked()
	s.attached = true
	s.userID = userID
	s.projectID = projectID
	gen := s.generation
	s.resetLocked()
	s.mu.Unlock()

	for _, cancel := range old {
		cancel()
	}

	cancels, err := s.subscribe(ctx, gen, projectID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil || gen != s.generation {
		for _, cancel := range cancels {
			cancel()
		}
		if err != nil {
			s.attached = false
			return fmt.Errorf("attach project %s: %w", projectID, err)
		}
		return nil
	}
	s.cancels = cancels
	s.logger.Debug("board attached", "project", projectID, "user", userID)
	return nil
}

func (s *Session) subscribe(ctx context.Context, gen uint64, projectID string) ([]func(), error) {
	subs := []struct {
		pane  Pane
		query store.Query
		apply func(docs []store.Document)
	}{
		{PaneSections, repository.SectionsQuery(projectID), s.applySections},
		{PaneTasks, repository.TasksQuery(projectID), s.applyTasks},
		{PaneAttachments, repository.AttachmentsQuery(projectID), s.applyAttachments},
	}
	cancels := make([]func(), 0, len(subs))
	for _, sub := range subs {
		sub := sub
		cancel, err := s.store.Subscribe(ctx, sub.query,
			func(docs []store.Document) { s.onSnapshot(gen, sub.pane, docs, sub.apply) },
			func(err error) { s.onError(gen, sub.pane, err) },
		)
		if err != nil {
			return cancels, err
		}
		cancels = append(cancels, cancel)
	}
	return cancels, nil
}

// Detach waits for in-flight commits and cancels every subscription. It is
// safe to call more than once.
func (s *Session) Detach() {
	s.mu.Lock()
	s.waitIdleLocked()
	cancels := s.detachLocked()
	s.mu.Unlock()
	for _, cancel := range cancels {
		cancel()
	}
}

// detachLocked invalidates callbacks of the current attachment and hands
// back the cancel funcs for the caller to run outside the lock.
func (s *Session) detachLocked() []func() {
	cancels := s.cancels
	s.cancels = nil
	s.attached = false
	s.generation++
	s.gesture = gesture{}
	return cancels
}

func (s *Session) resetLocked() {
	s.sectionList = nil
	s.taskList = nil
	s.covers = map[string]string{}
	s.panes = map[Pane]PaneState{}
	s.drafts = nil
	s.layout = Layout{}
	s.scroll = map[string]int{}
	s.focus = ""
	s.deferred = false
}

func (s *Session) waitIdleLocked() {
	for s.inFlight > 0 {
		s.idle.Wait()
	}
}

func (s *Session) onSnapshot(gen uint64, pane Pane, docs []store.Document, apply func([]store.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	s.panes[pane] = PaneState{Loaded: true}
	apply(docs)
}

func (s *Session) applySections(docs []store.Document) {
	sections, bad := repository.DecodeSections(docs)
	if bad > 0 {
		s.logger.Warn("skipped undecodable sections", "project", s.projectID, "count", bad)
	}
	s.sectionList = sections
	s.distributeLocked()
}

func (s *Session) applyTasks(docs []store.Document) {
	tasks, bad := repository.DecodeTasks(docs)
	if bad > 0 {
		s.logger.Warn("skipped undecodable tasks", "project", s.projectID, "count", bad)
	}
	s.taskList = tasks
	s.distributeLocked()
}

func (s *Session) applyAttachments(docs []store.Document) {
	attachments, _ := repository.DecodeAttachments(docs)
	s.covers = repository.BuildAttachmentIndex(attachments)
	if s.gated() {
		s.deferred = true
		return
	}
	s.renderLocked()
}

func (s *Session) onError(gen uint64, pane Pane, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	s.logger.Error("subscription failed", "project", s.projectID, "pane", pane, "err", err)
	state := s.panes[pane]
	state.Error = fmt.Sprintf("could not load %s", pane)
	s.panes[pane] = state
	s.renderLocked()
}

// gated reports whether redistribution must wait: while a drag is live the
// presentation owns positions, and while a commit is in flight a snapshot
// may predate it.
func (s *Session) gated() bool {
	return s.inFlight > 0 || s.gesture.phase == phaseDragging
}

// distributeLocked is the single path from authoritative state to paint.
func (s *Session) distributeLocked() {
	if s.gated() {
		s.deferred = true
		return
	}
	s.deferred = false
	s.layout, s.drafts = Distribute(s.sectionList, s.taskList, s.drafts)
	s.renderLocked()
}

// recoverLocked repaints from the last snapshot, discarding optimistic
// changes. It is the recovery for every rejected write.
func (s *Session) recoverLocked() {
	s.deferred = false
	s.layout, s.drafts = Distribute(s.sectionList, s.taskList, s.drafts)
	s.renderLocked()
}

func (s *Session) beginCommitLocked() {
	s.inFlight++
}

func (s *Session) endCommitLocked(op string, err error) {
	s.inFlight--
	if err != nil {
		s.logger.Error("write rejected, restoring last snapshot", "op", op, "project", s.projectID, "err", err)
		if !s.gated() {
			s.recoverLocked()
		} else {
			s.deferred = true
		}
	} else if s.deferred {
		s.distributeLocked()
	} else if !s.gated() {
		s.renderLocked()
	}
	if s.inFlight == 0 {
		s.idle.Broadcast()
	}
}

func (s *Session) renderLocked() {
	if s.renderer == nil {
		return
	}
	v := s.viewLocked()
	s.renderer.Render(v)
	s.focus = ""
}

func (s *Session) viewLocked() View {
	sections := make(map[string]model.Section, len(s.sectionList))
	for _, sec := range s.sectionList {
		sections[sec.ID] = sec
	}
	tasks := make(map[string]model.Task, len(s.taskList))
	for _, t := range s.taskList {
		tasks[t.ID] = t
	}
	drafts := make(map[string]Draft, len(s.drafts))
	for _, d := range s.drafts {
		drafts[d.ID] = d
	}

	v := View{
		ProjectID: s.projectID,
		Sections:  make([]SectionView, 0, len(s.layout.Columns)),
		Scroll:    make(map[string]int, len(s.scroll)),
		Panes:     make(map[Pane]PaneState, len(s.panes)),
	}
	for k, off := range s.scroll {
		v.Scroll[k] = off
	}
	for k, p := range s.panes {
		v.Panes[k] = p
	}
	if s.focus != "" {
		v.Focus = &Focus{TaskID: s.focus, SelectAll: true}
	}
	if s.gesture.phase == phaseDragging || s.gesture.phase == phaseCommitting {
		v.Dragging = s.gesture.target.ID
	}

	for _, col := range s.layout.Columns {
		sec, ok := sections[col.SectionID]
		if !ok {
			continue
		}
		sv := SectionView{
			ID:        sec.ID,
			Title:     sec.Title,
			Order:     sec.Order,
			Collapsed: sec.Collapsed,
			Tasks:     make([]TaskView, 0, len(col.TaskIDs)),
		}
		for _, id := range col.TaskIDs {
			if d, ok := drafts[id]; ok {
				sv.Tasks = append(sv.Tasks, TaskView{
					ID:        d.ID,
					Name:      d.Name,
					SectionID: sec.ID,
					Status:    model.StatusNotStarted,
					Assignees: []string{},
					IsNew:     true,
				})
				continue
			}
			if t, ok := tasks[id]; ok {
				tv := taskView(t, s.userID, s.covers)
				// the layout, not the stored field, decides where it shows
				tv.SectionID = sec.ID
				sv.Tasks = append(sv.Tasks, tv)
			}
		}
		v.Sections = append(v.Sections, sv)
	}
	return v
}

// View returns the current view without rendering it.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Rerender repaints from the last snapshot.
func (s *Session) Rerender() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gated() {
		s.deferred = true
		return
	}
	s.recoverLocked()
}

// ProjectID returns the attached project, or "".
func (s *Session) ProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.attached {
		return ""
	}
	return s.projectID
}
