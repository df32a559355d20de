package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"taskboard/internal/board"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Типы событий от клиента
const (
	EventPointerDown = "pointerdown"
	EventPointerMove = "pointermove"
	EventDragOver    = "dragover"
	EventPointerUp   = "pointerup"
	EventCancel      = "cancel"
	EventAddTask     = "addtask"
	EventRename      = "rename"
	EventBlur        = "blur"
	EventScroll      = "scroll"
	EventCollapse    = "collapse"
)

// Типы сообщений сервера
const (
	MessageBoard   = "board"
	MessageOutcome = "outcome"
	MessageDraft   = "draft"
	MessageError   = "error"
)

var errReadOnly = errors.New("viewers cannot change the board")

// BoardEvent is one client gesture. task_id, section_id and control carry
// the data attributes of the element under the pointer.
type BoardEvent struct {
	Type      string  `json:"type"`
	TaskID    string  `json:"task_id,omitempty"`
	SectionID string  `json:"section_id,omitempty"`
	Control   string  `json:"control,omitempty"`
	DraftID   string  `json:"draft_id,omitempty"`
	X         float64 `json:"x,omitempty"`
	Y         float64 `json:"y,omitempty"`
	Index     int     `json:"index,omitempty"`
	Name      string  `json:"name,omitempty"`
	Offset    int     `json:"offset,omitempty"`
	Collapsed bool    `json:"collapsed,omitempty"`
}

// BoardMessage is what the server pushes.
type BoardMessage struct {
	Type    string         `json:"type"`
	Board   *board.View    `json:"board,omitempty"`
	Outcome *board.Outcome `json:"outcome,omitempty"`
	DraftID string         `json:"draft_id,omitempty"`
	TaskID  string         `json:"task_id,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type BoardHandler struct {
	store         store.Store
	projectRepo   *repository.ProjectRepository
	dragThreshold float64
	logger        *slog.Logger
}

func NewBoardHandler(st store.Store, projectRepo *repository.ProjectRepository, dragThreshold float64, logger *slog.Logger) *BoardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BoardHandler{
		store:         st,
		projectRepo:   projectRepo,
		dragThreshold: dragThreshold,
		logger:        logger,
	}
}

// Serve открывает websocket с живой доской проекта
func (h *BoardHandler) Serve(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	project, ok := requireRole(c, h.projectRepo, c.Param("id"), userID, model.RoleViewer)
	if !ok {
		return
	}
	canEdit := project.HasAccess(userID, model.RoleEditor)

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{})
	if err != nil {
		h.logger.Warn("websocket accept failed", "project", project.ID, "err", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "closing")

	g, ctx := errgroup.WithContext(c.Request.Context())
	out := newBoardStream()

	opts := []board.Option{board.WithLogger(h.logger.With("project", project.ID, "user", userID))}
	if h.dragThreshold > 0 {
		opts = append(opts, board.WithDragThreshold(h.dragThreshold))
	}
	session, teardown, err := board.Init(ctx, h.store, project.ID, userID, out, opts...)
	if err != nil {
		h.logger.Error("board init failed", "project", project.ID, "err", err)
		conn.Close(websocket.StatusInternalError, "could not load board")
		return
	}
	defer teardown()

	g.Go(func() error { return out.pump(ctx, conn) })
	g.Go(func() error {
		for {
			var ev BoardEvent
			if err := wsjson.Read(ctx, conn, &ev); err != nil {
				return err
			}
			reply, err := HandleBoardEvent(ctx, session, ev, canEdit)
			if err != nil {
				reply = &BoardMessage{Type: MessageError, Error: err.Error()}
			}
			if reply != nil {
				out.reply(ctx, *reply)
			}
		}
	})

	if err := g.Wait(); err != nil && websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
		h.logger.Debug("board stream ended", "project", project.ID, "err", err)
	}
}

// HandleBoardEvent applies one client event to the session and returns the
// reply to send, if any.
func HandleBoardEvent(ctx context.Context, s *board.Session, ev BoardEvent, canEdit bool) (*BoardMessage, error) {
	switch ev.Type {
	case EventPointerDown:
		target := board.Target{Kind: board.TargetTask, ID: ev.TaskID, Control: ev.Control}
		if ev.TaskID == "" {
			target = board.Target{Kind: board.TargetSection, ID: ev.SectionID, Control: ev.Control}
		}
		return nil, s.PointerDown(target, board.Point{X: ev.X, Y: ev.Y})
	case EventPointerMove:
		if !canEdit {
			// у зрителя нажатие может быть только кликом
			return nil, nil
		}
		return nil, s.PointerMove(board.Point{X: ev.X, Y: ev.Y})
	case EventDragOver:
		return nil, s.DragOver(ev.SectionID, ev.Index)
	case EventPointerUp:
		out, err := s.PointerUp(ctx)
		if err != nil && out.Kind == "" {
			return nil, err
		}
		msg := &BoardMessage{Type: MessageOutcome, Outcome: &out}
		if err != nil {
			msg.Error = err.Error()
		}
		return msg, nil
	case EventCancel:
		s.CancelDrag()
		return nil, nil
	case EventScroll:
		s.Scroll(ev.SectionID, ev.Offset)
		return nil, nil
	}

	if !canEdit {
		return nil, errReadOnly
	}
	switch ev.Type {
	case EventAddTask:
		id, err := s.AddDraft(ev.SectionID, ev.Index)
		if err != nil {
			return nil, err
		}
		return &BoardMessage{Type: MessageDraft, DraftID: id}, nil
	case EventRename:
		return nil, s.RenameDraft(ev.DraftID, ev.Name)
	case EventBlur:
		taskID, err := s.BlurDraft(ctx, ev.DraftID)
		if err != nil {
			return nil, err
		}
		return &BoardMessage{Type: MessageDraft, DraftID: ev.DraftID, TaskID: taskID}, nil
	case EventCollapse:
		return nil, s.SetCollapsed(ctx, ev.SectionID, ev.Collapsed)
	}
	return nil, fmt.Errorf("unknown event type %q", ev.Type)
}

// boardStream keeps only the newest view; a slow client skips frames
// instead of blocking the session.
type boardStream struct {
	mu      sync.Mutex
	latest  *board.View
	notify  chan struct{}
	replies chan BoardMessage
}

func newBoardStream() *boardStream {
	return &boardStream{
		notify:  make(chan struct{}, 1),
		replies: make(chan BoardMessage, 16),
	}
}

func (b *boardStream) Render(v board.View) {
	b.mu.Lock()
	b.latest = &v
	b.mu.Unlock()
	select {
	case b.notify <- struct{}{}:
	default:
	}
}

func (b *boardStream) reply(ctx context.Context, msg BoardMessage) {
	select {
	case b.replies <- msg:
	case <-ctx.Done():
	}
}

func (b *boardStream) pump(ctx context.Context, conn *websocket.Conn) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-b.replies:
			if err := wsjson.Write(ctx, conn, msg); err != nil {
				return err
			}
		case <-b.notify:
			b.mu.Lock()
			v := b.latest
			b.mu.Unlock()
			if v == nil {
				continue
			}
			if err := wsjson.Write(ctx, conn, BoardMessage{Type: MessageBoard, Board: v}); err != nil {
				return err
			}
		}
	}
}
