package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskboard/internal/board"
	"taskboard/internal/handler"
	"taskboard/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func loaded(v board.View, sectionID string, tasks int) bool {
	col, ok := v.Section(sectionID)
	return ok && len(col.Tasks) == tasks && v.Panes[board.PaneTasks].Loaded
}

func TestHandleBoardEvent_Viewer(t *testing.T) {
	// Arrange
	a := setupAPI(t)
	alice, bob := uuid.NewString(), uuid.NewString()
	project, todo, _ := a.board(t, alice)
	task := a.createTask(t, alice, project, handler.TaskRequest{Name: "Read me", SectionID: todo})

	ctx := context.Background()
	s, teardown, err := board.Init(ctx, a.store, project, bob, board.RendererFunc(func(board.View) {}))
	require.NoError(t, err)
	defer teardown()
	require.Eventually(t, func() bool { return loaded(s.View(), todo, 1) }, 5*time.Second, 10*time.Millisecond)

	// Act: зритель нажимает, двигает и отпускает
	_, err = handler.HandleBoardEvent(ctx, s, handler.BoardEvent{Type: handler.EventPointerDown, TaskID: task.ID}, false)
	require.NoError(t, err)
	_, err = handler.HandleBoardEvent(ctx, s, handler.BoardEvent{Type: handler.EventPointerMove, X: 100, Y: 100}, false)
	require.NoError(t, err)
	reply, err := handler.HandleBoardEvent(ctx, s, handler.BoardEvent{Type: handler.EventPointerUp}, false)

	// Assert: движение проигнорировано, получился клик
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, handler.MessageOutcome, reply.Type)
	assert.Equal(t, board.OutcomeClick, reply.Outcome.Kind)
	assert.Equal(t, task.ID, reply.Outcome.Target.ID)

	// изменения доски запрещены
	_, err = handler.HandleBoardEvent(ctx, s, handler.BoardEvent{Type: handler.EventAddTask, SectionID: todo}, false)
	assert.Error(t, err)
	_, err = handler.HandleBoardEvent(ctx, s, handler.BoardEvent{Type: handler.EventCollapse, SectionID: todo, Collapsed: true}, false)
	assert.Error(t, err)

	_, err = handler.HandleBoardEvent(ctx, s, handler.BoardEvent{Type: "wiggle"}, true)
	assert.Error(t, err)
}

func TestHandleBoardEvent_DraftLifecycle(t *testing.T) {
	a := setupAPI(t)
	alice := uuid.NewString()
	project, todo, _ := a.board(t, alice)

	ctx := context.Background()
	s, teardown, err := board.Init(ctx, a.store, project, alice, board.RendererFunc(func(board.View) {}))
	require.NoError(t, err)
	defer teardown()
	require.Eventually(t, func() bool { return loaded(s.View(), todo, 0) }, 5*time.Second, 10*time.Millisecond)

	reply, err := handler.HandleBoardEvent(ctx, s, handler.BoardEvent{Type: handler.EventAddTask, SectionID: todo}, true)
	require.NoError(t, err)
	require.Equal(t, handler.MessageDraft, reply.Type)
	draftID := reply.DraftID

	_, err = handler.HandleBoardEvent(ctx, s, handler.BoardEvent{Type: handler.EventRename, DraftID: draftID, Name: "Write docs"}, true)
	require.NoError(t, err)
	reply, err = handler.HandleBoardEvent(ctx, s, handler.BoardEvent{Type: handler.EventBlur, DraftID: draftID}, true)
	require.NoError(t, err)
	require.NotEmpty(t, reply.TaskID)

	stored, err := repository.NewTaskRepository(a.store).GetByID(ctx, reply.TaskID)
	require.NoError(t, err)
	assert.Equal(t, "Write docs", stored.Name)
	assert.Equal(t, todo, stored.SectionID)
}

func TestBoardWebsocket_ReorderRoundTrip(t *testing.T) {
	// Arrange
	a := setupAPI(t)
	alice := uuid.NewString()
	project, todo, _ := a.board(t, alice)
	first := a.createTask(t, alice, project, handler.TaskRequest{Name: "First", SectionID: todo})
	second := a.createTask(t, alice, project, handler.TaskRequest{Name: "Second", SectionID: todo})

	srv := httptest.NewServer(a.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/projects/" + project + "/board/ws"
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + a.token(t, alice)}},
	})
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	// ждем, пока доска загрузится полностью
	for {
		var msg handler.BoardMessage
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		if msg.Type == handler.MessageBoard && loaded(*msg.Board, todo, 2) {
			break
		}
	}

	// Act: перетаскиваем вторую задачу наверх
	events := []handler.BoardEvent{
		{Type: handler.EventPointerDown, TaskID: second.ID, X: 10, Y: 10},
		{Type: handler.EventPointerMove, X: 10, Y: 40},
		{Type: handler.EventDragOver, SectionID: todo, Index: 0},
		{Type: handler.EventPointerUp},
	}
	for _, ev := range events {
		require.NoError(t, wsjson.Write(ctx, conn, ev))
	}

	var outcome *board.Outcome
	for outcome == nil {
		var msg handler.BoardMessage
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		require.NotEqual(t, handler.MessageError, msg.Type, msg.Error)
		if msg.Type == handler.MessageOutcome {
			outcome = msg.Outcome
		}
	}

	// Assert
	assert.Equal(t, board.OutcomeReordered, outcome.Kind)
	tasks, err := repository.NewTaskRepository(a.store).GetBySection(ctx, project, todo)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, second.ID, tasks[0].ID)
	assert.Equal(t, first.ID, tasks[1].ID)
}

func TestBoardWebsocket_RequiresMembership(t *testing.T) {
	a := setupAPI(t)
	alice, mallory := uuid.NewString(), uuid.NewString()
	project, _, _ := a.board(t, alice)

	srv := httptest.NewServer(a.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/projects/" + project + "/board/ws"
	_, resp, err := websocket.Dial(ctx, url, &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + a.token(t, mallory)}},
	})

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
