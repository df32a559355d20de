package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/mytasks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) Fetch(ctx context.Context, userID string) (*mytasks.List, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).(*mytasks.List)
	return list, args.Error(1)
}

func setupMyTasks(fetcher handler.MyTasksFetcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := handler.NewMyTasksHandler(fetcher)
	// пользователь подставляется напрямую, без JWT
	r.GET("/my-tasks", func(c *gin.Context) {
		c.Set(middleware.UserIDKey, "user-1")
		h.List(c)
	})
	return r
}

func TestMyTasksHandler_List(t *testing.T) {
	due := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	list := &mytasks.List{
		UserID: "user-1",
		Rows: []mytasks.Row{
			{Task: model.TaskIndex{TaskID: "t1", Name: "Ship", ProjectID: "p1", Status: model.StatusCompleted, DueDate: &due}, Project: mytasks.ProjectRef{ID: "p1", Name: "Alpha"}},
			{Task: model.TaskIndex{TaskID: "t2", Name: "Plan", ProjectID: "p2", Status: model.StatusNotStarted}, Project: mytasks.ProjectRef{ID: "p2", Name: "Beta"}},
		},
		Dropped: 1,
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		fetcher := new(mockFetcher)
		fetcher.On("Fetch", mock.Anything, "user-1").Return(list, nil).Once()
		r := setupMyTasks(fetcher)

		// Act
		req, _ := http.NewRequest("GET", "/my-tasks?hide_completed=true", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		// Assert
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		got := decode[handler.MyTasksResponse](t, resp)
		require.Len(t, got.Tasks, 1)
		assert.Equal(t, "t2", got.Tasks[0].ID)
		assert.Equal(t, "Beta", got.Tasks[0].ProjectName)
		assert.Equal(t, 2, got.Total)
		assert.Equal(t, 1, got.Dropped)
		fetcher.AssertExpectations(t)
	})

	t.Run("DueDateFormatted", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("Fetch", mock.Anything, "user-1").Return(list, nil).Once()
		r := setupMyTasks(fetcher)

		req, _ := http.NewRequest("GET", "/my-tasks?project_id=p1", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		got := decode[handler.MyTasksResponse](t, resp)
		require.Len(t, got.Tasks, 1)
		require.NotNil(t, got.Tasks[0].DueDate)
		assert.Equal(t, "2025-03-01T00:00:00Z", *got.Tasks[0].DueDate)
	})

	t.Run("InvalidSort", func(t *testing.T) {
		// Неверная сортировка отклоняется до загрузки
		fetcher := new(mockFetcher)
		r := setupMyTasks(fetcher)

		req, _ := http.NewRequest("GET", "/my-tasks?sort=color", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
		fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	})

	t.Run("InvalidHideCompleted", func(t *testing.T) {
		fetcher := new(mockFetcher)
		r := setupMyTasks(fetcher)

		req, _ := http.NewRequest("GET", "/my-tasks?hide_completed=maybe", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("FetchError", func(t *testing.T) {
		fetcher := new(mockFetcher)
		fetcher.On("Fetch", mock.Anything, "user-1").Return(nil, errors.New("database error")).Once()
		r := setupMyTasks(fetcher)

		req, _ := http.NewRequest("GET", "/my-tasks", nil)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusInternalServerError, resp.Code)
		fetcher.AssertExpectations(t)
	})
}
