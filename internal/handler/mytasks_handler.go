package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"taskboard/internal/mytasks"

	"github.com/gin-gonic/gin"
)

// MyTasksFetcher загружает задачи пользователя по всем проектам
type MyTasksFetcher interface {
	Fetch(ctx context.Context, userID string) (*mytasks.List, error)
}

type MyTasksHandler struct {
	fetcher MyTasksFetcher
}

func NewMyTasksHandler(fetcher MyTasksFetcher) *MyTasksHandler {
	return &MyTasksHandler{fetcher: fetcher}
}

// MyTaskResponse представляет одну строку списка "Мои задачи"
type MyTaskResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	ProjectID   string   `json:"project_id"`
	ProjectName string   `json:"project_name"`
	SectionID   string   `json:"section_id"`
	Status      string   `json:"status"`
	Priority    string   `json:"priority,omitempty"`
	DueDate     *string  `json:"due_date,omitempty"`
	Assignees   []string `json:"assignees"`
	LikeCount   int      `json:"like_count"`
}

type MyTasksResponse struct {
	Tasks   []MyTaskResponse `json:"tasks"`
	Total   int              `json:"total"`
	Dropped int              `json:"dropped"`
}

// List возвращает задачи, назначенные текущему пользователю
func (h *MyTasksHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	sortBy, err := mytasks.ParseSortBy(c.Query("sort"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	hideCompleted := false
	if v := c.Query("hide_completed"); v != "" {
		hideCompleted, err = strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "hide_completed must be a boolean"})
			return
		}
	}

	list, err := h.fetcher.Fetch(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve tasks")
		return
	}

	rows := list.View(mytasks.Options{
		SortBy:        sortBy,
		HideCompleted: hideCompleted,
		ProjectID:     c.Query("project_id"),
		Status:        c.Query("status"),
	})

	resp := MyTasksResponse{
		Tasks:   make([]MyTaskResponse, 0, len(rows)),
		Total:   len(list.Rows),
		Dropped: list.Dropped,
	}
	for _, r := range rows {
		item := MyTaskResponse{
			ID:          r.Task.TaskID,
			Name:        r.Task.Name,
			ProjectID:   r.Project.ID,
			ProjectName: r.Project.Name,
			SectionID:   r.Task.SectionID,
			Status:      r.Task.Status,
			Priority:    r.Task.Priority,
			Assignees:   r.Task.Assignees,
			LikeCount:   r.Task.LikeCount,
		}
		if r.Task.DueDate != nil {
			formatted := r.Task.DueDate.Format(time.RFC3339)
			item.DueDate = &formatted
		}
		resp.Tasks = append(resp.Tasks, item)
	}
	c.JSON(http.StatusOK, resp)
}
