package handler

import (
	"net/http"
	"strings"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/ordering"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	taskRepo       *repository.TaskRepository
	indexRepo      *repository.TaskIndexMaintainer
	sectionRepo    *repository.SectionRepository
	projectRepo    *repository.ProjectRepository
	attachmentRepo *repository.AttachmentRepository
}

func NewTaskHandler(
	taskRepo *repository.TaskRepository,
	indexRepo *repository.TaskIndexMaintainer,
	sectionRepo *repository.SectionRepository,
	projectRepo *repository.ProjectRepository,
	attachmentRepo *repository.AttachmentRepository,
) *TaskHandler {
	return &TaskHandler{
		taskRepo:       taskRepo,
		indexRepo:      indexRepo,
		sectionRepo:    sectionRepo,
		projectRepo:    projectRepo,
		attachmentRepo: attachmentRepo,
	}
}

// TaskRequest представляет запрос на создание задачи
type TaskRequest struct {
	Name      string     `json:"name" binding:"required,max=500"`
	SectionID string     `json:"section_id" binding:"required"`
	Position  *int       `json:"position" binding:"omitempty,min=0"`
	Priority  string     `json:"priority" binding:"omitempty,oneof=Low Medium High"`
	DueDate   *time.Time `json:"due_date"`
	Assignees []string   `json:"assignees" binding:"omitempty,dive,uuid"`
}

// TaskMoveRequest представляет запрос на перемещение задачи
type TaskMoveRequest struct {
	SectionID string `json:"section_id" binding:"required"`
	Position  *int   `json:"position" binding:"required,min=0"`
}

// TaskUpdateRequest содержит только изменяемые поля; отсутствующие не трогаются
type TaskUpdateRequest struct {
	Name         *string        `json:"name" binding:"omitempty,min=1,max=500"`
	Status       *string        `json:"status" binding:"omitempty,oneof='Not Started' 'In Progress' Completed"`
	Priority     *string        `json:"priority" binding:"omitempty,oneof=Low Medium High"`
	DueDate      *time.Time     `json:"due_date"`
	ClearDueDate bool           `json:"clear_due_date"`
	Assignees    *[]string      `json:"assignees" binding:"omitempty,dive,uuid"`
	CustomFields map[string]any `json:"custom_fields"`
}

// TaskResponse представляет ответ с данными задачи
type TaskResponse struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	ProjectID    string   `json:"project_id"`
	SectionID    string   `json:"section_id"`
	Order        int      `json:"order"`
	Status       string   `json:"status"`
	Priority     string   `json:"priority,omitempty"`
	DueDate      *string  `json:"due_date,omitempty"`
	Assignees    []string `json:"assignees"`
	LikeCount    int      `json:"like_count"`
	Liked        bool     `json:"liked"`
	CommentCount int      `json:"comment_count"`
}

// AttachmentRequest описывает файл, уже загруженный в хранилище
type AttachmentRequest struct {
	URL         string `json:"url" binding:"required,url"`
	ContentType string `json:"content_type" binding:"required"`
}

type AttachmentResponse struct {
	ID          string `json:"id"`
	ThreadID    string `json:"thread_id"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	CreatedAt   string `json:"created_at"`
}

// LikeResponse показывает итог лайка
type LikeResponse struct {
	Liked     bool `json:"liked"`
	Changed   bool `json:"changed"`
	LikeCount int  `json:"like_count"`
}

func taskResponse(t *model.Task, userID string) TaskResponse {
	resp := TaskResponse{
		ID:           t.ID,
		Name:         t.Name,
		ProjectID:    t.ProjectID,
		SectionID:    t.SectionID,
		Order:        t.Order,
		Status:       t.Status,
		Priority:     t.Priority,
		Assignees:    t.Assignees,
		LikeCount:    t.LikeCount,
		Liked:        t.LikedBy[userID],
		CommentCount: t.CommentCount,
	}
	if resp.Assignees == nil {
		resp.Assignees = []string{}
	}
	if t.DueDate != nil {
		formatted := t.DueDate.Format(time.RFC3339)
		resp.DueDate = &formatted
	}
	return resp
}

// taskProject находит задачу через индекс и проверяет роль в ее проекте
func (h *TaskHandler) taskProject(c *gin.Context, userID string, role model.Role) (*model.TaskIndex, bool) {
	idx, err := h.taskRepo.GetIndex(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve task")
		return nil, false
	}
	if _, ok := requireRole(c, h.projectRepo, idx.ProjectID, userID, role); !ok {
		return nil, false
	}
	return idx, true
}

// Create создает новую задачу в колонке
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, ok := requireRole(c, h.projectRepo, c.Param("id"), userID, model.RoleEditor)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.sectionRepo.GetByID(ctx, project.ID, req.SectionID); err != nil {
		respondError(c, err, "Failed to retrieve section")
		return
	}

	existing, err := h.taskRepo.GetBySection(ctx, project.ID, req.SectionID)
	if err != nil {
		respondError(c, err, "Failed to retrieve tasks")
		return
	}

	// Если позиция не указана, добавляем в конец колонки
	ids := ordering.TaskIDs(existing)
	position := len(ids)
	if req.Position != nil {
		position = *req.Position
	}

	task := &model.Task{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		ProjectID: project.ID,
		SectionID: req.SectionID,
		Status:    model.StatusNotStarted,
		Priority:  req.Priority,
		DueDate:   req.DueDate,
		Assignees: req.Assignees,
	}
	if err := h.taskRepo.Create(ctx, task, ordering.Insert(ids, task.ID, position)); err != nil {
		respondError(c, err, "Failed to create task")
		return
	}

	c.JSON(http.StatusCreated, taskResponse(task, userID))
}

// MoveTask перемещает задачу внутри колонки или в другую колонку
func (h *TaskHandler) MoveTask(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req TaskMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	idx, ok := h.taskProject(c, userID, model.RoleEditor)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.sectionRepo.GetByID(ctx, idx.ProjectID, req.SectionID); err != nil {
		respondError(c, err, "Failed to retrieve section")
		return
	}

	origin, err := h.taskRepo.GetBySection(ctx, idx.ProjectID, idx.SectionID)
	if err != nil {
		respondError(c, err, "Failed to retrieve tasks")
		return
	}

	move := repository.Move{
		ProjectID:     idx.ProjectID,
		TaskID:        idx.TaskID,
		FromSectionID: idx.SectionID,
		ToSectionID:   req.SectionID,
	}
	if idx.SectionID == req.SectionID {
		move.ToOrder = ordering.Move(ordering.TaskIDs(origin), idx.TaskID, *req.Position)
	} else {
		dest, err := h.taskRepo.GetBySection(ctx, idx.ProjectID, req.SectionID)
		if err != nil {
			respondError(c, err, "Failed to retrieve tasks")
			return
		}
		move.FromOrder, move.ToOrder = ordering.Transfer(ordering.TaskIDs(origin), ordering.TaskIDs(dest), idx.TaskID, *req.Position)
	}

	if err := h.taskRepo.MoveTask(ctx, move); err != nil {
		respondError(c, err, "Failed to move task")
		return
	}

	task, err := h.taskRepo.GetByID(ctx, idx.TaskID)
	if err != nil {
		respondError(c, err, "Failed to retrieve task")
		return
	}
	c.JSON(http.StatusOK, taskResponse(task, userID))
}

// Update меняет поля задачи сразу в основном документе и в индексе
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req TaskUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	fields := map[string]any{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Priority != nil {
		fields["priority"] = *req.Priority
	}
	if req.DueDate != nil {
		fields["dueDate"] = *req.DueDate
	} else if req.ClearDueDate {
		fields["dueDate"] = nil
	}
	if req.Assignees != nil {
		fields["assignees"] = *req.Assignees
	}
	for k, v := range req.CustomFields {
		if k == "" || strings.Contains(k, ".") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid custom field name"})
			return
		}
		fields["customFields."+k] = v
	}
	if len(fields) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	idx, ok := h.taskProject(c, userID, model.RoleEditor)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.indexRepo.UpdateTask(ctx, idx.TaskID, fields); err != nil {
		respondError(c, err, "Failed to update task")
		return
	}

	task, err := h.taskRepo.GetByID(ctx, idx.TaskID)
	if err != nil {
		respondError(c, err, "Failed to retrieve task")
		return
	}
	c.JSON(http.StatusOK, taskResponse(task, userID))
}

// Delete удаляет задачу и ее индекс
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	idx, ok := h.taskProject(c, userID, model.RoleEditor)
	if !ok {
		return
	}

	if err := h.taskRepo.Delete(c.Request.Context(), idx.TaskID); err != nil {
		respondError(c, err, "Failed to delete task")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// Like ставит лайк от текущего пользователя
func (h *TaskHandler) Like(c *gin.Context) {
	h.setLiked(c, true)
}

// Unlike убирает лайк текущего пользователя
func (h *TaskHandler) Unlike(c *gin.Context) {
	h.setLiked(c, false)
}

func (h *TaskHandler) setLiked(c *gin.Context, liked bool) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	idx, ok := h.taskProject(c, userID, model.RoleViewer)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	changed, err := h.indexRepo.SetLiked(ctx, idx.TaskID, userID, liked)
	if err != nil {
		respondError(c, err, "Failed to update like")
		return
	}

	task, err := h.taskRepo.GetByID(ctx, idx.TaskID)
	if err != nil {
		respondError(c, err, "Failed to retrieve task")
		return
	}
	c.JSON(http.StatusOK, LikeResponse{Liked: task.LikedBy[userID], Changed: changed, LikeCount: task.LikeCount})
}

// AddAttachment прикрепляет файл к обсуждению задачи. Первая картинка
// становится обложкой карточки
func (h *TaskHandler) AddAttachment(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req AttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	idx, ok := h.taskProject(c, userID, model.RoleEditor)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	task, err := h.taskRepo.GetByPath(ctx, idx.Path)
	if err != nil {
		respondError(c, err, "Failed to retrieve task")
		return
	}

	attachment := &model.Attachment{
		ProjectID:   task.ProjectID,
		ThreadID:    task.Thread(),
		URL:         req.URL,
		ContentType: req.ContentType,
	}
	if err := h.attachmentRepo.Create(ctx, attachment); err != nil {
		respondError(c, err, "Failed to add attachment")
		return
	}

	c.JSON(http.StatusCreated, AttachmentResponse{
		ID:          attachment.ID,
		ThreadID:    attachment.ThreadID,
		URL:         attachment.URL,
		ContentType: attachment.ContentType,
		CreatedAt:   attachment.CreatedAt.Format(time.RFC3339),
	})
}
