package handler

import (
	"net/http"
	"time"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ProjectHandler struct {
	projectRepo *repository.ProjectRepository
	sectionRepo *repository.SectionRepository
}

func NewProjectHandler(projectRepo *repository.ProjectRepository, sectionRepo *repository.SectionRepository) *ProjectHandler {
	return &ProjectHandler{
		projectRepo: projectRepo,
		sectionRepo: sectionRepo,
	}
}

// ProjectRequest представляет запрос на создание проекта
type ProjectRequest struct {
	Name string `json:"name" binding:"required,max=200"`
}

// MemberRequest представляет запрос на добавление участника проекта
type MemberRequest struct {
	UserID string     `json:"user_id" binding:"required,uuid"`
	Role   model.Role `json:"role" binding:"required,oneof=viewer editor owner"`
}

type MemberResponse struct {
	UserID string     `json:"user_id"`
	Role   model.Role `json:"role"`
}

type SectionResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Order     int    `json:"order"`
	Collapsed bool   `json:"collapsed"`
}

// ProjectResponse представляет ответ с данными проекта
type ProjectResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	OwnerID   string            `json:"owner_id"`
	Members   []MemberResponse  `json:"members"`
	Sections  []SectionResponse `json:"sections,omitempty"`
	CreatedAt string            `json:"created_at"`
}

func projectResponse(p *model.Project) ProjectResponse {
	members := make([]MemberResponse, 0, len(p.Members))
	for _, m := range p.Members {
		members = append(members, MemberResponse{UserID: m.UserID, Role: m.Role})
	}
	return ProjectResponse{
		ID:        p.ID,
		Name:      p.Name,
		OwnerID:   p.OwnerID,
		Members:   members,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}

func sectionResponse(s model.Section) SectionResponse {
	return SectionResponse{ID: s.ID, Title: s.Title, Order: s.Order, Collapsed: s.Collapsed}
}

// Create создает новый проект, текущий пользователь становится владельцем
func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, err := h.projectRepo.Create(c.Request.Context(), req.Name, userID)
	if err != nil {
		respondError(c, err, "Failed to create project")
		return
	}

	c.JSON(http.StatusCreated, projectResponse(project))
}

// List возвращает проекты, в которых состоит пользователь
func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	projects, err := h.projectRepo.ListForMember(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "Failed to retrieve projects")
		return
	}

	resp := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		resp = append(resp, projectResponse(&projects[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetByID возвращает проект вместе с колонками
func (h *ProjectHandler) GetByID(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	project, ok := requireRole(c, h.projectRepo, c.Param("id"), userID, model.RoleViewer)
	if !ok {
		return
	}

	sections, err := h.sectionRepo.GetByProject(c.Request.Context(), project.ID)
	if err != nil {
		respondError(c, err, "Failed to retrieve sections")
		return
	}

	resp := projectResponse(project)
	resp.Sections = make([]SectionResponse, 0, len(sections))
	for _, s := range sections {
		resp.Sections = append(resp.Sections, sectionResponse(s))
	}
	c.JSON(http.StatusOK, resp)
}

// AddMember добавляет участника или меняет его роль. Только для владельца
func (h *ProjectHandler) AddMember(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, ok := requireRole(c, h.projectRepo, c.Param("id"), userID, model.RoleOwner)
	if !ok {
		return
	}

	// Владельца проекта нельзя понизить
	memberID, _ := uuid.Parse(req.UserID)
	if memberID.String() == project.OwnerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot change the role of the project owner"})
		return
	}

	updated, err := h.projectRepo.SetMember(c.Request.Context(), project.ID, memberID.String(), req.Role)
	if err != nil {
		respondError(c, err, "Failed to update members")
		return
	}

	c.JSON(http.StatusOK, projectResponse(updated))
}
