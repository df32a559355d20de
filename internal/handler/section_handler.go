package handler

import (
	"net/http"
	"slices"

	"taskboard/internal/model"
	"taskboard/internal/repository"

	"github.com/gin-gonic/gin"
)

type SectionHandler struct {
	sectionRepo *repository.SectionRepository
	projectRepo *repository.ProjectRepository
}

func NewSectionHandler(sectionRepo *repository.SectionRepository, projectRepo *repository.ProjectRepository) *SectionHandler {
	return &SectionHandler{
		sectionRepo: sectionRepo,
		projectRepo: projectRepo,
	}
}

// SectionRequest представляет запрос на создание колонки
type SectionRequest struct {
	Title string `json:"title" binding:"required,max=100"`
}

// ReorderSectionsRequest содержит все колонки проекта в новом порядке
type ReorderSectionsRequest struct {
	SectionIDs []string `json:"section_ids" binding:"required,min=1,dive,required"`
}

// Create добавляет колонку в конец доски
func (h *SectionHandler) Create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req SectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, ok := requireRole(c, h.projectRepo, c.Param("id"), userID, model.RoleEditor)
	if !ok {
		return
	}

	section, err := h.sectionRepo.Create(c.Request.Context(), project.ID, req.Title)
	if err != nil {
		respondError(c, err, "Failed to create section")
		return
	}

	c.JSON(http.StatusCreated, sectionResponse(*section))
}

// Reorder переставляет колонки одной пачкой записей
func (h *SectionHandler) Reorder(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req ReorderSectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	project, ok := requireRole(c, h.projectRepo, c.Param("id"), userID, model.RoleEditor)
	if !ok {
		return
	}

	existing, err := h.sectionRepo.GetByProject(c.Request.Context(), project.ID)
	if err != nil {
		respondError(c, err, "Failed to retrieve sections")
		return
	}

	// Новый порядок должен содержать каждую колонку ровно один раз
	want := make([]string, 0, len(existing))
	for _, s := range existing {
		want = append(want, s.ID)
	}
	got := slices.Clone(req.SectionIDs)
	slices.Sort(want)
	slices.Sort(got)
	if !slices.Equal(want, got) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "section_ids must list every section of the project exactly once"})
		return
	}

	if err := h.sectionRepo.ReorderSections(c.Request.Context(), project.ID, req.SectionIDs); err != nil {
		respondError(c, err, "Failed to reorder sections")
		return
	}

	sections, err := h.sectionRepo.GetByProject(c.Request.Context(), project.ID)
	if err != nil {
		respondError(c, err, "Failed to retrieve sections")
		return
	}
	resp := make([]SectionResponse, 0, len(sections))
	for _, s := range sections {
		resp = append(resp, sectionResponse(s))
	}
	c.JSON(http.StatusOK, resp)
}
