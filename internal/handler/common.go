package handler

import (
	"errors"
	"log"
	"net/http"

	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/store"

	"github.com/gin-gonic/gin"
)

// currentUser достает ID пользователя, положенный JWT middleware
func currentUser(c *gin.Context) (string, bool) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return "", false
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return "", false
	}
	return id, true
}

// respondError переводит ошибки репозиториев в HTTP статусы
func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
	case errors.Is(err, repository.ErrSectionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Section not found"})
	case errors.Is(err, repository.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, repository.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to do this in this project"})
	case errors.Is(err, repository.ErrProtectedField), errors.Is(err, repository.ErrInvalidUserID), errors.Is(err, repository.ErrDuplicateID), errors.Is(err, store.ErrInvalidPath):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("❌ %s: %v", fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// requireRole проверяет роль пользователя в проекте и сам пишет ответ при отказе
func requireRole(c *gin.Context, projects *repository.ProjectRepository, projectID, userID string, role model.Role) (*model.Project, bool) {
	project, err := projects.GetByID(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, err, "Failed to retrieve project")
		return nil, false
	}
	if !project.HasAccess(userID, role) {
		respondError(c, repository.ErrForbidden, "")
		return nil, false
	}
	return project, true
}
