package handlers

import (
	"net/http"

	"github.com/anonto42/circleup/backend/internal/middleware"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// StoryHandler handles story-related HTTP requests
type StoryHandler struct {
	content *services.ContentService
}

// NewStoryHandler creates a new StoryHandler
func NewStoryHandler(content *services.ContentService) *StoryHandler {
	return &StoryHandler{content: content}
}

// RegisterStoryRoutes registers story-related routes
func (h *StoryHandler) RegisterStoryRoutes(g *echo.Group) {
	g.POST("/stories", h.CreateStory)
	g.GET("/stories", h.ListStories)
	g.DELETE("/stories/:id", h.DeleteStory)
}

// CreateStory posts a story that expires after 24 hours
func (h *StoryHandler) CreateStory(c echo.Context) error {
	var req models.CreateStoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	story, err := h.content.CreateStory(c.Request().Context(), &req, middleware.ViewerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, story)
}

// ListStories returns unexpired stories from the viewer and their friends
func (h *StoryHandler) ListStories(c echo.Context) error {
	stories, err := h.content.ListStories(c.Request().Context(), middleware.ViewerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, stories)
}

// DeleteStory removes one of the viewer's stories
func (h *StoryHandler) DeleteStory(c echo.Context) error {
	if err := h.content.DeleteStory(c.Request().Context(), c.Param("id"), middleware.ViewerID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
