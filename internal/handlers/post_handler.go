package handlers

import (
	"net/http"

	"github.com/anonto42/circleup/backend/internal/middleware"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	content *services.ContentService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(content *services.ContentService) *PostHandler {
	return &PostHandler{content: content}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.DELETE("/posts/:id/media/:mediaID", h.DeleteMedia)
	g.POST("/posts/:id/share", h.SharePost)
	g.DELETE("/posts/:id/share", h.UnsharePost)
	g.POST("/posts/:id/save", h.SavePost)
	g.DELETE("/posts/:id/save", h.UnsavePost)
	g.GET("/posts/saved", h.ListSavedPosts)
}

// CreatePost creates a new post
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.content.CreatePost(c.Request().Context(), &req, middleware.ViewerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.content.GetPost(c.Request().Context(), c.Param("id"), middleware.ViewerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// UpdatePost updates an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.content.UpdatePost(c.Request().Context(), c.Param("id"), &req, middleware.ViewerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post with its comments and media
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.content.DeletePost(c.Request().Context(), c.Param("id"), middleware.ViewerID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteMedia removes one media item from a post
func (h *PostHandler) DeleteMedia(c echo.Context) error {
	if err := h.content.DeleteMediaFromPost(c.Request().Context(), c.Param("id"), c.Param("mediaID"), middleware.ViewerID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SharePost shares a post onto the viewer's timeline
func (h *PostHandler) SharePost(c echo.Context) error {
	if err := h.content.SharePost(c.Request().Context(), c.Param("id"), middleware.ViewerID(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "post shared"})
}

// UnsharePost removes the viewer's share of a post
func (h *PostHandler) UnsharePost(c echo.Context) error {
	if err := h.content.UnsharePost(c.Request().Context(), c.Param("id"), middleware.ViewerID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SavePost bookmarks a post
func (h *PostHandler) SavePost(c echo.Context) error {
	if err := h.content.SavePost(c.Request().Context(), c.Param("id"), middleware.ViewerID(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "post saved"})
}

// UnsavePost removes a bookmark
func (h *PostHandler) UnsavePost(c echo.Context) error {
	if err := h.content.UnsavePost(c.Request().Context(), c.Param("id"), middleware.ViewerID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListSavedPosts returns the viewer's still-visible bookmarks
func (h *PostHandler) ListSavedPosts(c echo.Context) error {
	posts, err := h.content.ListSavedPosts(c.Request().Context(), middleware.ViewerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, posts)
}
