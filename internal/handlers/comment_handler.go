package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/circleup/backend/internal/middleware"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	content *services.ContentService
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(content *services.ContentService) *CommentHandler {
	return &CommentHandler{content: content}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.ListComments)
	g.PUT("/comments/:id", h.UpdateComment)
	g.DELETE("/comments/:id", h.DeleteComment)
	g.DELETE("/comments/:id/media/:mediaID", h.DeleteMedia)
}

// CreateComment adds a comment to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.content.CreateComment(c.Request().Context(), c.Param("id"), &req, middleware.ViewerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

// ListComments returns one page of a post's comments
func (h *CommentHandler) ListComments(c echo.Context) error {
	p := paginationFromQuery(c)
	comments, final, err := h.content.ListComments(c.Request().Context(), c.Param("id"), middleware.ViewerID(c), p)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"comments": comments, "is_final_page": final})
}

// UpdateComment edits a comment
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	var req models.UpdateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	comment, err := h.content.UpdateComment(c.Request().Context(), c.Param("id"), &req, middleware.ViewerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, comment)
}

// DeleteComment removes a comment
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	if err := h.content.DeleteComment(c.Request().Context(), c.Param("id"), middleware.ViewerID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DeleteMedia removes one media reference from a comment
func (h *CommentHandler) DeleteMedia(c echo.Context) error {
	if err := h.content.DeleteMediaFromComment(c.Request().Context(), c.Param("id"), c.Param("mediaID"), middleware.ViewerID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// paginationFromQuery reads page/limit/skip query params with defaults
func paginationFromQuery(c echo.Context) services.Pagination {
	page, _ := strconv.ParseInt(c.QueryParam("page"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	skip, _ := strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	return services.Pagination{Page: page, Limit: limit, Skip: skip}
}
