package handlers

import (
	"net/http"

	"github.com/anonto42/circleup/backend/internal/middleware"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// ReactionHandler handles reaction toggles on posts and comments
type ReactionHandler struct {
	reactions *services.ReactionService
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(reactions *services.ReactionService) *ReactionHandler {
	return &ReactionHandler{reactions: reactions}
}

// RegisterReactionRoutes registers reaction-related routes
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.POST("/posts/:id/reactions", h.TogglePostReaction)
	g.POST("/comments/:id/reactions", h.ToggleCommentReaction)
}

// ToggleReactionRequest defines the request body for a reaction toggle
type ToggleReactionRequest struct {
	Kind string `json:"kind" validate:"required,oneof=like love sad angry"`
}

// TogglePostReaction toggles the viewer's reaction on a post
func (h *ReactionHandler) TogglePostReaction(c echo.Context) error {
	return h.toggle(c, services.ItemPost)
}

// ToggleCommentReaction toggles the viewer's reaction on a comment
func (h *ReactionHandler) ToggleCommentReaction(c echo.Context) error {
	return h.toggle(c, services.ItemComment)
}

func (h *ReactionHandler) toggle(c echo.Context, item services.ItemKind) error {
	var req ToggleReactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.reactions.Toggle(c.Request().Context(), item, c.Param("id"), models.ReactionKind(req.Kind), middleware.ViewerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}
