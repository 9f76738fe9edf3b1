package handlers

import (
	"net/http"

	"github.com/anonto42/circleup/backend/internal/middleware"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommunityHandler handles page and group lifecycle requests
type CommunityHandler struct {
	communities *services.CommunityService
}

// NewCommunityHandler creates a new CommunityHandler
func NewCommunityHandler(communities *services.CommunityService) *CommunityHandler {
	return &CommunityHandler{communities: communities}
}

// RegisterCommunityRoutes registers community CRUD routes
func (h *CommunityHandler) RegisterCommunityRoutes(g *echo.Group) {
	g.POST("/communities", h.CreateCommunity)
	g.GET("/communities/:id", h.GetCommunity)
	g.PUT("/communities/:id", h.UpdateCommunity)
	g.DELETE("/communities/:id", h.DeleteCommunity)
}

// CreateCommunity creates a new page or group owned by the viewer
func (h *CommunityHandler) CreateCommunity(c echo.Context) error {
	var req models.CreateCommunityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	community, err := h.communities.Create(c.Request().Context(), &req, middleware.ViewerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, community)
}

// GetCommunity returns a community profile
func (h *CommunityHandler) GetCommunity(c echo.Context) error {
	community, err := h.communities.Get(c.Request().Context(), c.Param("id"), middleware.ViewerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, community)
}

// UpdateCommunity updates a community's profile
func (h *CommunityHandler) UpdateCommunity(c echo.Context) error {
	var req models.UpdateCommunityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.communities.Update(c.Request().Context(), c.Param("id"), &req, middleware.ViewerID(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "community updated"})
}

// DeleteCommunity deletes a community and cascades its content
func (h *CommunityHandler) DeleteCommunity(c echo.Context) error {
	if err := h.communities.Delete(c.Request().Context(), c.Param("id"), middleware.ViewerID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
