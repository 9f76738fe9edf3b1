package handlers

import (
	"net/http"

	"github.com/anonto42/circleup/backend/internal/middleware"
	"github.com/anonto42/circleup/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// MembershipHandler handles group membership and page follow requests
type MembershipHandler struct {
	membership *services.MembershipService
}

// NewMembershipHandler creates a new MembershipHandler
func NewMembershipHandler(membership *services.MembershipService) *MembershipHandler {
	return &MembershipHandler{membership: membership}
}

// RegisterMembershipRoutes registers membership-related routes
func (h *MembershipHandler) RegisterMembershipRoutes(g *echo.Group) {
	g.POST("/groups/:id/join", h.JoinGroup)
	g.POST("/groups/:id/exit", h.ExitGroup)
	g.POST("/groups/:id/requests/:reqID", h.HandleJoinRequest)
	g.DELETE("/groups/:id/members/:userID", h.ExpelMember)
	g.PUT("/groups/:id/admins/:userID", h.ToggleAdmin)
	g.POST("/pages/:id/follow", h.FollowPage)
	g.DELETE("/pages/:id/follow", h.UnfollowPage)
}

// JoinGroup joins a public group immediately or queues a join request
func (h *MembershipHandler) JoinGroup(c echo.Context) error {
	request, err := h.membership.JoinGroup(c.Request().Context(), c.Param("id"), middleware.ViewerID(c))
	if err != nil {
		return httpError(err)
	}
	if request != nil {
		return c.JSON(http.StatusAccepted, echo.Map{"message": "join request queued", "request": request})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "joined group"})
}

// HandleJoinRequestBody defines the request body for resolving a join request
type HandleJoinRequestBody struct {
	Action string `json:"action" validate:"required,oneof=accept deny"`
}

// HandleJoinRequest accepts or denies a queued join request
func (h *MembershipHandler) HandleJoinRequest(c echo.Context) error {
	var req HandleJoinRequestBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	err := h.membership.HandleJoinRequest(c.Request().Context(), c.Param("id"), c.Param("reqID"), req.Action == "accept", middleware.ViewerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "join request resolved"})
}

// ExitGroup removes the viewer from a group with the content cascade
func (h *MembershipHandler) ExitGroup(c echo.Context) error {
	if err := h.membership.ExitGroup(c.Request().Context(), c.Param("id"), middleware.ViewerID(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "left group"})
}

// ExpelMember removes another member from a group with the content cascade
func (h *MembershipHandler) ExpelMember(c echo.Context) error {
	if err := h.membership.ExpelMember(c.Request().Context(), c.Param("id"), c.Param("userID"), middleware.ViewerID(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "member removed"})
}

// ToggleAdmin promotes a member to admin or demotes an admin back to member
func (h *MembershipHandler) ToggleAdmin(c echo.Context) error {
	if err := h.membership.ToggleAdmin(c.Request().Context(), c.Param("id"), c.Param("userID"), middleware.ViewerID(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "admin role toggled"})
}

// FollowPage adds the viewer as a page follower
func (h *MembershipHandler) FollowPage(c echo.Context) error {
	if err := h.membership.FollowPage(c.Request().Context(), c.Param("id"), middleware.ViewerID(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "page followed"})
}

// UnfollowPage removes the viewer from a page's followers
func (h *MembershipHandler) UnfollowPage(c echo.Context) error {
	if err := h.membership.UnfollowPage(c.Request().Context(), c.Param("id"), middleware.ViewerID(c)); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "page unfollowed"})
}
