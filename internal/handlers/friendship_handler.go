package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/circleup/backend/internal/middleware"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FriendshipHandler handles friend request HTTP endpoints
type FriendshipHandler struct {
	friendships *services.FriendshipService
}

// NewFriendshipHandler creates a new FriendshipHandler
func NewFriendshipHandler(friendships *services.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{friendships: friendships}
}

// RegisterFriendshipRoutes registers friendship-related routes
func (h *FriendshipHandler) RegisterFriendshipRoutes(g *echo.Group) {
	g.POST("/friend-requests", h.SendFriendRequest)
	g.GET("/friend-requests", h.ListPendingRequests)
	g.PUT("/friend-requests/:id", h.RespondToFriendRequest)
	g.DELETE("/friend-requests/:id", h.CancelFriendRequest)
	g.GET("/friends", h.ListFriends)
	g.DELETE("/friends/:id", h.Unfriend)
}

// SendFriendRequest sends a friend request to another user
func (h *FriendshipHandler) SendFriendRequest(c echo.Context) error {
	var req models.CreateFriendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	request, err := h.friendships.Send(c.Request().Context(), middleware.ViewerID(c), req.ReceiverID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, request)
}

// ListPendingRequests lists the viewer's incoming pending friend requests
func (h *FriendshipHandler) ListPendingRequests(c echo.Context) error {
	requests, err := h.friendships.Pending(c.Request().Context(), middleware.ViewerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, requests)
}

// RespondToFriendRequest accepts or rejects a pending friend request
func (h *FriendshipHandler) RespondToFriendRequest(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request id")
	}

	var req models.UpdateFriendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.friendships.Respond(c.Request().Context(), uint(id), middleware.ViewerID(c), req.Status); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "friend request " + req.Status})
}

// CancelFriendRequest cancels a pending request the viewer sent
func (h *FriendshipHandler) CancelFriendRequest(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request id")
	}
	if err := h.friendships.Cancel(c.Request().Context(), uint(id), middleware.ViewerID(c)); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListFriends returns the viewer's friends as compact profiles
func (h *FriendshipHandler) ListFriends(c echo.Context) error {
	friends, err := h.friendships.Friends(c.Request().Context(), middleware.ViewerID(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, friends)
}

// Unfriend removes an existing friendship
func (h *FriendshipHandler) Unfriend(c echo.Context) error {
	if err := h.friendships.Unfriend(c.Request().Context(), middleware.ViewerID(c), c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
