package handlers

import (
	"net/http"

	"github.com/anonto42/circleup/backend/internal/middleware"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	feeds *services.FeedService
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(feeds *services.FeedService) *FeedHandler {
	return &FeedHandler{feeds: feeds}
}

// RegisterFeedRoutes registers the authenticated home feed route
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.HomeFeed)
}

// RegisterPublicFeedRoutes registers the feeds an anonymous viewer may read.
// Privacy filtering still runs per request; anonymity only narrows results.
func (h *FeedHandler) RegisterPublicFeedRoutes(g *echo.Group) {
	g.GET("/users/:id/posts", h.UserTimeline)
	g.GET("/pages/:id/posts", h.PageFeed)
	g.GET("/groups/:id/posts", h.GroupFeed)
}

// HomeFeed returns one page of the viewer's composed home feed
func (h *FeedHandler) HomeFeed(c echo.Context) error {
	page, err := h.feeds.HomeFeed(c.Request().Context(), middleware.ViewerID(c), paginationFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, page)
}

// UserTimeline returns one page of a user's privacy-filtered timeline
func (h *FeedHandler) UserTimeline(c echo.Context) error {
	page, err := h.feeds.UserTimeline(c.Request().Context(), c.Param("id"), middleware.ViewerID(c), paginationFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, page)
}

// PageFeed returns one page of a page's posts
func (h *FeedHandler) PageFeed(c echo.Context) error {
	page, err := h.feeds.CommunityFeed(c.Request().Context(), models.CommunityPage, c.Param("id"), middleware.ViewerID(c), paginationFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, page)
}

// GroupFeed returns one page of a group's posts, gated for members_only groups
func (h *FeedHandler) GroupFeed(c echo.Context) error {
	page, err := h.feeds.CommunityFeed(c.Request().Context(), models.CommunityGroup, c.Param("id"), middleware.ViewerID(c), paginationFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, page)
}
