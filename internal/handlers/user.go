package handlers

import (
	"net/http"

	"github.com/anonto42/circleup/backend/internal/middleware"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// UserHandler handles profile-related HTTP requests
type UserHandler struct {
	accounts repositories.AccountRepository
	users    repositories.UserGraphRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(accounts repositories.AccountRepository, users repositories.UserGraphRepository) *UserHandler {
	return &UserHandler{accounts: accounts, users: users}
}

// RegisterProfileRoutes registers profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetOwnProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/search", h.SearchUsers)
}

// GetOwnProfile returns the authenticated user's account and graph summary
func (h *UserHandler) GetOwnProfile(c echo.Context) error {
	viewerID := middleware.ViewerID(c)

	account, err := h.accounts.GetAccountByPublicID(viewerID)
	if err != nil {
		return httpError(err)
	}
	graph, err := h.users.GetUserGraph(c.Request().Context(), viewerID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user":          account,
		"friends_count": len(graph.Friends),
		"joined_groups": graph.JoinedGroups,
		"owned_groups":  graph.OwnedGroups,
		"owned_pages":   graph.OwnedPages,
	})
}

// UpdateProfile updates the authenticated user's profile fields
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	viewerID := middleware.ViewerID(c)

	var req models.UpdateAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.accounts.GetAccountByPublicID(viewerID)
	if err != nil {
		return httpError(err)
	}
	if req.Name != "" {
		account.Name = req.Name
	}
	if req.AvatarURL != "" {
		account.AvatarURL = req.AvatarURL
	}
	if req.Bio != "" {
		account.Bio = req.Bio
	}
	if err := h.accounts.UpdateAccount(account); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, account)
}

// GetUser returns another user's public profile
func (h *UserHandler) GetUser(c echo.Context) error {
	account, err := h.accounts.GetAccountByPublicID(c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, account.ToCompact())
}

// SearchUsers searches users by name
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Query parameter 'q' is required")
	}

	accounts, err := h.accounts.SearchAccounts(query)
	if err != nil {
		return httpError(err)
	}

	results := make([]models.AccountCompact, 0, len(accounts))
	for i := range accounts {
		results = append(results, accounts[i].ToCompact())
	}
	return c.JSON(http.StatusOK, results)
}
