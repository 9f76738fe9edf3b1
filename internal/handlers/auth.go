package handlers

import (
	"context"
	"net/http"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/circleup/backend/internal/apperrors"
	"github.com/anonto42/circleup/backend/internal/middleware"
	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/anonto42/circleup/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	accounts     repositories.AccountRepository
	users        repositories.UserGraphRepository
	firebaseAuth *auth.Client
	jwtSecret    string
	log          *logrus.Logger
}

// NewAuthHandler creates a new AuthHandler. firebaseAuthClient may be nil
// when Firebase credentials are not configured; the firebase-login route then
// rejects with 503.
func NewAuthHandler(accounts repositories.AccountRepository, users repositories.UserGraphRepository, firebaseAuthClient *auth.Client, jwtSecret string, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{
		accounts:     accounts,
		users:        users,
		firebaseAuth: firebaseAuthClient,
		jwtSecret:    jwtSecret,
		log:          log,
	}
}

// RegisterAuthRoutes registers authentication-related routes. Token
// verification for firebase-login lives in FirebaseAuthMiddleware; the
// handler only links or creates the account.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	if h.firebaseAuth != nil {
		g.POST("/firebase-login", h.FirebaseLogin, middleware.FirebaseAuthMiddleware(h.firebaseAuth))
	} else {
		g.POST("/firebase-login", h.firebaseUnavailable)
	}
}

// Signup handles local user registration with email and password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// Check if a user with this email already exists
	if _, err := h.accounts.GetAccountByEmail(req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	} else if !apperrors.IsNotFound(err) {
		return httpError(err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	account := &models.Account{
		PublicID: uuid.NewString(),
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
	}
	if err := h.createAccount(c.Request().Context(), account); err != nil {
		return httpError(err)
	}

	token, err := h.generateJWT(account)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token after signup")
	}

	return c.JSON(http.StatusCreated, echo.Map{"token": token, "user": account.ToCompact()})
}

// SignIn handles local user authentication with email and password
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SignInRequest

	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.accounts.GetAccountByEmail(req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := h.generateJWT(account)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": account.ToCompact()})
}

// FirebaseLogin exchanges a verified Firebase identity for a local JWT.
// FirebaseAuthMiddleware has already verified the bearer ID token.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	token, ok := c.Get(middleware.FirebaseTokenKey).(*auth.Token)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Firebase identity missing")
	}

	firebaseUID := token.UID
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)

	account, err := h.accounts.GetAccountByFirebaseUID(firebaseUID)
	switch {
	case err == nil:
		// Known Firebase user, refresh profile details
		if email != "" {
			account.Email = email
		}
		if name != "" {
			account.Name = name
		}
		if err := h.accounts.UpdateAccount(account); err != nil {
			return httpError(err)
		}
	case apperrors.IsNotFound(err):
		// Not linked yet, try matching an existing local account by email
		account, err = h.accounts.GetAccountByEmail(email)
		switch {
		case err == nil:
			account.FirebaseUID = firebaseUID
			if err := h.accounts.UpdateAccount(account); err != nil {
				return httpError(err)
			}
		case apperrors.IsNotFound(err):
			account = &models.Account{
				PublicID:    uuid.NewString(),
				Name:        name,
				Email:       email,
				FirebaseUID: firebaseUID,
			}
			if err := h.createAccount(c.Request().Context(), account); err != nil {
				return httpError(err)
			}
		default:
			return httpError(err)
		}
	default:
		return httpError(err)
	}

	localJWT, err := h.generateJWT(account)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate local JWT")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": localJWT, "user": account.ToCompact()})
}

// firebaseUnavailable answers firebase-login when no Firebase credentials
// were configured at startup
func (h *AuthHandler) firebaseUnavailable(c echo.Context) error {
	return echo.NewHTTPError(http.StatusServiceUnavailable, "Firebase authentication is not configured")
}

// createAccount persists the account and seeds the matching graph document.
// The graph doc is required before the user can react, join or befriend.
func (h *AuthHandler) createAccount(ctx context.Context, account *models.Account) error {
	if err := h.accounts.CreateAccount(account); err != nil {
		return err
	}
	if err := h.users.CreateUserGraph(ctx, account.PublicID); err != nil {
		h.log.WithError(err).WithField("public_id", account.PublicID).Error("failed to seed user graph document")
		return err
	}
	return nil
}

// generateJWT generates a JWT token for a given account
func (h *AuthHandler) generateJWT(account *models.Account) (string, error) {
	claims := &models.JwtCustomClaims{
		AccountID: account.ID,
		PublicID:  account.PublicID,
		Email:     account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
