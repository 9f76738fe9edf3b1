package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/circleup/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// ViewerIDKey is the context key the auth middlewares store the verified
// account's public id under. Handlers read it with ViewerID(c).
const ViewerIDKey = "viewerID"

// ViewerID returns the authenticated user's public id, or "" for anonymous
// requests that passed through OptionalJWTAuthMiddleware.
func ViewerID(c echo.Context) string {
	if v, ok := c.Get(ViewerIDKey).(string); ok {
		return v
	}
	return ""
}

// JWTAuthMiddleware checks for a valid JWT and extracts user claims.
func JWTAuthMiddleware(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := claimsFromHeader(c, jwtSecret)
			if err != nil {
				return err
			}
			c.Set("user", claims)
			c.Set(ViewerIDKey, claims.PublicID)
			return next(c)
		}
	}
}

// OptionalJWTAuthMiddleware resolves claims when a token is present but lets
// anonymous requests through. Privacy checks downstream treat the empty
// viewer id as an anonymous reader.
func OptionalJWTAuthMiddleware(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				return next(c)
			}
			claims, err := claimsFromHeader(c, jwtSecret)
			if err != nil {
				return err
			}
			c.Set("user", claims)
			c.Set(ViewerIDKey, claims.PublicID)
			return next(c)
		}
	}
}

func claimsFromHeader(c echo.Context, jwtSecret string) (*models.JwtCustomClaims, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
	}

	// Expecting "Bearer <token>"
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
	}
	tokenString := parts[1]

	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})

	if err != nil {
		if err == jwt.ErrSignatureInvalid {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token signature")
		}
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	if !token.Valid {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	return claims, nil
}
