package models

import (
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// Account is the authentication record kept in PostgreSQL. PublicID is the
// identifier every engine document (posts, graph docs, communities) refers to.
type Account struct {
	gorm.Model  `json:"-"`
	ID          uint   `json:"id" gorm:"primaryKey"`
	PublicID    string `json:"public_id" gorm:"uniqueIndex;size:36"`
	Name        string `json:"name"`
	Email       string `json:"email" gorm:"uniqueIndex"`
	Password    string `json:"-"` // bcrypt hash, never serialized
	FirebaseUID string `json:"firebase_uid,omitempty" gorm:"uniqueIndex"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Bio         string `json:"bio,omitempty"`
}

// AccountCompact is the trimmed account shape embedded in feed responses
type AccountCompact struct {
	PublicID  string `json:"public_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// ToCompact trims an account for embedding in other payloads
func (a *Account) ToCompact() AccountCompact {
	return AccountCompact{PublicID: a.PublicID, Name: a.Name, AvatarURL: a.AvatarURL}
}

// SignupRequest defines the request body for local registration
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// SignInRequest defines the request body for local sign-in
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateAccountRequest defines the request body for profile updates
type UpdateAccountRequest struct {
	Name      string `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	AvatarURL string `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Bio       string `json:"bio,omitempty" validate:"omitempty,max=500"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	AccountID uint   `json:"account_id"`
	PublicID  string `json:"public_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}
