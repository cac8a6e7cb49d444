package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the access level carried in session tokens.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleInstructor Role = "INSTRUCTOR"
)

// LoginRequest holds instructor credentials.
type LoginRequest struct {
	Fino     string `json:"fino" validate:"required,numeric"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued session token.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	Fino        int64     `json:"fino"`
	FirstName   string    `json:"first_name"`
}

// JWTClaims is the payload of access tokens. Subject is the franchise number
// for instructors and an operator name for admins.
type JWTClaims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}
