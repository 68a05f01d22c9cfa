package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleAdmin   UserRole = "ADMIN"
	RoleHOD     UserRole = "HOD"
	RoleStaff   UserRole = "STAFF"
	RoleStudent UserRole = "STUDENT"
)

// User mirrors a row of the shared users table. Students, advisors and HODs all live there.
type User struct {
	ID                 string    `db:"id" json:"id"`
	Role               UserRole  `db:"role" json:"role"`
	Name               string    `db:"name" json:"name"`
	Email              string    `db:"email" json:"email"`
	RegistrationNumber string    `db:"registration_number" json:"registration_number,omitempty"`
	Department         string    `db:"department" json:"department"`
	Batch              string    `db:"batch" json:"batch,omitempty"`
	Active             bool      `db:"is_active" json:"is_active"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID     string   `json:"user_id"`
	Role       UserRole `json:"role"`
	Email      string   `json:"email"`
	Department string   `json:"department,omitempty"`
	jwt.RegisteredClaims
}
