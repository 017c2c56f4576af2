package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role controls access to the admin surface. Administrative status changes
// and catalog mutations require RoleAdmin; everything else is per-user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a registered account. PasswordHash is a bcrypt hash and is never
// serialised.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}
