package model

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"firstName"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Not exposed
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Identity is what the auth middleware attaches to a request once the
// session token resolved to a stored user.
type Identity struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func (u *User) Identity() Identity {
	return Identity{
		ID:        u.ID,
		FirstName: u.FirstName,
		Email:     u.Email,
		Role:      u.Role,
	}
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
