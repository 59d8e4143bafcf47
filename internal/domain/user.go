package domain

import "time"

// Role enumerates the access roles an account can hold.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is the domain model for accounts that raise or work tickets.
// Deactivated users keep their historical ticket associations but can no
// longer authenticate or be newly assigned.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   string
	Role Role
}

// Actor projects the user into the identity used for authorization checks.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
