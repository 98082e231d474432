package domain

import "time"

// Role distinguishes the two audiences of the inquiry subsystem.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Actor is the authenticated caller threaded into every core operation.
// There is no ambient session state; the identity provider resolves an Actor
// per request and handlers pass it down explicitly.
type Actor struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the actor may perform admin-only operations.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// User is an account known to the identity provider.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor returns the actor identity for the user.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
