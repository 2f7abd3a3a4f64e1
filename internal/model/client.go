package model

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes the chef from regular customers.
type Role string

const (
	RoleClient Role = "client"
	RoleChef   Role = "chef"
)

// Client represents a registered account.
type Client struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Role         Role      `json:"role" db:"role"`
	Tokens       int64     `json:"tokens" db:"tokens"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// IsChef reports whether the client manages the restaurant.
func (c *Client) IsChef() bool {
	return c.Role == RoleChef
}

// Contact is the public view of a client used in chat partner lists.
type Contact struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
}

// RegisterRequest represents the request payload for creating an account.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginRequest represents the request payload for signing in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned after a successful sign-in.
type AuthResponse struct {
	Token  string `json:"token"`
	Client Client `json:"client"`
}
