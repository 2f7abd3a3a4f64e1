package model

import "github.com/google/uuid"

// Identity is the authenticated user behind a request or session.
type Identity struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
}

// IsChef reports whether the identity belongs to the chef.
func (i Identity) IsChef() bool {
	return i.Role == RoleChef
}
