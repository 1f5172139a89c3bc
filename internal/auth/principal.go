package auth

import (
	"github.com/google/uuid"

	"storefront/internal/model"
)

// Principal is the caller resolved by the access guard. It is passed by value
// to handlers and never modified after resolution.
type Principal struct {
	ID      uuid.UUID
	Role    model.Role
	TokenID string
	Claims  *Claims
}

// IsElevated reports whether the principal holds the admin role.
func (p Principal) IsElevated() bool {
	return p.Role == model.RoleAdmin
}
