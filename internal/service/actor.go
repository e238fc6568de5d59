package service

import (
	"github.com/google/uuid"

	"knowbase/internal/domain"
)

// Actor identifies the authenticated caller of a service operation.
type Actor struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Role     domain.UserRole
}

// IsManager reports whether the actor has manager rights or above.
func (a Actor) IsManager() bool {
	return a.Role.AtLeast(domain.RoleManager)
}

// canManageRole reports whether actor may create or modify users holding target.
// Owners manage managers and employees, managers manage employees, and owner
// accounts are never created or modified through the API.
func canManageRole(actor, target domain.UserRole) bool {
	switch actor {
	case domain.RoleOwner:
		return target == domain.RoleManager || target == domain.RoleEmployee
	case domain.RoleManager:
		return target == domain.RoleEmployee
	default:
		return false
	}
}

// pageBounds clamps list paging parameters.
func pageBounds(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return offset, limit
}
