package service

import (
	"errors"

	"github.com/noah-isme/checkin-go-api/internal/models"
)

// ErrAccessDenied indicates the caller is outside the event's ownership scope.
var ErrAccessDenied = errors.New("access denied")

// CanAccessEvent is the scoping policy consulted by every event-scoped read
// and write. A plain user with no admin assignment can access nothing: the
// policy fails closed.
func CanAccessEvent(event models.Event, user models.User) bool {
	switch user.Role {
	case models.RoleSuperAdmin:
		return true
	case models.RoleAdmin:
		return event.CreatedByID == user.ID
	case models.RoleUser:
		return user.IsSubordinateOf(event.CreatedByID)
	default:
		return false
	}
}

// CanDeleteEvent restricts deletion to the creating admin or a super-admin.
func CanDeleteEvent(event models.Event, user models.User) bool {
	if user.Role == models.RoleSuperAdmin {
		return true
	}
	return user.Role == models.RoleAdmin && event.CreatedByID == user.ID
}
