package models

import "time"

// Role identifies a user's place in the access hierarchy. It is the single
// representation of roles across the system; raw claim strings are validated
// into it at the boundary.
type Role string

const (
	// RoleSuperAdmin can see and mutate everything.
	RoleSuperAdmin Role = "super_admin"
	// RoleAdmin owns events and the sub-users assigned to it.
	RoleAdmin Role = "admin"
	// RoleUser is check-in staff subordinate to an admin.
	RoleUser Role = "user"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser:
		return true
	}
	return false
}

// User represents an operator of the system. The hierarchy is at most two
// levels deep: a plain user points at the admin it is subordinate to.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      Role      `gorm:"size:32;not null;default:user" json:"role"`
	AdminID   *uint     `gorm:"index" json:"adminId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// IsSubordinateOf reports whether the user is a plain user under the given admin.
func (u User) IsSubordinateOf(adminID uint) bool {
	return u.AdminID != nil && *u.AdminID == adminID
}
