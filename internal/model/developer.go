// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is the fixed set of positions a developer can hold.
// Matching against a role is case-insensitive at query time, but the
// stored value is always one of the canonical constants below.
type Role string

const (
	RoleFrontend  Role = "Frontend"
	RoleBackend   Role = "Backend"
	RoleFullStack Role = "Full-Stack"
)

// Roles lists every valid role, in display order.
var Roles = []Role{RoleFrontend, RoleBackend, RoleFullStack}

// Valid reports whether r is one of the canonical roles.
// The zero value ("") is not valid; absence of a role filter is
// expressed at the query layer, not in the stored record.
func (r Role) Valid() bool {
	switch r {
	case RoleFrontend, RoleBackend, RoleFullStack:
		return true
	}
	return false
}

// Developer is a directory entry.
//
// ID is assigned by the store at creation and never reused, even after
// deletion. CreatedAt is set once; UpdatedAt moves on every mutation.
// About and JoiningDate are optional; JoiningDate is an ISO calendar
// date (YYYY-MM-DD) when present.
type Developer struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Role        Role      `json:"role"`
	TechStack   []string  `json:"techStack"`
	Experience  int       `json:"experience"` // years, >= 0
	About       string    `json:"about,omitempty"`
	JoiningDate string    `json:"joiningDate,omitempty"`
	CreatedBy   string    `json:"createdBy,omitempty"` // User.ID of the creator
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Clone returns a deep copy. The store hands out clones so no caller
// ever holds a mutable reference to persisted state.
func (d Developer) Clone() Developer {
	c := d
	c.TechStack = append([]string(nil), d.TechStack...)
	return c
}
