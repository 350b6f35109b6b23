package models

import "time"

// UserRole represents the roles recognised by the role guard. Students carry no role.
type UserRole string

const (
	RoleNone       UserRole = ""
	RoleInstructor UserRole = "instructor"
	RoleAdmin      UserRole = "admin"
)

// Valid reports whether the role is one the service can assign.
func (r UserRole) Valid() bool {
	switch r {
	case RoleNone, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// User is a student, instructor, or admin keyed by email.
type User struct {
	ID        string    `db:"id" json:"_id"`
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	PhotoURL  string    `db:"photo_url" json:"photo_url"`
	Role      UserRole  `db:"role" json:"role,omitempty"`
	Students  int       `db:"students" json:"students"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role  *UserRole
	Limit int
}

// RoleStatus answers whether a user holds the elevated roles.
type RoleStatus struct {
	Admin      bool `json:"admin"`
	Instructor bool `json:"instructor"`
}
