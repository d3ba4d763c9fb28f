package models

import "time"

// User roles
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User represents a portal account, either an administrator or a parent
// ("customer") account
type User struct {
	ID        int64
	Email     string
	Name      string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the user holds the administrator role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
