package domain

// Role is the caller role carried in access tokens
type Role string

const (
	RoleTraveler Role = "traveler"
	RoleHost     Role = "host"
	RoleAdmin    Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

// Actor is the authenticated caller of a service operation
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the actor has back-office rights
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
