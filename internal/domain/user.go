package domain

// UserRole enumerates supported staff roles.
type UserRole string

const (
	UserRoleStaff UserRole = "staff"
	UserRoleAdmin UserRole = "admin"
)

// User represents a staff account able to sign in to the admin panel.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         UserRole
}

// IsAdmin reports whether the account holds the administrative role.
func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
