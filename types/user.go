package types

import "time"

// UserRole separates tenant owners from platform admins.
type UserRole string

const (
	RoleUser  UserRole = "User"
	RoleAdmin UserRole = "Admin"
)

// User is the minimal account record. Authentication, password handling and
// session management live outside this service; handlers only see the user id
// and role extracted from the bearer token.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      UserRole  `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
