package middleware

// contextKey defines a type for context keys to avoid collisions.
type contextKey string

// Context keys used within the application middleware and handlers.
const (
	// UserIDKey is the context key for the authenticated user's ID (string).
	UserIDKey contextKey = "userID"
	// UserRoleKey is the context key for the authenticated user's role.
	UserRoleKey contextKey = "userRole"
)
