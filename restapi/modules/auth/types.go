package auth

// LoginRequest is the body of the demo login form
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Context locals set by the auth middleware
const (
	LocalAuthenticated = "is_authenticated"
	LocalUser          = "user"
	LocalUserID        = "user_id"
)

type contextKey string

// UserKey carries the authenticated user ID into GraphQL resolver contexts
const UserKey contextKey = "user_id"
