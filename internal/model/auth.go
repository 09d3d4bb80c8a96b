package model

// AuthContext carries the authenticated caller identity through a request.
// It is built by the auth middleware after token verification.
type AuthContext struct {
	UserID string
}
