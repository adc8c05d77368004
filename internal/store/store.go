package store

import (
	"context"
)

// Bundle is the set of credentials persisted for a session between requests
// and across process restarts: the identity provider's access and refresh
// tokens, the absolute expiry of the access token, the email the session was
// established for, and the locally minted authorization token
type Bundle struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    int64  `json:"expires_at"` // epoch millis
	Email        string `json:"email"`
	UserToken    string `json:"user_token,omitempty"`
}

// Store persists a single credential bundle for one session. Put overwrites
// any previously stored bundle wholesale; Get returns ErrNotFound once the
// bundle has been cleared or has never been stored.
type Store interface {
	Put(ctx context.Context, b Bundle) error
	Get(ctx context.Context) (Bundle, error)
	Clear(ctx context.Context) error
}

// ErrNotFound is returned by Get when no credential bundle is stored.
type notFoundError struct{}

func (notFoundError) Error() string { return "no credential bundle stored" }

var ErrNotFound error = notFoundError{}
