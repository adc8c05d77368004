package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/subivo/gatehouse"
)

// ErrNoSigningKey is returned when the minter is constructed without a
// signing key; an unsigned authorization token must never be emitted.
var ErrNoSigningKey = errors.New("authorization token signing key is not configured")

// tokenValidity is how long a minted authorization token remains usable; a
// fresh one is minted on every profile fetch.
const tokenValidity = time.Hour

// Minter issues the authorization tokens that downstream API calls present
// in place of the identity provider's access token: a compact JWT carrying
// the subject id, the application role, and the role's permission set.
type Minter interface {
	Mint(subjectId string, role gatehouse.Role, permissions []string) (string, error)
}

func NewMinter(signingKey string) Minter {
	return &hmacMinter{signingKey: []byte(signingKey)}
}

type hmacMinter struct {
	signingKey []byte
}

func (m *hmacMinter) Mint(subjectId string, role gatehouse.Role, permissions []string) (string, error) {
	if len(m.signingKey) == 0 {
		return "", ErrNoSigningKey
	}
	if subjectId == "" {
		return "", fmt.Errorf("subject id is required to mint an authorization token")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      subjectId,
		"role":     string(role),
		"permisos": permissions,
		"iat":      now.Unix(),
		"exp":      now.Add(tokenValidity).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.signingKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign authorization token: %w", err)
	}
	return signed, nil
}

var _ Minter = (*hmacMinter)(nil)
