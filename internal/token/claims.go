package token

import (
	"github.com/golang-jwt/jwt/v5"
)

type realmAccessClaims struct {
	jwt.RegisteredClaims
	RealmAccess struct {
		Roles []string `json:"roles"`
	} `json:"realm_access"`
}

// DecodeRealmRoles extracts the realm roles embedded in an identity
// provider access token, without verifying its signature. A malformed or
// missing token yields an empty role set rather than an error: the session
// then simply resolves to a guest.
func DecodeRealmRoles(accessToken string) []string {
	var claims realmAccessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, &claims); err != nil {
		return nil
	}
	return claims.RealmAccess.Roles
}
