package token

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeAccessToken(t *testing.T, realmRoles []string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": "user-42",
	}
	if realmRoles != nil {
		claims["realm_access"] = map[string]interface{}{
			"roles": realmRoles,
		}
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-provider-key"))
	require.NoError(t, err)
	return signed
}

func Test_DecodeRealmRoles(t *testing.T) {
	roles := DecodeRealmRoles(makeAccessToken(t, []string{"offline_access", "Postor"}))
	assert.Equal(t, []string{"offline_access", "Postor"}, roles)
}

func Test_DecodeRealmRoles_toleratesMissingClaim(t *testing.T) {
	assert.Empty(t, DecodeRealmRoles(makeAccessToken(t, nil)))
}

func Test_DecodeRealmRoles_toleratesMalformedToken(t *testing.T) {
	assert.Empty(t, DecodeRealmRoles("not-a-jwt"))
	assert.Empty(t, DecodeRealmRoles(""))
}
