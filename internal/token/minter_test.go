package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subivo/gatehouse"
)

func Test_Minter_Mint(t *testing.T) {
	m := NewMinter("test-signing-key")

	signed, err := m.Mint("user-42", gatehouse.RoleAuctioneer, []string{"crear y administrar subastas", "validar pujas"})
	require.NoError(t, err)

	parsed, err := jwt.Parse(signed, func(tok *jwt.Token) (interface{}, error) {
		return []byte("test-signing-key"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "user-42", claims["sub"])
	assert.Equal(t, "auctioneer", claims["role"])
	assert.Equal(t, []interface{}{"crear y administrar subastas", "validar pujas"}, claims["permisos"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, 5*time.Second)
}

func Test_Minter_Mint_requiresSubjectId(t *testing.T) {
	m := NewMinter("test-signing-key")
	_, err := m.Mint("", gatehouse.RoleBidder, nil)
	assert.Error(t, err)
}

func Test_Minter_Mint_requiresSigningKey(t *testing.T) {
	m := NewMinter("")
	_, err := m.Mint("user-42", gatehouse.RoleBidder, nil)
	assert.ErrorIs(t, err, ErrNoSigningKey)
}
