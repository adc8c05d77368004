package idp

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	mockClientId     = "test-client"
	mockClientSecret = "test-client-secret"

	mockEmail    = "a@b.com"
	mockPassword = "hunter2"

	mockAccessToken             = "mock-access-token-01"
	mockAccessTokenAfterRefresh = "mock-access-token-02"
	mockRefreshToken            = "mock-refresh-token"
)

// newTokenEndpoint serves a minimal stand-in for the identity provider's
// OAuth2 token endpoint, accepting password and refresh_token grants
func newTokenEndpoint(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		require.NoError(t, req.ParseForm())
		if req.PostForm.Get("client_id") != mockClientId || req.PostForm.Get("client_secret") != mockClientSecret {
			writeTokenError(res, http.StatusUnauthorized, "invalid_client")
			return
		}
		switch req.PostForm.Get("grant_type") {
		case "password":
			if req.PostForm.Get("username") != mockEmail || req.PostForm.Get("password") != mockPassword {
				writeTokenError(res, http.StatusUnauthorized, "invalid_grant")
				return
			}
			writeToken(res, mockAccessToken)
		case "refresh_token":
			if req.PostForm.Get("refresh_token") != mockRefreshToken {
				writeTokenError(res, http.StatusBadRequest, "invalid_grant")
				return
			}
			writeToken(res, mockAccessTokenAfterRefresh)
		default:
			writeTokenError(res, http.StatusBadRequest, "unsupported_grant_type")
		}
	}))
}

func writeToken(res http.ResponseWriter, accessToken string) {
	res.Header().Set("content-type", "application/json")
	fmt.Fprintf(res, `{"access_token":"%s","token_type":"bearer","refresh_token":"%s","expires_in":300}`,
		accessToken, mockRefreshToken)
}

func writeTokenError(res http.ResponseWriter, status int, code string) {
	res.Header().Set("content-type", "application/json")
	res.WriteHeader(status)
	fmt.Fprintf(res, `{"error":"%s"}`, code)
}

func Test_Client_PasswordLogin(t *testing.T) {
	srv := newTokenEndpoint(t)
	defer srv.Close()
	c := NewClient(srv.URL, mockClientId, mockClientSecret)

	bundle, err := c.PasswordLogin(context.Background(), mockEmail, mockPassword)
	require.NoError(t, err)
	assert.Equal(t, mockAccessToken, bundle.AccessToken)
	assert.Equal(t, mockRefreshToken, bundle.RefreshToken)
	assert.Equal(t, mockEmail, bundle.Email)

	wantExpiry := time.Now().Add(300 * time.Second)
	assert.InDelta(t, wantExpiry.UnixMilli(), bundle.ExpiresAt, float64(10*time.Second.Milliseconds()))
}

func Test_Client_PasswordLogin_withBadCredentials(t *testing.T) {
	srv := newTokenEndpoint(t)
	defer srv.Close()
	c := NewClient(srv.URL, mockClientId, mockClientSecret)

	_, err := c.PasswordLogin(context.Background(), mockEmail, "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func Test_Client_PasswordLogin_withUnreachableProvider(t *testing.T) {
	srv := newTokenEndpoint(t)
	srv.Close()
	c := NewClient(srv.URL, mockClientId, mockClientSecret)

	_, err := c.PasswordLogin(context.Background(), mockEmail, mockPassword)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func Test_Client_Refresh(t *testing.T) {
	srv := newTokenEndpoint(t)
	defer srv.Close()
	c := NewClient(srv.URL, mockClientId, mockClientSecret)

	bundle, err := c.Refresh(context.Background(), mockRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, mockAccessTokenAfterRefresh, bundle.AccessToken)
	assert.Equal(t, mockRefreshToken, bundle.RefreshToken)
	assert.Empty(t, bundle.Email)
}

func Test_Client_Refresh_withRevokedToken(t *testing.T) {
	srv := newTokenEndpoint(t)
	defer srv.Close()
	c := NewClient(srv.URL, mockClientId, mockClientSecret)

	_, err := c.Refresh(context.Background(), "revoked-refresh-token")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
