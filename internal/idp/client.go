package idp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/subivo/gatehouse/internal/store"
)

// ErrInvalidCredentials is returned when the identity provider's token
// endpoint rejects a password or refresh grant with a non-2xx response.
var ErrInvalidCredentials = errors.New("identity provider rejected credentials")

// Client exchanges credentials for token bundles against the identity
// provider's OAuth2 token endpoint.
type Client interface {
	PasswordLogin(ctx context.Context, email string, password string) (store.Bundle, error)
	Refresh(ctx context.Context, refreshToken string) (store.Bundle, error)
}

func NewClient(tokenUrl string, clientId string, clientSecret string) Client {
	return &keycloakClient{
		conf: &oauth2.Config{
			ClientID:     clientId,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: tokenUrl,
				// Keycloak expects client_id/client_secret in the form body
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

type keycloakClient struct {
	conf *oauth2.Config
}

func (c *keycloakClient) PasswordLogin(ctx context.Context, email string, password string) (store.Bundle, error) {
	tok, err := c.conf.PasswordCredentialsToken(withHTTPClient(ctx), email, password)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return store.Bundle{}, ErrInvalidCredentials
		}
		return store.Bundle{}, fmt.Errorf("failed to reach identity provider: %w", err)
	}
	return toBundle(tok, email), nil
}

func (c *keycloakClient) Refresh(ctx context.Context, refreshToken string) (store.Bundle, error) {
	src := c.conf.TokenSource(withHTTPClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return store.Bundle{}, ErrInvalidCredentials
		}
		return store.Bundle{}, fmt.Errorf("failed to reach identity provider: %w", err)
	}
	// The refreshed bundle carries no email; callers keep the one the session
	// was established with
	return toBundle(tok, ""), nil
}

func withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: 10 * time.Second})
}

func toBundle(tok *oauth2.Token, email string) store.Bundle {
	return store.Bundle{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry.UnixMilli(),
		Email:        email,
	}
}

var _ Client = (*keycloakClient)(nil)
