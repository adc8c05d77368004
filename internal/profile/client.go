package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/subivo/gatehouse"
	"github.com/subivo/gatehouse/internal/roles"
	"github.com/subivo/gatehouse/internal/token"
)

// ErrUnauthenticated is returned when a profile fetch is attempted without
// an access token; callers must treat the session as dead.
var ErrUnauthenticated = errors.New("no access token available for profile fetch")

// ErrProfileFetch is returned when the backend rejects or garbles the user
// lookup.
var ErrProfileFetch = errors.New("failed to fetch user profile")

// rawUser is the backend API's wire format for a user record, with its
// localized field names
type rawUser struct {
	Id        string `json:"id"`
	Email     string `json:"correo"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellido"`
	Phone     string `json:"telefono"`
	Address   string `json:"direccion"`
	Verified  bool   `json:"verificado"`
}

// RegistrationParams is the payload accepted by the backend's register-user
// endpoint.
type RegistrationParams struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

// FetchResult couples the mapped user record with the authorization token
// minted for it.
type FetchResult struct {
	User      *gatehouse.User
	UserToken string
}

// Client resolves identities against the marketplace backend API.
type Client interface {
	FetchUser(ctx context.Context, email string, accessToken string) (*FetchResult, error)
	Register(ctx context.Context, params RegistrationParams) error
}

func NewClient(apiUrl string, minter token.Minter) Client {
	return &apiClient{
		apiUrl:     strings.TrimSuffix(apiUrl, "/"),
		minter:     minter,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type apiClient struct {
	apiUrl     string
	minter     token.Minter
	httpClient *http.Client
}

func (c *apiClient) FetchUser(ctx context.Context, email string, accessToken string) (*FetchResult, error) {
	if accessToken == "" {
		return nil, ErrUnauthenticated
	}

	lookupUrl := fmt.Sprintf("%s/api/Usuarios/email/%s", c.apiUrl, url.PathEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupUrl, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach backend API: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: got %d response from user lookup", ErrProfileFetch, res.StatusCode)
	}

	var raw rawUser
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}

	realmRoles := token.DecodeRealmRoles(accessToken)
	role := roles.Map(realmRoles)
	userToken, err := c.minter.Mint(raw.Id, role, roles.PermissionsFor(role))
	if err != nil {
		return nil, err
	}

	// Sessions with no mapped realm role are guests for permission purposes,
	// but the user record types them as bidders; the divergence is deliberate
	// and pending clarification from product
	userType := role
	if userType == gatehouse.RoleGuest {
		userType = gatehouse.RoleBidder
	}

	return &FetchResult{
		User: &gatehouse.User{
			Id:        raw.Id,
			Email:     raw.Email,
			FirstName: raw.FirstName,
			LastName:  raw.LastName,
			Phone:     raw.Phone,
			Address:   raw.Address,
			Type:      userType,
			Verified:  raw.Verified,
		},
		UserToken: userToken,
	}, nil
}

func (c *apiClient) Register(ctx context.Context, params RegistrationParams) error {
	body, err := json.Marshal(params)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiUrl+"/register-user", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("content-type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach backend API: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("got %d response from register-user", res.StatusCode)
	}
	return nil
}

var _ Client = (*apiClient)(nil)
