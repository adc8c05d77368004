package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Server(t *testing.T) {
	tests := []struct {
		name              string
		idpErr            error
		backendErr        error
		wantStatus        int
		wantIsReady       bool
		wantMessageSubstr string
	}{
		{
			"returns 200 with isReady if both dependencies are reachable",
			nil,
			nil,
			http.StatusOK,
			true,
			"fully operational",
		},
		{
			"returns 200 with !isReady if the identity provider is unreachable",
			fmt.Errorf("mock idp error"),
			nil,
			http.StatusOK,
			false,
			"logins will fail. (Error: mock idp error)",
		},
		{
			"returns 200 with !isReady if the backend API is unreachable",
			nil,
			fmt.Errorf("mock backend error"),
			http.StatusOK,
			false,
			"profile lookups will fail. (Error: mock backend error)",
		},
	}
	for _, tt := range tests {
		s := &Server{
			pingIdentityProvider: func(ctx context.Context) error {
				return tt.idpErr
			},
			pingBackend: func(ctx context.Context) error {
				return tt.backendErr
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		res := httptest.NewRecorder()
		s.ServeHTTP(res, req)

		r := res.Result()
		assert.Equal(t, tt.wantStatus, r.StatusCode)

		var status Status
		err := json.NewDecoder(r.Body).Decode(&status)
		assert.NoError(t, err)
		assert.Equal(t, tt.wantIsReady, status.IsReady)
		assert.Contains(t, status.Message, tt.wantMessageSubstr)
	}
}
