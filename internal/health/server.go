package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// PingFunc verifies that a dependency is reachable.
type PingFunc func(ctx context.Context) error

type Status struct {
	IsReady bool   `json:"isReady"`
	Message string `json:"message"`
}

type Server struct {
	pingIdentityProvider PingFunc
	pingBackend          PingFunc
}

func NewServer(pingIdentityProvider PingFunc, pingBackend PingFunc) *Server {
	return &Server{
		pingIdentityProvider: pingIdentityProvider,
		pingBackend:          pingBackend,
	}
}

func (s *Server) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	status := s.resolveStatus(req.Context())
	if err := json.NewEncoder(res).Encode(status); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) resolveStatus(ctx context.Context) Status {
	if err := s.pingIdentityProvider(ctx); err != nil {
		return Status{
			IsReady: false,
			Message: fmt.Sprintf("The identity provider is unreachable; logins will fail. (Error: %s)", err),
		}
	}
	if err := s.pingBackend(ctx); err != nil {
		return Status{
			IsReady: false,
			Message: fmt.Sprintf("The identity provider is reachable, but the backend API is not; profile lookups will fail. (Error: %s)", err),
		}
	}
	return Status{
		IsReady: true,
		Message: "The identity provider and backend API are both reachable. The session gateway is fully operational!",
	}
}
