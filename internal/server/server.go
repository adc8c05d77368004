package server

import (
	"sync"

	"github.com/gorilla/mux"

	"github.com/subivo/gatehouse/internal/idp"
	"github.com/subivo/gatehouse/internal/profile"
	"github.com/subivo/gatehouse/internal/session"
	"github.com/subivo/gatehouse/internal/store"
)

const sessionCookieName = "gatehouse_session"

// StoreFactory builds the credential store backing a single session id. The
// factory is called at most once per session id per process; the resulting
// manager is cached in the registry.
type StoreFactory func(sessionID string) store.Store

type Server struct {
	idp      idp.Client
	profile  profile.Client
	newStore StoreFactory
	audit    session.Auditor

	managersMutex sync.Mutex
	managers      map[string]*session.Manager
}

func NewServer(idpClient idp.Client, profileClient profile.Client, newStore StoreFactory, audit session.Auditor) *Server {
	return &Server{
		idp:      idpClient,
		profile:  profileClient,
		newStore: newStore,
		audit:    audit,
		managers: make(map[string]*session.Manager),
	}
}

func (s *Server) RegisterRoutes(r *mux.Router) {
	// Session endpoints: the browser holds an opaque session id cookie; all
	// identity-provider credentials stay server-side
	r.Path("/login").Methods("POST").HandlerFunc(s.handleLogin)
	r.Path("/logout").Methods("POST").HandlerFunc(s.handleLogout)
	r.Path("/refresh").Methods("POST").HandlerFunc(s.handleRefresh)

	// State endpoint: protected pages poll this to decide whether to redirect
	// to the login form
	r.Path("/state").Methods("GET").HandlerFunc(s.handleGetState)

	// Registration is a stateless passthrough to the marketplace backend
	r.Path("/register").Methods("POST").HandlerFunc(s.handleRegister)
}

// getOrCreateManager returns the Manager for a session id, constructing one
// if none exists yet. The second return value reports whether the manager
// already existed: a newly constructed manager for a pre-existing cookie
// (e.g. after a process restart) still needs a Bootstrap to restore its
// state from the persisted bundle.
func (s *Server) getOrCreateManager(sessionID string) (*session.Manager, bool) {
	s.managersMutex.Lock()
	defer s.managersMutex.Unlock()

	m, ok := s.managers[sessionID]
	if !ok {
		m = session.NewManager(s.idp, s.profile, s.newStore(sessionID), s.audit)
		s.managers[sessionID] = m
	}
	return m, ok
}

func (s *Server) dropManager(sessionID string) {
	s.managersMutex.Lock()
	defer s.managersMutex.Unlock()

	delete(s.managers, sessionID)
}
