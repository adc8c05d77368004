package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/subivo/gatehouse"
	"github.com/subivo/gatehouse/internal/idp"
	"github.com/subivo/gatehouse/internal/profile"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

func (s *Server) handleLogin(res http.ResponseWriter, req *http.Request) {
	var payload LoginRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		http.Error(res, "request body must be valid JSON", http.StatusBadRequest)
		return
	}
	if payload.Email == "" || payload.Password == "" {
		http.Error(res, "'email' and 'password' fields are required", http.StatusBadRequest)
		return
	}

	sessionID := resolveSessionID(req)
	m, _ := s.getOrCreateManager(sessionID)
	if err := m.Login(req.Context(), payload.Email, payload.Password); err != nil {
		status := http.StatusBadGateway
		message := "Ocurrió un error al intentar iniciar sesión"
		if errors.Is(err, idp.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
			message = "Correo o contraseña incorrectos"
		}
		respondWithState(res, status, gatehouse.AuthState{LoggedIn: false, Error: message})
		return
	}

	http.SetCookie(res, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	respondWithState(res, http.StatusOK, m.State())
}

func (s *Server) handleLogout(res http.ResponseWriter, req *http.Request) {
	if cookie, err := req.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		m, _ := s.getOrCreateManager(cookie.Value)
		m.Logout(req.Context())
		s.dropManager(cookie.Value)
	}

	http.SetCookie(res, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	respondWithState(res, http.StatusOK, gatehouse.AuthState{LoggedIn: false})
}

func (s *Server) handleRefresh(res http.ResponseWriter, req *http.Request) {
	cookie, err := req.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		respondWithState(res, http.StatusUnauthorized, gatehouse.AuthState{LoggedIn: false})
		return
	}

	m, existed := s.getOrCreateManager(cookie.Value)
	if !existed {
		m.Bootstrap(req.Context())
	}
	m.RefreshIfNeeded(req.Context())
	respondWithState(res, http.StatusOK, m.State())
}

func (s *Server) handleGetState(res http.ResponseWriter, req *http.Request) {
	cookie, err := req.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		respondWithState(res, http.StatusOK, gatehouse.AuthState{LoggedIn: false})
		return
	}

	m, existed := s.getOrCreateManager(cookie.Value)
	if !existed {
		m.Bootstrap(req.Context())
	}
	respondWithState(res, http.StatusOK, m.State())
}

func (s *Server) handleRegister(res http.ResponseWriter, req *http.Request) {
	var payload RegisterRequest
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		http.Error(res, "request body must be valid JSON", http.StatusBadRequest)
		return
	}
	if payload.Email == "" || payload.Password == "" {
		http.Error(res, "'email' and 'password' fields are required", http.StatusBadRequest)
		return
	}
	if payload.Username == "" {
		payload.Username = payload.Email
	}

	err := s.profile.Register(req.Context(), profile.RegistrationParams{
		Username:  payload.Username,
		Email:     payload.Email,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Password:  payload.Password,
	})
	if err != nil {
		http.Error(res, "registration failed", http.StatusBadGateway)
		return
	}
	res.WriteHeader(http.StatusNoContent)
}

// resolveSessionID reuses the caller's session id cookie if present and
// otherwise allocates a fresh one.
func resolveSessionID(req *http.Request) string {
	if cookie, err := req.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return uuid.NewString()
}

func respondWithState(res http.ResponseWriter, status int, state gatehouse.AuthState) {
	res.Header().Set("content-type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(state); err != nil {
		http.Error(res, err.Error(), http.StatusInternalServerError)
	}
}
