package adapthttp

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"spillthepill/internal/app"
	"spillthepill/internal/domain"
)

const stateCookie = "oauth_state"

// SSOConfig holds the OIDC provider used by the SSO routes.
type SSOConfig struct {
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// NewSSOConfig discovers the issuer's endpoints.
func NewSSOConfig(ctx context.Context, issuer, clientID, clientSecret, redirectURL string) (*SSOConfig, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery: %w", err)
	}
	return &SSOConfig{
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func (s *Server) writeSession(w http.ResponseWriter, status int, message string, sess *app.Session) {
	writeJSON(w, status, map[string]any{
		"message": message,
		"user":    newUserResponse(sess.User),
		"token":   sess.Token,
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := parseJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.auth.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSession(w, http.StatusCreated, "User created successfully", sess)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	sess, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSession(w, http.StatusOK, "Login successful", sess)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.auth.Profile(r.Context(), identityFromContext(r.Context()).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": newUserResponse(user)})
}

func (s *Server) handleSaveMedicine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MedicineName string `json:"medicineName"`
	}
	if err := parseJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.auth.SaveMedicine(r.Context(), identityFromContext(r.Context()).UserID, req.MedicineName); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Medicine saved successfully"})
}

func (s *Server) handleSavedMedicines(w http.ResponseWriter, r *http.Request) {
	saved, err := s.auth.SavedMedicines(r.Context(), identityFromContext(r.Context()).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"savedMedicines": saved})
}

func (s *Server) handleRemoveSavedMedicine(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "medicineName")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.auth.RemoveSavedMedicine(r.Context(), identityFromContext(r.Context()).UserID, name); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Medicine removed successfully"})
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sso_enabled": s.opts.SSO != nil,
	})
}

func (s *Server) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	if s.opts.SSO == nil {
		s.writeError(w, r, domain.NotFound("SSO is not enabled"))
		return
	}
	state := generateState()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300,
	})
	http.Redirect(w, r, s.opts.SSO.OAuth2Config.AuthCodeURL(state), http.StatusFound)
}

func (s *Server) handleSSOCallback(w http.ResponseWriter, r *http.Request) {
	sso := s.opts.SSO
	if sso == nil {
		s.writeError(w, r, domain.NotFound("SSO is not enabled"))
		return
	}

	state, err := r.Cookie(stateCookie)
	if err != nil || state.Value == "" || r.URL.Query().Get("state") != state.Value {
		s.writeError(w, r, domain.Invalid("Invalid SSO state"))
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Path: "/", MaxAge: -1})

	token, err := sso.OAuth2Config.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		s.writeError(w, r, domain.Upstream("Failed to exchange SSO code", err))
		return
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		s.writeError(w, r, domain.Upstream("Identity provider returned no id_token", nil))
		return
	}
	idToken, err := sso.Provider.Verifier(&oidc.Config{ClientID: sso.OAuth2Config.ClientID}).Verify(r.Context(), rawIDToken)
	if err != nil {
		s.writeError(w, r, domain.Upstream("Failed to verify id_token", err))
		return
	}

	var claims struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&claims); err != nil {
		s.writeError(w, r, domain.Upstream("Failed to parse id_token claims", err))
		return
	}

	sess, err := s.auth.LoginWithSSO(r.Context(), claims.Email, claims.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSession(w, http.StatusOK, "Login successful", sess)
}

func generateState() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
