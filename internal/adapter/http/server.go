// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"spillthepill/internal/app"
)

// Options tunes the router. Zero values fall back to sane defaults.
type Options struct {
	// RequestTimeout bounds each request's context.
	RequestTimeout time.Duration
	// CORSOrigins lists the allowed origins. Empty means any origin.
	CORSOrigins []string
	// SSO enables the OIDC login routes when non-nil.
	SSO *SSOConfig
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	auth  *app.AuthService
	drugs *app.DrugService
	chat  *app.ChatService
	opts  Options
	log   *slog.Logger
}

// New creates a Server wired to the given application services.
func New(auth *app.AuthService, drugs *app.DrugService, chat *app.ChatService, opts Options, log *slog.Logger) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}
	return &Server{auth: auth, drugs: drugs, chat: chat, opts: opts, log: log}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		tracingMiddleware,
		s.loggingMiddleware,
		s.rescueMiddleware,
		middleware.RealIP,
		cors.Handler(cors.Options{
			AllowedOrigins: s.opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", traceIDHeader},
			ExposedHeaders: []string{traceIDHeader},
			MaxAge:         300,
		}),
		middleware.Timeout(s.opts.RequestTimeout),
		withNoCache,
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not_found", Message: "Route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Error: "method_not_allowed", Message: "Method not allowed"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		})
		r.Route("/auth", s.authRoutes)
		r.Route("/drugs", s.drugRoutes)
		r.Post("/chat", s.handleChat)
	})
	return r
}

func (s *Server) authRoutes(r chi.Router) {
	r.Post("/signup", s.handleSignup)
	r.Post("/login", s.handleLogin)
	r.Get("/config", s.handleConfig)
	r.Get("/sso/login", s.handleSSOLogin)
	r.Get("/sso/callback", s.handleSSOCallback)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/profile", s.handleProfile)
		r.Post("/save-medicine", s.handleSaveMedicine)
		r.Get("/saved-medicines", s.handleSavedMedicines)
		r.Delete("/saved-medicines/{medicineName}", s.handleRemoveSavedMedicine)
	})
}

func (s *Server) drugRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Drugs API!"})
	})
	r.Get("/autocomplete", s.handleAutocomplete)
	r.Get("/rxcui", s.handleRxCUI)
	r.Get("/info/{rxcui}", s.handleDrugInfo)
	r.Get("/dailymed/{rxcui}", s.handleDailyMed)
	r.Get("/rawdata/{name}", s.handleRawData)
	r.Get("/simplify/{name}", s.handleSimplify)
	r.Post("/simplify", s.handleSimplifyInfo)
}
