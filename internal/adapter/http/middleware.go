package adapthttp

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"spillthepill/internal/domain"
	"spillthepill/internal/logging"
)

const traceIDHeader = "X-Request-ID"

type contextKey string

const identityContextKey contextKey = "identity"

// rescueMiddleware turns a handler panic into a logged 500.
func (s *Server) rescueMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				s.log.ErrorContext(r.Context(), "request panic",
					slog.Group("http", "uri", r.RequestURI, "method", r.Method),
					slog.Group("error", "panic", p, "stack", string(debug.Stack())),
				)
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: domain.KindInternal.String(), Message: "Internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// tracingMiddleware stores the caller's X-Request-ID, or a fresh UUIDv7, in
// the request context and echoes it back.
func tracingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(traceIDHeader)
		if id == "" {
			if v7, err := uuid.NewV7(); err == nil {
				id = v7.String()
			}
		}
		w.Header().Set(traceIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// statusRecorder keeps the status that actually reached the client. Only the
// first WriteHeader counts, matching net/http.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (w *statusRecorder) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	w.wroteHeader = true
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// loggingMiddleware logs one line per response: ERROR for 5xx, WARN for 4xx
// and INFO otherwise.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		level := slog.LevelInfo
		switch {
		case rec.status >= http.StatusInternalServerError:
			level = slog.LevelError
		case rec.status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		s.log.Log(r.Context(), level, "response", slog.Group("http",
			"method", r.Method,
			"uri", r.RequestURI,
			"status", rec.status,
			"bytes_sent", rec.bytes,
			"duration", time.Since(start),
		))
	})
}

// authMiddleware requires a valid bearer token and stores the caller's
// identity in the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.auth.Authenticate(r.Context(), bearerToken(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), identityContextKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func identityFromContext(ctx context.Context) *domain.Identity {
	id, _ := ctx.Value(identityContextKey).(*domain.Identity)
	return id
}
