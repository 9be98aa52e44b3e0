package adapthttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"spillthepill/internal/domain"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// userResponse is the public view of a user. It never carries the hash.
type userResponse struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"createdAt"`
	SavedMedicines []string  `json:"savedMedicines"`
}

func newUserResponse(u *domain.User) userResponse {
	saved := u.SavedMedicines
	if saved == nil {
		saved = []string{}
	}
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt, SavedMedicines: saved}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status and an error body. Internal and upstream
// causes are logged, never sent.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(r.Context().Err(), context.DeadlineExceeded) {
		s.log.WarnContext(r.Context(), "request timed out", "error", err)
		writeJSON(w, http.StatusGatewayTimeout, errorBody{Error: "timeout", Message: "Request timed out"})
		return
	}
	kind := domain.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "request failed", "kind", kind.String(), "error", err)
	}
	writeJSON(w, status, errorBody{Error: kind.String(), Message: domain.MessageOf(err)})
}

func parseJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return domain.Invalid("Request body too large")
		case errors.Is(err, io.EOF):
			return domain.Invalid("Request body is required")
		default:
			return domain.Invalid("Invalid JSON: %v", err)
		}
	}
	return nil
}

func withNoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// pathParam returns the decoded value of a route parameter. chi matches on
// URL.RawPath when the request carries one, so "%2F" and "%2B" reach the
// handler still escaped.
func pathParam(r *http.Request, key string) (string, error) {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v, nil
	}
	decoded, err := url.PathUnescape(v)
	if err != nil {
		return "", domain.Invalid("Malformed %s in path", key)
	}
	return decoded, nil
}
