package adapthttp

import (
	"net/http"

	"spillthepill/internal/domain"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string               `json:"message"`
		History []domain.ChatMessage `json:"history"`
	}
	if err := parseJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	reply, err := s.chat.Reply(r.Context(), req.Message, req.History)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": reply})
}
