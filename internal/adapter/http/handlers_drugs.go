package adapthttp

import (
	"net/http"

	"spillthepill/internal/app"
	"spillthepill/internal/domain"
)

func (s *Server) handleAutocomplete(w http.ResponseWriter, r *http.Request) {
	names, err := s.drugs.Suggest(r.Context(), r.URL.Query().Get("term"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": names})
}

func (s *Server) handleRxCUI(w http.ResponseWriter, r *http.Request) {
	id, err := s.drugs.RxCUI(r.Context(), r.URL.Query().Get("name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"rxcui": id})
}

func (s *Server) handleDrugInfo(w http.ResponseWriter, r *http.Request) {
	rxcui, err := pathParam(r, "rxcui")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	props, err := s.drugs.Properties(r.Context(), rxcui)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, props)
}

func (s *Server) handleDailyMed(w http.ResponseWriter, r *http.Request) {
	rxcui, err := pathParam(r, "rxcui")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	page, err := s.drugs.Labels(r.Context(), rxcui)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleRawData(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "name")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	info, err := s.drugs.RawData(r.Context(), name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleSimplify(w http.ResponseWriter, r *http.Request) {
	name, err := pathParam(r, "name")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := simplifyOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.drugs.Simplify(r.Context(), name, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"simplified": out.Text,
		"language":   out.Language.Code,
		"mode":       out.Mode,
		"fallback":   out.Fallback,
	})
}

func (s *Server) handleSimplifyInfo(w http.ResponseWriter, r *http.Request) {
	opts, err := simplifyOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var info domain.DrugInfo
	if err := parseJSON(w, r, &info); err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.drugs.SimplifyInfo(r.Context(), info, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"simplified": out.Text})
}

// simplifyOptions reads the "model" and "language" query parameters.
func simplifyOptions(r *http.Request) (app.SimplifyOptions, error) {
	q := r.URL.Query()
	mode, err := app.ParseMode(q.Get("model"))
	if err != nil {
		return app.SimplifyOptions{}, err
	}
	lang, ok := domain.ParseLanguage(q.Get("language"))
	if !ok {
		return app.SimplifyOptions{}, domain.Invalid("Unsupported language %q", q.Get("language"))
	}
	return app.SimplifyOptions{Mode: mode, Language: lang}, nil
}
