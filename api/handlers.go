package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seenimoa/fininsight/internal/llm"
	"github.com/seenimoa/fininsight/internal/profile"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":  "ok",
			"version": s.version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    profile.Countries(),
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	country := countryParam(r)
	if country == "" {
		writeError(w, http.StatusBadRequest, "country is required")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.profiles.BuildProfile(r.Context(), country),
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	country := countryParam(r)
	if country == "" {
		writeError(w, http.StatusBadRequest, "country is required")
		return
	}

	narrator, err := s.narrators.Get(r.URL.Query().Get("provider"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p := s.profiles.BuildProfile(r.Context(), country)
	summary, err := llm.Summarize(r.Context(), narrator, p)
	if err != nil {
		s.logger.Warn().Err(err).Str("country", country).Str("provider", narrator.Name()).Msg("summary failed")
		status := http.StatusBadGateway
		if ctxErr := r.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			status = http.StatusGatewayTimeout
		}
		writeError(w, status, "summary generation failed: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    SummaryResponse{Profile: p, Summary: summary},
	})
}

// countryParam returns the decoded, trimmed {country} path segment.
func countryParam(r *http.Request) string {
	raw := chi.URLParam(r, "country")
	if v, err := url.PathUnescape(raw); err == nil {
		raw = v
	}
	return strings.TrimSpace(raw)
}
