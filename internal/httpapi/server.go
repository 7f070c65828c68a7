// Package httpapi exposes the report-generation endpoint.
package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mattslade/ai-scorecard/internal/config"
	"github.com/mattslade/ai-scorecard/internal/report"
)

// maxBodyBytes caps the submission size at 1 MiB.
const maxBodyBytes = 1 << 20

// Runner executes one report pipeline run.
type Runner interface {
	Run(ctx context.Context, raw map[string]any) (report.RunResult, error)
}

type Server struct {
	runner Runner
	mode   config.ResponseMode
}

func NewServer(runner Runner, mode config.ResponseMode) http.Handler {
	s := &Server{runner: runner, mode: mode}
	mux := http.NewServeMux()
	mux.HandleFunc("/generateReport", s.handleGenerateReport)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleGenerateReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "submission exceeds 1MB limit")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	res, err := s.runner.Run(r.Context(), raw)
	if err != nil {
		log.Error().
			Str("stage", report.StageNameFromError(err)).
			Str("kind", string(report.KindFromError(err))).
			Err(err).
			Msg("report generation failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch s.mode {
	case config.ResponseBase64:
		writeJSON(w, http.StatusOK, map[string]any{
			"pdfBase64": base64.StdEncoding.EncodeToString(res.PDF),
		})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
