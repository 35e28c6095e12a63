// Package server exposes the journal over a local HTTP API: vault lifecycle,
// history access and export, and analysis. It binds to localhost by default
// and never writes entry text to its logs.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quillvault/quill/internal/analysis"
	"github.com/quillvault/quill/internal/analytics"
	"github.com/quillvault/quill/internal/journal"
	"github.com/quillvault/quill/internal/vault"
)

// Dependencies wires the router's collaborators. Tracker may be nil.
type Dependencies struct {
	Vault    *vault.Vault
	Journal  *journal.Store
	Pipeline *analysis.Pipeline
	Tracker  *analytics.Tracker
	Logger   *slog.Logger
}

// NewRouter builds the chi router with logging, recovery, and metrics
// middleware.
func NewRouter(deps *Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(recovery(logger))
	r.Use(requestLogging(logger))
	r.Use(requestMetrics())

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/vault/status", handleVaultStatus(deps))
		r.Post("/vault/unlock", handleVaultUnlock(deps))
		r.Post("/vault/lock", handleVaultLock(deps))

		r.Get("/history", handleHistoryList(deps))
		r.Get("/history/stats", handleHistoryStats(deps))
		r.Get("/history/export", handleHistoryExport(deps))

		r.Post("/analyze", handleAnalyze(deps))
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleVaultStatus(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		state := deps.Vault.State()
		writeJSON(w, http.StatusOK, map[string]any{
			"enabled": state != vault.StateDisabled,
			"state":   state.String(),
		})
	}
}

func handleVaultUnlock(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ok, err := deps.Vault.Unlock(req.Password)
		if errors.Is(err, vault.ErrNotEnabled) {
			writeError(w, http.StatusConflict, "vault is not enabled")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "unlock failed")
			return
		}

		// A wrong password is a normal outcome, not an error status.
		writeJSON(w, http.StatusOK, map[string]bool{"unlocked": ok})
	}
}

func handleVaultLock(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		deps.Vault.Lock()
		writeJSON(w, http.StatusOK, map[string]string{"state": deps.Vault.State().String()})
	}
}

func handleHistoryList(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Vault.State() == vault.StateLocked {
			writeError(w, http.StatusLocked, "vault is locked")
			return
		}

		history, err := deps.Journal.LoadHistory()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load history")
			return
		}

		total := len(history)
		filtered := journal.FilterHistory(history, journal.Filter{
			Query: r.URL.Query().Get("q"),
			Mood:  r.URL.Query().Get("mood"),
		})
		if filtered == nil {
			filtered = []journal.StoredEntry{}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"history": filtered,
			"total":   total,
		})
	}
}

func handleHistoryStats(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if deps.Vault.State() == vault.StateLocked {
			writeError(w, http.StatusLocked, "vault is locked")
			return
		}

		history, err := deps.Journal.LoadHistory()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load history")
			return
		}
		writeJSON(w, http.StatusOK, journal.ComputeStats(history, time.Now()))
	}
}

func handleHistoryExport(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Vault.State() == vault.StateLocked {
			writeError(w, http.StatusLocked, "vault is locked")
			return
		}

		history, err := deps.Journal.LoadHistory()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load history")
			return
		}

		format := r.URL.Query().Get("format")
		switch format {
		case "markdown", "md":
			w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
			w.Write([]byte(journal.ExportMarkdown(history, time.Now())))
		case "", "json":
			data, err := journal.ExportJSON(history)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "export failed")
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write(data)
		default:
			writeError(w, http.StatusBadRequest, "unsupported format")
			return
		}

		deps.Tracker.Track(r.Context(), analytics.EventHistoryExported, map[string]any{
			"format":      format,
			"entry_count": len(history),
		})
	}
}

func handleAnalyze(deps *Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		deps.Tracker.Track(r.Context(), analytics.EventInsightRequested, map[string]any{
			"word_count":      journal.CountWords(req.Text),
			"character_count": len(req.Text),
		})

		bundle, err := deps.Pipeline.Analyze(r.Context(), req.Text, nil)
		switch {
		case errors.Is(err, analysis.ErrEmptyEntry):
			writeError(w, http.StatusUnprocessableEntity, "entry is empty")
			return
		case errors.Is(err, analysis.ErrEntryTooShort):
			writeError(w, http.StatusUnprocessableEntity, "entry is too short to analyze")
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "analysis failed")
			return
		}

		deps.Tracker.Track(r.Context(), analytics.EventInsightCompleted, map[string]any{
			"emotion_detected": strings.ToLower(bundle.Emotion.RawLabel),
			"confidence_score": bundle.Emotion.Confidence,
		})

		writeJSON(w, http.StatusOK, bundle)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
