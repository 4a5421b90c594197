// internal/suggest/handler.go

package suggest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the suggestion client over HTTP.
type Handler struct {
	client *Client
	logger *slog.Logger
}

// NewHandler creates a suggestion HTTP handler.
func NewHandler(client *Client, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{client: client, logger: logger}
}

// Routes mounts the suggestion endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/suggestions", h.suggestions)
	r.Post("/impact", h.impact)
}

func (h *Handler) suggestions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeError(w, http.StatusUnprocessableEntity, "description is required")
		return
	}

	out, err := h.client.DonationSuggestions(r.Context(), req.Description)
	if err != nil {
		h.logger.Error("donation suggestions failed", "error", err)
		writeError(w, http.StatusBadGateway, "suggestion service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) impact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Donations []DonationSummary `json:"donations"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Donations) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "at least one donation is required")
		return
	}

	out, err := h.client.AssessImpact(r.Context(), req.Donations)
	if err != nil {
		h.logger.Error("impact assessment failed", "error", err)
		writeError(w, http.StatusBadGateway, "suggestion service unavailable")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
