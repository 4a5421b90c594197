// internal/donations/handler.go
package donations

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the donation endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/donations", h.handleSubmit)
	r.Get("/donations", h.handleList)
	r.Get("/donations/{id}", h.handleGet)
	r.Post("/donations/{id}/accept", h.handleAccept)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DonorID     string `json:"donor_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Condition   string `json:"condition"`
		Category    string `json:"category"`
		ImageURL    string `json:"image_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	donation, err := h.service.Submit(r.Context(), req.DonorID, req.Title, req.Description, req.Condition, req.Category, req.ImageURL)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingTitle),
			errors.Is(err, ErrInvalidCondition),
			errors.Is(err, ErrInvalidCategory):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusBadGateway, "failed to submit donation")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(donation)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	donorID := r.URL.Query().Get("donor_id")
	if donorID == "" {
		writeError(w, http.StatusBadRequest, "missing donor_id")
		return
	}

	donations, err := h.service.ListByDonor(r.Context(), donorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if donations == nil {
		donations = []Donation{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"donations": donations})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid donation ID")
		return
	}

	donation, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(donation)
}

func (h *Handler) handleAccept(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid donation ID")
		return
	}

	if err := h.service.Accept(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
