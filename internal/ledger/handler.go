// internal/ledger/handler.go
package ledger

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the token endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/balance", h.handleBalance)
	r.Post("/earn", h.handleEarn)
	r.Post("/refresh", h.handleRefresh)
	r.Get("/rewards", h.handleRewards)
	r.Get("/exchanges", h.handleListExchanges)
	r.Post("/exchanges", h.handleExchange)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"balance":      h.service.Balance(),
		"total_earned": h.service.TotalEarned(),
		"loading":      h.service.Loading(),
	})
}

func (h *Handler) handleEarn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount int `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.Earn(r.Context(), req.Amount); err != nil {
		if errors.Is(err, ErrAmountNotPositive) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusBadGateway, "failed to earn tokens")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"balance":      h.service.Balance(),
		"total_earned": h.service.TotalEarned(),
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.RefreshBalance(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "failed to refresh balance")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balance":      h.service.Balance(),
		"total_earned": h.service.TotalEarned(),
	})
}

func (h *Handler) handleRewards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"rewards": h.service.Rewards(),
	})
}

func (h *Handler) handleListExchanges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"exchanges": h.service.Exchanges(),
	})
}

func (h *Handler) handleExchange(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RewardID string `json:"reward_id"`
		Amount   int    `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RewardID == "" {
		writeError(w, http.StatusBadRequest, "reward_id is required")
		return
	}

	// Like the original client, charge the catalog cost unless the caller
	// supplies an explicit amount. The service trusts whatever it is given.
	amount := req.Amount
	if amount == 0 {
		for _, reward := range h.service.Rewards() {
			if reward.ID == req.RewardID {
				amount = reward.TokenCost
				break
			}
		}
	}

	record, err := h.service.Exchange(r.Context(), req.RewardID, amount)
	if err != nil {
		switch {
		case errors.Is(err, ErrInsufficientBalance):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, ErrRewardNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrOutOfStock):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusBadGateway, "exchange failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"exchange": record,
		"balance":  h.service.Balance(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
