// internal/identity/handler.go
package identity

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var authOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "identity_auth_operations_total",
	Help: "Auth operations processed, labeled by operation and outcome",
}, []string{"operation", "outcome"})

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Routes mounts the auth endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/signin", h.handleSignIn)
	r.Post("/signup", h.handleSignUp)
	r.Post("/signout", h.handleSignOut)
	r.Post("/reset-password", h.handleResetPassword)
	r.Post("/clear-error", h.handleClearError)
	r.Get("/session", h.handleSession)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.service.SignIn(r.Context(), req.Email, req.Password); err != nil {
		state := h.service.State()
		authOperationsTotal.WithLabelValues("signin", string(state.LastError)).Inc()
		if errors.Is(err, ErrMissingCredentials) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, statusForKind(state.LastError), map[string]any{
			"error": state.LastError,
		})
		return
	}

	authOperationsTotal.WithLabelValues("signin", "ok").Inc()
	writeJSON(w, http.StatusOK, h.service.State())
}

func (h *Handler) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result := h.service.SignUp(r.Context(), req.Email, req.Password)
	state := h.service.State()
	if !result.NeedsConfirmation && state.LastError != KindNone {
		authOperationsTotal.WithLabelValues("signup", string(state.LastError)).Inc()
		writeJSON(w, statusForKind(state.LastError), map[string]any{
			"needs_confirmation": false,
			"error":              state.LastError,
		})
		return
	}

	authOperationsTotal.WithLabelValues("signup", "ok").Inc()
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.service.SignOut(r.Context()); err != nil {
		authOperationsTotal.WithLabelValues("signout", "error").Inc()
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	authOperationsTotal.WithLabelValues("signout", "ok").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.service.ResetPassword(r.Context(), req.Email); err != nil {
		state := h.service.State()
		authOperationsTotal.WithLabelValues("reset_password", string(state.LastError)).Inc()
		writeJSON(w, statusForKind(state.LastError), map[string]any{
			"error": state.LastError,
		})
		return
	}
	authOperationsTotal.WithLabelValues("reset_password", "ok").Inc()
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handler) handleClearError(w http.ResponseWriter, r *http.Request) {
	h.service.ClearError()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.State())
}

// statusForKind maps a classified error kind to an HTTP status.
func statusForKind(kind ErrorKind) int {
	switch kind {
	case KindInvalidCredentials, KindEmailNotConfirmed:
		return http.StatusUnauthorized
	case KindWeakPassword:
		return http.StatusUnprocessableEntity
	case KindUserExists:
		return http.StatusConflict
	case KindNetworkError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
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
