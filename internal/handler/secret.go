package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vaultpass/sharepass-go/internal/client"
	"github.com/vaultpass/sharepass-go/internal/expiry"
	"github.com/vaultpass/sharepass-go/internal/model"
	"github.com/vaultpass/sharepass-go/internal/service"
)

// SecretHandler handles HTTP requests for creating and revealing secrets.
type SecretHandler struct {
	service *service.SecretService
}

// NewSecretHandler creates a new SecretHandler.
func NewSecretHandler(svc *service.SecretService) *SecretHandler {
	return &SecretHandler{service: svc}
}

// HandleCreate handles POST /api/v1/secrets requests.
func (h *SecretHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var form model.CreateSecretForm
	if !decodeJSON(w, r, 1<<20, &form) {
		return
	}

	resp, err := h.service.Create(r.Context(), form)
	if err != nil {
		var apiErr *client.APIError
		switch {
		case isFormError(err):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest:
			writeJSON(w, http.StatusBadRequest, errorResponse(apiErr.Message))
		default:
			writeUpstreamError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleReveal handles GET /api/v1/secrets/{pwdId} requests.
func (h *SecretHandler) HandleReveal(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Reveal(r.Context(), chi.URLParam(r, "pwdId"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrSecretNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		case errors.Is(err, service.ErrSecretGone):
			writeJSON(w, http.StatusGone, errorResponse(err.Error()))
		default:
			writeUpstreamError(w, err)
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleLookup handles POST /api/v1/lookup requests.
func (h *SecretHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	var req model.LookupRequest
	if !decodeJSON(w, r, 64<<10, &req) {
		return
	}

	resp, err := h.service.Lookup(req.Input)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func isFormError(err error) bool {
	return isValidationError(err) ||
		errors.Is(err, service.ErrExpirationTooShort) ||
		errors.Is(err, service.ErrExpirationTooLong) ||
		errors.Is(err, service.ErrViewLimitTooLow) ||
		errors.Is(err, service.ErrViewLimitTooHigh) ||
		errors.Is(err, expiry.ErrUnknownUnit)
}

func writeUpstreamError(w http.ResponseWriter, err error) {
	if errors.Is(err, client.ErrTimeout) {
		writeJSON(w, http.StatusGatewayTimeout, errorResponse("the secret service did not answer in time"))
		return
	}
	slog.Error("secret service request failed", "error", err)
	writeJSON(w, http.StatusBadGateway, errorResponse("the secret service is unavailable, try again shortly"))
}
