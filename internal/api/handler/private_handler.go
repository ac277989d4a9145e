package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"hackr_api/internal/api/middleware"
	"hackr_api/internal/app/service"
	"hackr_api/internal/common"

	"github.com/go-chi/chi/v5"
)

// PrivateHandler serves the admin-only pages and features.
type PrivateHandler struct {
	mailService *service.MailService
}

func NewPrivateHandler(ms *service.MailService) *PrivateHandler {
	return &PrivateHandler{mailService: ms}
}

func (h *PrivateHandler) RegisterRoutes(r chi.Router) {
	r.Get("/home", h.home)
	r.Post("/features/email-spammer", h.emailSpammer)
}

func (h *PrivateHandler) home(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentityFromContext(r.Context())
	common.RespondWithText(w, http.StatusOK, fmt.Sprintf("Hello %s, you are an Admin!", identity.FirstName))
}

func (h *PrivateHandler) emailSpammer(w http.ResponseWriter, r *http.Request) {
	var req service.SpamRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sent, err := h.mailService.SendSpam(r.Context(), req)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			common.RespondWithServiceError(w, r, err)
			return
		}
		slog.Error("sending emails failed", "to", req.Email, "error", err)
		common.RespondWithError(w, r, http.StatusInternalServerError, "Error sending emails")
		return
	}
	common.RespondWithMessage(w, http.StatusOK, fmt.Sprintf("%d emails successfully sent to %s", sent, req.Email))
}
