package handler

import (
	"net/http"
	"time"

	"hackr_api/internal/app/service"
	"hackr_api/internal/common"
	"hackr_api/internal/common/security"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService  *service.AuthService
	cookieTTL    time.Duration
	secureCookie bool
}

func NewAuthHandler(authService *service.AuthService, cookieTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, cookieTTL: cookieTTL, secureCookie: secureCookie}
}

// RegisterRoutes mounts register, login and logout. guest guards register and
// login; authenticate guards logout.
func (h *AuthHandler) RegisterRoutes(r chi.Router, guest, authenticate func(http.Handler) http.Handler) {
	r.With(guest).Post("/register", h.Register)
	r.With(guest).Post("/login", h.Login)
	r.With(authenticate).Post("/logout", h.Logout)
}

type tokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	http.SetCookie(w, security.SessionCookie(resp.Token, h.cookieTTL, h.secureCookie))
	common.RespondWithJSON(w, http.StatusCreated, tokenResponse{Message: resp.Message, Token: resp.Token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	http.SetCookie(w, security.SessionCookie(resp.Token, h.cookieTTL, h.secureCookie))
	common.RespondWithJSON(w, http.StatusOK, tokenResponse{Message: resp.Message, Token: resp.Token})
}

// Logout only clears the cookie; issued tokens stay valid until they expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, security.ExpiredSessionCookie(h.secureCookie))
	common.RespondWithMessage(w, http.StatusOK, "Logged out successfully")
}
