package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"hackr_api/internal/app/service"
	"hackr_api/internal/common"
	"hackr_api/internal/platform/recon"

	"github.com/go-chi/chi/v5"
)

const featureListing = `
    Available Routes for HackR API (Public, Accessible by Admin and User):

    1. GET /public/features/generate-secured-password
       Description: Generates a random secured password.

    2. GET /public/features/generate-fictive-identity
       Description: Generates a fake identity with name, email, phone, address, birthdate, and avatar.

    3. GET /public/features/random-picture
       Description: Returns the URL of a random picture from 'thispersondoesnotexist.com'.

    4. POST /public/features/verify-email
       Description: Verifies the existence of an email address using the Hunter.io API.

    5. POST /public/features/check-common-password
       Description: Checks a password against a list of common passwords.

    6. POST /public/features/domain-info
       Description: Retrieves subdomains of a domain using the SecurityTrails API.

    7. GET /public/features/crawl-person
       Description: Searches for information about a person using SerpAPI.

    8. POST /public/features/ddos-simulation
       Description: Starts a bounded load simulation against a domain.

    9. GET /public/features/ddos-simulation/{id}
       Description: Reports the progress of a load simulation.
`

type FeatureHandler struct {
	featureService *service.FeatureService
}

func NewFeatureHandler(fs *service.FeatureService) *FeatureHandler {
	return &FeatureHandler{featureService: fs}
}

func (h *FeatureHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listFeatures)
	r.Get("/generate-secured-password", h.generateSecuredPassword)
	r.Post("/check-common-password", h.checkCommonPassword)
	r.Get("/generate-fictive-identity", h.generateFictiveIdentity)
	r.Get("/random-picture", h.randomPicture)
	r.Post("/verify-email", h.verifyEmail)
	r.Post("/domain-info", h.domainInfo)
	r.Get("/crawl-person", h.crawlPerson)
}

func (h *FeatureHandler) listFeatures(w http.ResponseWriter, r *http.Request) {
	common.RespondWithText(w, http.StatusOK, featureListing)
}

func (h *FeatureHandler) generateSecuredPassword(w http.ResponseWriter, r *http.Request) {
	password, err := h.featureService.GenerateSecuredPassword()
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"securedPassword": password})
}

func (h *FeatureHandler) checkCommonPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Password == "" {
		common.RespondWithError(w, r, http.StatusBadRequest, "Password is required")
		return
	}

	if h.featureService.IsCommonPassword(req.Password) {
		common.RespondWithMessage(w, http.StatusOK, "Password is too common, please choose a more secure one.")
		return
	}
	common.RespondWithMessage(w, http.StatusOK, "Password is secure.")
}

func (h *FeatureHandler) generateFictiveIdentity(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, map[string]service.FictiveIdentity{
		"identity": h.featureService.GenerateIdentity(),
	})
}

func (h *FeatureHandler) randomPicture(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"imageUrl": h.featureService.RandomPictureURL()})
}

func (h *FeatureHandler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.featureService.VerifyEmail(r.Context(), req.Email)
	switch {
	case err == nil:
		common.RespondWithJSON(w, http.StatusOK, struct {
			Message string          `json:"message"`
			Result  json.RawMessage `json:"result"`
		}{Message: "Email verification completed", Result: result})
	case errors.Is(err, common.ErrValidation):
		common.RespondWithServiceError(w, r, err)
	case errors.Is(err, recon.ErrNoData):
		common.RespondWithError(w, r, http.StatusBadRequest, "Invalid email or verification failed")
	default:
		slog.Error("email verification failed", "error", err)
		common.RespondWithError(w, r, http.StatusInternalServerError, "An error occurred while verifying the email")
	}
}

func (h *FeatureHandler) domainInfo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Domain string `json:"domain"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	subdomains, err := h.featureService.DomainInfo(r.Context(), req.Domain)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			common.RespondWithServiceError(w, r, err)
			return
		}
		slog.Error("domain lookup failed", "domain", req.Domain, "error", err)
		common.RespondWithError(w, r, http.StatusInternalServerError, "Error fetching domain information")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, struct {
		Domain     string   `json:"domain"`
		Subdomains []string `json:"subdomains"`
	}{Domain: req.Domain, Subdomains: subdomains})
}

func (h *FeatureHandler) crawlPerson(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	results, err := h.featureService.CrawlPerson(r.Context(), q.Get("firstName"), q.Get("lastName"), q.Get("moreDetail"))
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			common.RespondWithServiceError(w, r, err)
			return
		}
		slog.Error("person search failed", "error", err)
		common.RespondWithError(w, r, http.StatusInternalServerError, "Failed to fetch information about the person.")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string][]recon.SearchResult{"results": results})
}
