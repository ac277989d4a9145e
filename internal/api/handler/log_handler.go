package handler

import (
	"net/http"

	"hackr_api/internal/app/service"
	"hackr_api/internal/common"

	"github.com/go-chi/chi/v5"
)

type LogHandler struct {
	logService *service.LogService
}

func NewLogHandler(ls *service.LogService) *LogHandler {
	return &LogHandler{logService: ls}
}

func (h *LogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listLogs) // GET /private/logs?page=N
}

func (h *LogHandler) listLogs(w http.ResponseWriter, r *http.Request) {
	page := parsePositiveInt(r.URL.Query().Get("page"), 1)

	result, err := h.logService.ListPage(r.Context(), page)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}
