package handler

import (
	"net/http"

	"hackr_api/internal/api/middleware"
	"hackr_api/internal/app/service"
	"hackr_api/internal/common"
	"hackr_api/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type SimulationHandler struct {
	simulationService *service.SimulationService
}

func NewSimulationHandler(ss *service.SimulationService) *SimulationHandler {
	return &SimulationHandler{simulationService: ss}
}

func (h *SimulationHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.startSimulation)  // POST /public/features/ddos-simulation
	r.Get("/{id}", h.getSimulation) // GET /public/features/ddos-simulation/{id}
}

type startSimulationResponse struct {
	Message    string            `json:"message"`
	Simulation *model.Simulation `json:"simulation"`
}

func (h *SimulationHandler) startSimulation(w http.ResponseWriter, r *http.Request) {
	var req service.StartSimulationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	identity, _ := middleware.GetIdentityFromContext(r.Context())
	sim, err := h.simulationService.Start(r.Context(), req, identity.ID)
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusAccepted, startSimulationResponse{
		Message:    "DDoS simulation started on " + req.Domain + ".",
		Simulation: sim,
	})
}

func (h *SimulationHandler) getSimulation(w http.ResponseWriter, r *http.Request) {
	sim, err := h.simulationService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		common.RespondWithServiceError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, sim)
}
