package handler

import (
	"net/http"

	"github.com/runnerkit/hello-service/internal/service"
)

// HealthHandler serves the liveness, readiness and greeting endpoints.
type HealthHandler struct {
	svc *service.HealthService
}

func NewHealthHandler(svc *service.HealthService) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// Liveness handles GET /health
//
// @Summary  Liveness probe
// @Tags     system
// @Produce  json
// @Success  200  {object}  domain.HealthStatus
// @Router   /health [get]
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	respondHealth(w, h.svc.Liveness())
}

// Readiness handles GET /health/db/
//
// @Summary  Database readiness probe
// @Tags     system
// @Produce  json
// @Success  200  {object}  domain.HealthStatus
// @Failure  500  {object}  domain.HealthStatus
// @Router   /health/db/ [get]
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	respondHealth(w, h.svc.Readiness(r.Context()))
}

// StorageReadiness handles GET /health/storage/
func (h *HealthHandler) StorageReadiness(w http.ResponseWriter, r *http.Request) {
	respondHealth(w, h.svc.StorageReadiness(r.Context()))
}

// Hello handles GET / and GET /home/
func (h *HealthHandler) Hello(w http.ResponseWriter, r *http.Request) {
	respondText(w, http.StatusOK, h.svc.Hello())
}
