package discharge

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/medrex/hospital-flow/internal/api"
	"github.com/medrex/hospital-flow/pkg/interfaces"
	"github.com/medrex/hospital-flow/pkg/logger"
)

// Handler exposes discharge readiness over HTTP
type Handler struct {
	service interfaces.DischargeReadinessService
	logger  *logger.Logger
}

// NewHandler creates a new discharge readiness handler
func NewHandler(service interfaces.DischargeReadinessService, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes configures HTTP routes for discharge readiness
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/admissions/{id}/discharge/readiness", h.checkHandler).Methods("GET")
}

// checkHandler reports whether an admission may be closed and every blocking
// reason if not
func (h *Handler) checkHandler(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Check(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, report)
}
