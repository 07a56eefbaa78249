package transfers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/medrex/hospital-flow/internal/api"
	"github.com/medrex/hospital-flow/internal/gateway"
	"github.com/medrex/hospital-flow/pkg/interfaces"
	"github.com/medrex/hospital-flow/pkg/logger"
	"github.com/medrex/hospital-flow/pkg/types"
)

// Handler exposes the transfer queue over HTTP
type Handler struct {
	service interfaces.TransferQueueService
	logger  *logger.Logger
}

// NewHandler creates a new transfer queue handler
func NewHandler(service interfaces.TransferQueueService, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes configures HTTP routes for the transfer queue
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/transfers", h.createHandler).Methods("POST")
	router.HandleFunc("/transfers", h.listHandler).Methods("GET")
	router.HandleFunc("/transfers/pending", h.listPendingHandler).Methods("GET")
	router.HandleFunc("/transfers/{id}", h.getHandler).Methods("GET")
	router.HandleFunc("/transfers/{id}/approve", h.approveHandler).Methods("POST")
	router.HandleFunc("/transfers/{id}/reject", h.rejectHandler).Methods("POST")
}

// createHandler queues a new transfer request
func (h *Handler) createHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AdmissionID           string `json:"admission_id"`
		DestinationDepartment string `json:"destination_department"`
		Reason                string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, types.NewValidationError("invalid request body", nil))
		return
	}

	req := &types.TransferRequest{
		AdmissionID:           body.AdmissionID,
		DestinationDepartment: body.DestinationDepartment,
		Reason:                body.Reason,
	}

	created, err := h.service.Create(r.Context(), req, gateway.ActorFromContext(r.Context()))
	if err != nil {
		api.WriteError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, created)
}

// listHandler handles transfer listing with filters
func (h *Handler) listHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := &types.TransferFilters{
		Status:      types.TransferStatus(query.Get("status")),
		Department:  query.Get("department"),
		AdmissionID: query.Get("admission_id"),
	}

	requests, err := h.service.List(r.Context(), filters)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, requests)
}

// listPendingHandler returns the open queue in arrival order
func (h *Handler) listPendingHandler(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.ListPending(r.Context())
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, requests)
}

// getHandler retrieves one transfer request
func (h *Handler) getHandler(w http.ResponseWriter, r *http.Request) {
	req, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, req)
}

// approveHandler accepts a pending transfer
func (h *Handler) approveHandler(w http.ResponseWriter, r *http.Request) {
	req, err := h.service.Approve(r.Context(), mux.Vars(r)["id"], gateway.ActorFromContext(r.Context()))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, req)
}

// rejectHandler declines a pending transfer with a reason
func (h *Handler) rejectHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, types.NewValidationError("invalid request body", []string{"reason"}))
		return
	}

	req, err := h.service.Reject(r.Context(), mux.Vars(r)["id"], gateway.ActorFromContext(r.Context()), body.Reason)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, req)
}
