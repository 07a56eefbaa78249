package admissions

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/medrex/hospital-flow/internal/api"
	"github.com/medrex/hospital-flow/internal/gateway"
	"github.com/medrex/hospital-flow/pkg/interfaces"
	"github.com/medrex/hospital-flow/pkg/logger"
	"github.com/medrex/hospital-flow/pkg/types"
)

// Handler exposes the admission workflow over HTTP
type Handler struct {
	service interfaces.AdmissionWorkflowService
	logger  *logger.Logger
}

// NewHandler creates a new admission workflow handler
func NewHandler(service interfaces.AdmissionWorkflowService, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes configures HTTP routes for the admission workflow
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/admissions", h.createHandler).Methods("POST")
	router.HandleFunc("/admissions", h.listHandler).Methods("GET")
	router.HandleFunc("/admissions/{id}", h.getHandler).Methods("GET")
	router.HandleFunc("/admissions/{id}/history", h.historyHandler).Methods("GET")
	router.HandleFunc("/admissions/{id}/room", h.assignRoomHandler).Methods("POST")
	router.HandleFunc("/admissions/{id}/insurance/verify", h.verifyInsuranceHandler).Methods("POST")
	router.HandleFunc("/admissions/{id}/discharge/schedule", h.scheduleDischargeHandler).Methods("POST")
	router.HandleFunc("/admissions/{id}/discharge/finalize", h.finalizeDischargeHandler).Methods("POST")
	router.HandleFunc("/admissions/{id}/cancel", h.cancelHandler).Methods("POST")
	router.HandleFunc("/admissions/{id}/deposit", h.depositHandler).Methods("POST")
	router.HandleFunc("/admissions/{id}/invoices", h.addInvoiceHandler).Methods("POST")
	router.HandleFunc("/admissions/{id}/invoices/{invoiceId}/pay", h.payInvoiceHandler).Methods("POST")
	router.HandleFunc("/admissions/{id}/documents/{type}", h.setDocumentHandler).Methods("PUT")
}

// createHandler opens a new admission from the intake form
func (h *Handler) createHandler(w http.ResponseWriter, r *http.Request) {
	var req types.CreateAdmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, types.NewValidationError("invalid request body", nil))
		return
	}

	rec, err := h.service.Create(r.Context(), &req, gateway.ActorFromContext(r.Context()))
	if err != nil {
		api.WriteError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusCreated, rec)
}

// listHandler handles admission listing with filters
func (h *Handler) listHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filters := &types.AdmissionFilters{
		Status:     types.AdmissionStatus(query.Get("status")),
		Origin:     types.AdmissionOrigin(query.Get("origin")),
		Department: query.Get("department"),
	}

	if from := query.Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			api.WriteError(w, types.NewValidationError("invalid from filter", []string{"from"}))
			return
		}
		filters.FromDate = t
	}
	if to := query.Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			api.WriteError(w, types.NewValidationError("invalid to filter", []string{"to"}))
			return
		}
		filters.ToDate = t
	}
	if limit := query.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			api.WriteError(w, types.NewValidationError("invalid limit filter", []string{"limit"}))
			return
		}
		filters.Limit = n
	}
	if offset := query.Get("offset"); offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil {
			api.WriteError(w, types.NewValidationError("invalid offset filter", []string{"offset"}))
			return
		}
		filters.Offset = n
	}

	records, err := h.service.ListAdmissions(r.Context(), filters)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, records)
}

// getHandler retrieves one full admission record
func (h *Handler) getHandler(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.GetAdmission(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, rec)
}

// historyHandler returns the append-only history log
func (h *Handler) historyHandler(w http.ResponseWriter, r *http.Request) {
	history, err := h.service.GetHistory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, history)
}

// assignRoomHandler allocates a bed to the admission
func (h *Handler) assignRoomHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RoomID string `json:"room_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RoomID == "" {
		api.WriteError(w, types.NewValidationError("room_id is required", []string{"room_id"}))
		return
	}

	rec, err := h.service.AssignRoom(r.Context(), mux.Vars(r)["id"], body.RoomID, gateway.ActorFromContext(r.Context()))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, rec)
}

// verifyInsuranceHandler triggers a coverage check against the registry
func (h *Handler) verifyInsuranceHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.VerifyInsurance(r.Context(), mux.Vars(r)["id"], gateway.ActorFromContext(r.Context()))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, snapshot)
}

// scheduleDischargeHandler plans the discharge date
func (h *Handler) scheduleDischargeHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ExpectedDate time.Time `json:"expected_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ExpectedDate.IsZero() {
		api.WriteError(w, types.NewValidationError("expected_date is required", []string{"expected_date"}))
		return
	}

	rec, err := h.service.ScheduleDischarge(r.Context(), mux.Vars(r)["id"], body.ExpectedDate, gateway.ActorFromContext(r.Context()))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, rec)
}

// finalizeDischargeHandler closes the admission. The readiness override is
// reserved to administrators.
func (h *Handler) finalizeDischargeHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Override bool `json:"override"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			api.WriteError(w, types.NewValidationError("invalid request body", nil))
			return
		}
	}

	if body.Override {
		claims, ok := gateway.ClaimsFromContext(r.Context())
		if !ok || !claims.CanOverrideDischarge() {
			api.WriteJSON(w, http.StatusForbidden, map[string]interface{}{
				"error": map[string]interface{}{
					"type":    types.ErrorTypeValidation,
					"code":    "FORBIDDEN",
					"message": "discharge override requires administrator role",
				},
			})
			return
		}
	}

	rec, err := h.service.FinalizeDischarge(r.Context(), mux.Vars(r)["id"], body.Override, gateway.ActorFromContext(r.Context()))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, rec)
}

// cancelHandler abandons a pre-admission
func (h *Handler) cancelHandler(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.Cancel(r.Context(), mux.Vars(r)["id"], gateway.ActorFromContext(r.Context()))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, rec)
}

// depositHandler registers a deposit payment
func (h *Handler) depositHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount int64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, types.NewValidationError("invalid request body", []string{"amount"}))
		return
	}

	rec, err := h.service.RecordDeposit(r.Context(), mux.Vars(r)["id"], body.Amount, gateway.ActorFromContext(r.Context()))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, rec)
}

// addInvoiceHandler appends a billable line
func (h *Handler) addInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Label  string `json:"label"`
		Amount int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, types.NewValidationError("invalid request body", []string{"label", "amount"}))
		return
	}

	rec, err := h.service.AddInvoice(r.Context(), mux.Vars(r)["id"], body.Label, body.Amount, gateway.ActorFromContext(r.Context()))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, rec)
}

// payInvoiceHandler marks an invoice as paid
func (h *Handler) payInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rec, err := h.service.PayInvoice(r.Context(), vars["id"], vars["invoiceId"], gateway.ActorFromContext(r.Context()))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, rec)
}

// setDocumentHandler updates one checklist entry
func (h *Handler) setDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Provided bool `json:"provided"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, types.NewValidationError("invalid request body", []string{"provided"}))
		return
	}

	vars := mux.Vars(r)
	rec, err := h.service.SetDocumentStatus(r.Context(), vars["id"], vars["type"], body.Provided, gateway.ActorFromContext(r.Context()))
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, rec)
}
