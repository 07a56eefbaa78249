package rooms

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/medrex/hospital-flow/internal/api"
	"github.com/medrex/hospital-flow/pkg/interfaces"
	"github.com/medrex/hospital-flow/pkg/logger"
	"github.com/medrex/hospital-flow/pkg/types"
)

// Handler exposes the room inventory over HTTP
type Handler struct {
	service interfaces.RoomInventoryService
	logger  *logger.Logger
}

// NewHandler creates a new room inventory handler
func NewHandler(service interfaces.RoomInventoryService, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes configures HTTP routes for the room inventory
func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/rooms", h.listRoomsHandler).Methods("GET")
	router.HandleFunc("/rooms/{id}", h.getRoomHandler).Methods("GET")
	router.HandleFunc("/rooms/{id}/release", h.releaseRoomHandler).Methods("POST")
	router.HandleFunc("/rooms/{id}/ready", h.markReadyHandler).Methods("POST")
	router.HandleFunc("/rooms/{id}/reserve", h.reserveHandler).Methods("POST")
	router.HandleFunc("/rooms/{id}/maintenance", h.maintenanceHandler).Methods("POST")
}

// listRoomsHandler handles room listing with filters
func (h *Handler) listRoomsHandler(w http.ResponseWriter, r *http.Request) {
	filters := &types.RoomFilters{
		Department: r.URL.Query().Get("department"),
		Category:   types.RoomCategory(r.URL.Query().Get("category")),
		Status:     types.RoomStatus(r.URL.Query().Get("status")),
		SearchTerm: r.URL.Query().Get("q"),
	}

	if floorStr := r.URL.Query().Get("floor"); floorStr != "" {
		floor, err := strconv.Atoi(floorStr)
		if err != nil {
			api.WriteError(w, types.NewValidationError("invalid floor filter", []string{"floor"}))
			return
		}
		filters.Floor = &floor
	}

	rooms, err := h.service.ListRooms(r.Context(), filters)
	if err != nil {
		api.WriteError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, rooms)
}

// getRoomHandler handles single room retrieval
func (h *Handler) getRoomHandler(w http.ResponseWriter, r *http.Request) {
	room, err := h.service.GetRoom(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, room)
}

// releaseRoomHandler vacates an occupied room into cleaning
func (h *Handler) releaseRoomHandler(w http.ResponseWriter, r *http.Request) {
	room, err := h.service.ReleaseRoom(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, room)
}

// markReadyHandler moves a cleaned room back to free
func (h *Handler) markReadyHandler(w http.ResponseWriter, r *http.Request) {
	room, err := h.service.MarkReady(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, room)
}

// reserveHandler places an administrative reservation on a room
func (h *Handler) reserveHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, types.NewValidationError("invalid request body", []string{"note"}))
		return
	}

	room, err := h.service.Reserve(r.Context(), mux.Vars(r)["id"], body.Note)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, room)
}

// maintenanceHandler takes a room out of service
func (h *Handler) maintenanceHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Note string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		api.WriteError(w, types.NewValidationError("invalid request body", []string{"note"}))
		return
	}

	room, err := h.service.SendToMaintenance(r.Context(), mux.Vars(r)["id"], body.Note)
	if err != nil {
		api.WriteError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, room)
}
