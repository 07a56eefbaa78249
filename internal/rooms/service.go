package rooms

import (
	"context"
	"time"

	"github.com/medrex/hospital-flow/pkg/interfaces"
	"github.com/medrex/hospital-flow/pkg/logger"
	"github.com/medrex/hospital-flow/pkg/monitoring"
	"github.com/medrex/hospital-flow/pkg/types"
)

// cleaningInterval is the housekeeping turnover estimate published as the
// next-availability hint when a room is vacated
const cleaningInterval = 2 * time.Hour

// Service implements the RoomInventoryService interface
type Service struct {
	repository interfaces.RoomRepository
	logger     *logger.Logger
	metrics    *monitoring.MetricsCollector
}

// New creates a new room inventory service
func New(repository interfaces.RoomRepository, log *logger.Logger, metrics *monitoring.MetricsCollector) interfaces.RoomInventoryService {
	return &Service{
		repository: repository,
		logger:     log,
		metrics:    metrics,
	}
}

// allowedTransition reports whether the room state machine permits the edge.
// The closed set is: free->occupied, occupied->cleaning, cleaning->free, and
// any status to maintenance or reserved.
func allowedTransition(from, to types.RoomStatus) bool {
	if to == types.RoomStatusMaintenance || to == types.RoomStatusReserved {
		return true
	}
	switch from {
	case types.RoomStatusFree:
		return to == types.RoomStatusOccupied
	case types.RoomStatusOccupied:
		return to == types.RoomStatusCleaning
	case types.RoomStatusCleaning:
		return to == types.RoomStatusFree
	}
	return false
}

// ListRooms returns rooms grouped by floor ascending then room number
// ascending. Pure read, no side effects.
func (s *Service) ListRooms(ctx context.Context, filters *types.RoomFilters) ([]*types.Room, error) {
	if filters == nil {
		filters = &types.RoomFilters{}
	}
	return s.repository.List(ctx, filters)
}

// GetRoom returns a single room by ID
func (s *Service) GetRoom(ctx context.Context, roomID string) (*types.Room, error) {
	return s.repository.GetByID(ctx, roomID)
}

// AllocateRoom moves a free room to occupied and populates the occupant
// summary in the same atomic write. A room that is not free, or a lost
// compare-and-swap race, fails with RoomUnavailable and leaves the room
// untouched.
func (s *Service) AllocateRoom(ctx context.Context, roomID string, occupant *types.OccupantSummary) (*types.Room, error) {
	room, err := s.repository.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if room.Status != types.RoomStatusFree {
		s.recordAllocation("unavailable")
		return nil, types.NewRoomUnavailableError(roomID, room.Status)
	}

	update := &types.RoomStatusUpdate{
		Status:   types.RoomStatusOccupied,
		Occupant: occupant,
	}

	swapped, err := s.repository.CompareAndSwapStatus(ctx, roomID, types.RoomStatusFree, room.Version, update)
	if err != nil {
		return nil, err
	}
	if !swapped {
		// Another operator won the race for this bed.
		s.recordAllocation("cas_lost")
		return nil, types.NewRoomUnavailableError(roomID, room.Status)
	}

	s.recordAllocation("allocated")
	s.logger.WithRoom(roomID).Infof("Room %s allocated to admission %s", room.Number, occupant.AdmissionID)

	return s.repository.GetByID(ctx, roomID)
}

// ReleaseRoom moves an occupied room to cleaning and clears the occupant
// summary. The room is not directly free: housekeeping must mark it ready.
func (s *Service) ReleaseRoom(ctx context.Context, roomID string) (*types.Room, error) {
	room, err := s.repository.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if room.Status != types.RoomStatusOccupied {
		return nil, types.NewInvalidTransitionError("room", string(room.Status), string(types.RoomStatusCleaning))
	}

	availableAt := time.Now().Add(cleaningInterval)
	update := &types.RoomStatusUpdate{
		Status:           types.RoomStatusCleaning,
		NextAvailability: &availableAt,
	}

	swapped, err := s.repository.CompareAndSwapStatus(ctx, roomID, types.RoomStatusOccupied, room.Version, update)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, types.NewConflictError("room", roomID)
	}

	s.logger.WithRoom(roomID).Infof("Room %s released for cleaning", room.Number)
	return s.repository.GetByID(ctx, roomID)
}

// MarkReady is the explicit housekeeping operation moving cleaning to free
func (s *Service) MarkReady(ctx context.Context, roomID string) (*types.Room, error) {
	return s.transition(ctx, roomID, types.RoomStatusFree, "")
}

// Reserve moves a room to reserved with an administrative note
func (s *Service) Reserve(ctx context.Context, roomID, note string) (*types.Room, error) {
	return s.transition(ctx, roomID, types.RoomStatusReserved, note)
}

// SendToMaintenance takes a room out of service
func (s *Service) SendToMaintenance(ctx context.Context, roomID, note string) (*types.Room, error) {
	return s.transition(ctx, roomID, types.RoomStatusMaintenance, note)
}

// transition applies an administrative status change under the same
// all-or-nothing contract as allocation
func (s *Service) transition(ctx context.Context, roomID string, next types.RoomStatus, note string) (*types.Room, error) {
	room, err := s.repository.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if !allowedTransition(room.Status, next) {
		return nil, types.NewInvalidTransitionError("room", string(room.Status), string(next))
	}

	update := &types.RoomStatusUpdate{
		Status: next,
		Note:   note,
	}

	swapped, err := s.repository.CompareAndSwapStatus(ctx, roomID, room.Status, room.Version, update)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, types.NewConflictError("room", roomID)
	}

	s.logger.WithRoom(roomID).Infof("Room %s moved to %s", room.Number, next)
	return s.repository.GetByID(ctx, roomID)
}

func (s *Service) recordAllocation(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordRoomAllocation(outcome)
	}
}
