package interfaces

import (
	"context"

	"github.com/medrex/hospital-flow/pkg/types"
)

// RoomInventoryService defines the interface for bed/room lifecycle management
type RoomInventoryService interface {
	// Reads
	ListRooms(ctx context.Context, filters *types.RoomFilters) ([]*types.Room, error)
	GetRoom(ctx context.Context, roomID string) (*types.Room, error)

	// Lifecycle transitions
	AllocateRoom(ctx context.Context, roomID string, occupant *types.OccupantSummary) (*types.Room, error)
	ReleaseRoom(ctx context.Context, roomID string) (*types.Room, error)
	MarkReady(ctx context.Context, roomID string) (*types.Room, error)
	Reserve(ctx context.Context, roomID, note string) (*types.Room, error)
	SendToMaintenance(ctx context.Context, roomID, note string) (*types.Room, error)
}

// RoomRepository defines the persistence collaborator for rooms. Mutations
// are compare-and-swap on the version stamp; a lost race returns zero rows
// and surfaces as a typed conflict.
type RoomRepository interface {
	Create(ctx context.Context, room *types.Room) error
	GetByID(ctx context.Context, id string) (*types.Room, error)
	List(ctx context.Context, filters *types.RoomFilters) ([]*types.Room, error)

	// CompareAndSwapStatus atomically applies the update if the room is still
	// in the expected status at the expected version. Returns false without
	// error when the swap was lost to a concurrent writer or the room was not
	// in the expected status.
	CompareAndSwapStatus(ctx context.Context, id string, expected types.RoomStatus, version int64, update *types.RoomStatusUpdate) (bool, error)
}
