package interfaces

import (
	"context"

	"github.com/medrex/hospital-flow/pkg/types"
)

// TransferQueueService defines the interface for pending inter-department
// transfer requests. Approving a transfer never moves the patient by itself;
// the caller must follow up with AdmissionWorkflowService.AssignRoom so the
// bed move stays an explicit, auditable allocation.
type TransferQueueService interface {
	Create(ctx context.Context, req *types.TransferRequest, requestedBy string) (*types.TransferRequest, error)
	Get(ctx context.Context, transferID string) (*types.TransferRequest, error)
	ListPending(ctx context.Context) ([]*types.TransferRequest, error)
	List(ctx context.Context, filters *types.TransferFilters) ([]*types.TransferRequest, error)
	Approve(ctx context.Context, transferID, approver string) (*types.TransferRequest, error)
	Reject(ctx context.Context, transferID, approver, reason string) (*types.TransferRequest, error)
}

// TransferRepository defines the persistence collaborator for transfer requests
type TransferRepository interface {
	Create(ctx context.Context, req *types.TransferRequest) error
	GetByID(ctx context.Context, id string) (*types.TransferRequest, error)
	List(ctx context.Context, filters *types.TransferFilters) ([]*types.TransferRequest, error)

	// UpdateStatus persists a decision if the stored version still matches.
	// Returns false without error on a lost race.
	UpdateStatus(ctx context.Context, req *types.TransferRequest) (bool, error)
}
