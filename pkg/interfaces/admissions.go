package interfaces

import (
	"context"
	"time"

	"github.com/medrex/hospital-flow/pkg/types"
)

// AdmissionWorkflowService defines the interface for the hospitalization
// state machine, from intake to discharge
type AdmissionWorkflowService interface {
	Create(ctx context.Context, req *types.CreateAdmissionRequest, actor string) (*types.AdmissionRecord, error)
	GetAdmission(ctx context.Context, admissionID string) (*types.AdmissionRecord, error)
	ListAdmissions(ctx context.Context, filters *types.AdmissionFilters) ([]*types.AdmissionRecord, error)
	GetHistory(ctx context.Context, admissionID string) ([]types.HistoryEntry, error)

	// Transitions
	AssignRoom(ctx context.Context, admissionID, roomID, actor string) (*types.AdmissionRecord, error)
	ScheduleDischarge(ctx context.Context, admissionID string, expectedDate time.Time, actor string) (*types.AdmissionRecord, error)
	FinalizeDischarge(ctx context.Context, admissionID string, override bool, actor string) (*types.AdmissionRecord, error)
	Cancel(ctx context.Context, admissionID, actor string) (*types.AdmissionRecord, error)

	// Insurance
	VerifyInsurance(ctx context.Context, admissionID, actor string) (*types.InsuranceSnapshot, error)

	// Financials and documents
	RecordDeposit(ctx context.Context, admissionID string, amount int64, actor string) (*types.AdmissionRecord, error)
	AddInvoice(ctx context.Context, admissionID, label string, amount int64, actor string) (*types.AdmissionRecord, error)
	PayInvoice(ctx context.Context, admissionID, invoiceID, actor string) (*types.AdmissionRecord, error)
	SetDocumentStatus(ctx context.Context, admissionID, docType string, provided bool, actor string) (*types.AdmissionRecord, error)
}

// AdmissionRepository defines the persistence collaborator for admission
// records. Update is compare-and-swap on the record version; history entries
// are append-only.
type AdmissionRepository interface {
	Create(ctx context.Context, rec *types.AdmissionRecord) error
	GetByID(ctx context.Context, id string) (*types.AdmissionRecord, error)
	List(ctx context.Context, filters *types.AdmissionFilters) ([]*types.AdmissionRecord, error)

	// Update persists the record if the stored version still matches
	// rec.Version, bumping it by one. Returns false without error on a lost
	// race.
	Update(ctx context.Context, rec *types.AdmissionRecord) (bool, error)

	// NextSequence atomically reserves the next admission sequence number for
	// the given calendar day. The counter starts at 1 and is shared across
	// all admission origins.
	NextSequence(ctx context.Context, day time.Time) (int, error)
}
