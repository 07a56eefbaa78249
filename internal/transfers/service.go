package transfers

import (
	"context"

	"github.com/medrex/hospital-flow/pkg/interfaces"
	"github.com/medrex/hospital-flow/pkg/logger"
	"github.com/medrex/hospital-flow/pkg/monitoring"
	"github.com/medrex/hospital-flow/pkg/types"
)

// Service implements the TransferQueueService interface. A transfer request
// is a lightweight approval ticket; the bed move itself stays an explicit
// room assignment on the admission workflow.
type Service struct {
	repository interfaces.TransferRepository
	admissions interfaces.AdmissionRepository
	logger     *logger.Logger
	metrics    *monitoring.MetricsCollector
}

// New creates a new transfer queue service
func New(repository interfaces.TransferRepository, admissions interfaces.AdmissionRepository, log *logger.Logger, metrics *monitoring.MetricsCollector) interfaces.TransferQueueService {
	return &Service{
		repository: repository,
		admissions: admissions,
		logger:     log,
		metrics:    metrics,
	}
}

// Create queues a transfer request for an admitted patient. The patient and
// source details are taken from the admission record, never trusted from the
// caller.
func (s *Service) Create(ctx context.Context, req *types.TransferRequest, requestedBy string) (*types.TransferRequest, error) {
	missing := []string{}
	if req.AdmissionID == "" {
		missing = append(missing, "admission_id")
	}
	if req.DestinationDepartment == "" {
		missing = append(missing, "destination_department")
	}
	if req.Reason == "" {
		missing = append(missing, "reason")
	}
	if len(missing) > 0 {
		return nil, types.NewValidationError("transfer request is incomplete", missing)
	}

	rec, err := s.admissions.GetByID(ctx, req.AdmissionID)
	if err != nil {
		return nil, err
	}
	if rec.Status != types.AdmissionStatusAdmitted {
		return nil, types.NewInvalidTransitionError("admission", string(rec.Status), "transfer_requested")
	}
	if rec.Department == req.DestinationDepartment {
		return nil, types.NewValidationError("destination matches the current department", []string{"destination_department"})
	}

	req.PatientName = rec.Patient.FullName()
	req.SourceDepartment = rec.Department
	req.SourceRoomID = rec.RoomID
	req.Status = types.TransferPending
	req.RequestedBy = requestedBy
	req.DecidedBy = ""
	req.DecisionReason = ""

	if err := s.repository.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Audit(requestedBy, "transfer_requested", rec.AdmissionNumber, true, map[string]interface{}{
		"source":      req.SourceDepartment,
		"destination": req.DestinationDepartment,
	})

	return req, nil
}

// Get retrieves a transfer request by ID
func (s *Service) Get(ctx context.Context, transferID string) (*types.TransferRequest, error) {
	return s.repository.GetByID(ctx, transferID)
}

// ListPending returns the open queue, oldest request first
func (s *Service) ListPending(ctx context.Context) ([]*types.TransferRequest, error) {
	return s.repository.List(ctx, &types.TransferFilters{Status: types.TransferPending})
}

// List retrieves transfer requests matching the filters
func (s *Service) List(ctx context.Context, filters *types.TransferFilters) ([]*types.TransferRequest, error) {
	if filters == nil {
		filters = &types.TransferFilters{}
	}
	return s.repository.List(ctx, filters)
}

// Approve accepts a pending transfer. The caller then assigns a room in the
// destination department on the admission workflow.
func (s *Service) Approve(ctx context.Context, transferID, approver string) (*types.TransferRequest, error) {
	return s.decide(ctx, transferID, approver, types.TransferApproved, "")
}

// Reject declines a pending transfer with a reason
func (s *Service) Reject(ctx context.Context, transferID, approver, reason string) (*types.TransferRequest, error) {
	if reason == "" {
		return nil, types.NewValidationError("rejection reason is required", []string{"reason"})
	}
	return s.decide(ctx, transferID, approver, types.TransferRejected, reason)
}

// decide applies a decision to a pending request; decisions are final
func (s *Service) decide(ctx context.Context, transferID, approver string, status types.TransferStatus, reason string) (*types.TransferRequest, error) {
	req, err := s.repository.GetByID(ctx, transferID)
	if err != nil {
		return nil, err
	}

	if req.Status != types.TransferPending {
		return nil, types.NewInvalidTransitionError("transfer", string(req.Status), string(status))
	}

	req.Status = status
	req.DecidedBy = approver
	req.DecisionReason = reason

	updated, err := s.repository.UpdateStatus(ctx, req)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, types.NewConflictError("transfer", transferID)
	}
	req.Version++

	if s.metrics != nil {
		s.metrics.RecordTransferDecision(string(status))
	}
	s.logger.Audit(approver, "transfer_"+string(status), req.AdmissionID, true, map[string]interface{}{
		"transfer_id": transferID,
		"reason":      reason,
	})

	return req, nil
}
