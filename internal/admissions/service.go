package admissions

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medrex/hospital-flow/pkg/interfaces"
	"github.com/medrex/hospital-flow/pkg/logger"
	"github.com/medrex/hospital-flow/pkg/monitoring"
	"github.com/medrex/hospital-flow/pkg/types"
)

// History log actions
const (
	actionCreated           = "admission_created"
	actionRoomAssigned      = "room_assigned"
	actionInsuranceVerified = "insurance_verified"
	actionDischargePlanned  = "discharge_scheduled"
	actionDischarged        = "discharge_finalized"
	actionDischargedForced  = "discharge_finalized_override"
	actionCancelled         = "admission_cancelled"
	actionDepositRecorded   = "deposit_recorded"
	actionInvoiceAdded      = "invoice_added"
	actionInvoicePaid       = "invoice_paid"
	actionDocumentUpdated   = "document_updated"
)

// Service implements the AdmissionWorkflowService interface. Each admission's
// transitions are serialized through a per-ID lock; the repository's
// version-stamped updates guard against writers outside this process.
type Service struct {
	repository interfaces.AdmissionRepository
	rooms      interfaces.RoomInventoryService
	insurance  interfaces.InsuranceVerificationService
	readiness  interfaces.DischargeReadinessService
	logger     *logger.Logger
	metrics    *monitoring.MetricsCollector
	locks      *lockTable
}

// New creates a new admission workflow service
func New(
	repository interfaces.AdmissionRepository,
	rooms interfaces.RoomInventoryService,
	insurance interfaces.InsuranceVerificationService,
	readiness interfaces.DischargeReadinessService,
	log *logger.Logger,
	metrics *monitoring.MetricsCollector,
) interfaces.AdmissionWorkflowService {
	return &Service{
		repository: repository,
		rooms:      rooms,
		insurance:  insurance,
		readiness:  readiness,
		logger:     log,
		metrics:    metrics,
		locks:      newLockTable(),
	}
}

// Create validates the intake form and opens a new admission in
// pre_admission. Validation reports every missing field at once; the client
// form may have checked them already but is never trusted.
func (s *Service) Create(ctx context.Context, req *types.CreateAdmissionRequest, actor string) (*types.AdmissionRecord, error) {
	if missing := validateIntake(req); len(missing) > 0 {
		return nil, types.NewValidationError("admission intake is incomplete", missing)
	}

	now := time.Now()
	seq, err := s.repository.NextSequence(ctx, now)
	if err != nil {
		return nil, types.NewInternalError("failed to reserve admission number", err)
	}

	rec := &types.AdmissionRecord{
		ID:                uuid.New().String(),
		AdmissionNumber:   FormatAdmissionNumber(now, seq),
		Patient:           req.Patient,
		Origin:            req.Origin,
		AdmissionDate:     now,
		ExpectedDischarge: req.ExpectedDischarge,
		Department:        req.Department,
		Physician:         req.Physician,
		Reason:            req.Reason,
		Status:            types.AdmissionStatusPreAdmission,
		Notes:             req.Notes,
		Documents:         s.readiness.RequiredDocuments(req.Origin, false),
		Financials: types.FinancialSummary{
			EstimatedStayCost: req.EstimatedStayCost,
			Invoices:          []types.Invoice{},
		},
		History: []types.HistoryEntry{
			{Timestamp: now, Actor: actor, Action: actionCreated},
		},
	}
	rec.Financials.Recompute()

	if req.InsuranceType != "" || req.InsuredNumber != "" {
		rec.Insurance = &types.InsuranceSnapshot{
			Type:          req.InsuranceType,
			InsuredNumber: req.InsuredNumber,
			Status:        types.VerificationUnverified,
		}
	}

	if err := s.repository.Create(ctx, rec); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordAdmission(string(rec.Origin))
	}
	s.logger.Audit(actor, actionCreated, rec.AdmissionNumber, true, map[string]interface{}{
		"origin":     rec.Origin,
		"department": rec.Department,
	})

	return rec, nil
}

// GetAdmission retrieves an admission record by ID
func (s *Service) GetAdmission(ctx context.Context, admissionID string) (*types.AdmissionRecord, error) {
	return s.repository.GetByID(ctx, admissionID)
}

// ListAdmissions retrieves admissions matching the filters
func (s *Service) ListAdmissions(ctx context.Context, filters *types.AdmissionFilters) ([]*types.AdmissionRecord, error) {
	if filters == nil {
		filters = &types.AdmissionFilters{}
	}
	return s.repository.List(ctx, filters)
}

// GetHistory returns the append-only history log of an admission
func (s *Service) GetHistory(ctx context.Context, admissionID string) ([]types.HistoryEntry, error) {
	rec, err := s.repository.GetByID(ctx, admissionID)
	if err != nil {
		return nil, err
	}
	return rec.History, nil
}

// AssignRoom allocates a bed for the patient and, from pre_admission, moves
// the admission to admitted. RoomUnavailable from the inventory propagates
// unchanged.
func (s *Service) AssignRoom(ctx context.Context, admissionID, roomID, actor string) (*types.AdmissionRecord, error) {
	lock := s.locks.acquire(admissionID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.repository.GetByID(ctx, admissionID)
	if err != nil {
		return nil, err
	}

	if rec.Status != types.AdmissionStatusPreAdmission && rec.Status != types.AdmissionStatusAdmitted {
		s.recordTransition(actionRoomAssigned, "rejected")
		return nil, types.NewInvalidTransitionError("admission", string(rec.Status), string(types.AdmissionStatusAdmitted))
	}

	occupant := &types.OccupantSummary{
		AdmissionID:       rec.ID,
		PatientName:       rec.Patient.FullName(),
		AdmissionDate:     rec.AdmissionDate,
		Physician:         rec.Physician,
		ExpectedDischarge: rec.ExpectedDischarge,
	}

	if _, err := s.rooms.AllocateRoom(ctx, roomID, occupant); err != nil {
		s.recordTransition(actionRoomAssigned, "failed")
		return nil, err
	}

	previousRoom := rec.RoomID
	rec.RoomID = roomID
	if rec.Status == types.AdmissionStatusPreAdmission {
		rec.Status = types.AdmissionStatusAdmitted
	}
	s.appendHistory(rec, actor, actionRoomAssigned)

	if err := s.persist(ctx, rec); err != nil {
		// The bed was taken but the admission update lost; roll the bed back
		// through the normal turnover path so nothing stays half-assigned.
		s.rollbackAllocation(ctx, roomID)
		s.recordTransition(actionRoomAssigned, "conflict")
		return nil, err
	}

	// A transfer vacates the previous bed into cleaning.
	if previousRoom != "" && previousRoom != roomID {
		if _, err := s.rooms.ReleaseRoom(ctx, previousRoom); err != nil {
			s.logger.WithRoom(previousRoom).WithError(err).Warn("Failed to release previous room after transfer")
		}
	}

	s.recordTransition(actionRoomAssigned, "applied")
	s.logger.Audit(actor, actionRoomAssigned, rec.AdmissionNumber, true, map[string]interface{}{"room_id": roomID})

	return rec, nil
}

// VerifyInsurance calls the external registry and snapshots the result on the
// record, overwriting any prior snapshot. A provider failure, timeout, or an
// abandoned caller context leaves the record untouched and surfaces a typed
// failure the caller may retry.
func (s *Service) VerifyInsurance(ctx context.Context, admissionID, actor string) (*types.InsuranceSnapshot, error) {
	rec, err := s.repository.GetByID(ctx, admissionID)
	if err != nil {
		return nil, err
	}

	if rec.Insurance == nil || rec.Insurance.InsuredNumber == "" {
		return nil, types.NewValidationError("admission has no insurance identifiers", []string{"insured_number"})
	}

	result, err := s.insurance.Verify(ctx, rec.Insurance.Type, rec.Insurance.InsuredNumber)
	if err != nil {
		return nil, err
	}

	// The caller may have walked away while the registry was answering; in
	// that case the result is discarded without touching the record.
	if ctx.Err() != nil {
		return nil, types.NewInsuranceVerificationError("insurance verification abandoned", ctx.Err())
	}

	lock := s.locks.acquire(admissionID)
	lock.Lock()
	defer lock.Unlock()

	rec, err = s.repository.GetByID(ctx, admissionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	snapshot := &types.InsuranceSnapshot{
		Type:             rec.Insurance.Type,
		InsuredNumber:    rec.Insurance.InsuredNumber,
		Fund:             result.Fund,
		RemainingCeiling: result.RemainingCeiling,
		CoverageRate:     result.CoverageRate,
		Status:           result.Status,
		VerifiedAt:       &now,
	}
	rec.Insurance = snapshot
	s.appendHistory(rec, actor, actionInsuranceVerified)

	if err := s.persist(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Audit(actor, actionInsuranceVerified, rec.AdmissionNumber, true, map[string]interface{}{
		"status":        snapshot.Status,
		"coverage_rate": snapshot.CoverageRate,
	})

	return snapshot, nil
}

// ScheduleDischarge plans the discharge date; allowed only from admitted
func (s *Service) ScheduleDischarge(ctx context.Context, admissionID string, expectedDate time.Time, actor string) (*types.AdmissionRecord, error) {
	return s.transition(ctx, admissionID, actor, actionDischargePlanned, func(rec *types.AdmissionRecord) error {
		if rec.Status != types.AdmissionStatusAdmitted {
			return types.NewInvalidTransitionError("admission", string(rec.Status), string(types.AdmissionStatusDischargeScheduled))
		}
		rec.Status = types.AdmissionStatusDischargeScheduled
		rec.ExpectedDischarge = &expectedDate
		return nil
	})
}

// FinalizeDischarge closes the admission; allowed only from
// discharge_scheduled and gated by the readiness check unless an authorized
// override is supplied. On success the room is vacated into cleaning.
func (s *Service) FinalizeDischarge(ctx context.Context, admissionID string, override bool, actor string) (*types.AdmissionRecord, error) {
	lock := s.locks.acquire(admissionID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.repository.GetByID(ctx, admissionID)
	if err != nil {
		return nil, err
	}

	if rec.Status != types.AdmissionStatusDischargeScheduled {
		s.recordTransition(actionDischarged, "rejected")
		return nil, types.NewInvalidTransitionError("admission", string(rec.Status), string(types.AdmissionStatusDischarged))
	}

	report, err := s.readiness.Check(ctx, admissionID)
	if err != nil {
		return nil, err
	}

	action := actionDischarged
	if !report.Ready {
		if !override {
			s.recordTransition(actionDischarged, "blocked")
			return nil, types.NewIncompleteDischargeError(report.BlockingReasons)
		}
		action = actionDischargedForced
	}

	roomID := rec.RoomID
	rec.Status = types.AdmissionStatusDischarged
	rec.RoomID = ""
	s.appendHistory(rec, actor, action)

	if err := s.persist(ctx, rec); err != nil {
		s.recordTransition(actionDischarged, "conflict")
		return nil, err
	}

	if roomID != "" {
		if _, err := s.rooms.ReleaseRoom(ctx, roomID); err != nil {
			s.logger.WithRoom(roomID).WithError(err).Warn("Failed to release room on discharge")
		}
	}

	s.recordTransition(action, "applied")
	s.logger.Audit(actor, action, rec.AdmissionNumber, true, map[string]interface{}{
		"override":         action == actionDischargedForced,
		"blocking_reasons": report.BlockingReasons,
	})

	return rec, nil
}

// Cancel abandons an admission; allowed only from pre_admission
func (s *Service) Cancel(ctx context.Context, admissionID, actor string) (*types.AdmissionRecord, error) {
	return s.transition(ctx, admissionID, actor, actionCancelled, func(rec *types.AdmissionRecord) error {
		if rec.Status != types.AdmissionStatusPreAdmission {
			return types.NewInvalidTransitionError("admission", string(rec.Status), string(types.AdmissionStatusCancelled))
		}
		rec.Status = types.AdmissionStatusCancelled
		return nil
	})
}

// RecordDeposit registers a deposit payment. Collecting a deposit puts the
// discharge waiver document on the checklist.
func (s *Service) RecordDeposit(ctx context.Context, admissionID string, amount int64, actor string) (*types.AdmissionRecord, error) {
	if amount <= 0 {
		return nil, types.NewValidationError("deposit amount must be positive", []string{"amount"})
	}

	return s.transition(ctx, admissionID, actor, actionDepositRecorded, func(rec *types.AdmissionRecord) error {
		rec.Financials.DepositPaid += amount
		rec.Financials.Recompute()
		s.mergeChecklist(rec)
		return nil
	})
}

// AddInvoice appends a billable line to the admission
func (s *Service) AddInvoice(ctx context.Context, admissionID, label string, amount int64, actor string) (*types.AdmissionRecord, error) {
	fields := []string{}
	if label == "" {
		fields = append(fields, "label")
	}
	if amount <= 0 {
		fields = append(fields, "amount")
	}
	if len(fields) > 0 {
		return nil, types.NewValidationError("invalid invoice", fields)
	}

	return s.transition(ctx, admissionID, actor, actionInvoiceAdded, func(rec *types.AdmissionRecord) error {
		rec.Financials.Invoices = append(rec.Financials.Invoices, types.Invoice{
			ID:     uuid.New().String(),
			Label:  label,
			Amount: amount,
		})
		rec.Financials.Recompute()
		return nil
	})
}

// PayInvoice marks an invoice as paid and recomputes the balance
func (s *Service) PayInvoice(ctx context.Context, admissionID, invoiceID, actor string) (*types.AdmissionRecord, error) {
	return s.transition(ctx, admissionID, actor, actionInvoicePaid, func(rec *types.AdmissionRecord) error {
		for i := range rec.Financials.Invoices {
			if rec.Financials.Invoices[i].ID == invoiceID {
				rec.Financials.Invoices[i].Paid = true
				rec.Financials.Recompute()
				return nil
			}
		}
		return types.NewNotFoundError("invoice", invoiceID)
	})
}

// SetDocumentStatus updates one checklist entry
func (s *Service) SetDocumentStatus(ctx context.Context, admissionID, docType string, provided bool, actor string) (*types.AdmissionRecord, error) {
	status := types.DocumentMissing
	if provided {
		status = types.DocumentProvided
	}

	return s.transition(ctx, admissionID, actor, actionDocumentUpdated, func(rec *types.AdmissionRecord) error {
		for i := range rec.Documents {
			if rec.Documents[i].Type == docType {
				rec.Documents[i].Status = status
				return nil
			}
		}
		return types.NewNotFoundError("document", docType)
	})
}

// transition runs a mutation under the per-admission lock as one atomic,
// all-or-nothing update appending exactly one history entry
func (s *Service) transition(ctx context.Context, admissionID, actor, action string, mutate func(*types.AdmissionRecord) error) (*types.AdmissionRecord, error) {
	lock := s.locks.acquire(admissionID)
	lock.Lock()
	defer lock.Unlock()

	rec, err := s.repository.GetByID(ctx, admissionID)
	if err != nil {
		return nil, err
	}

	if err := mutate(rec); err != nil {
		s.recordTransition(action, "rejected")
		return nil, err
	}

	s.appendHistory(rec, actor, action)

	if err := s.persist(ctx, rec); err != nil {
		s.recordTransition(action, "conflict")
		return nil, err
	}

	s.recordTransition(action, "applied")
	s.logger.Audit(actor, action, rec.AdmissionNumber, true, nil)

	return rec, nil
}

// persist writes the record through the version-stamped update, translating a
// lost race into a typed conflict
func (s *Service) persist(ctx context.Context, rec *types.AdmissionRecord) error {
	updated, err := s.repository.Update(ctx, rec)
	if err != nil {
		return err
	}
	if !updated {
		return types.NewConflictError("admission", rec.ID)
	}
	rec.Version++
	return nil
}

// mergeChecklist adds newly required policy documents (such as the deposit
// waiver) without disturbing existing checklist state
func (s *Service) mergeChecklist(rec *types.AdmissionRecord) {
	existing := map[string]bool{}
	for _, doc := range rec.Documents {
		existing[doc.Type] = true
	}
	for _, doc := range s.readiness.RequiredDocuments(rec.Origin, rec.Financials.DepositPaid > 0) {
		if !existing[doc.Type] {
			rec.Documents = append(rec.Documents, doc)
		}
	}
}

func (s *Service) appendHistory(rec *types.AdmissionRecord, actor, action string) {
	rec.History = append(rec.History, types.HistoryEntry{
		Timestamp: time.Now(),
		Actor:     actor,
		Action:    action,
	})
}

// rollbackAllocation returns a just-taken bed to free after the admission
// update failed
func (s *Service) rollbackAllocation(ctx context.Context, roomID string) {
	if _, err := s.rooms.ReleaseRoom(ctx, roomID); err != nil {
		s.logger.WithRoom(roomID).WithError(err).Error("Failed to roll back room allocation")
		return
	}
	if _, err := s.rooms.MarkReady(ctx, roomID); err != nil {
		s.logger.WithRoom(roomID).WithError(err).Error("Failed to return rolled-back room to free")
	}
}

func (s *Service) recordTransition(action, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordAdmissionTransition(action, outcome)
	}
}

// validateIntake checks every required intake field and returns the full list
// of missing ones
func validateIntake(req *types.CreateAdmissionRequest) []string {
	missing := []string{}

	switch req.Origin {
	case types.OriginEmergency, types.OriginScheduled, types.OriginDayHospital, types.OriginTransfer:
	default:
		missing = append(missing, "origin")
	}

	if req.Patient.LastName == "" {
		missing = append(missing, "last_name")
	}
	if req.Patient.FirstName == "" {
		missing = append(missing, "first_name")
	}
	if req.Patient.BirthDate.IsZero() {
		missing = append(missing, "birth_date")
	}
	if req.Patient.Sex == "" {
		missing = append(missing, "sex")
	}
	if req.Patient.Phone == "" {
		missing = append(missing, "phone")
	}
	if req.Patient.EmergencyContactName == "" {
		missing = append(missing, "emergency_contact_name")
	}
	if req.Patient.EmergencyContactPhone == "" {
		missing = append(missing, "emergency_contact_phone")
	}
	if req.Patient.EmergencyContactRelation == "" {
		missing = append(missing, "emergency_contact_relation")
	}
	if req.Department == "" {
		missing = append(missing, "department")
	}
	if req.Physician == "" {
		missing = append(missing, "physician")
	}
	if req.Reason == "" {
		missing = append(missing, "reason")
	}

	return missing
}
