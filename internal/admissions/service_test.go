package admissions

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/medrex/hospital-flow/pkg/interfaces"
	"github.com/medrex/hospital-flow/pkg/logger"
	"github.com/medrex/hospital-flow/pkg/types"
)

// MockAdmissionRepository is a mock implementation of AdmissionRepository
type MockAdmissionRepository struct {
	mock.Mock
}

func (m *MockAdmissionRepository) Create(ctx context.Context, rec *types.AdmissionRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockAdmissionRepository) GetByID(ctx context.Context, id string) (*types.AdmissionRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AdmissionRecord), args.Error(1)
}

func (m *MockAdmissionRepository) List(ctx context.Context, filters *types.AdmissionFilters) ([]*types.AdmissionRecord, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*types.AdmissionRecord), args.Error(1)
}

func (m *MockAdmissionRepository) Update(ctx context.Context, rec *types.AdmissionRecord) (bool, error) {
	args := m.Called(ctx, rec)
	return args.Bool(0), args.Error(1)
}

func (m *MockAdmissionRepository) NextSequence(ctx context.Context, day time.Time) (int, error) {
	args := m.Called(ctx, day)
	return args.Int(0), args.Error(1)
}

// MockRoomService is a mock implementation of RoomInventoryService
type MockRoomService struct {
	mock.Mock
}

func (m *MockRoomService) ListRooms(ctx context.Context, filters *types.RoomFilters) ([]*types.Room, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*types.Room), args.Error(1)
}

func (m *MockRoomService) GetRoom(ctx context.Context, roomID string) (*types.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Room), args.Error(1)
}

func (m *MockRoomService) AllocateRoom(ctx context.Context, roomID string, occupant *types.OccupantSummary) (*types.Room, error) {
	args := m.Called(ctx, roomID, occupant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Room), args.Error(1)
}

func (m *MockRoomService) ReleaseRoom(ctx context.Context, roomID string) (*types.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Room), args.Error(1)
}

func (m *MockRoomService) MarkReady(ctx context.Context, roomID string) (*types.Room, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Room), args.Error(1)
}

func (m *MockRoomService) Reserve(ctx context.Context, roomID, note string) (*types.Room, error) {
	args := m.Called(ctx, roomID, note)
	return args.Get(0).(*types.Room), args.Error(1)
}

func (m *MockRoomService) SendToMaintenance(ctx context.Context, roomID, note string) (*types.Room, error) {
	args := m.Called(ctx, roomID, note)
	return args.Get(0).(*types.Room), args.Error(1)
}

// MockInsuranceService is a mock implementation of InsuranceVerificationService
type MockInsuranceService struct {
	mock.Mock
}

func (m *MockInsuranceService) Verify(ctx context.Context, insuranceType, insuredNumber string) (*types.VerificationResult, error) {
	args := m.Called(ctx, insuranceType, insuredNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.VerificationResult), args.Error(1)
}

func (m *MockInsuranceService) ComputePatientShare(estimatedCost int64, coverageRatePercent int) int64 {
	args := m.Called(estimatedCost, coverageRatePercent)
	return args.Get(0).(int64)
}

// MockReadinessService is a mock implementation of DischargeReadinessService
type MockReadinessService struct {
	mock.Mock
}

func (m *MockReadinessService) Check(ctx context.Context, admissionID string) (*interfaces.ReadinessReport, error) {
	args := m.Called(ctx, admissionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.ReadinessReport), args.Error(1)
}

func (m *MockReadinessService) RequiredDocuments(origin types.AdmissionOrigin, depositCollected bool) []types.DocumentItem {
	args := m.Called(origin, depositCollected)
	return args.Get(0).([]types.DocumentItem)
}

type testDeps struct {
	repo      *MockAdmissionRepository
	rooms     *MockRoomService
	insurance *MockInsuranceService
	readiness *MockReadinessService
}

func setupWorkflow() (*Service, *testDeps) {
	deps := &testDeps{
		repo:      &MockAdmissionRepository{},
		rooms:     &MockRoomService{},
		insurance: &MockInsuranceService{},
		readiness: &MockReadinessService{},
	}
	service := &Service{
		repository: deps.repo,
		rooms:      deps.rooms,
		insurance:  deps.insurance,
		readiness:  deps.readiness,
		logger:     logger.New("debug"),
		locks:      newLockTable(),
	}
	return service, deps
}

func validIntake() *types.CreateAdmissionRequest {
	return &types.CreateAdmissionRequest{
		Origin: types.OriginEmergency,
		Patient: types.PatientInfo{
			LastName:                 "Okome",
			FirstName:                "Jean",
			BirthDate:                time.Date(1985, 6, 12, 0, 0, 0, 0, time.UTC),
			Sex:                      "M",
			Phone:                    "+24106223344",
			EmergencyContactName:     "Marie Okome",
			EmergencyContactPhone:    "+24106556677",
			EmergencyContactRelation: "spouse",
		},
		Department:        "cardiology",
		Physician:         "Dr. Nze",
		Reason:            "chest pain",
		EstimatedStayCost: 450000,
		InsuranceType:     "cnamgs",
		InsuredNumber:     "GA-123456",
	}
}

func baseRecord(status types.AdmissionStatus) *types.AdmissionRecord {
	return &types.AdmissionRecord{
		ID:              "adm-1",
		AdmissionNumber: "HOS-20260315-001",
		Patient: types.PatientInfo{
			LastName:  "Okome",
			FirstName: "Jean",
		},
		Origin:     types.OriginEmergency,
		Department: "cardiology",
		Physician:  "Dr. Nze",
		Status:     status,
		Financials: types.FinancialSummary{
			EstimatedStayCost:  450000,
			OutstandingBalance: 450000,
			Invoices:           []types.Invoice{},
		},
		Documents: []types.DocumentItem{
			{Type: "identity_document", Required: true, Status: types.DocumentMissing},
		},
		History: []types.HistoryEntry{
			{Actor: "clerk", Action: actionCreated},
		},
		Version: 1,
	}
}

func TestCreate_ValidationListsAllMissingFields(t *testing.T) {
	service, _ := setupWorkflow()

	_, err := service.Create(context.Background(), &types.CreateAdmissionRequest{}, "clerk")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeValidation, hospitalErr.Type)

	fields := hospitalErr.Details["fields"].([]string)
	assert.Contains(t, fields, "origin")
	assert.Contains(t, fields, "last_name")
	assert.Contains(t, fields, "first_name")
	assert.Contains(t, fields, "birth_date")
	assert.Contains(t, fields, "emergency_contact_phone")
	assert.Contains(t, fields, "department")
	assert.Contains(t, fields, "physician")
	assert.Contains(t, fields, "reason")
}

func TestCreate_Success(t *testing.T) {
	service, deps := setupWorkflow()

	deps.repo.On("NextSequence", mock.Anything, mock.AnythingOfType("time.Time")).Return(4, nil)
	deps.readiness.On("RequiredDocuments", types.OriginEmergency, false).Return([]types.DocumentItem{
		{Type: "identity_document", Required: true, Status: types.DocumentMissing},
		{Type: "discharge_summary", Required: true, Status: types.DocumentMissing},
	})
	deps.repo.On("Create", mock.Anything, mock.AnythingOfType("*types.AdmissionRecord")).Return(nil)

	rec, err := service.Create(context.Background(), validIntake(), "clerk")

	require.NoError(t, err)
	assert.Equal(t, types.AdmissionStatusPreAdmission, rec.Status)
	assert.True(t, strings.HasPrefix(rec.AdmissionNumber, "HOS-"))
	assert.True(t, strings.HasSuffix(rec.AdmissionNumber, "-004"))
	assert.Len(t, rec.Documents, 2)
	assert.Equal(t, int64(450000), rec.Financials.OutstandingBalance)

	require.NotNil(t, rec.Insurance)
	assert.Equal(t, types.VerificationUnverified, rec.Insurance.Status)

	require.Len(t, rec.History, 1)
	assert.Equal(t, actionCreated, rec.History[0].Action)
	assert.Equal(t, "clerk", rec.History[0].Actor)
}

func TestAssignRoom_AdmitsFromPreAdmission(t *testing.T) {
	service, deps := setupWorkflow()

	rec := baseRecord(types.AdmissionStatusPreAdmission)
	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(rec, nil)
	deps.rooms.On("AllocateRoom", mock.Anything, "room-1", mock.MatchedBy(func(occ *types.OccupantSummary) bool {
		return occ.AdmissionID == "adm-1" && occ.PatientName == "Jean Okome"
	})).Return(&types.Room{ID: "room-1", Status: types.RoomStatusOccupied}, nil)
	deps.repo.On("Update", mock.Anything, mock.MatchedBy(func(r *types.AdmissionRecord) bool {
		return r.Status == types.AdmissionStatusAdmitted && r.RoomID == "room-1"
	})).Return(true, nil)

	result, err := service.AssignRoom(context.Background(), "adm-1", "room-1", "clerk")

	require.NoError(t, err)
	assert.Equal(t, types.AdmissionStatusAdmitted, result.Status)
	assert.Equal(t, "room-1", result.RoomID)
	assert.Equal(t, actionRoomAssigned, result.History[len(result.History)-1].Action)
	deps.rooms.AssertExpectations(t)
}

func TestAssignRoom_RoomUnavailablePropagates(t *testing.T) {
	service, deps := setupWorkflow()

	rec := baseRecord(types.AdmissionStatusPreAdmission)
	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(rec, nil)
	deps.rooms.On("AllocateRoom", mock.Anything, "room-1", mock.Anything).
		Return(nil, types.NewRoomUnavailableError("room-1", types.RoomStatusOccupied))

	_, err := service.AssignRoom(context.Background(), "adm-1", "room-1", "clerk")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeRoomUnavailable, hospitalErr.Type)
	deps.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestAssignRoom_RollsBackAllocationOnLostUpdate(t *testing.T) {
	service, deps := setupWorkflow()

	rec := baseRecord(types.AdmissionStatusPreAdmission)
	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(rec, nil)
	deps.rooms.On("AllocateRoom", mock.Anything, "room-1", mock.Anything).
		Return(&types.Room{ID: "room-1", Status: types.RoomStatusOccupied}, nil)
	deps.repo.On("Update", mock.Anything, mock.Anything).Return(false, nil)

	// The bed is returned through the normal turnover path.
	deps.rooms.On("ReleaseRoom", mock.Anything, "room-1").
		Return(&types.Room{ID: "room-1", Status: types.RoomStatusCleaning}, nil)
	deps.rooms.On("MarkReady", mock.Anything, "room-1").
		Return(&types.Room{ID: "room-1", Status: types.RoomStatusFree}, nil)

	_, err := service.AssignRoom(context.Background(), "adm-1", "room-1", "clerk")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeConflict, hospitalErr.Type)
	deps.rooms.AssertCalled(t, "ReleaseRoom", mock.Anything, "room-1")
	deps.rooms.AssertCalled(t, "MarkReady", mock.Anything, "room-1")
}

func TestAssignRoom_RejectedAfterDischarge(t *testing.T) {
	service, deps := setupWorkflow()

	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(baseRecord(types.AdmissionStatusDischarged), nil)

	_, err := service.AssignRoom(context.Background(), "adm-1", "room-1", "clerk")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeInvalidTransition, hospitalErr.Type)
	deps.rooms.AssertNotCalled(t, "AllocateRoom", mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduleDischarge_OnlyFromAdmitted(t *testing.T) {
	service, deps := setupWorkflow()

	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(baseRecord(types.AdmissionStatusPreAdmission), nil)

	_, err := service.ScheduleDischarge(context.Background(), "adm-1", time.Now().Add(48*time.Hour), "physician")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeInvalidTransition, hospitalErr.Type)
}

func TestScheduleDischarge_Success(t *testing.T) {
	service, deps := setupWorkflow()

	expected := time.Now().Add(48 * time.Hour)
	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(baseRecord(types.AdmissionStatusAdmitted), nil)
	deps.repo.On("Update", mock.Anything, mock.Anything).Return(true, nil)

	rec, err := service.ScheduleDischarge(context.Background(), "adm-1", expected, "physician")

	require.NoError(t, err)
	assert.Equal(t, types.AdmissionStatusDischargeScheduled, rec.Status)
	require.NotNil(t, rec.ExpectedDischarge)
	assert.True(t, rec.ExpectedDischarge.Equal(expected))
}

func TestFinalizeDischarge_BlockedReportsAllReasons(t *testing.T) {
	service, deps := setupWorkflow()

	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(baseRecord(types.AdmissionStatusDischargeScheduled), nil)
	deps.readiness.On("Check", mock.Anything, "adm-1").Return(&interfaces.ReadinessReport{
		Ready:           false,
		BlockingReasons: []string{"balance_due>0", "missing_document:identity_document"},
	}, nil)

	_, err := service.FinalizeDischarge(context.Background(), "adm-1", false, "clerk")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeIncompleteDischarge, hospitalErr.Type)
	assert.Equal(t, []string{"balance_due>0", "missing_document:identity_document"},
		hospitalErr.Details["blocking_reasons"])
	deps.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestFinalizeDischarge_Success(t *testing.T) {
	service, deps := setupWorkflow()

	rec := baseRecord(types.AdmissionStatusDischargeScheduled)
	rec.RoomID = "room-1"
	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(rec, nil)
	deps.readiness.On("Check", mock.Anything, "adm-1").Return(&interfaces.ReadinessReport{Ready: true, BlockingReasons: []string{}}, nil)
	deps.repo.On("Update", mock.Anything, mock.MatchedBy(func(r *types.AdmissionRecord) bool {
		return r.Status == types.AdmissionStatusDischarged && r.RoomID == ""
	})).Return(true, nil)
	deps.rooms.On("ReleaseRoom", mock.Anything, "room-1").
		Return(&types.Room{ID: "room-1", Status: types.RoomStatusCleaning}, nil)

	result, err := service.FinalizeDischarge(context.Background(), "adm-1", false, "clerk")

	require.NoError(t, err)
	assert.Equal(t, types.AdmissionStatusDischarged, result.Status)
	assert.Empty(t, result.RoomID)
	assert.Equal(t, actionDischarged, result.History[len(result.History)-1].Action)
	deps.rooms.AssertCalled(t, "ReleaseRoom", mock.Anything, "room-1")
}

func TestFinalizeDischarge_OverrideBypassesBlockers(t *testing.T) {
	service, deps := setupWorkflow()

	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(baseRecord(types.AdmissionStatusDischargeScheduled), nil)
	deps.readiness.On("Check", mock.Anything, "adm-1").Return(&interfaces.ReadinessReport{
		Ready:           false,
		BlockingReasons: []string{"balance_due>0"},
	}, nil)
	deps.repo.On("Update", mock.Anything, mock.Anything).Return(true, nil)

	result, err := service.FinalizeDischarge(context.Background(), "adm-1", true, "admin")

	require.NoError(t, err)
	assert.Equal(t, types.AdmissionStatusDischarged, result.Status)
	assert.Equal(t, actionDischargedForced, result.History[len(result.History)-1].Action)
}

func TestFinalizeDischarge_OnlyFromScheduled(t *testing.T) {
	service, deps := setupWorkflow()

	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(baseRecord(types.AdmissionStatusAdmitted), nil)

	_, err := service.FinalizeDischarge(context.Background(), "adm-1", false, "clerk")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeInvalidTransition, hospitalErr.Type)
	deps.readiness.AssertNotCalled(t, "Check", mock.Anything, mock.Anything)
}

func TestCancel_OnlyFromPreAdmission(t *testing.T) {
	service, deps := setupWorkflow()

	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(baseRecord(types.AdmissionStatusAdmitted), nil)

	_, err := service.Cancel(context.Background(), "adm-1", "clerk")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeInvalidTransition, hospitalErr.Type)
}

func TestCancel_Success(t *testing.T) {
	service, deps := setupWorkflow()

	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(baseRecord(types.AdmissionStatusPreAdmission), nil)
	deps.repo.On("Update", mock.Anything, mock.Anything).Return(true, nil)

	rec, err := service.Cancel(context.Background(), "adm-1", "clerk")

	require.NoError(t, err)
	assert.Equal(t, types.AdmissionStatusCancelled, rec.Status)
}

func TestRecordDeposit_AddsWaiverToChecklist(t *testing.T) {
	service, deps := setupWorkflow()

	rec := baseRecord(types.AdmissionStatusAdmitted)
	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(rec, nil)
	deps.readiness.On("RequiredDocuments", types.OriginEmergency, true).Return([]types.DocumentItem{
		{Type: "identity_document", Required: true, Status: types.DocumentMissing},
		{Type: "decharge", Required: true, Status: types.DocumentMissing},
	})
	deps.repo.On("Update", mock.Anything, mock.Anything).Return(true, nil)

	result, err := service.RecordDeposit(context.Background(), "adm-1", 100000, "cashier")

	require.NoError(t, err)
	assert.Equal(t, int64(100000), result.Financials.DepositPaid)
	assert.Equal(t, int64(350000), result.Financials.OutstandingBalance)

	docTypes := []string{}
	for _, doc := range result.Documents {
		docTypes = append(docTypes, doc.Type)
	}
	assert.Contains(t, docTypes, "decharge")
}

func TestRecordDeposit_RejectsNonPositiveAmount(t *testing.T) {
	service, _ := setupWorkflow()

	_, err := service.RecordDeposit(context.Background(), "adm-1", 0, "cashier")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeValidation, hospitalErr.Type)
}

func TestAddInvoice_ReportsAllInvalidFields(t *testing.T) {
	service, _ := setupWorkflow()

	_, err := service.AddInvoice(context.Background(), "adm-1", "", 0, "cashier")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"label", "amount"}, hospitalErr.Details["fields"])
}

func TestPayInvoice_RecomputesBalance(t *testing.T) {
	service, deps := setupWorkflow()

	rec := baseRecord(types.AdmissionStatusAdmitted)
	rec.Financials.Invoices = []types.Invoice{
		{ID: "inv-1", Label: "radiology", Amount: 50000},
	}
	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(rec, nil)
	deps.repo.On("Update", mock.Anything, mock.Anything).Return(true, nil)

	result, err := service.PayInvoice(context.Background(), "adm-1", "inv-1", "cashier")

	require.NoError(t, err)
	assert.True(t, result.Financials.Invoices[0].Paid)
	assert.Equal(t, int64(400000), result.Financials.OutstandingBalance)
}

func TestPayInvoice_UnknownInvoice(t *testing.T) {
	service, deps := setupWorkflow()

	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(baseRecord(types.AdmissionStatusAdmitted), nil)

	_, err := service.PayInvoice(context.Background(), "adm-1", "inv-missing", "cashier")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeNotFound, hospitalErr.Type)
	deps.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestSetDocumentStatus_UnknownDocument(t *testing.T) {
	service, deps := setupWorkflow()

	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(baseRecord(types.AdmissionStatusAdmitted), nil)

	_, err := service.SetDocumentStatus(context.Background(), "adm-1", "unknown_doc", true, "clerk")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeNotFound, hospitalErr.Type)
}

func TestVerifyInsurance_SnapshotsResult(t *testing.T) {
	service, deps := setupWorkflow()

	rec := baseRecord(types.AdmissionStatusAdmitted)
	rec.Insurance = &types.InsuranceSnapshot{
		Type:          "cnamgs",
		InsuredNumber: "GA-123456",
		Status:        types.VerificationUnverified,
	}
	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(rec, nil)
	deps.insurance.On("Verify", mock.Anything, "cnamgs", "GA-123456").Return(&types.VerificationResult{
		Status:           types.VerificationActive,
		Fund:             "public",
		RemainingCeiling: 1500000,
		CoverageRate:     80,
	}, nil)
	deps.repo.On("Update", mock.Anything, mock.Anything).Return(true, nil)

	snapshot, err := service.VerifyInsurance(context.Background(), "adm-1", "clerk")

	require.NoError(t, err)
	assert.Equal(t, types.VerificationActive, snapshot.Status)
	assert.Equal(t, 80, snapshot.CoverageRate)
	assert.Equal(t, int64(1500000), snapshot.RemainingCeiling)
	require.NotNil(t, snapshot.VerifiedAt)
}

func TestVerifyInsurance_FailureLeavesRecordUntouched(t *testing.T) {
	service, deps := setupWorkflow()

	rec := baseRecord(types.AdmissionStatusAdmitted)
	rec.Insurance = &types.InsuranceSnapshot{
		Type:          "cnamgs",
		InsuredNumber: "GA-123456",
		Status:        types.VerificationUnverified,
	}
	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(rec, nil)
	deps.insurance.On("Verify", mock.Anything, "cnamgs", "GA-123456").
		Return(nil, types.NewInsuranceVerificationError("insurance registry unreachable", assert.AnError))

	_, err := service.VerifyInsurance(context.Background(), "adm-1", "clerk")

	require.Error(t, err)
	deps.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestVerifyInsurance_NoIdentifiers(t *testing.T) {
	service, deps := setupWorkflow()

	deps.repo.On("GetByID", mock.Anything, "adm-1").Return(baseRecord(types.AdmissionStatusAdmitted), nil)

	_, err := service.VerifyInsurance(context.Background(), "adm-1", "clerk")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeValidation, hospitalErr.Type)
	deps.insurance.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything, mock.Anything)
}
