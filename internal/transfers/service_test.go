package transfers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/medrex/hospital-flow/pkg/logger"
	"github.com/medrex/hospital-flow/pkg/types"
)

// MockTransferRepository is a mock implementation of TransferRepository
type MockTransferRepository struct {
	mock.Mock
}

func (m *MockTransferRepository) Create(ctx context.Context, req *types.TransferRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockTransferRepository) GetByID(ctx context.Context, id string) (*types.TransferRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.TransferRequest), args.Error(1)
}

func (m *MockTransferRepository) List(ctx context.Context, filters *types.TransferFilters) ([]*types.TransferRequest, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*types.TransferRequest), args.Error(1)
}

func (m *MockTransferRepository) UpdateStatus(ctx context.Context, req *types.TransferRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

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

func setupTestService() (*Service, *MockTransferRepository, *MockAdmissionRepository) {
	transferRepo := &MockTransferRepository{}
	admissionRepo := &MockAdmissionRepository{}
	service := &Service{
		repository: transferRepo,
		admissions: admissionRepo,
		logger:     logger.New("debug"),
	}
	return service, transferRepo, admissionRepo
}

func admittedPatient() *types.AdmissionRecord {
	return &types.AdmissionRecord{
		ID:              "adm-1",
		AdmissionNumber: "HOS-20260315-001",
		Patient:         types.PatientInfo{FirstName: "Jean", LastName: "Okome"},
		Department:      "cardiology",
		RoomID:          "room-1",
		Status:          types.AdmissionStatusAdmitted,
	}
}

func pendingTransfer() *types.TransferRequest {
	return &types.TransferRequest{
		ID:                    "tr-1",
		AdmissionID:           "adm-1",
		PatientName:           "Jean Okome",
		SourceDepartment:      "cardiology",
		DestinationDepartment: "intensive_care",
		Reason:                "requires monitoring",
		Status:                types.TransferPending,
		RequestedBy:           "physician",
		Version:               1,
	}
}

func TestCreate_EnrichesFromAdmission(t *testing.T) {
	service, transferRepo, admissionRepo := setupTestService()

	admissionRepo.On("GetByID", mock.Anything, "adm-1").Return(admittedPatient(), nil)
	transferRepo.On("Create", mock.Anything, mock.MatchedBy(func(req *types.TransferRequest) bool {
		return req.PatientName == "Jean Okome" &&
			req.SourceDepartment == "cardiology" &&
			req.SourceRoomID == "room-1" &&
			req.Status == types.TransferPending
	})).Return(nil)

	req, err := service.Create(context.Background(), &types.TransferRequest{
		AdmissionID:           "adm-1",
		DestinationDepartment: "intensive_care",
		Reason:                "requires monitoring",
	}, "physician")

	require.NoError(t, err)
	assert.Equal(t, "physician", req.RequestedBy)
	transferRepo.AssertExpectations(t)
}

func TestCreate_ValidationListsAllMissingFields(t *testing.T) {
	service, _, _ := setupTestService()

	_, err := service.Create(context.Background(), &types.TransferRequest{}, "physician")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeValidation, hospitalErr.Type)
	assert.ElementsMatch(t, []string{"admission_id", "destination_department", "reason"},
		hospitalErr.Details["fields"])
}

func TestCreate_RequiresAdmittedPatient(t *testing.T) {
	service, transferRepo, admissionRepo := setupTestService()

	rec := admittedPatient()
	rec.Status = types.AdmissionStatusDischarged
	admissionRepo.On("GetByID", mock.Anything, "adm-1").Return(rec, nil)

	_, err := service.Create(context.Background(), &types.TransferRequest{
		AdmissionID:           "adm-1",
		DestinationDepartment: "intensive_care",
		Reason:                "requires monitoring",
	}, "physician")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeInvalidTransition, hospitalErr.Type)
	transferRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreate_RejectsSameDepartment(t *testing.T) {
	service, _, admissionRepo := setupTestService()

	admissionRepo.On("GetByID", mock.Anything, "adm-1").Return(admittedPatient(), nil)

	_, err := service.Create(context.Background(), &types.TransferRequest{
		AdmissionID:           "adm-1",
		DestinationDepartment: "cardiology",
		Reason:                "requires monitoring",
	}, "physician")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeValidation, hospitalErr.Type)
}

func TestApprove_Success(t *testing.T) {
	service, transferRepo, _ := setupTestService()

	transferRepo.On("GetByID", mock.Anything, "tr-1").Return(pendingTransfer(), nil)
	transferRepo.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(req *types.TransferRequest) bool {
		return req.Status == types.TransferApproved && req.DecidedBy == "chief"
	})).Return(true, nil)

	req, err := service.Approve(context.Background(), "tr-1", "chief")

	require.NoError(t, err)
	assert.Equal(t, types.TransferApproved, req.Status)
}

func TestApprove_DecisionsAreFinal(t *testing.T) {
	service, transferRepo, _ := setupTestService()

	decided := pendingTransfer()
	decided.Status = types.TransferRejected
	transferRepo.On("GetByID", mock.Anything, "tr-1").Return(decided, nil)

	_, err := service.Approve(context.Background(), "tr-1", "chief")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeInvalidTransition, hospitalErr.Type)
	transferRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
}

func TestApprove_LostRaceIsConflict(t *testing.T) {
	service, transferRepo, _ := setupTestService()

	transferRepo.On("GetByID", mock.Anything, "tr-1").Return(pendingTransfer(), nil)
	transferRepo.On("UpdateStatus", mock.Anything, mock.Anything).Return(false, nil)

	_, err := service.Approve(context.Background(), "tr-1", "chief")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeConflict, hospitalErr.Type)
}

func TestReject_RequiresReason(t *testing.T) {
	service, transferRepo, _ := setupTestService()

	_, err := service.Reject(context.Background(), "tr-1", "chief", "")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeValidation, hospitalErr.Type)
	transferRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestReject_Success(t *testing.T) {
	service, transferRepo, _ := setupTestService()

	transferRepo.On("GetByID", mock.Anything, "tr-1").Return(pendingTransfer(), nil)
	transferRepo.On("UpdateStatus", mock.Anything, mock.MatchedBy(func(req *types.TransferRequest) bool {
		return req.Status == types.TransferRejected && req.DecisionReason == "no bed available"
	})).Return(true, nil)

	req, err := service.Reject(context.Background(), "tr-1", "chief", "no bed available")

	require.NoError(t, err)
	assert.Equal(t, types.TransferRejected, req.Status)
	assert.Equal(t, "no bed available", req.DecisionReason)
}

func TestListPending_FiltersOnPendingStatus(t *testing.T) {
	service, transferRepo, _ := setupTestService()

	transferRepo.On("List", mock.Anything, &types.TransferFilters{Status: types.TransferPending}).
		Return([]*types.TransferRequest{pendingTransfer()}, nil)

	requests, err := service.ListPending(context.Background())

	require.NoError(t, err)
	assert.Len(t, requests, 1)
	transferRepo.AssertExpectations(t)
}
