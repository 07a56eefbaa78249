package admissions

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medrex/hospital-flow/pkg/database"
	"github.com/medrex/hospital-flow/pkg/logger"
	"github.com/medrex/hospital-flow/pkg/types"
)

func setupTestRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	repo := &Repository{
		db:     &database.DB{DB: sqlDB},
		logger: logger.New("debug"),
	}
	return repo, mock
}

func TestNextSequence_FirstOfDay(t *testing.T) {
	repo, mock := setupTestRepository(t)

	mock.ExpectQuery("INSERT INTO admission_counters").
		WithArgs("2026-03-15").
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(1))

	seq, err := repo.NextSequence(context.Background(), time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, 1, seq)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNextSequence_Increments(t *testing.T) {
	repo, mock := setupTestRepository(t)

	mock.ExpectQuery("INSERT INTO admission_counters").
		WithArgs("2026-03-15").
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(42))

	seq, err := repo.NextSequence(context.Background(), time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, 42, seq)
}

func TestUpdate_LostRaceReturnsFalse(t *testing.T) {
	repo, mock := setupTestRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE admissions SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	rec := &types.AdmissionRecord{
		ID:      "adm-1",
		Status:  types.AdmissionStatusAdmitted,
		Version: 3,
	}

	updated, err := repo.Update(context.Background(), rec)

	require.NoError(t, err)
	assert.False(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := setupTestRepository(t)

	mock.ExpectQuery("SELECT").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetByID(context.Background(), "missing")

	require.Error(t, err)
	hospitalErr, ok := err.(*types.HospitalError)
	require.True(t, ok)
	assert.Equal(t, types.ErrorTypeNotFound, hospitalErr.Type)
}
