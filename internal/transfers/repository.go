package transfers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/medrex/hospital-flow/pkg/database"
	"github.com/medrex/hospital-flow/pkg/interfaces"
	"github.com/medrex/hospital-flow/pkg/logger"
	"github.com/medrex/hospital-flow/pkg/types"
)

// Repository implements the TransferRepository interface on PostgreSQL
type Repository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewRepository creates a new transfer repository
func NewRepository(db *database.DB, log *logger.Logger) interfaces.TransferRepository {
	return &Repository{
		db:     db,
		logger: log,
	}
}

const transferColumns = `
	id, admission_id, patient_name, source_department, source_room_id,
	destination_department, reason, status, requested_by, decided_by,
	decision_reason, request_date, version`

// Create inserts a new transfer request
func (r *Repository) Create(ctx context.Context, req *types.TransferRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	query := `
		INSERT INTO transfer_requests (
			id, admission_id, patient_name, source_department, source_room_id,
			destination_department, reason, status, requested_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING request_date`

	var sourceRoomID sql.NullString
	if req.SourceRoomID != "" {
		sourceRoomID = sql.NullString{String: req.SourceRoomID, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		req.ID,
		req.AdmissionID,
		req.PatientName,
		req.SourceDepartment,
		sourceRoomID,
		req.DestinationDepartment,
		req.Reason,
		req.Status,
		req.RequestedBy,
	).Scan(&req.RequestDate)
	if err != nil {
		r.logger.WithError(err).Error("Failed to create transfer request")
		return fmt.Errorf("failed to create transfer request: %w", err)
	}

	req.Version = 1
	return nil
}

// GetByID retrieves a transfer request by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*types.TransferRequest, error) {
	query := `SELECT` + transferColumns + ` FROM transfer_requests WHERE id = $1`

	req, err := scanTransfer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.NewNotFoundError("transfer", id)
		}
		r.logger.WithError(err).Errorf("Failed to get transfer %s", id)
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}

	return req, nil
}

// List retrieves transfer requests matching the filters, oldest request first
// so the pending queue reads in arrival order
func (r *Repository) List(ctx context.Context, filters *types.TransferFilters) ([]*types.TransferRequest, error) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filters.Status)
		argIndex++
	}
	if filters.Department != "" {
		conditions = append(conditions, fmt.Sprintf("(source_department = $%d OR destination_department = $%d)", argIndex, argIndex))
		args = append(args, filters.Department)
		argIndex++
	}
	if filters.AdmissionID != "" {
		conditions = append(conditions, fmt.Sprintf("admission_id = $%d", argIndex))
		args = append(args, filters.AdmissionID)
	}

	query := `SELECT` + transferColumns + ` FROM transfer_requests`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY request_date ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).Error("Failed to list transfer requests")
		return nil, fmt.Errorf("failed to list transfer requests: %w", err)
	}
	defer rows.Close()

	requests := []*types.TransferRequest{}
	for rows.Next() {
		req, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// UpdateStatus persists a decision if the stored version still matches
func (r *Repository) UpdateStatus(ctx context.Context, req *types.TransferRequest) (bool, error) {
	query := `
		UPDATE transfer_requests SET
			status = $1,
			decided_by = $2,
			decision_reason = $3,
			version = version + 1
		WHERE id = $4 AND version = $5`

	result, err := r.db.ExecContext(ctx, query,
		req.Status,
		req.DecidedBy,
		req.DecisionReason,
		req.ID,
		req.Version,
	)
	if err != nil {
		r.logger.WithError(err).Errorf("Failed to update transfer %s", req.ID)
		return false, fmt.Errorf("failed to update transfer: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return affected == 1, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanTransfer
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransfer(s scanner) (*types.TransferRequest, error) {
	var (
		req            types.TransferRequest
		sourceRoomID   sql.NullString
		decidedBy      sql.NullString
		decisionReason sql.NullString
	)

	err := s.Scan(
		&req.ID,
		&req.AdmissionID,
		&req.PatientName,
		&req.SourceDepartment,
		&sourceRoomID,
		&req.DestinationDepartment,
		&req.Reason,
		&req.Status,
		&req.RequestedBy,
		&decidedBy,
		&decisionReason,
		&req.RequestDate,
		&req.Version,
	)
	if err != nil {
		return nil, err
	}

	req.SourceRoomID = sourceRoomID.String
	req.DecidedBy = decidedBy.String
	req.DecisionReason = decisionReason.String

	return &req, nil
}
