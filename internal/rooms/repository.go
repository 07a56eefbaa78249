package rooms

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/medrex/hospital-flow/pkg/database"
	"github.com/medrex/hospital-flow/pkg/interfaces"
	"github.com/medrex/hospital-flow/pkg/logger"
	"github.com/medrex/hospital-flow/pkg/types"
)

// Repository implements the RoomRepository interface on PostgreSQL
type Repository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewRepository creates a new room repository
func NewRepository(db *database.DB, log *logger.Logger) interfaces.RoomRepository {
	return &Repository{
		db:     db,
		logger: log,
	}
}

const roomColumns = `
	id, number, floor, department, category, beds, status, equipment,
	daily_rate, note, next_availability,
	occupant_admission_id, occupant_patient_name, occupant_admission_date,
	occupant_physician, occupant_expected_discharge,
	version, created_at, updated_at`

// Create inserts a new room
func (r *Repository) Create(ctx context.Context, room *types.Room) error {
	if room.ID == "" {
		room.ID = uuid.New().String()
	}
	if room.Status == "" {
		room.Status = types.RoomStatusFree
	}

	query := `
		INSERT INTO rooms (id, number, floor, department, category, beds, status, equipment, daily_rate, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		room.ID,
		room.Number,
		room.Floor,
		room.Department,
		room.Category,
		room.Beds,
		room.Status,
		pq.Array([]string(room.Equipment)),
		room.DailyRate,
		room.Note,
	)
	if err != nil {
		r.logger.WithError(err).Errorf("Failed to create room %s", room.Number)
		return fmt.Errorf("failed to create room: %w", err)
	}

	return nil
}

// GetByID retrieves a room by ID
func (r *Repository) GetByID(ctx context.Context, id string) (*types.Room, error) {
	query := `SELECT` + roomColumns + ` FROM rooms WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	room, err := scanRoom(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.NewNotFoundError("room", id)
		}
		r.logger.WithError(err).Errorf("Failed to get room %s", id)
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return room, nil
}

// List retrieves rooms matching the filters, grouped by floor ascending then
// room number ascending
func (r *Repository) List(ctx context.Context, filters *types.RoomFilters) ([]*types.Room, error) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filters.Floor != nil {
		conditions = append(conditions, fmt.Sprintf("floor = $%d", argIndex))
		args = append(args, *filters.Floor)
		argIndex++
	}
	if filters.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", argIndex))
		args = append(args, filters.Department)
		argIndex++
	}
	if filters.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argIndex))
		args = append(args, filters.Category)
		argIndex++
	}
	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filters.Status)
		argIndex++
	}
	if filters.SearchTerm != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(number ILIKE $%d OR department ILIKE $%d OR occupant_patient_name ILIKE $%d)",
			argIndex, argIndex, argIndex))
		args = append(args, "%"+filters.SearchTerm+"%")
		argIndex++
	}

	query := `SELECT` + roomColumns + ` FROM rooms`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY floor ASC, number ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).Error("Failed to list rooms")
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	rooms := []*types.Room{}
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

// CompareAndSwapStatus atomically applies the status update if the room is
// still in the expected status at the expected version. The occupant summary
// and the status move in one write so the occupied-iff-occupant invariant
// holds at every observable point.
func (r *Repository) CompareAndSwapStatus(ctx context.Context, id string, expected types.RoomStatus, version int64, update *types.RoomStatusUpdate) (bool, error) {
	query := `
		UPDATE rooms SET
			status = $1,
			occupant_admission_id = $2,
			occupant_patient_name = $3,
			occupant_admission_date = $4,
			occupant_physician = $5,
			occupant_expected_discharge = $6,
			note = $7,
			next_availability = $8,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $9 AND status = $10 AND version = $11`

	var (
		admissionID       sql.NullString
		patientName       sql.NullString
		admissionDate     sql.NullTime
		physician         sql.NullString
		expectedDischarge sql.NullTime
	)
	if occ := update.Occupant; occ != nil {
		admissionID = sql.NullString{String: occ.AdmissionID, Valid: true}
		patientName = sql.NullString{String: occ.PatientName, Valid: true}
		admissionDate = sql.NullTime{Time: occ.AdmissionDate, Valid: true}
		physician = sql.NullString{String: occ.Physician, Valid: true}
		if occ.ExpectedDischarge != nil {
			expectedDischarge = sql.NullTime{Time: *occ.ExpectedDischarge, Valid: true}
		}
	}

	var nextAvailability sql.NullTime
	if update.NextAvailability != nil {
		nextAvailability = sql.NullTime{Time: *update.NextAvailability, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		update.Status,
		admissionID,
		patientName,
		admissionDate,
		physician,
		expectedDischarge,
		update.Note,
		nextAvailability,
		id,
		expected,
		version,
	)
	if err != nil {
		r.logger.WithError(err).Errorf("Failed to update room %s status", id)
		return false, fmt.Errorf("failed to update room status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return affected == 1, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanRoom
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRoom(s scanner) (*types.Room, error) {
	var (
		room              types.Room
		note              sql.NullString
		nextAvailability  sql.NullTime
		admissionID       sql.NullString
		patientName       sql.NullString
		admissionDate     sql.NullTime
		physician         sql.NullString
		expectedDischarge sql.NullTime
	)

	err := s.Scan(
		&room.ID,
		&room.Number,
		&room.Floor,
		&room.Department,
		&room.Category,
		&room.Beds,
		&room.Status,
		&room.Equipment,
		&room.DailyRate,
		&note,
		&nextAvailability,
		&admissionID,
		&patientName,
		&admissionDate,
		&physician,
		&expectedDischarge,
		&room.Version,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	room.Note = note.String
	if nextAvailability.Valid {
		t := nextAvailability.Time
		room.NextAvailability = &t
	}

	if admissionID.Valid {
		occ := &types.OccupantSummary{
			AdmissionID:   admissionID.String,
			PatientName:   patientName.String,
			AdmissionDate: admissionDate.Time,
			Physician:     physician.String,
		}
		if expectedDischarge.Valid {
			t := expectedDischarge.Time
			occ.ExpectedDischarge = &t
		}
		room.Occupant = occ
	}

	return &room, nil
}
