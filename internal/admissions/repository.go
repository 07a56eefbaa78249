package admissions

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medrex/hospital-flow/pkg/database"
	"github.com/medrex/hospital-flow/pkg/interfaces"
	"github.com/medrex/hospital-flow/pkg/logger"
	"github.com/medrex/hospital-flow/pkg/types"
)

// Repository implements the AdmissionRepository interface on PostgreSQL
type Repository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewRepository creates a new admission repository
func NewRepository(db *database.DB, log *logger.Logger) interfaces.AdmissionRepository {
	return &Repository{
		db:     db,
		logger: log,
	}
}

const admissionColumns = `
	id, admission_number,
	patient_last_name, patient_first_name, patient_birth_date, patient_sex, patient_phone,
	emergency_contact_name, emergency_contact_phone, emergency_contact_relation,
	origin, admission_date, expected_discharge, department, physician, reason, room_id,
	insurance_type, insured_number, insurance_fund, remaining_ceiling, coverage_rate,
	verification_status, verified_at,
	estimated_stay_cost, deposit_paid, outstanding_balance,
	status, notes, version, created_at, updated_at`

// Create inserts a new admission with its document checklist and opening
// history entry in one transaction
func (r *Repository) Create(ctx context.Context, rec *types.AdmissionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO admissions (
			id, admission_number,
			patient_last_name, patient_first_name, patient_birth_date, patient_sex, patient_phone,
			emergency_contact_name, emergency_contact_phone, emergency_contact_relation,
			origin, admission_date, expected_discharge, department, physician, reason, room_id,
			insurance_type, insured_number, insurance_fund, remaining_ceiling, coverage_rate,
			verification_status, verified_at,
			estimated_stay_cost, deposit_paid, outstanding_balance, status, notes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29
		)`

	args := append([]interface{}{
		rec.ID,
		rec.AdmissionNumber,
		rec.Patient.LastName,
		rec.Patient.FirstName,
		rec.Patient.BirthDate,
		rec.Patient.Sex,
		rec.Patient.Phone,
		rec.Patient.EmergencyContactName,
		rec.Patient.EmergencyContactPhone,
		rec.Patient.EmergencyContactRelation,
		rec.Origin,
		rec.AdmissionDate,
		nullTime(rec.ExpectedDischarge),
		rec.Department,
		rec.Physician,
		rec.Reason,
		nullString(rec.RoomID),
	}, insuranceArgs(rec.Insurance)...)
	args = append(args,
		rec.Financials.EstimatedStayCost,
		rec.Financials.DepositPaid,
		rec.Financials.OutstandingBalance,
		rec.Status,
		rec.Notes,
	)

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithError(err).Errorf("Failed to create admission %s", rec.AdmissionNumber)
		return fmt.Errorf("failed to create admission: %w", err)
	}

	if err := writeDocuments(ctx, tx, rec); err != nil {
		return err
	}
	if err := writeInvoices(ctx, tx, rec); err != nil {
		return err
	}
	if err := appendHistoryRows(ctx, tx, rec.ID, rec.History); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit admission creation: %w", err)
	}

	rec.Version = 1
	return nil
}

// GetByID retrieves a full admission record including invoices, documents and
// history
func (r *Repository) GetByID(ctx context.Context, id string) (*types.AdmissionRecord, error) {
	query := `SELECT` + admissionColumns + ` FROM admissions WHERE id = $1`
	rec, err := scanAdmission(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.NewNotFoundError("admission", id)
		}
		r.logger.WithError(err).Errorf("Failed to get admission %s", id)
		return nil, fmt.Errorf("failed to get admission: %w", err)
	}

	if err := r.loadChildren(ctx, rec); err != nil {
		return nil, err
	}

	return rec, nil
}

// List retrieves admissions matching the filters, newest first. The child
// collections are not loaded; GetByID returns the full record.
func (r *Repository) List(ctx context.Context, filters *types.AdmissionFilters) ([]*types.AdmissionRecord, error) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filters.Status)
		argIndex++
	}
	if filters.Origin != "" {
		conditions = append(conditions, fmt.Sprintf("origin = $%d", argIndex))
		args = append(args, filters.Origin)
		argIndex++
	}
	if filters.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", argIndex))
		args = append(args, filters.Department)
		argIndex++
	}
	if !filters.FromDate.IsZero() {
		conditions = append(conditions, fmt.Sprintf("admission_date >= $%d", argIndex))
		args = append(args, filters.FromDate)
		argIndex++
	}
	if !filters.ToDate.IsZero() {
		conditions = append(conditions, fmt.Sprintf("admission_date <= $%d", argIndex))
		args = append(args, filters.ToDate)
		argIndex++
	}

	query := `SELECT` + admissionColumns + ` FROM admissions`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY admission_date DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filters.Limit)
		argIndex++
	}
	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).Error("Failed to list admissions")
		return nil, fmt.Errorf("failed to list admissions: %w", err)
	}
	defer rows.Close()

	records := []*types.AdmissionRecord{}
	for rows.Next() {
		rec, err := scanAdmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admission: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Update persists the record if the stored version still matches, rewriting
// the invoice and document child rows and appending any new history entries.
// Returns false without error when another writer got there first.
func (r *Repository) Update(ctx context.Context, rec *types.AdmissionRecord) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE admissions SET
			expected_discharge = $1,
			room_id = $2,
			insurance_type = $3,
			insured_number = $4,
			insurance_fund = $5,
			remaining_ceiling = $6,
			coverage_rate = $7,
			verification_status = $8,
			verified_at = $9,
			estimated_stay_cost = $10,
			deposit_paid = $11,
			outstanding_balance = $12,
			status = $13,
			notes = $14,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $15 AND version = $16`

	args := append([]interface{}{
		nullTime(rec.ExpectedDischarge),
		nullString(rec.RoomID),
	}, insuranceArgs(rec.Insurance)...)
	args = append(args,
		rec.Financials.EstimatedStayCost,
		rec.Financials.DepositPaid,
		rec.Financials.OutstandingBalance,
		rec.Status,
		rec.Notes,
		rec.ID,
		rec.Version,
	)

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithError(err).Errorf("Failed to update admission %s", rec.ID)
		return false, fmt.Errorf("failed to update admission: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM admission_documents WHERE admission_id = $1`, rec.ID); err != nil {
		return false, fmt.Errorf("failed to clear documents: %w", err)
	}
	if err := writeDocuments(ctx, tx, rec); err != nil {
		return false, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM admission_invoices WHERE admission_id = $1`, rec.ID); err != nil {
		return false, fmt.Errorf("failed to clear invoices: %w", err)
	}
	if err := writeInvoices(ctx, tx, rec); err != nil {
		return false, err
	}

	var stored int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM admission_history WHERE admission_id = $1`, rec.ID,
	).Scan(&stored); err != nil {
		return false, fmt.Errorf("failed to count history: %w", err)
	}
	if stored < len(rec.History) {
		if err := appendHistoryRows(ctx, tx, rec.ID, rec.History[stored:]); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit admission update: %w", err)
	}

	return true, nil
}

// NextSequence atomically reserves the next daily admission sequence via an
// upsert on the per-day counter row
func (r *Repository) NextSequence(ctx context.Context, day time.Time) (int, error) {
	query := `
		INSERT INTO admission_counters (day, seq) VALUES ($1, 1)
		ON CONFLICT (day) DO UPDATE SET seq = admission_counters.seq + 1
		RETURNING seq`

	var seq int
	if err := r.db.QueryRowContext(ctx, query, day.Format("2006-01-02")).Scan(&seq); err != nil {
		r.logger.WithError(err).Error("Failed to reserve admission sequence")
		return 0, fmt.Errorf("failed to reserve admission sequence: %w", err)
	}

	return seq, nil
}

// loadChildren fills the invoice, document and history collections
func (r *Repository) loadChildren(ctx context.Context, rec *types.AdmissionRecord) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, label, amount, paid FROM admission_invoices WHERE admission_id = $1 ORDER BY position ASC`,
		rec.ID)
	if err != nil {
		return fmt.Errorf("failed to load invoices: %w", err)
	}
	defer rows.Close()

	rec.Financials.Invoices = []types.Invoice{}
	for rows.Next() {
		var inv types.Invoice
		if err := rows.Scan(&inv.ID, &inv.Label, &inv.Amount, &inv.Paid); err != nil {
			return fmt.Errorf("failed to scan invoice: %w", err)
		}
		rec.Financials.Invoices = append(rec.Financials.Invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	docRows, err := r.db.QueryContext(ctx,
		`SELECT type, required, status FROM admission_documents WHERE admission_id = $1 ORDER BY position ASC`,
		rec.ID)
	if err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}
	defer docRows.Close()

	rec.Documents = []types.DocumentItem{}
	for docRows.Next() {
		var doc types.DocumentItem
		if err := docRows.Scan(&doc.Type, &doc.Required, &doc.Status); err != nil {
			return fmt.Errorf("failed to scan document: %w", err)
		}
		rec.Documents = append(rec.Documents, doc)
	}
	if err := docRows.Err(); err != nil {
		return err
	}

	histRows, err := r.db.QueryContext(ctx,
		`SELECT timestamp, actor, action FROM admission_history WHERE admission_id = $1 ORDER BY id ASC`,
		rec.ID)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	defer histRows.Close()

	rec.History = []types.HistoryEntry{}
	for histRows.Next() {
		var entry types.HistoryEntry
		if err := histRows.Scan(&entry.Timestamp, &entry.Actor, &entry.Action); err != nil {
			return fmt.Errorf("failed to scan history entry: %w", err)
		}
		rec.History = append(rec.History, entry)
	}

	return histRows.Err()
}

// execer abstracts *sql.Tx for the child-row writers
type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func writeDocuments(ctx context.Context, tx execer, rec *types.AdmissionRecord) error {
	for i, doc := range rec.Documents {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO admission_documents (admission_id, position, type, required, status) VALUES ($1, $2, $3, $4, $5)`,
			rec.ID, i, doc.Type, doc.Required, doc.Status)
		if err != nil {
			return fmt.Errorf("failed to write document %s: %w", doc.Type, err)
		}
	}
	return nil
}

func writeInvoices(ctx context.Context, tx execer, rec *types.AdmissionRecord) error {
	for i, inv := range rec.Financials.Invoices {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO admission_invoices (id, admission_id, position, label, amount, paid) VALUES ($1, $2, $3, $4, $5, $6)`,
			inv.ID, rec.ID, i, inv.Label, inv.Amount, inv.Paid)
		if err != nil {
			return fmt.Errorf("failed to write invoice %s: %w", inv.ID, err)
		}
	}
	return nil
}

func appendHistoryRows(ctx context.Context, tx execer, admissionID string, entries []types.HistoryEntry) error {
	for _, entry := range entries {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO admission_history (admission_id, timestamp, actor, action) VALUES ($1, $2, $3, $4)`,
			admissionID, entry.Timestamp, entry.Actor, entry.Action)
		if err != nil {
			return fmt.Errorf("failed to append history entry: %w", err)
		}
	}
	return nil
}

// insuranceArgs renders the insurance snapshot columns, all NULL when the
// admission carries no insurance
func insuranceArgs(snap *types.InsuranceSnapshot) []interface{} {
	if snap == nil {
		return []interface{}{nil, nil, nil, nil, nil, nil, nil}
	}
	return []interface{}{
		nullString(snap.Type),
		nullString(snap.InsuredNumber),
		nullString(snap.Fund),
		snap.RemainingCeiling,
		snap.CoverageRate,
		nullString(string(snap.Status)),
		nullTime(snap.VerifiedAt),
	}
}

// scanner abstracts *sql.Row and *sql.Rows for scanAdmission
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanAdmission(s scanner) (*types.AdmissionRecord, error) {
	var (
		rec                types.AdmissionRecord
		expectedDischarge  sql.NullTime
		roomID             sql.NullString
		insuranceType      sql.NullString
		insuredNumber      sql.NullString
		insuranceFund      sql.NullString
		remainingCeiling   sql.NullInt64
		coverageRate       sql.NullInt64
		verificationStatus sql.NullString
		verifiedAt         sql.NullTime
	)

	err := s.Scan(
		&rec.ID,
		&rec.AdmissionNumber,
		&rec.Patient.LastName,
		&rec.Patient.FirstName,
		&rec.Patient.BirthDate,
		&rec.Patient.Sex,
		&rec.Patient.Phone,
		&rec.Patient.EmergencyContactName,
		&rec.Patient.EmergencyContactPhone,
		&rec.Patient.EmergencyContactRelation,
		&rec.Origin,
		&rec.AdmissionDate,
		&expectedDischarge,
		&rec.Department,
		&rec.Physician,
		&rec.Reason,
		&roomID,
		&insuranceType,
		&insuredNumber,
		&insuranceFund,
		&remainingCeiling,
		&coverageRate,
		&verificationStatus,
		&verifiedAt,
		&rec.Financials.EstimatedStayCost,
		&rec.Financials.DepositPaid,
		&rec.Financials.OutstandingBalance,
		&rec.Status,
		&rec.Notes,
		&rec.Version,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if expectedDischarge.Valid {
		t := expectedDischarge.Time
		rec.ExpectedDischarge = &t
	}
	rec.RoomID = roomID.String

	if insuranceType.Valid || insuredNumber.Valid {
		snap := &types.InsuranceSnapshot{
			Type:             insuranceType.String,
			InsuredNumber:    insuredNumber.String,
			Fund:             insuranceFund.String,
			RemainingCeiling: remainingCeiling.Int64,
			CoverageRate:     int(coverageRate.Int64),
			Status:           types.VerificationStatus(verificationStatus.String),
		}
		if verifiedAt.Valid {
			t := verifiedAt.Time
			snap.VerifiedAt = &t
		}
		rec.Insurance = snap
	}

	rec.Financials.Invoices = []types.Invoice{}
	rec.Documents = []types.DocumentItem{}
	rec.History = []types.HistoryEntry{}

	return &rec, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
