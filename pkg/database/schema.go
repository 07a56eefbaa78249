package database

import (
	"context"
	"fmt"
)

// CreateSchema creates the database schema for the hospitalization workflow
func (db *DB) CreateSchema(ctx context.Context) error {
	db.logger.Info("Creating database schema...")

	if err := db.createExtensions(ctx); err != nil {
		return fmt.Errorf("failed to create extensions: %w", err)
	}

	tables := []string{
		createRoomsTable,
		createAdmissionsTable,
		createInvoicesTable,
		createDocumentsTable,
		createHistoryTable,
		createAdmissionCountersTable,
		createTransferRequestsTable,
	}

	for _, table := range tables {
		if _, err := db.ExecContext(ctx, table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	indexes := []string{
		createRoomsIndexes,
		createAdmissionsIndexes,
		createTransferRequestsIndexes,
	}

	for _, index := range indexes {
		if _, err := db.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	db.logger.Info("Database schema created successfully")
	return nil
}

// createExtensions creates required PostgreSQL extensions
func (db *DB) createExtensions(ctx context.Context) error {
	extensions := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	}

	for _, ext := range extensions {
		if _, err := db.ExecContext(ctx, ext); err != nil {
			return fmt.Errorf("failed to create extension: %w", err)
		}
	}

	return nil
}

// SQL DDL statements for table creation. Every mutable table carries a
// version column used for optimistic-concurrency compare-and-swap updates.
const (
	createRoomsTable = `
		CREATE TABLE IF NOT EXISTS rooms (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			number VARCHAR(20) NOT NULL,
			floor INTEGER NOT NULL,
			department VARCHAR(100) NOT NULL,
			category VARCHAR(20) NOT NULL,
			beds INTEGER NOT NULL DEFAULT 1,
			status VARCHAR(20) NOT NULL DEFAULT 'free',
			equipment TEXT[] NOT NULL DEFAULT '{}',
			daily_rate BIGINT NOT NULL DEFAULT 0,
			note TEXT NOT NULL DEFAULT '',
			next_availability TIMESTAMPTZ,
			occupant_admission_id UUID,
			occupant_patient_name VARCHAR(200),
			occupant_admission_date TIMESTAMPTZ,
			occupant_physician VARCHAR(200),
			occupant_expected_discharge TIMESTAMPTZ,
			version BIGINT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (department, number)
		);`

	createAdmissionsTable = `
		CREATE TABLE IF NOT EXISTS admissions (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			admission_number VARCHAR(20) UNIQUE NOT NULL,
			patient_last_name VARCHAR(100) NOT NULL,
			patient_first_name VARCHAR(100) NOT NULL,
			patient_birth_date DATE NOT NULL,
			patient_sex VARCHAR(10) NOT NULL,
			patient_phone VARCHAR(30) NOT NULL,
			emergency_contact_name VARCHAR(200) NOT NULL,
			emergency_contact_phone VARCHAR(30) NOT NULL,
			emergency_contact_relation VARCHAR(50) NOT NULL,
			origin VARCHAR(20) NOT NULL,
			admission_date TIMESTAMPTZ NOT NULL,
			expected_discharge TIMESTAMPTZ,
			department VARCHAR(100) NOT NULL,
			physician VARCHAR(200) NOT NULL,
			reason TEXT NOT NULL,
			room_id UUID,
			insurance_type VARCHAR(50),
			insured_number VARCHAR(50),
			insurance_fund VARCHAR(100),
			remaining_ceiling BIGINT,
			coverage_rate INTEGER,
			verification_status VARCHAR(20),
			verified_at TIMESTAMPTZ,
			estimated_stay_cost BIGINT NOT NULL DEFAULT 0,
			deposit_paid BIGINT NOT NULL DEFAULT 0,
			outstanding_balance BIGINT NOT NULL DEFAULT 0,
			status VARCHAR(30) NOT NULL DEFAULT 'pre_admission',
			notes TEXT NOT NULL DEFAULT '',
			version BIGINT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`

	createInvoicesTable = `
		CREATE TABLE IF NOT EXISTS admission_invoices (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			admission_id UUID NOT NULL REFERENCES admissions(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			label VARCHAR(200) NOT NULL,
			amount BIGINT NOT NULL,
			paid BOOLEAN NOT NULL DEFAULT FALSE
		);`

	createDocumentsTable = `
		CREATE TABLE IF NOT EXISTS admission_documents (
			admission_id UUID NOT NULL REFERENCES admissions(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			type VARCHAR(50) NOT NULL,
			required BOOLEAN NOT NULL DEFAULT FALSE,
			status VARCHAR(20) NOT NULL DEFAULT 'missing',
			PRIMARY KEY (admission_id, type)
		);`

	createHistoryTable = `
		CREATE TABLE IF NOT EXISTS admission_history (
			id BIGSERIAL PRIMARY KEY,
			admission_id UUID NOT NULL REFERENCES admissions(id) ON DELETE CASCADE,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			actor VARCHAR(100) NOT NULL,
			action VARCHAR(200) NOT NULL
		);`

	createAdmissionCountersTable = `
		CREATE TABLE IF NOT EXISTS admission_counters (
			day DATE PRIMARY KEY,
			seq INTEGER NOT NULL
		);`

	createTransferRequestsTable = `
		CREATE TABLE IF NOT EXISTS transfer_requests (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			admission_id UUID NOT NULL,
			patient_name VARCHAR(200) NOT NULL,
			source_department VARCHAR(100) NOT NULL,
			source_room_id UUID,
			destination_department VARCHAR(100) NOT NULL,
			reason TEXT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			requested_by VARCHAR(100) NOT NULL,
			decided_by VARCHAR(100),
			decision_reason TEXT,
			request_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			version BIGINT NOT NULL DEFAULT 1
		);`
)

// SQL DDL statements for index creation
const (
	createRoomsIndexes = `
		CREATE INDEX IF NOT EXISTS idx_rooms_status ON rooms(status);
		CREATE INDEX IF NOT EXISTS idx_rooms_department ON rooms(department);
		CREATE INDEX IF NOT EXISTS idx_rooms_floor ON rooms(floor);`

	createAdmissionsIndexes = `
		CREATE INDEX IF NOT EXISTS idx_admissions_status ON admissions(status);
		CREATE INDEX IF NOT EXISTS idx_admissions_origin ON admissions(origin);
		CREATE INDEX IF NOT EXISTS idx_admissions_department ON admissions(department);
		CREATE INDEX IF NOT EXISTS idx_admissions_date ON admissions(admission_date);`

	createTransferRequestsIndexes = `
		CREATE INDEX IF NOT EXISTS idx_transfers_status ON transfer_requests(status);
		CREATE INDEX IF NOT EXISTS idx_transfers_request_date ON transfer_requests(request_date);`
)
