package types

import "time"

// AdmissionStatus represents the workflow status of an admission
type AdmissionStatus string

const (
	AdmissionStatusPreAdmission       AdmissionStatus = "pre_admission"
	AdmissionStatusAdmitted           AdmissionStatus = "admitted"
	AdmissionStatusDischargeScheduled AdmissionStatus = "discharge_scheduled"
	AdmissionStatusDischarged         AdmissionStatus = "discharged"
	AdmissionStatusCancelled          AdmissionStatus = "cancelled"
)

// AdmissionOrigin represents the pathway by which a patient enters hospitalization
type AdmissionOrigin string

const (
	OriginEmergency   AdmissionOrigin = "emergency"
	OriginScheduled   AdmissionOrigin = "scheduled"
	OriginDayHospital AdmissionOrigin = "day_hospital"
	OriginTransfer    AdmissionOrigin = "transfer"
)

// PatientInfo holds the identity and contact details collected at intake
type PatientInfo struct {
	LastName                 string    `json:"last_name" db:"patient_last_name"`
	FirstName                string    `json:"first_name" db:"patient_first_name"`
	BirthDate                time.Time `json:"birth_date" db:"patient_birth_date"`
	Sex                      string    `json:"sex" db:"patient_sex"`
	Phone                    string    `json:"phone" db:"patient_phone"`
	EmergencyContactName     string    `json:"emergency_contact_name" db:"emergency_contact_name"`
	EmergencyContactPhone    string    `json:"emergency_contact_phone" db:"emergency_contact_phone"`
	EmergencyContactRelation string    `json:"emergency_contact_relation" db:"emergency_contact_relation"`
}

// FullName returns the patient's display name
func (p PatientInfo) FullName() string {
	return p.FirstName + " " + p.LastName
}

// VerificationStatus represents the outcome of an insurance verification
type VerificationStatus string

const (
	VerificationActive     VerificationStatus = "active"
	VerificationSuspended  VerificationStatus = "suspended"
	VerificationUnknown    VerificationStatus = "unknown"
	VerificationUnverified VerificationStatus = "unverified"
)

// InsuranceSnapshot is the coverage state captured on the admission record at
// verification time. Re-verification overwrites it, it is never cumulative.
type InsuranceSnapshot struct {
	Type             string             `json:"type" db:"insurance_type"`
	InsuredNumber    string             `json:"insured_number" db:"insured_number"`
	Fund             string             `json:"fund" db:"insurance_fund"`
	RemainingCeiling int64              `json:"remaining_ceiling" db:"remaining_ceiling"`
	CoverageRate     int                `json:"coverage_rate_percent" db:"coverage_rate"`
	Status           VerificationStatus `json:"status" db:"verification_status"`
	VerifiedAt       *time.Time         `json:"verified_at,omitempty" db:"verified_at"`
}

// Invoice is a single billable line on an admission's financial summary
type Invoice struct {
	ID     string `json:"id" db:"id"`
	Label  string `json:"label" db:"label"`
	Amount int64  `json:"amount" db:"amount"`
	Paid   bool   `json:"paid" db:"paid"`
}

// FinancialSummary tracks the money side of an admission. Amounts are integer
// currency units, no fractional part.
type FinancialSummary struct {
	EstimatedStayCost  int64     `json:"estimated_stay_cost" db:"estimated_stay_cost"`
	DepositPaid        int64     `json:"deposit_paid" db:"deposit_paid"`
	OutstandingBalance int64     `json:"outstanding_balance" db:"outstanding_balance"`
	Invoices           []Invoice `json:"invoices"`
}

// Recompute derives the outstanding balance from the estimated cost, the
// deposit and the paid invoices, clamped at zero.
func (f *FinancialSummary) Recompute() {
	balance := f.EstimatedStayCost - f.DepositPaid
	for _, inv := range f.Invoices {
		if inv.Paid {
			balance -= inv.Amount
		}
	}
	if balance < 0 {
		balance = 0
	}
	f.OutstandingBalance = balance
}

// DocumentStatus represents whether a checklist document has been provided
type DocumentStatus string

const (
	DocumentMissing  DocumentStatus = "missing"
	DocumentProvided DocumentStatus = "provided"
)

// DocumentItem is one entry of the admission document checklist
type DocumentItem struct {
	Type     string         `json:"type" db:"type"`
	Required bool           `json:"required" db:"required"`
	Status   DocumentStatus `json:"status" db:"status"`
}

// HistoryEntry is one line of the append-only admission history log
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Actor     string    `json:"actor" db:"actor"`
	Action    string    `json:"action" db:"action"`
}

// AdmissionRecord represents a hospitalization from intake to discharge
type AdmissionRecord struct {
	ID                string             `json:"id" db:"id"`
	AdmissionNumber   string             `json:"admission_number" db:"admission_number"`
	Patient           PatientInfo        `json:"patient"`
	Origin            AdmissionOrigin    `json:"origin" db:"origin"`
	AdmissionDate     time.Time          `json:"admission_date" db:"admission_date"`
	ExpectedDischarge *time.Time         `json:"expected_discharge,omitempty" db:"expected_discharge"`
	Department        string             `json:"department" db:"department"`
	Physician         string             `json:"physician" db:"physician"`
	Reason            string             `json:"reason" db:"reason"`
	RoomID            string             `json:"room_id,omitempty" db:"room_id"`
	Insurance         *InsuranceSnapshot `json:"insurance,omitempty"`
	Financials        FinancialSummary   `json:"financials"`
	Documents         []DocumentItem     `json:"documents"`
	Status            AdmissionStatus    `json:"status" db:"status"`
	Notes             string             `json:"notes,omitempty" db:"notes"`
	History           []HistoryEntry     `json:"history"`
	Version           int64              `json:"version" db:"version"`
	CreatedAt         time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at" db:"updated_at"`
}

// AdmissionFilters represents filters for admission queries
type AdmissionFilters struct {
	Status     AdmissionStatus `json:"status,omitempty"`
	Origin     AdmissionOrigin `json:"origin,omitempty"`
	Department string          `json:"department,omitempty"`
	FromDate   time.Time       `json:"from_date,omitempty"`
	ToDate     time.Time       `json:"to_date,omitempty"`
	Limit      int             `json:"limit,omitempty"`
	Offset     int             `json:"offset,omitempty"`
}

// CreateAdmissionRequest is the intake payload for a new admission
type CreateAdmissionRequest struct {
	Origin            AdmissionOrigin `json:"origin"`
	Patient           PatientInfo     `json:"patient"`
	Department        string          `json:"department"`
	Physician         string          `json:"physician"`
	Reason            string          `json:"reason"`
	ExpectedDischarge *time.Time      `json:"expected_discharge,omitempty"`
	EstimatedStayCost int64           `json:"estimated_stay_cost,omitempty"`
	InsuranceType     string          `json:"insurance_type,omitempty"`
	InsuredNumber     string          `json:"insured_number,omitempty"`
	Notes             string          `json:"notes,omitempty"`
}
