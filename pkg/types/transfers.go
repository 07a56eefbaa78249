package types

import "time"

// TransferStatus represents the state of an inter-department transfer request
type TransferStatus string

const (
	TransferPending  TransferStatus = "pending"
	TransferApproved TransferStatus = "approved"
	TransferRejected TransferStatus = "rejected"
)

// TransferRequest represents a pending inter-department transfer. Approval
// does not move the patient; the caller must follow up with an explicit room
// assignment on the admission workflow.
type TransferRequest struct {
	ID                    string         `json:"id" db:"id"`
	AdmissionID           string         `json:"admission_id" db:"admission_id"`
	PatientName           string         `json:"patient_name" db:"patient_name"`
	SourceDepartment      string         `json:"source_department" db:"source_department"`
	SourceRoomID          string         `json:"source_room_id" db:"source_room_id"`
	DestinationDepartment string         `json:"destination_department" db:"destination_department"`
	Reason                string         `json:"reason" db:"reason"`
	Status                TransferStatus `json:"status" db:"status"`
	RequestedBy           string         `json:"requested_by" db:"requested_by"`
	DecidedBy             string         `json:"decided_by,omitempty" db:"decided_by"`
	DecisionReason        string         `json:"decision_reason,omitempty" db:"decision_reason"`
	RequestDate           time.Time      `json:"request_date" db:"request_date"`
	Version               int64          `json:"version" db:"version"`
}

// TransferFilters represents filters for transfer queries
type TransferFilters struct {
	Status      TransferStatus `json:"status,omitempty"`
	Department  string         `json:"department,omitempty"`
	AdmissionID string         `json:"admission_id,omitempty"`
}
