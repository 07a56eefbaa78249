package types

import (
	"time"

	"github.com/lib/pq"
)

// RoomStatus represents the lifecycle status of a room
type RoomStatus string

const (
	RoomStatusFree        RoomStatus = "free"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusCleaning    RoomStatus = "cleaning"
	RoomStatusMaintenance RoomStatus = "maintenance"
	RoomStatusReserved    RoomStatus = "reserved"
)

// RoomCategory represents the comfort class of a room
type RoomCategory string

const (
	RoomCategoryStandard RoomCategory = "standard"
	RoomCategorySuperior RoomCategory = "superior"
	RoomCategoryVIP      RoomCategory = "vip"
	RoomCategorySuite    RoomCategory = "suite"
)

// OccupantSummary describes who currently occupies a room. It is present if
// and only if the room status is occupied.
type OccupantSummary struct {
	AdmissionID       string     `json:"admission_id" db:"occupant_admission_id"`
	PatientName       string     `json:"patient_name" db:"occupant_patient_name"`
	AdmissionDate     time.Time  `json:"admission_date" db:"occupant_admission_date"`
	Physician         string     `json:"physician" db:"occupant_physician"`
	ExpectedDischarge *time.Time `json:"expected_discharge,omitempty" db:"occupant_expected_discharge"`
}

// Room represents a hospital room and its bed inventory state
type Room struct {
	ID               string           `json:"id" db:"id"`
	Number           string           `json:"number" db:"number"`
	Floor            int              `json:"floor" db:"floor"`
	Department       string           `json:"department" db:"department"`
	Category         RoomCategory     `json:"category" db:"category"`
	Beds             int              `json:"beds" db:"beds"`
	Status           RoomStatus       `json:"status" db:"status"`
	Equipment        pq.StringArray   `json:"equipment" db:"equipment"`
	DailyRate        int64            `json:"daily_rate" db:"daily_rate"`
	Occupant         *OccupantSummary `json:"occupant,omitempty"`
	NextAvailability *time.Time       `json:"next_availability,omitempty" db:"next_availability"`
	Note             string           `json:"note,omitempty" db:"note"`
	Version          int64            `json:"version" db:"version"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// RoomStatusUpdate is the atomic write applied by a status compare-and-swap.
// The occupant is set and cleared together with the status so the
// occupied-iff-occupant invariant can never be observed broken.
type RoomStatusUpdate struct {
	Status           RoomStatus       `json:"status"`
	Occupant         *OccupantSummary `json:"occupant,omitempty"`
	Note             string           `json:"note"`
	NextAvailability *time.Time       `json:"next_availability,omitempty"`
}

// RoomFilters represents filters for room queries
type RoomFilters struct {
	Floor      *int         `json:"floor,omitempty"`
	Department string       `json:"department,omitempty"`
	Category   RoomCategory `json:"category,omitempty"`
	Status     RoomStatus   `json:"status,omitempty"`
	SearchTerm string       `json:"search_term,omitempty"`
}
