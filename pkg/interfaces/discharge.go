package interfaces

import (
	"context"

	"github.com/medrex/hospital-flow/pkg/types"
)

// ReadinessReport is the outcome of a discharge readiness evaluation. The
// blocking reasons enumerate every unmet condition, not just the first.
type ReadinessReport struct {
	Ready           bool     `json:"ready"`
	BlockingReasons []string `json:"blocking_reasons"`
}

// DischargeReadinessService defines the interface gating admission closure
type DischargeReadinessService interface {
	Check(ctx context.Context, admissionID string) (*ReadinessReport, error)

	// RequiredDocuments returns the policy-defined document checklist for an
	// admission origin, including the deposit waiver when a deposit was
	// collected.
	RequiredDocuments(origin types.AdmissionOrigin, depositCollected bool) []types.DocumentItem
}
