package interfaces

import (
	"context"

	"github.com/medrex/hospital-flow/pkg/types"
)

// InsuranceVerificationService defines the interface for coverage computation
// against the external insurance registry
type InsuranceVerificationService interface {
	// Verify resolves the coverage state for a policy. The call is bounded by
	// the context deadline and is cancellable; no automatic retries are
	// performed, callers may retry manually.
	Verify(ctx context.Context, insuranceType, insuredNumber string) (*types.VerificationResult, error)

	// ComputePatientShare returns the amount owed by the patient after
	// coverage, in integer currency units, rounded half up.
	ComputePatientShare(estimatedCost int64, coverageRatePercent int) int64
}

// InsuranceProvider is the external registry contract. Implementations must
// distinguish a not-found/suspended policy (domain outcome in the result)
// from a transport failure (error return).
type InsuranceProvider interface {
	Lookup(ctx context.Context, req *types.VerificationRequest) (*types.VerificationResult, error)
}
