package types

// VerificationRequest is the payload sent to the insurance registry provider
type VerificationRequest struct {
	InsuranceType string `json:"insurance_type"`
	InsuredNumber string `json:"insured_number"`
}

// VerificationResult is the provider's answer for a policy lookup. A
// suspended or unknown policy is a domain outcome, distinct from a transport
// failure which surfaces as an InsuranceVerificationFailure error.
type VerificationResult struct {
	Status           VerificationStatus `json:"status"`
	Fund             string             `json:"fund"`
	AnnualCeiling    int64              `json:"annual_ceiling"`
	Consumed         int64              `json:"consumed"`
	RemainingCeiling int64              `json:"remaining_ceiling"`
	CoverageRate     int                `json:"coverage_rate_percent"`
}
