package insurance

// ComputePatientShare returns the amount the patient owes after insurance
// coverage, in integer currency units. The share is rounded half up, so a
// fractional half-unit goes against the patient.
func ComputePatientShare(estimatedCost int64, coverageRatePercent int) int64 {
	if estimatedCost <= 0 {
		return 0
	}
	if coverageRatePercent < 0 {
		coverageRatePercent = 0
	}
	if coverageRatePercent > 100 {
		coverageRatePercent = 100
	}

	// share = estimatedCost * (100 - rate) / 100, rounded half up
	return (estimatedCost*int64(100-coverageRatePercent) + 50) / 100
}
