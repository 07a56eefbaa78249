package insurance

import (
	"context"
	"errors"
	"time"

	"github.com/medrex/hospital-flow/pkg/interfaces"
	"github.com/medrex/hospital-flow/pkg/logger"
	"github.com/medrex/hospital-flow/pkg/monitoring"
	"github.com/medrex/hospital-flow/pkg/types"
)

// Service implements the InsuranceVerificationService interface
type Service struct {
	provider interfaces.InsuranceProvider
	timeout  time.Duration
	logger   *logger.Logger
	metrics  *monitoring.MetricsCollector
}

// New creates a new insurance verification service
func New(provider interfaces.InsuranceProvider, timeout time.Duration, log *logger.Logger, metrics *monitoring.MetricsCollector) interfaces.InsuranceVerificationService {
	return &Service{
		provider: provider,
		timeout:  timeout,
		logger:   log,
		metrics:  metrics,
	}
}

// Verify resolves coverage for a policy against the external registry. The
// call is bounded by the configured timeout on top of the caller's context,
// is cancellable, and is never retried automatically; the caller may retry.
func (s *Service) Verify(ctx context.Context, insuranceType, insuredNumber string) (*types.VerificationResult, error) {
	fields := []string{}
	if insuranceType == "" {
		fields = append(fields, "insurance_type")
	}
	if insuredNumber == "" {
		fields = append(fields, "insured_number")
	}
	if len(fields) > 0 {
		return nil, types.NewValidationError("missing insurance identifiers", fields)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	result, err := s.provider.Lookup(ctx, &types.VerificationRequest{
		InsuranceType: insuranceType,
		InsuredNumber: insuredNumber,
	})
	duration := time.Since(start)

	if err != nil {
		outcome := "transport_failure"
		verr := types.NewInsuranceVerificationError("insurance registry unreachable", err)
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = "timeout"
			verr = types.NewInsuranceVerificationError("insurance registry timed out", err)
		} else if errors.Is(err, context.Canceled) {
			outcome = "cancelled"
			verr = types.NewInsuranceVerificationError("insurance verification abandoned", err)
		}
		s.recordVerification(outcome, duration)
		s.logger.WithError(err).Warnf("Insurance verification failed for %s", insuredNumber)
		return nil, verr
	}

	s.recordVerification(string(result.Status), duration)
	s.logger.WithFields(map[string]interface{}{
		"insured_number": insuredNumber,
		"status":         result.Status,
		"coverage_rate":  result.CoverageRate,
	}).Info("Insurance verification completed")

	return result, nil
}

// ComputePatientShare returns the patient share for an estimated cost at a
// coverage rate. Pure function, no I/O.
func (s *Service) ComputePatientShare(estimatedCost int64, coverageRatePercent int) int64 {
	return ComputePatientShare(estimatedCost, coverageRatePercent)
}

func (s *Service) recordVerification(outcome string, duration time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordInsuranceVerification(outcome, duration)
	}
}
