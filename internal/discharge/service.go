package discharge

import (
	"context"

	"github.com/medrex/hospital-flow/pkg/interfaces"
	"github.com/medrex/hospital-flow/pkg/logger"
	"github.com/medrex/hospital-flow/pkg/monitoring"
	"github.com/medrex/hospital-flow/pkg/types"
)

// ReasonBalanceDue is reported while the outstanding balance is positive
const ReasonBalanceDue = "balance_due>0"

// ReasonMissingDocumentPrefix prefixes each missing required document reason
const ReasonMissingDocumentPrefix = "missing_document:"

// Service implements the DischargeReadinessService interface
type Service struct {
	admissions interfaces.AdmissionRepository
	policy     *Policy
	logger     *logger.Logger
	metrics    *monitoring.MetricsCollector
}

// New creates a new discharge readiness service
func New(admissions interfaces.AdmissionRepository, policy *Policy, log *logger.Logger, metrics *monitoring.MetricsCollector) interfaces.DischargeReadinessService {
	return &Service{
		admissions: admissions,
		policy:     policy,
		logger:     log,
		metrics:    metrics,
	}
}

// Check evaluates every discharge condition for an admission and reports all
// unmet ones at once, never just the first. The balance condition comes
// first, then missing documents in checklist order.
func (s *Service) Check(ctx context.Context, admissionID string) (*interfaces.ReadinessReport, error) {
	rec, err := s.admissions.GetByID(ctx, admissionID)
	if err != nil {
		return nil, err
	}

	return s.Evaluate(rec), nil
}

// Evaluate computes the readiness report for an already-loaded record
func (s *Service) Evaluate(rec *types.AdmissionRecord) *interfaces.ReadinessReport {
	reasons := []string{}

	if rec.Financials.OutstandingBalance > 0 {
		reasons = append(reasons, ReasonBalanceDue)
	}

	// The checklist was seeded from the policy at admission time; the deposit
	// waiver may join it later when a deposit is collected. Evaluate against
	// the current policy so a tightened checklist applies to open admissions.
	required := s.requiredSet(rec)
	provided := map[string]bool{}
	for _, doc := range rec.Documents {
		if doc.Status == types.DocumentProvided {
			provided[doc.Type] = true
		}
	}

	for _, docType := range required {
		if !provided[docType] {
			reasons = append(reasons, ReasonMissingDocumentPrefix+docType)
		}
	}

	report := &interfaces.ReadinessReport{
		Ready:           len(reasons) == 0,
		BlockingReasons: reasons,
	}

	if !report.Ready && s.metrics != nil {
		for _, reason := range reasons {
			s.metrics.RecordDischargeBlocked(reason)
		}
	}

	return report
}

// RequiredDocuments returns the policy-defined checklist for an origin
func (s *Service) RequiredDocuments(origin types.AdmissionOrigin, depositCollected bool) []types.DocumentItem {
	return s.policy.Checklist(origin, depositCollected)
}

// requiredSet lists the document types that currently block this admission,
// in policy order
func (s *Service) requiredSet(rec *types.AdmissionRecord) []string {
	depositCollected := rec.Financials.DepositPaid > 0
	required := []string{}
	for _, item := range s.policy.Checklist(rec.Origin, depositCollected) {
		if item.Required {
			required = append(required, item.Type)
		}
	}
	return required
}
