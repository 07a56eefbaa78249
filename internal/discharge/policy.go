package discharge

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/medrex/hospital-flow/pkg/types"
)

// Policy maps admission origins to the documents required before discharge.
// It is external configuration, not hardcoded business logic: hospitals tune
// the checklist per origin without a redeploy.
type Policy struct {
	// RequiredDocuments lists document types required per admission origin
	RequiredDocuments map[types.AdmissionOrigin][]string `mapstructure:"required_documents"`

	// DepositWaiverDocument is required whenever a deposit was collected at
	// admission, on top of the per-origin list
	DepositWaiverDocument string `mapstructure:"deposit_waiver_document"`

	// OptionalDocuments are tracked on the checklist but never block discharge
	OptionalDocuments []string `mapstructure:"optional_documents"`
}

// DefaultPolicy returns the checklist used when no policy file is configured
func DefaultPolicy() *Policy {
	return &Policy{
		RequiredDocuments: map[types.AdmissionOrigin][]string{
			types.OriginEmergency:   {"identity_document", "discharge_summary"},
			types.OriginScheduled:   {"identity_document", "admission_consent", "discharge_summary"},
			types.OriginDayHospital: {"identity_document", "discharge_summary"},
			types.OriginTransfer:    {"identity_document", "transfer_report", "discharge_summary"},
		},
		DepositWaiverDocument: "decharge",
		OptionalDocuments:     []string{"insurance_card"},
	}
}

// LoadPolicy reads the discharge policy from a YAML file, falling back to the
// default policy when the path is empty or the file does not exist
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultPolicy(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read discharge policy: %w", err)
	}

	policy := &Policy{}
	if err := v.Unmarshal(policy); err != nil {
		return nil, fmt.Errorf("failed to unmarshal discharge policy: %w", err)
	}

	if policy.RequiredDocuments == nil {
		policy.RequiredDocuments = DefaultPolicy().RequiredDocuments
	}
	if policy.DepositWaiverDocument == "" {
		policy.DepositWaiverDocument = DefaultPolicy().DepositWaiverDocument
	}

	return policy, nil
}

// Checklist builds the document checklist for an admission origin. The
// deposit waiver joins the required set only when a deposit was collected.
func (p *Policy) Checklist(origin types.AdmissionOrigin, depositCollected bool) []types.DocumentItem {
	items := []types.DocumentItem{}

	for _, docType := range p.RequiredDocuments[origin] {
		items = append(items, types.DocumentItem{
			Type:     docType,
			Required: true,
			Status:   types.DocumentMissing,
		})
	}

	if depositCollected && p.DepositWaiverDocument != "" {
		items = append(items, types.DocumentItem{
			Type:     p.DepositWaiverDocument,
			Required: true,
			Status:   types.DocumentMissing,
		})
	}

	for _, docType := range p.OptionalDocuments {
		items = append(items, types.DocumentItem{
			Type:     docType,
			Required: false,
			Status:   types.DocumentMissing,
		})
	}

	return items
}
