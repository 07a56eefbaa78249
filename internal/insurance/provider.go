package insurance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/medrex/hospital-flow/pkg/config"
	"github.com/medrex/hospital-flow/pkg/interfaces"
	"github.com/medrex/hospital-flow/pkg/logger"
	"github.com/medrex/hospital-flow/pkg/types"
)

// RegistryClient calls the external insurance registry over HTTP. A policy
// that is unknown or suspended is a domain outcome carried in the result;
// only transport problems and malformed responses come back as errors.
type RegistryClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *logger.Logger
}

// NewRegistryClient creates a new registry client
func NewRegistryClient(cfg *config.InsuranceConfig, log *logger.Logger) interfaces.InsuranceProvider {
	return &RegistryClient{
		baseURL: cfg.ProviderURL,
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: log,
	}
}

// registryResponse is the wire format of the registry's coverage endpoint
type registryResponse struct {
	Status        string `json:"status"`
	Fund          string `json:"fund"`
	AnnualCeiling int64  `json:"annual_ceiling"`
	Consumed      int64  `json:"consumed"`
	CoverageRate  int    `json:"coverage_rate_percent"`
}

// Lookup resolves the coverage state for a policy
func (c *RegistryClient) Lookup(ctx context.Context, req *types.VerificationRequest) (*types.VerificationResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode verification request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/coverage/verify", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build verification request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("insurance registry call failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// Unknown policy is a domain answer, not a transport failure.
		return &types.VerificationResult{Status: types.VerificationUnknown}, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("insurance registry returned status %d", resp.StatusCode)
	}

	var body registryResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("malformed insurance registry response: %w", err)
	}

	result := &types.VerificationResult{
		Fund:             body.Fund,
		AnnualCeiling:    body.AnnualCeiling,
		Consumed:         body.Consumed,
		RemainingCeiling: body.AnnualCeiling - body.Consumed,
		CoverageRate:     body.CoverageRate,
	}
	if result.RemainingCeiling < 0 {
		result.RemainingCeiling = 0
	}

	switch body.Status {
	case "active":
		result.Status = types.VerificationActive
	case "suspended":
		result.Status = types.VerificationSuspended
	default:
		result.Status = types.VerificationUnknown
	}

	return result, nil
}
