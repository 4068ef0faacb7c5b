package entitlement

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tellbill/server/internal/domain"
)

// VerifierOptions configures the HTTP backend verifier.
type VerifierOptions struct {
	BaseURL        string
	Token          string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// HTTPVerifier calls the TellBill billing verification endpoint.
type HTTPVerifier struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPVerifier builds a verifier for POST /v1/billing/verify.
func NewHTTPVerifier(opts VerifierOptions) (*HTTPVerifier, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("entitlement: base url is required")
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPVerifier{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		httpClient: client,
	}, nil
}

type verifyRequest struct {
	SubscriptionReceipt string `json:"subscription_receipt"`
}

type verifyResponse struct {
	Plan   string `json:"plan"`
	Status string `json:"status"`
}

// VerifyPlan implements Verifier.
func (v *HTTPVerifier) VerifyPlan(ctx context.Context, receipt string) (domain.Tier, error) {
	body, err := json.Marshal(verifyRequest{SubscriptionReceipt: receipt})
	if err != nil {
		return domain.TierFree, fmt.Errorf("entitlement: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/v1/billing/verify", bytes.NewReader(body))
	if err != nil {
		return domain.TierFree, fmt.Errorf("entitlement: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.token != "" {
		req.Header.Set("Authorization", "Bearer "+v.token)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return domain.TierFree, fmt.Errorf("entitlement: verify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.TierFree, fmt.Errorf("entitlement: unexpected status %d", resp.StatusCode)
	}
	var payload verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.TierFree, fmt.Errorf("entitlement: decode response: %w", err)
	}
	return domain.ParseTier(payload.Plan), nil
}
