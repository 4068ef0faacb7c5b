package usage

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

// ErrNoCredential indicates that no bearer credential is available; the
// report is skipped and the ledger degrades to an optimistic increment.
var ErrNoCredential = errors.New("usage: no credential available")

// TokenSource supplies the current bearer credential. An empty token is
// a valid state meaning "not authenticated".
type TokenSource interface {
	Token() string
}

// ReporterOptions configures the HTTP usage reporter.
type ReporterOptions struct {
	BaseURL        string
	Tokens         TokenSource
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

// HTTPReporter reports usage to the TellBill usage API.
type HTTPReporter struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewHTTPReporter builds a reporter for the usage increment endpoint.
func NewHTTPReporter(opts ReporterOptions) (*HTTPReporter, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("usage: base url is required")
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPReporter{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		tokens:     opts.Tokens,
		httpClient: client,
	}, nil
}

type incrementRequest struct {
	ActionType string `json:"action_type"`
}

type incrementResponse struct {
	VoiceRecordingsUsed int    `json:"voice_recordings_used"`
	InvoicesCreated     int    `json:"invoices_created"`
	Plan                string `json:"plan"`
	RemainingUses       *int   `json:"remaining_uses"`
}

// Report implements Reporter against POST /v1/usage/increment. A 429
// answer is not an error: it carries the authoritative counters with
// LimitExceeded set so the caller can deny while showing the correct
// remaining count.
func (r *HTTPReporter) Report(ctx context.Context, metric domain.Metric) (domain.UsageReport, error) {
	token := ""
	if r.tokens != nil {
		token = strings.TrimSpace(r.tokens.Token())
	}
	if token == "" {
		return domain.UsageReport{}, ErrNoCredential
	}

	body, err := json.Marshal(incrementRequest{ActionType: string(metric)})
	if err != nil {
		return domain.UsageReport{}, fmt.Errorf("usage: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/v1/usage/increment", bytes.NewReader(body))
	if err != nil {
		return domain.UsageReport{}, fmt.Errorf("usage: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return domain.UsageReport{}, fmt.Errorf("usage: report: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusTooManyRequests {
		return domain.UsageReport{}, fmt.Errorf("usage: unexpected status %d", resp.StatusCode)
	}

	var payload incrementResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.UsageReport{}, fmt.Errorf("usage: decode response: %w", err)
	}

	remaining := domain.Unlimited
	if payload.RemainingUses != nil {
		remaining = *payload.RemainingUses
	}
	return domain.UsageReport{
		Counters: domain.UsageCounters{
			VoiceRecordingsUsed: payload.VoiceRecordingsUsed,
			InvoicesCreated:     payload.InvoicesCreated,
		},
		Plan:          domain.ParseTier(payload.Plan),
		Remaining:     remaining,
		LimitExceeded: resp.StatusCode == http.StatusTooManyRequests,
	}, nil
}
