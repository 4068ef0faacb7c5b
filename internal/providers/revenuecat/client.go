// Package revenuecat implements the subscription-provider REST API used
// to verify purchase state server-side. The client mirrors the mobile
// SDK's view of a subscriber: the set of currently active entitlement
// identifiers plus period metadata.
package revenuecat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tellbill/server/internal/domain"
	"github.com/tellbill/server/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("revenuecat: api key is required")

// ErrSubscriberNotFound indicates the provider has no record of the user.
var ErrSubscriberNotFound = errors.New("revenuecat: subscriber not found")

const defaultBaseURL = "https://api.revenuecat.com/v1"

// Options configures the RevenueCat client.
type Options struct {
	APIKey         string
	BaseURL        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the RevenueCat subscribers API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient validates the options and builds a client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		logger:     opts.Logger,
	}, nil
}

type subscriberResponse struct {
	Subscriber struct {
		Entitlements map[string]struct {
			ExpiresDate       *time.Time `json:"expires_date"`
			PurchaseDate      *time.Time `json:"purchase_date"`
			ProductIdentifier string     `json:"product_identifier"`
		} `json:"entitlements"`
		Subscriptions map[string]struct {
			ExpiresDate *time.Time `json:"expires_date"`
			WillRenew   bool       `json:"will_renew"`
		} `json:"subscriptions"`
	} `json:"subscriber"`
}

// Subscriber fetches the provider's current entitlement state for the
// app user. Entitlements whose expiry has passed are filtered out so
// the returned record only lists active grants.
func (c *Client) Subscriber(ctx context.Context, appUserID string) (domain.EntitlementRecord, error) {
	if strings.TrimSpace(appUserID) == "" {
		return domain.EntitlementRecord{}, errors.New("revenuecat: app user id is required")
	}

	endpoint := c.baseURL + "/subscribers/" + url.PathEscape(appUserID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.EntitlementRecord{}, fmt.Errorf("revenuecat: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.EntitlementRecord{}, fmt.Errorf("revenuecat: fetch subscriber: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.EntitlementRecord{}, ErrSubscriberNotFound
	case resp.StatusCode != http.StatusOK:
		return domain.EntitlementRecord{}, fmt.Errorf("revenuecat: unexpected status %d: %w", resp.StatusCode, domain.ErrProviderFailure)
	}

	var payload subscriberResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.EntitlementRecord{}, fmt.Errorf("revenuecat: decode response: %w", err)
	}

	now := time.Now()
	record := domain.EntitlementRecord{}
	for name, ent := range payload.Subscriber.Entitlements {
		if ent.ExpiresDate != nil && ent.ExpiresDate.Before(now) {
			continue
		}
		record.Active = append(record.Active, name)
		if ent.PurchaseDate != nil && (record.PeriodStart == nil || ent.PurchaseDate.Before(*record.PeriodStart)) {
			record.PeriodStart = ent.PurchaseDate
		}
		if ent.ExpiresDate != nil && (record.PeriodEnd == nil || ent.ExpiresDate.After(*record.PeriodEnd)) {
			record.PeriodEnd = ent.ExpiresDate
		}
	}
	for _, sub := range payload.Subscriber.Subscriptions {
		if sub.WillRenew && (sub.ExpiresDate == nil || sub.ExpiresDate.After(now)) {
			record.AutoRenew = true
			break
		}
	}

	if c.logger != nil {
		c.logger.Debug().Str("app_user_id", appUserID).Int("active", len(record.Active)).Msg("revenuecat subscriber fetched")
	}
	return record, nil
}

// Ready implements the SDK readiness poll by issuing a lightweight
// request against the API root.
func (c *Client) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/subscribers/health-probe", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revenuecat: not ready: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("revenuecat: not ready: status %d", resp.StatusCode)
	}
	return nil
}

// SubscriberSDK adapts the client to the entitlement synchronizer's SDK
// interface for a fixed app user.
type SubscriberSDK struct {
	Client    *Client
	AppUserID string
}

func (s SubscriberSDK) Ready(ctx context.Context) error {
	return s.Client.Ready(ctx)
}

func (s SubscriberSDK) ActiveEntitlements(ctx context.Context) (domain.EntitlementRecord, error) {
	return s.Client.Subscriber(ctx, s.AppUserID)
}
