package usage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tellbill/server/internal/domain"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func TestReportSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/usage/increment", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req incrementRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "invoice_creation", req.ActionType)

		remaining := 2
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(incrementResponse{
			InvoicesCreated: 1,
			Plan:            "free",
			RemainingUses:   &remaining,
		})
	}))
	defer srv.Close()

	rep, err := NewHTTPReporter(ReporterOptions{BaseURL: srv.URL, Tokens: staticToken("tok")})
	require.NoError(t, err)

	report, err := rep.Report(context.Background(), domain.MetricInvoices)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Counters.InvoicesCreated)
	assert.Equal(t, domain.TierFree, report.Plan)
	assert.Equal(t, 2, report.Remaining)
	assert.False(t, report.LimitExceeded)
}

// A 429 is a valid, authoritative answer, not a transport failure.
func TestReportLimitExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remaining := 0
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(incrementResponse{
			VoiceRecordingsUsed: 3,
			Plan:                "free",
			RemainingUses:       &remaining,
		})
	}))
	defer srv.Close()

	rep, err := NewHTTPReporter(ReporterOptions{BaseURL: srv.URL, Tokens: staticToken("tok")})
	require.NoError(t, err)

	report, err := rep.Report(context.Background(), domain.MetricVoiceRecordings)
	require.NoError(t, err)
	assert.True(t, report.LimitExceeded)
	assert.Equal(t, 3, report.Counters.VoiceRecordingsUsed)
	assert.Equal(t, 0, report.Remaining)
}

func TestReportUnlimitedPlanOmitsRemaining(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(incrementResponse{InvoicesCreated: 40, Plan: "solo"})
	}))
	defer srv.Close()

	rep, err := NewHTTPReporter(ReporterOptions{BaseURL: srv.URL, Tokens: staticToken("tok")})
	require.NoError(t, err)

	report, err := rep.Report(context.Background(), domain.MetricInvoices)
	require.NoError(t, err)
	assert.Equal(t, domain.Unlimited, report.Remaining)
	assert.Equal(t, domain.TierSolo, report.Plan)
}

func TestReportWithoutCredential(t *testing.T) {
	rep, err := NewHTTPReporter(ReporterOptions{BaseURL: "http://localhost:1", Tokens: staticToken("")})
	require.NoError(t, err)

	_, err = rep.Report(context.Background(), domain.MetricInvoices)
	assert.True(t, errors.Is(err, ErrNoCredential))
}

func TestReportServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	rep, err := NewHTTPReporter(ReporterOptions{BaseURL: srv.URL, Tokens: staticToken("tok")})
	require.NoError(t, err)

	_, err = rep.Report(context.Background(), domain.MetricInvoices)
	assert.Error(t, err)
}
