package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		claim    string
		fallback string
		country  string
		want     string
	}{
		{
			name: "x-locale overrides",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "es")
			},
			country: "US",
			want:    "es",
		},
		{
			name:  "token claim used when no headers",
			claim: "fr",
			want:  "fr",
		},
		{
			name: "token claim beats accept-language",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "en-US,en;q=0.9")
			},
			claim: "es",
			want:  "es",
		},
		{
			name: "x-locale beats token claim",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "fr")
			},
			claim: "es",
			want:  "fr",
		},
		{
			name: "accept-language used",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.5")
			},
			want: "fr",
		},
		{
			name: "unsupported language matches closest",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "pt-BR,es;q=0.8")
			},
			want: "es",
		},
		{
			name:    "country es overrides",
			country: "MX",
			want:    "es",
		},
		{
			name:    "country without mapping falls back to en",
			country: "US",
			want:    "en",
		},
		{
			name:     "configured fallback",
			fallback: "fr",
			want:     "fr",
		},
		{
			name: "default to en",
			want: "en",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.setup != nil {
				tt.setup(r)
			}
			if got := detectLocale(r, tt.claim, tt.fallback, tt.country); got != tt.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveCountry(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(r *http.Request)
		lookup CountryLookup
		want   string
	}{
		{
			name: "header hint wins",
			setup: func(r *http.Request) {
				r.Header.Set("CF-IPCountry", "fr")
			},
			want: "FR",
		},
		{
			name: "locale region",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "en-AU")
			},
			want: "AU",
		},
		{
			name: "language only carries no region",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "en")
			},
			want: "",
		},
		{
			name: "geoip fallback",
			setup: func(r *http.Request) {
				r.Header.Set("X-Forwarded-For", "203.0.113.1")
			},
			lookup: func(ip string) (string, error) {
				if ip != "203.0.113.1" {
					t.Errorf("lookup ip = %q", ip)
				}
				return "ES", nil
			},
			want: "ES",
		},
		{
			name: "nothing known",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.setup != nil {
				tt.setup(r)
			}
			if got := ResolveCountry(r, tt.lookup); got != tt.want {
				t.Fatalf("ResolveCountry() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestI18NMiddlewareStoresContext(t *testing.T) {
	var gotLocale, gotCountry string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLocale = LocaleFromContext(r.Context())
		gotCountry = CountryFromContext(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Locale", "es-MX")
	I18N("en", nil)(next).ServeHTTP(httptest.NewRecorder(), r)

	if gotLocale != "es" {
		t.Errorf("locale = %q, want es", gotLocale)
	}
	if gotCountry != "MX" {
		t.Errorf("country = %q, want MX", gotCountry)
	}
}

// The locale claim stored by Auth survives when the request carries no
// locale headers of its own.
func TestI18NMiddlewareKeepsTokenLocale(t *testing.T) {
	var gotLocale string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLocale = LocaleFromContext(r.Context())
	})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r = r.WithContext(context.WithValue(r.Context(), LocaleKey, "es"))
	I18N("en", nil)(next).ServeHTTP(httptest.NewRecorder(), r)

	if gotLocale != "es" {
		t.Errorf("locale = %q, want es from the token claim", gotLocale)
	}
}
