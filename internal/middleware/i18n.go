package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}
type countryContextKey struct{}

var (
	LocaleKey  = localeContextKey{}
	CountryKey = countryContextKey{}
)

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// supported lists the locales denial messages are translated into; the
// first entry is the fallback.
var supported = []language.Tag{
	language.English,
	language.Spanish,
	language.French,
}

var matcher = language.NewMatcher(supported)

// countryLocale maps countries without a usable Accept-Language header
// to a default locale.
var countryLocale = map[string]string{
	"MX": "es", "ES": "es", "CO": "es", "AR": "es",
	"FR": "fr",
}

// I18N stores the request's locale and best-effort country in context
// so handlers can localize denial messages for mobile clients. A locale
// already in context (the token's locale claim, stored by Auth) is kept
// as the user's stored preference; an explicit X-Locale header still
// overrides it.
func I18N(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claim, _ := r.Context().Value(LocaleKey).(string)
			country := ResolveCountry(r, lookup)
			locale := detectLocale(r, claim, defaultLocale, country)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			if country != "" {
				ctx = context.WithValue(ctx, CountryKey, strings.ToUpper(country))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, claim, fallback, country string) string {
	prefs := make([]string, 0, 3)
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		prefs = append(prefs, v)
	}
	if claim = strings.TrimSpace(claim); claim != "" {
		prefs = append(prefs, claim)
	}
	if v := strings.TrimSpace(r.Header.Get("Accept-Language")); v != "" {
		prefs = append(prefs, v)
	}
	if len(prefs) > 0 {
		tag, _ := language.MatchStrings(matcher, prefs...)
		base, _ := tag.Base()
		return base.String()
	}
	if loc, ok := countryLocale[strings.ToUpper(country)]; ok {
		return loc
	}
	if fallback != "" {
		return fallback
	}
	return "en"
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LocaleFromContext returns the detected locale; "en" when absent.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return "en"
}

// CountryFromContext returns the ISO country code stored in the request context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}

// ResolveCountry resolves a best-effort ISO country code for the given request.
func ResolveCountry(r *http.Request, lookup CountryLookup) string {
	if r == nil {
		return ""
	}
	headerHints := []string{"X-Country-Code", "X-IP-Country", "CF-IPCountry", "X-Appengine-Country"}
	for _, key := range headerHints {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	if region := localeRegion(r.Header.Get("X-Locale")); region != "" {
		return region
	}
	if region := localeRegion(r.Header.Get("Accept-Language")); region != "" {
		return region
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

// localeRegion extracts the region subtag from the first locale in the
// header, e.g. "en-AU,en;q=0.9" -> "AU".
func localeRegion(header string) string {
	first := strings.TrimSpace(strings.Split(header, ",")[0])
	first = strings.TrimSpace(strings.Split(first, ";")[0])
	if first == "" {
		return ""
	}
	tag, err := language.Parse(first)
	if err != nil {
		return ""
	}
	region, conf := tag.Region()
	if conf != language.Exact || !region.IsCountry() {
		return ""
	}
	return region.String()
}
