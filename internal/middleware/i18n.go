package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

// LocaleKey exposes the resolved UI locale ("he" or "en") in the request
// context.
var LocaleKey = localeContextKey{}

// supported lists the UI locales; Hebrew first so the matcher falls back to
// it when negotiation fails.
var supported = []language.Tag{language.Hebrew, language.English}
var matcher = language.NewMatcher(supported)

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// I18N resolves the UI locale per request: an explicit X-Locale header
// wins, then Accept-Language negotiation, then a GeoIP country hint
// (Israel maps to Hebrew), then the configured default.
func I18N(defaultLocale string, lookup CountryLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, defaultLocale, lookup)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LocaleFromContext returns the negotiated locale, defaulting to Hebrew.
func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok && v != "" {
		return v
	}
	return "he"
}

func detectLocale(r *http.Request, fallback string, lookup CountryLookup) string {
	if v := r.Header.Get("X-Locale"); v != "" {
		return normalizeLocale(v)
	}
	if header := r.Header.Get("Accept-Language"); header != "" {
		if tags, _, err := language.ParseAcceptLanguage(header); err == nil && len(tags) > 0 {
			tag, _, conf := matcher.Match(tags...)
			if conf > language.No {
				return normalizeTag(tag)
			}
		}
	}
	if lookup != nil {
		if country, err := lookup(ClientIP(r)); err == nil {
			if strings.EqualFold(country, "IL") {
				return "he"
			}
			if country != "" {
				return "en"
			}
		}
	}
	if fallback != "" {
		return normalizeLocale(fallback)
	}
	return "he"
}

func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	// Hebrew arrives under both its modern and legacy ISO codes.
	if strings.HasPrefix(locale, "he") || strings.HasPrefix(locale, "iw") {
		return "he"
	}
	return "en"
}

func normalizeTag(tag language.Tag) string {
	base, _ := tag.Base()
	return normalizeLocale(base.String())
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
