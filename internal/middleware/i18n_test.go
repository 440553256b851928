package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func localeProbe(t *testing.T, defaultLocale string, lookup CountryLookup, prep func(*http.Request)) string {
	t.Helper()
	var got string
	h := I18N(defaultLocale, lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:5000"
	if prep != nil {
		prep(req)
	}
	h.ServeHTTP(httptest.NewRecorder(), req)
	return got
}

func TestI18NExplicitHeaderWins(t *testing.T) {
	got := localeProbe(t, "en", nil, func(r *http.Request) {
		r.Header.Set("X-Locale", "he-IL")
		r.Header.Set("Accept-Language", "en-US,en;q=0.9")
	})
	if got != "he" {
		t.Fatalf("locale = %q, want he", got)
	}
	got = localeProbe(t, "he", nil, func(r *http.Request) {
		r.Header.Set("X-Locale", "iw")
	})
	if got != "he" {
		t.Fatalf("legacy iw code: locale = %q, want he", got)
	}
}

func TestI18NAcceptLanguage(t *testing.T) {
	got := localeProbe(t, "he", nil, func(r *http.Request) {
		r.Header.Set("Accept-Language", "en-US,en;q=0.9,he;q=0.5")
	})
	if got != "en" {
		t.Fatalf("locale = %q, want en", got)
	}
	got = localeProbe(t, "en", nil, func(r *http.Request) {
		r.Header.Set("Accept-Language", "he-IL,he;q=0.9")
	})
	if got != "he" {
		t.Fatalf("locale = %q, want he", got)
	}
}

func TestI18NGeoIPHint(t *testing.T) {
	israel := func(ip string) (string, error) { return "IL", nil }
	if got := localeProbe(t, "en", israel, nil); got != "he" {
		t.Fatalf("locale = %q, want he for IL address", got)
	}
	abroad := func(ip string) (string, error) { return "DE", nil }
	if got := localeProbe(t, "he", abroad, nil); got != "en" {
		t.Fatalf("locale = %q, want en for non-IL address", got)
	}
	failing := func(ip string) (string, error) { return "", errors.New("db closed") }
	if got := localeProbe(t, "he", failing, nil); got != "he" {
		t.Fatalf("locale = %q, want configured default on lookup failure", got)
	}
}

func TestI18NDefault(t *testing.T) {
	if got := localeProbe(t, "", nil, nil); got != "he" {
		t.Fatalf("locale = %q, want he fallback", got)
	}
	if got := localeProbe(t, "en", nil, nil); got != "en" {
		t.Fatalf("locale = %q, want configured default", got)
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if got := ClientIP(req); got != "10.0.0.1" {
		t.Fatalf("ClientIP = %q", got)
	}
	req.Header.Set("X-Forwarded-For", "198.51.100.9, 10.0.0.1")
	if got := ClientIP(req); got != "198.51.100.9" {
		t.Fatalf("ClientIP = %q, want forwarded address", got)
	}
}
