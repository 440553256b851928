package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTranslateParsesSegments(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[[["red bicycle ","אופניים אדומים",null,null,3],["on grass","על הדשא",null,null,3]],null,"he"]`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	got, err := c.Translate(context.Background(), "אופניים אדומים על הדשא", TargetEnglish)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "red bicycle on grass" {
		t.Fatalf("translated = %q", got)
	}
	for _, param := range []string{"client=gtx", "sl=auto", "tl=en", "dt=t"} {
		if !strings.Contains(gotQuery, param) {
			t.Errorf("query %q missing %q", gotQuery, param)
		}
	}
}

func TestTranslateEmptyInput(t *testing.T) {
	c := NewClient(Options{BaseURL: "http://127.0.0.1:0"})
	got, err := c.Translate(context.Background(), "   ", TargetHebrew)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestTranslateCachesResults(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`[[["hello","שלום",null,null,3]],null,"he"]`))
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	for i := 0; i < 3; i++ {
		got, err := c.Translate(context.Background(), "שלום", TargetEnglish)
		if err != nil {
			t.Fatalf("Translate #%d: %v", i, err)
		}
		if got != "hello" {
			t.Fatalf("translated = %q", got)
		}
	}
	if calls != 1 {
		t.Fatalf("upstream called %d times, want 1", calls)
	}
}

func TestTranslateFailureReturnsOriginal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	got, err := c.Translate(context.Background(), "שלום", TargetEnglish)
	if err == nil {
		t.Fatal("expected error")
	}
	if got != "שלום" {
		t.Fatalf("got %q, want original text back", got)
	}
}

func TestParseResponseRejectsGarbage(t *testing.T) {
	for _, body := range []string{"", "{}", "[]", `[[[null]]]`} {
		if _, err := parseResponse([]byte(body)); err == nil {
			t.Errorf("parseResponse(%q) succeeded, want error", body)
		}
	}
}
