package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/sagi-ba/photo-to-photo/internal/catalog"
	"github.com/sagi-ba/photo-to-photo/internal/counter"
	"github.com/sagi-ba/photo-to-photo/internal/flow"
	"github.com/sagi-ba/photo-to-photo/internal/http/handlers"
)

type fixedCaptioner struct{}

func (fixedCaptioner) Describe(ctx context.Context, data []byte, formatHint string) (string, string, error) {
	return "data:image/jpeg;base64,QUJD", "a red bicycle", nil
}

type fixedGenerator struct{}

func (fixedGenerator) Generate(ctx context.Context, prompt, model string) (string, error) {
	return "data:image/jpeg;base64," + strings.Repeat("QUJD", 300), nil
}

type fixedTranslator struct{}

func (fixedTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	return text, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()
	stylesPath := filepath.Join(dir, "styles.json")
	doc := `{"styles": [{"name": "סגנון חופשי", "prompt_prefix": ""}, {"name": "אנימה", "prompt_prefix": "anime style"}]}`
	if err := os.WriteFile(stylesPath, []byte(doc), 0o644); err != nil {
		t.Fatalf("write styles: %v", err)
	}

	styles := catalog.New(stylesPath, catalog.OrderAlphabetical)
	controller := flow.NewController(flow.Options{
		Styles:     styles,
		Captioner:  fixedCaptioner{},
		Generator:  fixedGenerator{},
		Translator: fixedTranslator{},
		Logger:     zerolog.Nop(),
	})
	t.Cleanup(func() { _ = controller.Close() })

	app := &handlers.App{
		Log:        zerolog.Nop(),
		Sessions:   flow.NewSessionStore(),
		Flow:       controller,
		Styles:     styles,
		Samples:    catalog.NewSamples(filepath.Join(dir, "samples")),
		Translator: fixedTranslator{},
		Counters:   counter.NewMemoryStore(),
	}

	router := NewRouter(app, Options{
		Logger:        zerolog.Nop(),
		DefaultLocale: "he",
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := *srv.Client()
	client.Jar = jar
	return &client
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t, srv)

	for _, path := range []string{"/v1/healthz", "/v1/stats", "/v1/session", "/v1/styles", "/v1/samples"} {
		resp, err := client.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d", path, resp.StatusCode)
		}
	}
}

func TestRouterSessionFlow(t *testing.T) {
	srv := newTestServer(t)
	client := newClient(t, srv)

	// Establish the session cookie.
	resp, err := client.Get(srv.URL + "/v1/session")
	if err != nil {
		t.Fatalf("GET session: %v", err)
	}
	resp.Body.Close()

	// Generating before uploading redirects back to the upload page.
	payload := bytes.NewBufferString(`{"style":"אנימה","prompt":"חתול"}`)
	resp, err = client.Post(srv.URL+"/v1/images/generate", "application/json", payload)
	if err != nil {
		t.Fatalf("POST generate: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("generate before upload status = %d, want 409", resp.StatusCode)
	}
	var guard struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&guard); err != nil {
		t.Fatalf("decode guard: %v", err)
	}
	if guard.Error.Code != "page_guard" {
		t.Fatalf("error code = %q", guard.Error.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	srv := newTestServer(t)
	resp, err := srv.Client().Get(srv.URL + "/v1/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
