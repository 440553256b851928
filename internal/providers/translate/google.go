package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/sagi-ba/photo-to-photo/internal/infra"
)

const (
	// TargetEnglish feeds the generation prompt; TargetHebrew feeds the
	// editable description shown to the user.
	TargetEnglish = "en"
	TargetHebrew  = "iw"
)

const (
	defaultTimeout = 15 * time.Second
	cacheTTL       = time.Hour
	cacheSweep     = 10 * time.Minute
)

// Options configures the translation bridge.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client converts free text between Hebrew and English through the public
// Google translate endpoint. It is stateless apart from a memoization
// cache: the same description is translated on every page render, so
// repeated requests short-circuit.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
	cache      *gocache.Cache
}

// NewClient constructs a translation client.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://translate.googleapis.com"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     opts.Logger,
		cache:      gocache.New(cacheTTL, cacheSweep),
	}
}

// Translate converts text into the target language, auto-detecting the
// source. An empty input returns empty output. On failure the original
// text is returned alongside the error so callers can degrade gracefully.
func (c *Client) Translate(ctx context.Context, text, target string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", nil
	}
	cacheKey := target + "\x00" + text
	if cached, ok := c.cache.Get(cacheKey); ok {
		if s, ok := cached.(string); ok {
			return s, nil
		}
	}

	query := url.Values{}
	query.Set("client", "gtx")
	query.Set("sl", "auto")
	query.Set("tl", target)
	query.Set("dt", "t")
	query.Set("q", text)
	endpoint := c.baseURL + "/translate_a/single?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return text, fmt.Errorf("translate: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return text, fmt.Errorf("translate: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if c.logger != nil {
			c.logger.Warn().Int("status", resp.StatusCode).Str("target", target).Msg("translation request rejected")
		}
		return text, fmt.Errorf("translate: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return text, fmt.Errorf("translate: read body: %w", err)
	}

	translated, err := parseResponse(body)
	if err != nil {
		return text, err
	}
	c.cache.Set(cacheKey, translated, gocache.DefaultExpiration)
	return translated, nil
}

// parseResponse walks the nested-array payload of the gtx endpoint. The
// first element is a list of segments, each beginning with the translated
// chunk of the input.
func parseResponse(body []byte) (string, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return "", fmt.Errorf("translate: parse response: %w", err)
	}
	if len(outer) == 0 {
		return "", fmt.Errorf("translate: empty response")
	}
	var segments [][]any
	if err := json.Unmarshal(outer[0], &segments); err != nil {
		return "", fmt.Errorf("translate: parse segments: %w", err)
	}
	var sb strings.Builder
	for _, segment := range segments {
		if len(segment) == 0 {
			continue
		}
		if chunk, ok := segment[0].(string); ok {
			sb.WriteString(chunk)
		}
	}
	result := strings.TrimSpace(sb.String())
	if result == "" {
		return "", fmt.Errorf("translate: no translated segments")
	}
	return result, nil
}
