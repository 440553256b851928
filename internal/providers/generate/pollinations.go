package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sagi-ba/photo-to-photo/internal/imaging"
	"github.com/sagi-ba/photo-to-photo/internal/infra"
)

// Generation parameters fixed by the service contract. The constant seed
// keeps identical prompts reproducing similar output across calls.
const (
	imageWidth  = 1280
	imageHeight = 720
	imageSeed   = 10
)

const (
	maxAttempts        = 4
	initialRetryDelay  = 5 * time.Second
	initialSettleDelay = 2 * time.Second
	maxSettleDelay     = 10 * time.Second
	attemptTimeout     = 30 * time.Second
)

// The upstream occasionally rejects default Go user agents.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// ErrExhausted is returned after every attempt failed.
var ErrExhausted = errors.New("pollinations: all attempts failed")

// Options configures the Pollinations text-to-image client.
type Options struct {
	BaseURL      string
	DefaultModel string
	HTTPClient   *http.Client
	Logger       *infra.Logger
	// Limiter throttles outbound generation calls across all sessions.
	Limiter *rate.Limiter
	// Sleep is replaceable in tests; defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Client performs HTTP calls to the Pollinations image generation endpoint
// with retry and content validation.
type Client struct {
	baseURL      string
	defaultModel string
	httpClient   *http.Client
	logger       *infra.Logger
	limiter      *rate.Limiter
	sleep        func(time.Duration)
}

// NewClient constructs a generation client with production defaults.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://image.pollinations.ai"
	}
	model := strings.TrimSpace(opts.DefaultModel)
	if model == "" {
		model = "flux"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Client{
		baseURL:      baseURL,
		defaultModel: model,
		httpClient:   httpClient,
		logger:       opts.Logger,
		limiter:      opts.Limiter,
		sleep:        sleep,
	}
}

// Generate renders the prompt with the named model and returns the result
// as a data:image/jpeg;base64 URI.
//
// Transport failures retry with exponential backoff (5s, 10s, 20s between
// attempts). Responses whose bytes fail content validation retry with a
// separate settle delay that doubles up to a 10s cap. At most four attempts
// are made and there is never a sleep after the final one.
func (c *Client) Generate(ctx context.Context, prompt, model string) (string, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		model = c.defaultModel
	}
	endpoint := c.buildURL(prompt, model)

	retryDelay := initialRetryDelay
	settleDelay := initialSettleDelay
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return "", err
			}
		}

		data, err := c.fetch(ctx, endpoint)
		if err == nil {
			verr := imaging.Validate(data)
			if verr == nil {
				return c.encode(data)
			}
			lastErr = verr
			if c.logger != nil {
				c.logger.Warn().Err(verr).Int("attempt", attempt).Msg("generated content failed validation")
			}
			if attempt < maxAttempts {
				c.sleep(settleDelay)
				settleDelay *= 2
				if settleDelay > maxSettleDelay {
					settleDelay = maxSettleDelay
				}
			}
			continue
		}

		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if c.logger != nil {
			c.logger.Warn().Err(err).Int("attempt", attempt).Msg("generation transport failure")
		}
		if attempt < maxAttempts {
			c.sleep(retryDelay)
			retryDelay *= 2
		}
	}

	return "", fmt.Errorf("%w: %v", ErrExhausted, lastErr)
}

func (c *Client) buildURL(prompt, model string) string {
	query := url.Values{}
	query.Set("model", model)
	query.Set("width", strconv.Itoa(imageWidth))
	query.Set("height", strconv.Itoa(imageHeight))
	query.Set("seed", strconv.Itoa(imageSeed))
	query.Set("nologo", "true")
	query.Set("enhance", "true")
	return c.baseURL + "/prompt/" + url.PathEscape(CleanPrompt(prompt)) + "?" + query.Encode()
}

func (c *Client) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("pollinations: build request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pollinations: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("pollinations: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("pollinations: read body: %w", err)
	}
	return data, nil
}

// encode wraps the validated bytes as a JPEG data URI. Non-JPEG payloads
// are re-encoded, flattening any alpha channel over white.
func (c *Client) encode(data []byte) (string, error) {
	if imaging.SniffFormat(data) == "jpeg" {
		return imaging.EncodeDataURI(data, "jpeg"), nil
	}
	converted, err := imaging.ReencodeJPEG(data, imaging.DefaultJPEGQuality)
	if err != nil {
		return "", fmt.Errorf("pollinations: jpeg fallback: %w", err)
	}
	return imaging.EncodeDataURI(converted, "jpeg"), nil
}

// CleanPrompt strips embedded HTML line-break markup and collapses
// whitespace runs before the prompt is URL-encoded.
func CleanPrompt(text string) string {
	if text == "" {
		return ""
	}
	for _, br := range []string{"<br>", "<br/>", "<br />"} {
		text = strings.ReplaceAll(text, br, " ")
	}
	return strings.Join(strings.Fields(text), " ")
}
