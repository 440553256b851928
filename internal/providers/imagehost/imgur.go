package imagehost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sagi-ba/photo-to-photo/internal/infra"
)

// ErrMissingClientID indicates that the uploader was configured without credentials.
var ErrMissingClientID = errors.New("imagehost: client id is required")

const defaultTimeout = 30 * time.Second

// Options configures the imgur uploader.
type Options struct {
	ClientID   string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client re-hosts base64 image payloads on imgur and returns a stable
// public URL. Re-hosting is best-effort: the flow keeps the inline data
// URI when an upload fails.
type Client struct {
	clientID   string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

type uploadResponse struct {
	Data struct {
		Link string `json:"link"`
	} `json:"data"`
	Success bool `json:"success"`
}

// NewClient constructs an imgur uploader.
func NewClient(opts Options) (*Client, error) {
	if opts.ClientID == "" {
		return nil, ErrMissingClientID
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.imgur.com"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		clientID:   opts.ClientID,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     opts.Logger,
	}, nil
}

// Upload pushes a bare base64 image payload with title and description
// metadata and returns the hosted URL.
func (c *Client) Upload(ctx context.Context, base64Image, title, description string) (string, error) {
	if strings.TrimSpace(base64Image) == "" {
		return "", errors.New("imagehost: empty image payload")
	}

	form := url.Values{}
	form.Set("image", base64Image)
	form.Set("type", "base64")
	form.Set("title", title)
	form.Set("description", description)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/3/image", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("imagehost: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Client-ID "+c.clientID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("imagehost: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("imagehost: unexpected status %d", resp.StatusCode)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("imagehost: decode response: %w", err)
	}
	if !parsed.Success || parsed.Data.Link == "" {
		return "", errors.New("imagehost: upload rejected")
	}
	return parsed.Data.Link, nil
}
