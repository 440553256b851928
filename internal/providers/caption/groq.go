package caption

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sagi-ba/photo-to-photo/internal/imaging"
	"github.com/sagi-ba/photo-to-photo/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("caption: api key is required")

const defaultTimeout = 60 * time.Second

// systemInstruction is the fixed captioning brief. Descriptions written for
// a blind listener carry enough concrete detail to seed a generation prompt.
const systemInstruction = `You are describing an image to someone who is blind. Please be as detailed as possible.
1. Start with the overall subject or theme of the image in simple terms.
2. Describe the background: colors, patterns, or environmental details.
3. Describe the main subjects or objects in the image, including their position, appearance, clothing, expressions, textures, and actions.
4. Highlight the mood or atmosphere of the scene.
5. Mention any lighting effects, shadows, or other visual elements.
6. Be specific and avoid assumptions unless visually evident.`

// Options configures the Groq vision captioning client.
type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	HTTPClient  *http.Client
	Logger      *infra.Logger
}

// Client calls the Groq OpenAI-compatible chat completions API with an
// inline image and returns a natural-language description.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
	logger      *infra.Logger
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	TopP        float64       `json:"top_p"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imagePayload `json:"image_url,omitempty"`
}

type imagePayload struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient constructs a captioning client.
func NewClient(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "meta-llama/llama-4-scout-17b-16e-instruct"
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		apiKey:      opts.APIKey,
		baseURL:     baseURL,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		httpClient:  httpClient,
		logger:      opts.Logger,
	}, nil
}

// Describe normalizes the image to a data URI, requests a description from
// the vision model, and returns both. Any transport or decoding failure
// yields zero values; the caller treats that as "no image selected".
func (c *Client) Describe(ctx context.Context, data []byte, formatHint string) (string, string, error) {
	if len(data) == 0 {
		return "", "", errors.New("caption: empty image payload")
	}
	if formatHint == "" {
		formatHint = imaging.SniffFormat(data)
	}
	imageURI := imaging.EncodeDataURI(data, formatHint)

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: systemInstruction + "\n\nDescribe the following image in detail:"},
				{Type: "image_url", ImageURL: &imagePayload{URL: imageURI}},
			},
		}},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		TopP:        1,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", "", fmt.Errorf("caption: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", &buf)
	if err != nil {
		return "", "", fmt.Errorf("caption: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("caption: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if c.logger != nil {
			c.logger.Warn().Int("status", resp.StatusCode).Msg("captioning request rejected")
		}
		return "", "", fmt.Errorf("caption: unexpected status %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", "", fmt.Errorf("caption: decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", "", errors.New("caption: empty response")
	}
	description := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if description == "" {
		return "", "", errors.New("caption: blank description")
	}
	return imageURI, description, nil
}
