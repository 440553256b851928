package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/sagi-ba/photo-to-photo/internal/imaging"
	"github.com/sagi-ba/photo-to-photo/internal/infra"
)

// ErrMissingCredentials indicates the sender was configured without a bot
// token or chat id.
var ErrMissingCredentials = errors.New("telegram: bot token and chat id are required")

const defaultTimeout = 30 * time.Second

// Options configures the Telegram photo sender.
type Options struct {
	BotToken   string
	ChatID     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Sender pushes finished images to a Telegram chat. It is a fire-and-forget
// side channel: callers dispatch it off the critical path and only log
// failures.
type Sender struct {
	botToken   string
	chatID     string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

type apiEnvelope struct {
	OK bool `json:"ok"`
}

// NewSender constructs a Telegram sender.
func NewSender(opts Options) (*Sender, error) {
	if opts.BotToken == "" || opts.ChatID == "" {
		return nil, ErrMissingCredentials
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Sender{
		botToken:   opts.BotToken,
		chatID:     opts.ChatID,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     opts.Logger,
	}, nil
}

// SendPhoto verifies the bot credentials, then uploads the decoded image
// bytes as a photo with caption. The image argument may be a full data URI
// or bare base64.
func (s *Sender) SendPhoto(ctx context.Context, image, caption string) error {
	data, err := imaging.DecodeDataURI(image)
	if err != nil {
		return err
	}

	if err := s.verify(ctx); err != nil {
		return err
	}

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("chat_id", s.chatID); err != nil {
		return fmt.Errorf("telegram: write chat_id: %w", err)
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return fmt.Errorf("telegram: write caption: %w", err)
		}
	}
	part, err := writer.CreateFormFile("photo", "image.jpg")
	if err != nil {
		return fmt.Errorf("telegram: create photo part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("telegram: write photo bytes: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("telegram: finalize form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendPhoto", s.baseURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("telegram: send photo status %d", resp.StatusCode)
	}
	return nil
}

// verify performs the getMe credential check before uploading.
func (s *Sender) verify(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/bot%s/getMe", s.baseURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("telegram: build verify request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: verify token: %w", err)
	}
	defer resp.Body.Close()

	var parsed apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("telegram: decode verify response: %w", err)
	}
	if !parsed.OK {
		return errors.New("telegram: bot token verification failed")
	}
	return nil
}
