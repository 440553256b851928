package whatsapp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/sagi-ba/photo-to-photo/internal/imaging"
	"github.com/sagi-ba/photo-to-photo/internal/infra"
)

// ErrMissingCredentials indicates the sender was configured without Green
// API credentials.
var ErrMissingCredentials = errors.New("whatsapp: instance id and api token are required")

const defaultTimeout = 60 * time.Second

// Options configures the Green API WhatsApp sender.
type Options struct {
	InstanceID string
	APIToken   string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Sender delivers a finished image to a WhatsApp number through the Green
// API file-upload endpoint. Unlike the Telegram channel this is synchronous
// and user-initiated, with explicit success or failure feedback.
type Sender struct {
	instanceID string
	apiToken   string
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewSender constructs a WhatsApp sender.
func NewSender(opts Options) (*Sender, error) {
	if opts.InstanceID == "" || opts.APIToken == "" {
		return nil, ErrMissingCredentials
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.green-api.com"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Sender{
		instanceID: opts.InstanceID,
		apiToken:   opts.APIToken,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     opts.Logger,
	}, nil
}

// SendImage validates and normalizes the phone number, decodes the image
// payload, and uploads it addressed to {phone}@c.us.
func (s *Sender) SendImage(ctx context.Context, phone, image, caption string) error {
	if err := ValidatePhone(phone); err != nil {
		return err
	}
	data, err := imaging.DecodeDataURI(image)
	if err != nil {
		return err
	}

	format := imaging.SniffFormat(data)
	if format == "" {
		format = "jpeg"
	}
	filename := "image." + format
	if format == "jpeg" {
		filename = "image.jpg"
	}

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	if err := writer.WriteField("chatId", NormalizePhone(phone)+"@c.us"); err != nil {
		return fmt.Errorf("whatsapp: write chatId: %w", err)
	}
	if err := writer.WriteField("caption", caption); err != nil {
		return fmt.Errorf("whatsapp: write caption: %w", err)
	}
	part, err := writer.CreatePart(filePartHeader(filename, "image/"+format))
	if err != nil {
		return fmt.Errorf("whatsapp: create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return fmt.Errorf("whatsapp: write file bytes: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("whatsapp: finalize form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/waInstance%s/sendFileByUpload/%s", s.baseURL, s.instanceID, s.apiToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("whatsapp: build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("whatsapp: upload status %d", resp.StatusCode)
	}
	return nil
}

func filePartHeader(filename, contentType string) textproto.MIMEHeader {
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	return header
}
