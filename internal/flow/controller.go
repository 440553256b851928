package flow

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sagi-ba/photo-to-photo/internal/catalog"
	"github.com/sagi-ba/photo-to-photo/internal/domain"
	"github.com/sagi-ba/photo-to-photo/internal/imaging"
	"github.com/sagi-ba/photo-to-photo/internal/infra"
	"github.com/sagi-ba/photo-to-photo/internal/providers/generate"
	"github.com/sagi-ba/photo-to-photo/internal/providers/translate"
)

// Captioner turns raw image bytes into a normalized data URI plus a
// natural-language description.
type Captioner interface {
	Describe(ctx context.Context, data []byte, formatHint string) (imageURI, description string, err error)
}

// Generator renders a composed prompt with the named backend model and
// returns a data URI.
type Generator interface {
	Generate(ctx context.Context, prompt, model string) (string, error)
}

// Translator converts free text into the target language.
type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// ImageHost re-homes a base64 payload and returns a public URL.
type ImageHost interface {
	Upload(ctx context.Context, base64Image, title, description string) (string, error)
}

// PhotoSender pushes a finished image plus caption to a chat channel.
type PhotoSender interface {
	SendPhoto(ctx context.Context, image, caption string) error
}

const sideChannelTimeout = 60 * time.Second

// Controller drives the upload → process → result state machine. Each
// operation takes the session by reference, mutates it, and leaves
// CurrentPage reflecting the furthest validly reached step.
type Controller struct {
	styles     *catalog.Catalog
	captioner  Captioner
	generator  Generator
	translator Translator
	host       ImageHost   // nil disables re-hosting
	telegram   PhotoSender // nil disables the side channel
	logger     infra.Logger

	background *errgroup.Group
}

// Options carries the controller's collaborators. Captioner, Generator,
// Translator, and Styles are required; Host and Telegram are optional.
type Options struct {
	Styles     *catalog.Catalog
	Captioner  Captioner
	Generator  Generator
	Translator Translator
	Host       ImageHost
	Telegram   PhotoSender
	Logger     infra.Logger
}

// NewController wires up a flow controller.
func NewController(opts Options) *Controller {
	group := &errgroup.Group{}
	group.SetLimit(4)
	return &Controller{
		styles:     opts.Styles,
		captioner:  opts.Captioner,
		generator:  opts.Generator,
		translator: opts.Translator,
		host:       opts.Host,
		telegram:   opts.Telegram,
		logger:     opts.Logger,
		background: group,
	}
}

// Close drains the detached side-channel sends.
func (c *Controller) Close() error {
	return c.background.Wait()
}

// Upload captions the image, optionally re-hosts it, and advances the
// session to the process page. A captioning failure leaves the session
// untouched so the user stays on upload.
func (c *Controller) Upload(ctx context.Context, s *domain.Session, data []byte, formatHint string) error {
	imageURI, description, err := c.captioner.Describe(ctx, data, formatHint)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNoImage, err)
	}

	if c.host != nil && imaging.IsDataURI(imageURI) {
		base64Part := imageURI[strings.Index(imageURI, ",")+1:]
		hosted, err := c.host.Upload(ctx, base64Part, "AI Generated Image", "Generated by the photo-to-photo service")
		if err != nil {
			c.logger.Warn().Err(err).Msg("image re-hosting failed, keeping inline data uri")
		} else {
			imageURI = hosted
		}
	}

	s.SelectedImage = imageURI
	s.ImageDescription = generate.CleanPrompt(description)
	s.ImageUploaded = true
	s.CurrentPage = domain.PageProcess
	s.Touch()
	return nil
}

// Generate builds the full prompt from the chosen style and the translated
// user text, invokes the backend, and advances to the result page. The same
// operation serves regeneration from the result page; it never moves the
// session backward on success.
func (c *Controller) Generate(ctx context.Context, s *domain.Session, styleName, prompt string) error {
	if !s.ImageUploaded {
		s.CurrentPage = domain.PageUpload
		s.Touch()
		return &domain.PageGuardError{Redirect: domain.PageUpload}
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return domain.ErrEmptyPrompt
	}
	style, ok := c.styles.Lookup(styleName)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownStyle, styleName)
	}

	translated, err := c.translator.Translate(ctx, prompt, translate.TargetEnglish)
	if err != nil {
		// The bridge hands back the original text; generation proceeds
		// with it rather than failing the whole step.
		c.logger.Warn().Err(err).Msg("prompt translation failed, using original text")
	}
	fullPrompt := strings.TrimSpace(style.PromptPrefix + " " + translated)

	image, err := c.generator.Generate(ctx, fullPrompt, style.Model)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProviderFailure, err)
	}

	s.Prompt = prompt
	s.SelectedStyle = style.Name
	s.GeneratedImage = image
	s.ImageProcessed = true
	s.CurrentPage = domain.PageResult
	s.Touch()

	c.notifyTelegram(image, fmt.Sprintf("New image generated\nPrompt: %s\nStyle: %s", prompt, style.Name))
	return nil
}

// Restart resets the session to its initial state on the upload page.
func (c *Controller) Restart(s *domain.Session) {
	s.Reset()
}

// EnsurePage redirects the session backward when its prerequisite flags are
// unset, making the page guards total even for direct state reads.
func (c *Controller) EnsurePage(s *domain.Session) {
	if s.CurrentPage == domain.PageResult && !s.ImageProcessed {
		s.CurrentPage = domain.PageProcess
	}
	if s.CurrentPage == domain.PageProcess && !s.ImageUploaded {
		s.CurrentPage = domain.PageUpload
	}
}

// notifyTelegram dispatches a best-effort send off the critical path. The
// failure is captured and logged, never surfaced to the user, and the task
// is drained at shutdown through Close. TryGo keeps the dispatch
// non-blocking: when all slots are held by slow sends the notification is
// dropped rather than stalling the caller.
func (c *Controller) notifyTelegram(image, caption string) {
	if c.telegram == nil {
		return
	}
	started := c.background.TryGo(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), sideChannelTimeout)
		defer cancel()
		if err := c.telegram.SendPhoto(ctx, image, caption); err != nil {
			c.logger.Warn().Err(err).Msg("telegram delivery failed")
		}
		return nil
	})
	if !started {
		c.logger.Warn().Msg("telegram side channel saturated, notification dropped")
	}
}
