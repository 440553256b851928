package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/sagi-ba/photo-to-photo/internal/catalog"
	"github.com/sagi-ba/photo-to-photo/internal/counter"
	"github.com/sagi-ba/photo-to-photo/internal/flow"
	"github.com/sagi-ba/photo-to-photo/internal/http/handlers"
	"github.com/sagi-ba/photo-to-photo/internal/http/httpapi"
	"github.com/sagi-ba/photo-to-photo/internal/infra"
	"github.com/sagi-ba/photo-to-photo/internal/infra/geoip"
	"github.com/sagi-ba/photo-to-photo/internal/messaging/telegram"
	"github.com/sagi-ba/photo-to-photo/internal/messaging/whatsapp"
	appmw "github.com/sagi-ba/photo-to-photo/internal/middleware"
	"github.com/sagi-ba/photo-to-photo/internal/providers/caption"
	"github.com/sagi-ba/photo-to-photo/internal/providers/generate"
	"github.com/sagi-ba/photo-to-photo/internal/providers/imagehost"
	"github.com/sagi-ba/photo-to-photo/internal/providers/translate"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	counters, cleanup, err := buildCounterStore(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize counter store")
	}
	defer cleanup()

	captioner, err := caption.NewClient(caption.Options{
		APIKey:      cfg.GroqAPIKey,
		BaseURL:     cfg.GroqBaseURL,
		Model:       cfg.GroqModel,
		Temperature: cfg.GroqTemperature,
		MaxTokens:   cfg.GroqMaxTokens,
		Logger:      &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("captioning client misconfigured")
	}

	generator := generate.NewClient(generate.Options{
		BaseURL:      cfg.PollinationsBaseURL,
		DefaultModel: cfg.PollinationsModel,
		Logger:       &logger,
		Limiter:      rate.NewLimiter(rate.Limit(float64(cfg.GeneratePerMin)/60.0), 2),
	})

	translator := translate.NewClient(translate.Options{
		BaseURL: cfg.TranslateBaseURL,
		Logger:  &logger,
	})

	var host flow.ImageHost
	if cfg.ImgurClientID != "" {
		imgur, err := imagehost.NewClient(imagehost.Options{ClientID: cfg.ImgurClientID, Logger: &logger})
		if err != nil {
			logger.Fatal().Err(err).Msg("image host client misconfigured")
		}
		host = imgur
	}

	var telegramSender flow.PhotoSender
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		sender, err := telegram.NewSender(telegram.Options{
			BotToken: cfg.TelegramBotToken,
			ChatID:   cfg.TelegramChatID,
			Logger:   &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram sender misconfigured")
		}
		telegramSender = sender
	}

	var whatsappSender handlers.WhatsAppSender
	if cfg.GreenAPIInstanceID != "" && cfg.GreenAPIToken != "" {
		sender, err := whatsapp.NewSender(whatsapp.Options{
			InstanceID: cfg.GreenAPIInstanceID,
			APIToken:   cfg.GreenAPIToken,
			BaseURL:    cfg.GreenAPIBaseURL,
			Logger:     &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("whatsapp sender misconfigured")
		}
		whatsappSender = sender
	}

	styles := catalog.New(cfg.StylesPath, catalog.ParseOrder(cfg.StylesOrder))
	samples := catalog.NewSamples(cfg.SamplesDir)

	controller := flow.NewController(flow.Options{
		Styles:     styles,
		Captioner:  captioner,
		Generator:  generator,
		Translator: translator,
		Host:       host,
		Telegram:   telegramSender,
		Logger:     logger,
	})
	defer func() {
		if err := controller.Close(); err != nil {
			logger.Error().Err(err).Msg("draining side-channel sends failed")
		}
	}()

	app := &handlers.App{
		Log:        logger,
		Sessions:   flow.NewSessionStore(),
		Flow:       controller,
		Styles:     styles,
		Samples:    samples,
		Translator: translator,
		WhatsApp:   whatsappSender,
		Counters:   counters,
	}

	var countryLookup appmw.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip unavailable, locale falls back to headers")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
		defer func() {
			if closer, ok := resolver.(*geoip.Resolver); ok {
				_ = closer.Close()
			}
		}()
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		DefaultLocale:  cfg.DefaultLocale,
		CountryLookup:  countryLookup,
		RequestsPerMin: cfg.RateLimitPerMin,
		GeneratePerMin: cfg.GeneratePerMin,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}

func buildCounterStore(ctx context.Context, cfg *infra.Config) (counter.Store, func(), error) {
	switch cfg.CounterBackend {
	case "postgres":
		pool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			return nil, func() {}, err
		}
		initCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		store, err := counter.NewPostgresStore(initCtx, pool)
		if err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		return store, pool.Close, nil
	case "file":
		store, err := counter.NewFileStore(cfg.CounterPath)
		if err != nil {
			return nil, func() {}, err
		}
		return store, func() {}, nil
	default:
		return counter.NewMemoryStore(), func() {}, nil
	}
}
