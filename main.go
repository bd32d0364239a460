package main

import (
	"context"
	"errors"
	"fmt"
	"horsefax/internal/adapters/file"
	"horsefax/internal/adapters/generator"
	"horsefax/internal/adapters/store"
	"horsefax/internal/adapters/transport"
	"horsefax/internal/bot"
	"horsefax/internal/core/domain/module"
	"horsefax/internal/core/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func main() {
	log.Info().Msg("starting horsefax...")

	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("toml")
	bot.SetDefaults(v)

	log.Info().Msg("reading config file...")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal().Err(err).Msg("could not read config file")
		}
		log.Warn().Msg("no config file found, using defaults and environment")
	}

	cfg, err := bot.FromViper(v)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	var logLevel zerolog.Level

	switch cfg.LogLevel {
	case "info":
		logLevel = zerolog.InfoLevel
	case "debug":
		logLevel = zerolog.DebugLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		// fatal only after run's deferred cleanup, the cursor store must be closed cleanly
		log.Fatal().Err(err).Msg("bot stopped with error")
	}
}

// run owns every resource opened for the bot and releases them before returning.
func run(ctx context.Context, cfg bot.Config) error {
	var transportOpts []transport.Option
	if cfg.CursorPath != "" {
		cursor, err := store.NewCursor(cfg.CursorPath)
		if err != nil {
			return fmt.Errorf("failed opening cursor store at %s: %w", cfg.CursorPath, err)
		}
		defer func() {
			if err := cursor.Close(); err != nil {
				log.Error().Err(err).Msg("failed closing cursor store")
			}
		}()

		transportOpts = append(transportOpts, transport.WithCursorStore(cursor))
	}

	tracker := service.NewUsageTracker()
	if cfg.MetricsAddress != "" {
		go serveMetrics(cfg.MetricsAddress, tracker)
	}

	deps := module.Dependencies{
		Downloader: file.NewDownloader(30*time.Second, "horsefax"),
	}
	if cfg.OpenRouter.APIKey != "" {
		deps.Generator = generator.NewOpenRouter(cfg.OpenRouter.APIKey, cfg.OpenRouter.Model, cfg.OpenRouter.SystemPrompt)
	}

	botOpts := []bot.Option{bot.WithTracker(tracker)}
	if len(cfg.AllowedChatIDs) > 0 {
		botOpts = append(botOpts, bot.WithAuthorizer(service.NewAuthorizer(cfg.AllowedChatIDs)))
	}

	b := bot.New(transport.New(cfg.Telegram, transportOpts...), module.Table(deps), botOpts...)

	if err := b.LoadModules(cfg.Modules); err != nil {
		b.Stop()
		return fmt.Errorf("failed loading modules: %w", err)
	}

	if err := b.Start(ctx); err != nil {
		b.Stop()
		return fmt.Errorf("failed starting bot: %w", err)
	}

	log.Info().Strs("modules", b.LoadedModules()).Msg("bot listening")

	select {
	case <-ctx.Done():
	case <-b.Done():
	}

	log.Info().Msg("shutting down")
	b.Stop()
	<-b.Done()

	return nil
}

func serveMetrics(address string, tracker *service.UsageTracker) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", tracker.Handler())

	srv := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info().Str("address", address).Msg("serving metrics")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("metrics server failed")
	}
}
