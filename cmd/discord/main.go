// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/switchboard/internal/command/core"
	"github.com/keshon/switchboard/internal/config"
	"github.com/keshon/switchboard/internal/discord"
	"github.com/keshon/switchboard/internal/dispatch"
	"github.com/keshon/switchboard/internal/logging"
	"github.com/keshon/switchboard/internal/middleware"
	"github.com/keshon/switchboard/internal/resolver"
	"github.com/keshon/switchboard/internal/storage"
	v "github.com/keshon/switchboard/internal/version"
	"github.com/keshon/switchboard/pkg/cmd"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, envLoaded, err := config.Load()
	if err != nil {
		stderrLog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
		stderrLog.Error().Err(err).Msg("failed to load config")
		return err
	}

	log, closeLog, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		stderrLog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
		stderrLog.Error().Err(err).Msg("failed to set up logging")
		return err
	}
	defer closeLog()

	log.Info().Str("version", v.Short()).Bool("env_file", envLoaded).Msgf("Starting %v bot...", v.AppName)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid config")
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.StoragePath).Msg("failed to open storage")
		return err
	}
	defer store.Close()

	reg := cmd.NewRegistry()
	for _, c := range config.Categories {
		reg.DefineCategory(c.Name, c.Hidden)
	}
	res := resolver.New(reg, cfg.IsDeveloper)
	d := dispatch.New(res, cfg.Prefix,
		dispatch.WithFallback("help"),
		dispatch.WithLogger(log.With().Str("component", "dispatch").Logger()),
	)

	bot, err := discord.NewBot(cfg, d, reg, store, log.With().Str("component", "discord").Logger())
	if err != nil {
		log.Error().Err(err).Msg("failed to create bot")
		return err
	}

	limiter := middleware.NewRateLimiter(cfg.CommandRate, cfg.CommandBurst)
	err = core.Register(core.Deps{
		Resolver: res,
		Prefix:   cfg.Prefix,
		Log:      log,
		Latency:  bot.Latency,
		Users:    bot.LookupUser,
		History:  store,
	},
		middleware.WithCommandLogger(store, bot.Describe, log),
		middleware.WithRateLimit(limiter, cfg.IsDeveloper, log),
	)
	if err != nil {
		log.Error().Err(err).Msg("failed to register commands")
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down...")
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Discord bot error")
			return err
		}
	}

	log.Info().Msg("Discord bot exited cleanly")
	return nil
}
