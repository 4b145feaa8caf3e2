// Package main is the entry point for the tournament registration bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tournament-bot/internal/bot"
	"tournament-bot/internal/config"
	"tournament-bot/internal/pkg/db"
	"tournament-bot/internal/pkg/lock"
	"tournament-bot/internal/pkg/session"
	"tournament-bot/internal/repository"
	"tournament-bot/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	tournamentRepo := repository.NewTournamentRepository(dbPool.Pool)
	registrationRepo := repository.NewRegistrationRepository(dbPool.Pool)
	userLinkRepo := repository.NewUserLinkRepository(dbPool.Pool, cfg.Links.DefaultMatch)

	// Ephemeral per-user state: conversation tracker and event serialization
	sessions := session.NewTracker()
	userLock := lock.NewUserLock()

	// The bot is created before the services because the registration and
	// broadcast workflows send messages through it.
	telegramBot, err := bot.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}

	// Initialize services
	creationService := service.NewCreationService(tournamentRepo, sessions)
	registrationService := service.NewRegistrationService(
		tournamentRepo,
		registrationRepo,
		sessions,
		telegramBot,
		cfg.Admin.ChatID,
	)
	broadcastService := service.NewBroadcastService(sessions, telegramBot)

	telegramBot.Register(&bot.Dependencies{
		Tournaments:   tournamentRepo,
		Registrations: registrationRepo,
		UserLinks:     userLinkRepo,
		Sessions:      sessions,
		UserLock:      userLock,
		Creation:      creationService,
		Registration:  registrationService,
		Broadcast:     broadcastService,
	})

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create tournaments table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tournaments (
			id VARCHAR(64) PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL DEFAULT '',
			entry_fee TEXT NOT NULL DEFAULT '',
			prize TEXT NOT NULL DEFAULT '',
			max_participants INT NOT NULL,
			participants INT NOT NULL DEFAULT 0,
			photo_id TEXT,
			status VARCHAR(20) NOT NULL DEFAULT 'active'
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: tournaments table created")

	// Migration 2: Create registrations table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS registrations (
			id BIGSERIAL PRIMARY KEY,
			tournament_id VARCHAR(64) NOT NULL REFERENCES tournaments(id),
			user_id BIGINT NOT NULL,
			user_handle TEXT,
			nickname TEXT NOT NULL,
			game_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (tournament_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_registrations_tournament_time ON registrations(tournament_id, created_at);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: registrations table created")

	// Migration 3: Create user_links table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS user_links (
			user_id BIGINT PRIMARY KEY,
			match_link TEXT NOT NULL
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 3: user_links table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
