package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"ticketdesk/internal/config"
	"ticketdesk/internal/database"
	"ticketdesk/internal/logging"
	"ticketdesk/internal/repository"
)

// revoked renewal credentials are kept this long for auditing
const revokedRetention = 30 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logging.Init(cfg.AppEnv)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := repository.NewRefreshTokenRepository(db).DeleteStale(ctx, time.Now(), revokedRetention)
	if err != nil {
		log.Fatal().Err(err).Msg("cleanup refresh_tokens failed")
	}

	log.Info().Int64("refresh_tokens", n).Msg("auth cleanup completed")
}
