// gen_api_key mints a service key for a calling platform. The raw key is
// printed once and only its hash is stored.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"ticketdesk/internal/config"
	"ticketdesk/internal/database"
	"ticketdesk/internal/domain"
	"ticketdesk/internal/logging"
	"ticketdesk/internal/pkg/jwt"
	"ticketdesk/internal/repository"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "gen_api_key: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var platform, databaseURL string
	var revoke bool

	flagSet := pflag.NewFlagSet("gen_api_key", pflag.ContinueOnError)
	flagSet.StringVarP(&platform, "platform", "p", "", "platform name the key belongs to (required)")
	flagSet.StringVar(&databaseURL, "database-url", "", "database DSN (default: DATABASE_URL)")
	flagSet.BoolVar(&revoke, "revoke", false, "revoke every active key of the platform instead of minting one")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if platform == "" {
		return errors.New("--platform is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(cfg.AppEnv)
	if databaseURL == "" {
		databaseURL = cfg.DatabaseURL
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	keys := repository.NewAPIKeyRepository(db)

	if revoke {
		n, err := keys.RevokeByPlatform(ctx, platform)
		if err != nil {
			return fmt.Errorf("revoke keys: %w", err)
		}
		fmt.Printf("revoked %d key(s) for %s\n", n, platform)
		return nil
	}

	raw, err := newKey()
	if err != nil {
		return err
	}
	if err := keys.Create(ctx, &domain.APIKey{
		HashedKey:    jwt.HashToken(raw),
		PlatformName: platform,
	}); err != nil {
		return fmt.Errorf("store key: %w", err)
	}

	fmt.Printf("platform: %s\napi key:  %s\n\nStore it now; it cannot be shown again.\n", platform, raw)
	return nil
}

func newKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return hex.EncodeToString(b), nil
}
