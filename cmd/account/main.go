// Command account creates an identity-provider account and provisions its
// agent record.
//
//	account -email ravi@example.com -password secret
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/vyaparsetu/portal/internal/auth"
	"github.com/vyaparsetu/portal/internal/config"
	"github.com/vyaparsetu/portal/internal/db"
	"github.com/vyaparsetu/portal/internal/events"
	"github.com/vyaparsetu/portal/internal/services"
	"github.com/vyaparsetu/portal/internal/store"
)

func main() {
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "account password")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()

	addr, ok := services.NormEmail(*email)
	if !ok || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gdb, err := db.Open(cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("database open failed")
	}

	var st store.Store
	if cfg.StoreDriver == "firestore" {
		client, err := store.NewFirestoreClient(ctx, cfg.FirestoreProjectID)
		if err != nil {
			logger.Fatal().Err(err).Msg("firestore connect failed")
		}
		st = store.NewFirestoreStore(client)
	} else {
		var broker events.Broker = events.NewLocalBroker()
		if cfg.RedisURL != "" {
			// running servers refresh their live views through the shared broker
			if broker, err = events.NewRedisBroker(ctx, cfg.RedisURL); err != nil {
				logger.Fatal().Err(err).Msg("redis connect failed")
			}
		}
		st = store.NewGormStore(gdb, broker, logger)
	}
	defer st.Close()

	provider := auth.NewLocalProvider(gdb)
	provider.OnAccountCreated(func(ctx context.Context, id auth.Identity) error {
		return services.ProvisionAgent(ctx, st, id.UID, id.Email)
	})

	id, err := provider.CreateAccount(ctx, addr, *password)
	if err != nil {
		logger.Fatal().Err(err).Str("email", addr).Msg("create account failed")
	}
	role := auth.NewRoles(cfg.AdminEmails).Resolve(id.Email)
	logger.Info().Str("uid", id.UID).Str("email", id.Email).Str("role", string(role)).Msg("account created")
}
