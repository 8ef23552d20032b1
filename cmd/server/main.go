package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/vyaparsetu/portal/internal/auth"
	"github.com/vyaparsetu/portal/internal/config"
	"github.com/vyaparsetu/portal/internal/db"
	"github.com/vyaparsetu/portal/internal/events"
	"github.com/vyaparsetu/portal/internal/handlers"
	"github.com/vyaparsetu/portal/internal/services"
	"github.com/vyaparsetu/portal/internal/store"
	"github.com/vyaparsetu/portal/internal/web"
	"github.com/vyaparsetu/portal/templates"
)

func main() {
	cfg := config.Load()

	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx := context.Background()

	// Accounts and sessions always live in the gorm database.
	gdb, err := db.Open(cfg.StoreDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("database open failed")
	}
	logger.Info().Str("driver", cfg.StoreDriver).Msg("database ready")

	st, err := openStore(ctx, cfg, gdb, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("store init failed")
	}
	defer st.Close()

	provider := auth.NewLocalProvider(gdb)
	provider.OnAccountCreated(func(ctx context.Context, id auth.Identity) error {
		return services.ProvisionAgent(ctx, st, id.UID, id.Email)
	})
	sessions := auth.NewSessions(gdb, cfg.SessionTTL)
	sessions.OnAuthStateChanged(func(id *auth.Identity) {
		if id == nil {
			logger.Debug().Msg("session ended")
			return
		}
		logger.Debug().Str("uid", id.UID).Msg("session started")
	})
	roles := auth.NewRoles(cfg.AdminEmails)
	loc := cfg.Location()

	deps := handlers.Deps{
		Store:              st,
		Login:              services.NewLoginService(provider, sessions, roles, st, logger),
		Agents:             services.NewAgentService(st, loc, logger),
		Admin:              services.NewAdminService(st, logger),
		MaxAttachmentBytes: cfg.MaxAttachmentBytes,
		Location:           loc,
		SecureCookies:      !cfg.IsDevelopment(),
	}
	router := web.Router(logger, deps, templates.FS)

	purgeCtx, stopPurge := context.WithCancel(ctx)
	defer stopPurge()
	go purgeSessions(purgeCtx, sessions, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		// the live stream clears its own write deadline
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Msg("starting VyaparSetu server")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config, gdb *gorm.DB, logger zerolog.Logger) (store.Store, error) {
	if cfg.StoreDriver == "firestore" {
		client, err := store.NewFirestoreClient(ctx, cfg.FirestoreProjectID)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("project", cfg.FirestoreProjectID).Msg("connected to Firestore")
		return store.NewFirestoreStore(client), nil
	}

	var broker events.Broker = events.NewLocalBroker()
	if cfg.RedisURL != "" {
		rb, err := events.NewRedisBroker(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		broker = rb
		logger.Info().Msg("connected to Redis")
	}
	return store.NewGormStore(gdb, broker, logger), nil
}

func purgeSessions(ctx context.Context, sessions *auth.Sessions, logger zerolog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.PurgeExpired(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("purge sessions")
				continue
			}
			if n > 0 {
				logger.Info().Int64("purged", n).Msg("expired sessions removed")
			}
		}
	}
}
