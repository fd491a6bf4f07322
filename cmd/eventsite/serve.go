package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ict4events/eventsite/internal/auth"
	"github.com/ict4events/eventsite/internal/db"
	"github.com/ict4events/eventsite/internal/locale"
	"github.com/ict4events/eventsite/internal/logging"
	"github.com/ict4events/eventsite/internal/web"
)

func (a *App) handleServe() {
	if err := a.config.Validate(); err != nil {
		printError("Invalid configuration in %s:\n%v", a.config.Path(), err)
	}

	logger, err := logging.New(a.config.Logging)
	if err != nil {
		printError("%v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.serve(ctx, logger); err != nil {
		logger.Error("Server stopped", zap.Error(err))
		printError("%v", err)
	}
}

func (a *App) serve(ctx context.Context, logger *zap.Logger) error {
	connector, err := a.config.Database.Connector()
	if err != nil {
		return err
	}
	store := db.NewStore(connector, logger)
	defer store.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	if err := store.Ping(pingCtx); err != nil {
		logger.Warn("Database not reachable at startup", zap.String("db_type", connector.GetDbType()), zap.Error(err))
	}
	cancel()

	text, err := locale.Load(a.config.Locale)
	if err != nil {
		return err
	}
	hasher, err := auth.NewHasher(a.config.Session.HashScheme)
	if err != nil {
		return err
	}
	codec, err := auth.NewTicketCodec(a.config.Session.Key())
	if err != nil {
		return err
	}

	authenticator := auth.NewAuthenticator(auth.NewUserRepository(store), hasher, codec, auth.Options{
		Lifetime:        a.config.Session.Lifetime(),
		DefaultRedirect: a.config.Session.DefaultRedirect,
	}, logger)

	server, err := web.NewServer(authenticator, store, text, a.config.Session, logger)
	if err != nil {
		return err
	}
	return server.ListenAndServe(ctx, a.config.Server)
}
