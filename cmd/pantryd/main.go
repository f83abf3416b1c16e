package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/pantry-tracker/internal/auth"
	"github.com/joseph-ayodele/pantry-tracker/internal/categories"
	"github.com/joseph-ayodele/pantry-tracker/internal/common"
	"github.com/joseph-ayodele/pantry-tracker/internal/export"
	"github.com/joseph-ayodele/pantry-tracker/internal/items"
	"github.com/joseph-ayodele/pantry-tracker/internal/kitchens"
	"github.com/joseph-ayodele/pantry-tracker/internal/pipeline/invoice"
	"github.com/joseph-ayodele/pantry-tracker/internal/preferences"
	"github.com/joseph-ayodele/pantry-tracker/internal/repository"
	"github.com/joseph-ayodele/pantry-tracker/internal/server"
)

func main() {
	cfg, err := common.LoadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	logger := common.NewLogger(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(2)
	}
	gin.SetMode(cfg.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("pantryd exited", "error", err)
		os.Exit(1)
	}
	logger.Info("stopped")
}

func run(ctx context.Context, cfg *common.Config, logger *slog.Logger) error {
	db, err := repository.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	prefs, err := preferences.Open(cfg.Preferences.Dir, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := prefs.Close(); err != nil {
			logger.Error("failed to close preference store", "error", err)
		}
	}()

	extractor, err := invoice.NewExtractor(cfg.LLM, logger)
	if err != nil {
		return err
	}
	verifier, err := auth.NewVerifier(auth.Config{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
	})
	if err != nil {
		return err
	}

	// repos
	userRepo := repository.NewUserRepository(db, logger)
	kitchenRepo := repository.NewKitchenRepository(db, logger)
	itemRepo := repository.NewItemRepository(db, logger)
	categoryRepo := repository.NewCategoryRepository(db, logger)

	// services
	kitchenSvc := kitchens.NewService(logger, kitchenRepo, itemRepo)
	srv := server.New(server.Deps{
		DB:       db,
		Users:    userRepo,
		Verifier: verifier,
		Kitchens: kitchenSvc,
		Items:    items.NewService(logger, itemRepo, kitchenRepo),
		Committer: items.NewCommitter(logger, items.CommitConfig{
			Workers:        cfg.Ingest.CommitWorkers,
			CurrencySymbol: cfg.Ingest.CurrencySymbol,
		}, categoryRepo, itemRepo, kitchenRepo),
		Categories:     categories.NewService(logger, categoryRepo),
		Preferences:    preferences.NewKitchenPreference(prefs, kitchenSvc, logger),
		Invoices:       invoice.NewPipeline(logger, invoice.Config{MaxUploadBytes: cfg.Ingest.MaxUploadBytes}, kitchenRepo, categoryRepo, extractor),
		Export:         export.NewService(logger),
		MaxUploadBytes: cfg.Ingest.MaxUploadBytes,
	}, logger)

	health := server.NewHealthServer(logger)
	if err := health.MarkServing(ctx, db); err != nil {
		return err
	}

	httpLn, err := net.Listen("tcp", cfg.Server.HTTPAddr)
	if err != nil {
		return err
	}
	grpcLn, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		_ = httpLn.Close()
		return err
	}

	errCh := make(chan error, 2)
	go func() { errCh <- srv.Serve(httpLn) }()
	go func() { errCh <- health.Serve(grpcLn) }()

	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case err = <-errCh:
		logger.Error("listener failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
	defer cancel()
	health.Stop()
	if serr := srv.Shutdown(shutdownCtx); serr != nil && !errors.Is(serr, context.Canceled) {
		logger.Error("http shutdown", "error", serr)
	}
	return err
}
