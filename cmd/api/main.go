package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/app"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/config"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/database"
	budgetHttp "github.com/MrJamesThe3rd/budgetkeeper/internal/http"
	budgetHandler "github.com/MrJamesThe3rd/budgetkeeper/internal/http/budget"
	categoryHandler "github.com/MrJamesThe3rd/budgetkeeper/internal/http/category"
	exportHandler "github.com/MrJamesThe3rd/budgetkeeper/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/budgetkeeper/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/budgetkeeper/internal/http/matching"
	reportHandler "github.com/MrJamesThe3rd/budgetkeeper/internal/http/report"
	txHandler "github.com/MrJamesThe3rd/budgetkeeper/internal/http/transaction"
	userHandler "github.com/MrJamesThe3rd/budgetkeeper/internal/http/user"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(cfg.ConnectionString()); err != nil {
		return err
	}

	db, err := database.New(ctx, cfg.ConnectionString(), database.Pool{
		MaxOpen:     cfg.DB.MaxOpenConns,
		MaxIdle:     cfg.DB.MaxIdleConns,
		MaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	svc, err := app.New(db, cfg)
	if err != nil {
		return err
	}
	defer svc.Close()

	router := budgetHttp.New(budgetHttp.Handlers{
		Users:        userHandler.NewHandler(svc.Users, svc.Tokens),
		Categories:   categoryHandler.NewHandler(svc.Categories),
		Budgets:      budgetHandler.NewHandler(svc.Budgets),
		Transactions: txHandler.NewHandler(svc.Transactions),
		Reports:      reportHandler.NewHandler(svc.Reports),
		Import:       importHandler.NewHandler(svc.Import, cfg.Import.MaxUpload),
		Mappings:     matchingHandler.NewHandler(svc.Matching),
		Export:       exportHandler.NewHandler(svc.Export),
	}, svc.Tokens, cfg.CORS.Origins)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "addr", server.Addr)

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
