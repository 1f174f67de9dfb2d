// Package app wires stores and services together for the binaries.
package app

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/budgetkeeper/internal/budget/store"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/category"
	categoryStore "github.com/MrJamesThe3rd/budgetkeeper/internal/category/store"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/config"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/export"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/importer"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/budgetkeeper/internal/matching/store"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/notify"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/report"
	reportStore "github.com/MrJamesThe3rd/budgetkeeper/internal/report/store"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
	txStore "github.com/MrJamesThe3rd/budgetkeeper/internal/transaction/store"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
	userStore "github.com/MrJamesThe3rd/budgetkeeper/internal/user/store"
)

type Services struct {
	Users        *user.Service
	Tokens       *user.TokenIssuer
	Categories   *category.Service
	Budgets      *budget.Service
	Transactions *transaction.Service
	Reports      *report.Service
	Matching     *matching.Service
	Import       *importer.Service
	Export       *export.Service

	closers []func() error
}

// New builds every service over db. Budget events go to AMQP when a broker URL
// is configured and are dropped otherwise.
func New(db *sql.DB, cfg *config.Config) (*Services, error) {
	var (
		publisher transaction.Publisher = notify.Nop{}
		closers   []func() error
	)

	if cfg.AMQP.URL != "" {
		amqp, err := notify.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
		if err != nil {
			return nil, fmt.Errorf("connecting to broker: %w", err)
		}

		publisher = amqp
		closers = append(closers, amqp.Close)
	} else {
		slog.Info("AMQP_URL not set, budget events are not published")
	}

	categories := categoryStore.New(db)

	var (
		budgetService      = budget.NewService(budgetStore.New(db), categories)
		transactionService = transaction.NewService(txStore.New(db), budgetService, categories, publisher)
		matchingService    = matching.NewService(matchingStore.New(db))
	)

	return &Services{
		Users:        user.NewService(userStore.New(db)),
		Tokens:       user.NewTokenIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL),
		Categories:   category.NewService(categories),
		Budgets:      budgetService,
		Transactions: transactionService,
		Reports:      report.NewService(reportStore.New(db)),
		Matching:     matchingService,
		Import:       importer.NewService(transactionService, matchingService),
		Export:       export.NewService(transactionService),
		closers:      closers,
	}, nil
}

// Close releases the broker connection, if any.
func (s *Services) Close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			slog.Error("failed to close", "error", err)
		}
	}
}
