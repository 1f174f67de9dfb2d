// Package export writes transactions back out as CSV statements that the
// importer's generic profile reads.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
)

// Header is the column layout of an exported statement. Date, Description and
// Amount are what the generic import profile looks for; the rest is ignored
// on the way back in.
var Header = []string{"Date", "Description", "Amount", "Category", "Raw Description"}

//go:generate mockgen -source=service.go -destination=service_mock.go -package=export
type Lister interface {
	List(ctx context.Context, actor user.Actor, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

// Service handles the export of transactions.
type Service struct {
	transactions Lister
}

func NewService(transactions Lister) *Service {
	return &Service{transactions: transactions}
}

// WriteCSV writes every transaction the actor can see under filter to w and
// returns how many rows were written. Expenses carry a negative amount.
func (s *Service) WriteCSV(ctx context.Context, actor user.Actor, filter transaction.ListFilter, w io.Writer) (int, error) {
	txs, err := s.transactions.List(ctx, actor, filter)
	if err != nil {
		return 0, fmt.Errorf("listing transactions: %w", err)
	}

	cw := csv.NewWriter(w)

	if err := cw.Write(Header); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for _, tx := range txs {
		record := []string{
			tx.Date.Format(time.DateOnly),
			tx.Description,
			signedAmount(tx),
			tx.CategoryName,
			tx.RawDescription,
		}

		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("writing transaction %s: %w", tx.ID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing csv: %w", err)
	}

	return len(txs), nil
}

// Summary renders one line per transaction, suitable for pasting into an email.
func (s *Service) Summary(ctx context.Context, actor user.Actor, filter transaction.ListFilter) (string, error) {
	txs, err := s.transactions.List(ctx, actor, filter)
	if err != nil {
		return "", fmt.Errorf("listing transactions: %w", err)
	}

	var sb strings.Builder

	for _, tx := range txs {
		fmt.Fprintf(&sb, "* %s | %s | %s | %s\n",
			tx.Date.Format(time.DateOnly), tx.Description, signedAmount(tx), tx.CategoryName)
	}

	return sb.String(), nil
}

// Filename names an export after the period it covers.
func Filename(filter transaction.ListFilter, now time.Time) string {
	switch {
	case filter.StartDate != nil && filter.EndDate != nil:
		return fmt.Sprintf("transactions_%s_%s.csv", filter.StartDate.Format("20060102"), filter.EndDate.Format("20060102"))
	case filter.StartDate != nil:
		return fmt.Sprintf("transactions_from_%s.csv", filter.StartDate.Format("20060102"))
	case filter.EndDate != nil:
		return fmt.Sprintf("transactions_until_%s.csv", filter.EndDate.Format("20060102"))
	}

	return fmt.Sprintf("transactions_%s.csv", now.Format("20060102"))
}

func signedAmount(tx *transaction.Transaction) string {
	if tx.Type == transaction.TypeExpense {
		return "-" + tx.Amount.StringFixed(2)
	}

	return tx.Amount.StringFixed(2)
}
