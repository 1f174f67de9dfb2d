package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
)

const dbTimeout = 5 * time.Second

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	dangerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// FormatAmount renders an amount with two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatSigned renders expenses as negative amounts.
func FormatSigned(tx *transaction.Transaction) string {
	if tx.Type == transaction.TypeExpense {
		return "-" + FormatAmount(tx.Amount)
	}

	return "+" + FormatAmount(tx.Amount)
}

func sumByType(txs []*transaction.Transaction) (income, expenses decimal.Decimal) {
	for _, tx := range txs {
		if tx.Type == transaction.TypeIncome {
			income = income.Add(tx.Amount)
		} else {
			expenses = expenses.Add(tx.Amount)
		}
	}

	return income, expenses
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}

// FormatDecision colours a budget decision by its tier.
func FormatDecision(d budget.Decision) string {
	switch d.Action {
	case budget.ActionBlock:
		return dangerStyle.Render(d.Message())
	case budget.ActionAllowWithWarning:
		return warningStyle.Render(d.Message())
	}

	return okStyle.Render(d.Message())
}

// FormatProgressStatus colours a progress status.
func FormatProgressStatus(s budget.ProgressStatus) string {
	switch s {
	case budget.StatusDanger:
		return dangerStyle.Render(string(s))
	case budget.StatusWarning:
		return warningStyle.Render(string(s))
	}

	return okStyle.Render(string(s))
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}
