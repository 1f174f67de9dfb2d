package report

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/report"
)

type summaryResponse struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

type categoryAmountResponse struct {
	CategoryID uuid.UUID       `json:"category_id"`
	Name       string          `json:"name"`
	Color      string          `json:"color"`
	Amount     decimal.Decimal `json:"amount"`
}

type monthResponse struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
}

type overviewResponse struct {
	Summary    summaryResponse          `json:"summary"`
	ByCategory []categoryAmountResponse `json:"by_category"`
	Monthly    []monthResponse          `json:"monthly"`
}

func toSummaryResponse(s report.Summary) summaryResponse {
	return summaryResponse{Income: s.Income, Expenses: s.Expenses, Balance: s.Balance}
}

func toCategoryResponses(rows []report.CategoryAmount) []categoryAmountResponse {
	resp := make([]categoryAmountResponse, len(rows))
	for i, c := range rows {
		resp[i] = categoryAmountResponse{CategoryID: c.CategoryID, Name: c.Name, Color: c.Color, Amount: c.Amount}
	}

	return resp
}

func toMonthResponses(months []report.MonthTotals) []monthResponse {
	resp := make([]monthResponse, len(months))
	for i, m := range months {
		resp[i] = monthResponse{Month: m.Month, Income: m.Income, Expenses: m.Expenses}
	}

	return resp
}
