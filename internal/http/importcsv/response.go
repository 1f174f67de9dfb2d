package importcsv

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	budgethttp "github.com/MrJamesThe3rd/budgetkeeper/internal/http/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/importer"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/importer/statement"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
)

type rowResponse struct {
	Line        int              `json:"line"`
	Date        respond.Date     `json:"date"`
	Description string           `json:"description"`
	Amount      decimal.Decimal  `json:"amount"`
	Type        transaction.Type `json:"type"`
}

type importedResponse struct {
	Line          int                         `json:"line"`
	TransactionID uuid.UUID                   `json:"transaction_id"`
	Decision      budgethttp.DecisionResponse `json:"decision"`
}

type blockedResponse struct {
	Row      rowResponse                 `json:"row"`
	Decision budgethttp.DecisionResponse `json:"decision"`
}

type duplicateResponse struct {
	Row        rowResponse `json:"row"`
	ExistingID uuid.UUID   `json:"existing_id"`
}

type importResponse struct {
	Profile    string              `json:"profile"`
	Charset    string              `json:"charset"`
	Imported   []importedResponse  `json:"imported"`
	Warnings   []importedResponse  `json:"warnings"`
	Blocked    []blockedResponse   `json:"blocked"`
	Duplicates []duplicateResponse `json:"duplicates"`
}

func toRow(line int, r statement.Row) rowResponse {
	return rowResponse{
		Line:        line,
		Date:        respond.Date{Time: r.Date},
		Description: r.Description,
		Amount:      r.Amount,
		Type:        r.Type,
	}
}

func toImported(rows []importer.Imported) []importedResponse {
	resp := make([]importedResponse, len(rows))
	for i, im := range rows {
		resp[i] = importedResponse{
			Line:          im.Line,
			TransactionID: im.Transaction.ID,
			Decision:      budgethttp.ToDecisionResponse(im.Decision),
		}
	}

	return resp
}

func toResponse(res *importer.Result) importResponse {
	resp := importResponse{
		Profile:    res.Profile,
		Charset:    res.Charset,
		Imported:   toImported(res.Imported),
		Warnings:   toImported(res.Warnings),
		Blocked:    make([]blockedResponse, len(res.Blocked)),
		Duplicates: make([]duplicateResponse, len(res.Duplicates)),
	}

	for i, b := range res.Blocked {
		resp.Blocked[i] = blockedResponse{Row: toRow(b.Line, b.Row), Decision: budgethttp.ToDecisionResponse(b.Decision)}
	}

	for i, d := range res.Duplicates {
		resp.Duplicates[i] = duplicateResponse{Row: toRow(d.Line, d.Row), ExistingID: d.Existing.ID}
	}

	return resp
}
