// Package respond writes JSON bodies and maps domain errors onto status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/budgetkeeper/internal/budget"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/category"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/importer"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/matching"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/transaction"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/user"
	"github.com/MrJamesThe3rd/budgetkeeper/internal/validation"
)

type fieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error  string       `json:"error"`
	Fields []fieldError `json:"fields,omitempty"`
	Line   int          `json:"line,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Decode reads a JSON body, rejecting unknown fields.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return validation.New("body", err.Error())
	}

	return nil
}

// Error writes err with the status its kind maps to. Unexpected errors are
// logged with the request ID and hidden from the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)

	resp := errorResponse{Error: err.Error()}

	var rowErr *importer.RowError
	if errors.As(err, &rowErr) {
		resp.Line = rowErr.Line
	}

	switch status {
	case http.StatusBadRequest:
		resp.Fields = fields(err)
	case http.StatusInternalServerError:
		slog.Error("failed to handle request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)

		resp = errorResponse{Error: "internal error", Line: resp.Line}
	}

	JSON(w, status, resp)
}

func Status(err error) int {
	switch {
	case validation.Is(err):
		return http.StatusBadRequest
	case errors.Is(err, user.ErrInvalidToken), errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, user.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, category.ErrNotFound),
		errors.Is(err, budget.ErrNotFound),
		errors.Is(err, transaction.ErrNotFound),
		errors.Is(err, matching.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, category.ErrDuplicate),
		errors.Is(err, budget.ErrDuplicate),
		errors.Is(err, transaction.ErrOverBudget),
		errors.Is(err, matching.ErrDuplicate):
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

func fields(err error) []fieldError {
	var all *validation.Errors
	if errors.As(err, &all) {
		out := make([]fieldError, 0, len(all.Errors))

		for _, e := range all.Errors {
			out = append(out, fieldOf(e))
		}

		return out
	}

	return []fieldError{fieldOf(err)}
}

func fieldOf(err error) fieldError {
	var ve *validation.Error
	if errors.As(err, &ve) {
		return fieldError{Field: ve.Field, Message: ve.Msg}
	}

	return fieldError{Message: err.Error()}
}
