package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/dmfierro/bookhaven-backend/api/responses"
	"github.com/dmfierro/bookhaven-backend/api/validators"
	"github.com/dmfierro/bookhaven-backend/internal/loans"
	"github.com/dmfierro/bookhaven-backend/pkg/enums"
	pkgerrors "github.com/dmfierro/bookhaven-backend/pkg/errors"
	"github.com/dmfierro/bookhaven-backend/pkg/logger"
	"github.com/dmfierro/bookhaven-backend/pkg/pagination"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type lendRequest struct {
	BookID   uuid.UUID  `json:"book_id" validate:"required"`
	ReaderID uuid.UUID  `json:"reader_id" validate:"required"`
	LendDate *time.Time `json:"lend_date"`
	DueDate  time.Time  `json:"due_date" validate:"required"`
}

type editLendingRequest struct {
	BookID     *uuid.UUID `json:"book_id"`
	ReaderID   *uuid.UUID `json:"reader_id"`
	DueDate    *time.Time `json:"due_date"`
	IsReturned *bool      `json:"is_returned"`
}

// LendBook checks one copy out to a reader.
func LendBook(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lending service unavailable"))
			return
		}

		var body lendRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Checkout(r.Context(), loans.CheckoutInput{
			BookID:   body.BookID,
			ReaderID: body.ReaderID,
			LendDate: body.LendDate,
			DueDate:  body.DueDate,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

// ReturnBook closes a lending and puts the copy back on the shelf.
func ReturnBook(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lending service unavailable"))
			return
		}

		loanID, ok := lendingIDParam(w, r, logg)
		if !ok {
			return
		}

		view, err := svc.Return(r.Context(), loanID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// EditLending applies a partial update to a lending record.
func EditLending(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lending service unavailable"))
			return
		}

		loanID, ok := lendingIDParam(w, r, logg)
		if !ok {
			return
		}

		var body editLendingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.BookID == nil && body.ReaderID == nil && body.DueDate == nil && body.IsReturned == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update"))
			return
		}

		view, err := svc.Update(r.Context(), loanID, loans.UpdateInput{
			BookID:     body.BookID,
			ReaderID:   body.ReaderID,
			DueDate:    body.DueDate,
			IsReturned: body.IsReturned,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// DeleteLending removes a lending record, releasing the copy when the loan
// was still open.
func DeleteLending(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lending service unavailable"))
			return
		}

		loanID, ok := lendingIDParam(w, r, logg)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), loanID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// GetLending returns one lending with its derived status.
func GetLending(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lending service unavailable"))
			return
		}

		loanID, ok := lendingIDParam(w, r, logg)
		if !ok {
			return
		}

		view, err := svc.Get(r.Context(), loanID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ListLendings returns a lending page, optionally filtered by status.
func ListLendings(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lending service unavailable"))
			return
		}

		filters, err := lendingFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), filters, paginationParams(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ListLendingsByReader scopes the lending list to one reader.
func ListLendingsByReader(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lending service unavailable"))
			return
		}

		readerID, err := uuidParam(r, "readerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, ferr := lendingFilters(r)
		if ferr != nil {
			responses.WriteError(r.Context(), logg, w, ferr)
			return
		}
		filters.ReaderID = &readerID

		list, err := svc.List(r.Context(), filters, paginationParams(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ListLendingsByBook scopes the lending list to one book.
func ListLendingsByBook(svc loans.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "lending service unavailable"))
			return
		}

		bookID, err := uuidParam(r, "bookId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, ferr := lendingFilters(r)
		if ferr != nil {
			responses.WriteError(r.Context(), logg, w, ferr)
			return
		}
		filters.BookID = &bookID

		list, err := svc.List(r.Context(), filters, paginationParams(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func lendingIDParam(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (uuid.UUID, bool) {
	id, err := uuidParam(r, "lendingId")
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return uuid.Nil, false
	}
	return id, true
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

func lendingFilters(r *http.Request) (loans.ListFilters, error) {
	filters := loans.ListFilters{}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status := enums.LoanStatus(strings.ToLower(raw))
		if !status.IsValid() {
			return filters, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter")
		}
		filters.Status = &status
	}
	return filters, nil
}

func paginationParams(r *http.Request) pagination.Params {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		limit = pagination.DefaultLimit
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}
}
