package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dmfierro/bookhaven-backend/internal/loans"
	pkgerrors "github.com/dmfierro/bookhaven-backend/pkg/errors"
	"github.com/dmfierro/bookhaven-backend/pkg/logger"
	"github.com/dmfierro/bookhaven-backend/pkg/pagination"
)

type stubLendingService struct {
	checkout func(ctx context.Context, input loans.CheckoutInput) (*loans.LoanView, error)
	ret      func(ctx context.Context, loanID uuid.UUID) (*loans.LoanView, error)
	update   func(ctx context.Context, loanID uuid.UUID, input loans.UpdateInput) (*loans.LoanView, error)
	list     func(ctx context.Context, filters loans.ListFilters, params pagination.Params) (*loans.LoanList, error)
}

func (s *stubLendingService) Checkout(ctx context.Context, input loans.CheckoutInput) (*loans.LoanView, error) {
	if s.checkout != nil {
		return s.checkout(ctx, input)
	}
	return &loans.LoanView{ID: uuid.New()}, nil
}

func (s *stubLendingService) Return(ctx context.Context, loanID uuid.UUID) (*loans.LoanView, error) {
	if s.ret != nil {
		return s.ret(ctx, loanID)
	}
	return &loans.LoanView{ID: loanID}, nil
}

func (s *stubLendingService) Update(ctx context.Context, loanID uuid.UUID, input loans.UpdateInput) (*loans.LoanView, error) {
	if s.update != nil {
		return s.update(ctx, loanID, input)
	}
	return &loans.LoanView{ID: loanID}, nil
}

func (s *stubLendingService) Delete(ctx context.Context, loanID uuid.UUID) error {
	return nil
}

func (s *stubLendingService) Get(ctx context.Context, loanID uuid.UUID) (*loans.LoanView, error) {
	return &loans.LoanView{ID: loanID}, nil
}

func (s *stubLendingService) List(ctx context.Context, filters loans.ListFilters, params pagination.Params) (*loans.LoanList, error) {
	if s.list != nil {
		return s.list(ctx, filters, params)
	}
	return &loans.LoanList{Lendings: []loans.LoanView{}}, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func withRouteParam(req *http.Request, name, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(name, value)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
	return req.WithContext(ctx)
}

func TestLendBook(t *testing.T) {
	logg := testLogger()

	t.Run("success", func(t *testing.T) {
		bookID := uuid.New()
		readerID := uuid.New()
		var got loans.CheckoutInput
		stub := &stubLendingService{
			checkout: func(ctx context.Context, input loans.CheckoutInput) (*loans.LoanView, error) {
				got = input
				return &loans.LoanView{ID: uuid.New(), BookID: input.BookID, ReaderID: input.ReaderID}, nil
			},
		}

		body := `{"book_id":"` + bookID.String() + `","reader_id":"` + readerID.String() + `","due_date":"2026-09-14T00:00:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/lendings/lend", strings.NewReader(body))
		rec := httptest.NewRecorder()
		LendBook(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.BookID != bookID || got.ReaderID != readerID {
			t.Fatalf("expected checkout input to carry ids, got %+v", got)
		}
		if got.LendDate != nil {
			t.Fatalf("expected lend date left for the service default")
		}
	})

	t.Run("missing due date", func(t *testing.T) {
		body := `{"book_id":"` + uuid.NewString() + `","reader_id":"` + uuid.NewString() + `"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/lendings/lend", strings.NewReader(body))
		rec := httptest.NewRecorder()
		LendBook(&stubLendingService{}, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for missing due date, got %d", rec.Code)
		}
	})

	t.Run("exhausted copies surface as conflict", func(t *testing.T) {
		stub := &stubLendingService{
			checkout: func(ctx context.Context, input loans.CheckoutInput) (*loans.LoanView, error) {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "no copies available")
			},
		}
		body := `{"book_id":"` + uuid.NewString() + `","reader_id":"` + uuid.NewString() + `","due_date":"2026-09-14T00:00:00Z"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/lendings/lend", strings.NewReader(body))
		rec := httptest.NewRecorder()
		LendBook(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409 when no copies remain, got %d", rec.Code)
		}
	})
}

func TestReturnBook(t *testing.T) {
	logg := testLogger()

	t.Run("success", func(t *testing.T) {
		lendingID := uuid.New()
		var returned uuid.UUID
		stub := &stubLendingService{
			ret: func(ctx context.Context, loanID uuid.UUID) (*loans.LoanView, error) {
				returned = loanID
				return &loans.LoanView{ID: loanID}, nil
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/lendings/return/"+lendingID.String(), nil)
		req = withRouteParam(req, "lendingId", lendingID.String())
		rec := httptest.NewRecorder()
		ReturnBook(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if returned != lendingID {
			t.Fatalf("expected return for %s, got %s", lendingID, returned)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/lendings/return/nope", nil)
		req = withRouteParam(req, "lendingId", "nope")
		rec := httptest.NewRecorder()
		ReturnBook(&stubLendingService{}, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for bad id, got %d", rec.Code)
		}
	})

	t.Run("already returned", func(t *testing.T) {
		stub := &stubLendingService{
			ret: func(ctx context.Context, loanID uuid.UUID) (*loans.LoanView, error) {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "lending already returned")
			},
		}
		lendingID := uuid.New()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/lendings/return/"+lendingID.String(), nil)
		req = withRouteParam(req, "lendingId", lendingID.String())
		rec := httptest.NewRecorder()
		ReturnBook(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422 for double return, got %d", rec.Code)
		}
	})
}

func TestEditLendingRejectsEmptyPatch(t *testing.T) {
	logg := testLogger()
	lendingID := uuid.New()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/lendings/"+lendingID.String(), strings.NewReader(`{}`))
	req = withRouteParam(req, "lendingId", lendingID.String())
	rec := httptest.NewRecorder()
	EditLending(&stubLendingService{}, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty patch, got %d", rec.Code)
	}
}

func TestEditLendingPassesOnlyProvidedFields(t *testing.T) {
	logg := testLogger()
	lendingID := uuid.New()
	var got loans.UpdateInput
	stub := &stubLendingService{
		update: func(ctx context.Context, loanID uuid.UUID, input loans.UpdateInput) (*loans.LoanView, error) {
			got = input
			return &loans.LoanView{ID: loanID}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/lendings/"+lendingID.String(),
		strings.NewReader(`{"due_date":"2026-10-01T00:00:00Z"}`))
	req = withRouteParam(req, "lendingId", lendingID.String())
	rec := httptest.NewRecorder()
	EditLending(stub, logg).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got.DueDate == nil || !got.DueDate.Equal(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected due date to pass through, got %+v", got.DueDate)
	}
	if got.BookID != nil || got.ReaderID != nil || got.IsReturned != nil {
		t.Fatalf("expected untouched fields to stay nil, got %+v", got)
	}
}

func TestListLendingsStatusFilter(t *testing.T) {
	logg := testLogger()

	t.Run("valid status", func(t *testing.T) {
		var got loans.ListFilters
		stub := &stubLendingService{
			list: func(ctx context.Context, filters loans.ListFilters, params pagination.Params) (*loans.LoanList, error) {
				got = filters
				return &loans.LoanList{Lendings: []loans.LoanView{}}, nil
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/lendings?status=overdue", nil)
		rec := httptest.NewRecorder()
		ListLendings(stub, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got.Status == nil || *got.Status != "overdue" {
			t.Fatalf("expected overdue filter, got %+v", got.Status)
		}

		var envelope struct {
			Data loans.LoanList `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if envelope.Data.Lendings == nil {
			t.Fatalf("expected lendings array in envelope")
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/lendings?status=misplaced", nil)
		rec := httptest.NewRecorder()
		ListLendings(&stubLendingService{}, logg).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
		}
	})
}
