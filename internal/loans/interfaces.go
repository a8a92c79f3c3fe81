package loans

import (
	"context"
	"time"

	"github.com/dmfierro/bookhaven-backend/pkg/db/models"
	"github.com/dmfierro/bookhaven-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Inventory moves a book's available-copies counter atomically. Both calls
// must run inside the same transaction as the loan row they account for.
type Inventory interface {
	Reserve(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) error
	Release(ctx context.Context, tx *gorm.DB, bookID uuid.UUID) error
}

// Repository is the persistence surface the lending service depends on.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, loan *models.Loan) (*models.Loan, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	UpdateDetails(ctx context.Context, loan *models.Loan) error
	MarkReturned(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	MarkReopened(ctx context.Context, id uuid.UUID) (bool, error)
	MoveOpenLoan(ctx context.Context, id, bookID uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Loan, string, error)
	CountActive(ctx context.Context) (int64, error)
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
	HasOpenLoansByBook(ctx context.Context, bookID uuid.UUID) (bool, error)
	HasOpenLoansByReader(ctx context.Context, readerID uuid.UUID) (bool, error)
}

// Service exposes the lending operations.
type Service interface {
	Checkout(ctx context.Context, input CheckoutInput) (*LoanView, error)
	Return(ctx context.Context, loanID uuid.UUID) (*LoanView, error)
	Update(ctx context.Context, loanID uuid.UUID, input UpdateInput) (*LoanView, error)
	Delete(ctx context.Context, loanID uuid.UUID) error
	Get(ctx context.Context, loanID uuid.UUID) (*LoanView, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*LoanList, error)
}
