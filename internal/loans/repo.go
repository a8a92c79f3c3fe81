package loans

import (
	"context"
	"time"

	"github.com/dmfierro/bookhaven-backend/pkg/db/models"
	"github.com/dmfierro/bookhaven-backend/pkg/enums"
	"github.com/dmfierro/bookhaven-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a lending repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, loan *models.Loan) (*models.Loan, error) {
	if err := r.db.WithContext(ctx).Create(loan).Error; err != nil {
		return nil, err
	}
	return loan, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	var loan models.Loan
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&loan).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// UpdateDetails writes the editable columns only. The returned flag and the
// copy counters move exclusively through the conditional statements below,
// so a stale in-memory row can never overwrite them.
func (r *repository) UpdateDetails(ctx context.Context, loan *models.Loan) error {
	return r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ?", loan.ID).
		Updates(map[string]any{
			"book_id":   loan.BookID,
			"reader_id": loan.ReaderID,
			"due_date":  loan.DueDate,
		}).Error
}

// MarkReturned flips the returned flag only when the loan is still open, so
// a retried return cannot release the same copy twice.
func (r *repository) MarkReturned(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ? AND is_returned = ?", id, false).
		Updates(map[string]any{
			"is_returned": true,
			"returned_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MoveOpenLoan repoints a still-open loan at another book, reporting whether
// the row matched. The conditional write takes the row lock, so the inventory
// moves that follow cannot race a concurrent return.
func (r *repository) MoveOpenLoan(ctx context.Context, id, bookID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ? AND is_returned = ?", id, false).
		Update("book_id", bookID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// MarkReopened is the inverse flip, gated the same way so a reopen that
// races a concurrent edit reserves at most one copy.
func (r *repository) MarkReopened(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("id = ? AND is_returned = ?", id, true).
		Updates(map[string]any{
			"is_returned": false,
			"returned_at": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Loan{}).Error
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Loan, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Loan{})
	query = applyFilters(query, filters, time.Now().UTC())

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var loans []models.Loan
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&loans).Error
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(loans) > limit {
		loans = loans[:limit]
		last := loans[len(loans)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return loans, next, nil
}

func (r *repository) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("is_returned = ?", false).
		Count(&count).Error
	return count, err
}

func (r *repository) CountOverdue(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("is_returned = ? AND due_date < ?", false, now).
		Count(&count).Error
	return count, err
}

// HasOpenLoansByBook reports whether any copy of the book is still out.
func (r *repository) HasOpenLoansByBook(ctx context.Context, bookID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("book_id = ? AND is_returned = ?", bookID, false).
		Count(&count).Error
	return count > 0, err
}

// HasOpenLoansByReader reports whether the reader still holds open loans.
func (r *repository) HasOpenLoansByReader(ctx context.Context, readerID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Loan{}).
		Where("reader_id = ? AND is_returned = ?", readerID, false).
		Count(&count).Error
	return count > 0, err
}

func applyFilters(query *gorm.DB, filters ListFilters, now time.Time) *gorm.DB {
	if filters.BookID != nil {
		query = query.Where("book_id = ?", *filters.BookID)
	}
	if filters.ReaderID != nil {
		query = query.Where("reader_id = ?", *filters.ReaderID)
	}
	if filters.Status != nil {
		switch *filters.Status {
		case enums.LoanStatusReturned:
			query = query.Where("is_returned = ?", true)
		case enums.LoanStatusOverdue:
			query = query.Where("is_returned = ? AND due_date < ?", false, now)
		case enums.LoanStatusActive:
			query = query.Where("is_returned = ? AND due_date >= ?", false, now)
		}
	}
	return query
}
