package loans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmfierro/bookhaven-backend/pkg/db/models"
	"github.com/dmfierro/bookhaven-backend/pkg/enums"
	pkgerrors "github.com/dmfierro/bookhaven-backend/pkg/errors"
	"github.com/dmfierro/bookhaven-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReaderDirectory answers whether a reader is registered and active.
type ReaderDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// ActivityRecorder writes a feed entry inside the caller's transaction.
type ActivityRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, activity models.Activity) error
}

type service struct {
	repo       Repository
	tx         txRunner
	inventory  Inventory
	readers    ReaderDirectory
	activities ActivityRecorder
	now        func() time.Time
}

// NewService builds the lending service with the required dependencies.
// The activity recorder is optional; everything else is not.
func NewService(repo Repository, tx txRunner, inventory Inventory, readers ReaderDirectory, activities ActivityRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("lending repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	if readers == nil {
		return nil, fmt.Errorf("reader directory required")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		inventory:  inventory,
		readers:    readers,
		activities: activities,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Checkout(ctx context.Context, input CheckoutInput) (*LoanView, error) {
	now := s.now()

	lendDate := now
	if input.LendDate != nil {
		lendDate = input.LendDate.UTC()
	}
	if input.DueDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due date is required")
	}
	dueDate := input.DueDate.UTC()
	if dueDate.Before(lendDate) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "due date must not be before lend date")
	}

	known, err := s.readers.Exists(ctx, input.ReaderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up reader")
	}
	if !known {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reader not found")
	}

	var created *models.Loan
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.inventory.Reserve(ctx, tx, input.BookID); err != nil {
			return err
		}
		loan := &models.Loan{
			BookID:   input.BookID,
			ReaderID: input.ReaderID,
			LendDate: lendDate,
			DueDate:  dueDate,
		}
		saved, err := s.repo.WithTx(tx).Create(ctx, loan)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create lending")
		}
		created = saved
		return nil
	})
	if err != nil {
		return nil, err
	}
	return viewOf(created, now), nil
}

func (s *service) Return(ctx context.Context, loanID uuid.UUID) (*LoanView, error) {
	now := s.now()

	var returned *models.Loan
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loan, err := repo.FindByID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "lending not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lending")
		}

		flipped, err := repo.MarkReturned(ctx, loanID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark returned")
		}
		if !flipped {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "lending already returned")
		}

		if err := s.inventory.Release(ctx, tx, loan.BookID); err != nil {
			return err
		}

		if s.activities != nil {
			activity := models.Activity{
				Type:        enums.ActivityBookReturned,
				BookID:      &loan.BookID,
				Description: "book returned",
			}
			if err := s.activities.Record(ctx, tx, activity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activity")
			}
		}

		loan.IsReturned = true
		loan.ReturnedAt = &now
		returned = loan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return viewOf(returned, now), nil
}

func (s *service) Update(ctx context.Context, loanID uuid.UUID, input UpdateInput) (*LoanView, error) {
	now := s.now()

	var updated *models.Loan
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loan, err := repo.FindByID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "lending not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lending")
		}

		if input.ReaderID != nil && *input.ReaderID != loan.ReaderID {
			known, err := s.readers.Exists(ctx, *input.ReaderID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up reader")
			}
			if !known {
				return pkgerrors.New(pkgerrors.CodeNotFound, "reader not found")
			}
			loan.ReaderID = *input.ReaderID
		}

		// Moving an open loan to another book moves the copy with it. The
		// conditional repoint reports whether the row was still open; a loan
		// returned meanwhile is repointed without touching inventory.
		if input.BookID != nil && *input.BookID != loan.BookID {
			moved, err := repo.MoveOpenLoan(ctx, loanID, *input.BookID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "move lending")
			}
			if moved {
				if err := s.inventory.Reserve(ctx, tx, *input.BookID); err != nil {
					return err
				}
				if err := s.inventory.Release(ctx, tx, loan.BookID); err != nil {
					return err
				}
			}
			loan.BookID = *input.BookID
		}

		if input.DueDate != nil {
			loan.DueDate = input.DueDate.UTC()
		}
		if loan.DueDate.Before(loan.LendDate) {
			return pkgerrors.New(pkgerrors.CodeValidation, "due date must not be before lend date")
		}

		if input.IsReturned != nil && *input.IsReturned != loan.IsReturned {
			if *input.IsReturned {
				// Closing through an edit puts the copy back like a return.
				// The release is gated on the conditional flip, so a return
				// committing after our read cannot release the copy twice.
				flipped, err := repo.MarkReturned(ctx, loanID, now)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark returned")
				}
				if flipped {
					if err := s.inventory.Release(ctx, tx, loan.BookID); err != nil {
						return err
					}
					if loan.ReturnedAt == nil {
						loan.ReturnedAt = &now
					}
					if s.activities != nil {
						activity := models.Activity{
							Type:        enums.ActivityBookReturned,
							BookID:      &loan.BookID,
							Description: "book returned",
						}
						if err := s.activities.Record(ctx, tx, activity); err != nil {
							return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activity")
						}
					}
				}
				loan.IsReturned = true
			} else {
				// Reopening takes a copy off the shelf again and fails when
				// none are left. Flip first; a failed reserve rolls the flip
				// back with the rest of the transaction.
				flipped, err := repo.MarkReopened(ctx, loanID)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark reopened")
				}
				if flipped {
					if err := s.inventory.Reserve(ctx, tx, loan.BookID); err != nil {
						return err
					}
				}
				loan.IsReturned = false
				loan.ReturnedAt = nil
			}
		}

		if err := repo.UpdateDetails(ctx, loan); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save lending")
		}
		updated = loan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return viewOf(updated, now), nil
}

func (s *service) Delete(ctx context.Context, loanID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		loan, err := repo.FindByID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "lending not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lending")
		}

		// Deleting an open loan puts its copy back on the shelf. Closing the
		// row first makes the release conditional: if a return commits after
		// our read, the flip matches nothing and the copy stays put.
		flipped, err := repo.MarkReturned(ctx, loanID, s.now())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark returned")
		}
		if flipped {
			if err := s.inventory.Release(ctx, tx, loan.BookID); err != nil {
				return err
			}
		}

		if err := repo.Delete(ctx, loanID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete lending")
		}
		return nil
	})
}

func (s *service) Get(ctx context.Context, loanID uuid.UUID) (*LoanView, error) {
	loan, err := s.repo.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "lending not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lending")
	}
	return viewOf(loan, s.now()), nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*LoanList, error) {
	loans, next, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list lendings")
	}

	now := s.now()
	views := make([]LoanView, 0, len(loans))
	for i := range loans {
		views = append(views, *viewOf(&loans[i], now))
	}
	return &LoanList{Lendings: views, NextCursor: next}, nil
}
