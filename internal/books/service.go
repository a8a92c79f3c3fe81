package books

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmfierro/bookhaven-backend/pkg/db"
	"github.com/dmfierro/bookhaven-backend/pkg/db/models"
	"github.com/dmfierro/bookhaven-backend/pkg/enums"
	pkgerrors "github.com/dmfierro/bookhaven-backend/pkg/errors"
	"github.com/dmfierro/bookhaven-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the persistence surface for the catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, book *models.Book) (*models.Book, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
	Save(ctx context.Context, book *models.Book) error
	Restock(ctx context.Context, id uuid.UUID, newTotal int) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Book, string, error)
}

// LoanGuard reports whether a book still has copies out on loan.
type LoanGuard interface {
	HasOpenLoansByBook(ctx context.Context, bookID uuid.UUID) (bool, error)
}

// ActivityRecorder writes a feed entry inside the caller's transaction.
type ActivityRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, activity models.Activity) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*BookDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*BookDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*BookDTO, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*BookList, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	loans      LoanGuard
	activities ActivityRecorder
}

// NewService builds the catalog service. The activity recorder is optional.
func NewService(repo Repository, tx txRunner, loans LoanGuard, activities ActivityRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("books repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if loans == nil {
		return nil, fmt.Errorf("loan guard required")
	}
	return &service{repo: repo, tx: tx, loans: loans, activities: activities}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*BookDTO, error) {
	book := &models.Book{
		Title:           strings.TrimSpace(input.Title),
		Author:          strings.TrimSpace(input.Author),
		ISBN:            normalizeISBN(input.ISBN),
		Category:        strings.TrimSpace(input.Category),
		Description:     input.Description,
		PublishedYear:   input.PublishedYear,
		TotalCopies:     input.TotalCopies,
		CopiesAvailable: input.TotalCopies,
		CoverImageURL:   input.CoverImageURL,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.repo.WithTx(tx).Create(ctx, book)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "isbn already in catalog")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create book")
		}
		book = created

		if s.activities != nil {
			activity := models.Activity{
				Type:        enums.ActivityBookAdded,
				BookID:      &book.ID,
				Description: fmt.Sprintf("book %q added", book.Title),
			}
			if err := s.activities.Record(ctx, tx, activity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record activity")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(book), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*BookDTO, error) {
	var updated *models.Book
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		book, err := loadBook(ctx, repo, id)
		if err != nil {
			return err
		}

		if input.Title != nil {
			book.Title = strings.TrimSpace(*input.Title)
		}
		if input.Author != nil {
			book.Author = strings.TrimSpace(*input.Author)
		}
		if input.Category != nil {
			book.Category = strings.TrimSpace(*input.Category)
		}
		if input.Description != nil {
			book.Description = input.Description
		}
		if input.PublishedYear != nil {
			book.PublishedYear = *input.PublishedYear
		}
		if input.CoverImageURL != nil {
			book.CoverImageURL = input.CoverImageURL
		}

		if err := repo.Save(ctx, book); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save book")
		}

		// Stock changes go through the clamped counter update, after the
		// plain field save so the counters cannot be overwritten by Save.
		if input.TotalCopies != nil && *input.TotalCopies != book.TotalCopies {
			if err := repo.Restock(ctx, id, *input.TotalCopies); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restock book")
			}
		}

		fresh, err := loadBook(ctx, repo, id)
		if err != nil {
			return err
		}
		updated = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(updated), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := loadBook(ctx, s.repo, id); err != nil {
		return err
	}

	open, err := s.loans.HasOpenLoansByBook(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open loans")
	}
	if open {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "book has copies out on loan")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete book")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*BookDTO, error) {
	book, err := loadBook(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return FromModel(book), nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*BookList, error) {
	rows, next, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list books")
	}

	out := make([]BookDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &BookList{Books: out, NextCursor: next}, nil
}

func loadBook(ctx context.Context, repo Repository, id uuid.UUID) (*models.Book, error) {
	book, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}
	return book, nil
}

func normalizeISBN(isbn string) string {
	return strings.ReplaceAll(strings.TrimSpace(isbn), "-", "")
}
