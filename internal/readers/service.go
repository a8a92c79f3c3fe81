package readers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmfierro/bookhaven-backend/pkg/db"
	"github.com/dmfierro/bookhaven-backend/pkg/db/models"
	"github.com/dmfierro/bookhaven-backend/pkg/enums"
	pkgerrors "github.com/dmfierro/bookhaven-backend/pkg/errors"
	"github.com/dmfierro/bookhaven-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the persistence surface for the reader roster.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reader *models.Reader) (*models.Reader, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reader, error)
	Save(ctx context.Context, reader *models.Reader) error
	Delete(ctx context.Context, id uuid.UUID) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	TouchLastActivity(ctx context.Context, id uuid.UUID, at time.Time) error
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Reader, string, error)
}

// LoanGuard reports whether a reader still holds open loans.
type LoanGuard interface {
	HasOpenLoansByReader(ctx context.Context, readerID uuid.UUID) (bool, error)
}

// ActivityRecorder writes a feed entry inside the caller's transaction.
type ActivityRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, activity models.Activity) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes roster operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*ReaderDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ReaderDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*ReaderDTO, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*ReaderList, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	loans      LoanGuard
	activities ActivityRecorder
}

// NewService builds the roster service. The activity recorder is optional.
func NewService(repo Repository, tx txRunner, loans LoanGuard, activities ActivityRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("readers repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if loans == nil {
		return nil, fmt.Errorf("loan guard required")
	}
	return &service{repo: repo, tx: tx, loans: loans, activities: activities}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*ReaderDTO, error) {
	now := time.Now().UTC()
	reader := &models.Reader{
		FullName:       strings.TrimSpace(input.FullName),
		Email:          strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:          strings.TrimSpace(input.Phone),
		Address:        strings.TrimSpace(input.Address),
		IsActive:       true,
		MembershipDate: now,
		LastActivity:   now,
		Notes:          input.Notes,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		created, err := s.repo.WithTx(tx).Create(ctx, reader)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reader")
		}
		reader = created

		if s.activities != nil {
			activity := models.Activity{
				Type:        enums.ActivityReaderRegistered,
				Description: fmt.Sprintf("reader %s registered", reader.FullName),
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
	return FromModel(reader), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*ReaderDTO, error) {
	reader, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		reader.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Email != nil {
		reader.Email = strings.ToLower(strings.TrimSpace(*input.Email))
	}
	if input.Phone != nil {
		reader.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.Address != nil {
		reader.Address = strings.TrimSpace(*input.Address)
	}
	if input.IsActive != nil {
		reader.IsActive = *input.IsActive
	}
	if input.Notes != nil {
		reader.Notes = input.Notes
	}

	if err := s.repo.Save(ctx, reader); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save reader")
	}
	return FromModel(reader), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	open, err := s.loans.HasOpenLoansByReader(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check open loans")
	}
	if open {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "reader has books checked out")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete reader")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ReaderDTO, error) {
	reader, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(reader), nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*ReaderList, error) {
	rows, next, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list readers")
	}

	out := make([]ReaderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return &ReaderList{Readers: out, NextCursor: next}, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Reader, error) {
	reader, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reader not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reader")
	}
	return reader, nil
}
