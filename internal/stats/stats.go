package stats

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/dmfierro/bookhaven-backend/pkg/errors"
)

// Dashboard aggregates the headline numbers for the admin landing page.
// ActiveLendings counts every open loan; OverdueLendings is the subset whose
// due date has passed.
type Dashboard struct {
	TotalBooks      int64 `json:"total_books"`
	TotalReaders    int64 `json:"total_readers"`
	ActiveLendings  int64 `json:"active_lendings"`
	OverdueLendings int64 `json:"overdue_lendings"`
}

type bookCounter interface {
	Count(ctx context.Context) (int64, error)
}

type readerCounter interface {
	Count(ctx context.Context) (int64, error)
}

type loanCounter interface {
	CountActive(ctx context.Context) (int64, error)
	CountOverdue(ctx context.Context, now time.Time) (int64, error)
}

// Service computes the dashboard snapshot.
type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type service struct {
	books   bookCounter
	readers readerCounter
	loans   loanCounter
	now     func() time.Time
}

// NewService builds the stats service over the three counting surfaces.
func NewService(books bookCounter, readers readerCounter, loans loanCounter) (Service, error) {
	if books == nil {
		return nil, fmt.Errorf("book counter required")
	}
	if readers == nil {
		return nil, fmt.Errorf("reader counter required")
	}
	if loans == nil {
		return nil, fmt.Errorf("loan counter required")
	}
	return &service{
		books:   books,
		readers: readers,
		loans:   loans,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	totalBooks, err := s.books.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count books")
	}
	totalReaders, err := s.readers.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count readers")
	}
	active, err := s.loans.CountActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count active lendings")
	}
	overdue, err := s.loans.CountOverdue(ctx, s.now())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count overdue lendings")
	}
	return &Dashboard{
		TotalBooks:      totalBooks,
		TotalReaders:    totalReaders,
		ActiveLendings:  active,
		OverdueLendings: overdue,
	}, nil
}
