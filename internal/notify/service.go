package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmfierro/bookhaven-backend/pkg/db/models"
	pkgerrors "github.com/dmfierro/bookhaven-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DueReminderInput names the loan the reminder is about. The reader field is
// cross-checked against the loan so a stale UI cannot mail the wrong person.
type DueReminderInput struct {
	LendingID uuid.UUID
	ReaderID  uuid.UUID
}

type loanFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Loan, error)
}

type readerFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Reader, error)
}

type bookFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error)
}

// Service sends lending reminders.
type Service interface {
	SendDueReminder(ctx context.Context, input DueReminderInput) error
}

type service struct {
	loans   loanFinder
	readers readerFinder
	books   bookFinder
	sender  Sender
}

// NewService builds the reminder service.
func NewService(loans loanFinder, readers readerFinder, books bookFinder, sender Sender) (Service, error) {
	if loans == nil {
		return nil, fmt.Errorf("loan finder required")
	}
	if readers == nil {
		return nil, fmt.Errorf("reader finder required")
	}
	if books == nil {
		return nil, fmt.Errorf("book finder required")
	}
	if sender == nil {
		return nil, fmt.Errorf("mail sender required")
	}
	return &service{loans: loans, readers: readers, books: books, sender: sender}, nil
}

func (s *service) SendDueReminder(ctx context.Context, input DueReminderInput) error {
	loan, err := s.loans.FindByID(ctx, input.LendingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "lending not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lending")
	}
	if loan.ReaderID != input.ReaderID {
		return pkgerrors.New(pkgerrors.CodeValidation, "lending does not belong to reader")
	}
	if loan.IsReturned {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "lending already returned")
	}

	reader, err := s.readers.FindByID(ctx, loan.ReaderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "reader not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reader")
	}

	book, err := s.books.FindByID(ctx, loan.BookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "book not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load book")
	}

	msg := Message{
		To:      reader.Email,
		Subject: fmt.Sprintf("Reminder: %q is due %s", book.Title, loan.DueDate.Format("January 2, 2006")),
		Body:    reminderBody(reader.FullName, book.Title, loan.DueDate),
	}
	if err := s.sender.Send(ctx, msg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send reminder")
	}
	return nil
}

func reminderBody(readerName, bookTitle string, dueDate time.Time) string {
	overdue := dueDate.Before(time.Now().UTC())
	if overdue {
		return fmt.Sprintf(
			"Hello %s,\n\nOur records show %q was due on %s and has not been returned yet. Please bring it back at your earliest convenience.\n\nBookHaven Library",
			readerName, bookTitle, dueDate.Format("January 2, 2006"),
		)
	}
	return fmt.Sprintf(
		"Hello %s,\n\nThis is a friendly reminder that %q is due on %s.\n\nBookHaven Library",
		readerName, bookTitle, dueDate.Format("January 2, 2006"),
	)
}
