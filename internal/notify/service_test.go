package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dmfierro/bookhaven-backend/pkg/db/models"
	pkgerrors "github.com/dmfierro/bookhaven-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubLoanFinder struct {
	loan *models.Loan
}

func (s *stubLoanFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	if s.loan == nil || s.loan.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.loan, nil
}

type stubReaderFinder struct {
	reader *models.Reader
}

func (s *stubReaderFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Reader, error) {
	if s.reader == nil || s.reader.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.reader, nil
}

type stubBookFinder struct {
	book *models.Book
}

func (s *stubBookFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	if s.book == nil || s.book.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.book, nil
}

type captureSender struct {
	sent []Message
}

func (s *captureSender) Send(ctx context.Context, msg Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

func reminderFixture(t *testing.T, dueDate time.Time, returned bool) (Service, *captureSender, DueReminderInput) {
	t.Helper()

	loan := &models.Loan{
		ID:         uuid.New(),
		BookID:     uuid.New(),
		ReaderID:   uuid.New(),
		LendDate:   dueDate.Add(-14 * 24 * time.Hour),
		DueDate:    dueDate,
		IsReturned: returned,
	}
	reader := &models.Reader{ID: loan.ReaderID, FullName: "Ada Reader", Email: "ada@example.com"}
	book := &models.Book{ID: loan.BookID, Title: "The Go Programming Language"}

	sender := &captureSender{}
	svc, err := NewService(
		&stubLoanFinder{loan: loan},
		&stubReaderFinder{reader: reader},
		&stubBookFinder{book: book},
		sender,
	)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc, sender, DueReminderInput{LendingID: loan.ID, ReaderID: loan.ReaderID}
}

func TestSendDueReminder(t *testing.T) {
	svc, sender, input := reminderFixture(t, time.Now().Add(48*time.Hour), false)

	if err := svc.SendDueReminder(context.Background(), input); err != nil {
		t.Fatalf("send reminder: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "ada@example.com" {
		t.Fatalf("unexpected recipient %s", msg.To)
	}
	if !strings.Contains(msg.Body, "Ada Reader") || !strings.Contains(msg.Subject, "The Go Programming Language") {
		t.Fatalf("reminder content incomplete: %+v", msg)
	}
}

func TestSendDueReminderOverdueWording(t *testing.T) {
	svc, sender, input := reminderFixture(t, time.Now().Add(-72*time.Hour), false)

	if err := svc.SendDueReminder(context.Background(), input); err != nil {
		t.Fatalf("send reminder: %v", err)
	}
	if !strings.Contains(sender.sent[0].Body, "has not been returned") {
		t.Fatalf("expected overdue wording, got %q", sender.sent[0].Body)
	}
}

func TestSendDueReminderReaderMismatch(t *testing.T) {
	svc, sender, input := reminderFixture(t, time.Now().Add(48*time.Hour), false)
	input.ReaderID = uuid.New()

	err := svc.SendDueReminder(context.Background(), input)
	if err == nil {
		t.Fatal("expected mismatch to be rejected")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("no mail should be sent on mismatch")
	}
}

func TestSendDueReminderAlreadyReturned(t *testing.T) {
	svc, sender, input := reminderFixture(t, time.Now().Add(-24*time.Hour), true)

	err := svc.SendDueReminder(context.Background(), input)
	if err == nil {
		t.Fatal("expected returned loan to be rejected")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatal("no mail should be sent for returned loan")
	}
}
