package books

import (
	"context"
	"errors"
	"testing"

	"github.com/dmfierro/bookhaven-backend/pkg/db/models"
	"github.com/dmfierro/bookhaven-backend/pkg/enums"
	pkgerrors "github.com/dmfierro/bookhaven-backend/pkg/errors"
	"github.com/dmfierro/bookhaven-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubBooksRepo struct {
	books     map[uuid.UUID]*models.Book
	createErr error
}

func newStubBooksRepo() *stubBooksRepo {
	return &stubBooksRepo{books: make(map[uuid.UUID]*models.Book)}
}

func (s *stubBooksRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubBooksRepo) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}
	copied := *book
	s.books[book.ID] = &copied
	return book, nil
}

func (s *stubBooksRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	book, ok := s.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *book
	return &copied, nil
}

func (s *stubBooksRepo) Save(ctx context.Context, book *models.Book) error {
	existing, ok := s.books[book.ID]
	if ok {
		// Counter columns are owned by Restock and the lending ledger.
		book.TotalCopies = existing.TotalCopies
		book.CopiesAvailable = existing.CopiesAvailable
	}
	copied := *book
	s.books[book.ID] = &copied
	return nil
}

func (s *stubBooksRepo) Restock(ctx context.Context, id uuid.UUID, newTotal int) error {
	book, ok := s.books[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	available := book.CopiesAvailable + (newTotal - book.TotalCopies)
	if available < 0 {
		available = 0
	}
	if available > newTotal {
		available = newTotal
	}
	book.TotalCopies = newTotal
	book.CopiesAvailable = available
	return nil
}

func (s *stubBooksRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.books, id)
	return nil
}

func (s *stubBooksRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(s.books)), nil
}

func (s *stubBooksRepo) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Book, string, error) {
	out := make([]models.Book, 0, len(s.books))
	for _, book := range s.books {
		out = append(out, *book)
	}
	return out, "", nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubLoanGuard struct {
	open bool
}

func (s stubLoanGuard) HasOpenLoansByBook(ctx context.Context, bookID uuid.UUID) (bool, error) {
	return s.open, nil
}

type stubActivityRecorder struct {
	recorded []models.Activity
}

func (s *stubActivityRecorder) Record(ctx context.Context, tx *gorm.DB, activity models.Activity) error {
	s.recorded = append(s.recorded, activity)
	return nil
}

func newTestService(t *testing.T, repo Repository, guard LoanGuard, recorder ActivityRecorder) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, guard, recorder)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateStartsWithFullShelf(t *testing.T) {
	repo := newStubBooksRepo()
	recorder := &stubActivityRecorder{}
	svc := newTestService(t, repo, stubLoanGuard{}, recorder)

	book, err := svc.Create(context.Background(), CreateInput{
		Title:         "The Left Hand of Darkness",
		Author:        "Ursula K. Le Guin",
		ISBN:          "978-0-441-47812-5",
		Category:      "science fiction",
		PublishedYear: 1969,
		TotalCopies:   4,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if book.CopiesAvailable != 4 {
		t.Fatalf("expected all copies available, got %d", book.CopiesAvailable)
	}
	if book.ISBN != "9780441478125" {
		t.Fatalf("expected normalized isbn, got %q", book.ISBN)
	}
	if len(recorder.recorded) != 1 || recorder.recorded[0].Type != enums.ActivityBookAdded {
		t.Fatalf("expected a book-added activity, got %+v", recorder.recorded)
	}
}

func TestCreateDuplicateISBNConflicts(t *testing.T) {
	repo := newStubBooksRepo()
	repo.createErr = errors.New(`duplicate key value violates unique constraint "books_isbn_key"`)
	svc := newTestService(t, repo, stubLoanGuard{}, nil)

	_, err := svc.Create(context.Background(), CreateInput{
		Title:         "Dune",
		Author:        "Frank Herbert",
		ISBN:          "9780441013593",
		Category:      "science fiction",
		PublishedYear: 1965,
		TotalCopies:   2,
	})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for duplicate isbn, got %v", err)
	}
}

func TestUpdateRestockShrinkClampsAvailable(t *testing.T) {
	repo := newStubBooksRepo()
	id := uuid.New()
	repo.books[id] = &models.Book{ID: id, Title: "Dune", TotalCopies: 5, CopiesAvailable: 4}
	svc := newTestService(t, repo, stubLoanGuard{}, nil)

	newTotal := 2
	updated, err := svc.Update(context.Background(), id, UpdateInput{TotalCopies: &newTotal})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.TotalCopies != 2 {
		t.Fatalf("expected total 2, got %d", updated.TotalCopies)
	}
	if updated.CopiesAvailable != 1 {
		t.Fatalf("expected available clamped to 1, got %d", updated.CopiesAvailable)
	}
}

func TestUpdateFieldEditLeavesCountersAlone(t *testing.T) {
	repo := newStubBooksRepo()
	id := uuid.New()
	repo.books[id] = &models.Book{ID: id, Title: "Dune", TotalCopies: 5, CopiesAvailable: 2}
	svc := newTestService(t, repo, stubLoanGuard{}, nil)

	title := "Dune Messiah"
	updated, err := svc.Update(context.Background(), id, UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Dune Messiah" {
		t.Fatalf("expected title edit, got %q", updated.Title)
	}
	if updated.TotalCopies != 5 || updated.CopiesAvailable != 2 {
		t.Fatalf("expected counters untouched, got %d/%d", updated.CopiesAvailable, updated.TotalCopies)
	}
}

func TestUpdateMissingBookNotFound(t *testing.T) {
	svc := newTestService(t, newStubBooksRepo(), stubLoanGuard{}, nil)

	title := "Ghost"
	_, err := svc.Update(context.Background(), uuid.New(), UpdateInput{Title: &title})
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteBlockedWhileCopiesOut(t *testing.T) {
	repo := newStubBooksRepo()
	id := uuid.New()
	repo.books[id] = &models.Book{ID: id, Title: "Dune", TotalCopies: 3, CopiesAvailable: 2}
	svc := newTestService(t, repo, stubLoanGuard{open: true}, nil)

	err := svc.Delete(context.Background(), id)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if _, ok := repo.books[id]; !ok {
		t.Fatalf("expected book to survive a blocked delete")
	}
}

func TestDeleteRemovesIdleBook(t *testing.T) {
	repo := newStubBooksRepo()
	id := uuid.New()
	repo.books[id] = &models.Book{ID: id, Title: "Dune", TotalCopies: 3, CopiesAvailable: 3}
	svc := newTestService(t, repo, stubLoanGuard{}, nil)

	if err := svc.Delete(context.Background(), id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := repo.books[id]; ok {
		t.Fatalf("expected book removed")
	}
}
