package loans

import (
	"context"
	"testing"

	pkgerrors "github.com/dmfierro/bookhaven-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestReserveUntilExhausted(t *testing.T) {
	t.Parallel()

	db := newInventoryDB(t)
	ctx := context.Background()
	ledger := NewInventory()
	bookID := seedBook(t, db, 2, 2)

	for i := 0; i < 2; i++ {
		if err := db.Transaction(func(tx *gorm.DB) error {
			return ledger.Reserve(ctx, tx, bookID)
		}); err != nil {
			t.Fatalf("reserve %d: %v", i, err)
		}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(ctx, tx, bookID)
	})
	if err == nil {
		t.Fatal("expected reserve to fail once exhausted")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := availableCopies(t, db, bookID); got != 0 {
		t.Fatalf("expected 0 copies available, got %d", got)
	}
}

func TestReserveMissingBook(t *testing.T) {
	t.Parallel()

	db := newInventoryDB(t)
	ledger := NewInventory()

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Reserve(context.Background(), tx, uuid.New())
	})
	if err == nil {
		t.Fatal("expected not found error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReleaseAtCapacityIsAnIntegrityError(t *testing.T) {
	t.Parallel()

	db := newInventoryDB(t)
	ctx := context.Background()
	ledger := NewInventory()
	bookID := seedBook(t, db, 3, 3)

	// Already at capacity, an extra release means the ledger and the loan
	// rows disagree; it must surface instead of overflowing the shelf.
	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Release(ctx, tx, bookID)
	})
	if err == nil {
		t.Fatal("expected release at capacity to fail")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := availableCopies(t, db, bookID); got != 3 {
		t.Fatalf("expected copies to stay at 3, got %d", got)
	}
}

func TestReleaseMissingBook(t *testing.T) {
	t.Parallel()

	db := newInventoryDB(t)
	ledger := NewInventory()

	err := db.Transaction(func(tx *gorm.DB) error {
		return ledger.Release(context.Background(), tx, uuid.New())
	})
	if err == nil {
		t.Fatal("expected not found error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReserveThenRelease(t *testing.T) {
	t.Parallel()

	db := newInventoryDB(t)
	ctx := context.Background()
	ledger := NewInventory()
	bookID := seedBook(t, db, 5, 5)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := ledger.Reserve(ctx, tx, bookID); err != nil {
			return err
		}
		return ledger.Release(ctx, tx, bookID)
	})
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if got := availableCopies(t, db, bookID); got != 5 {
		t.Fatalf("expected copies restored to 5, got %d", got)
	}
}

func TestReserveRequiresTransaction(t *testing.T) {
	t.Parallel()

	ledger := NewInventory()
	if err := ledger.Reserve(context.Background(), nil, uuid.New()); err == nil {
		t.Fatal("expected error without transaction")
	}
	if err := ledger.Release(context.Background(), nil, uuid.New()); err == nil {
		t.Fatal("expected error without transaction")
	}
}

func newInventoryDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Raw DDL; the production schema relies on Postgres defaults.
	err = db.Exec(`
		CREATE TABLE books (
			id TEXT PRIMARY KEY,
			total_copies INTEGER NOT NULL,
			copies_available INTEGER NOT NULL,
			updated_at DATETIME
		)
	`).Error
	if err != nil {
		t.Fatalf("create books table: %v", err)
	}
	return db
}

func seedBook(t *testing.T, db *gorm.DB, total, available int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	err := db.Exec(
		`INSERT INTO books (id, total_copies, copies_available) VALUES (?, ?, ?)`,
		id, total, available,
	).Error
	if err != nil {
		t.Fatalf("seed book: %v", err)
	}
	return id
}

func availableCopies(t *testing.T, db *gorm.DB, id uuid.UUID) int {
	t.Helper()
	var available int
	err := db.Raw(`SELECT copies_available FROM books WHERE id = ?`, id).Scan(&available).Error
	if err != nil {
		t.Fatalf("load copies: %v", err)
	}
	return available
}
