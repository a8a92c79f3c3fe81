package books

import (
	"context"
	"testing"

	"github.com/dmfierro/bookhaven-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newBooksDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:books_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	// Raw DDL; the production schema relies on Postgres defaults.
	err = db.Exec(`
		CREATE TABLE books (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT NOT NULL,
			isbn TEXT NOT NULL UNIQUE,
			category TEXT NOT NULL,
			description TEXT,
			published_year INTEGER NOT NULL,
			total_copies INTEGER NOT NULL,
			copies_available INTEGER NOT NULL DEFAULT 0,
			cover_image_url TEXT,
			created_at DATETIME,
			updated_at DATETIME
		)
	`).Error
	if err != nil {
		t.Fatalf("create books table: %v", err)
	}
	return db
}

func TestSaveNeverTouchesCounters(t *testing.T) {
	t.Parallel()

	repo := NewRepository(newBooksDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Book{
		ID:              uuid.New(),
		Title:           "The Left Hand of Darkness",
		Author:          "Ursula K. Le Guin",
		ISBN:            "9780441478125",
		Category:        "science fiction",
		PublishedYear:   1969,
		TotalCopies:     5,
		CopiesAvailable: 5,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Two checkouts commit after our read and take copies off the shelf.
	if err := repo.(*repository).db.Exec(
		`UPDATE books SET copies_available = 3 WHERE id = ?`, created.ID,
	).Error; err != nil {
		t.Fatalf("simulate checkouts: %v", err)
	}

	// The catalog edit still holds the stale 5/5 row.
	created.Title = "The Dispossessed"
	if err := repo.Save(ctx, created); err != nil {
		t.Fatalf("save: %v", err)
	}

	fresh, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if fresh.Title != "The Dispossessed" {
		t.Fatalf("title not applied: %q", fresh.Title)
	}
	if fresh.CopiesAvailable != 3 || fresh.TotalCopies != 5 {
		t.Fatalf("catalog save overwrote the counters: %d/%d", fresh.CopiesAvailable, fresh.TotalCopies)
	}
}
