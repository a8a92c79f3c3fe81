package books

import (
	"context"

	"github.com/dmfierro/bookhaven-backend/pkg/db/models"
	"github.com/dmfierro/bookhaven-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, book *models.Book) (*models.Book, error) {
	if err := r.db.WithContext(ctx).Create(book).Error; err != nil {
		return nil, err
	}
	return book, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Book, error) {
	var book models.Book
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&book).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// Save writes the catalog columns only. The copy counters are owned by
// Restock and the lending ledger; writing them from a loaded row would let
// a stale read overwrite a concurrent checkout or return.
func (r *repository) Save(ctx context.Context, book *models.Book) error {
	return r.db.WithContext(ctx).
		Model(&models.Book{}).
		Where("id = ?", book.ID).
		Updates(map[string]any{
			"title":           book.Title,
			"author":          book.Author,
			"isbn":            book.ISBN,
			"category":        book.Category,
			"description":     book.Description,
			"published_year":  book.PublishedYear,
			"cover_image_url": book.CoverImageURL,
		}).Error
}

// Restock changes the owned copy count and shifts the shelf counter by the
// same delta, clamped into [0, new total], in one statement.
func (r *repository) Restock(ctx context.Context, id uuid.UUID, newTotal int) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE books
		SET copies_available = LEAST(?, GREATEST(0, copies_available + (? - total_copies))),
			total_copies = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, newTotal, newTotal, newTotal, id).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Book{}).Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Book{}).Count(&count).Error
	return count, err
}

func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Book, string, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).Model(&models.Book{})
	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		query = query.Where("title ILIKE ? OR author ILIKE ? OR isbn ILIKE ?", pattern, pattern, pattern)
	}
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}

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

	var rows []models.Book
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}
