package books

import (
	"time"

	"github.com/dmfierro/bookhaven-backend/pkg/db/models"
	"github.com/google/uuid"
)

// CreateInput holds the catalog fields for a new book. All copies start on
// the shelf.
type CreateInput struct {
	Title         string  `json:"title" validate:"required,min=1,max=250"`
	Author        string  `json:"author" validate:"required,min=1,max=120"`
	ISBN          string  `json:"isbn" validate:"required,min=10,max=17"`
	Category      string  `json:"category" validate:"required,min=2,max=60"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	PublishedYear int     `json:"published_year" validate:"required,min=1000,max=2100"`
	TotalCopies   int     `json:"total_copies" validate:"required,min=1,max=10000"`
	CoverImageURL *string `json:"cover_image_url" validate:"omitempty,url,max=500"`
}

// UpdateInput captures a partial catalog edit; nil fields are left untouched.
type UpdateInput struct {
	Title         *string `json:"title" validate:"omitempty,min=1,max=250"`
	Author        *string `json:"author" validate:"omitempty,min=1,max=120"`
	Category      *string `json:"category" validate:"omitempty,min=2,max=60"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	PublishedYear *int    `json:"published_year" validate:"omitempty,min=1000,max=2100"`
	TotalCopies   *int    `json:"total_copies" validate:"omitempty,min=1,max=10000"`
	CoverImageURL *string `json:"cover_image_url" validate:"omitempty,url,max=500"`
}

// ListFilters narrows the catalog list.
type ListFilters struct {
	Query    string
	Category string
}

// BookDTO is the transport shape of a catalog entry.
type BookDTO struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	ISBN            string    `json:"isbn"`
	Category        string    `json:"category"`
	Description     *string   `json:"description,omitempty"`
	PublishedYear   int       `json:"published_year"`
	TotalCopies     int       `json:"total_copies"`
	CopiesAvailable int       `json:"copies_available"`
	CoverImageURL   *string   `json:"cover_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BookList wraps a page of books plus the next page cursor.
type BookList struct {
	Books      []BookDTO `json:"books"`
	NextCursor string    `json:"next_cursor,omitempty"`
}

func FromModel(b *models.Book) *BookDTO {
	if b == nil {
		return nil
	}
	return &BookDTO{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		Category:        b.Category,
		Description:     b.Description,
		PublishedYear:   b.PublishedYear,
		TotalCopies:     b.TotalCopies,
		CopiesAvailable: b.CopiesAvailable,
		CoverImageURL:   b.CoverImageURL,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}
