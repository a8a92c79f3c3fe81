package models

import (
	"time"

	"github.com/google/uuid"
)

// Book is a catalog entry. TotalCopies is the physical stock the library owns;
// CopiesAvailable counts the units currently on the shelf. The lending core is
// the only writer of CopiesAvailable and keeps it within [0, TotalCopies].
type Book struct {
	ID              uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Title           string    `gorm:"column:title;not null"`
	Author          string    `gorm:"column:author;not null"`
	ISBN            string    `gorm:"column:isbn;not null;unique"`
	Category        string    `gorm:"column:category;not null"`
	Description     *string   `gorm:"column:description"`
	PublishedYear   int       `gorm:"column:published_year;not null"`
	TotalCopies     int       `gorm:"column:total_copies;not null"`
	CopiesAvailable int       `gorm:"column:copies_available;not null;default:0"`
	CoverImageURL   *string   `gorm:"column:cover_image_url"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
