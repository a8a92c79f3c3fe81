package models

import (
	"time"

	"github.com/google/uuid"
)

// Loan records one checkout of one physical copy. While IsReturned is false the
// loan holds exactly one unit of the book's capacity; overdue state is derived
// from DueDate on read and never stored.
type Loan struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookID     uuid.UUID  `gorm:"column:book_id;type:uuid;not null;index"`
	ReaderID   uuid.UUID  `gorm:"column:reader_id;type:uuid;not null;index"`
	LendDate   time.Time  `gorm:"column:lend_date;not null"`
	DueDate    time.Time  `gorm:"column:due_date;not null"`
	ReturnedAt *time.Time `gorm:"column:returned_at"`
	IsReturned bool       `gorm:"column:is_returned;not null;default:false"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
