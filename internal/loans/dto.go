package loans

import (
	"time"

	"github.com/dmfierro/bookhaven-backend/pkg/enums"
	"github.com/google/uuid"
)

// CheckoutInput carries the data required to lend one copy of a book.
type CheckoutInput struct {
	BookID   uuid.UUID
	ReaderID uuid.UUID
	LendDate *time.Time
	DueDate  time.Time
}

// UpdateInput captures a partial edit of a lending record. Nil fields are
// left untouched; ReaderID and DueDate never move inventory, BookID does.
// IsReturned closes or reopens the loan with the matching inventory move.
// The lend date is fixed at checkout and cannot be edited.
type UpdateInput struct {
	BookID     *uuid.UUID
	ReaderID   *uuid.UUID
	DueDate    *time.Time
	IsReturned *bool
}

// ListFilters narrows the lending list.
type ListFilters struct {
	BookID   *uuid.UUID
	ReaderID *uuid.UUID
	Status   *enums.LoanStatus
}

// LoanView is a lending record plus its derived status.
type LoanView struct {
	ID         uuid.UUID        `json:"id"`
	BookID     uuid.UUID        `json:"book_id"`
	ReaderID   uuid.UUID        `json:"reader_id"`
	LendDate   time.Time        `json:"lend_date"`
	DueDate    time.Time        `json:"due_date"`
	ReturnedAt *time.Time       `json:"returned_at,omitempty"`
	IsReturned bool             `json:"is_returned"`
	Status     enums.LoanStatus `json:"status"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// LoanList wraps a page of lendings plus the next page cursor.
type LoanList struct {
	Lendings   []LoanView `json:"lendings"`
	NextCursor string     `json:"next_cursor,omitempty"`
}
