package readers

import (
	"time"

	"github.com/dmfierro/bookhaven-backend/pkg/db/models"
	"github.com/google/uuid"
)

// CreateInput holds the roster fields for a new reader.
type CreateInput struct {
	FullName string  `json:"full_name" validate:"required,min=2,max=120"`
	Email    string  `json:"email" validate:"required,email"`
	Phone    string  `json:"phone" validate:"required,min=7,max=20"`
	Address  string  `json:"address" validate:"required,max=250"`
	Notes    *string `json:"notes" validate:"omitempty,max=500"`
}

// UpdateInput captures a partial edit; nil fields are left untouched.
type UpdateInput struct {
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=120"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,min=7,max=20"`
	Address  *string `json:"address" validate:"omitempty,max=250"`
	IsActive *bool   `json:"is_active"`
	Notes    *string `json:"notes" validate:"omitempty,max=500"`
}

// ListFilters narrows the reader roster list.
type ListFilters struct {
	Query  string
	Active *bool
}

// ReaderDTO is the transport shape of a roster entry.
type ReaderDTO struct {
	ID             uuid.UUID `json:"id"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Address        string    `json:"address"`
	IsActive       bool      `json:"is_active"`
	MembershipDate time.Time `json:"membership_date"`
	LastActivity   time.Time `json:"last_activity"`
	Notes          *string   `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ReaderList wraps a page of readers plus the next page cursor.
type ReaderList struct {
	Readers    []ReaderDTO `json:"readers"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func FromModel(r *models.Reader) *ReaderDTO {
	if r == nil {
		return nil
	}
	return &ReaderDTO{
		ID:             r.ID,
		FullName:       r.FullName,
		Email:          r.Email,
		Phone:          r.Phone,
		Address:        r.Address,
		IsActive:       r.IsActive,
		MembershipDate: r.MembershipDate,
		LastActivity:   r.LastActivity,
		Notes:          r.Notes,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}
