package models

import (
	"time"

	"github.com/google/uuid"
)

// Reader is a member of the library roster. Loans reference readers by id only.
type Reader struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FullName       string    `gorm:"column:full_name;not null"`
	Email          string    `gorm:"column:email;not null;unique"`
	Phone          string    `gorm:"column:phone;not null"`
	Address        string    `gorm:"column:address;not null"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true"`
	MembershipDate time.Time `gorm:"column:membership_date;not null"`
	LastActivity   time.Time `gorm:"column:last_activity;not null"`
	Notes          *string   `gorm:"column:notes"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
