package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmfierro/bookhaven-backend/pkg/enums"
)

// Activity is an append-only feed entry shown on the dashboard.
type Activity struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Type        enums.ActivityType `gorm:"column:type;type:activity_type;not null"`
	UserID      *uuid.UUID         `gorm:"column:user_id;type:uuid"`
	BookID      *uuid.UUID         `gorm:"column:book_id;type:uuid"`
	Description string             `gorm:"column:description"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime;index"`
}
