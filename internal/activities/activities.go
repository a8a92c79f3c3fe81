package activities

import (
	"context"
	"fmt"
	"time"

	"github.com/dmfierro/bookhaven-backend/pkg/db/models"
	"github.com/dmfierro/bookhaven-backend/pkg/enums"
	pkgerrors "github.com/dmfierro/bookhaven-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultFeedSize is how many entries the dashboard feed shows.
const DefaultFeedSize = 10

// ActivityDTO is the transport shape of a feed entry.
type ActivityDTO struct {
	ID          uuid.UUID          `json:"id"`
	Type        enums.ActivityType `json:"type"`
	UserID      *uuid.UUID         `json:"user_id,omitempty"`
	BookID      *uuid.UUID         `json:"book_id,omitempty"`
	Description string             `json:"description"`
	CreatedAt   time.Time          `json:"created_at"`
}

// Repository persists and reads the activity feed.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds an activities repo bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Record writes a feed entry. When tx is non-nil the write joins the
// caller's transaction so the entry lives or dies with the domain change.
func (r *Repository) Record(ctx context.Context, tx *gorm.DB, activity models.Activity) error {
	conn := r.db
	if tx != nil {
		conn = tx
	}
	return conn.WithContext(ctx).Create(&activity).Error
}

// Recent returns the newest entries, capped at limit.
func (r *Repository) Recent(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 {
		limit = DefaultFeedSize
	}
	var rows []models.Activity
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Service exposes the feed read side.
type Service interface {
	Recent(ctx context.Context, limit int) ([]ActivityDTO, error)
}

type feedReader interface {
	Recent(ctx context.Context, limit int) ([]models.Activity, error)
}

type service struct {
	repo feedReader
}

// NewService builds the feed service.
func NewService(repo feedReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activities repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Recent(ctx context.Context, limit int) ([]ActivityDTO, error) {
	rows, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load activity feed")
	}
	out := make([]ActivityDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ActivityDTO{
			ID:          row.ID,
			Type:        row.Type,
			UserID:      row.UserID,
			BookID:      row.BookID,
			Description: row.Description,
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}
