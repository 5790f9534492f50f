package repository

import (
	"context"

	"gorm.io/gorm"

	"copyprocloud/internal/domain"
)

type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(ctx context.Context, l *domain.ActivityLog) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *ActivityLogRepository) ListRecent(ctx context.Context, limit int) ([]domain.ActivityLog, error) {
	var rows []domain.ActivityLog
	tx := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows)
	return rows, tx.Error
}
