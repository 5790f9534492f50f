package repository

import (
	"context"

	"gorm.io/gorm"

	"copyprocloud/internal/domain"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) ListActive(ctx context.Context) ([]domain.CatalogService, error) {
	var rows []domain.CatalogService
	tx := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("category, name").
		Find(&rows)
	return rows, tx.Error
}

func (r *ServiceRepository) GetBySlug(ctx context.Context, slug string) (*domain.CatalogService, error) {
	var s domain.CatalogService
	tx := r.db.WithContext(ctx).Where("slug = ?", slug).First(&s)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &s, nil
}

func (r *ServiceRepository) Upsert(ctx context.Context, s *domain.CatalogService) error {
	var existing domain.CatalogService
	tx := r.db.WithContext(ctx).Where("slug = ?", s.Slug).First(&existing)
	if tx.Error == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(s).Error
	}
	if tx.Error != nil {
		return tx.Error
	}
	s.ID = existing.ID
	return r.db.WithContext(ctx).Save(s).Error
}
