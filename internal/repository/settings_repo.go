package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"copyprocloud/internal/domain"
)

type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the stored value or "" when the key is absent.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	var s domain.SystemSetting
	tx := r.db.WithContext(ctx).Where("key = ?", key).First(&s)
	if errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if tx.Error != nil {
		return "", tx.Error
	}
	return s.Value, nil
}

func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	s := domain.SystemSetting{Key: key, Value: value}
	return r.db.WithContext(ctx).Save(&s).Error
}
