package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"copyprocloud/internal/domain"
)

type NotificationTemplateRepository struct {
	db *gorm.DB
}

func NewNotificationTemplateRepository(db *gorm.DB) *NotificationTemplateRepository {
	return &NotificationTemplateRepository{db: db}
}

func (r *NotificationTemplateRepository) GetActive(ctx context.Context, channel domain.NotificationChannel, event domain.NotificationEvent) (*domain.NotificationTemplate, error) {
	var t domain.NotificationTemplate
	tx := r.db.WithContext(ctx).
		Where("channel = ? AND event_type = ? AND active = ?", string(channel), string(event), true).
		First(&t)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &t, nil
}

func (r *NotificationTemplateRepository) Upsert(ctx context.Context, t *domain.NotificationTemplate) error {
	var existing domain.NotificationTemplate
	tx := r.db.WithContext(ctx).
		Where("channel = ? AND event_type = ?", string(t.Channel), string(t.EventType)).
		First(&existing)
	if tx.Error == gorm.ErrRecordNotFound {
		return r.db.WithContext(ctx).Create(t).Error
	}
	if tx.Error != nil {
		return tx.Error
	}
	t.ID = existing.ID
	return r.db.WithContext(ctx).Save(t).Error
}

type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func (r *ReminderRepository) Create(ctx context.Context, rem *domain.NotificationReminder) error {
	return r.db.WithContext(ctx).Create(rem).Error
}

// ListDue returns pending reminders whose scheduled time has passed,
// oldest first.
func (r *ReminderRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.NotificationReminder, error) {
	var rows []domain.NotificationReminder
	tx := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_for <= ?", string(domain.ReminderPending), now).
		Order("scheduled_for ASC").
		Limit(limit).
		Find(&rows)
	return rows, tx.Error
}

// MarkSent transitions pending -> sent. The status guard makes the
// transition one-way: a reminder already sent or failed stays put.
func (r *ReminderRepository) MarkSent(ctx context.Context, id int64, sentAt time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&domain.NotificationReminder{}).
		Where("id = ? AND status = ?", id, string(domain.ReminderPending)).
		Updates(map[string]any{
			"status":  string(domain.ReminderSent),
			"sent_at": sentAt,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// MarkFailed transitions pending -> failed. Terminal: no retry.
func (r *ReminderRepository) MarkFailed(ctx context.Context, id int64, reason string) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&domain.NotificationReminder{}).
		Where("id = ? AND status = ?", id, string(domain.ReminderPending)).
		Updates(map[string]any{
			"status":     string(domain.ReminderFailed),
			"last_error": reason,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}
