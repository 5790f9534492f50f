package order

import (
	"context"

	"copyprocloud/internal/domain"
)

// OrderRepository defines the persistence operations the service needs.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, status *domain.OrderStatus, limit, offset int) ([]*domain.Order, int64, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.Order, error)
	UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error
	UpdatePriority(ctx context.Context, id int64, priority domain.OrderPriority) error
	AssignAdmin(ctx context.Context, id, adminID int64) error
}

// ServiceCatalog resolves a service slug to its catalog entry.
type ServiceCatalog interface {
	GetBySlug(ctx context.Context, slug string) (*domain.CatalogService, error)
}

// ActivityLogger records audit entries, best effort.
type ActivityLogger interface {
	Create(ctx context.Context, l *domain.ActivityLog) error
}

// ReminderScheduler enqueues deferred notification work. Side effects of
// order submission go through this queue instead of being fired inline so
// failures stay observable.
type ReminderScheduler interface {
	Create(ctx context.Context, r *domain.NotificationReminder) error
}
