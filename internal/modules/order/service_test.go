package order

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"copyprocloud/internal/domain"
)

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	args := m.Called(ctx, o)
	o.ID = 1
	return args.Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) List(ctx context.Context, status *domain.OrderStatus, limit, offset int) ([]*domain.Order, int64, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]*domain.Order), args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderRepo) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.Order, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]*domain.Order), args.Error(1)
}

func (m *mockOrderRepo) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *mockOrderRepo) UpdatePriority(ctx context.Context, id int64, priority domain.OrderPriority) error {
	args := m.Called(ctx, id, priority)
	return args.Error(0)
}

func (m *mockOrderRepo) AssignAdmin(ctx context.Context, id, adminID int64) error {
	args := m.Called(ctx, id, adminID)
	return args.Error(0)
}

type mockCatalog struct {
	services map[string]*domain.CatalogService
}

func (m *mockCatalog) GetBySlug(ctx context.Context, slug string) (*domain.CatalogService, error) {
	if svc, ok := m.services[slug]; ok {
		return svc, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type mockActivity struct{ entries []*domain.ActivityLog }

func (m *mockActivity) Create(ctx context.Context, l *domain.ActivityLog) error {
	m.entries = append(m.entries, l)
	return nil
}

type mockReminders struct{ created []*domain.NotificationReminder }

func (m *mockReminders) Create(ctx context.Context, r *domain.NotificationReminder) error {
	m.created = append(m.created, r)
	return nil
}

func newTestService(repo *mockOrderRepo) (*Service, *mockActivity, *mockReminders) {
	catalog := &mockCatalog{services: map[string]*domain.CatalogService{
		"seo-article": {
			Slug: "seo-article", Name: "SEO-статья",
			MinPrice: 250000, MinDeliveryDays: 3, MaxDeliveryDays: 7, Active: true,
		},
	}}
	activity := &mockActivity{}
	reminders := &mockReminders{}
	return NewService(repo, catalog, activity, reminders), activity, reminders
}

func validRequest() SubmitOrderRequest {
	return SubmitOrderRequest{
		Name:     "Анна Петрова",
		Email:    "anna@example.com",
		Service:  "seo-article",
		Details:  "Статья про имплантацию, 8000 знаков",
		Deadline: "urgent",
		Addons:   []string{"seo-optimization"},
	}
}

func TestSubmit_Success(t *testing.T) {
	repo := new(mockOrderRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc, activity, reminders := newTestService(repo)

	o, err := svc.Submit(context.Background(), validRequest(), nil)

	assert.NoError(t, err)
	assert.Equal(t, domain.OrderNew, o.Status)
	assert.Equal(t, domain.PaymentUnpaid, o.PaymentStatus)
	assert.Equal(t, domain.PriorityHigh, o.Priority)
	// 2500 руб * 1.5 + 2000 = 5750 руб = 575000 копеек
	assert.Equal(t, int64(575000), o.EstimatedPrice)
	assert.Equal(t, "SEO-статья", o.ServiceName)
	assert.Len(t, activity.entries, 1)
	assert.Len(t, reminders.created, 1)
	assert.Equal(t, domain.EventOrderCreated, reminders.created[0].ReminderType)
	assert.NotNil(t, reminders.created[0].SessionID)
	repo.AssertExpectations(t)
}

func TestSubmit_ValidationNeverWrites(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SubmitOrderRequest)
	}{
		{"empty name", func(r *SubmitOrderRequest) { r.Name = "   " }},
		{"empty email", func(r *SubmitOrderRequest) { r.Email = "" }},
		{"empty service", func(r *SubmitOrderRequest) { r.Service = "\t" }},
		{"empty details", func(r *SubmitOrderRequest) { r.Details = "  " }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(mockOrderRepo)
			svc, _, reminders := newTestService(repo)

			req := validRequest()
			tc.mutate(&req)

			_, err := svc.Submit(context.Background(), req, nil)

			assert.ErrorIs(t, err, ErrValidation)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			assert.Empty(t, reminders.created)
		})
	}
}

func TestSubmit_UnknownServiceUsesFallbackPrice(t *testing.T) {
	repo := new(mockOrderRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc, _, _ := newTestService(repo)

	req := validRequest()
	req.Service = "ghost-service"
	req.Deadline = "standard"
	req.Addons = nil

	o, err := svc.Submit(context.Background(), req, nil)

	assert.NoError(t, err)
	assert.Equal(t, int64(500000), o.EstimatedPrice) // 5000 руб fallback
	assert.Equal(t, "ghost-service", o.ServiceName)
}

func TestSubmit_AuthenticatedUserAttached(t *testing.T) {
	repo := new(mockOrderRepo)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	svc, _, reminders := newTestService(repo)

	userID := int64(42)
	o, err := svc.Submit(context.Background(), validRequest(), &userID)

	assert.NoError(t, err)
	assert.Equal(t, &userID, o.UserID)
	assert.Nil(t, reminders.created[0].SessionID)
	assert.Equal(t, &userID, reminders.created[0].UserID)
}

func TestUpdateStatus_TerminalOrderRejected(t *testing.T) {
	repo := new(mockOrderRepo)
	done := &domain.Order{ID: 5, Status: domain.OrderCompleted}
	repo.On("GetByID", mock.Anything, int64(5)).Return(done, nil)
	svc, _, _ := newTestService(repo)

	_, err := svc.UpdateStatus(context.Background(), 5, 1, domain.OrderInProgress)

	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_Success(t *testing.T) {
	repo := new(mockOrderRepo)
	o := &domain.Order{ID: 5, Status: domain.OrderNew}
	repo.On("GetByID", mock.Anything, int64(5)).Return(o, nil)
	repo.On("UpdateStatus", mock.Anything, int64(5), domain.OrderInProgress).Return(nil)
	svc, activity, _ := newTestService(repo)

	_, err := svc.UpdateStatus(context.Background(), 5, 7, domain.OrderInProgress)

	assert.NoError(t, err)
	assert.Len(t, activity.entries, 1)
	assert.Equal(t, "order_status_changed", activity.entries[0].Action)
	repo.AssertExpectations(t)
}

func TestUpdateStatus_UnknownStatusRejected(t *testing.T) {
	repo := new(mockOrderRepo)
	svc, _, _ := newTestService(repo)

	_, err := svc.UpdateStatus(context.Background(), 5, 1, domain.OrderStatus("shipped"))

	assert.ErrorIs(t, err, ErrValidation)
}
