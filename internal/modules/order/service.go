package order

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"copyprocloud/internal/domain"
	"copyprocloud/internal/modules/orderform"
)

type Service struct {
	orders    OrderRepository
	catalog   ServiceCatalog
	activity  ActivityLogger
	reminders ReminderScheduler
}

func NewService(orders OrderRepository, catalog ServiceCatalog, activity ActivityLogger, reminders ReminderScheduler) *Service {
	return &Service{
		orders:    orders,
		catalog:   catalog,
		activity:  activity,
		reminders: reminders,
	}
}

// Quote computes form progress and the price estimate without touching
// the order store.
func (s *Service) Quote(ctx context.Context, req SubmitOrderRequest) QuoteResponse {
	form, svc := s.buildForm(ctx, req)
	progress := form.CompletedSteps()
	return QuoteResponse{
		CompletedSteps: progress.CompletedSteps,
		CurrentStep:    progress.CurrentStep,
		Percent:        progress.Percent,
		EstimatedPrice: form.EstimatedPrice(svc),
		DeliveryTime:   form.EstimatedDeliveryTime(svc).String(),
	}
}

// Submit validates the form and persists the order. Validation failures
// abort before any write. userID is nil for guest submissions.
func (s *Service) Submit(ctx context.Context, req SubmitOrderRequest, userID *int64) (*domain.Order, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	serviceSlug := strings.TrimSpace(req.Service)
	details := strings.TrimSpace(req.Details)

	if name == "" || email == "" || serviceSlug == "" || details == "" {
		return nil, ErrValidation
	}

	form, svc := s.buildForm(ctx, req)

	serviceName := serviceSlug
	if svc != nil {
		serviceName = svc.Name
	}

	// калькулятор считает в рублях, храним копейки
	estimatedKopecks := form.EstimatedPrice(svc) * 100

	o := &domain.Order{
		ServiceSlug:    serviceSlug,
		ServiceName:    serviceName,
		ContactName:    name,
		ContactEmail:   email,
		ContactPhone:   strings.TrimSpace(req.Phone),
		Details:        details,
		AdditionalInfo: strings.TrimSpace(req.AdditionalInfo),
		EstimatedPrice: estimatedKopecks,
		Deadline:       form.Deadline,
		Status:         domain.OrderNew,
		Priority:       priorityForDeadline(form.Deadline),
		PaymentStatus:  domain.PaymentUnpaid,
		UserID:         userID,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logActivity(ctx, userID, "order_submitted", o.ID, fmt.Sprintf("service=%s price=%d", o.ServiceSlug, o.EstimatedPrice))
	s.scheduleCreatedNotification(ctx, o)

	return o, nil
}

func (s *Service) buildForm(ctx context.Context, req SubmitOrderRequest) (*orderform.Form, *orderform.ServiceInfo) {
	form := &orderform.Form{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		ServiceSlug:    strings.TrimSpace(req.Service),
		Details:        req.Details,
		AdditionalInfo: req.AdditionalInfo,
		Deadline:       normalizeDeadline(req.Deadline),
		Addons:         req.Addons,
	}

	var info *orderform.ServiceInfo
	if form.ServiceSlug != "" && s.catalog != nil {
		if svc, err := s.catalog.GetBySlug(ctx, form.ServiceSlug); err == nil && svc != nil {
			info = &orderform.ServiceInfo{
				Slug:            svc.Slug,
				Name:            svc.Name,
				MinPrice:        svc.MinPrice / 100,
				MinDeliveryDays: svc.MinDeliveryDays,
				MaxDeliveryDays: svc.MaxDeliveryDays,
			}
		}
	}
	return form, info
}

func normalizeDeadline(d string) domain.DeadlineType {
	switch domain.DeadlineType(strings.TrimSpace(d)) {
	case domain.DeadlineUrgent:
		return domain.DeadlineUrgent
	case domain.DeadlineExpress:
		return domain.DeadlineExpress
	case domain.DeadlineStandard:
		return domain.DeadlineStandard
	default:
		return ""
	}
}

func priorityForDeadline(d domain.DeadlineType) domain.OrderPriority {
	switch d {
	case domain.DeadlineExpress:
		return domain.PriorityUrgent
	case domain.DeadlineUrgent:
		return domain.PriorityHigh
	default:
		return domain.PriorityMedium
	}
}

func (s *Service) logActivity(ctx context.Context, userID *int64, action string, orderID int64, details string) {
	if s.activity == nil {
		return
	}
	err := s.activity.Create(ctx, &domain.ActivityLog{
		UserID:     userID,
		Action:     action,
		EntityType: "order",
		EntityID:   orderID,
		Details:    details,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		log.Printf("level=warn msg=activity log write failed order_id=%d err=%v", orderID, err)
	}
}

func (s *Service) scheduleCreatedNotification(ctx context.Context, o *domain.Order) {
	if s.reminders == nil {
		return
	}
	payload, _ := json.Marshal(map[string]any{
		"order_id":     o.ID,
		"service_name": o.ServiceName,
		"client_name":  o.ContactName,
		"price":        o.EstimatedPrice,
	})
	rem := &domain.NotificationReminder{
		UserID:       o.UserID,
		ReminderType: domain.EventOrderCreated,
		Recipient:    o.ContactEmail,
		Payload:      string(payload),
		ScheduledFor: time.Now().UTC(),
		Status:       domain.ReminderPending,
	}
	if o.UserID == nil {
		session := fmt.Sprintf("guest-order-%d", o.ID)
		rem.SessionID = &session
	}
	if err := s.reminders.Create(ctx, rem); err != nil {
		log.Printf("level=warn msg=failed to enqueue order notification order_id=%d err=%v", o.ID, err)
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, ErrNotFound
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, status *domain.OrderStatus, limit, offset int) ([]*domain.Order, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.orders.List(ctx, status, limit, offset)
}

func (s *Service) ListMy(ctx context.Context, userID int64, limit, offset int) ([]*domain.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.orders.ListByUser(ctx, userID, limit, offset)
}

// UpdateStatus applies an admin status change. Terminal orders stay put;
// the first transition to completed stamps completed_at and later writes
// never touch it.
func (s *Service) UpdateStatus(ctx context.Context, orderID, actorID int64, status domain.OrderStatus) (*domain.Order, error) {
	if !validStatus(status) {
		return nil, ErrValidation
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, ErrNotFound
	}
	if o.IsTerminal() {
		return nil, ErrInvalidStatusTransition
	}

	if err := s.orders.UpdateStatus(ctx, orderID, status); err != nil {
		return nil, err
	}

	s.logActivity(ctx, &actorID, "order_status_changed", orderID, fmt.Sprintf("%s -> %s", o.Status, status))
	return s.orders.GetByID(ctx, orderID)
}

func (s *Service) UpdatePriority(ctx context.Context, orderID, actorID int64, priority domain.OrderPriority) (*domain.Order, error) {
	switch priority {
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh, domain.PriorityUrgent:
	default:
		return nil, ErrValidation
	}

	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, ErrNotFound
	}
	if err := s.orders.UpdatePriority(ctx, orderID, priority); err != nil {
		return nil, err
	}

	s.logActivity(ctx, &actorID, "order_priority_changed", orderID, string(priority))
	return s.orders.GetByID(ctx, orderID)
}

func (s *Service) Assign(ctx context.Context, orderID, actorID, adminID int64) (*domain.Order, error) {
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, ErrNotFound
	}
	if err := s.orders.AssignAdmin(ctx, orderID, adminID); err != nil {
		return nil, err
	}

	s.logActivity(ctx, &actorID, "order_assigned", orderID, fmt.Sprintf("admin_id=%d", adminID))
	return s.orders.GetByID(ctx, orderID)
}

func validStatus(st domain.OrderStatus) bool {
	switch st {
	case domain.OrderNew, domain.OrderPending, domain.OrderInProgress,
		domain.OrderReview, domain.OrderCompleted, domain.OrderCancelled:
		return true
	}
	return false
}
