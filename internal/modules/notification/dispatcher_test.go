package notification

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"copyprocloud/internal/domain"
)

type fakeTemplates struct {
	templates map[string]*domain.NotificationTemplate
}

func tplKey(ch domain.NotificationChannel, ev domain.NotificationEvent) string {
	return string(ch) + "/" + string(ev)
}

func (f *fakeTemplates) GetActive(ctx context.Context, ch domain.NotificationChannel, ev domain.NotificationEvent) (*domain.NotificationTemplate, error) {
	if t, ok := f.templates[tplKey(ch, ev)]; ok {
		return t, nil
	}
	return nil, errors.New("not found")
}

func (f *fakeTemplates) Upsert(ctx context.Context, t *domain.NotificationTemplate) error {
	f.templates[tplKey(t.Channel, t.EventType)] = t
	return nil
}

type fakeUsers struct{ user *domain.User }

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if f.user == nil || f.user.ID != id {
		return nil, errors.New("not found")
	}
	return f.user, nil
}

type fakeEmail struct {
	sent []struct{ to, subject, body string }
	err  error
}

func (f *fakeEmail) Send(ctx context.Context, to, subject, htmlBody string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, struct{ to, subject, body string }{to, subject, htmlBody})
	return nil
}

type fakeTelegram struct {
	sent []struct {
		chatID int64
		text   string
	}
	err error
}

func (f *fakeTelegram) SendMessage(ctx context.Context, chatID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, struct {
		chatID int64
		text   string
	}{chatID, text})
	return nil
}

func emailTemplate(ev domain.NotificationEvent) *domain.NotificationTemplate {
	return &domain.NotificationTemplate{
		Channel:   domain.ChannelEmail,
		EventType: ev,
		Subject:   "Заказ {{order_id}}",
		Body:      "Здравствуйте, {{contact_name}}! Ваш заказ {{order_id}} принят.",
		Active:    true,
	}
}

func TestSubstitute(t *testing.T) {
	out := Substitute("Заказ {{order_id}} для {{name}}, ещё раз: {{order_id}}", map[string]string{
		"order_id": "42",
		"name":     "Анна",
	})
	assert.Equal(t, "Заказ 42 для Анна, ещё раз: 42", out)

	// Неизвестные плейсхолдеры остаются на месте
	assert.Equal(t, "Привет, {{ghost}}", Substitute("Привет, {{ghost}}", map[string]string{"x": "y"}))
}

func TestSend_EmailSubstitutionAndShell(t *testing.T) {
	templates := &fakeTemplates{templates: map[string]*domain.NotificationTemplate{}}
	_ = templates.Upsert(context.Background(), emailTemplate(domain.EventOrderCreated))
	email := &fakeEmail{}
	d := NewDispatcher(templates, &fakeUsers{}, email, nil, nil)

	err := d.Send(context.Background(), domain.EventOrderCreated, "anna@example.com", nil, map[string]string{
		"order_id":     "42",
		"contact_name": "Анна",
	})

	assert.NoError(t, err)
	assert.Len(t, email.sent, 1)
	assert.Equal(t, "Заказ 42", email.sent[0].subject)
	assert.Contains(t, email.sent[0].body, "Ваш заказ 42 принят")
	assert.Contains(t, email.sent[0].body, "<html>")
	assert.Contains(t, email.sent[0].body, "CopyPro Cloud")
}

func TestSend_MissingTemplateFails(t *testing.T) {
	templates := &fakeTemplates{templates: map[string]*domain.NotificationTemplate{}}
	email := &fakeEmail{}
	d := NewDispatcher(templates, &fakeUsers{}, email, nil, nil)

	err := d.Send(context.Background(), domain.EventOrderCreated, "anna@example.com", nil, nil)

	assert.Error(t, err)
	assert.Empty(t, email.sent)
}

func TestSend_TelegramOnlyForLinkedUsers(t *testing.T) {
	chatID := int64(100500)
	templates := &fakeTemplates{templates: map[string]*domain.NotificationTemplate{}}
	_ = templates.Upsert(context.Background(), &domain.NotificationTemplate{
		Channel: domain.ChannelTelegram, EventType: domain.EventPaymentSucceeded,
		Body: "Оплата заказа {{order_id}} получена", Active: true,
	})
	tg := &fakeTelegram{}
	userID := int64(5)
	users := &fakeUsers{user: &domain.User{ID: userID, TelegramID: &chatID}}
	d := NewDispatcher(templates, users, nil, tg, nil)

	err := d.Send(context.Background(), domain.EventPaymentSucceeded, "", &userID, map[string]string{"order_id": "42"})

	assert.NoError(t, err)
	assert.Len(t, tg.sent, 1)
	assert.Equal(t, chatID, tg.sent[0].chatID)
	assert.Equal(t, "Оплата заказа 42 получена", tg.sent[0].text)

	// Пользователь без привязанного чата не роняет диспатч,
	// но и доставки нет
	users.user.TelegramID = nil
	err = d.Send(context.Background(), domain.EventPaymentSucceeded, "", &userID, nil)
	assert.Error(t, err)
}

func TestSend_OneChannelSuccessIsEnough(t *testing.T) {
	chatID := int64(100500)
	templates := &fakeTemplates{templates: map[string]*domain.NotificationTemplate{}}
	_ = templates.Upsert(context.Background(), emailTemplate(domain.EventPaymentSucceeded))
	_ = templates.Upsert(context.Background(), &domain.NotificationTemplate{
		Channel: domain.ChannelTelegram, EventType: domain.EventPaymentSucceeded,
		Body: "тест", Active: true,
	})
	email := &fakeEmail{err: errors.New("provider down")}
	tg := &fakeTelegram{}
	userID := int64(5)
	users := &fakeUsers{user: &domain.User{ID: userID, TelegramID: &chatID}}
	d := NewDispatcher(templates, users, email, tg, nil)

	err := d.Send(context.Background(), domain.EventPaymentSucceeded, "anna@example.com", &userID, nil)

	assert.NoError(t, err)
	assert.Len(t, tg.sent, 1)
}

type fakeReminderRepo struct {
	due         []domain.NotificationReminder
	sentIDs     []int64
	failedIDs   []int64
	failReasons map[int64]string
}

func (f *fakeReminderRepo) Create(ctx context.Context, r *domain.NotificationReminder) error {
	return nil
}

func (f *fakeReminderRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]domain.NotificationReminder, error) {
	return f.due, nil
}

func (f *fakeReminderRepo) MarkSent(ctx context.Context, id int64, sentAt time.Time) (bool, error) {
	f.sentIDs = append(f.sentIDs, id)
	return true, nil
}

func (f *fakeReminderRepo) MarkFailed(ctx context.Context, id int64, reason string) (bool, error) {
	if f.failReasons == nil {
		f.failReasons = map[int64]string{}
	}
	f.failedIDs = append(f.failedIDs, id)
	f.failReasons[id] = reason
	return true, nil
}

func TestProcessDue_ContinuesPastFailures(t *testing.T) {
	templates := &fakeTemplates{templates: map[string]*domain.NotificationTemplate{}}
	_ = templates.Upsert(context.Background(), emailTemplate(domain.EventOrderCreated))
	email := &fakeEmail{}
	d := NewDispatcher(templates, &fakeUsers{}, email, nil, nil)

	repo := &fakeReminderRepo{due: []domain.NotificationReminder{
		{ID: 1, ReminderType: domain.EventOrderCreated, Recipient: "a@example.com", Payload: `{"order_id":"1"}`},
		// Нет шаблона для payment_failed: этот элемент упадёт
		{ID: 2, ReminderType: domain.EventPaymentFailed, Recipient: "b@example.com"},
		{ID: 3, ReminderType: domain.EventOrderCreated, Recipient: "c@example.com"},
	}}
	svc := NewService(repo, d, nil)

	res, err := svc.ProcessDue(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 3, res.Processed)
	assert.Equal(t, 2, res.Sent)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []int64{1, 3}, repo.sentIDs)
	assert.Equal(t, []int64{2}, repo.failedIDs)
	assert.Len(t, email.sent, 2)
}

func TestProcessDue_BadPayloadStillDispatches(t *testing.T) {
	templates := &fakeTemplates{templates: map[string]*domain.NotificationTemplate{}}
	_ = templates.Upsert(context.Background(), emailTemplate(domain.EventOrderCreated))
	email := &fakeEmail{}
	d := NewDispatcher(templates, &fakeUsers{}, email, nil, nil)

	repo := &fakeReminderRepo{due: []domain.NotificationReminder{
		{ID: 1, ReminderType: domain.EventOrderCreated, Recipient: "a@example.com", Payload: "not-json"},
	}}
	svc := NewService(repo, d, nil)

	res, err := svc.ProcessDue(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 1, res.Sent)
	// Плейсхолдеры остаются без подстановки
	assert.True(t, strings.Contains(email.sent[0].body, "{{order_id}}"))
}
