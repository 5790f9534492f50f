package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"copyprocloud/internal/database"
	"copyprocloud/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func pendingPayment(t *testing.T, repo *PaymentRepository) *domain.Payment {
	t.Helper()
	p := &domain.Payment{
		OrderID:          42,
		Amount:           575000,
		Currency:         "RUB",
		Gateway:          domain.GatewayModulbank,
		GatewayPaymentID: "42-1",
		Status:           domain.PaymentStatusPending,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("create: %v", err)
	}
	return p
}

func TestPaymentRepository_MarkCompletedIdempotent(t *testing.T) {
	repo := NewPaymentRepository(newTestDB(t))
	p := pendingPayment(t, repo)
	ctx := context.Background()

	changed, err := repo.MarkCompletedIdempotent(ctx, p.ID, "raw", time.Now().UTC())
	if err != nil || !changed {
		t.Fatalf("first completion: changed=%v err=%v", changed, err)
	}
	changed, err = repo.MarkCompletedIdempotent(ctx, p.ID, "raw again", time.Now().UTC())
	if err != nil {
		t.Fatalf("second completion: %v", err)
	}
	if changed {
		t.Fatalf("duplicate completion should not report a change")
	}
}

func TestPaymentRepository_MarkFailedLeavesTerminalStatuses(t *testing.T) {
	repo := NewPaymentRepository(newTestDB(t))
	p := pendingPayment(t, repo)
	ctx := context.Background()

	if _, err := repo.MarkCompletedIdempotent(ctx, p.ID, "raw", time.Now().UTC()); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := repo.MarkFailed(ctx, p.ID, "late", "gateway reported failure"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.PaymentStatusCompleted {
		t.Fatalf("late failure flipped completed to %s", got.Status)
	}

	if ok, err := repo.MarkRefunded(ctx, p.ID); err != nil || !ok {
		t.Fatalf("refund: ok=%v err=%v", ok, err)
	}
	if err := repo.MarkFailed(ctx, p.ID, "late again", "gateway reported failure"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	got, err = repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.PaymentStatusRefunded {
		t.Fatalf("late failure flipped refunded to %s", got.Status)
	}
}

func TestPaymentRepository_MarkFailedFromPending(t *testing.T) {
	repo := NewPaymentRepository(newTestDB(t))
	p := pendingPayment(t, repo)
	ctx := context.Background()

	if err := repo.MarkFailed(ctx, p.ID, "raw", "gateway reported failure"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	got, err := repo.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.PaymentStatusFailed {
		t.Fatalf("expected failed, got %s", got.Status)
	}
	if got.FailureReason != "gateway reported failure" {
		t.Fatalf("failure reason not stored: %q", got.FailureReason)
	}
}
