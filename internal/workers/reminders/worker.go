package reminders

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"copyprocloud/internal/modules/notification"
)

// Worker polls for due notification reminders and hands them to the
// dispatcher. Scheduling is cron-based; each run processes one batch.
type Worker struct {
	service  *notification.Service
	logger   *slog.Logger
	cron     *cron.Cron
	schedule string
}

func NewWorker(service *notification.Service, schedule string, logger *slog.Logger) *Worker {
	if schedule == "" {
		// Каждую минуту
		schedule = "* * * * *"
	}
	return &Worker{
		service:  service,
		logger:   logger,
		cron:     cron.New(),
		schedule: schedule,
	}
}

func (w *Worker) Name() string { return "reminders" }

func (w *Worker) Start() error {
	_, err := w.cron.AddFunc(w.schedule, func() {
		ctx := context.Background()
		res, err := w.service.ProcessDue(ctx)
		if err != nil {
			w.logger.Error("reminder batch failed", "error", err)
			return
		}
		if res.Processed > 0 {
			w.logger.Info("reminder batch processed",
				"processed", res.Processed, "sent", res.Sent, "failed", res.Failed)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reminder worker: %w", err)
	}

	w.cron.Start()
	return nil
}

func (w *Worker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}
