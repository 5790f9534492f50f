package notification

import (
	"context"
	"encoding/json"
	"time"

	"copyprocloud/internal/domain"
)

const defaultBatchSize = 50

// Service processes due reminders: fetches the batch, dispatches each
// one sequentially and marks it sent or failed. Both outcomes are
// terminal, so every reminder is attempted at most once.
type Service struct {
	reminders  reminderRepo
	dispatcher *Dispatcher
	loggerf    func(format string, args ...interface{})
	now        func() time.Time
}

func NewService(reminders reminderRepo, dispatcher *Dispatcher, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{reminders: reminders, dispatcher: dispatcher, loggerf: loggerf, now: time.Now}
}

type ProcessResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

// ProcessDue handles one batch of due reminders. A failing item is
// marked failed and the loop continues with the next one.
func (s *Service) ProcessDue(ctx context.Context) (*ProcessResult, error) {
	due, err := s.reminders.ListDue(ctx, s.now().UTC(), defaultBatchSize)
	if err != nil {
		return nil, err
	}

	res := &ProcessResult{Processed: len(due)}
	for i := range due {
		r := &due[i]
		if err := s.dispatchReminder(ctx, r); err != nil {
			if changed, merr := s.reminders.MarkFailed(ctx, r.ID, err.Error()); merr != nil {
				s.loggerf("level=error msg=failed to mark reminder failed reminder_id=%d err=%v", r.ID, merr)
			} else if changed {
				res.Failed++
			}
			continue
		}
		changed, merr := s.reminders.MarkSent(ctx, r.ID, s.now().UTC())
		if merr != nil {
			s.loggerf("level=error msg=failed to mark reminder sent reminder_id=%d err=%v", r.ID, merr)
			continue
		}
		if changed {
			res.Sent++
		} else {
			// Кто-то успел обработать раньше нас
			s.loggerf("level=info msg=reminder already processed reminder_id=%d", r.ID)
		}
	}
	return res, nil
}

func (s *Service) dispatchReminder(ctx context.Context, r *domain.NotificationReminder) error {
	vars := map[string]string{}
	if r.Payload != "" {
		if err := json.Unmarshal([]byte(r.Payload), &vars); err != nil {
			s.loggerf("level=error msg=bad reminder payload reminder_id=%d err=%v", r.ID, err)
		}
	}
	return s.dispatcher.Send(ctx, r.ReminderType, r.Recipient, r.UserID, vars)
}
