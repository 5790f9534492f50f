package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"copyprocloud/internal/domain"
)

var ErrNoTemplate = errors.New("no active template for event")

// emailShell is the fixed HTML frame every email body is wrapped in.
const emailShell = `<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background:#f4f4f7;font-family:Arial,sans-serif;">
  <table width="100%%" cellpadding="0" cellspacing="0">
    <tr><td align="center" style="padding:24px;">
      <table width="600" cellpadding="0" cellspacing="0" style="background:#ffffff;border-radius:8px;">
        <tr><td style="padding:24px;background:#1a73e8;border-radius:8px 8px 0 0;">
          <span style="color:#ffffff;font-size:20px;font-weight:bold;">CopyPro Cloud</span>
        </td></tr>
        <tr><td style="padding:24px;color:#333333;font-size:15px;line-height:1.6;">%s</td></tr>
        <tr><td style="padding:16px 24px;color:#999999;font-size:12px;border-top:1px solid #eeeeee;">
          Это автоматическое письмо, отвечать на него не нужно.
        </td></tr>
      </table>
    </td></tr>
  </table>
</body>
</html>`

// Dispatcher resolves templates and hands messages to the delivery
// providers. It never retries: a failure is logged and surfaced to the
// caller, who decides whether the attempt was terminal.
type Dispatcher struct {
	templates templateRepo
	users     userReader
	email     EmailSender
	telegram  TelegramSender
	loggerf   func(format string, args ...interface{})
}

func NewDispatcher(templates templateRepo, users userReader, email EmailSender, telegram TelegramSender, loggerf func(format string, args ...interface{})) *Dispatcher {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Dispatcher{templates: templates, users: users, email: email, telegram: telegram, loggerf: loggerf}
}

// Send delivers the event over email and, when the recipient has a
// linked Telegram chat, over Telegram too. The first successful channel
// makes the whole dispatch a success.
func (d *Dispatcher) Send(ctx context.Context, event domain.NotificationEvent, recipientEmail string, userID *int64, vars map[string]string) error {
	var delivered bool
	var lastErr error

	if recipientEmail != "" && d.email != nil {
		if err := d.sendEmail(ctx, event, recipientEmail, vars); err != nil {
			d.loggerf("level=error msg=email dispatch failed event=%s recipient=%s err=%v", event, recipientEmail, err)
			lastErr = err
		} else {
			delivered = true
		}
	}

	if userID != nil && d.telegram != nil {
		if err := d.sendTelegram(ctx, event, *userID, vars); err != nil {
			if !errors.Is(err, errNoTelegramChat) {
				d.loggerf("level=error msg=telegram dispatch failed event=%s user_id=%d err=%v", event, *userID, err)
				lastErr = err
			}
		} else {
			delivered = true
		}
	}

	if delivered {
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return fmt.Errorf("no deliverable channel for event %s", event)
}

func (d *Dispatcher) sendEmail(ctx context.Context, event domain.NotificationEvent, to string, vars map[string]string) error {
	tpl, err := d.templates.GetActive(ctx, domain.ChannelEmail, event)
	if err != nil {
		return ErrNoTemplate
	}

	subject := Substitute(tpl.Subject, vars)
	body := fmt.Sprintf(emailShell, Substitute(tpl.Body, vars))
	return d.email.Send(ctx, to, subject, body)
}

var errNoTelegramChat = errors.New("user has no telegram chat")

func (d *Dispatcher) sendTelegram(ctx context.Context, event domain.NotificationEvent, userID int64, vars map[string]string) error {
	user, err := d.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TelegramID == nil {
		return errNoTelegramChat
	}

	tpl, err := d.templates.GetActive(ctx, domain.ChannelTelegram, event)
	if err != nil {
		return ErrNoTemplate
	}
	return d.telegram.SendMessage(ctx, *user.TelegramID, Substitute(tpl.Body, vars))
}

// Substitute replaces {{name}} placeholders with the provided values.
// Plain string replacement, unknown placeholders stay as-is.
func Substitute(template string, vars map[string]string) string {
	out := template
	for k, v := range vars {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}
