package daemon

import (
	"context"
	"log/slog"
	"time"

	"vmail/internal/accounts"
	"vmail/internal/logging"
	"vmail/internal/metrics"
	"vmail/internal/vacation"
)

// Authenticate checks a user's password. Unknown and disabled users are a
// plain false.
func (d *Daemon) Authenticate(ctx context.Context, username, password string) (bool, error) {
	ok, err := d.store.CheckPassword(ctx, username, password)
	switch {
	case err != nil:
		metrics.AuthenticationAttempts.WithLabelValues("error").Inc()
		d.logger.Error("password check failed",
			logging.String("user", username),
			logging.Error(err),
		)
		return false, err
	case ok:
		metrics.AuthenticationAttempts.WithLabelValues("success").Inc()
	default:
		metrics.AuthenticationAttempts.WithLabelValues("failure").Inc()
	}
	d.logger.Debug("password checked", logging.String("user", username), logging.Bool("ok", ok))
	return ok, nil
}

// SendVacation replies to sender with recipient's active vacation message,
// at most once per sender within the configured interval. It reports whether
// a reply went out.
func (d *Daemon) SendVacation(ctx context.Context, recipient, sender string) (bool, error) {
	recipient = accounts.NormalizeAddress(recipient)
	sender = accounts.NormalizeAddress(sender)
	logger := d.logger.With(logging.String("recipient", recipient), logging.String("sender", sender))

	skip := func(reason string) (bool, error) {
		metrics.VacationReplies.WithLabelValues("skipped").Inc()
		logger.Debug("vacation reply skipped", logging.String("reason", reason))
		return false, nil
	}

	if sender == "" {
		return skip("empty sender")
	}
	if sender == recipient {
		return skip("sender is the recipient")
	}

	v, err := d.store.ActiveVacation(ctx, recipient)
	if err != nil {
		return d.vacationFailed(logger, "lookup vacation", err)
	}
	if v == nil {
		return skip("no active vacation")
	}

	now := d.now().UTC()
	last, seen, err := d.store.LastNotified(ctx, recipient, sender)
	if err != nil {
		return d.vacationFailed(logger, "lookup notification", err)
	}
	if seen && now.Sub(last) < d.cfg.VacationInterval() {
		return skip("sender notified recently")
	}

	subject := v.Subject
	if subject == "" {
		subject = d.cfg.Vacation.DefaultSubject
	}
	msg, err := vacation.Compose(vacation.Reply{
		From:     recipient,
		To:       sender,
		Subject:  subject,
		Body:     v.Body,
		Hostname: d.cfg.Vacation.Hostname,
	}, now)
	if err != nil {
		return d.vacationFailed(logger, "compose vacation reply", err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	// Autoreplies carry a null envelope sender.
	if err := d.sender.Send(sendCtx, "", sender, msg); err != nil {
		return d.vacationFailed(logger, "send vacation reply", err)
	}
	if err := d.store.RecordNotification(ctx, recipient, sender); err != nil {
		return d.vacationFailed(logger, "record notification", err)
	}

	metrics.VacationReplies.WithLabelValues("sent").Inc()
	logger.Info("vacation reply sent")
	return true, nil
}

func (d *Daemon) vacationFailed(logger *slog.Logger, step string, err error) (bool, error) {
	metrics.VacationReplies.WithLabelValues("error").Inc()
	logger.Error(step+" failed", logging.Error(err))
	return false, err
}
