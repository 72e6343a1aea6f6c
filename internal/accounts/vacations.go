package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SetVacation creates or replaces the vacation message of a user.
func (s *Store) SetVacation(ctx context.Context, email, subject, body string, active bool) (*Vacation, error) {
	email = NormalizeAddress(email)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vacations (email, subject, body, active, created_at)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT(email) DO UPDATE SET
             subject = excluded.subject,
             body = excluded.body,
             active = excluded.active`,
		email, subject, body, boolInt(active), s.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert vacation: %w", err)
	}
	return s.GetVacation(ctx, email)
}

// GetVacation fetches the vacation message of a user, active or not.
func (s *Store) GetVacation(ctx context.Context, email string) (*Vacation, error) {
	email = NormalizeAddress(email)
	var (
		v       Vacation
		active  int
		created sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, subject, body, active, created_at FROM vacations WHERE email = ?`, email,
	).Scan(&v.ID, &v.Email, &v.Subject, &v.Body, &active, &created)
	if err != nil {
		return nil, notFound("vacation", email, err)
	}
	v.Active = active != 0
	v.CreatedAt = parseTime(created)
	return &v, nil
}

// ActiveVacation returns the vacation of a user when one is active. It
// returns nil without an error otherwise.
func (s *Store) ActiveVacation(ctx context.Context, email string) (*Vacation, error) {
	v, err := s.GetVacation(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !v.Active {
		return nil, nil
	}
	return v, nil
}

// DeleteVacation removes a vacation and its notification history.
func (s *Store) DeleteVacation(ctx context.Context, email string) error {
	email = NormalizeAddress(email)
	res, err := s.db.ExecContext(ctx, `DELETE FROM vacations WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("delete vacation: %w", err)
	}
	return expectAffected(res, "vacation", email)
}

// LastNotified returns when notified was last sent onVacation's autoreply.
// The boolean is false when it never was.
func (s *Store) LastNotified(ctx context.Context, onVacation, notified string) (time.Time, bool, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT notified_at FROM vacation_notifications WHERE on_vacation = ? AND notified = ?`,
		NormalizeAddress(onVacation), NormalizeAddress(notified),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("get notification: %w", err)
	}
	return parseTime(raw), true, nil
}

// RecordNotification stores that notified was sent onVacation's autoreply now.
func (s *Store) RecordNotification(ctx context.Context, onVacation, notified string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vacation_notifications (on_vacation, notified, notified_at)
         VALUES (?, ?, ?)
         ON CONFLICT(on_vacation, notified) DO UPDATE SET notified_at = excluded.notified_at`,
		NormalizeAddress(onVacation), NormalizeAddress(notified), s.timestamp(),
	)
	if err != nil {
		return fmt.Errorf("record notification: %w", err)
	}
	return nil
}

// Notifications lists who was sent onVacation's autoreply.
func (s *Store) Notifications(ctx context.Context, onVacation string) ([]Notification, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT on_vacation, notified, notified_at FROM vacation_notifications
         WHERE on_vacation = ? ORDER BY notified_at`,
		NormalizeAddress(onVacation),
	)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var (
			n   Notification
			raw sql.NullString
		)
		if err := rows.Scan(&n.OnVacation, &n.Notified, &raw); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.NotifiedAt = parseTime(raw)
		out = append(out, n)
	}
	return out, rows.Err()
}
