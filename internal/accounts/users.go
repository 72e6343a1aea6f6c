package accounts

import (
	"context"
	"database/sql"
	"fmt"
)

const userColumns = "id, domain_id, email, name, password, quota, enabled, created_at"

func scanUser(scanner interface{ Scan(dest ...any) error }) (*User, error) {
	var (
		u       User
		name    sql.NullString
		enabled int
		created sql.NullString
	)
	if err := scanner.Scan(&u.ID, &u.DomainID, &u.Email, &name, &u.Password, &u.Quota, &enabled, &created); err != nil {
		return nil, err
	}
	u.Name = name.String
	u.Enabled = enabled != 0
	u.CreatedAt = parseTime(created)
	return &u, nil
}

// CreateUser adds a user and an empty quota row in one transaction.
func (s *Store) CreateUser(ctx context.Context, in NewUser) (*User, error) {
	email := NormalizeAddress(in.Email)
	if _, _, err := SplitAddress(email); err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin user tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (domain_id, email, name, password, quota, enabled, created_at)
         VALUES (?, ?, ?, ?, ?, 1, ?)`,
		in.DomainID, email, nullableString(in.Name), hash, in.Quota, s.timestamp(),
	); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_quotas (email, bytes, messages) VALUES (?, 0, 0)`, email,
	); err != nil {
		return nil, fmt.Errorf("insert user quota: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit user: %w", err)
	}
	return s.GetUser(ctx, email)
}

// GetUser fetches a user by address.
func (s *Store) GetUser(ctx context.Context, email string) (*User, error) {
	email = NormalizeAddress(email)
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound("user", email, err)
	}
	return u, nil
}

// ListUsers returns the users of a domain, or of every domain when domain is
// empty.
func (s *Store) ListUsers(ctx context.Context, domain string) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY email`
	var args []any
	if domain != "" {
		query = `SELECT u.id, u.domain_id, u.email, u.name, u.password, u.quota, u.enabled, u.created_at
                 FROM users u JOIN domains d ON d.id = u.domain_id
                 WHERE d.domain = ? ORDER BY u.email`
		args = append(args, NormalizeDomain(domain))
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// SetPassword replaces a user's password hash.
func (s *Store) SetPassword(ctx context.Context, email, password string) error {
	email = NormalizeAddress(email)
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE users SET password = ? WHERE email = ?`, hash, email)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return expectAffected(res, "user", email)
}

// SetEnabled enables or disables a user.
func (s *Store) SetEnabled(ctx context.Context, email string, enabled bool) error {
	email = NormalizeAddress(email)
	res, err := s.db.ExecContext(ctx, `UPDATE users SET enabled = ? WHERE email = ?`, boolInt(enabled), email)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectAffected(res, "user", email)
}

// DeleteUser removes a user together with its quota row and vacation.
func (s *Store) DeleteUser(ctx context.Context, email string) error {
	email = NormalizeAddress(email)
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectAffected(res, "user", email)
}

// CheckPassword verifies credentials. Unknown and disabled users yield false
// without an error.
func (s *Store) CheckPassword(ctx context.Context, email, password string) (bool, error) {
	user, err := s.GetUser(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	if !user.Enabled {
		return false, nil
	}
	return VerifyPassword(user.Password, password)
}

// Usage returns the recorded quota usage of a user.
func (s *Store) Usage(ctx context.Context, email string) (*Usage, error) {
	email = NormalizeAddress(email)
	usage := Usage{Email: email}
	err := s.db.QueryRowContext(ctx,
		`SELECT bytes, messages FROM user_quotas WHERE email = ?`, email,
	).Scan(&usage.Bytes, &usage.Messages)
	if err != nil {
		return nil, notFound("quota", email, err)
	}
	return &usage, nil
}

// SetUsage records the quota usage of a user.
func (s *Store) SetUsage(ctx context.Context, email string, bytes, messages int64) error {
	email = NormalizeAddress(email)
	res, err := s.db.ExecContext(ctx,
		`UPDATE user_quotas SET bytes = ?, messages = ? WHERE email = ?`,
		bytes, messages, email,
	)
	if err != nil {
		return fmt.Errorf("update quota: %w", err)
	}
	return expectAffected(res, "quota", email)
}
