package accounts

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const domainColumns = "id, domain, package, quota, created_at"

func scanDomain(scanner interface{ Scan(dest ...any) error }) (*Domain, error) {
	var (
		d       Domain
		pkg     sql.NullString
		created sql.NullString
	)
	if err := scanner.Scan(&d.ID, &d.Name, &pkg, &d.Quota, &created); err != nil {
		return nil, err
	}
	d.Package = pkg.String
	d.CreatedAt = parseTime(created)
	return &d, nil
}

// CreateDomain adds a hosted domain.
func (s *Store) CreateDomain(ctx context.Context, name string) (*Domain, error) {
	name = NormalizeDomain(name)
	if name == "" || strings.Contains(name, "@") {
		return nil, fmt.Errorf("%w: domain %q", ErrInvalidAddress, name)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO domains (domain, created_at) VALUES (?, ?)`,
		name, s.timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert domain: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.getDomain(ctx, "id = ?", id, name)
}

// GetDomain fetches a domain by name.
func (s *Store) GetDomain(ctx context.Context, name string) (*Domain, error) {
	name = NormalizeDomain(name)
	return s.getDomain(ctx, "domain = ?", name, name)
}

func (s *Store) getDomain(ctx context.Context, where string, arg any, key string) (*Domain, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+domainColumns+` FROM domains WHERE `+where, arg)
	d, err := scanDomain(row)
	if err != nil {
		return nil, notFound("domain", key, err)
	}
	return d, nil
}

// ListDomains returns every domain ordered by name.
func (s *Store) ListDomains(ctx context.Context) ([]Domain, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+domainColumns+` FROM domains ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close()

	var domains []Domain
	for rows.Next() {
		d, err := scanDomain(rows)
		if err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		domains = append(domains, *d)
	}
	return domains, rows.Err()
}

// SetDomainQuota updates the package name and quota of a domain.
func (s *Store) SetDomainQuota(ctx context.Context, name, pkg string, quota int64) error {
	name = NormalizeDomain(name)
	res, err := s.db.ExecContext(ctx,
		`UPDATE domains SET package = ?, quota = ? WHERE domain = ?`,
		nullableString(pkg), quota, name,
	)
	if err != nil {
		return fmt.Errorf("update domain: %w", err)
	}
	return expectAffected(res, "domain", name)
}

// DeleteDomain removes a domain together with its users and forwards.
func (s *Store) DeleteDomain(ctx context.Context, name string) error {
	name = NormalizeDomain(name)
	res, err := s.db.ExecContext(ctx, `DELETE FROM domains WHERE domain = ?`, name)
	if err != nil {
		return fmt.Errorf("delete domain: %w", err)
	}
	return expectAffected(res, "domain", name)
}
