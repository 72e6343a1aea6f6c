package accounts

import (
	"context"
	"fmt"
	"strconv"
)

// CreateForward adds a forward from source to destination. The source must
// belong to the given domain.
func (s *Store) CreateForward(ctx context.Context, domain, source, destination string) (*Forward, error) {
	d, err := s.GetDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	source = NormalizeAddress(source)
	if _, sourceDomain, err := SplitAddress(source); err != nil {
		return nil, err
	} else if sourceDomain != d.Name {
		return nil, fmt.Errorf("%w: %q is not in domain %q", ErrInvalidAddress, source, d.Name)
	}
	destination = NormalizeAddress(destination)
	if _, _, err := SplitAddress(destination); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO forwards (domain_id, source, destination) VALUES (?, ?, ?)`,
		d.ID, source, destination,
	)
	if err != nil {
		return nil, fmt.Errorf("insert forward: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &Forward{ID: id, DomainID: d.ID, Source: source, Destination: destination}, nil
}

// ListForwards returns the forwards of a domain, or all of them when domain
// is empty.
func (s *Store) ListForwards(ctx context.Context, domain string) ([]Forward, error) {
	query := `SELECT id, domain_id, source, destination FROM forwards ORDER BY source, destination`
	var args []any
	if domain != "" {
		query = `SELECT f.id, f.domain_id, f.source, f.destination
                 FROM forwards f JOIN domains d ON d.id = f.domain_id
                 WHERE d.domain = ? ORDER BY f.source, f.destination`
		args = append(args, NormalizeDomain(domain))
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list forwards: %w", err)
	}
	defer rows.Close()

	var forwards []Forward
	for rows.Next() {
		var f Forward
		if err := rows.Scan(&f.ID, &f.DomainID, &f.Source, &f.Destination); err != nil {
			return nil, fmt.Errorf("scan forward: %w", err)
		}
		forwards = append(forwards, f)
	}
	return forwards, rows.Err()
}

// DeleteForward removes a forward by id.
func (s *Store) DeleteForward(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM forwards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete forward: %w", err)
	}
	return expectAffected(res, "forward", strconv.FormatInt(id, 10))
}
