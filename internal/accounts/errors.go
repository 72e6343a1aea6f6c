package accounts

import "errors"

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrSchemaMismatch indicates the database schema version doesn't match the expected version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
	// ErrInvalidAddress is returned for addresses without a local part and domain.
	ErrInvalidAddress = errors.New("invalid address")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
