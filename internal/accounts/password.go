package accounts

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	blfCryptPrefix = "{BLF-CRYPT}"
	plainPrefix    = "{PLAIN}"

	bcryptPrefix2a = "$2a$"
	bcryptPrefix2b = "$2b$"
	bcryptPrefix2y = "$2y$"
)

// ErrUnknownScheme is returned for stored hashes with an unsupported prefix.
var ErrUnknownScheme = errors.New("unknown password hash scheme")

// HashPassword returns a {BLF-CRYPT} bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("generate bcrypt hash: %w", err)
	}
	return blfCryptPrefix + string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash. A mismatch
// is not an error; an unreadable hash is.
func VerifyPassword(hashed, password string) (bool, error) {
	switch {
	case strings.HasPrefix(hashed, plainPrefix):
		stored := strings.TrimPrefix(hashed, plainPrefix)
		return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1, nil

	case strings.HasPrefix(hashed, blfCryptPrefix):
		return compareBcrypt(strings.TrimPrefix(hashed, blfCryptPrefix), password)

	case strings.HasPrefix(hashed, bcryptPrefix2a),
		strings.HasPrefix(hashed, bcryptPrefix2b),
		strings.HasPrefix(hashed, bcryptPrefix2y):
		return compareBcrypt(hashed, password)

	default:
		return false, ErrUnknownScheme
	}
}

func compareBcrypt(hashed, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("compare bcrypt hash: %w", err)
	}
}
