package accounts

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeAddress trims and lowercases an address for storage and lookup.
func NormalizeAddress(address string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(address))
}

// NormalizeDomain trims, lowercases, and strips a trailing dot.
func NormalizeDomain(domain string) string {
	return strings.TrimSuffix(NormalizeAddress(domain), ".")
}

// SplitAddress returns the normalized local part and domain of address.
func SplitAddress(address string) (string, string, error) {
	address = NormalizeAddress(address)
	at := strings.LastIndex(address, "@")
	if at <= 0 || at == len(address)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	return address[:at], NormalizeDomain(address[at+1:]), nil
}
