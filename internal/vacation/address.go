package vacation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRecipient is returned when an autoreply address does not decode
// to a mailbox.
var ErrInvalidRecipient = errors.New("invalid autoreply recipient")

// DecodeAutoreplyAddress turns the transport address
// user#example.com@autoreply.example.com into user@example.com.
func DecodeAutoreplyAddress(address string) (string, error) {
	local, _, _ := strings.Cut(strings.TrimSpace(address), "@")
	decoded := strings.Replace(local, "#", "@", 1)
	at := strings.Index(decoded, "@")
	if at <= 0 || at == len(decoded)-1 {
		return "", fmt.Errorf("%w: %q", ErrInvalidRecipient, address)
	}
	return decoded, nil
}
