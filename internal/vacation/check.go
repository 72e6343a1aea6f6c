package vacation

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emersion/go-message"
)

// ErrIgnoredMessage marks inbound messages that must not be answered.
var ErrIgnoredMessage = errors.New("ignored message")

// IgnoredError carries the reason an inbound message is not answered.
type IgnoredError struct {
	Reason string
}

func (e *IgnoredError) Error() string {
	return "not replying: " + e.Reason
}

func (e *IgnoredError) Unwrap() error {
	return ErrIgnoredMessage
}

func ignored(format string, args ...any) error {
	return &IgnoredError{Reason: fmt.Sprintf(format, args...)}
}

// ReadHeader parses the header of an RFC 5322 message. Unknown charsets in
// the body are not an error.
func ReadHeader(r io.Reader) (message.Header, error) {
	entity, err := message.Read(r)
	if err != nil && !message.IsUnknownCharset(err) && !message.IsUnknownEncoding(err) {
		return message.Header{}, fmt.Errorf("read message: %w", err)
	}
	if entity == nil {
		return message.Header{}, errors.New("read message: empty message")
	}
	return entity.Header, nil
}

// CheckMessage returns an *IgnoredError when a reply to sender would go to a
// bounce, another autoresponder, or a mailing list.
func CheckMessage(sender string, header message.Header) error {
	sender = strings.TrimSpace(sender)
	if sender == "" || sender == "<>" {
		return ignored("null or empty sender")
	}
	if reason := automatedSender(sender); reason != "" {
		return ignored("sender %s is %s", sender, reason)
	}

	if autoSubmitted := header.Get("Auto-Submitted"); autoSubmitted != "" {
		if strings.ToLower(strings.TrimSpace(autoSubmitted)) != "no" {
			return ignored("Auto-Submitted: %s", autoSubmitted)
		}
	}

	if precedence := header.Get("Precedence"); precedence != "" {
		switch strings.ToLower(strings.TrimSpace(precedence)) {
		case "bulk", "junk", "list":
			return ignored("Precedence: %s", precedence)
		}
	}

	if listID := header.Get("List-Id"); listID != "" {
		return ignored("List-Id: %s", listID)
	}
	return nil
}

// automatedSender names the kind of system mailbox sender is, or returns "".
func automatedSender(sender string) string {
	local := strings.ToLower(strings.Trim(sender, "<>"))
	if at := strings.LastIndex(local, "@"); at >= 0 {
		local = local[:at]
	}
	switch {
	case local == "mailer-daemon":
		return "a mailer daemon"
	case strings.HasPrefix(local, "owner-"), strings.HasSuffix(local, "-request"):
		return "a mailing list address"
	}
	return ""
}
