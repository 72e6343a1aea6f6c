package vacation

import (
	"bytes"
	"fmt"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
)

// Reply is an out of office message ready to be composed.
type Reply struct {
	From     string
	To       string
	Subject  string
	Body     string
	Hostname string
}

// Compose renders r as a plain text RFC 5322 message marked as an automatic
// reply.
func Compose(r Reply, now time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{{Address: r.From}})
	h.SetAddressList("To", []*mail.Address{{Address: r.To}})
	h.SetSubject(r.Subject)
	h.SetMessageID(fmt.Sprintf("%s.vacation@%s", uuid.NewString(), r.Hostname))
	h.Set("Auto-Submitted", "auto-replied")
	h.Set("X-Auto-Response-Suppress", "All")
	h.Set("Precedence", "bulk")
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create reply writer: %w", err)
	}
	if _, err := w.Write([]byte(r.Body)); err != nil {
		return nil, fmt.Errorf("write reply body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close reply writer: %w", err)
	}
	return buf.Bytes(), nil
}
