package vacation_test

import (
	"bytes"
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-message"
	"github.com/emersion/go-message/mail"
	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vmail/internal/vacation"
)

func header(t *testing.T, raw string) message.Header {
	t.Helper()
	h, err := vacation.ReadHeader(strings.NewReader(raw))
	require.NoError(t, err)
	return h
}

func TestCheckMessageSuppression(t *testing.T) {
	cases := []struct {
		name    string
		sender  string
		raw     string
		ignored bool
	}{
		{name: "plain", sender: "bob@remote.org", raw: "From: bob@remote.org\r\nSubject: hi\r\n\r\nhello\r\n"},
		{name: "auto-submitted no", sender: "bob@remote.org", raw: "Auto-Submitted: no\r\n\r\nbody\r\n"},
		{name: "empty sender", sender: "", raw: "Subject: bounce\r\n\r\nbody\r\n", ignored: true},
		{name: "null sender", sender: "<>", raw: "Subject: bounce\r\n\r\nbody\r\n", ignored: true},
		{name: "auto-replied", sender: "bob@remote.org", raw: "Auto-Submitted: auto-replied\r\n\r\nbody\r\n", ignored: true},
		{name: "bulk", sender: "bob@remote.org", raw: "Precedence: Bulk\r\n\r\nbody\r\n", ignored: true},
		{name: "list precedence", sender: "bob@remote.org", raw: "Precedence: list\r\n\r\nbody\r\n", ignored: true},
		{name: "mailer daemon", sender: "MAILER-DAEMON@mx.remote.org", raw: "Subject: failure notice\r\n\r\nbody\r\n", ignored: true},
		{name: "list owner", sender: "owner-dev@lists.example.org", raw: "Subject: digest\r\n\r\nbody\r\n", ignored: true},
		{name: "list request", sender: "dev-request@lists.example.org", raw: "Subject: confirm\r\n\r\nbody\r\n", ignored: true},
		{name: "owner lookalike", sender: "ownerx@remote.org", raw: "Subject: hi\r\n\r\nbody\r\n"},
		{name: "list id", sender: "bob@remote.org", raw: "List-Id: <dev.lists.example.org>\r\n\r\nbody\r\n", ignored: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := vacation.CheckMessage(tc.sender, header(t, tc.raw))
			if !tc.ignored {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, vacation.ErrIgnoredMessage)
			var ignored *vacation.IgnoredError
			require.ErrorAs(t, err, &ignored)
			assert.NotEmpty(t, ignored.Reason)
		})
	}
}

func TestDecodeAutoreplyAddress(t *testing.T) {
	got, err := vacation.DecodeAutoreplyAddress("user#example.com@autoreply.example.com")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", got)

	for _, bad := range []string{"", "user@autoreply.example.com", "#example.com@autoreply", "user#@autoreply"} {
		_, err := vacation.DecodeAutoreplyAddress(bad)
		assert.ErrorIs(t, err, vacation.ErrInvalidRecipient, bad)
	}
}

func TestComposeMarksAutoReply(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	raw, err := vacation.Compose(vacation.Reply{
		From:      "alice@example.com",
		To:        "bob@remote.org",
		Subject:   "Auto: Out of Office",
		Body:      "Back on Monday.",
		Hostname:  "mx.example.com",
	}, now)
	require.NoError(t, err)

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	require.NoError(t, err)
	h := mr.Header

	assert.Equal(t, "auto-replied", h.Get("Auto-Submitted"))
	assert.Equal(t, "All", h.Get("X-Auto-Response-Suppress"))
	subject, err := h.Subject()
	require.NoError(t, err)
	assert.Equal(t, "Auto: Out of Office", subject)

	id, err := h.MessageID()
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(id, ".vacation@mx.example.com"), id)

	to, err := h.AddressList("To")
	require.NoError(t, err)
	require.Len(t, to, 1)
	assert.Equal(t, "bob@remote.org", to[0].Address)

	part, err := mr.NextPart()
	require.NoError(t, err)
	body, err := io.ReadAll(part.Body)
	require.NoError(t, err)
	assert.Equal(t, "Back on Monday.", strings.TrimSpace(string(body)))
}

type capturedMessage struct {
	From string
	To   []string
	Data []byte
}

type relayBackend struct {
	mu       sync.Mutex
	messages []capturedMessage
}

func (b *relayBackend) NewSession(*smtp.Conn) (smtp.Session, error) {
	return &relaySession{backend: b}, nil
}

func (b *relayBackend) received() []capturedMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]capturedMessage(nil), b.messages...)
}

type relaySession struct {
	backend *relayBackend
	from    string
	to      []string
}

func (s *relaySession) Mail(from string, _ *smtp.MailOptions) error {
	s.from = from
	return nil
}

func (s *relaySession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.to = append(s.to, to)
	return nil
}

func (s *relaySession) Data(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.backend.mu.Lock()
	s.backend.messages = append(s.backend.messages, capturedMessage{From: s.from, To: s.to, Data: data})
	s.backend.mu.Unlock()
	return nil
}

func (s *relaySession) Reset() {}

func (s *relaySession) Logout() error { return nil }

func startRelay(t *testing.T) (*relayBackend, string) {
	t.Helper()
	backend := &relayBackend{}
	server := smtp.NewServer(backend)
	server.Domain = "relay.test"
	server.AllowInsecureAuth = true

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(func() { _ = server.Close() })
	return backend, listener.Addr().String()
}

func TestSMTPSenderDeliversMessage(t *testing.T) {
	backend, addr := startRelay(t)
	sender := &vacation.SMTPSender{Address: addr, Timeout: 5 * time.Second}

	msg := []byte("Subject: test\r\n\r\nhello\r\n")
	require.NoError(t, sender.Send(context.Background(), "alice@example.com", "bob@remote.org", msg))

	got := backend.received()
	require.Len(t, got, 1)
	assert.Equal(t, "alice@example.com", got[0].From)
	assert.Equal(t, []string{"bob@remote.org"}, got[0].To)
	assert.Contains(t, string(got[0].Data), "hello")
}

func TestSMTPSenderReportsUnreachableRelay(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	sender := &vacation.SMTPSender{Address: addr, Timeout: time.Second}
	err = sender.Send(context.Background(), "alice@example.com", "bob@remote.org", []byte("x"))
	assert.ErrorContains(t, err, "connect to smtp relay")
}
