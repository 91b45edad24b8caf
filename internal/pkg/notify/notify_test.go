package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() Notification {
	return Notification{
		ToEmail:     "asha@college.edu",
		ToName:      "Asha",
		CompanyName: "Acme",
		Status:      "Approved",
		Message:     "Congratulations! Your application for Engineer at Acme has been approved.",
	}
}

func TestNotification_Rendering(t *testing.T) {
	n := sample()

	assert.Equal(t, "Application Status Update - Acme", n.Subject())
	assert.Contains(t, n.TextBody(), "Dear Asha,")
	assert.Contains(t, n.TextBody(), "Placement Cell")
	assert.Contains(t, n.HTMLBody(), "Congratulations!")

	n.ToName = "<script>"
	assert.NotContains(t, n.HTMLBody(), "<script>")
}

func TestSimulatedChannel_RecordsDeliveries(t *testing.T) {
	ch := NewSimulatedChannel(zerolog.Nop())

	require.NoError(t, ch.Send(context.Background(), sample()))

	deliveries := ch.Deliveries()
	require.Len(t, deliveries, 1)
	assert.Equal(t, "Approved", deliveries[0].Status)
	assert.Equal(t, DefaultFromName, deliveries[0].FromName)
}

func TestSimulatedChannel_InjectedFailure(t *testing.T) {
	ch := NewSimulatedChannel(zerolog.Nop())
	ch.FailWith(errors.New("mailbox unavailable"))

	err := ch.Send(context.Background(), sample())
	assert.ErrorIs(t, err, ErrDelivery)
	assert.Empty(t, ch.Deliveries())

	ch.FailWith(nil)
	assert.NoError(t, ch.Send(context.Background(), sample()))
}

func TestSimulatedChannel_DelayHonoursContext(t *testing.T) {
	ch := NewSimulatedChannel(zerolog.Nop(), WithDelayMS(1000))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := ch.Send(ctx, sample())
	assert.ErrorIs(t, err, ErrDelivery)
	assert.Empty(t, ch.Deliveries())
}

func TestSimulatedChannel_RequiresRecipient(t *testing.T) {
	n := sample()
	n.ToEmail = ""
	assert.ErrorIs(t, NewSimulatedChannel(zerolog.Nop()).Send(context.Background(), n), ErrDelivery)
}

func TestSendGridChannel(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	ch := NewSendGridChannel(SendGridConfig{APIKey: "sg-key", FromEmail: "placements@college.edu", Host: server.URL}, zerolog.Nop())
	require.NoError(t, ch.Send(context.Background(), sample()))

	personalizations := got["personalizations"].([]any)
	first := personalizations[0].(map[string]any)
	assert.Equal(t, "Application Status Update - Acme", first["subject"])
}

func TestSendGridChannel_Rejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	ch := NewSendGridChannel(SendGridConfig{APIKey: "bad", FromEmail: "placements@college.edu", Host: server.URL}, zerolog.Nop())
	assert.ErrorIs(t, ch.Send(context.Background(), sample()), ErrDelivery)
}

func TestNewChannel_FallsBackToSimulated(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "default", cfg: Config{}, want: ChannelSimulated},
		{name: "smtp without host", cfg: Config{Channel: "smtp"}, want: ChannelSimulated},
		{name: "sendgrid without key", cfg: Config{Channel: "sendgrid"}, want: ChannelSimulated},
		{name: "smtp", cfg: Config{Channel: "smtp", SMTP: SMTPConfig{Host: "localhost", Port: 25, FromEmail: "a@b.c"}}, want: ChannelSMTP},
		{name: "sendgrid", cfg: Config{Channel: "SendGrid", SendGrid: SendGridConfig{APIKey: "k", FromEmail: "a@b.c"}}, want: ChannelSendGrid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewChannel(tt.cfg, zerolog.Nop()).Name())
		})
	}
}

func TestSMTPChannel_UnreachableServer(t *testing.T) {
	ch := NewSMTPChannel(SMTPConfig{Host: "127.0.0.1", Port: 1, FromEmail: "placements@college.edu"}, zerolog.Nop())
	assert.ErrorIs(t, ch.Send(context.Background(), sample()), ErrDelivery)
}

func TestSMTPChannel_HeadersStaySingleLine(t *testing.T) {
	ch := NewSMTPChannel(SMTPConfig{Host: "smtp.college.edu", Port: 587, FromEmail: "placements@college.edu"}, zerolog.Nop())

	n := sample()
	n.CompanyName = "Acme\r\nBcc: x@evil.test"
	n.FromName = "Placement Cell\nCc: y@evil.test"
	assert.NotContains(t, n.Subject(), "\n")
	assert.NotContains(t, n.Subject(), "\r")

	message := string(ch.buildMessage(n))
	head, body, found := strings.Cut(message, "\r\n\r\n")
	require.True(t, found)
	assert.Contains(t, body, "Acme")

	lines := strings.Split(head, "\r\n")
	names := make([]string, 0, len(lines))
	for _, line := range lines {
		name, _, ok := strings.Cut(line, ":")
		require.True(t, ok, "malformed header line %q", line)
		names = append(names, name)
	}
	assert.Equal(t, []string{"From", "To", "Subject", "MIME-Version", "Content-Type"}, names)
	assert.NotContains(t, head, "\nBcc:")
	assert.NotContains(t, head, "\nCc:")
}
