package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

const (
	sendGridHost     = "https://api.sendgrid.com"
	sendGridEndpoint = "/v3/mail/send"
)

// SendGridConfig configures the SendGrid channel. Host is only overridden in
// tests.
type SendGridConfig struct {
	APIKey    string
	FromName  string
	FromEmail string
	Host      string
}

// SendGridChannel sends notifications through the SendGrid v3 API.
type SendGridChannel struct {
	key    string
	host   string
	from   *sgmail.Email
	logger zerolog.Logger
}

// NewSendGridChannel creates a SendGrid channel.
func NewSendGridChannel(cfg SendGridConfig, logger zerolog.Logger) *SendGridChannel {
	host := cfg.Host
	if host == "" {
		host = sendGridHost
	}
	fromName := cfg.FromName
	if fromName == "" {
		fromName = DefaultFromName
	}
	return &SendGridChannel{
		key:    cfg.APIKey,
		host:   host,
		from:   sgmail.NewEmail(fromName, cfg.FromEmail),
		logger: logger,
	}
}

// Name implements Channel.
func (c *SendGridChannel) Name() string { return ChannelSendGrid }

// Send implements Channel.
func (c *SendGridChannel) Send(ctx context.Context, n Notification) error {
	if err := n.validate(); err != nil {
		return err
	}
	if n.FromName == "" {
		n.FromName = c.from.Name
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	req := sendgrid.GetRequest(c.key, sendGridEndpoint, c.host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(c.prepare(n))

	res, err := sendgrid.API(req)
	if err != nil {
		c.logger.Error().Err(err).Str("to", n.ToEmail).Msg("Sending notification failed")
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		c.logger.Error().Int("status", res.StatusCode).Str("body", res.Body).Str("to", n.ToEmail).Msg("SendGrid rejected notification")
		return fmt.Errorf("%w: sendgrid responded with status %d", ErrDelivery, res.StatusCode)
	}

	c.logger.Info().Str("to", n.ToEmail).Str("status", n.Status).Msg("Notification sent via SendGrid")
	return nil
}

func (c *SendGridChannel) prepare(n Notification) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = n.Subject()
	p.AddTos(sgmail.NewEmail(n.ToName, n.ToEmail))

	m := sgmail.NewV3Mail()
	m.SetFrom(c.from)
	m.AddPersonalizations(p)
	m.AddContent(
		sgmail.NewContent("text/plain", n.TextBody()),
		sgmail.NewContent("text/html", n.HTMLBody()),
	)
	return m
}
