// Package notify delivers application status notifications to applicants.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yigit/campusconnect/internal/pkg/logger"
)

// ErrDelivery wraps every failure to hand a notification to its channel.
var ErrDelivery = errors.New("notification delivery failed")

// DefaultFromName signs notifications when no sender is configured.
const DefaultFromName = "Placement Cell"

// Notification is a single message to an applicant.
type Notification struct {
	ToEmail     string `json:"toEmail"`
	ToName      string `json:"toName"`
	CompanyName string `json:"companyName"`
	Status      string `json:"status"`
	Message     string `json:"message"`
	FromName    string `json:"fromName"`
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Subject is the mail subject line. Line breaks are flattened to spaces.
func (n Notification) Subject() string {
	return lineBreaks.Replace("Application Status Update - " + n.CompanyName)
}

// TextBody renders the plain-text body.
func (n Notification) TextBody() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear %s,\n\n", n.ToName)
	sb.WriteString(n.Message)
	fmt.Fprintf(&sb, "\n\nStatus: %s\nCompany: %s\n\nBest regards,\n%s\n", n.Status, n.CompanyName, n.sender())
	return sb.String()
}

// HTMLBody renders the HTML body.
func (n Notification) HTMLBody() string {
	return fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Application Status Update</h2>
				<p>Dear %s,</p>
				<p>%s</p>
				<p><strong>Company:</strong> %s<br><strong>Status:</strong> %s</p>
				<p>Best regards,<br>%s</p>
			</div>
		</body>
		</html>
	`,
		html.EscapeString(n.ToName),
		html.EscapeString(n.Message),
		html.EscapeString(n.CompanyName),
		html.EscapeString(n.Status),
		html.EscapeString(n.sender()),
	)
}

func (n Notification) sender() string {
	if n.FromName == "" {
		return DefaultFromName
	}
	return n.FromName
}

func (n Notification) validate() error {
	if n.ToEmail == "" {
		return fmt.Errorf("%w: notification has no recipient", ErrDelivery)
	}
	return nil
}

// Channel sends notifications. Send returns an error wrapping ErrDelivery when
// the message was not handed off.
type Channel interface {
	Send(ctx context.Context, n Notification) error
	Name() string
}

// Channel names accepted by NewChannel.
const (
	ChannelSimulated = "simulated"
	ChannelSMTP      = "smtp"
	ChannelSendGrid  = "sendgrid"
)

// Config selects and configures a channel.
type Config struct {
	Channel  string
	FromName string
	SMTP     SMTPConfig
	SendGrid SendGridConfig
	// SimulatedDelay is applied by the simulated channel before recording a
	// delivery.
	SimulatedDelayMS int
}

// NewChannel builds the configured channel. A real channel that is selected
// but not configured falls back to the simulated channel.
func NewChannel(cfg Config, lgr zerolog.Logger) Channel {
	lgr = logger.Component(lgr, "notify")

	switch strings.ToLower(cfg.Channel) {
	case ChannelSMTP:
		if cfg.SMTP.Host != "" && cfg.SMTP.FromEmail != "" {
			return NewSMTPChannel(cfg.SMTP, lgr)
		}
	case ChannelSendGrid:
		if cfg.SendGrid.APIKey != "" && cfg.SendGrid.FromEmail != "" {
			return NewSendGridChannel(cfg.SendGrid, lgr)
		}
	}

	return NewSimulatedChannel(lgr, WithDelayMS(cfg.SimulatedDelayMS))
}
