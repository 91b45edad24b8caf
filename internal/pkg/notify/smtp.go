package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
	UseTLS    bool
}

// SMTPChannel sends notifications through an SMTP relay
type SMTPChannel struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewSMTPChannel creates a new SMTP channel
func NewSMTPChannel(config SMTPConfig, logger zerolog.Logger) *SMTPChannel {
	return &SMTPChannel{
		config: config,
		logger: logger,
	}
}

// Name implements Channel
func (c *SMTPChannel) Name() string { return ChannelSMTP }

// Send implements Channel
func (c *SMTPChannel) Send(ctx context.Context, n Notification) error {
	if err := n.validate(); err != nil {
		return err
	}
	if n.FromName == "" {
		n.FromName = c.config.FromName
	}

	message := c.buildMessage(n)
	if err := c.deliver(ctx, n.ToEmail, message); err != nil {
		c.logger.Error().Err(err).Str("to", n.ToEmail).Msg("Failed to send notification email")
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}

	c.logger.Info().Str("to", n.ToEmail).Str("status", n.Status).Msg("Notification email sent")
	return nil
}

func (c *SMTPChannel) buildMessage(n Notification) []byte {
	from := mail.Address{Name: lineBreaks.Replace(n.sender()), Address: c.config.FromEmail}
	headers := [][2]string{
		{"From", from.String()},
		{"To", n.ToEmail},
		{"Subject", mime.QEncoding.Encode("UTF-8", n.Subject())},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var sb strings.Builder
	for _, h := range headers {
		// a header value is always a single line
		fmt.Fprintf(&sb, "%s: %s\r\n", h[0], lineBreaks.Replace(h[1]))
	}
	sb.WriteString("\r\n")
	sb.WriteString(n.HTMLBody())
	return []byte(sb.String())
}

func (c *SMTPChannel) deliver(ctx context.Context, to string, message []byte) error {
	serverAddress := net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))

	var conn net.Conn
	var err error
	if c.config.UseTLS {
		dialer := &tls.Dialer{Config: &tls.Config{ServerName: c.config.Host}}
		conn, err = dialer.DialContext(ctx, "tcp", serverAddress)
	} else {
		var d net.Dialer
		conn, err = d.DialContext(ctx, "tcp", serverAddress)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server %s: %w", serverAddress, err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, c.config.Host)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer client.Close()

	if !c.config.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: c.config.Host}); err != nil {
				return fmt.Errorf("failed to start TLS: %w", err)
			}
		}
	}

	if c.config.Username != "" {
		auth := smtp.PlainAuth("", c.config.Username, c.config.Password, c.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(c.config.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err := w.Write(message); err != nil {
		return fmt.Errorf("failed to write email message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	return client.Quit()
}
