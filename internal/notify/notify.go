// Package notify delivers price-drop alerts to job owners.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
)

// PriceAlert carries everything needed to compose an alert message
type PriceAlert struct {
	ProductName string
	Price       float64
	TargetPrice float64
	URL         string
}

// Notifier sends a price-drop alert to a recipient.
// A returned error means the notification was NOT confirmed dispatched;
// callers must not mark the job alerted in that case.
type Notifier interface {
	Notify(ctx context.Context, recipient string, alert PriceAlert) error
	Enabled() bool
}

// EmailConfig holds SMTP transport configuration
type EmailConfig struct {
	Host     string
	Port     int
	From     string
	Password string
}

// EmailNotifier sends alerts over SMTP
type EmailNotifier struct {
	cfg EmailConfig
	log zerolog.Logger
}

// NewEmailNotifier creates a new SMTP notifier
func NewEmailNotifier(cfg EmailConfig, log zerolog.Logger) *EmailNotifier {
	return &EmailNotifier{
		cfg: cfg,
		log: log.With().Str("component", "notifier").Logger(),
	}
}

// Enabled reports whether sender credentials are configured
func (e *EmailNotifier) Enabled() bool {
	return e.cfg.From != "" && e.cfg.Password != ""
}

// Notify sends the alert email. Transport and auth failures are returned,
// never panicked, so the check cycle can retry on the next tick.
func (e *EmailNotifier) Notify(ctx context.Context, recipient string, alert PriceAlert) error {
	if !e.Enabled() {
		return fmt.Errorf("email notifier not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(e.cfg.From, recipient, alert)
	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)
	auth := smtp.PlainAuth("", e.cfg.From, e.cfg.Password, e.cfg.Host)

	// Implicit TLS on 465, STARTTLS otherwise
	var err error
	if e.cfg.Port == 465 {
		err = e.sendTLS(addr, auth, recipient, msg)
	} else {
		err = smtp.SendMail(addr, auth, e.cfg.From, []string{recipient}, []byte(msg))
	}
	if err != nil {
		return fmt.Errorf("failed to send alert email: %w", err)
	}

	e.log.Info().
		Str("recipient", recipient).
		Str("product", alert.ProductName).
		Float64("price", alert.Price).
		Msg("Alert email sent")

	return nil
}

func (e *EmailNotifier) sendTLS(addr string, auth smtp.Auth, recipient, msg string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: e.cfg.Host})
	if err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, e.cfg.Host)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(e.cfg.From); err != nil {
		return err
	}
	if err := client.Rcpt(recipient); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}

// buildMessage composes the RFC 822 alert message
func buildMessage(from, to string, alert PriceAlert) string {
	subject := fmt.Sprintf("Price Drop Alert: %s now at %.2f", alert.ProductName, alert.Price)
	body := fmt.Sprintf(
		"The price for %q has dropped to %.2f (your target: %.2f).\n\nCheck it out here: %s\n",
		alert.ProductName, alert.Price, alert.TargetPrice, alert.URL,
	)

	var sb strings.Builder
	sb.WriteString("From: " + from + "\r\n")
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + subject + "\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return sb.String()
}
