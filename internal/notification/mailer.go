package notification

import (
	"context"
	"fmt"

	"github.com/caarlos0/env/v11"
	"gopkg.in/gomail.v2"
)

// MailNotifier delivers messages over SMTP.
type MailNotifier struct {
	config smtpConfig
	dialer *gomail.Dialer
}

// smtpConfig holds SMTP settings for sending emails.
type smtpConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM"`
}

func (c smtpConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing SMTP_HOST environment variable")
	}
	if c.Port == 0 {
		return fmt.Errorf("missing SMTP_PORT environment variable")
	}
	if c.Username == "" {
		return fmt.Errorf("missing SMTP_USERNAME environment variable")
	}
	if c.Password == "" {
		return fmt.Errorf("missing SMTP_PASSWORD environment variable")
	}
	if c.From == "" {
		return fmt.Errorf("missing SMTP_FROM environment variable")
	}
	return nil
}

// NewMailNotifier reads SMTP settings from the environment and builds a
// notifier that delivers over SMTP.
func NewMailNotifier() (*MailNotifier, error) {
	cfg, err := env.ParseAs[smtpConfig]()
	if err != nil {
		return nil, fmt.Errorf("parse smtp config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)

	return &MailNotifier{config: cfg, dialer: dialer}, nil
}

// Send delivers the message, giving up when ctx expires. Delivery is a
// single attempt; the caller decides what a failure means.
func (n *MailNotifier) Send(ctx context.Context, message Message) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", n.config.From)
	msg.SetHeader("To", message.To)
	msg.SetHeader("Subject", message.Subject)
	if message.HTMLBody != "" {
		msg.SetBody("text/html", message.HTMLBody)
		if message.Body != "" {
			msg.AddAlternative("text/plain", message.Body)
		}
	} else {
		msg.SetBody("text/plain", message.Body)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- n.dialer.DialAndSend(msg)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
