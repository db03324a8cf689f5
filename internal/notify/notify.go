// Package notify sends the order emails that follow a successful checkout.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/safar/coffee-shop/internal/config"
	"gopkg.in/gomail.v2"
)

var ErrDisabled = errors.New("mail disabled")

type Message struct {
	To       string
	Subject  string
	HTMLBody string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns an SMTP mailer, or a NopSender when SMTP is not
// configured.
func NewSender(cfg config.SMTPConfig) Sender {
	if !cfg.Enabled() {
		return NopSender{}
	}
	return NewSMTPMailer(cfg)
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.User,
	}
}

func (m *SMTPMailer) message(msg Message) *gomail.Message {
	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/html", msg.HTMLBody)
	return gm
}

// Send delivers msg over a fresh SMTP connection. gomail has no context
// support, so ctx only bounds how long the caller waits.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("send mail %q: empty recipient", msg.Subject)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		done <- m.dialer.DialAndSend(m.message(msg))
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send mail to %s: %w", msg.To, err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send mail to %s: %w", msg.To, ctx.Err())
	}
}

type NopSender struct{}

func (NopSender) Send(ctx context.Context, msg Message) error {
	return ErrDisabled
}
