package notify

import (
	"context"

	"github.com/adamanr/ems_service/internal/config"
	"gopkg.in/gomail.v2"
)

// Message is a rendered plain text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers one message synchronously.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.Username, cfg.Mail.Password),
		from:   cfg.Mail.From,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	return s.dialer.DialAndSend(m)
}
