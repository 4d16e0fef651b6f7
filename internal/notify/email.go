package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailSender delivers reminders through an SMTP relay.
type EmailSender struct {
	addr     string
	host     string
	user     string
	password string
	from     string
	sendMail sendMailFunc
}

func NewEmailSender(host, port, user, password, from string) *EmailSender {
	return &EmailSender{
		addr:     net.JoinHostPort(host, port),
		host:     host,
		user:     user,
		password: password,
		from:     from,
		sendMail: smtp.SendMail,
	}
}

func (s *EmailSender) Channel() string { return "email" }

// Send writes a plain-text message. The context only gates the start of the
// attempt; net/smtp has no cancellation.
func (s *EmailSender) Send(ctx context.Context, r Reminder) error {
	if r.Email == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", r.Email)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
	b.WriteString(message(r))
	b.WriteString("\r\n")

	auth := smtp.PlainAuth("", s.user, s.password, s.host)
	if err := s.sendMail(s.addr, auth, s.from, []string{r.Email}, []byte(b.String())); err != nil {
		return fmt.Errorf("send email to %s: %w", r.Email, err)
	}
	return nil
}
