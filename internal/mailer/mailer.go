// Package mailer sends report documents over SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"time"

	mail "github.com/wneessen/go-mail"
)

// Message is one outbound mail with a single binary attachment.
type Message struct {
	To         string
	Subject    string
	Body       string
	Filename   string
	Attachment []byte
}

// Sender delivers one message. Implementations make a single attempt;
// retry policy is the caller's concern.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Options configures the SMTP transport. SSL selects implicit TLS (port
// 465 style); otherwise STARTTLS is required.
type Options struct {
	Host     string
	Port     int
	SSL      bool
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

type SMTPSender struct {
	opts Options
}

func NewSMTPSender(opts Options) *SMTPSender {
	return &SMTPSender{opts: opts}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.opts.From); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	if len(msg.Attachment) > 0 {
		if err := m.AttachReader(msg.Filename, bytes.NewReader(msg.Attachment)); err != nil {
			return fmt.Errorf("attach %s: %w", msg.Filename, err)
		}
	}

	clientOpts := []mail.Option{
		mail.WithPort(s.opts.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.opts.Username),
		mail.WithPassword(s.opts.Password),
	}
	if s.opts.Timeout > 0 {
		clientOpts = append(clientOpts, mail.WithTimeout(s.opts.Timeout))
	}
	if s.opts.SSL {
		clientOpts = append(clientOpts, mail.WithSSL())
	} else {
		clientOpts = append(clientOpts, mail.WithTLSPolicy(mail.TLSMandatory))
	}

	c, err := mail.NewClient(s.opts.Host, clientOpts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("send to %s: %w", msg.To, err)
	}
	return nil
}
