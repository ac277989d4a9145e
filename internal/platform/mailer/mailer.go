package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

type Options struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends plain-text mail through a single SMTP relay.
type SMTPMailer struct {
	opts Options
}

func NewSMTPMailer(opts Options) *SMTPMailer {
	if opts.From == "" {
		opts.From = opts.Username
	}
	return &SMTPMailer{opts: opts}
}

// SendRepeated delivers count copies of the same message over one SMTP session.
func (m *SMTPMailer) SendRepeated(ctx context.Context, to, subject, body string, count int) error {
	msgs := make([]*mail.Msg, 0, count)
	for i := 0; i < count; i++ {
		msg := mail.NewMsg()
		if err := msg.From(m.opts.From); err != nil {
			return fmt.Errorf("invalid sender %q: %w", m.opts.From, err)
		}
		if err := msg.To(to); err != nil {
			return fmt.Errorf("invalid recipient %q: %w", to, err)
		}
		msg.Subject(subject)
		msg.SetBodyString(mail.TypeTextPlain, body)
		msgs = append(msgs, msg)
	}

	client, err := m.newClient()
	if err != nil {
		return err
	}
	if err := client.DialAndSendWithContext(ctx, msgs...); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}

func (m *SMTPMailer) newClient() (*mail.Client, error) {
	opts := []mail.Option{mail.WithPort(m.opts.Port)}
	if m.opts.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.opts.Username),
			mail.WithPassword(m.opts.Password),
		)
	}
	client, err := mail.NewClient(m.opts.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}
	return client, nil
}
