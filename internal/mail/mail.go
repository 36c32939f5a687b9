package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/mail"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
	gomail "github.com/wneessen/go-mail"

	"github.com/gfdmit/web-forum/posts-api/config"
)

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns the mailer selected by MAIL_TRANSPORT.
func New(conf config.Mail) (Mailer, error) {
	switch conf.Transport {
	case "smtp":
		return &SMTP{conf: conf}, nil
	case "ses":
		return NewSES(conf)
	case "log", "":
		return Log{}, nil
	default:
		return nil, fmt.Errorf("mail.New: unknown transport %q", conf.Transport)
	}
}

// Log prints messages instead of sending them. Used in development.
type Log struct{}

func (Log) Send(_ context.Context, msg Message) error {
	log.Printf("[MAIL] to=%s subject=%q\n%s", msg.To, msg.Subject, msg.Text)
	return nil
}

// SMTP delivers through go-mail. Every connection carries a deadline of
// MAIL_TIMEOUT and is closed as soon as the caller's context ends.
type SMTP struct {
	conf config.Mail
}

func (s *SMTP) timeout() time.Duration {
	if s.conf.Timeout > 0 {
		return s.conf.Timeout
	}
	return 15 * time.Second
}

func (s *SMTP) message(msg Message) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.FromFormat(s.conf.FromName, s.conf.From); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(gomail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	return m, nil
}

// dialer opens the connection itself so the deadline and the hook on the
// sending context cover the greeting and every later command. The context
// handed to the returned func only bounds the dial.
func (s *SMTP) dialer(sendCtx context.Context) gomail.DialContextFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		d := &net.Dialer{Timeout: s.timeout()}
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		deadline := time.Now().Add(s.timeout())
		if sd, ok := sendCtx.Deadline(); ok && sd.Before(deadline) {
			deadline = sd
		}
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, err
		}
		context.AfterFunc(sendCtx, func() { conn.Close() })
		if s.conf.SSL {
			return tls.Client(conn, &tls.Config{ServerName: s.conf.Server}), nil
		}
		return conn, nil
	}
}

func (s *SMTP) client(ctx context.Context) (*gomail.Client, error) {
	opts := []gomail.Option{
		gomail.WithPort(s.conf.Port),
		gomail.WithTimeout(s.timeout()),
		gomail.WithDialContextFunc(s.dialer(ctx)),
	}
	if s.conf.SSL {
		// The dialer already wraps the connection in TLS.
		opts = append(opts, gomail.WithTLSPolicy(gomail.NoTLS))
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if s.conf.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.conf.Username),
			gomail.WithPassword(s.conf.Password),
		)
	}
	return gomail.NewClient(s.conf.Server, opts...)
}

func (s *SMTP) Send(ctx context.Context, msg Message) error {
	m, err := s.message(msg)
	if err != nil {
		return fmt.Errorf("smtp.Send: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	client, err := s.client(ctx)
	if err != nil {
		return fmt.Errorf("smtp.NewClient: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp.Send: %w", err)
	}
	return nil
}

type SES struct {
	svc    *ses.SES
	source string
}

func NewSES(conf config.Mail) (*SES, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(conf.SESRegion)})
	if err != nil {
		return nil, fmt.Errorf("error creating AWS session: %v", err)
	}
	source := (&mail.Address{Name: conf.FromName, Address: conf.From}).String()
	return &SES{svc: ses.New(sess), source: source}, nil
}

func (s *SES) Send(ctx context.Context, msg Message) error {
	input := &ses.SendEmailInput{
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(msg.To)},
		},
		Message: &ses.Message{
			Body: &ses.Body{
				Html: &ses.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(msg.HTML),
				},
				Text: &ses.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(msg.Text),
				},
			},
			Subject: &ses.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(msg.Subject),
			},
		},
		Source: aws.String(s.source),
	}
	if _, err := s.svc.SendEmailWithContext(ctx, input); err != nil {
		return fmt.Errorf("ses.SendEmail: %w", err)
	}
	return nil
}
