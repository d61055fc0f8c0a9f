package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var (
	ErrNotConfigured = errors.New("smtp is not configured")
	ErrInvalidInput  = errors.New("invalid email message")
)

// Message is one outbound email. HTML is required; Text becomes the plain alternative.
type Message struct {
	To      []string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
}

type Config struct {
	Host      string
	Port      string
	Username  string
	Password  string
	FromEmail string
	FromName  string
	PerSecond float64
	Burst     int
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Service relays mail through an SMTP server with PLAIN auth.
type Service struct {
	cfg     Config
	limiter *rate.Limiter
	send    sendFunc
}

func NewService(cfg Config) *Service {
	limit := rate.Limit(cfg.PerSecond)
	if cfg.PerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	return &Service{
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, burst),
		send:    smtp.SendMail,
	}
}

// IsConfigured checks if the email service has valid SMTP configuration
func (s *Service) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != ""
}

// Validate normalizes recipients and rejects messages that cannot be relayed.
func (m *Message) Validate() error {
	if len(m.To) == 0 {
		return fmt.Errorf("%w: at least one recipient is required", ErrInvalidInput)
	}
	if len(m.To) > 50 {
		return fmt.Errorf("%w: too many recipients", ErrInvalidInput)
	}
	for i, to := range m.To {
		addr, err := mail.ParseAddress(strings.TrimSpace(to))
		if err != nil {
			return fmt.Errorf("%w: invalid recipient %q", ErrInvalidInput, to)
		}
		m.To[i] = addr.Address
	}
	if m.ReplyTo != "" {
		addr, err := mail.ParseAddress(strings.TrimSpace(m.ReplyTo))
		if err != nil {
			return fmt.Errorf("%w: invalid reply_to", ErrInvalidInput)
		}
		m.ReplyTo = addr.Address
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidInput)
	}
	if strings.ContainsAny(m.Subject, "\r\n") {
		return fmt.Errorf("%w: subject must be a single line", ErrInvalidInput)
	}
	if strings.TrimSpace(m.HTML) == "" {
		return fmt.Errorf("%w: html body is required", ErrInvalidInput)
	}
	return nil
}

// Send validates, waits for the outbound limiter and hands the message to SMTP.
func (s *Service) Send(ctx context.Context, msg Message) error {
	if !s.IsConfigured() {
		return ErrNotConfigured
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail throttled: %w", err)
	}

	raw := s.build(msg, time.Now())
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	if err := s.send(addr, auth, s.from(), msg.To, raw); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *Service) from() string {
	if s.cfg.FromEmail != "" {
		return s.cfg.FromEmail
	}
	// Brevo accepts the login address as sender
	return s.cfg.Username
}

func (s *Service) build(msg Message, now time.Time) []byte {
	var b bytes.Buffer
	fromHeader := s.from()
	if s.cfg.FromName != "" {
		fromHeader = (&mail.Address{Name: s.cfg.FromName, Address: s.from()}).String()
	}

	fmt.Fprintf(&b, "From: %s\r\n", fromHeader)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(msg.To, ", "))
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", msg.ReplyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Message-ID: <%s@%s>\r\n", uuid.NewString(), s.cfg.Host)
	b.WriteString("MIME-Version: 1.0\r\n")

	if msg.Text == "" {
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(msg.HTML)
		return b.Bytes()
	}

	boundary := "alt-" + strings.ReplaceAll(uuid.NewString(), "-", "")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, msg.Text)
	fmt.Fprintf(&b, "--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, msg.HTML)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.Bytes()
}
