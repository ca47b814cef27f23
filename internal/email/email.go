package email

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"golists/internal/config"
)

// Service handles sending email notifications.
type Service struct {
	cfg     *config.Config
	enabled bool
	log     zerolog.Logger

	// transport delivers a rendered message; tests replace it.
	transport func(to []string, msg []byte) error
}

// NewService creates a new email service.
func NewService(cfg *config.Config, log zerolog.Logger) *Service {
	s := &Service{
		cfg:     cfg,
		enabled: cfg.IsEmailEnabled(),
		log:     log.With().Str("component", "email").Logger(),
	}
	s.transport = s.deliver

	if s.enabled {
		s.log.Info().Str("host", cfg.SMTPHost).Int("port", cfg.SMTPPort).Str("tls", cfg.SMTPTLS).Msg("email notifications enabled")
	} else {
		s.log.Info().Msg("email notifications disabled (SMTP not configured)")
	}

	return s
}

// IsEnabled returns true if email is enabled.
func (s *Service) IsEnabled() bool {
	return s.enabled
}

// Send delivers m to the recipients. It is a no-op when email is disabled.
func (s *Service) Send(to []string, m Message) error {
	if !s.enabled || len(to) == 0 {
		return nil
	}
	return s.transport(to, []byte(s.render(to, m)))
}

// SendAsync sends in the background, logging the outcome.
func (s *Service) SendAsync(to []string, m Message) {
	if !s.enabled || len(to) == 0 {
		return
	}

	go func() {
		if err := s.Send(to, m); err != nil {
			s.log.Error().Err(err).Strs("to", to).Str("subject", m.Subject).Msg("failed to send email")
			return
		}
		s.log.Debug().Strs("to", to).Str("subject", m.Subject).Msg("email sent")
	}()
}

// render builds a multipart/alternative MIME message.
func (s *Service) render(to []string, m Message) string {
	from := s.cfg.SMTPFrom
	if s.cfg.SMTPFromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", s.cfg.SMTPFromName), s.cfg.SMTPFrom)
	}
	boundary := "golists-" + uuid.NewString()

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	part := func(contentType, body string) {
		if body == "" {
			return
		}
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		fmt.Fprintf(&b, "Content-Type: %s; charset=\"UTF-8\"\r\n\r\n", contentType)
		b.WriteString(body)
		b.WriteString("\r\n")
	}
	part("text/plain", m.Text)
	part("text/html", m.HTML)

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return b.String()
}

// dial connects according to SMTP_TLS: "tls" is implicit TLS (465),
// "starttls" upgrades a plain connection (587), anything else stays plain.
func (s *Service) dial() (*smtp.Client, error) {
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	tlsConfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}

	if s.cfg.SMTPTLS == "tls" {
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return nil, fmt.Errorf("TLS dial failed: %w", err)
		}
		client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("SMTP client failed: %w", err)
		}
		return client, nil
	}

	client, err := smtp.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("SMTP dial failed: %w", err)
	}
	if s.cfg.SMTPTLS == "starttls" {
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return nil, fmt.Errorf("STARTTLS failed: %w", err)
		}
	}
	return client, nil
}

func (s *Service) deliver(to []string, msg []byte) error {
	client, err := s.dial()
	if err != nil {
		return err
	}
	defer client.Close()

	if s.cfg.SMTPUsername != "" && s.cfg.SMTPPassword != "" {
		auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP auth failed: %w", err)
		}
	}

	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("SMTP MAIL failed: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("SMTP RCPT %s failed: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("SMTP DATA failed: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("SMTP write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("SMTP close failed: %w", err)
	}

	return client.Quit()
}
