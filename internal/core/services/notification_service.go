package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"hostel-leave-api/internal/config"

	"github.com/wneessen/go-mail"
)

var resetEmailTemplate = template.Must(template.New("reset").Parse(`<p>Hello {{.Name}},</p>
<p>You requested a password reset. Click the link below:</p>
<p><a href="{{.URL}}" target="_blank">{{.URL}}</a></p>
<p>This link will expire in {{.Expiry}}.</p>
`))

// NotificationService sends transactional email over SMTP
type NotificationService struct {
	cfg     config.MailConfig
	expiry  time.Duration
	enabled bool
}

// NewNotificationService creates a new notification service.
// Without SMTP credentials it is disabled and only logs what it would send.
func NewNotificationService(cfg config.MailConfig, resetTTL time.Duration) *NotificationService {
	return &NotificationService{
		cfg:     cfg,
		expiry:  resetTTL,
		enabled: cfg.Enabled(),
	}
}

// IsEnabled checks if notification is enabled
func (s *NotificationService) IsEnabled() bool {
	return s.enabled
}

// sendMail delivers one HTML message with a plain-text alternative
func (s *NotificationService) sendMail(ctx context.Context, to, subject, htmlBody, textBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	msg.AddAlternativeString(mail.TypeTextPlain, textBody)

	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.User),
		mail.WithPassword(s.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return err
	}

	return client.DialAndSendWithContext(ctx, msg)
}

// SendPasswordReset emails the reset link. A single attempt is made.
func (s *NotificationService) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	if !s.enabled {
		log.Printf("📧 [mail disabled] reset link for %s: %s", to, resetURL)
		return nil
	}

	var body bytes.Buffer
	err := resetEmailTemplate.Execute(&body, map[string]string{
		"Name":   name,
		"URL":    resetURL,
		"Expiry": formatExpiry(s.expiry),
	})
	if err != nil {
		return err
	}

	text := fmt.Sprintf("Hello %s,\n\nYou requested a password reset. Open the link below:\n%s\n\nThis link will expire in %s.\n",
		name, resetURL, formatExpiry(s.expiry))

	return s.sendMail(ctx, to, "Password Reset Request", body.String(), text)
}

func formatExpiry(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d.Hours()))
	}
	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}
