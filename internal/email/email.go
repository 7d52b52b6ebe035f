package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/smtp"

	"eval-flow/internal/config"
)

// Sender delivers a rendered HTML email
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Service handles email operations
type Service struct {
	config *config.EmailConfig
	sender Sender
}

// NewService creates a new email service sending through SMTP
func NewService(cfg *config.EmailConfig) *Service {
	return &Service{
		config: cfg,
		sender: &smtpSender{config: cfg},
	}
}

// NewServiceWithSender creates an email service that delivers through sender
func NewServiceWithSender(cfg *config.EmailConfig, sender Sender) *Service {
	return &Service{config: cfg, sender: sender}
}

var revisionRequestedTemplate = template.Must(template.New("revision_requested").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Revision requested</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #4a90e2;">Revision requested</h2>
        <p>Hello {{.Name}},</p>
        <p>A revision of the <strong>{{.Step}}</strong> step has been requested:</p>
        <blockquote style="border-left: 3px solid #4a90e2; margin: 20px 0; padding-left: 12px;">{{.Comment}}</blockquote>
        <div style="text-align: center; margin: 30px 0;">
            <a href="{{.URL}}" style="background-color: #4a90e2; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Open request</a>
        </div>
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>
`))

var revisionReminderTemplate = template.Must(template.New("revision_reminder").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Open revision request</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #ff9800;">Reminder: open revision request</h2>
        <p>Hello {{.Name}},</p>
        <p>The revision request for the <strong>{{.Step}}</strong> step is still open since {{.Days}} day(s).</p>
        <div style="text-align: center; margin: 30px 0;">
            <a href="{{.URL}}" style="background-color: #ff9800; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Open request</a>
        </div>
        <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
        <p style="color: #999; font-size: 12px;">This is an automated email. Please do not reply.</p>
    </div>
</body>
</html>
`))

// SendRevisionRequestedEmail tells a recipient that a step needs revision
func (s *Service) SendRevisionRequestedEmail(ctx context.Context, to, name, step, comment, requestID string) error {
	body, err := render(revisionRequestedTemplate, map[string]any{
		"Name":    name,
		"Step":    step,
		"Comment": comment,
		"URL":     s.requestURL(requestID),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, to, fmt.Sprintf("Revision requested: %s step", step), body)
}

// SendRevisionReminderEmail reminds a recipient of a request that is still open
func (s *Service) SendRevisionReminderEmail(ctx context.Context, to, name, step, requestID string, days int) error {
	body, err := render(revisionReminderTemplate, map[string]any{
		"Name": name,
		"Step": step,
		"Days": days,
		"URL":  s.requestURL(requestID),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, to, fmt.Sprintf("Reminder: open revision request for %s step", step), body)
}

func (s *Service) requestURL(requestID string) string {
	return fmt.Sprintf("%s/revision-requests/%s", s.config.AppURL, requestID)
}

func (s *Service) send(ctx context.Context, to, subject, body string) error {
	if !s.config.Enabled {
		slog.DebugContext(ctx, "Email disabled, skipping", "to", to, "subject", subject)
		return nil
	}
	return s.sender.Send(ctx, to, subject, body)
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

type smtpSender struct {
	config *config.EmailConfig
}

// Send sends an email using SMTP
func (s *smtpSender) Send(ctx context.Context, to, subject, body string) error {
	var message bytes.Buffer
	for _, h := range [][2]string{
		{"From", s.config.SMTPFrom},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	} {
		fmt.Fprintf(&message, "%s: %s\r\n", h[0], h[1])
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := net.JoinHostPort(s.config.SMTPHost, s.config.SMTPPort)
	slog.DebugContext(ctx, "Attempting to connect to SMTP server", "address", addr)

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer func(conn net.Conn) {
		if err := conn.Close(); err != nil {
			slog.Debug("Failed to close SMTP connection", "error", err)
		}
	}(conn)

	client, err := smtp.NewClient(conn, s.config.SMTPHost)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	defer func(client *smtp.Client) {
		if err := client.Close(); err != nil {
			slog.Debug("Failed to close SMTP client", "error", err)
		}
	}(client)

	// Development relays such as Mailpit accept mail without auth
	if s.config.SMTPUsername != "" && s.config.SMTPPassword != "" {
		auth := smtp.PlainAuth("", s.config.SMTPUsername, s.config.SMTPPassword, s.config.SMTPHost)
		_ = client.Auth(auth)
	}

	if err := client.Mail(s.config.SMTPFrom); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to initiate data transfer: %w", err)
	}
	if _, err := wc.Write(message.Bytes()); err != nil {
		closeQuietly(wc)
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to finish message: %w", err)
	}

	slog.InfoContext(ctx, "Email sent successfully", "to", to)
	return nil
}

func closeQuietly(c io.Closer) {
	_ = c.Close()
}
