package mailer

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/mail.v2"
)

const (
	FromName              = "Bulkwala"
	VerifyEmailTemplate   = "verify_email.tmpl"
	ResetPasswordTemplate = "reset_password.tmpl"
)

//go:embed "templates"
var FS embed.FS

var ErrTemplate = errors.New("mailer: template")

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}

// SMTPMailer delivers templated mail over SMTP.
type SMTPMailer struct {
	dialer    *mail.Dialer
	fromEmail string
}

func NewSMTPMailer(host string, port int, username, password, fromEmail string) *SMTPMailer {
	d := mail.NewDialer(host, port, username, password)
	d.Timeout = 10 * time.Second
	return &SMTPMailer{dialer: d, fromEmail: fromEmail}
}

// Send renders templateFile and sends it once. The int is an HTTP-like
// status kept for parity with API based mail clients.
func (m *SMTPMailer) Send(templateFile, username, email string, data any) (int, error) {
	msg, err := m.compose(templateFile, username, email, data)
	if err != nil {
		return -1, err
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return -1, fmt.Errorf("send %s to %s: %w", templateFile, email, err)
	}
	return 200, nil
}

func (m *SMTPMailer) compose(templateFile, username, email string, data any) (*mail.Message, error) {
	subject, plain, html, err := Render(templateFile, data)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMessage()
	msg.SetAddressHeader("From", m.fromEmail, FromName)
	msg.SetAddressHeader("To", email, username)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plain)
	msg.AddAlternative("text/html", html)
	return msg, nil
}

// Render executes the subject, plainBody and htmlBody blocks of templateFile.
func Render(templateFile string, data any) (subject, plain, html string, err error) {
	tmpl, err := template.New("email").ParseFS(FS, "templates/"+templateFile)
	if err != nil {
		return "", "", "", fmt.Errorf("%w: parse %s: %w", ErrTemplate, templateFile, err)
	}

	parts := make([]string, 3)
	for i, name := range []string{"subject", "plainBody", "htmlBody"} {
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
			return "", "", "", fmt.Errorf("%w: execute %s/%s: %w", ErrTemplate, templateFile, name, err)
		}
		parts[i] = buf.String()
	}
	return parts[0], parts[1], parts[2], nil
}
