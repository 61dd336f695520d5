package utils

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

type EmailMessage struct {
	To       string
	Subject  string
	Template string
	Data     map[string]any
}

// Mailer delivers a single email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// SMTPMailer renders an HTML template from TemplateDir and sends it over SMTP.
type SMTPMailer struct {
	From        string
	Host        string
	Port        int
	Username    string
	Password    string
	TemplateDir string
}

func (m *SMTPMailer) Send(_ context.Context, msg EmailMessage) error {
	body, err := RenderTemplate(m.TemplateDir, msg)
	if err != nil {
		return err
	}

	message := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n\r\n%s",
		m.From,
		msg.To,
		msg.Subject,
		body,
	)

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	addr := net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	if err := smtp.SendMail(addr, auth, m.From, []string{msg.To}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// RenderTemplate executes <dir>/<msg.Template>.html with msg.Data.
func RenderTemplate(dir string, msg EmailMessage) (string, error) {
	tmpl, err := template.ParseFiles(filepath.Join(dir, msg.Template+".html"))
	if err != nil {
		return "", fmt.Errorf("template parse error: %w", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, msg.Data); err != nil {
		return "", fmt.Errorf("template execution error: %w", err)
	}
	return body.String(), nil
}

// RelayMailer hands the message to an EmailJS-compatible HTTP relay, which
// owns the templates. The message data travels as template parameters.
type RelayMailer struct {
	URL         string
	ServiceID   string
	TemplateID  string
	PublicKey   string
	AccessToken string
	client      *resty.Client
}

func NewRelayMailer(url, serviceID, templateID, publicKey, accessToken string) *RelayMailer {
	return &RelayMailer{
		URL:         url,
		ServiceID:   serviceID,
		TemplateID:  templateID,
		PublicKey:   publicKey,
		AccessToken: accessToken,
		client:      resty.New().SetTimeout(15 * time.Second),
	}
}

func (m *RelayMailer) Send(ctx context.Context, msg EmailMessage) error {
	params := map[string]any{
		"to_email": msg.To,
		"subject":  msg.Subject,
		"kind":     msg.Template,
	}
	for k, v := range msg.Data {
		params[k] = v
	}

	body := map[string]any{
		"service_id":      m.ServiceID,
		"template_id":     m.TemplateID,
		"user_id":         m.PublicKey,
		"template_params": params,
	}
	if m.AccessToken != "" {
		body["accessToken"] = m.AccessToken
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(m.URL)
	if err != nil {
		return fmt.Errorf("email relay request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return fmt.Errorf("email relay returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}
	return nil
}

// LogMailer writes messages to the logger instead of sending them.
type LogMailer struct {
	Log logrus.FieldLogger
}

func (m *LogMailer) Send(_ context.Context, msg EmailMessage) error {
	m.Log.WithFields(logrus.Fields{
		"to":       msg.To,
		"subject":  msg.Subject,
		"template": msg.Template,
	}).Info("Email (log driver)")
	return nil
}
