package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/bookshelf/internal/core/ports"
)

//go:embed templates/*.html
var templateFS embed.FS

// EmailConfig holds email service configuration
type EmailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
	CompanyName    string
	BaseURL        string
	TokenTTL       time.Duration
}

// EmailService sends account mail through SendGrid. Without an API key the
// message is logged instead, which keeps local setups working.
type EmailService struct {
	config    *EmailConfig
	logger    *logrus.Logger
	client    *sendgrid.Client
	templates *template.Template
}

func NewEmailService(config *EmailConfig, logger *logrus.Logger) (*EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to load email templates: %w", err)
	}
	var client *sendgrid.Client
	if config.SendGridAPIKey != "" {
		client = sendgrid.NewSendClient(config.SendGridAPIKey)
	}
	return &EmailService{
		config:    config,
		logger:    logger,
		client:    client,
		templates: tmpl,
	}, nil
}

var _ ports.EmailService = (*EmailService)(nil)

// VerificationEmailData holds data for the verification template
type VerificationEmailData struct {
	CompanyName     string
	Email           string
	VerificationURL string
	ExpiresIn       string
}

// VerificationURL is the link mailed to new accounts.
func (e *EmailService) VerificationURL(token string) string {
	return fmt.Sprintf("%s/api/v1/auth/verify-email?token=%s", e.config.BaseURL, url.QueryEscape(token))
}

func (e *EmailService) SendVerificationEmail(ctx context.Context, email, token string) error {
	ttl := e.config.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	html, err := e.render("verification.html", VerificationEmailData{
		CompanyName:     e.config.CompanyName,
		Email:           email,
		VerificationURL: e.VerificationURL(token),
		ExpiresIn:       ttl.String(),
	})
	if err != nil {
		return fmt.Errorf("failed to render verification email template: %w", err)
	}
	subject := fmt.Sprintf("Verify Your Email Address - %s", e.config.CompanyName)
	return e.send(ctx, email, subject, html)
}

func (e *EmailService) render(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *EmailService) send(ctx context.Context, to, subject, html string) error {
	if e.client == nil {
		if e.logger != nil {
			e.logger.WithFields(logrus.Fields{"to": to, "subject": subject}).Warn("email: no SendGrid key configured, message not sent")
		}
		return nil
	}

	from := mail.NewEmail(e.config.FromName, e.config.FromEmail)
	message := mail.NewSingleEmail(from, subject, mail.NewEmail("", to), "", html)

	response, err := e.client.SendWithContext(ctx, message)
	if err != nil {
		if e.logger != nil {
			e.logger.WithFields(logrus.Fields{"to": to, "subject": subject}).WithError(err).Error("Failed to send email")
		}
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email: sendgrid status %d", response.StatusCode)
	}

	if e.logger != nil {
		e.logger.WithFields(logrus.Fields{
			"to":          to,
			"subject":     subject,
			"status_code": response.StatusCode,
		}).Info("Email sent successfully")
	}
	return nil
}
