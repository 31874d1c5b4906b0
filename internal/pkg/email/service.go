// internal/pkg/email/service.go
package email

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/wishlist-backend/internal/config"
)

// EmailService handles outbound email. Delivery is strictly best-effort: the
// operations that trigger emails must never fail because a provider is down
// or unconfigured, so callers run SendEmail fire-and-forget and only log.
type EmailService struct {
	config *config.Config
	client *http.Client
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		config: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SendEmail sends an email using the configured provider
func (s *EmailService) SendEmail(ctx context.Context, email *Email) error {
	switch s.config.External.Email.Provider {
	case "smtp":
		return s.sendSMTPEmail(email)
	case "resend":
		return s.sendResendEmail(ctx, email)
	default:
		return fmt.Errorf("unsupported email provider: %s", s.config.External.Email.Provider)
	}
}

// SendPasswordResetEmail sends a password reset link. Returns true when the
// email was actually handed to a provider; false when sending was skipped
// because no provider is configured.
func (s *EmailService) SendPasswordResetEmail(ctx context.Context, toEmail, resetToken string) bool {
	if s.config.External.Email.APIKey == "" && s.config.External.Email.SMTPHost == "" {
		logrus.WithField("to", toEmail).Info("email provider not configured, skipping password reset email")
		return false
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.config.App.BaseURL, resetToken)
	msg := &Email{
		To:      []string{toEmail},
		Subject: fmt.Sprintf("%s: password reset", s.config.External.Email.FromName),
		HTMLContent: fmt.Sprintf(
			`<p>Someone requested a password reset for this address.</p>`+
				`<p><a href="%s">Reset your password</a></p>`+
				`<p>The link expires in %s. If this wasn't you, ignore this email.</p>`,
			resetLink, s.config.Security.PasswordResetTTL,
		),
		TextContent: fmt.Sprintf("Reset your password: %s", resetLink),
		Type:        EmailTypePasswordReset,
	}

	if err := s.SendEmail(ctx, msg); err != nil {
		logrus.WithField("to", toEmail).WithError(err).Warn("failed to send password reset email")
		return false
	}
	return true
}
