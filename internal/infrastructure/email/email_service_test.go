package email

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*EmailService, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	svc, err := NewEmailService(&EmailConfig{
		FromEmail:   "noreply@example.com",
		FromName:    "Bookshelf",
		CompanyName: "Bookshelf",
		BaseURL:     "https://books.example.com",
		TokenTTL:    2 * time.Hour,
	}, logger)
	require.NoError(t, err)
	return svc, hook
}

func TestVerificationURL_EscapesToken(t *testing.T) {
	svc, _ := newTestService(t)
	require.Equal(t, "https://books.example.com/api/v1/auth/verify-email?token=a%2Bb%26c", svc.VerificationURL("a+b&c"))
}

func TestRenderVerificationTemplate(t *testing.T) {
	svc, _ := newTestService(t)
	html, err := svc.render("verification.html", VerificationEmailData{
		CompanyName:     "Bookshelf",
		Email:           "reader@example.com",
		VerificationURL: svc.VerificationURL("abc123"),
		ExpiresIn:       "2h0m0s",
	})
	require.NoError(t, err)
	require.Contains(t, html, "https://books.example.com/api/v1/auth/verify-email?token=abc123")
	require.Contains(t, html, "reader@example.com")
	require.Contains(t, html, "2h0m0s")
}

func TestSendWithoutAPIKeyOnlyLogs(t *testing.T) {
	svc, hook := newTestService(t)
	require.NoError(t, svc.SendVerificationEmail(context.Background(), "reader@example.com", "abc123"))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.WarnLevel, entry.Level)
	require.Equal(t, "reader@example.com", entry.Data["to"])
}
