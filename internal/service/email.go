package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mmnstore/mmnstore/internal/model"
	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client    *resend.Client
	fromEmail string
	appName   string
	isDev     bool
}

func NewEmailService(apiKey, fromEmail, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		appName:   appName,
		isDev:     isDev,
	}
}

// SendReviewResultEmail tells a developer their submission was approved or
// rejected. In development the email is logged instead of sent.
func (s *EmailService) SendReviewResultEmail(email, appName, status string) error {
	subject, body := reviewResultEmailTemplate(s.appName, appName, status)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "review_result", "to", email, "subject", subject)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{email},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(context.Background(), params)
	if err == nil {
		slog.Info("email sent", "type", "review_result", "to", email)
	}
	return err
}

func reviewResultEmailTemplate(storeName, appName, status string) (string, string) {
	if status == model.StatusApproved {
		subject := fmt.Sprintf("%s: %q has been approved", storeName, appName)
		body := fmt.Sprintf(
			"Good news! Your app %q has been approved and is now live on %s.\n\n"+
				"Thanks for publishing with us.\n", appName, storeName)
		return subject, body
	}

	subject := fmt.Sprintf("%s: %q was not approved", storeName, appName)
	body := fmt.Sprintf(
		"Your app %q was reviewed and has not been approved for %s.\n\n"+
			"You can update your submission from your developer dashboard; "+
			"updated apps are reviewed again.\n", appName, storeName)
	return subject, body
}
