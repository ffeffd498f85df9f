// internal/notify/notifier.go

// Package notify sends submission and payment confirmations over email and
// SMS. Delivery is best effort; a failed send never fails the operation that
// triggered it.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"voluntra-backend/internal/common/config"
	"voluntra-backend/internal/common/logger"
	"voluntra-backend/internal/models"
)

// SESService and SNSService mirror the client wrappers so tests can fake
// delivery.
type SESService interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

type Notifier struct {
	cfg       config.NotificationConfig
	sesClient SESService
	snsClient SNSService
	logger    logger.Logger
}

func NewNotifier(cfg config.NotificationConfig, sesClient SESService, snsClient SNSService, log logger.Logger) *Notifier {
	return &Notifier{
		cfg:       cfg,
		sesClient: sesClient,
		snsClient: snsClient,
		logger:    log.WithFields(map[string]interface{}{"component": "notify"}),
	}
}

// ApplicationSubmitted confirms a successful submission to the traveler.
func (n *Notifier) ApplicationSubmitted(ctx context.Context, identity models.Identity, record models.ApplicationRecord) {
	subject := "Your volunteer application was received"
	body := fmt.Sprintf(
		"Hi %s,\n\nWe received your application for program %s (%d weeks, starting %s). "+
			"Your reference number is %s.\n\nNext step: pay the setup fee from your dashboard.",
		record.PersonalInfo.FirstName, record.ProgramID, record.DurationWeeks, record.TargetStartDate, record.ID,
	)
	n.send(ctx, identity.Email, record.PersonalInfo.Phone, subject, body, false)
}

// PaymentConfirmed tells the traveler their setup fee cleared. Payment
// messages also go to SMS when a phone number is on file.
func (n *Notifier) PaymentConfirmed(ctx context.Context, email, phone, applicationID string) {
	subject := "Setup fee payment confirmed"
	body := fmt.Sprintf("Your setup fee for application %s has been received. You are all set.", applicationID)
	n.send(ctx, email, phone, subject, body, true)
}

func (n *Notifier) send(ctx context.Context, email, phone, subject, body string, highPriority bool) {
	if n.cfg.Email.Enabled && email != "" {
		if err := n.sendEmail(ctx, email, subject, body); err != nil {
			n.logger.Error("email send failed", map[string]interface{}{
				"error": err,
				"email": email,
			})
		}
	}

	if n.cfg.SMS.Enabled && phone != "" && highPriority {
		if err := n.sendSMS(ctx, phone, body); err != nil {
			n.logger.Error("SMS send failed", map[string]interface{}{
				"error": err,
				"phone": phone,
			})
		}
	}
}

func (n *Notifier) sendEmail(ctx context.Context, to, subject, body string) error {
	_, err := n.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
		Source: aws.String(n.cfg.Email.FromEmail),
	})
	return err
}

func (n *Notifier) sendSMS(ctx context.Context, to, message string) error {
	_, err := n.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	})
	return err
}
