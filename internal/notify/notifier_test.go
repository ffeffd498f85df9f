// internal/notify/notifier_test.go
package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voluntra-backend/internal/common/config"
	"voluntra-backend/internal/common/logger"
	"voluntra-backend/internal/models"
)

type mockSES struct {
	inputs []*ses.SendEmailInput
	fail   error
}

func (m *mockSES) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	m.inputs = append(m.inputs, input)
	return &ses.SendEmailOutput{}, nil
}

type mockSNS struct {
	inputs []*sns.PublishInput
}

func (m *mockSNS) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, input)
	return &sns.PublishOutput{}, nil
}

func notifyConfig(email, sms bool) config.NotificationConfig {
	var cfg config.NotificationConfig
	cfg.Email.Enabled = email
	cfg.Email.FromEmail = "noreply@example.org"
	cfg.SMS.Enabled = sms
	return cfg
}

func testRecord() models.ApplicationRecord {
	return models.ApplicationRecord{
		ID:              "app-123",
		ProgramID:       "ghana-teaching",
		DurationWeeks:   4,
		TargetStartDate: "2026-11-02",
		PersonalInfo: models.PersonalInfoSnapshot{
			FirstName: "Amara",
			Phone:     "+233201234567",
		},
	}
}

func TestApplicationSubmittedSendsEmail(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	n := NewNotifier(notifyConfig(true, true), sesMock, snsMock, logger.NewTestLogger(t))

	n.ApplicationSubmitted(context.Background(), models.Identity{UID: "uid-42", Email: "amara@example.org"}, testRecord())

	require.Len(t, sesMock.inputs, 1)
	input := sesMock.inputs[0]
	assert.Equal(t, []string{"amara@example.org"}, input.Destination.ToAddresses)
	assert.Equal(t, "noreply@example.org", *input.Source)
	assert.Contains(t, *input.Message.Body.Text.Data, "app-123")
	assert.Contains(t, *input.Message.Body.Text.Data, "ghana-teaching")

	// Submission confirmations are not high priority, so no SMS.
	assert.Empty(t, snsMock.inputs)
}

func TestPaymentConfirmedSendsEmailAndSMS(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	n := NewNotifier(notifyConfig(true, true), sesMock, snsMock, logger.NewTestLogger(t))

	n.PaymentConfirmed(context.Background(), "amara@example.org", "+233201234567", "app-123")

	require.Len(t, sesMock.inputs, 1)
	require.Len(t, snsMock.inputs, 1)
	assert.Equal(t, "+233201234567", *snsMock.inputs[0].PhoneNumber)
	assert.Contains(t, *snsMock.inputs[0].Message, "app-123")
}

func TestNotifierRespectsChannelToggles(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	n := NewNotifier(notifyConfig(false, false), sesMock, snsMock, logger.NewTestLogger(t))

	n.PaymentConfirmed(context.Background(), "amara@example.org", "+233201234567", "app-123")
	assert.Empty(t, sesMock.inputs)
	assert.Empty(t, snsMock.inputs)
}

func TestNotifierSkipsEmptyRecipients(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	n := NewNotifier(notifyConfig(true, true), sesMock, snsMock, logger.NewTestLogger(t))

	n.PaymentConfirmed(context.Background(), "", "", "app-123")
	assert.Empty(t, sesMock.inputs)
	assert.Empty(t, snsMock.inputs)
}

func TestNotifierDeliveryFailureIsSwallowed(t *testing.T) {
	sesMock := &mockSES{fail: errors.New("ses: throttled")}
	n := NewNotifier(notifyConfig(true, false), sesMock, &mockSNS{}, logger.NewTestLogger(t))

	// Must not panic or propagate anything.
	n.ApplicationSubmitted(context.Background(), models.Identity{Email: "amara@example.org"}, testRecord())
}
