// internal/workers/communication/send-result-notification/handler_test.go
package sendresultnotification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"crs-workers/internal/common/logger"
	"crs-workers/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSES struct {
	inputs []*ses.SendEmailInput
	err    error
}

func (m *mockSES) SendEmail(_ context.Context, params *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &ses.SendEmailOutput{}, nil
}

type mockSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (m *mockSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &sns.PublishOutput{}, nil
}

func testInput() *Input {
	return &Input{
		SubmissionID:   "sub-001",
		AssessmentID:   "assess-001",
		RecipientEmail: "applicant@example.com",
		RecipientPhone: "+15550001234",
		RecipientName:  "Jane",
		Breakdown: models.ScoreBreakdown{
			Core:            models.SectionScore{Subtotal: 380, Cap: 500},
			Transferability: models.SectionScore{Subtotal: 50, Cap: 100},
			Additional:      models.SectionScore{Subtotal: 15},
			Total:           445,
			RulesVersion:    "2026.1",
		},
		Total: 445,
	}
}

func newTestHandler(t *testing.T, sesMock SESService, snsMock SNSService) *Handler {
	config := LoadConfig()
	config.FromEmail = "noreply@example.com"
	return NewHandlerWithClients(config, sesMock, snsMock, logger.NewTestLogger(t))
}

func TestExecute_EmailOnlyBelowThreshold(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	handler := newTestHandler(t, sesMock, snsMock)

	output, err := handler.Execute(context.Background(), testInput())

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.True(t, output.EmailSent)
	assert.False(t, output.SMSSent)
	assert.NotEmpty(t, output.NotificationID)

	require.Len(t, sesMock.inputs, 1)
	assert.Empty(t, snsMock.inputs)

	sent := sesMock.inputs[0]
	assert.Equal(t, "noreply@example.com", *sent.Source)
	assert.Equal(t, []string{"applicant@example.com"}, sent.Destination.ToAddresses)
	assert.Contains(t, *sent.Message.Subject.Data, "445")

	body := *sent.Message.Body.Text.Data
	assert.Contains(t, body, "Hello Jane")
	assert.Contains(t, body, "Total: 445 points")
	assert.Contains(t, body, "Core human capital: 380")
	assert.Contains(t, body, "2026.1")
	assert.Contains(t, body, "assess-001")
}

func TestExecute_SMSAboveThreshold(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	handler := newTestHandler(t, sesMock, snsMock)

	input := testInput()
	input.Total = 624
	input.Breakdown.Total = 624

	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.True(t, output.EmailSent)
	assert.True(t, output.SMSSent)

	require.Len(t, snsMock.inputs, 1)
	assert.Equal(t, "+15550001234", *snsMock.inputs[0].PhoneNumber)
	assert.Contains(t, *snsMock.inputs[0].Message, "624")
}

func TestExecute_SMSSkippedWithoutPhone(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	handler := newTestHandler(t, sesMock, snsMock)

	input := testInput()
	input.Total = 700
	input.RecipientPhone = ""

	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.True(t, output.EmailSent)
	assert.False(t, output.SMSSent)
	assert.Empty(t, snsMock.inputs)
}

func TestExecute_EmailFailureFailsJob(t *testing.T) {
	sesMock := &mockSES{err: errors.New("ses throttled")}
	snsMock := &mockSNS{}
	handler := newTestHandler(t, sesMock, snsMock)

	output, err := handler.Execute(context.Background(), testInput())

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotificationSendFailed))
	assert.Nil(t, output)
}

func TestExecute_SMSFailureIsNonFatal(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{err: errors.New("sns unavailable")}
	handler := newTestHandler(t, sesMock, snsMock)

	input := testInput()
	input.Total = 650

	output, err := handler.Execute(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.True(t, output.EmailSent)
	assert.False(t, output.SMSSent)
}

func TestExecute_InvalidEmailRejected(t *testing.T) {
	handler := newTestHandler(t, &mockSES{}, &mockSNS{})

	input := testInput()
	input.RecipientEmail = "not-an-address"

	output, err := handler.Execute(context.Background(), input)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRecipient))
	assert.Nil(t, output)
}

func TestExecute_DisabledChannels(t *testing.T) {
	sesMock := &mockSES{}
	snsMock := &mockSNS{}
	config := LoadConfig()
	config.EmailEnabled = false
	config.SMSEnabled = false
	handler := NewHandlerWithClients(config, sesMock, snsMock, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), testInput())

	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, output.Status)
	assert.Empty(t, sesMock.inputs)
	assert.Empty(t, snsMock.inputs)
}

func TestBuildBody_SpouseSectionOnlyWhenScored(t *testing.T) {
	input := testInput()

	body := buildBody(input)
	assert.NotContains(t, body, "Spouse factors")

	input.Breakdown.WithSpouse = true
	input.Breakdown.Spouse = models.SectionScore{Subtotal: 32, Cap: 40}
	body = buildBody(input)
	assert.Contains(t, body, "Spouse factors: 32")
}

func TestBuildBody_CapNoted(t *testing.T) {
	input := testInput()
	input.Breakdown.Core = models.SectionScore{Subtotal: 510, Cap: 500, CapApplied: true}

	body := buildBody(input)
	assert.Contains(t, body, "Core human capital: 500 (capped from 510)")
	assert.False(t, strings.Contains(body, "Core human capital: 510"))
}
