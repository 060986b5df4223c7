// internal/workers/communication/send-result-notification/handler.go
package sendresultnotification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	commonaws "crs-workers/internal/common/aws"
	"crs-workers/internal/common/logger"
	"crs-workers/internal/common/validation"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-result-notification"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
	ErrInvalidRecipient       = errors.New("INVALID_RECIPIENT")
)

// Interfaces over the AWS clients for mocking
type SESService interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSService interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type Handler struct {
	config    *Config
	logger    logger.Logger
	sesClient SESService
	snsClient SNSService
}

func NewHandler(config *Config, log logger.Logger) (*Handler, error) {
	ctx := context.Background()
	sesClient, err := commonaws.NewSESClient(ctx, config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("create SES client: %w", err)
	}
	snsClient, err := commonaws.NewSNSClient(ctx, config.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("create SNS client: %w", err)
	}

	return &Handler{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient: sesClient,
		snsClient: snsClient,
	}, nil
}

// NewHandlerWithClients injects pre-built AWS clients, used by tests.
func NewHandlerWithClients(config *Config, sesClient SESService, snsClient SNSService, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		sesClient: sesClient,
		snsClient: snsClient,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := "NOTIFICATION_SEND_FAILED"
		retries := int32(0)
		if errors.Is(err, ErrNotificationSendFailed) {
			retries = 3
		} else if errors.Is(err, ErrInvalidRecipient) {
			errorCode = "INVALID_RECIPIENT"
		}
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if !validation.ValidateEmail(input.RecipientEmail) {
		return nil, fmt.Errorf("%w: invalid email %q", ErrInvalidRecipient, input.RecipientEmail)
	}
	if input.RecipientPhone != "" && !validation.ValidatePhone(input.RecipientPhone) {
		return nil, fmt.Errorf("%w: invalid phone %q", ErrInvalidRecipient, input.RecipientPhone)
	}

	notificationID := uuid.New().String()
	sentAt := time.Now().UTC().Format(time.RFC3339)

	emailSent := false
	smsSent := false

	if h.config.EmailEnabled {
		if err := h.sendEmail(ctx, input); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error": err,
				"email": input.RecipientEmail,
			})
			return nil, fmt.Errorf("%w: email: %v", ErrNotificationSendFailed, err)
		}
		emailSent = true
	}

	// SMS only above the configured score threshold, draws mirror the
	// express-entry cutoff announcements
	if h.config.SMSEnabled && input.RecipientPhone != "" && input.Total >= h.config.ScoreThreshold {
		if err := h.sendSMS(ctx, input); err != nil {
			// Email already went out, degrade instead of failing the job
			h.logger.Warn("SMS send failed", map[string]interface{}{
				"error": err,
				"phone": input.RecipientPhone,
			})
		} else {
			smsSent = true
		}
	}

	status := StatusDisabled
	if emailSent || smsSent {
		status = StatusSent
	}

	h.logger.Info("result notification processed", map[string]interface{}{
		"notificationId": notificationID,
		"submissionId":   input.SubmissionID,
		"status":         status,
		"emailSent":      emailSent,
		"smsSent":        smsSent,
	})

	return &Output{
		NotificationID: notificationID,
		Status:         status,
		EmailSent:      emailSent,
		SMSSent:        smsSent,
		SentAt:         sentAt,
	}, nil
}

func (h *Handler) sendEmail(ctx context.Context, input *Input) error {
	_, err := h.sesClient.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(h.config.FromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{input.RecipientEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(buildSubject(input)),
			},
			Body: &types.Body{
				Text: &types.Content{
					Data: aws.String(buildBody(input)),
				},
			},
		},
	})
	return err
}

func (h *Handler) sendSMS(ctx context.Context, input *Input) error {
	_, err := h.snsClient.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(input.RecipientPhone),
		Message:     aws.String(buildSMSBody(input)),
	})
	return err
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
	})

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
