// internal/workers/assessment/validate-assessment-data/handler.go
package validateassessmentdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"crs-workers/internal/common/logger"
	"crs-workers/internal/common/validation"
	"crs-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "validate-assessment-data"
)

var (
	ErrAssessmentValidationFailed = errors.New("ASSESSMENT_VALIDATION_FAILED")
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, "ASSESSMENT_VALIDATION_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(_ context.Context, input *Input) (*Output, error) {
	if input.AssessmentData == nil {
		return nil, fmt.Errorf("%w: assessmentData is required", ErrAssessmentValidationFailed)
	}

	var validationErrors []ValidationError

	result := validation.ValidateInput(input.AssessmentData, GetInputSchema())
	for _, e := range result.Errors {
		validationErrors = append(validationErrors, ValidationError{
			Field:   e.Field,
			Code:    e.Code,
			Message: e.Message,
		})
	}

	// Decode and run the profile invariants only on schema-clean payloads,
	// otherwise type errors surface twice.
	var profile models.ApplicantProfile
	if len(validationErrors) == 0 {
		raw, err := json.Marshal(input.AssessmentData)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal assessment data: %v", ErrAssessmentValidationFailed, err)
		}
		if err := json.Unmarshal(raw, &profile); err != nil {
			validationErrors = append(validationErrors, ValidationError{
				Field:   "assessmentData",
				Code:    "INVALID_TYPE",
				Message: err.Error(),
			})
		} else {
			validationErrors = append(validationErrors, h.checkProfile(profile)...)
		}
	}

	isValid := len(validationErrors) == 0
	h.logger.Info("validation completed", map[string]interface{}{
		"submissionId": input.SubmissionID,
		"isValid":      isValid,
		"errorCount":   len(validationErrors),
	})

	if !isValid {
		return nil, fmt.Errorf("%w: %d validation errors", ErrAssessmentValidationFailed, len(validationErrors))
	}

	// Re-encode the typed profile so downstream workers receive the
	// normalized shape, not the raw questionnaire payload.
	normalized, err := json.Marshal(profile)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal profile: %v", ErrAssessmentValidationFailed, err)
	}
	var profileMap map[string]interface{}
	if err := json.Unmarshal(normalized, &profileMap); err != nil {
		return nil, fmt.Errorf("%w: normalize profile: %v", ErrAssessmentValidationFailed, err)
	}

	return &Output{
		IsValid:          true,
		Profile:          profileMap,
		ValidationErrors: []ValidationError{},
	}, nil
}

// checkProfile runs the typed invariants the JSON schema cannot express.
func (h *Handler) checkProfile(profile models.ApplicantProfile) []ValidationError {
	var errs []ValidationError

	if err := profile.Validate(); err != nil {
		var profileErr *models.InvalidProfileError
		if errors.As(err, &profileErr) {
			errs = append(errs, ValidationError{
				Field:   profileErr.Field,
				Code:    "INVALID_PROFILE",
				Message: profileErr.Reason,
			})
		} else {
			errs = append(errs, ValidationError{
				Field:   "profile",
				Code:    "INVALID_PROFILE",
				Message: err.Error(),
			})
		}
	}

	return errs
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
		h.logger.Error("failed to complete job", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})

	_, _ = client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
