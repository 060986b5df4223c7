// internal/workers/assessment/create-assessment-record/handler.go
package createassessmentrecord

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "crs-workers/internal/common/errors"
	"crs-workers/internal/common/logger"
	"crs-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "create-assessment-record"
)

var (
	ErrDatabaseInsertFailed = errors.New("DATABASE_INSERT_FAILED")
	ErrDuplicateAssessment  = errors.New("DUPLICATE_ASSESSMENT")
)

type Handler struct {
	config *Config
	db     *sql.DB
	logger logger.Logger
	errors *apperrors.ErrorHandler
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config: config,
		db:     db,
		logger: scoped,
		errors: apperrors.NewErrorHandler(scoped),
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
		// Insert failures are retried, duplicates are thrown as BPMN
		// errors; the error handler drives the split per error code.
		h.errors.HandleJobError(context.Background(), client, job, h.standardize(err, &input))
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	// One persisted assessment per submission
	var exists bool
	err := h.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM assessments
			WHERE submission_id = $1
		)`, input.SubmissionID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: duplicate check failed: %v", ErrDatabaseInsertFailed, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: assessment already recorded for submission %s",
			ErrDuplicateAssessment, input.SubmissionID)
	}

	record := models.Assessment{
		ID:           uuid.New().String(),
		SubmissionID: input.SubmissionID,
		UserID:       input.UserID,
		Profile:      input.Profile,
		Breakdown:    input.Breakdown,
		Total:        input.Total,
		RulesVersion: input.RulesVersion,
		Status:       models.AssessmentStatusScored,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	record.UpdatedAt = record.CreatedAt

	profileJSON, err := json.Marshal(record.Profile)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal profile: %v", ErrDatabaseInsertFailed, err)
	}
	breakdownJSON, err := json.Marshal(record.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal breakdown: %v", ErrDatabaseInsertFailed, err)
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO assessments (
			id, submission_id, user_id, profile, breakdown,
			total, rules_version, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		record.ID,
		record.SubmissionID,
		record.UserID,
		profileJSON,
		breakdownJSON,
		record.Total,
		record.RulesVersion,
		record.Status,
		record.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: insert failed: %v", ErrDatabaseInsertFailed, err)
	}

	// Audit row is non-critical, log and continue on failure
	auditDetailsJSON, err := json.Marshal(map[string]interface{}{
		"submissionId": record.SubmissionID,
		"userId":       record.UserID,
		"total":        record.Total,
		"rulesVersion": record.RulesVersion,
	})
	if err != nil {
		h.logger.Warn("failed to marshal audit log details", map[string]interface{}{
			"error": err,
		})
		auditDetailsJSON = []byte("{}")
	}

	_, err = h.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"assessment_created",
		"assessment",
		record.ID,
		auditDetailsJSON,
		record.CreatedAt,
	)
	if err != nil {
		h.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":        err,
			"assessmentId": record.ID,
		})
	}

	h.logger.Info("assessment record created", map[string]interface{}{
		"assessmentId": record.ID,
		"submissionId": record.SubmissionID,
		"userId":       record.UserID,
		"total":        record.Total,
	})

	return &Output{
		AssessmentID:     record.ID,
		AssessmentStatus: record.Status,
		CreatedAt:        record.CreatedAt,
	}, nil
}

// standardize maps the package sentinels onto standardized error codes.
func (h *Handler) standardize(err error, input *Input) error {
	switch {
	case errors.Is(err, ErrDuplicateAssessment):
		return apperrors.NewDuplicateAssessmentError(input.SubmissionID)
	case errors.Is(err, ErrDatabaseInsertFailed):
		return apperrors.NewDatabaseInsertFailedError(err)
	}
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
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
