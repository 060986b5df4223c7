// internal/workers/data-access/index-score-history/handler.go
package indexscorehistory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crs-workers/internal/common/logger"
	"crs-workers/internal/workers/data-access/index-score-history/queries"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	TaskType = "index-score-history"
)

var (
	ErrHistoryIndexFailed = errors.New("HISTORY_INDEX_FAILED")
	ErrSearchQueryFailed  = errors.New("SEARCH_QUERY_FAILED")
	ErrSearchTimeout      = errors.New("SEARCH_TIMEOUT")
	ErrInvalidOperation   = errors.New("INVALID_OPERATION")
)

type Handler struct {
	config *Config
	client *elasticsearch.Client
	logger logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: client,
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
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err), 0)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		errorCode := h.mapErrorToCode(err)
		retries := h.getRetryCount(err)
		h.failJob(client, job, errorCode, err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	switch input.Operation {
	case OperationIndex:
		return h.indexBreakdown(ctx, input)
	case OperationQuery:
		return h.queryHistory(ctx, input)
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidOperation, input.Operation)
}

func (h *Handler) indexBreakdown(ctx context.Context, input *Input) (*Output, error) {
	if input.AssessmentID == "" {
		return nil, fmt.Errorf("%w: assessmentId is required", ErrHistoryIndexFailed)
	}
	if input.Breakdown == nil {
		return nil, fmt.Errorf("%w: breakdown is required", ErrHistoryIndexFailed)
	}

	doc := map[string]interface{}{
		"assessment_id": input.AssessmentID,
		"submission_id": input.SubmissionID,
		"user_id":       input.UserID,
		"total":         input.Breakdown.Total,
		"with_spouse":   input.Breakdown.WithSpouse,
		"rules_version": input.Breakdown.RulesVersion,
		"breakdown":     input.Breakdown,
		"created_at":    time.Now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal document: %v", ErrHistoryIndexFailed, err)
	}

	req := esapi.IndexRequest{
		Index:      h.config.IndexName,
		DocumentID: input.AssessmentID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}

	res, err := req.Do(ctx, h.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrSearchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrHistoryIndexFailed, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrHistoryIndexFailed, res.Status())
	}

	h.logger.Info("breakdown indexed", map[string]interface{}{
		"assessmentId": input.AssessmentID,
		"userId":       input.UserID,
		"total":        input.Breakdown.Total,
	})

	return &Output{
		Indexed:    true,
		DocumentID: input.AssessmentID,
	}, nil
}

func (h *Handler) queryHistory(ctx context.Context, input *Input) (*Output, error) {
	hq := queries.HistoryQuery{
		Index:     h.config.IndexName,
		QueryType: input.QueryType,
		UserID:    input.UserID,
		Filters:   input.Filters,
	}
	hq.Pagination.From = input.Pagination.From
	hq.Pagination.Size = input.Pagination.Size
	if hq.Filters == nil {
		hq.Filters = map[string]interface{}{}
	}

	result, err := queries.Execute(ctx, h.client, hq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, ErrSearchTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrSearchQueryFailed, err)
	}

	return &Output{
		Data:      result.Data,
		TotalHits: result.TotalHits,
		Took:      result.Took,
	}, nil
}

func (h *Handler) mapErrorToCode(err error) string {
	switch {
	case errors.Is(err, ErrSearchTimeout):
		return "SEARCH_TIMEOUT"
	case errors.Is(err, ErrHistoryIndexFailed):
		return "HISTORY_INDEX_FAILED"
	case errors.Is(err, ErrInvalidOperation):
		return "INVALID_QUERY_TYPE"
	case errors.Is(err, ErrSearchQueryFailed):
		return "SEARCH_QUERY_FAILED"
	}
	return "UNKNOWN_ERROR"
}

func (h *Handler) getRetryCount(err error) int32 {
	switch {
	case errors.Is(err, ErrSearchTimeout):
		return 2
	case errors.Is(err, ErrHistoryIndexFailed), errors.Is(err, ErrSearchQueryFailed):
		return 3
	}
	return 0
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
