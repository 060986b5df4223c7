// internal/workers/recommendation/build-recommendation/handler.go
package buildrecommendation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	commonhttp "crs-workers/internal/common/http"
	"crs-workers/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "build-recommendation"
)

var (
	ErrRecommendationFailed = errors.New("RECOMMENDATION_FAILED")
	ErrGenAITimeout         = errors.New("GENAI_TIMEOUT")
)

type Handler struct {
	config *Config
	client *commonhttp.Client
	logger logger.Logger
}

// NewHandler wraps the given HTTP client; a nil client relies on the
// per-job context for timeouts.
func NewHandler(config *Config, httpClient *http.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		client: commonhttp.Wrap(httpClient),
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
		retries := int32(0)
		if errors.Is(err, ErrGenAITimeout) {
			retries = 1
		}
		h.failJob(client, job, "RECOMMENDATION_FAILED", err.Error(), retries)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Breakdown.RulesVersion == "" && input.Breakdown.Total == 0 {
		return nil, fmt.Errorf("%w: breakdown is required", ErrRecommendationFailed)
	}

	hints := buildHints(input.Profile, input.Breakdown)

	output := &Output{
		SubmissionID:    input.SubmissionID,
		Recommendations: hints,
		NarrativeSource: NarrativeSourceNone,
	}

	// The narrative is best-effort: an unreachable GenAI service
	// degrades to hints only, never fails the job.
	if h.config.GenAIBaseURL != "" {
		narrative, err := h.fetchNarrative(ctx, input, hints)
		if err != nil {
			h.logger.Warn("narrative generation unavailable", map[string]interface{}{
				"submissionId": input.SubmissionID,
				"error":        err,
			})
		} else if narrative != "" {
			output.Narrative = narrative
			output.NarrativeSource = NarrativeSourceGenAI
		}
	}

	h.logger.Info("recommendations built", map[string]interface{}{
		"submissionId":    input.SubmissionID,
		"hintCount":       len(hints),
		"narrativeSource": output.NarrativeSource,
	})

	return output, nil
}

func (h *Handler) fetchNarrative(ctx context.Context, input *Input, hints interface{}) (string, error) {
	requestBody := map[string]interface{}{
		"prompt": "Summarize this immigration score assessment and how to improve it.",
		"context": map[string]interface{}{
			"summary":         summarize(input.Breakdown),
			"recommendations": hints,
		},
	}

	headers := map[string]string{}
	if h.config.GenAIAPIKey != "" {
		headers["Authorization"] = "Bearer " + h.config.GenAIAPIKey
	}

	var lastErr error
	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ErrGenAITimeout
			}
		}

		resp, err := h.client.PostJSON(ctx,
			h.config.GenAIBaseURL+"/api/ai/generate", headers, requestBody)
		if err != nil {
			if ctx.Err() != nil {
				return "", ErrGenAITimeout
			}
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}

		var apiResponse struct {
			Text string `json:"text"`
		}
		err = json.NewDecoder(resp.Body).Decode(&apiResponse)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("decode error: %v", err)
			continue
		}

		return strings.TrimSpace(apiResponse.Text), nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		return "", ErrGenAITimeout
	}
	return "", fmt.Errorf("%w: %v", ErrRecommendationFailed, lastErr)
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

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string, retries int32) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
		"retries":      retries,
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
