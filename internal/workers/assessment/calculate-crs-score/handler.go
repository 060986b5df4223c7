// internal/workers/assessment/calculate-crs-score/handler.go
package calculatecrsscore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"crs-workers/internal/common/logger"
	"crs-workers/internal/common/metrics"
	"crs-workers/internal/crs/clb"
	"crs-workers/internal/crs/engine"
	"crs-workers/internal/crs/rules"
	"crs-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "calculate-crs-score"
)

var (
	ErrInvalidProfile       = errors.New("INVALID_PROFILE")
	ErrInvalidLanguageScore = errors.New("INVALID_LANGUAGE_SCORE")
	ErrRuleBucketUnmapped   = errors.New("RULE_BUCKET_UNMAPPED")
)

type Handler struct {
	config *Config
	engine *engine.Engine
	redis  *redis.Client
	logger logger.Logger
}

// NewHandler takes the engine already bound to an immutable rule table;
// redis may be nil, which disables the breakdown cache.
func NewHandler(config *Config, eng *engine.Engine, redisClient *redis.Client, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		engine: eng,
		redis:  redisClient,
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
		// All scoring failures are business errors: a retry cannot fix
		// a malformed profile or an out-of-range score.
		h.failJob(client, job, h.mapErrorToCode(err), err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	cacheKey := h.cacheKey(input)

	if h.redis != nil && cacheKey != "" {
		if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached models.ScoreBreakdown
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				h.logger.Info("breakdown served from cache", map[string]interface{}{
					"submissionId": input.SubmissionID,
					"total":        cached.Total,
				})
				metrics.ScoreEvaluations.WithLabelValues("cache_hit").Inc()
				return &Output{
					SubmissionID: input.SubmissionID,
					Breakdown:    cached,
					Total:        cached.Total,
					RulesVersion: cached.RulesVersion,
					FromCache:    true,
				}, nil
			}
		}
	}

	breakdown, err := h.engine.Evaluate(input.Profile)
	if err != nil {
		metrics.ScoreEvaluations.WithLabelValues("error").Inc()
		return nil, h.wrapEngineError(err)
	}

	metrics.ScoreEvaluations.WithLabelValues("success").Inc()
	metrics.ScoreDistribution.Observe(float64(breakdown.Total))

	if h.redis != nil && cacheKey != "" {
		raw, err := json.Marshal(breakdown)
		if err == nil {
			if err := h.redis.Set(ctx, cacheKey, raw, h.config.CacheTTL).Err(); err != nil {
				h.logger.Warn("breakdown cache write failed", map[string]interface{}{
					"submissionId": input.SubmissionID,
					"error":        err,
				})
			}
		}
	}

	h.logger.Info("score evaluated", map[string]interface{}{
		"submissionId": input.SubmissionID,
		"total":        breakdown.Total,
		"withSpouse":   breakdown.WithSpouse,
		"rulesVersion": breakdown.RulesVersion,
	})

	return &Output{
		SubmissionID: input.SubmissionID,
		Breakdown:    *breakdown,
		Total:        breakdown.Total,
		RulesVersion: breakdown.RulesVersion,
		FromCache:    false,
	}, nil
}

// cacheKey hashes the profile content so resubmissions of identical
// answers reuse the evaluated breakdown. Keyed on content, not
// submission ID, and on the loaded rule version so a table swap never
// serves stale points.
func (h *Handler) cacheKey(input *Input) string {
	raw, err := json.Marshal(input.Profile)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return "crs:breakdown:" + h.engine.RulesVersion() + ":" + hex.EncodeToString(sum[:])
}

func (h *Handler) wrapEngineError(err error) error {
	var scoreErr *clb.InvalidScoreError
	var bucketErr *rules.UnmappedBucketError
	var profileErr *models.InvalidProfileError

	switch {
	case errors.As(err, &scoreErr):
		return fmt.Errorf("%w: %v", ErrInvalidLanguageScore, err)
	case errors.As(err, &bucketErr):
		return fmt.Errorf("%w: %v", ErrRuleBucketUnmapped, err)
	case errors.As(err, &profileErr):
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return err
}

func (h *Handler) mapErrorToCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidLanguageScore):
		return "INVALID_LANGUAGE_SCORE"
	case errors.Is(err, ErrRuleBucketUnmapped):
		return "RULE_BUCKET_UNMAPPED"
	case errors.Is(err, ErrInvalidProfile):
		return "INVALID_PROFILE"
	}
	return "UNKNOWN_ERROR"
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
