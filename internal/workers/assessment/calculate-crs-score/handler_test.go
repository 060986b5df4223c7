// internal/workers/assessment/calculate-crs-score/handler_test.go
package calculatecrsscore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"testing"

	"crs-workers/internal/common/logger"
	"crs-workers/internal/crs/engine"
	"crs-workers/internal/crs/rules"
	"crs-workers/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEngine(t *testing.T) *engine.Engine {
	table, err := rules.Load(rules.DefaultDocument)
	require.NoError(t, err)
	return engine.New(table)
}

func testProfile() models.ApplicantProfile {
	return models.ApplicantProfile{
		Age:            29,
		MaritalStatus:  models.MaritalSingle,
		EducationLevel: models.EducationPhD,
		FirstLanguage: models.LanguageTestResult{
			Test:      models.TestCELPIP,
			Listening: 12, Speaking: 12, Reading: 12, Writing: 12,
		},
		CanadianWorkYears: 0,
		ForeignWorkYears:  0,
	}
}

func breakdownCacheKey(t *testing.T, eng *engine.Engine, profile models.ApplicantProfile) string {
	raw, err := json.Marshal(profile)
	require.NoError(t, err)
	sum := sha256.Sum256(raw)
	return "crs:breakdown:" + eng.RulesVersion() + ":" + hex.EncodeToString(sum[:])
}

func TestExecute_EvaluatesAndCaches(t *testing.T) {
	eng := testEngine(t)
	db, mock := redismock.NewClientMock()
	handler := NewHandler(LoadConfig(), eng, db, logger.NewTestLogger(t))

	profile := testProfile()
	key := breakdownCacheKey(t, eng, profile)

	mock.ExpectGet(key).RedisNil()
	mock.Regexp().ExpectSet(key, `.+`, LoadConfig().CacheTTL).SetVal("OK")

	output, err := handler.Execute(context.Background(), &Input{
		SubmissionID: "sub-100",
		Profile:      profile,
	})

	require.NoError(t, err)
	require.NotNil(t, output)
	assert.False(t, output.FromCache)
	assert.Equal(t, output.Breakdown.Total, output.Total)
	assert.Greater(t, output.Total, 0)
	assert.Equal(t, eng.RulesVersion(), output.RulesVersion)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_CacheHitSkipsEvaluation(t *testing.T) {
	eng := testEngine(t)
	db, mock := redismock.NewClientMock()
	handler := NewHandler(LoadConfig(), eng, db, logger.NewTestLogger(t))

	profile := testProfile()
	key := breakdownCacheKey(t, eng, profile)

	cached := models.ScoreBreakdown{Total: 396, RulesVersion: eng.RulesVersion()}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)

	mock.ExpectGet(key).SetVal(string(raw))

	output, err := handler.Execute(context.Background(), &Input{
		SubmissionID: "sub-101",
		Profile:      profile,
	})

	require.NoError(t, err)
	assert.True(t, output.FromCache)
	assert.Equal(t, 396, output.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_NilRedisStillEvaluates(t *testing.T) {
	eng := testEngine(t)
	handler := NewHandler(LoadConfig(), eng, nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		SubmissionID: "sub-102",
		Profile:      testProfile(),
	})

	require.NoError(t, err)
	assert.False(t, output.FromCache)
	assert.Greater(t, output.Total, 0)
}

func TestExecute_CacheWriteFailureIsNonFatal(t *testing.T) {
	eng := testEngine(t)
	db, mock := redismock.NewClientMock()
	handler := NewHandler(LoadConfig(), eng, db, logger.NewTestLogger(t))

	profile := testProfile()
	key := breakdownCacheKey(t, eng, profile)

	mock.ExpectGet(key).RedisNil()
	mock.Regexp().ExpectSet(key, `.+`, LoadConfig().CacheTTL).SetErr(errors.New("connection reset"))

	output, err := handler.Execute(context.Background(), &Input{
		SubmissionID: "sub-103",
		Profile:      profile,
	})

	require.NoError(t, err)
	assert.Greater(t, output.Total, 0)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_InvalidLanguageScore(t *testing.T) {
	eng := testEngine(t)
	handler := NewHandler(LoadConfig(), eng, nil, logger.NewTestLogger(t))

	profile := testProfile()
	profile.FirstLanguage = models.LanguageTestResult{
		Test:      models.TestIELTS,
		Listening: 8, Speaking: 7, Reading: 150, Writing: 7,
	}

	output, err := handler.Execute(context.Background(), &Input{
		SubmissionID: "sub-104",
		Profile:      profile,
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidLanguageScore))
	assert.Nil(t, output)
	assert.Equal(t, "INVALID_LANGUAGE_SCORE", handler.mapErrorToCode(err))
}

func TestExecute_InvalidProfile(t *testing.T) {
	eng := testEngine(t)
	handler := NewHandler(LoadConfig(), eng, nil, logger.NewTestLogger(t))

	profile := testProfile()
	profile.Age = 12

	output, err := handler.Execute(context.Background(), &Input{
		SubmissionID: "sub-105",
		Profile:      profile,
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidProfile))
	assert.Nil(t, output)
	assert.Equal(t, "INVALID_PROFILE", handler.mapErrorToCode(err))
}

func TestCacheKey_StableAcrossRuns(t *testing.T) {
	eng := testEngine(t)
	handler := NewHandler(LoadConfig(), eng, nil, logger.NewTestLogger(t))

	input := &Input{SubmissionID: "sub-106", Profile: testProfile()}
	first := handler.cacheKey(input)
	second := handler.cacheKey(input)

	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)

	// The key follows profile content, not the submission ID.
	input.SubmissionID = "sub-other"
	assert.Equal(t, first, handler.cacheKey(input))

	input.Profile.Age = 30
	assert.NotEqual(t, first, handler.cacheKey(input))
}

func TestExecute_CacheRoundTrip(t *testing.T) {
	eng := testEngine(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	handler := NewHandler(LoadConfig(), eng, client, logger.NewTestLogger(t))

	input := &Input{
		SubmissionID: "sub-roundtrip",
		Profile:      testProfile(),
	}

	first, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	key := breakdownCacheKey(t, eng, input.Profile)
	assert.True(t, mr.Exists(key))

	second, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Total, second.Total)
	assert.Equal(t, first.Breakdown, second.Breakdown)

	// An expired entry forces a fresh evaluation.
	mr.FastForward(LoadConfig().CacheTTL * 2)
	third, err := handler.Execute(context.Background(), input)
	require.NoError(t, err)
	assert.False(t, third.FromCache)
}
