// internal/workers/recommendation/build-recommendation/handler_test.go
package buildrecommendation

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"crs-workers/internal/common/logger"
	"crs-workers/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBreakdown() models.ScoreBreakdown {
	return models.ScoreBreakdown{
		Core: models.SectionScore{
			Factors: []models.FactorScore{
				{Factor: "age", Bucket: "29", Points: 110},
				{Factor: "education", Bucket: "phd", Points: 150},
				{Factor: "first_language_listening", Bucket: "clb_7", Points: 17},
				{Factor: "first_language_speaking", Bucket: "clb_7", Points: 17},
				{Factor: "first_language_reading", Bucket: "clb_7", Points: 17},
				{Factor: "first_language_writing", Bucket: "clb_7", Points: 17},
				{Factor: "canadian_work_experience", Bucket: "none_or_less_than_a_year", Points: 0},
			},
			Subtotal: 328,
			Cap:      500,
		},
		Transferability: models.SectionScore{Subtotal: 50, Cap: 100},
		Additional:      models.SectionScore{},
		Total:           378,
		RulesVersion:    "2026.1",
	}
}

func testProfile() *models.ApplicantProfile {
	return &models.ApplicantProfile{
		Age:            29,
		MaritalStatus:  models.MaritalSingle,
		EducationLevel: models.EducationPhD,
		FirstLanguage: models.LanguageTestResult{
			Test:      models.TestIELTS,
			Listening: 6.0, Speaking: 6.0, Reading: 6.0, Writing: 6.0,
		},
	}
}

func TestExecute_HintsWithoutGenAI(t *testing.T) {
	handler := NewHandler(LoadConfig(), nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		SubmissionID: "sub-001",
		Profile:      testProfile(),
		Breakdown:    testBreakdown(),
	})

	require.NoError(t, err)
	assert.Equal(t, NarrativeSourceNone, output.NarrativeSource)
	assert.Empty(t, output.Narrative)
	require.NotEmpty(t, output.Recommendations)

	factors := map[string]models.Recommendation{}
	for _, rec := range output.Recommendations {
		factors[rec.Factor] = rec
	}
	assert.Contains(t, factors, "first_language")
	assert.Contains(t, factors, "second_language")
	assert.Contains(t, factors, "canadian_work_experience")
	assert.Contains(t, factors, "provincial_nomination")
	assert.Equal(t, 600, factors["provincial_nomination"].PotentialPoints)

	// PhD is already the top education bucket, nothing to gain
	assert.NotContains(t, factors, "education")

	// Language: four skills each 34-17 below the top bucket
	assert.Equal(t, 4*(34-17), factors["first_language"].PotentialPoints)
}

func TestExecute_HintsSortedByPotential(t *testing.T) {
	handler := NewHandler(LoadConfig(), nil, logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		SubmissionID: "sub-002",
		Profile:      testProfile(),
		Breakdown:    testBreakdown(),
	})

	require.NoError(t, err)
	for i := 1; i < len(output.Recommendations); i++ {
		assert.GreaterOrEqual(t,
			output.Recommendations[i-1].PotentialPoints,
			output.Recommendations[i].PotentialPoints,
		)
	}
}

func TestExecute_GenAINarrative(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ai/generate", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"Strong core score; focus on language results."}`))
	}))
	defer server.Close()

	config := LoadConfig()
	config.GenAIBaseURL = server.URL
	config.GenAIAPIKey = "test-key"
	handler := NewHandler(config, server.Client(), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		SubmissionID: "sub-003",
		Profile:      testProfile(),
		Breakdown:    testBreakdown(),
	})

	require.NoError(t, err)
	assert.Equal(t, NarrativeSourceGenAI, output.NarrativeSource)
	assert.Equal(t, "Strong core score; focus on language results.", output.Narrative)
	assert.NotEmpty(t, output.Recommendations)
}

func TestExecute_GenAIFailureDegradesToHints(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	config := LoadConfig()
	config.GenAIBaseURL = server.URL
	config.MaxRetries = 1
	handler := NewHandler(config, server.Client(), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		SubmissionID: "sub-004",
		Profile:      testProfile(),
		Breakdown:    testBreakdown(),
	})

	require.NoError(t, err)
	assert.Equal(t, NarrativeSourceNone, output.NarrativeSource)
	assert.Empty(t, output.Narrative)
	assert.NotEmpty(t, output.Recommendations)
}

func TestExecute_EmptyBreakdownRejected(t *testing.T) {
	handler := NewHandler(LoadConfig(), nil, logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{SubmissionID: "sub-005"})

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrRecommendationFailed)
}

func TestBuildHints_NominatedProfileSkipsNominationHint(t *testing.T) {
	profile := testProfile()
	profile.HasProvincialNomination = true

	hints := buildHints(profile, testBreakdown())

	for _, rec := range hints {
		assert.NotEqual(t, "provincial_nomination", rec.Factor)
	}
}

func TestBuildHints_SecondLanguagePresentSkipsHint(t *testing.T) {
	breakdown := testBreakdown()
	breakdown.Core.Factors = append(breakdown.Core.Factors,
		models.FactorScore{Factor: "second_language_listening", Bucket: "clb_5_or_6", Points: 1},
	)

	hints := buildHints(testProfile(), breakdown)

	for _, rec := range hints {
		assert.NotEqual(t, "second_language", rec.Factor)
	}
}
