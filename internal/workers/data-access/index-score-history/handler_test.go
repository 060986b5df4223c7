// internal/workers/data-access/index-score-history/handler_test.go
package indexscorehistory

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"crs-workers/internal/common/logger"
	"crs-workers/internal/models"
	"crs-workers/internal/workers/data-access/index-score-history/queries"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCluster serves canned Elasticsearch responses and records the
// requests the handler sends.
type fakeCluster struct {
	server   *httptest.Server
	requests []recordedRequest
	status   int
	body     string
}

type recordedRequest struct {
	Method string
	Path   string
	Body   map[string]interface{}
}

func newFakeCluster(t *testing.T, status int, body string) *fakeCluster {
	fc := &fakeCluster{status: status, body: body}
	fc.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var decoded map[string]interface{}
		if raw, err := io.ReadAll(r.Body); err == nil && len(raw) > 0 {
			_ = json.Unmarshal(raw, &decoded)
		}
		fc.requests = append(fc.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Body:   decoded,
		})
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(fc.status)
		_, _ = w.Write([]byte(fc.body))
	}))
	t.Cleanup(fc.server.Close)
	return fc
}

func (fc *fakeCluster) client(t *testing.T) *elasticsearch.Client {
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{fc.server.URL},
	})
	require.NoError(t, err)
	return esClient
}

func testBreakdown() *models.ScoreBreakdown {
	return &models.ScoreBreakdown{
		Total:        396,
		WithSpouse:   false,
		RulesVersion: "2026.1",
	}
}

func TestExecute_IndexBreakdown(t *testing.T) {
	fc := newFakeCluster(t, http.StatusCreated, `{"_id":"assess-1","result":"created"}`)
	handler := NewHandler(LoadConfig(), fc.client(t), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Operation:    OperationIndex,
		AssessmentID: "assess-1",
		SubmissionID: "sub-1",
		UserID:       "user-1",
		Breakdown:    testBreakdown(),
	})

	require.NoError(t, err)
	assert.True(t, output.Indexed)
	assert.Equal(t, "assess-1", output.DocumentID)

	require.Len(t, fc.requests, 1)
	req := fc.requests[0]
	assert.Equal(t, "/score_history/_doc/assess-1", req.Path)
	assert.Equal(t, "user-1", req.Body["user_id"])
	assert.Equal(t, float64(396), req.Body["total"])
	assert.Equal(t, "2026.1", req.Body["rules_version"])
	assert.NotEmpty(t, req.Body["created_at"])
}

func TestExecute_IndexRequiresAssessmentID(t *testing.T) {
	fc := newFakeCluster(t, http.StatusOK, `{}`)
	handler := NewHandler(LoadConfig(), fc.client(t), logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		Operation: OperationIndex,
		Breakdown: testBreakdown(),
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrHistoryIndexFailed))
	assert.Empty(t, fc.requests)
}

func TestExecute_IndexClusterError(t *testing.T) {
	fc := newFakeCluster(t, http.StatusInternalServerError, `{"error":"boom"}`)
	handler := NewHandler(LoadConfig(), fc.client(t), logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		Operation:    OperationIndex,
		AssessmentID: "assess-2",
		Breakdown:    testBreakdown(),
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrHistoryIndexFailed))
	assert.Equal(t, "HISTORY_INDEX_FAILED", handler.mapErrorToCode(err))
	assert.Equal(t, int32(3), handler.getRetryCount(err))
}

func TestExecute_QueryUserHistory(t *testing.T) {
	searchResponse := `{
		"took": 4,
		"hits": {
			"total": {"value": 2},
			"hits": [
				{"_source": {"assessment_id": "a-1", "total": 396}},
				{"_source": {"assessment_id": "a-2", "total": 412}}
			]
		}
	}`
	fc := newFakeCluster(t, http.StatusOK, searchResponse)
	handler := NewHandler(LoadConfig(), fc.client(t), logger.NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{
		Operation: OperationQuery,
		QueryType: "user_history",
		UserID:    "user-1",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(2), output.TotalHits)
	require.Len(t, output.Data, 2)
	assert.Equal(t, "a-1", output.Data[0]["assessment_id"])
}

func TestExecute_QueryUnknownTypeIsBusinessError(t *testing.T) {
	fc := newFakeCluster(t, http.StatusOK, `{}`)
	handler := NewHandler(LoadConfig(), fc.client(t), logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{
		Operation: OperationQuery,
		QueryType: "by_moon_phase",
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrSearchQueryFailed))
	assert.Empty(t, fc.requests)
}

func TestExecute_UnknownOperation(t *testing.T) {
	fc := newFakeCluster(t, http.StatusOK, `{}`)
	handler := NewHandler(LoadConfig(), fc.client(t), logger.NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{Operation: "upsert"})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidOperation))
	assert.Equal(t, "INVALID_QUERY_TYPE", handler.mapErrorToCode(err))
	assert.Equal(t, int32(0), handler.getRetryCount(err))
}

func TestBuildQuery_UserHistoryRequiresUser(t *testing.T) {
	_, err := queries.BuildQuery(queries.HistoryQuery{
		Index:     "score_history",
		QueryType: "user_history",
	})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, queries.ErrMissingUser))
}

func TestBuildQuery_RequiresIndex(t *testing.T) {
	_, err := queries.BuildQuery(queries.HistoryQuery{QueryType: "recent_assessments"})

	assert.Error(t, err)
	assert.True(t, errors.Is(err, queries.ErrMissingIndex))
}

func TestBuildQuery_ScoreRangeFilters(t *testing.T) {
	req, err := queries.BuildQuery(queries.HistoryQuery{
		Index:     "score_history",
		QueryType: "score_range",
		Filters: map[string]interface{}{
			"minTotal":     float64(400),
			"maxTotal":     float64(600),
			"rulesVersion": "2026.1",
		},
	})

	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, []string{"score_history"}, req.Index)
}
