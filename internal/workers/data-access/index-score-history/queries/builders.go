// internal/workers/data-access/index-score-history/queries/builders.go
package queries

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
	ErrMissingUser      = errors.New("userId filter is required")
)

// HistoryQuery defines the structure of a score-history search request
type HistoryQuery struct {
	Index      string
	QueryType  string
	UserID     string
	Filters    map[string]interface{}
	Pagination struct {
		From int
		Size int
	}
}

// BuildQuery builds an Elasticsearch search request for a score-history query type
func BuildQuery(hq HistoryQuery) (*esapi.SearchRequest, error) {
	if hq.Index == "" {
		return nil, ErrMissingIndex
	}

	var queryBody map[string]interface{}

	switch hq.QueryType {
	case "user_history":
		var err error
		queryBody, err = buildUserHistoryQuery(hq)
		if err != nil {
			return nil, err
		}
	case "score_range":
		queryBody = buildScoreRangeQuery(hq)
	case "recent_assessments":
		queryBody = buildRecentAssessmentsQuery(hq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, hq.QueryType)
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index: []string{hq.Index},
		Body:  strings.NewReader(string(body)),
		From:  &hq.Pagination.From,
		Size:  &hq.Pagination.Size,
	}

	return &req, nil
}

// buildUserHistoryQuery returns one user's assessments, newest first
func buildUserHistoryQuery(hq HistoryQuery) (map[string]interface{}, error) {
	if hq.UserID == "" {
		return nil, ErrMissingUser
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{
						"term": map[string]interface{}{"user_id": hq.UserID},
					},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"created_at": map[string]interface{}{"order": "desc"}},
		},
	}, nil
}

// buildScoreRangeQuery filters assessments whose total falls inside min/max
func buildScoreRangeQuery(hq HistoryQuery) map[string]interface{} {
	rangeClause := map[string]interface{}{}

	if minRaw, ok := hq.Filters["minTotal"]; ok {
		if minVal, ok := toFloat(minRaw); ok {
			rangeClause["gte"] = minVal
		}
	}
	if maxRaw, ok := hq.Filters["maxTotal"]; ok {
		if maxVal, ok := toFloat(maxRaw); ok {
			rangeClause["lte"] = maxVal
		}
	}

	filterClauses := []interface{}{}
	if len(rangeClause) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"total": rangeClause},
		})
	}
	if version, ok := hq.Filters["rulesVersion"].(string); ok && version != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"rules_version": version},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filterClauses},
		},
		"sort": []interface{}{
			map[string]interface{}{"total": map[string]interface{}{"order": "desc"}},
		},
	}
}

// buildRecentAssessmentsQuery returns the newest assessments across all users
func buildRecentAssessmentsQuery(hq HistoryQuery) map[string]interface{} {
	queryBody := map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort": []interface{}{
			map[string]interface{}{"created_at": map[string]interface{}{"order": "desc"}},
		},
	}

	if withSpouse, ok := hq.Filters["withSpouse"].(bool); ok {
		queryBody["query"] = map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{
						"term": map[string]interface{}{"with_spouse": withSpouse},
					},
				},
			},
		}
	}

	return queryBody
}

func toFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
