// internal/workers/data-access/index-score-history/queries/registry.go
package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

type QueryResult struct {
	Data      []map[string]interface{}
	TotalHits int64
	Took      int64
}

// Execute runs a score-history search against the cluster and flattens
// the hits into their _source documents.
func Execute(ctx context.Context, esClient *elasticsearch.Client, hq HistoryQuery) (*QueryResult, error) {
	if hq.Pagination.Size < 1 {
		hq.Pagination.Size = 20
	}
	if hq.Pagination.Size > 100 {
		hq.Pagination.Size = 100
	}

	req, err := BuildQuery(hq)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := req.Do(ctx, esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	hits, ok := r["hits"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("malformed search response")
	}

	var total float64
	if t, ok := hits["total"].(map[string]interface{}); ok {
		total, _ = t["value"].(float64)
	}

	var data []map[string]interface{}
	if hitList, ok := hits["hits"].([]interface{}); ok {
		for _, hit := range hitList {
			if hitMap, ok := hit.(map[string]interface{}); ok {
				if source, ok := hitMap["_source"].(map[string]interface{}); ok {
					data = append(data, source)
				}
			}
		}
	}

	return &QueryResult{
		Data:      data,
		TotalHits: int64(total),
		Took:      time.Since(start).Milliseconds(),
	}, nil
}
