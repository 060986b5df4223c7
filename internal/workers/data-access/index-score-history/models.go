// internal/workers/data-access/index-score-history/models.go
package indexscorehistory

import "crs-workers/internal/models"

type Input struct {
	Operation    string                 `json:"operation"` // "index" or "query"
	AssessmentID string                 `json:"assessmentId,omitempty"`
	SubmissionID string                 `json:"submissionId,omitempty"`
	UserID       string                 `json:"userId,omitempty"`
	Breakdown    *models.ScoreBreakdown `json:"breakdown,omitempty"`
	Total        int                    `json:"total,omitempty"`
	RulesVersion string                 `json:"rulesVersion,omitempty"`

	QueryType  string                 `json:"queryType,omitempty"`
	Filters    map[string]interface{} `json:"filters,omitempty"`
	Pagination Pagination             `json:"pagination,omitempty"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Indexed    bool                     `json:"indexed,omitempty"`
	DocumentID string                   `json:"documentId,omitempty"`
	Data       []map[string]interface{} `json:"data,omitempty"`
	TotalHits  int64                    `json:"totalHits,omitempty"`
	Took       int64                    `json:"took,omitempty"` // milliseconds
}

// Operations
const (
	OperationIndex = "index"
	OperationQuery = "query"
)
