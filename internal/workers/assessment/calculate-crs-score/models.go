// internal/workers/assessment/calculate-crs-score/models.go
package calculatecrsscore

import "crs-workers/internal/models"

type Input struct {
	SubmissionID string                  `json:"submissionId"`
	Profile      models.ApplicantProfile `json:"profile"`
}

type Output struct {
	SubmissionID string                `json:"submissionId"`
	Breakdown    models.ScoreBreakdown `json:"breakdown"`
	Total        int                   `json:"total"`
	RulesVersion string                `json:"rulesVersion"`
	FromCache    bool                  `json:"fromCache"`
}
