// internal/workers/assessment/create-assessment-record/models.go
package createassessmentrecord

import "crs-workers/internal/models"

type Input struct {
	SubmissionID string                  `json:"submissionId"`
	UserID       string                  `json:"userId"`
	Profile      models.ApplicantProfile `json:"profile"`
	Breakdown    models.ScoreBreakdown   `json:"breakdown"`
	Total        int                     `json:"total"`
	RulesVersion string                  `json:"rulesVersion"`
}

type Output struct {
	AssessmentID     string `json:"assessmentId"`
	AssessmentStatus string `json:"assessmentStatus"`
	CreatedAt        string `json:"createdAt"`
}
