// internal/models/assessment.go
package models

// Assessment status values as persisted and exposed to workflows.
const (
	AssessmentStatusScored = "scored"
)

// Assessment is the persisted record of one scored submission: the
// normalized profile, the full breakdown, and the rule table version
// the score was computed against.
type Assessment struct {
	ID           string           `json:"id"`
	SubmissionID string           `json:"submissionId"`
	UserID       string           `json:"userId"`
	Profile      ApplicantProfile `json:"profile"`
	Breakdown    ScoreBreakdown   `json:"breakdown"`
	Total        int              `json:"total"`
	RulesVersion string           `json:"rulesVersion"`
	Status       string           `json:"status"`
	CreatedAt    string           `json:"createdAt"`
	UpdatedAt    string           `json:"updatedAt"`
}
