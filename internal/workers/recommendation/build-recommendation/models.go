// internal/workers/recommendation/build-recommendation/models.go
package buildrecommendation

import "crs-workers/internal/models"

type Input struct {
	SubmissionID string                   `json:"submissionId"`
	Profile      *models.ApplicantProfile `json:"profile,omitempty"`
	Breakdown    models.ScoreBreakdown    `json:"breakdown"`
}

type Output struct {
	SubmissionID    string                  `json:"submissionId"`
	Recommendations []models.Recommendation `json:"recommendations"`
	Narrative       string                  `json:"narrative,omitempty"`
	NarrativeSource string                  `json:"narrativeSource"` // "genai" or "none"
}

const (
	NarrativeSourceGenAI = "genai"
	NarrativeSourceNone  = "none"
)
