// internal/workers/communication/send-result-notification/models.go
package sendresultnotification

import "crs-workers/internal/models"

type Input struct {
	SubmissionID   string                `json:"submissionId"`
	AssessmentID   string                `json:"assessmentId"`
	RecipientEmail string                `json:"recipientEmail"`
	RecipientPhone string                `json:"recipientPhone,omitempty"`
	RecipientName  string                `json:"recipientName,omitempty"`
	Breakdown      models.ScoreBreakdown `json:"breakdown"`
	Total          int                   `json:"total"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "disabled"
	EmailSent      bool   `json:"emailSent"`
	SMSSent        bool   `json:"smsSent"`
	SentAt         string `json:"sentAt"` // ISO 8601
}

const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)
