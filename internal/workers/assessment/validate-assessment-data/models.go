// internal/workers/assessment/validate-assessment-data/models.go
package validateassessmentdata

import (
	"crs-workers/internal/common/validation"
)

type Input struct {
	SubmissionID   string                 `json:"submissionId"`
	AssessmentData map[string]interface{} `json:"assessmentData"`
}

type Output struct {
	IsValid          bool                   `json:"isValid"`
	Profile          map[string]interface{} `json:"profile"`
	ValidationErrors []ValidationError      `json:"validationErrors"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func floatPtr(f float64) *float64 { return &f }

// GetInputSchema describes the questionnaire payload this worker accepts.
// Conditional requirements (spouse block, job offer TEER) cannot be
// expressed here and are checked separately after decoding.
func GetInputSchema() validation.JSONSchema {
	languageResult := validation.Property{
		Type: "object",
		Properties: map[string]validation.Property{
			"test": {
				Type: "string",
				Enum: []string{"IELTS", "CELPIP", "TEF", "TCF", "PTE"},
			},
			"listening": {Type: "number", Minimum: floatPtr(0)},
			"speaking":  {Type: "number", Minimum: floatPtr(0)},
			"reading":   {Type: "number", Minimum: floatPtr(0)},
			"writing":   {Type: "number", Minimum: floatPtr(0)},
		},
		Required: []string{"test", "listening", "speaking", "reading", "writing"},
	}

	educationEnum := []string{
		"less_than_secondary",
		"secondary_diploma",
		"one_year_post_secondary",
		"two_year_post_secondary",
		"bachelor_or_three_year_post_secondary_or_more",
		"two_or_more_post_secondary_one_three_year",
		"masters_or_professional_degree",
		"phd",
	}

	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"age": {Type: "number", Minimum: floatPtr(17), Maximum: floatPtr(120)},
			"maritalStatus": {
				Type: "string",
				Enum: []string{
					"single", "married", "common_law", "divorced",
					"widowed", "legally_separated", "annulled_marriage",
				},
			},
			"spouseIsCitizen":    {Type: "boolean"},
			"spouseAccompanying": {Type: "boolean"},
			"spouse": {
				Type: "object",
				Properties: map[string]validation.Property{
					"educationLevel":    {Type: "string", Enum: educationEnum},
					"canadianWorkYears": {Type: "number", Minimum: floatPtr(0)},
					"languageTest":      languageResult,
				},
				Required: []string{"educationLevel", "canadianWorkYears"},
			},
			"educationLevel":    {Type: "string", Enum: educationEnum},
			"firstLanguage":     languageResult,
			"secondLanguage":    languageResult,
			"canadianWorkYears": {Type: "number", Minimum: floatPtr(0)},
			"foreignWorkYears":  {Type: "number", Minimum: floatPtr(0)},
			"tradeCertificate":  {Type: "boolean"},
			"hasJobOffer":       {Type: "boolean"},
			"jobOfferTeer": {
				Type: "string",
				Enum: []string{"teer_0", "teer_1", "teer_2", "teer_3", "teer_4", "teer_5"},
			},
			"hasProvincialNomination": {Type: "boolean"},
			"hasSiblingInCanada":      {Type: "boolean"},
			"hasCanadianEducation":    {Type: "boolean"},
			"canadianEducationYears":  {Type: "number", Minimum: floatPtr(0)},
		},
		Required: []string{
			"age", "maritalStatus", "educationLevel", "firstLanguage",
			"canadianWorkYears", "foreignWorkYears",
		},
		AdditionalProperties: false,
	}
}
