// internal/common/validation/schema_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 { return &f }
func strPtr(s string) *string     { return &s }

func answerSchema() JSONSchema {
	return JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"age": {
				Type:    "number",
				Minimum: floatPtr(17),
				Maximum: floatPtr(120),
			},
			"maritalStatus": {
				Type: "string",
				Enum: []string{"single", "married", "common_law"},
			},
			"submissionId": {
				Type:    "string",
				Pattern: strPtr(`^sub-[a-z0-9-]+$`),
			},
			"firstLanguage": {
				Type: "object",
				Properties: map[string]Property{
					"test":      {Type: "string"},
					"listening": {Type: "number"},
				},
				Required: []string{"test"},
			},
		},
		Required: []string{"age", "maritalStatus"},
	}
}

func TestValidateInputAcceptsWellFormedAnswers(t *testing.T) {
	result := ValidateInput(map[string]interface{}{
		"age":           float64(29),
		"maritalStatus": "single",
		"submissionId":  "sub-1a2b",
		"firstLanguage": map[string]interface{}{
			"test":      "IELTS",
			"listening": float64(8),
		},
	}, answerSchema())

	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateInputFieldErrors(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]interface{}
		field string
		code  string
	}{
		{
			"missing required field",
			map[string]interface{}{"age": float64(29)},
			"maritalStatus", "REQUIRED_FIELD_MISSING",
		},
		{
			"age below minimum",
			map[string]interface{}{"age": float64(12), "maritalStatus": "single"},
			"age", "MINIMUM_VIOLATION",
		},
		{
			"unknown marital status",
			map[string]interface{}{"age": float64(29), "maritalStatus": "engaged"},
			"maritalStatus", "INVALID_ENUM_VALUE",
		},
		{
			"wrong type",
			map[string]interface{}{"age": "29", "maritalStatus": "single"},
			"age", "INVALID_TYPE",
		},
		{
			"pattern mismatch",
			map[string]interface{}{
				"age": float64(29), "maritalStatus": "single", "submissionId": "SUB_1",
			},
			"submissionId", "PATTERN_MISMATCH",
		},
		{
			"missing nested required field",
			map[string]interface{}{
				"age": float64(29), "maritalStatus": "single",
				"firstLanguage": map[string]interface{}{"listening": float64(8)},
			},
			"firstLanguage.test", "REQUIRED_FIELD_MISSING",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateInput(tt.input, answerSchema())
			require.False(t, result.Valid)

			found := false
			for _, e := range result.Errors {
				if e.Field == tt.field && e.Code == tt.code {
					found = true
				}
			}
			assert.True(t, found, "expected %s error on %s, got %v", tt.code, tt.field, result.Errors)
		})
	}
}

func TestValidateInputRejectsExtraFields(t *testing.T) {
	result := ValidateInput(map[string]interface{}{
		"age":           float64(29),
		"maritalStatus": "single",
		"favouriteCity": "Halifax",
	}, answerSchema())

	require.False(t, result.Valid)
	assert.Equal(t, "EXTRA_FIELD", result.Errors[0].Code)
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("applicant@example.com"))
	assert.False(t, ValidateEmail("applicant@"))
	assert.False(t, ValidateEmail("not an email"))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+1 902 555 0143"))
	assert.False(t, ValidatePhone("555"))
}
