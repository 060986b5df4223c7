// internal/models/validate_test.go
package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() ApplicantProfile {
	return ApplicantProfile{
		Age:            29,
		MaritalStatus:  MaritalSingle,
		EducationLevel: EducationPhD,
		FirstLanguage: LanguageTestResult{
			Test: TestIELTS, Listening: 8.0, Speaking: 7.5, Reading: 7.0, Writing: 7.5,
		},
	}
}

func TestValidateAcceptsMinimalProfile(t *testing.T) {
	assert.NoError(t, validProfile().Validate())
}

func TestValidateFieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ApplicantProfile)
		field  string
	}{
		{
			"underage", func(p *ApplicantProfile) { p.Age = 16 }, "age",
		},
		{
			"unknown marital status",
			func(p *ApplicantProfile) { p.MaritalStatus = "engaged" },
			"maritalStatus",
		},
		{
			"unknown education level",
			func(p *ApplicantProfile) { p.EducationLevel = "bootcamp" },
			"educationLevel",
		},
		{
			"unknown language test",
			func(p *ApplicantProfile) { p.FirstLanguage.Test = "TOEFL" },
			"firstLanguage.test",
		},
		{
			"second language same official language as first",
			func(p *ApplicantProfile) {
				p.SecondLanguage = &LanguageTestResult{
					Test: TestCELPIP, Listening: 9, Speaking: 9, Reading: 9, Writing: 9,
				}
			},
			"secondLanguage.test",
		},
		{
			"negative canadian work years",
			func(p *ApplicantProfile) { p.CanadianWorkYears = -1 },
			"canadianWorkYears",
		},
		{
			"spouse record without accompanying spouse",
			func(p *ApplicantProfile) { p.Spouse = &SpouseProfile{EducationLevel: EducationPhD} },
			"spouse",
		},
		{
			"accompanying spouse without record",
			func(p *ApplicantProfile) {
				p.MaritalStatus = MaritalMarried
				p.SpouseAccompanying = true
			},
			"spouse",
		},
		{
			"job offer without TEER",
			func(p *ApplicantProfile) { p.HasJobOffer = true },
			"jobOfferTeer",
		},
		{
			"TEER without job offer",
			func(p *ApplicantProfile) { p.JobOfferTEER = TEER1 },
			"jobOfferTeer",
		},
		{
			"canadian credential without years",
			func(p *ApplicantProfile) { p.HasCanadianEducation = true },
			"canadianEducationYears",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			profile := validProfile()
			tt.mutate(&profile)

			err := profile.Validate()
			require.Error(t, err)

			var invalid *InvalidProfileError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestScoredWithSpouse(t *testing.T) {
	p := validProfile()
	assert.False(t, p.ScoredWithSpouse())

	p.MaritalStatus = MaritalMarried
	p.SpouseAccompanying = true
	assert.True(t, p.ScoredWithSpouse())

	// A spouse who is already a citizen or PR leaves the applicant
	// scored as single.
	p.SpouseIsCitizen = true
	assert.False(t, p.ScoredWithSpouse())

	p.SpouseIsCitizen = false
	p.SpouseAccompanying = false
	assert.False(t, p.ScoredWithSpouse())
}
