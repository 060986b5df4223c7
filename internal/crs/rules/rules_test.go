// internal/crs/rules/rules_test.go
package rules

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crs-workers/internal/models"
)

func TestLoadDefaultDocument(t *testing.T) {
	table, err := Load(DefaultDocument)
	require.NoError(t, err)
	assert.Equal(t, "2026.1", table.Version())
	assert.Equal(t, "express-entry-crs", table.Metadata().Name)
}

func TestLoadRejectsMissingLeaf(t *testing.T) {
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(DefaultDocument, &doc))

	core := doc["core_human_capital_factors"].(map[string]interface{})
	age := core["age"].(map[string]interface{})
	without := age["without_spouse"].(map[string]interface{})
	delete(without, "29")

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = Load(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rule document")
}

func TestLoadRejectsNegativeLeaf(t *testing.T) {
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(DefaultDocument, &doc))

	additional := doc["additional_points"].(map[string]interface{})
	additional["sibling_in_canada"] = -15

	data, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = Load(data)
	require.Error(t, err)
}

func TestLoadRejectsNotJSON(t *testing.T) {
	_, err := Load([]byte("not a rule document"))
	require.Error(t, err)
}

func TestTableLookups(t *testing.T) {
	table, err := Load(DefaultDocument)
	require.NoError(t, err)

	points, err := table.Age("29", false)
	require.NoError(t, err)
	assert.Equal(t, 110, points)

	points, err = table.Age("29", true)
	require.NoError(t, err)
	assert.Equal(t, 100, points)

	points, err = table.Education("phd", false)
	require.NoError(t, err)
	assert.Equal(t, 150, points)

	points, err = table.FirstLanguage("clb_10_or_more", false)
	require.NoError(t, err)
	assert.Equal(t, 34, points)

	points, err = table.CanadianWork("5_years_or_more", true)
	require.NoError(t, err)
	assert.Equal(t, 70, points)

	points, err = table.SpouseEducation("masters_or_professional_degree")
	require.NoError(t, err)
	assert.Equal(t, 10, points)

	points, err = table.EducationCanadianExperience("one_post_secondary_or_more", "two_or_more_years")
	require.NoError(t, err)
	assert.Equal(t, 25, points)

	points, err = table.ForeignExperienceLanguage("two_or_more_years", "clb_9_or_more")
	require.NoError(t, err)
	assert.Equal(t, 50, points)

	points, err = table.ArrangedEmployment("teer_0")
	require.NoError(t, err)
	assert.Equal(t, 200, points)

	points, err = table.ArrangedEmployment("teer_4")
	require.NoError(t, err)
	assert.Equal(t, 0, points)

	assert.Equal(t, 15, table.SiblingBonus())
	assert.Equal(t, 600, table.NominationBonus())
}

func TestUnmappedBucket(t *testing.T) {
	table, err := Load(DefaultDocument)
	require.NoError(t, err)

	_, err = table.Age("65", false)
	require.Error(t, err)

	var unmapped *UnmappedBucketError
	require.True(t, errors.As(err, &unmapped))
	assert.Equal(t, "core.age", unmapped.Category)
	assert.Equal(t, "65", unmapped.Bucket)

	_, err = table.EducationForeignExperience("one_post_secondary_or_more", "six_years")
	require.True(t, errors.As(err, &unmapped))
	assert.Equal(t, "one_post_secondary_or_more/six_years", unmapped.Bucket)
}

func TestAgeBucket(t *testing.T) {
	tests := []struct {
		age  int
		want string
	}{
		{16, "17_or_less"},
		{17, "17_or_less"},
		{18, "18"},
		{29, "29"},
		{44, "44"},
		{45, "45_or_older"},
		{70, "45_or_older"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, AgeBucket(tt.age), "age %d", tt.age)
	}
}

func TestLanguageBuckets(t *testing.T) {
	assert.Equal(t, "less_than_clb_4", FirstLanguageBucket(3))
	assert.Equal(t, "clb_4_or_5", FirstLanguageBucket(4))
	assert.Equal(t, "clb_4_or_5", FirstLanguageBucket(5))
	assert.Equal(t, "clb_8", FirstLanguageBucket(8))
	assert.Equal(t, "clb_10_or_more", FirstLanguageBucket(10))

	assert.Equal(t, "clb_4_or_less", SecondLanguageBucket(4))
	assert.Equal(t, "clb_5_or_6", SecondLanguageBucket(6))
	assert.Equal(t, "clb_7_or_8", SecondLanguageBucket(7))
	assert.Equal(t, "clb_9_or_more", SecondLanguageBucket(11))
}

func TestWorkExperienceBucket(t *testing.T) {
	assert.Equal(t, "none_or_less_than_a_year", WorkExperienceBucket(0))
	assert.Equal(t, "1_year", WorkExperienceBucket(1))
	assert.Equal(t, "2_years", WorkExperienceBucket(2))
	assert.Equal(t, "4_years", WorkExperienceBucket(4))
	assert.Equal(t, "5_years_or_more", WorkExperienceBucket(7))
}

func TestTransferBuckets(t *testing.T) {
	assert.Equal(t, "none_qualifying", TransferEducationBucket(models.EducationSecondaryDiploma))
	assert.Equal(t, "one_post_secondary_or_more", TransferEducationBucket(models.EducationPhD))

	assert.Equal(t, "none", TransferExperienceBucket(0))
	assert.Equal(t, "one_year", TransferExperienceBucket(1))
	assert.Equal(t, "two_or_more_years", TransferExperienceBucket(3))

	assert.Equal(t, "below_clb_7", TransferLanguageBucket(6))
	assert.Equal(t, "clb_7_or_8", TransferLanguageBucket(8))
	assert.Equal(t, "clb_9_or_more", TransferLanguageBucket(9))
}

func TestCertificateLanguageBucket(t *testing.T) {
	_, ok := CertificateLanguageBucket(4)
	assert.False(t, ok)

	bucket, ok := CertificateLanguageBucket(5)
	assert.True(t, ok)
	assert.Equal(t, "clb_5_or_6", bucket)

	bucket, ok = CertificateLanguageBucket(9)
	assert.True(t, ok)
	assert.Equal(t, "clb_7_or_more", bucket)
}

// Serializing a loaded table and loading it back must not change any
// lookup result.
func TestRoundTripStableLookups(t *testing.T) {
	first, err := Load(DefaultDocument)
	require.NoError(t, err)

	data, err := json.Marshal(first.doc)
	require.NoError(t, err)

	second, err := Load(data)
	require.NoError(t, err)

	for _, bucket := range []string{"17_or_less", "18", "29", "40", "45_or_older"} {
		for _, withSpouse := range []bool{true, false} {
			a, err := first.Age(bucket, withSpouse)
			require.NoError(t, err)
			b, err := second.Age(bucket, withSpouse)
			require.NoError(t, err)
			assert.Equal(t, a, b, "age %s withSpouse=%v", bucket, withSpouse)
		}
	}

	for _, bucket := range []string{"phd", "secondary_diploma", "two_year_post_secondary"} {
		a, err := first.Education(bucket, false)
		require.NoError(t, err)
		b, err := second.Education(bucket, false)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}

	a, err := first.ForeignCanadianExperience("two_or_more_years", "one_year")
	require.NoError(t, err)
	b, err := second.ForeignCanadianExperience("two_or_more_years", "one_year")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
