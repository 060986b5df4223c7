// pkg/ruledoc/ruledoc.go
// Package ruledoc defines the rule-table document format shared by the
// scoring engine loader and the ruletable-check tool: the metadata
// envelope, the closed bucket key sets, and the JSON schema every
// document must satisfy.
package ruledoc

import "strconv"

// Metadata identifies a rule-table document version.
type Metadata struct {
	Version   string `json:"version"`
	Name      string `json:"name"`
	UpdatedAt string `json:"updated_at"`
}

// Bucket key sets. These are closed: a lookup deriving any key outside
// its set is a table/profile mismatch, never a zero score.
var (
	EducationBuckets = []string{
		"less_than_secondary",
		"secondary_diploma",
		"one_year_post_secondary",
		"two_year_post_secondary",
		"bachelor_or_three_year_post_secondary_or_more",
		"two_or_more_post_secondary_one_three_year",
		"masters_or_professional_degree",
		"phd",
	}

	FirstLanguageBuckets = []string{
		"less_than_clb_4", "clb_4_or_5", "clb_6", "clb_7", "clb_8", "clb_9", "clb_10_or_more",
	}

	SecondLanguageBuckets = []string{
		"clb_4_or_less", "clb_5_or_6", "clb_7_or_8", "clb_9_or_more",
	}

	WorkExperienceBuckets = []string{
		"none_or_less_than_a_year", "1_year", "2_years", "3_years", "4_years", "5_years_or_more",
	}

	TransferEducationBuckets = []string{"none_qualifying", "one_post_secondary_or_more"}

	TransferExperienceBuckets = []string{"none", "one_year", "two_or_more_years"}

	TransferLanguageBuckets = []string{"below_clb_7", "clb_7_or_8", "clb_9_or_more"}

	CertificateLanguageBuckets = []string{"clb_5_or_6", "clb_7_or_more"}

	FrenchBonusBuckets = []string{"nclc_7_english_clb_4_or_less", "nclc_7_english_clb_5_or_more"}

	CanadianStudyBuckets = []string{"one_or_two_year", "three_year_or_more"}

	TEERBuckets = []string{"teer_0", "teer_1", "teer_2", "teer_3", "teer_4", "teer_5"}
)

// AgeBuckets returns the closed age key set: the two open-ended bands
// plus one key per exact age from 18 through 44.
func AgeBuckets() []string {
	buckets := []string{"17_or_less"}
	for age := 18; age <= 44; age++ {
		buckets = append(buckets, strconv.Itoa(age))
	}
	return append(buckets, "45_or_older")
}

// pointsLeaf is a non-negative integer point value.
func pointsLeaf() map[string]interface{} {
	return map[string]interface{}{"type": "integer", "minimum": 0}
}

// factorSchema describes one flat bucket→points object with every bucket
// key required.
func factorSchema(buckets []string) map[string]interface{} {
	props := make(map[string]interface{}, len(buckets))
	for _, b := range buckets {
		props[b] = pointsLeaf()
	}
	return map[string]interface{}{
		"type":                 "object",
		"required":             buckets,
		"properties":           props,
		"additionalProperties": false,
	}
}

// splitFactorSchema wraps a factor in the with/without-spouse table split.
func splitFactorSchema(buckets []string) map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []string{"with_spouse", "without_spouse"},
		"properties": map[string]interface{}{
			"with_spouse":    factorSchema(buckets),
			"without_spouse": factorSchema(buckets),
		},
		"additionalProperties": false,
	}
}

// comboSchema describes a two-axis lookup: every row bucket maps to a
// complete column bucket→points object.
func comboSchema(rows, cols []string) map[string]interface{} {
	props := make(map[string]interface{}, len(rows))
	for _, r := range rows {
		props[r] = factorSchema(cols)
	}
	return map[string]interface{}{
		"type":                 "object",
		"required":             rows,
		"properties":           props,
		"additionalProperties": false,
	}
}

// DocumentSchema returns the JSON schema a rule-table document must
// satisfy. A document missing any required leaf is rejected at load
// time, before any evaluation can consult it.
func DocumentSchema() map[string]interface{} {
	return map[string]interface{}{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type":    "object",
		"required": []string{
			"version",
			"core_human_capital_factors",
			"spouse_factors",
			"skill_transferability_factors",
			"additional_points",
		},
		"properties": map[string]interface{}{
			"version":    map[string]interface{}{"type": "string", "minLength": 1},
			"name":       map[string]interface{}{"type": "string"},
			"updated_at": map[string]interface{}{"type": "string"},
			"core_human_capital_factors": map[string]interface{}{
				"type": "object",
				"required": []string{
					"age", "education", "first_official_language",
					"second_official_language", "canadian_work_experience",
				},
				"properties": map[string]interface{}{
					"age":                      splitFactorSchema(AgeBuckets()),
					"education":                splitFactorSchema(EducationBuckets),
					"first_official_language":  splitFactorSchema(FirstLanguageBuckets),
					"second_official_language": splitFactorSchema(SecondLanguageBuckets),
					"canadian_work_experience": splitFactorSchema(WorkExperienceBuckets),
				},
				"additionalProperties": false,
			},
			"spouse_factors": map[string]interface{}{
				"type":     "object",
				"required": []string{"education", "official_language", "canadian_work_experience"},
				"properties": map[string]interface{}{
					"education":                factorSchema(EducationBuckets),
					"official_language":        factorSchema(SecondLanguageBuckets),
					"canadian_work_experience": factorSchema(WorkExperienceBuckets),
				},
				"additionalProperties": false,
			},
			"skill_transferability_factors": map[string]interface{}{
				"type": "object",
				"required": []string{
					"education_canadian_experience", "education_foreign_experience",
					"foreign_canadian_experience", "foreign_experience_language",
					"certificate_language",
				},
				"properties": map[string]interface{}{
					"education_canadian_experience": comboSchema(TransferEducationBuckets, TransferExperienceBuckets),
					"education_foreign_experience":  comboSchema(TransferEducationBuckets, TransferExperienceBuckets),
					"foreign_canadian_experience":   comboSchema(TransferExperienceBuckets, TransferExperienceBuckets),
					"foreign_experience_language":   comboSchema(TransferExperienceBuckets, TransferLanguageBuckets),
					"certificate_language":          factorSchema(CertificateLanguageBuckets),
				},
				"additionalProperties": false,
			},
			"additional_points": map[string]interface{}{
				"type": "object",
				"required": []string{
					"sibling_in_canada", "french_language_skills",
					"canadian_post_secondary", "arranged_employment",
					"provincial_nomination",
				},
				"properties": map[string]interface{}{
					"sibling_in_canada":       pointsLeaf(),
					"french_language_skills":  factorSchema(FrenchBonusBuckets),
					"canadian_post_secondary": factorSchema(CanadianStudyBuckets),
					"arranged_employment":     factorSchema(TEERBuckets),
					"provincial_nomination":   pointsLeaf(),
				},
				"additionalProperties": false,
			},
		},
		"additionalProperties": false,
	}
}
