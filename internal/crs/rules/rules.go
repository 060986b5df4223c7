// internal/crs/rules/rules.go
// Package rules loads the versioned CRS point tables and resolves bucket
// keys to point values. A Table is immutable after Load and safe for
// concurrent lookups.
package rules

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"crs-workers/pkg/ruledoc"
)

// DefaultDocument is the rule table shipped with the binary, used when
// no external document is configured.
//
//go:embed default_rules.json
var DefaultDocument []byte

// UnmappedBucketError reports a derived bucket key absent from the
// loaded table. It signals a table/profile version mismatch, never a
// zero score.
type UnmappedBucketError struct {
	Category string
	Bucket   string
}

func (e *UnmappedBucketError) Error() string {
	return fmt.Sprintf("bucket %q not mapped in rule table category %q", e.Bucket, e.Category)
}

// splitFactor is a bucket→points table under the with/without-spouse split.
type splitFactor struct {
	WithSpouse    map[string]int `json:"with_spouse"`
	WithoutSpouse map[string]int `json:"without_spouse"`
}

func (f splitFactor) table(withSpouse bool) map[string]int {
	if withSpouse {
		return f.WithSpouse
	}
	return f.WithoutSpouse
}

// comboFactor is a two-axis row→column→points table.
type comboFactor map[string]map[string]int

type document struct {
	ruledoc.Metadata

	Core struct {
		Age            splitFactor `json:"age"`
		Education      splitFactor `json:"education"`
		FirstLanguage  splitFactor `json:"first_official_language"`
		SecondLanguage splitFactor `json:"second_official_language"`
		CanadianWork   splitFactor `json:"canadian_work_experience"`
	} `json:"core_human_capital_factors"`

	Spouse struct {
		Education    map[string]int `json:"education"`
		Language     map[string]int `json:"official_language"`
		CanadianWork map[string]int `json:"canadian_work_experience"`
	} `json:"spouse_factors"`

	Transfer struct {
		EducationCanadian comboFactor    `json:"education_canadian_experience"`
		EducationForeign  comboFactor    `json:"education_foreign_experience"`
		ForeignCanadian   comboFactor    `json:"foreign_canadian_experience"`
		ForeignLanguage   comboFactor    `json:"foreign_experience_language"`
		Certificate       map[string]int `json:"certificate_language"`
	} `json:"skill_transferability_factors"`

	Additional struct {
		Sibling               int            `json:"sibling_in_canada"`
		French                map[string]int `json:"french_language_skills"`
		CanadianPostSecondary map[string]int `json:"canadian_post_secondary"`
		ArrangedEmployment    map[string]int `json:"arranged_employment"`
		ProvincialNomination  int            `json:"provincial_nomination"`
	} `json:"additional_points"`
}

// Table is a loaded, schema-validated rule document.
type Table struct {
	doc document
}

// Load validates a rule document against the shared schema and decodes
// it. A document missing any required leaf is rejected here, before any
// evaluation can consult it.
func Load(data []byte) (*Table, error) {
	schemaLoader := gojsonschema.NewGoLoader(ruledoc.DocumentSchema())
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("rule document validation failed: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("invalid rule document: %s", strings.Join(details, "; "))
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode rule document: %w", err)
	}
	return &Table{doc: doc}, nil
}

// Metadata returns the document's version envelope.
func (t *Table) Metadata() ruledoc.Metadata {
	return t.doc.Metadata
}

// Version returns the document version string.
func (t *Table) Version() string {
	return t.doc.Version
}

func lookup(category string, table map[string]int, bucket string) (int, error) {
	points, ok := table[bucket]
	if !ok {
		return 0, &UnmappedBucketError{Category: category, Bucket: bucket}
	}
	return points, nil
}

func lookupCombo(category string, table comboFactor, row, col string) (int, error) {
	cols, ok := table[row]
	if !ok {
		return 0, &UnmappedBucketError{Category: category, Bucket: row}
	}
	points, ok := cols[col]
	if !ok {
		return 0, &UnmappedBucketError{Category: category, Bucket: row + "/" + col}
	}
	return points, nil
}

// Age resolves the age factor under the marital-status table split.
func (t *Table) Age(bucket string, withSpouse bool) (int, error) {
	return lookup("core.age", t.doc.Core.Age.table(withSpouse), bucket)
}

// Education resolves the education factor.
func (t *Table) Education(bucket string, withSpouse bool) (int, error) {
	return lookup("core.education", t.doc.Core.Education.table(withSpouse), bucket)
}

// FirstLanguage resolves one skill of the first official language.
func (t *Table) FirstLanguage(bucket string, withSpouse bool) (int, error) {
	return lookup("core.first_official_language", t.doc.Core.FirstLanguage.table(withSpouse), bucket)
}

// SecondLanguage resolves one skill of the second official language.
func (t *Table) SecondLanguage(bucket string, withSpouse bool) (int, error) {
	return lookup("core.second_official_language", t.doc.Core.SecondLanguage.table(withSpouse), bucket)
}

// CanadianWork resolves the Canadian work experience factor.
func (t *Table) CanadianWork(bucket string, withSpouse bool) (int, error) {
	return lookup("core.canadian_work_experience", t.doc.Core.CanadianWork.table(withSpouse), bucket)
}

// SpouseEducation resolves the accompanying spouse's education factor.
func (t *Table) SpouseEducation(bucket string) (int, error) {
	return lookup("spouse.education", t.doc.Spouse.Education, bucket)
}

// SpouseLanguage resolves one skill of the spouse's language factor.
func (t *Table) SpouseLanguage(bucket string) (int, error) {
	return lookup("spouse.official_language", t.doc.Spouse.Language, bucket)
}

// SpouseCanadianWork resolves the spouse's Canadian work experience.
func (t *Table) SpouseCanadianWork(bucket string) (int, error) {
	return lookup("spouse.canadian_work_experience", t.doc.Spouse.CanadianWork, bucket)
}

// EducationCanadianExperience resolves the education × Canadian
// experience transferability combination.
func (t *Table) EducationCanadianExperience(education, experience string) (int, error) {
	return lookupCombo("transfer.education_canadian_experience", t.doc.Transfer.EducationCanadian, education, experience)
}

// EducationForeignExperience resolves education × foreign experience.
func (t *Table) EducationForeignExperience(education, experience string) (int, error) {
	return lookupCombo("transfer.education_foreign_experience", t.doc.Transfer.EducationForeign, education, experience)
}

// ForeignCanadianExperience resolves foreign × Canadian experience.
func (t *Table) ForeignCanadianExperience(foreign, canadian string) (int, error) {
	return lookupCombo("transfer.foreign_canadian_experience", t.doc.Transfer.ForeignCanadian, foreign, canadian)
}

// ForeignExperienceLanguage resolves foreign experience × first-language
// proficiency.
func (t *Table) ForeignExperienceLanguage(foreign, language string) (int, error) {
	return lookupCombo("transfer.foreign_experience_language", t.doc.Transfer.ForeignLanguage, foreign, language)
}

// CertificateLanguage resolves the certificate-of-qualification bonus
// for a qualifying language bucket.
func (t *Table) CertificateLanguage(bucket string) (int, error) {
	return lookup("transfer.certificate_language", t.doc.Transfer.Certificate, bucket)
}

// SiblingBonus returns the flat sibling-in-Canada bonus.
func (t *Table) SiblingBonus() int {
	return t.doc.Additional.Sibling
}

// FrenchBonus resolves the French-language bonus tier.
func (t *Table) FrenchBonus(bucket string) (int, error) {
	return lookup("additional.french_language_skills", t.doc.Additional.French, bucket)
}

// CanadianPostSecondary resolves the Canadian study bonus tier.
func (t *Table) CanadianPostSecondary(bucket string) (int, error) {
	return lookup("additional.canadian_post_secondary", t.doc.Additional.CanadianPostSecondary, bucket)
}

// ArrangedEmployment resolves the job-offer bonus for a TEER category.
func (t *Table) ArrangedEmployment(teer string) (int, error) {
	return lookup("additional.arranged_employment", t.doc.Additional.ArrangedEmployment, teer)
}

// NominationBonus returns the flat provincial-nomination bonus.
func (t *Table) NominationBonus() int {
	return t.doc.Additional.ProvincialNomination
}
