// internal/models/validate.go
package models

import "fmt"

// InvalidProfileError reports a structurally impossible profile: a
// required field missing, an unknown enum value, or conditional fields
// that contradict each other.
type InvalidProfileError struct {
	Field  string
	Reason string
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("invalid profile field %q: %s", e.Field, e.Reason)
}

func invalidField(field, reason string) error {
	return &InvalidProfileError{Field: field, Reason: reason}
}

var validMaritalStatuses = map[MaritalStatus]bool{
	MaritalSingle: true, MaritalMarried: true, MaritalCommonLaw: true,
	MaritalDivorced: true, MaritalWidowed: true, MaritalSeparated: true,
	MaritalAnnulledMarriage: true,
}

var validEducationLevels = map[EducationLevel]bool{
	EducationLessThanSecondary: true, EducationSecondaryDiploma: true,
	EducationOneYearPostSecondary: true, EducationTwoYearPostSecondary: true,
	EducationBachelorOrThreeYear: true, EducationTwoOrMoreCredentials: true,
	EducationMastersOrProfessional: true, EducationPhD: true,
}

var validLanguageTests = map[LanguageTest]bool{
	TestIELTS: true, TestCELPIP: true, TestTEF: true, TestTCF: true, TestPTE: true,
}

var validTEERs = map[TEERCategory]bool{
	TEER0: true, TEER1: true, TEER2: true, TEER3: true, TEER4: true, TEER5: true,
}

// Validate enforces the profile construction invariants. Conditional
// questionnaire sections become all-or-none constraints here: a spouse
// sub-record is either fully present and consistent, or entirely
// absent. Raw field shape (types, ranges per test) stays with the
// producing layer; scoring-time semantics (brackets, buckets) stay with
// the engine.
func (p ApplicantProfile) Validate() error {
	if p.Age < 17 {
		return invalidField("age", "must be at least 17")
	}
	if !validMaritalStatuses[p.MaritalStatus] {
		return invalidField("maritalStatus", fmt.Sprintf("unknown value %q", p.MaritalStatus))
	}
	if !validEducationLevels[p.EducationLevel] {
		return invalidField("educationLevel", fmt.Sprintf("unknown value %q", p.EducationLevel))
	}
	if !validLanguageTests[p.FirstLanguage.Test] {
		return invalidField("firstLanguage.test", fmt.Sprintf("unknown test %q", p.FirstLanguage.Test))
	}
	if p.SecondLanguage != nil {
		if !validLanguageTests[p.SecondLanguage.Test] {
			return invalidField("secondLanguage.test", fmt.Sprintf("unknown test %q", p.SecondLanguage.Test))
		}
		if p.SecondLanguage.Test.IsFrench() == p.FirstLanguage.Test.IsFrench() {
			return invalidField("secondLanguage.test", "must be in the other official language than the first")
		}
	}
	if p.CanadianWorkYears < 0 {
		return invalidField("canadianWorkYears", "must not be negative")
	}
	if p.ForeignWorkYears < 0 {
		return invalidField("foreignWorkYears", "must not be negative")
	}

	if p.ScoredWithSpouse() {
		if p.Spouse == nil {
			return invalidField("spouse", "required when an accompanying spouse is declared")
		}
		if !validEducationLevels[p.Spouse.EducationLevel] {
			return invalidField("spouse.educationLevel", fmt.Sprintf("unknown value %q", p.Spouse.EducationLevel))
		}
		if p.Spouse.CanadianWorkYears < 0 {
			return invalidField("spouse.canadianWorkYears", "must not be negative")
		}
		if p.Spouse.LanguageTest != nil && !validLanguageTests[p.Spouse.LanguageTest.Test] {
			return invalidField("spouse.languageTest.test", fmt.Sprintf("unknown test %q", p.Spouse.LanguageTest.Test))
		}
	} else if p.Spouse != nil {
		return invalidField("spouse", "present without an accompanying spouse")
	}

	if p.HasJobOffer {
		if p.JobOfferTEER == "" {
			return invalidField("jobOfferTeer", "required when a job offer is declared")
		}
		if !validTEERs[p.JobOfferTEER] {
			return invalidField("jobOfferTeer", fmt.Sprintf("unknown category %q", p.JobOfferTEER))
		}
	} else if p.JobOfferTEER != "" {
		return invalidField("jobOfferTeer", "present without a job offer")
	}

	if p.HasCanadianEducation && p.CanadianEducationYears < 1 {
		return invalidField("canadianEducationYears", "must be at least 1 when a Canadian credential is declared")
	}

	return nil
}
