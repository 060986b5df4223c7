// internal/models/profile.go
package models

// MaritalStatus of the principal applicant.
type MaritalStatus string

const (
	MaritalSingle           MaritalStatus = "single"
	MaritalMarried          MaritalStatus = "married"
	MaritalCommonLaw        MaritalStatus = "common_law"
	MaritalDivorced         MaritalStatus = "divorced"
	MaritalWidowed          MaritalStatus = "widowed"
	MaritalSeparated        MaritalStatus = "legally_separated"
	MaritalAnnulledMarriage MaritalStatus = "annulled_marriage"
)

// EducationLevel values mirror the assessment form options.
type EducationLevel string

const (
	EducationLessThanSecondary     EducationLevel = "less_than_secondary"
	EducationSecondaryDiploma      EducationLevel = "secondary_diploma"
	EducationOneYearPostSecondary  EducationLevel = "one_year_post_secondary"
	EducationTwoYearPostSecondary  EducationLevel = "two_year_post_secondary"
	EducationBachelorOrThreeYear   EducationLevel = "bachelor_or_three_year_post_secondary_or_more"
	EducationTwoOrMoreCredentials  EducationLevel = "two_or_more_post_secondary_one_three_year"
	EducationMastersOrProfessional EducationLevel = "masters_or_professional_degree"
	EducationPhD                   EducationLevel = "phd"
)

// LanguageTest identifies a recognised language test provider.
type LanguageTest string

const (
	TestIELTS  LanguageTest = "IELTS"
	TestCELPIP LanguageTest = "CELPIP"
	TestTEF    LanguageTest = "TEF"
	TestTCF    LanguageTest = "TCF"
	TestPTE    LanguageTest = "PTE"
)

// IsFrench reports whether the test measures French proficiency.
// TEF and TCF are French tests, the rest are English.
func (t LanguageTest) IsFrench() bool {
	return t == TestTEF || t == TestTCF
}

// LanguageSkill is one of the four abilities every test reports.
type LanguageSkill string

const (
	SkillListening LanguageSkill = "listening"
	SkillSpeaking  LanguageSkill = "speaking"
	SkillReading   LanguageSkill = "reading"
	SkillWriting   LanguageSkill = "writing"
)

// AllSkills in the order factor tables and breakdowns report them.
var AllSkills = []LanguageSkill{SkillListening, SkillSpeaking, SkillReading, SkillWriting}

// LanguageTestResult carries the raw per-skill scores of one sitting.
type LanguageTestResult struct {
	Test      LanguageTest `json:"test"`
	Listening float64      `json:"listening"`
	Speaking  float64      `json:"speaking"`
	Reading   float64      `json:"reading"`
	Writing   float64      `json:"writing"`
}

// Score returns the raw score for a skill.
func (r LanguageTestResult) Score(skill LanguageSkill) float64 {
	switch skill {
	case SkillListening:
		return r.Listening
	case SkillSpeaking:
		return r.Speaking
	case SkillReading:
		return r.Reading
	case SkillWriting:
		return r.Writing
	}
	return 0
}

// TEERCategory of the arranged employment offer, "teer_0" through "teer_5".
type TEERCategory string

const (
	TEER0 TEERCategory = "teer_0"
	TEER1 TEERCategory = "teer_1"
	TEER2 TEERCategory = "teer_2"
	TEER3 TEERCategory = "teer_3"
	TEER4 TEERCategory = "teer_4"
	TEER5 TEERCategory = "teer_5"
)

// SpouseProfile holds the accompanying spouse or partner factors.
type SpouseProfile struct {
	EducationLevel    EducationLevel      `json:"educationLevel"`
	CanadianWorkYears int                 `json:"canadianWorkYears"`
	LanguageTest      *LanguageTestResult `json:"languageTest,omitempty"`
}

// ApplicantProfile is the full input to a score evaluation.
type ApplicantProfile struct {
	Age           int           `json:"age"`
	MaritalStatus MaritalStatus `json:"maritalStatus"`

	// SpouseIsCitizen and SpouseAccompanying decide whether the spouse
	// factors are scored at all, not just whether a spouse exists.
	SpouseIsCitizen    bool           `json:"spouseIsCitizen"`
	SpouseAccompanying bool           `json:"spouseAccompanying"`
	Spouse             *SpouseProfile `json:"spouse,omitempty"`

	EducationLevel EducationLevel `json:"educationLevel"`

	FirstLanguage  LanguageTestResult  `json:"firstLanguage"`
	SecondLanguage *LanguageTestResult `json:"secondLanguage,omitempty"`

	CanadianWorkYears int `json:"canadianWorkYears"`
	ForeignWorkYears  int `json:"foreignWorkYears"`

	TradeCertificate bool `json:"tradeCertificate"`

	HasJobOffer  bool         `json:"hasJobOffer"`
	JobOfferTEER TEERCategory `json:"jobOfferTeer,omitempty"`

	HasProvincialNomination bool `json:"hasProvincialNomination"`
	HasSiblingInCanada      bool `json:"hasSiblingInCanada"`

	// HasCanadianEducation gates the Canadian study bonus; the years
	// decide its tier.
	HasCanadianEducation   bool `json:"hasCanadianEducation"`
	CanadianEducationYears int  `json:"canadianEducationYears,omitempty"`
}

// ScoredWithSpouse reports whether the with-spouse factor tables apply.
// A spouse who is a citizen or permanent resident, or who is not
// accompanying the applicant, leaves the applicant scored as single.
func (p ApplicantProfile) ScoredWithSpouse() bool {
	if p.MaritalStatus != MaritalMarried && p.MaritalStatus != MaritalCommonLaw {
		return false
	}
	if p.SpouseIsCitizen || !p.SpouseAccompanying {
		return false
	}
	return true
}
