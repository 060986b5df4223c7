// internal/crs/rules/buckets.go
//
// Bucketers turn raw profile values into table keys. Bucketing stays
// separate from lookup so threshold boundaries live in exactly one place.
package rules

import (
	"strconv"

	"crs-workers/internal/models"
)

// AgeBucket maps an age to its table key: exact-match between 18 and 44,
// open-ended bands either side.
func AgeBucket(age int) string {
	switch {
	case age <= 17:
		return "17_or_less"
	case age >= 45:
		return "45_or_older"
	default:
		return strconv.Itoa(age)
	}
}

// EducationBucket maps an education level enum value to its table key.
func EducationBucket(level models.EducationLevel) string {
	return string(level)
}

// FirstLanguageBucket maps a CLB level to the first-language key set.
func FirstLanguageBucket(level int) string {
	switch {
	case level < 4:
		return "less_than_clb_4"
	case level <= 5:
		return "clb_4_or_5"
	case level == 6:
		return "clb_6"
	case level == 7:
		return "clb_7"
	case level == 8:
		return "clb_8"
	case level == 9:
		return "clb_9"
	default:
		return "clb_10_or_more"
	}
}

// SecondLanguageBucket maps a CLB level to the coarser key set shared by
// the second-language and spouse-language tables.
func SecondLanguageBucket(level int) string {
	switch {
	case level <= 4:
		return "clb_4_or_less"
	case level <= 6:
		return "clb_5_or_6"
	case level <= 8:
		return "clb_7_or_8"
	default:
		return "clb_9_or_more"
	}
}

// WorkExperienceBucket maps years of Canadian work experience to its
// table key, exact-match years 1 through 4.
func WorkExperienceBucket(years int) string {
	switch {
	case years <= 0:
		return "none_or_less_than_a_year"
	case years >= 5:
		return "5_years_or_more"
	default:
		return strconv.Itoa(years) + "_year" + plural(years)
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// TransferEducationBucket collapses education into the two-tier key set
// used by the transferability combinations.
func TransferEducationBucket(level models.EducationLevel) string {
	switch level {
	case models.EducationLessThanSecondary, models.EducationSecondaryDiploma:
		return "none_qualifying"
	default:
		return "one_post_secondary_or_more"
	}
}

// TransferExperienceBucket collapses years of experience into the
// three-tier key set used by the transferability combinations.
func TransferExperienceBucket(years int) string {
	switch {
	case years <= 0:
		return "none"
	case years == 1:
		return "one_year"
	default:
		return "two_or_more_years"
	}
}

// TransferLanguageBucket maps the lowest first-language skill level to
// the transferability threshold key set.
func TransferLanguageBucket(lowest int) string {
	switch {
	case lowest < 7:
		return "below_clb_7"
	case lowest <= 8:
		return "clb_7_or_8"
	default:
		return "clb_9_or_more"
	}
}

// CertificateLanguageBucket maps the lowest first-language skill level
// to the certificate-of-qualification key set. Levels under CLB 5 do not
// qualify and return no bucket.
func CertificateLanguageBucket(lowest int) (string, bool) {
	switch {
	case lowest < 5:
		return "", false
	case lowest <= 6:
		return "clb_5_or_6", true
	default:
		return "clb_7_or_more", true
	}
}
