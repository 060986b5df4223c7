// internal/crs/engine/transferability.go
package engine

import (
	"crs-workers/internal/crs/clb"
	"crs-workers/internal/crs/rules"
	"crs-workers/internal/models"
)

// transferability computes the cross-factor bonus section. The two
// education combinations and the two experience combinations each share
// a 50-point sub-cap before the 100-point section cap applies.
func (e *Engine) transferability(profile models.ApplicantProfile, first clb.Levels) (models.SectionScore, error) {
	eduBucket := rules.TransferEducationBucket(profile.EducationLevel)
	canadianBucket := rules.TransferExperienceBucket(profile.CanadianWorkYears)
	foreignBucket := rules.TransferExperienceBucket(profile.ForeignWorkYears)
	languageBucket := rules.TransferLanguageBucket(first.Lowest())

	eduCanadian, err := e.table.EducationCanadianExperience(eduBucket, canadianBucket)
	if err != nil {
		return models.SectionScore{}, err
	}
	eduForeign, err := e.table.EducationForeignExperience(eduBucket, foreignBucket)
	if err != nil {
		return models.SectionScore{}, err
	}
	educationSubtotal := min(eduCanadian+eduForeign, transferSubCap)

	foreignCanadian, err := e.table.ForeignCanadianExperience(foreignBucket, canadianBucket)
	if err != nil {
		return models.SectionScore{}, err
	}
	foreignLanguage, err := e.table.ForeignExperienceLanguage(foreignBucket, languageBucket)
	if err != nil {
		return models.SectionScore{}, err
	}
	experienceSubtotal := min(foreignCanadian+foreignLanguage, transferSubCap)

	certificate := 0
	certificateBucket := ""
	if profile.TradeCertificate {
		if bucket, ok := rules.CertificateLanguageBucket(first.Lowest()); ok {
			certificate, err = e.table.CertificateLanguage(bucket)
			if err != nil {
				return models.SectionScore{}, err
			}
			certificateBucket = bucket
		}
	}

	factors := []models.FactorScore{
		{Factor: "education_canadian_experience", Bucket: eduBucket + "/" + canadianBucket, Points: eduCanadian},
		{Factor: "education_foreign_experience", Bucket: eduBucket + "/" + foreignBucket, Points: eduForeign},
		{Factor: "foreign_canadian_experience", Bucket: foreignBucket + "/" + canadianBucket, Points: foreignCanadian},
		{Factor: "foreign_experience_language", Bucket: foreignBucket + "/" + languageBucket, Points: foreignLanguage},
	}
	if profile.TradeCertificate {
		factors = append(factors, models.FactorScore{
			Factor: "certificate_language",
			Bucket: certificateBucket,
			Points: certificate,
		})
	}

	// The subtotal already reflects the two sub-caps, so it can be less
	// than the sum of the recorded factor contributions.
	subtotal := educationSubtotal + experienceSubtotal + certificate
	return models.SectionScore{
		Factors:    factors,
		Subtotal:   subtotal,
		Cap:        TransferabilityCap,
		CapApplied: subtotal > TransferabilityCap,
	}, nil
}
