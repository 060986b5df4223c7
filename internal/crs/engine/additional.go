// internal/crs/engine/additional.go
package engine

import (
	"crs-workers/internal/crs/clb"
	"crs-workers/internal/models"
)

// additionalPoints resolves the flat bonus categories. The section has
// no internal cap; only the overall 1200 ceiling applies, which keeps
// the provincial nomination additive rather than an override.
func (e *Engine) additionalPoints(profile models.ApplicantProfile, first clb.Levels, second *clb.Levels) (models.SectionScore, error) {
	var factors []models.FactorScore

	if profile.HasSiblingInCanada {
		factors = append(factors, models.FactorScore{
			Factor: "sibling_in_canada",
			Points: e.table.SiblingBonus(),
		})
	}

	french, err := e.frenchBonus(profile, first, second)
	if err != nil {
		return models.SectionScore{}, err
	}
	if french != nil {
		factors = append(factors, *french)
	}

	if profile.HasCanadianEducation {
		tier := "one_or_two_year"
		if profile.CanadianEducationYears >= 3 {
			tier = "three_year_or_more"
		}
		points, err := e.table.CanadianPostSecondary(tier)
		if err != nil {
			return models.SectionScore{}, err
		}
		factors = append(factors, models.FactorScore{
			Factor: "canadian_post_secondary",
			Bucket: tier,
			Points: points,
		})
	}

	if profile.HasJobOffer {
		// TEER 4 and 5 offers resolve to zero points, not an error.
		points, err := e.table.ArrangedEmployment(string(profile.JobOfferTEER))
		if err != nil {
			return models.SectionScore{}, err
		}
		factors = append(factors, models.FactorScore{
			Factor: "arranged_employment",
			Bucket: string(profile.JobOfferTEER),
			Points: points,
		})
	}

	if profile.HasProvincialNomination {
		factors = append(factors, models.FactorScore{
			Factor: "provincial_nomination",
			Points: e.table.NominationBonus(),
		})
	}

	return section(0, factors), nil
}

// frenchBonus awards the French-language bonus when every French skill
// reaches NCLC 7. The tier depends on whether the applicant's English
// results, when present, all reach CLB 5. French and English results
// are identified by their test, whichever language slot they occupy.
func (e *Engine) frenchBonus(profile models.ApplicantProfile, first clb.Levels, second *clb.Levels) (*models.FactorScore, error) {
	var french, english *clb.Levels

	if profile.FirstLanguage.Test.IsFrench() {
		french = &first
		if second != nil && profile.SecondLanguage != nil && !profile.SecondLanguage.Test.IsFrench() {
			english = second
		}
	} else {
		english = &first
		if second != nil && profile.SecondLanguage != nil && profile.SecondLanguage.Test.IsFrench() {
			french = second
		}
	}

	if french == nil || !french.AllAtLeast(7) {
		return nil, nil
	}

	bucket := "nclc_7_english_clb_4_or_less"
	if english != nil && english.AllAtLeast(5) {
		bucket = "nclc_7_english_clb_5_or_more"
	}

	points, err := e.table.FrenchBonus(bucket)
	if err != nil {
		return nil, err
	}
	return &models.FactorScore{
		Factor: "french_language_skills",
		Bucket: bucket,
		Points: points,
	}, nil
}
