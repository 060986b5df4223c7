// internal/workers/recommendation/build-recommendation/service.go
package buildrecommendation

import (
	"fmt"
	"sort"

	"crs-workers/internal/crs/engine"
	"crs-workers/internal/models"
)

// factor maxima used to size the improvement hints. Values mirror the
// without-spouse rule table so a hint never promises more than the
// table can award.
const (
	maxFirstLanguagePerSkill  = 34
	maxSecondLanguagePerSkill = 6
	maxEducation              = 150
	maxCanadianWork           = 80
)

// buildHints derives deterministic improvement suggestions from the
// breakdown, largest potential first. Pure function, no I/O.
func buildHints(profile *models.ApplicantProfile, breakdown models.ScoreBreakdown) []models.Recommendation {
	var hints []models.Recommendation

	coreByFactor := map[string]models.FactorScore{}
	for _, f := range breakdown.Core.Factors {
		coreByFactor[f.Factor] = f
	}

	// Language is the factor an applicant can most readily move
	languageGap := 0
	for _, skill := range models.AllSkills {
		if f, ok := coreByFactor["first_language_"+string(skill)]; ok {
			if gap := maxFirstLanguagePerSkill - f.Points; gap > 0 {
				languageGap += gap
			}
		}
	}
	if languageGap > 0 {
		hints = append(hints, models.Recommendation{
			Factor:          "first_language",
			Message:         "Higher first-language test results raise every skill factor.",
			PotentialPoints: languageGap,
		})
	}

	hasSecond := false
	for _, f := range breakdown.Core.Factors {
		if f.Factor == "second_language_listening" {
			hasSecond = true
			break
		}
	}
	if !hasSecond {
		hints = append(hints, models.Recommendation{
			Factor:          "second_language",
			Message:         "Results in a second official language add points in all four skills.",
			PotentialPoints: 4 * maxSecondLanguagePerSkill,
		})
	}

	if f, ok := coreByFactor["education"]; ok {
		if gap := maxEducation - f.Points; gap > 0 {
			hints = append(hints, models.Recommendation{
				Factor:          "education",
				Message:         "A higher completed credential increases the education factor.",
				PotentialPoints: gap,
			})
		}
	}

	if f, ok := coreByFactor["canadian_work_experience"]; ok {
		if gap := maxCanadianWork - f.Points; gap > 0 {
			hints = append(hints, models.Recommendation{
				Factor:          "canadian_work_experience",
				Message:         "Additional years of Canadian work experience increase this factor until the five-year tier.",
				PotentialPoints: gap,
			})
		}
	}

	if !breakdown.Transferability.CapApplied {
		if gap := engine.TransferabilityCap - breakdown.Transferability.Subtotal; gap > 0 {
			hints = append(hints, models.Recommendation{
				Factor:          "skill_transferability",
				Message:         "Combined education, experience and language gains also raise the transferability section.",
				PotentialPoints: gap,
			})
		}
	}

	if profile != nil && !profile.HasProvincialNomination {
		hints = append(hints, models.Recommendation{
			Factor:          "provincial_nomination",
			Message:         "A provincial nomination adds 600 points.",
			PotentialPoints: 600,
		})
	}

	sort.SliceStable(hints, func(i, j int) bool {
		return hints[i].PotentialPoints > hints[j].PotentialPoints
	})

	return hints
}

// summarize renders the breakdown into the context block sent to the
// narrative service.
func summarize(breakdown models.ScoreBreakdown) string {
	return fmt.Sprintf(
		"total %d (core %d, spouse %d, transferability %d, additional %d), with spouse: %t, rules %s",
		breakdown.Total,
		breakdown.Core.Total(),
		breakdown.Spouse.Total(),
		breakdown.Transferability.Total(),
		breakdown.Additional.Total(),
		breakdown.WithSpouse,
		breakdown.RulesVersion,
	)
}
