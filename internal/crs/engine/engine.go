// internal/crs/engine/engine.go
// Package engine evaluates applicant profiles against a loaded rule
// table. Evaluate is a pure function of (profile, table): no I/O, no
// mutable state, safe for any number of concurrent calls against the
// same Engine.
package engine

import (
	"crs-workers/internal/crs/clb"
	"crs-workers/internal/crs/rules"
	"crs-workers/internal/models"
)

// Section caps. The core cap depends on the with/without-spouse split;
// additional points carry no section cap, only the overall ceiling.
const (
	CoreCapWithSpouse    = 460
	CoreCapWithoutSpouse = 500
	SpouseCap            = 40
	TransferabilityCap   = 100
	transferSubCap       = 50
	TotalCap             = 1200
)

// Engine holds the immutable rule table injected at construction.
type Engine struct {
	table *rules.Table
}

// New builds an engine over a loaded rule table.
func New(table *rules.Table) *Engine {
	return &Engine{table: table}
}

// RulesVersion returns the version of the loaded rule table.
func (e *Engine) RulesVersion() string {
	return e.table.Version()
}

// Evaluate computes the full score breakdown for one profile. Any
// component error aborts the evaluation; partial breakdowns are never
// returned.
func (e *Engine) Evaluate(profile models.ApplicantProfile) (*models.ScoreBreakdown, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	// The with/without-spouse table split is decided once and applied
	// to every core factor and the core cap.
	withSpouse := profile.ScoredWithSpouse()

	firstLevels, err := clb.ResolveAll(profile.FirstLanguage)
	if err != nil {
		return nil, err
	}

	var secondLevels *clb.Levels
	if profile.SecondLanguage != nil {
		levels, err := clb.ResolveAll(*profile.SecondLanguage)
		if err != nil {
			return nil, err
		}
		secondLevels = &levels
	}

	core, err := e.coreSection(profile, withSpouse, firstLevels, secondLevels)
	if err != nil {
		return nil, err
	}

	spouse, err := e.spouseSection(profile, withSpouse)
	if err != nil {
		return nil, err
	}

	transfer, err := e.transferability(profile, firstLevels)
	if err != nil {
		return nil, err
	}

	additional, err := e.additionalPoints(profile, firstLevels, secondLevels)
	if err != nil {
		return nil, err
	}

	total := core.Total() + spouse.Total() + transfer.Total() + additional.Total()
	capped := total > TotalCap
	if capped {
		total = TotalCap
	}

	return &models.ScoreBreakdown{
		Core:            core,
		Spouse:          spouse,
		Transferability: transfer,
		Additional:      additional,
		WithSpouse:      withSpouse,
		Total:           total,
		TotalCapApplied: capped,
		RulesVersion:    e.table.Version(),
	}, nil
}

// section assembles factor contributions under a cap. A zero cap means
// the section is uncapped.
func section(sectionCap int, factors []models.FactorScore) models.SectionScore {
	subtotal := 0
	for _, f := range factors {
		subtotal += f.Points
	}
	return models.SectionScore{
		Factors:    factors,
		Subtotal:   subtotal,
		Cap:        sectionCap,
		CapApplied: sectionCap > 0 && subtotal > sectionCap,
	}
}

func (e *Engine) coreSection(profile models.ApplicantProfile, withSpouse bool, first clb.Levels, second *clb.Levels) (models.SectionScore, error) {
	sectionCap := CoreCapWithoutSpouse
	if withSpouse {
		sectionCap = CoreCapWithSpouse
	}

	var factors []models.FactorScore

	ageBucket := rules.AgeBucket(profile.Age)
	points, err := e.table.Age(ageBucket, withSpouse)
	if err != nil {
		return models.SectionScore{}, err
	}
	factors = append(factors, models.FactorScore{Factor: "age", Bucket: ageBucket, Points: points})

	eduBucket := rules.EducationBucket(profile.EducationLevel)
	points, err = e.table.Education(eduBucket, withSpouse)
	if err != nil {
		return models.SectionScore{}, err
	}
	factors = append(factors, models.FactorScore{Factor: "education", Bucket: eduBucket, Points: points})

	for _, skill := range models.AllSkills {
		bucket := rules.FirstLanguageBucket(first.Level(skill))
		points, err := e.table.FirstLanguage(bucket, withSpouse)
		if err != nil {
			return models.SectionScore{}, err
		}
		factors = append(factors, models.FactorScore{
			Factor: "first_language_" + string(skill),
			Bucket: bucket,
			Points: points,
		})
	}

	if second != nil {
		for _, skill := range models.AllSkills {
			bucket := rules.SecondLanguageBucket(second.Level(skill))
			points, err := e.table.SecondLanguage(bucket, withSpouse)
			if err != nil {
				return models.SectionScore{}, err
			}
			factors = append(factors, models.FactorScore{
				Factor: "second_language_" + string(skill),
				Bucket: bucket,
				Points: points,
			})
		}
	}

	workBucket := rules.WorkExperienceBucket(profile.CanadianWorkYears)
	points, err = e.table.CanadianWork(workBucket, withSpouse)
	if err != nil {
		return models.SectionScore{}, err
	}
	factors = append(factors, models.FactorScore{Factor: "canadian_work_experience", Bucket: workBucket, Points: points})

	return section(sectionCap, factors), nil
}

// spouseSection is identically zero without an accompanying spouse; the
// spouse factors are never computed in that case.
func (e *Engine) spouseSection(profile models.ApplicantProfile, withSpouse bool) (models.SectionScore, error) {
	if !withSpouse {
		return models.SectionScore{Cap: SpouseCap}, nil
	}

	var factors []models.FactorScore

	eduBucket := rules.EducationBucket(profile.Spouse.EducationLevel)
	points, err := e.table.SpouseEducation(eduBucket)
	if err != nil {
		return models.SectionScore{}, err
	}
	factors = append(factors, models.FactorScore{Factor: "spouse_education", Bucket: eduBucket, Points: points})

	if profile.Spouse.LanguageTest != nil {
		levels, err := clb.ResolveAll(*profile.Spouse.LanguageTest)
		if err != nil {
			return models.SectionScore{}, err
		}
		for _, skill := range models.AllSkills {
			bucket := rules.SecondLanguageBucket(levels.Level(skill))
			points, err := e.table.SpouseLanguage(bucket)
			if err != nil {
				return models.SectionScore{}, err
			}
			factors = append(factors, models.FactorScore{
				Factor: "spouse_language_" + string(skill),
				Bucket: bucket,
				Points: points,
			})
		}
	}

	workBucket := rules.WorkExperienceBucket(profile.Spouse.CanadianWorkYears)
	points, err = e.table.SpouseCanadianWork(workBucket)
	if err != nil {
		return models.SectionScore{}, err
	}
	factors = append(factors, models.FactorScore{Factor: "spouse_work_experience", Bucket: workBucket, Points: points})

	return section(SpouseCap, factors), nil
}
