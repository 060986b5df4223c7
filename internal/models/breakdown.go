// internal/models/breakdown.go
package models

// FactorScore is one scored line item inside a section.
type FactorScore struct {
	Factor string `json:"factor"`
	Bucket string `json:"bucket"`
	Points int    `json:"points"`
}

// SectionScore groups the factor scores of one ranking section and
// records whether the section cap truncated the raw subtotal.
type SectionScore struct {
	Factors    []FactorScore `json:"factors"`
	Subtotal   int           `json:"subtotal"`
	Cap        int           `json:"cap"`
	CapApplied bool          `json:"capApplied"`
}

// Total returns the capped subtotal of the section.
func (s SectionScore) Total() int {
	if s.CapApplied {
		return s.Cap
	}
	return s.Subtotal
}

// ScoreBreakdown is the full result of one evaluation.
type ScoreBreakdown struct {
	Core            SectionScore `json:"core"`
	Spouse          SectionScore `json:"spouse"`
	Transferability SectionScore `json:"transferability"`
	Additional      SectionScore `json:"additional"`

	WithSpouse      bool   `json:"withSpouse"`
	Total           int    `json:"total"`
	TotalCapApplied bool   `json:"totalCapApplied"`
	RulesVersion    string `json:"rulesVersion"`
}

// Recommendation is one improvement suggestion derived from a breakdown.
type Recommendation struct {
	Factor          string `json:"factor"`
	Message         string `json:"message"`
	PotentialPoints int    `json:"potentialPoints"`
}
