// internal/workers/communication/send-result-notification/service.go
package sendresultnotification

import (
	"fmt"
	"strings"

	"crs-workers/internal/models"
)

// buildSubject and buildBody render the score summary. Plain text, the
// client renders nothing.
func buildSubject(input *Input) string {
	return fmt.Sprintf("Your Comprehensive Ranking System score: %d", input.Total)
}

func buildBody(input *Input) string {
	var b strings.Builder

	name := input.RecipientName
	if name == "" {
		name = "Applicant"
	}

	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	fmt.Fprintf(&b, "Your assessment has been scored. Total: %d points", input.Total)
	if input.Breakdown.TotalCapApplied {
		b.WriteString(" (capped at the program maximum)")
	}
	b.WriteString(".\n\n")

	writeSection(&b, "Core human capital", input.Breakdown.Core)
	if input.Breakdown.WithSpouse {
		writeSection(&b, "Spouse factors", input.Breakdown.Spouse)
	}
	writeSection(&b, "Skill transferability", input.Breakdown.Transferability)
	writeSection(&b, "Additional points", input.Breakdown.Additional)

	fmt.Fprintf(&b, "\nScored under rule set %s.\n", input.Breakdown.RulesVersion)
	fmt.Fprintf(&b, "Reference: %s\n", input.AssessmentID)

	return b.String()
}

func writeSection(b *strings.Builder, title string, section models.SectionScore) {
	fmt.Fprintf(b, "%s: %d", title, section.Total())
	if section.CapApplied {
		fmt.Fprintf(b, " (capped from %d)", section.Subtotal)
	}
	b.WriteString("\n")
}

func buildSMSBody(input *Input) string {
	return fmt.Sprintf("CRS assessment scored: %d points. Reference %s.", input.Total, input.AssessmentID)
}
