// cmd/tools/ruletable-check/main.go
package main

import (
	"flag"
	"fmt"
	"os"

	"crs-workers/internal/crs/rules"
	"crs-workers/pkg/ruledoc"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	inspectCmd := flag.NewFlagSet("inspect", flag.ExitOnError)

	// Validate command flags
	validatePath := validateCmd.String("path", "", "Path to rule document (empty for the embedded default)")
	pin := validateCmd.String("pin", "", "Expected document version; validation fails on mismatch")

	// Inspect command flags
	inspectPath := inspectCmd.String("path", "", "Path to rule document (empty for the embedded default)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		table, err := loadTable(*validatePath)
		if err != nil {
			fmt.Printf("Rule document validation failed: %v\n", err)
			os.Exit(1)
		}
		if *pin != "" && table.Version() != *pin {
			fmt.Printf("Rule document version %s does not match pinned version %s\n", table.Version(), *pin)
			os.Exit(1)
		}
		meta := table.Metadata()
		fmt.Printf("Rule document is valid.\n")
		fmt.Printf("  Version:    %s\n", meta.Version)
		fmt.Printf("  Name:       %s\n", meta.Name)
		fmt.Printf("  Updated at: %s\n", meta.UpdatedAt)

	case "inspect":
		inspectCmd.Parse(os.Args[2:])
		table, err := loadTable(*inspectPath)
		if err != nil {
			fmt.Printf("Rule document load failed: %v\n", err)
			os.Exit(1)
		}
		inspect(table)

	case "help":
		fallthrough
	default:
		help()
	}
}

func loadTable(path string) (*rules.Table, error) {
	doc := rules.DefaultDocument
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read rule document: %w", err)
		}
		doc = data
	}
	return rules.Load(doc)
}

// inspect prints the point range of every factor so a table revision
// can be eyeballed against the published CRS grid before rollout.
func inspect(table *rules.Table) {
	meta := table.Metadata()
	fmt.Printf("Rule document %s (%s)\n\n", meta.Version, meta.Name)

	fmt.Println("Core / human capital factors:")
	printSplitRange("age", ruledoc.AgeBuckets(), func(b string, ws bool) (int, error) { return table.Age(b, ws) })
	printSplitRange("education", ruledoc.EducationBuckets, func(b string, ws bool) (int, error) { return table.Education(b, ws) })
	printSplitRange("first_official_language", ruledoc.FirstLanguageBuckets, func(b string, ws bool) (int, error) { return table.FirstLanguage(b, ws) })
	printSplitRange("second_official_language", ruledoc.SecondLanguageBuckets, func(b string, ws bool) (int, error) { return table.SecondLanguage(b, ws) })
	printSplitRange("canadian_work_experience", ruledoc.WorkExperienceBuckets, func(b string, ws bool) (int, error) { return table.CanadianWork(b, ws) })

	fmt.Println("\nSpouse factors:")
	printRange("education", ruledoc.EducationBuckets, table.SpouseEducation)
	printRange("official_language", ruledoc.SecondLanguageBuckets, table.SpouseLanguage)
	printRange("canadian_work_experience", ruledoc.WorkExperienceBuckets, table.SpouseCanadianWork)

	fmt.Println("\nSkill transferability factors:")
	printComboRange("education_canadian_experience", ruledoc.TransferEducationBuckets, ruledoc.TransferExperienceBuckets, table.EducationCanadianExperience)
	printComboRange("education_foreign_experience", ruledoc.TransferEducationBuckets, ruledoc.TransferExperienceBuckets, table.EducationForeignExperience)
	printComboRange("foreign_canadian_experience", ruledoc.TransferExperienceBuckets, ruledoc.TransferExperienceBuckets, table.ForeignCanadianExperience)
	printComboRange("foreign_experience_language", ruledoc.TransferExperienceBuckets, ruledoc.TransferLanguageBuckets, table.ForeignExperienceLanguage)
	printRange("certificate_language", ruledoc.CertificateLanguageBuckets, table.CertificateLanguage)
}

func printSplitRange(name string, buckets []string, get func(string, bool) (int, error)) {
	for _, withSpouse := range []bool{false, true} {
		min, max := -1, -1
		for _, bucket := range buckets {
			pts, err := get(bucket, withSpouse)
			if err != nil {
				fmt.Printf("  %-28s lookup error: %v\n", name, err)
				return
			}
			if min == -1 || pts < min {
				min = pts
			}
			if pts > max {
				max = pts
			}
		}
		label := "without_spouse"
		if withSpouse {
			label = "with_spouse"
		}
		fmt.Printf("  %-28s %-15s %d buckets, %d..%d points\n", name, label, len(buckets), min, max)
	}
}

func printRange(name string, buckets []string, get func(string) (int, error)) {
	min, max := -1, -1
	for _, bucket := range buckets {
		pts, err := get(bucket)
		if err != nil {
			fmt.Printf("  %-28s lookup error: %v\n", name, err)
			return
		}
		if min == -1 || pts < min {
			min = pts
		}
		if pts > max {
			max = pts
		}
	}
	fmt.Printf("  %-28s %d buckets, %d..%d points\n", name, len(buckets), min, max)
}

func printComboRange(name string, rows, cols []string, get func(string, string) (int, error)) {
	min, max := -1, -1
	for _, row := range rows {
		for _, col := range cols {
			pts, err := get(row, col)
			if err != nil {
				fmt.Printf("  %-28s lookup error: %v\n", name, err)
				return
			}
			if min == -1 || pts < min {
				min = pts
			}
			if pts > max {
				max = pts
			}
		}
	}
	fmt.Printf("  %-28s %dx%d cells, %d..%d points\n", name, len(rows), len(cols), min, max)
}

func help() {
	fmt.Print(`
Usage: ruletable-check <command> [flags]

Commands:
  validate Validate a rule document against the schema
  inspect  Print the point ranges of every factor in a document
  help     Show this help message

Examples:
  ruletable-check validate -path configs/crs_rules_2026.json
  ruletable-check validate -path configs/crs_rules_2026.json -pin 2026.1
  ruletable-check inspect

Use 'ruletable-check <command> -h' for more information about a command.
`)
}
