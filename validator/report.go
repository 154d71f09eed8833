package validator

import (
	"fmt"
	"strings"

	cdaengine "github.com/gocda/engine"
)

const reportRule = "=============================================="

// GenerateReport renders a validation result as the fixed-structure textual
// report consumed verbatim by CLI and inspector front-ends. The section
// headers (VALIDATION REPORT, OVERALL STATUS, STATISTICS, ERRORS, WARNINGS)
// are part of the output contract.
func (v *Validator) GenerateReport(result *cdaengine.ValidationResult) string {
	var sb strings.Builder

	sb.WriteString(reportRule + "\n")
	sb.WriteString("           VALIDATION REPORT\n")
	sb.WriteString(reportRule + "\n\n")

	status := "✓ VALID"
	if !result.Valid {
		status = "✗ INVALID"
	}
	fmt.Fprintf(&sb, "OVERALL STATUS: %s\n\n", status)

	sb.WriteString("STATISTICS:\n")
	fmt.Fprintf(&sb, "  Elements validated: %d\n", result.Statistics.ElementsValidated)
	fmt.Fprintf(&sb, "  Rules checked:      %d\n", result.Statistics.RulesChecked)
	fmt.Fprintf(&sb, "  Errors:             %d\n", result.ErrorCount())
	fmt.Fprintf(&sb, "  Warnings:           %d\n", result.WarningCount())
	fmt.Fprintf(&sb, "  Duration:           %s\n", result.Duration)

	if result.ErrorCount() > 0 {
		sb.WriteString("\nERRORS:\n")
		writeIssues(&sb, result.Errors)
	}
	if result.WarningCount() > 0 {
		sb.WriteString("\nWARNINGS:\n")
		writeIssues(&sb, result.Warnings)
	}

	return sb.String()
}

func writeIssues(sb *strings.Builder, issues []cdaengine.Issue) {
	for _, issue := range issues {
		fmt.Fprintf(sb, "  [%s] %s\n", issue.Code, issue.Message)
		if issue.XPath != "" {
			fmt.Fprintf(sb, "      at %s\n", issue.XPath)
		}
	}
}
