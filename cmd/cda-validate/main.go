// Package main implements the cda-validate CLI tool.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	cda "github.com/gocda/engine"
	"github.com/gocda/engine/engine"
	"github.com/gocda/engine/pkg/logger"
	"github.com/gocda/engine/serializer"
	"github.com/gocda/engine/validator"
)

const (
	version = "0.1.0"
	usage   = `cda-validate - CDA R2 Document Validator

Usage:
  cda-validate [options] <file>...
  cda-validate [options] -           (read from stdin)
  cat document.xml | cda-validate -  (pipe input)

Examples:
  cda-validate summary.xml
  cda-validate -release R2.1 summary.xml
  cda-validate -output json summary.xml
  cda-validate -report summary.xml
  cda-validate -query '//section' summary.xml
  cda-validate *.xml
  cat summary.xml | cda-validate -

Options:
`
)

// OutputFormat specifies the output format.
type OutputFormat string

// Output format constants.
const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

// Config holds CLI configuration.
type Config struct {
	Release     string
	Output      OutputFormat
	Report      bool
	Query       string
	Strict      bool
	Fast        bool
	Quiet       bool
	Verbose     bool
	LogLevel    string
	ShowVersion bool
	Help        bool
	Files       []string
}

// ValidationOutput represents the JSON output structure.
type ValidationOutput struct {
	Document string        `json:"document"`
	Valid    bool          `json:"valid"`
	Errors   int           `json:"errors"`
	Warnings int           `json:"warnings"`
	Issues   []IssueOutput `json:"issues,omitempty"`
	Duration string        `json:"duration"`
}

// IssueOutput represents a single issue in JSON output.
type IssueOutput struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	XPath    string `json:"xpath,omitempty"`
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("cda-validate v%s\n", version)
		os.Exit(0)
	}

	if config.Help || len(config.Files) == 0 {
		flag.Usage()
		os.Exit(0)
	}

	exitCode := run(config)
	os.Exit(exitCode)
}

func parseFlags() *Config {
	config := &Config{
		Release: string(cda.R2),
		Output:  OutputText,
	}

	var output string

	flag.StringVar(&config.Release, "release", string(cda.R2), "CDA release (R2, R2.1)")
	flag.StringVar(&output, "output", "text", "Output format: text, json")
	flag.BoolVar(&config.Report, "report", false, "Print the full validation report")
	flag.StringVar(&config.Query, "query", "", "Evaluate a path expression instead of validating")
	flag.BoolVar(&config.Strict, "strict", false, "Stop at the first error")
	flag.BoolVar(&config.Fast, "fast", false, "Skip conformance rules, structural checks only")
	flag.BoolVar(&config.Quiet, "quiet", false, "Only show errors and warnings")
	flag.BoolVar(&config.Verbose, "verbose", false, "Show detailed output")
	flag.StringVar(&config.LogLevel, "log", "", "Log level: debug, info, warn, error, none")
	flag.BoolVar(&config.ShowVersion, "v", false, "Show version")
	flag.BoolVar(&config.Help, "help", false, "Show help")

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}

	flag.Parse()

	switch strings.ToLower(output) {
	case "json":
		config.Output = OutputJSON
	default:
		config.Output = OutputText
	}

	config.Files = flag.Args()

	return config
}

func run(config *Config) int {
	release := cda.CDARelease(config.Release)
	if !release.IsValid() {
		fmt.Fprintf(os.Stderr, "Error: unknown CDA release %q\n", config.Release)
		return 1
	}

	opts := []cda.Option{}
	if config.Strict {
		opts = append(opts, cda.StrictOptions()...)
	}
	if config.Fast {
		opts = append(opts, cda.FastOptions()...)
	}

	switch {
	case config.Quiet:
		logger.Disable()
	case config.LogLevel != "":
		logger.SetLevel(logger.ParseLevel(config.LogLevel))
	case config.Verbose:
		logger.SetLevel(logger.LevelDebug)
	}

	ctx := context.Background()
	eng, err := engine.New(ctx, release, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize engine: %v\n", err)
		return 1
	}
	defer eng.Close()

	if config.Verbose {
		fmt.Fprintf(os.Stderr, "Engine ready (CDA %s). Processing %d file(s)...\n\n", release, len(config.Files))
	}

	hasErrors := false
	outputs := make([]ValidationOutput, 0, len(config.Files))

	for _, file := range config.Files {
		if file == "-" {
			data, readErr := io.ReadAll(os.Stdin)
			if readErr != nil {
				fmt.Fprintf(os.Stderr, "Error reading stdin: %v\n", readErr)
				hasErrors = true
				continue
			}

			output, fileHasErrors := processData(ctx, eng, data, "stdin", config)
			outputs = append(outputs, output)
			if fileHasErrors {
				hasErrors = true
			}
			continue
		}

		matches, globErr := filepath.Glob(file)
		if globErr != nil {
			fmt.Fprintf(os.Stderr, "Error with pattern '%s': %v\n", file, globErr)
			hasErrors = true
			continue
		}

		if len(matches) == 0 {
			fmt.Fprintf(os.Stderr, "No files match pattern: %s\n", file)
			hasErrors = true
			continue
		}

		for _, match := range matches {
			output, fileHasErrors := processFile(ctx, eng, match, config)
			outputs = append(outputs, output)
			if fileHasErrors {
				hasErrors = true
			}
		}
	}

	if config.Output == OutputJSON {
		jsonOutput, _ := json.MarshalIndent(outputs, "", "  ")
		fmt.Println(string(jsonOutput))
	}

	if hasErrors {
		return 1
	}
	return 0
}

func processFile(ctx context.Context, eng *engine.Engine, path string, config *Config) (ValidationOutput, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		output := ValidationOutput{
			Document: path,
			Valid:    false,
			Errors:   1,
			Issues: []IssueOutput{{
				Severity: "error",
				Code:     "exception",
				Message:  fmt.Sprintf("Failed to read file: %v", err),
			}},
		}
		if config.Output == OutputText {
			fmt.Printf("Error reading %s: %v\n", path, err)
		}
		return output, true
	}

	return processData(ctx, eng, data, path, config)
}

func processData(ctx context.Context, eng *engine.Engine, data []byte, name string, config *Config) (ValidationOutput, bool) {
	if config.Query != "" {
		return queryData(ctx, eng, data, name, config)
	}
	return validateData(ctx, eng, data, name, config)
}

func queryData(ctx context.Context, eng *engine.Engine, data []byte, name string, config *Config) (ValidationOutput, bool) {
	doc, err := eng.Parse(ctx, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing %s: %v\n", name, err)
		return ValidationOutput{Document: name, Valid: false, Errors: 1}, true
	}

	results, err := eng.Query(ctx, doc, config.Query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error evaluating query against %s: %v\n", name, err)
		return ValidationOutput{Document: name, Valid: false, Errors: 1}, true
	}

	fmt.Printf("== %s ==\n", name)
	fmt.Printf("%d match(es) for %s\n", len(results), config.Query)
	for _, el := range results {
		fmt.Println(serializer.ElementToString(el))
	}
	fmt.Println()

	return ValidationOutput{Document: name, Valid: true}, false
}

func validateData(ctx context.Context, eng *engine.Engine, data []byte, name string, config *Config) (ValidationOutput, bool) {
	startTime := time.Now()

	result, err := eng.ParseAndValidate(ctx, data)
	duration := time.Since(startTime)

	if err != nil {
		output := ValidationOutput{
			Document: name,
			Valid:    false,
			Errors:   1,
			Duration: duration.String(),
			Issues: []IssueOutput{{
				Severity: "error",
				Code:     "exception",
				Message:  fmt.Sprintf("Validation failed: %v", err),
			}},
		}
		if config.Output == OutputText {
			fmt.Printf("Error validating %s: %v\n", name, err)
		}
		return output, true
	}
	defer result.Release()

	output := ValidationOutput{
		Document: name,
		Valid:    !result.HasErrors(),
		Errors:   result.ErrorCount(),
		Warnings: result.WarningCount(),
		Duration: duration.Round(time.Microsecond).String(),
	}

	for _, iss := range result.Issues() {
		output.Issues = append(output.Issues, IssueOutput{
			Severity: string(iss.Severity),
			Code:     iss.Code,
			Message:  iss.Message,
			XPath:    iss.XPath,
		})
	}

	if config.Output == OutputText {
		if config.Report {
			v := validator.New(
				validator.WithCDASchema(true),
				validator.WithConformanceRules(true),
			)
			fmt.Printf("== %s ==\n", name)
			fmt.Print(v.GenerateReport(result))
			fmt.Println()
		} else {
			printTextResult(name, result, duration, config)
		}
	}

	return output, result.HasErrors()
}

func printTextResult(name string, result *cda.ValidationResult, duration time.Duration, config *Config) {
	status := "VALID"
	if result.HasErrors() {
		status = "INVALID"
	}

	fmt.Printf("== %s ==\n", name)
	fmt.Printf("Status: %s\n", status)
	fmt.Printf("Errors: %d, Warnings: %d\n", result.ErrorCount(), result.WarningCount())
	if config.Verbose {
		fmt.Printf("Duration: %s\n", duration.Round(time.Microsecond))
	}

	issues := result.Issues()
	if len(issues) > 0 {
		fmt.Println("\nIssues:")
		for _, iss := range issues {
			severityIcon := getSeverityIcon(iss.Severity)
			location := ""
			if iss.XPath != "" {
				location = fmt.Sprintf(" @ %s", iss.XPath)
			}

			fmt.Printf("  %s [%s] %s%s\n", severityIcon, iss.Code, iss.Message, location)
		}
	}

	fmt.Println()
}

func getSeverityIcon(severity cda.Severity) string {
	switch severity {
	case cda.SeverityError, cda.SeverityFatal:
		return "ERROR"
	case cda.SeverityWarning:
		return "WARN "
	default:
		return "     "
	}
}
