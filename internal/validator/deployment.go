package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// identPattern matches well-formed catalog and schema names.
var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// requiredFiles must exist in a generated tree before deployment.
var requiredFiles = []string{
	"app.yaml",
	"requirements.txt",
	"app/main.py",
}

// recommendedFiles produce warnings when absent.
var recommendedFiles = []string{
	"app/__init__.py",
	".env.example",
}

// PreflightResult collects deployment prerequisite findings. Valid is true
// exactly when no error fired; warnings never block.
type PreflightResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// Preflight checks a generated output tree before deployment: required
// files present, app.yaml parseable, catalog and schema names well formed.
type Preflight struct {
	log *zap.Logger
}

// NewPreflight returns a deployment preflight checker.
func NewPreflight(log *zap.Logger) *Preflight {
	return &Preflight{log: log}
}

// Check runs the preflight rules against the generated tree at dir.
func (p *Preflight) Check(dir, catalog, schema string) PreflightResult {
	result := PreflightResult{}

	for _, rel := range requiredFiles {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			result.Errors = append(result.Errors, "missing required file: "+rel)
		}
	}
	for _, rel := range recommendedFiles {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			result.Warnings = append(result.Warnings, "missing recommended file: "+rel)
		}
	}

	if raw, err := os.ReadFile(filepath.Join(dir, "app.yaml")); err == nil {
		var parsed map[string]any
		if err := yaml.Unmarshal(raw, &parsed); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("invalid app.yaml: %v", err))
		}
	}

	if !identPattern.MatchString(catalog) {
		result.Errors = append(result.Errors, fmt.Sprintf("catalog name %q is not a valid identifier", catalog))
	}
	if !identPattern.MatchString(schema) {
		result.Errors = append(result.Errors, fmt.Sprintf("schema name %q is not a valid identifier", schema))
	}

	result.Valid = len(result.Errors) == 0
	p.log.Info("deployment preflight complete",
		zap.Bool("valid", result.Valid),
		zap.Int("errors", len(result.Errors)),
		zap.Int("warnings", len(result.Warnings)))
	return result
}

// CheckEnvironment reports which of the named environment variables are set.
func CheckEnvironment(required []string) (missing, present []string) {
	for _, name := range required {
		if _, ok := os.LookupEnv(name); ok {
			present = append(present, name)
		} else {
			missing = append(missing, name)
		}
	}
	return missing, present
}
