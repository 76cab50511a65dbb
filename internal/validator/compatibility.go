// Package validator checks a mapped project for migration compatibility and
// runs deployment preflight checks on generated output.
package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lakeshift/lakeshift/internal/ir"
)

// Summary counts diagnostics per severity.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"info"`
}

// Report is the outcome of a compatibility check. Compatible is true exactly
// when no ERROR-severity diagnostic fired; warnings never block conversion.
type Report struct {
	Compatible  bool            `json:"compatible"`
	Diagnostics []ir.Diagnostic `json:"issues"`
	Summary     Summary         `json:"summary"`
}

// Validate walks the rule set over a mapped project. It is a pure function:
// the project is never mutated, and identical input yields an identical
// report, diagnostic order included. Diagnostics come back sorted by
// category, ties kept in discovery order. A rule that cannot evaluate
// simply does not fire; no rule is fatal to validation itself.
func Validate(project *ir.Project) Report {
	var diags []ir.Diagnostic

	for _, name := range project.Backend.UnitNames() {
		unit := project.Backend.Units[name]
		diags = append(diags, checkRealtimeNaming(unit)...)
		diags = append(diags, checkModelUsage(unit)...)
		diags = append(diags, checkExternalHosts(unit)...)
	}

	for _, name := range project.Database.CollectionNames() {
		diags = append(diags, checkAccessPolicies(project.Database.Collections[name])...)
	}

	for _, name := range project.Frontend.UnitNames() {
		diags = append(diags, checkUiUsage(project.Frontend.Units[name])...)
	}

	sort.SliceStable(diags, func(i, j int) bool {
		return diags[i].Category < diags[j].Category
	})

	report := Report{Diagnostics: diags, Compatible: true}
	for _, d := range diags {
		switch d.Severity {
		case ir.SeverityError:
			report.Summary.Errors++
		case ir.SeverityWarning:
			report.Summary.Warnings++
		case ir.SeverityInfo:
			report.Summary.Infos++
		}
		if d.Severity.AtLeast(ir.SeverityError) {
			report.Compatible = false
		}
	}
	return report
}

// checkRealtimeNaming flags routes whose names suggest live/streaming
// semantics, which the target stack has no direct equivalent for.
func checkRealtimeNaming(unit *ir.RouteUnit) []ir.Diagnostic {
	lower := strings.ToLower(unit.Name)
	if !strings.Contains(lower, "realtime") && !strings.Contains(lower, "subscribe") {
		return nil
	}
	return []ir.Diagnostic{{
		Severity: ir.SeverityWarning,
		Category: "realtime",
		Message:  fmt.Sprintf("Route %q may rely on live subscription semantics", unit.Name),
		Suggestion: "Live subscriptions are not directly supported. " +
			"Consider polling or a custom WebSocket endpoint.",
	}}
}

func checkModelUsage(unit *ir.RouteUnit) []ir.Diagnostic {
	var diags []ir.Diagnostic
	for _, usage := range unit.ModelUsage {
		if usage.Provider == "Unknown" {
			diags = append(diags, ir.Diagnostic{
				Severity:   ir.SeverityWarning,
				Category:   "llm",
				Message:    fmt.Sprintf("Route %q uses an unrecognized model API", unit.Name),
				Suggestion: "Manual review needed for the model API conversion.",
			})
			continue
		}
		diags = append(diags, ir.Diagnostic{
			Severity: ir.SeverityInfo,
			Category: "llm",
			Message: fmt.Sprintf("Route %q uses the %s API and will be converted to model serving",
				unit.Name, usage.Provider),
			Suggestion: "Ensure model serving endpoints are configured in the workspace.",
		})
	}
	return diags
}

func checkExternalHosts(unit *ir.RouteUnit) []ir.Diagnostic {
	if len(unit.ExternalHosts) == 0 {
		return nil
	}
	return []ir.Diagnostic{{
		Severity: ir.SeverityInfo,
		Category: "external_apis",
		Message: fmt.Sprintf("Route %q calls external services: %s",
			unit.Name, strings.Join(unit.ExternalHosts, ", ")),
		Suggestion: "Ensure network connectivity and API credentials are configured.",
	}}
}

func checkAccessPolicies(schema *ir.CollectionSchema) []ir.Diagnostic {
	if len(schema.Policies) == 0 {
		return nil
	}
	return []ir.Diagnostic{{
		Severity: ir.SeverityWarning,
		Category: "database",
		Message: fmt.Sprintf("Table %q has %d row-access policies",
			schema.Name, len(schema.Policies)),
		Suggestion: "Row-level authorization must be reimplemented as request dependencies.",
	}}
}

func checkUiUsage(unit *ir.UiUnit) []ir.Diagnostic {
	var diags []ir.Diagnostic
	if unit.UsesTag("realtime") {
		diags = append(diags, ir.Diagnostic{
			Severity:   ir.SeverityWarning,
			Category:   "realtime",
			Message:    fmt.Sprintf("Component %q uses live subscriptions", unit.Name),
			Suggestion: "Replace with polling or a custom WebSocket endpoint.",
		})
	}
	if unit.UsesTag("blob_storage") {
		diags = append(diags, ir.Diagnostic{
			Severity:   ir.SeverityInfo,
			Category:   "frontend",
			Message:    fmt.Sprintf("Component %q uses blob storage", unit.Name),
			Suggestion: "Storage access will be migrated to workspace volumes.",
		})
	}
	return diags
}
