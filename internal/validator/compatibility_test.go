package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lakeshift/lakeshift/internal/ir"
	"github.com/lakeshift/lakeshift/internal/validator"
)

func sampleProject() *ir.Project {
	return &ir.Project{
		Name: "sample",
		Backend: ir.Backend{Units: map[string]*ir.RouteUnit{
			"subscribe_feed": {
				Name:  "subscribe_feed",
				Verbs: []string{"POST"},
			},
			"chat": {
				Name:  "chat",
				Verbs: []string{"POST"},
				ModelUsage: []ir.ModelAPIUsage{
					{Provider: "OpenAI", DeclaredModels: []string{"gpt-4"}},
				},
				ExternalHosts: []string{"api.stripe.com"},
			},
		}},
		Database: ir.Database{Collections: map[string]*ir.CollectionSchema{
			"users": {
				Name:     "users",
				Policies: []ir.AccessPolicyDef{{RawText: "CREATE POLICY p ON users"}},
			},
		}},
		Frontend: ir.Frontend{Units: map[string]*ir.UiUnit{
			"LiveFeed": {
				Name:      "LiveFeed",
				DataUsage: []string{"realtime"},
			},
			"Uploader": {
				Name:      "Uploader",
				DataUsage: []string{"blob_storage"},
			},
		}},
	}
}

func TestValidateCategories(t *testing.T) {
	report := validator.Validate(sampleProject())

	// Nothing in the rule set emits errors, so the project is compatible.
	assert.True(t, report.Compatible)
	assert.Zero(t, report.Summary.Errors)
	assert.Equal(t, 3, report.Summary.Warnings)
	assert.Equal(t, 3, report.Summary.Infos)

	byCategory := make(map[string]int)
	for _, d := range report.Diagnostics {
		byCategory[d.Category]++
	}
	assert.Equal(t, map[string]int{
		"realtime":      2,
		"llm":           1,
		"external_apis": 1,
		"database":      1,
		"frontend":      1,
	}, byCategory)
}

func TestValidateDiagnosticOrder(t *testing.T) {
	report := validator.Validate(sampleProject())

	// Sorted by category, ties in discovery order.
	var categories []string
	for _, d := range report.Diagnostics {
		categories = append(categories, d.Category)
	}
	assert.Equal(t, []string{
		"database",
		"external_apis",
		"frontend",
		"llm",
		"realtime",
		"realtime",
	}, categories)
}

func TestValidatePurity(t *testing.T) {
	project := sampleProject()
	first := validator.Validate(project)
	second := validator.Validate(project)
	assert.Equal(t, first, second)
}

func TestUnknownProviderWarns(t *testing.T) {
	project := &ir.Project{
		Backend: ir.Backend{Units: map[string]*ir.RouteUnit{
			"mystery": {
				Name:       "mystery",
				ModelUsage: []ir.ModelAPIUsage{{Provider: "Unknown"}},
			},
		}},
	}

	report := validator.Validate(project)
	require.Len(t, report.Diagnostics, 1)
	assert.Equal(t, ir.SeverityWarning, report.Diagnostics[0].Severity)
	assert.Equal(t, "llm", report.Diagnostics[0].Category)
}

func TestUiRealtimeEmitsSingleWarning(t *testing.T) {
	project := &ir.Project{
		Frontend: ir.Frontend{Units: map[string]*ir.UiUnit{
			"Live": {Name: "Live", DataUsage: []string{"realtime"}},
		}},
	}

	report := validator.Validate(project)
	require.Len(t, report.Diagnostics, 1)
	diag := report.Diagnostics[0]
	assert.Equal(t, ir.SeverityWarning, diag.Severity)
	assert.Equal(t, "realtime", diag.Category)
}

func TestEmptyProjectIsCompatible(t *testing.T) {
	report := validator.Validate(&ir.Project{})
	assert.True(t, report.Compatible)
	assert.Empty(t, report.Diagnostics)
}
