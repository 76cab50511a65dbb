package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lakeshift/lakeshift/internal/ir"
)

func TestSeverityAtLeast(t *testing.T) {
	tests := []struct {
		name  string
		s     ir.Severity
		other ir.Severity
		want  bool
	}{
		{"error gates error", ir.SeverityError, ir.SeverityError, true},
		{"error gates warning", ir.SeverityError, ir.SeverityWarning, true},
		{"warning gates info", ir.SeverityWarning, ir.SeverityInfo, true},
		{"warning does not gate error", ir.SeverityWarning, ir.SeverityError, false},
		{"info does not gate warning", ir.SeverityInfo, ir.SeverityWarning, false},
		{"unknown never gates", ir.Severity("other"), ir.SeverityInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.AtLeast(tt.other))
		})
	}
}

func TestStatusCanAdvance(t *testing.T) {
	assert.True(t, ir.StatusImported.CanAdvance(ir.StatusConverted))
	assert.True(t, ir.StatusConverted.CanAdvance(ir.StatusDeployed))
	assert.True(t, ir.StatusImported.CanAdvance(ir.StatusDeployed))

	assert.False(t, ir.StatusDeployed.CanAdvance(ir.StatusConverted))
	assert.False(t, ir.StatusConverted.CanAdvance(ir.StatusConverted))
	assert.False(t, ir.StatusDeployed.CanAdvance(ir.StatusImported))
}
