package mapper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lakeshift/lakeshift/internal/mapper"
)

func TestTypeExpression(t *testing.T) {
	tests := []struct {
		tsType string
		want   string
	}{
		{"string", "str"},
		{"number", "int | float"},
		{"boolean", "bool"},
		{"any", "Any"},
		{"void", "None"},
		{"Date", "datetime"},
		{"object", "dict[str, Any]"},

		{"string[]", "list[str]"},
		{"Array<number>", "list[int | float]"},
		{"Promise<string>", "Awaitable[str]"},
		{"Record<string, boolean>", "dict[str, bool]"},

		// Two levels of nesting must recurse.
		{"Array<Record<string, number>>", "list[dict[str, int | float]]"},
		{"Promise<Array<string>>", "Awaitable[list[str]]"},

		{"string | null", "str | None"},
		{"number | undefined", "int | float | None"},
		{"string?", "str | None"},

		// Unrecognized identifiers pass through as model-class names.
		{"UserProfile", "UserProfile"},
		{"UserProfile[]", "list[UserProfile]"},

		// Totality: degenerate input never panics.
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.tsType, func(t *testing.T) {
			assert.Equal(t, tt.want, mapper.TypeExpression(tt.tsType))
		})
	}
}
