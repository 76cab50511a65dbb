// Package mapper converts source-stack types, column definitions, and
// model-usage records onto target-stack equivalents. Every conversion is
// total: unknown inputs resolve to documented defaults instead of failing.
package mapper

import (
	"regexp"
	"strings"
)

// primitiveTypes maps TypeScript primitives to Python type hints.
var primitiveTypes = map[string]string{
	"string":    "str",
	"number":    "int | float",
	"boolean":   "bool",
	"any":       "Any",
	"void":      "None",
	"null":      "None",
	"undefined": "None",
	"Date":      "datetime",
	"Promise":   "Awaitable",
	"object":    "dict[str, Any]",
}

var (
	arrayWrapper   = regexp.MustCompile(`^Array<(.+)>$`)
	promiseWrapper = regexp.MustCompile(`^Promise<(.+)>$`)
	recordWrapper  = regexp.MustCompile(`^Record<(.+),\s*(.+)>$`)
)

// TypeExpression converts a TypeScript type expression to a Python type
// hint. Composite forms recurse; an identifier matching nothing is passed
// through unchanged on the assumption it names a generated model class.
func TypeExpression(tsType string) string {
	tsType = strings.TrimSpace(tsType)

	if py, ok := primitiveTypes[tsType]; ok {
		return py
	}

	if inner, ok := strings.CutSuffix(tsType, "[]"); ok {
		return "list[" + TypeExpression(inner) + "]"
	}

	if match := arrayWrapper.FindStringSubmatch(tsType); match != nil {
		return "list[" + TypeExpression(match[1]) + "]"
	}

	if match := promiseWrapper.FindStringSubmatch(tsType); match != nil {
		return "Awaitable[" + TypeExpression(match[1]) + "]"
	}

	if match := recordWrapper.FindStringSubmatch(tsType); match != nil {
		return "dict[" + TypeExpression(match[1]) + ", " + TypeExpression(match[2]) + "]"
	}

	if arms := splitUnion(tsType); len(arms) > 1 {
		converted := make([]string, len(arms))
		for i, arm := range arms {
			converted[i] = TypeExpression(arm)
		}
		return strings.Join(converted, " | ")
	}

	if inner, ok := strings.CutSuffix(tsType, "?"); ok {
		return TypeExpression(inner) + " | None"
	}

	return tsType
}

// splitUnion splits on | at the top level only; a bar nested inside angle
// brackets belongs to an inner type expression.
func splitUnion(tsType string) []string {
	var arms []string
	var current strings.Builder
	depth := 0

	for i := 0; i < len(tsType); i++ {
		ch := tsType[i]
		switch ch {
		case '<':
			depth++
		case '>':
			depth--
		case '|':
			if depth == 0 {
				arms = append(arms, strings.TrimSpace(current.String()))
				current.Reset()
				continue
			}
		}
		current.WriteByte(ch)
	}
	arms = append(arms, strings.TrimSpace(current.String()))
	return arms
}
