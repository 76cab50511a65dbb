package model

import (
	"strconv"
	"strings"

	"github.com/lakeshift/lakeshift/internal/codegen"
	"github.com/lakeshift/lakeshift/internal/ir"
)

// fieldLine is one rendered attribute line. RHS includes the leading " = "
// when present, so the template can emit lines verbatim.
type fieldLine struct {
	Name       string
	Annotation string
	RHS        string
}

// classData is the template input for one collection's artifacts.
type classData struct {
	Table   string
	Class   string
	Imports []string

	// Fields covers every column in declared order. ClientFields and
	// ServerFields partition them for the request/response schemas:
	// server-generated values never appear in request bodies.
	Fields       []fieldLine
	ClientFields []fieldLine
	ServerFields []fieldLine
}

func buildClassData(schema *ir.CollectionSchema) classData {
	data := classData{
		Table: schema.Name,
		Class: codegen.PascalCase(schema.Name),
	}

	for i := range schema.Fields {
		field := &schema.Fields[i]
		line := fieldLine{
			Name:       codegen.PyIdent(field.Name),
			Annotation: annotation(field),
			RHS:        recordRHS(field),
		}
		data.Fields = append(data.Fields, line)

		schemaLine := fieldLine{
			Name:       line.Name,
			Annotation: line.Annotation,
			RHS:        schemaRHS(field),
		}
		if field.ServerGenerated() {
			data.ServerFields = append(data.ServerFields, schemaLine)
		} else {
			data.ClientFields = append(data.ClientFields, schemaLine)
		}
	}

	data.Imports = importLines(schema)
	return data
}

func annotation(field *ir.FieldDef) string {
	t := field.Resolved.TargetType
	if field.Resolved.Optional {
		return t + " | None"
	}
	return t
}

// recordRHS builds the Field(...) call for the persistent record, or an
// empty string when the plain annotation suffices.
func recordRHS(field *ir.FieldDef) string {
	r := field.Resolved
	var args []string

	if field.IsPrimaryKey {
		args = append(args, "primary_key=True")
	}
	if field.Unique {
		args = append(args, "unique=True")
	}
	switch r.Auto {
	case ir.AutoUUID:
		args = append(args, "default_factory=uuid4")
	case ir.AutoTimestamp:
		args = append(args, "default_factory=datetime.utcnow")
	}
	if r.DefaultLiteral != "" {
		args = append(args, "default="+r.DefaultLiteral)
	}
	if r.MaxLength != nil {
		args = append(args, "max_length="+strconv.Itoa(*r.MaxLength))
	}
	if r.Precision != nil && r.Scale != nil {
		args = append(args, "max_digits="+strconv.Itoa(*r.Precision))
		args = append(args, "decimal_places="+strconv.Itoa(*r.Scale))
	}

	if len(args) == 0 {
		return ""
	}
	return " = Field(" + strings.Join(args, ", ") + ")"
}

// schemaRHS builds the default clause for the request/response schemas,
// where server-side factories do not apply.
func schemaRHS(field *ir.FieldDef) string {
	r := field.Resolved
	if r.DefaultLiteral != "" {
		return " = " + r.DefaultLiteral
	}
	if r.Optional {
		return " = None"
	}
	return ""
}

// importLines computes the extra import statements a collection's artifacts
// need, in a fixed order so output stays reproducible.
func importLines(schema *ir.CollectionSchema) []string {
	var (
		needsDatetime, needsDate, needsTime bool
		needsDecimal, needsAny              bool
		needsUUID, needsUUID4               bool
	)

	for i := range schema.Fields {
		r := schema.Fields[i].Resolved
		switch r.TargetType {
		case "datetime":
			needsDatetime = true
		case "date":
			needsDate = true
		case "time":
			needsTime = true
		case "Decimal":
			needsDecimal = true
		case "UUID":
			needsUUID = true
		}
		if strings.Contains(r.TargetType, "Any") {
			needsAny = true
		}
		if r.Auto == ir.AutoUUID {
			needsUUID4 = true
		}
		if r.Auto == ir.AutoTimestamp {
			needsDatetime = true
		}
	}

	var lines []string
	if needsDatetime || needsDate || needsTime {
		var names []string
		if needsDate {
			names = append(names, "date")
		}
		if needsDatetime {
			names = append(names, "datetime")
		}
		if needsTime {
			names = append(names, "time")
		}
		lines = append(lines, "from datetime import "+strings.Join(names, ", "))
	}
	if needsDecimal {
		lines = append(lines, "from decimal import Decimal")
	}
	if needsAny {
		lines = append(lines, "from typing import Any")
	}
	if needsUUID {
		if needsUUID4 {
			lines = append(lines, "from uuid import UUID, uuid4")
		} else {
			lines = append(lines, "from uuid import UUID")
		}
	}
	return lines
}
