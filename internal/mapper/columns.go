package mapper

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/lakeshift/lakeshift/internal/ir"
)

// columnTypes maps SQL base keywords to Python types for the generated
// persistent-record artifacts.
var columnTypes = map[string]string{
	"UUID":        "UUID",
	"TEXT":        "str",
	"VARCHAR":     "str",
	"CHAR":        "str",
	"INTEGER":     "int",
	"INT":         "int",
	"BIGINT":      "int",
	"SMALLINT":    "int",
	"SERIAL":      "int",
	"BIGSERIAL":   "int",
	"BOOLEAN":     "bool",
	"BOOL":        "bool",
	"TIMESTAMP":   "datetime",
	"TIMESTAMPTZ": "datetime",
	"DATE":        "date",
	"TIME":        "time",
	"FLOAT":       "float",
	"DOUBLE":      "float",
	"REAL":        "float",
	"NUMERIC":     "Decimal",
	"DECIMAL":     "Decimal",
	"JSON":        "dict[str, Any]",
	"JSONB":       "dict[str, Any]",
	"ARRAY":       "list",
	"BYTEA":       "bytes",
}

// fallbackColumnType is used for unknown base keywords; column mapping never
// fails.
const fallbackColumnType = "str"

var (
	columnTypePattern = regexp.MustCompile(`^(\w+)(?:\((.+)\))?`)
	bareNumberPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
)

// uuidDefaults are the recognized generate-random-identifier expressions.
var uuidDefaults = map[string]bool{
	"gen_random_uuid()":  true,
	"uuid_generate_v4()": true,
}

// timestampDefaults are the recognized current-timestamp expressions.
var timestampDefaults = map[string]bool{
	"now()":             true,
	"current_timestamp": true,
}

// Resolution is the explicit result variant for a lookup that can fall back:
// either the table matched, or a documented default was substituted.
type Resolution struct {
	Value     string
	ByDefault bool
	Reason    string
}

// BaseType resolves an uppercase SQL base keyword to its Python type.
func BaseType(keyword string) Resolution {
	if py, ok := columnTypes[keyword]; ok {
		return Resolution{Value: py}
	}
	return Resolution{
		Value:     fallbackColumnType,
		ByDefault: true,
		Reason:    "unknown column type " + keyword,
	}
}

// Schema resolves every field of every collection in place.
type Schema struct {
	log *zap.Logger
}

// NewSchema returns a schema mapper.
func NewSchema(log *zap.Logger) *Schema {
	return &Schema{log: log}
}

// Apply annotates every field of the database sub-model.
func (m *Schema) Apply(db *ir.Database) {
	for _, name := range db.CollectionNames() {
		schema := db.Collections[name]
		for i := range schema.Fields {
			m.ResolveField(&schema.Fields[i])
		}
	}
}

// ResolveField fills in the field's target-type annotation: base type,
// parameter-derived constraints, default translation, and nullability.
func (m *Schema) ResolveField(field *ir.FieldDef) {
	resolved := &ir.ResolvedField{}

	base, params := splitColumnType(field.DeclaredType)
	res := BaseType(base)
	if res.ByDefault {
		m.log.Debug("column type fell back to text",
			zap.String("field", field.Name),
			zap.String("declared", field.DeclaredType),
			zap.String("reason", res.Reason))
	}
	resolved.TargetType = res.Value

	applyTypeParams(resolved, base, params)
	applyDefault(resolved, field.DefaultExpression)

	// Nullable non-key fields become optional with an implicit absent
	// default, unless a default was already derived above.
	if !field.NotNull && !field.IsPrimaryKey {
		resolved.Optional = true
		if resolved.Auto == ir.AutoNone && resolved.DefaultLiteral == "" {
			resolved.DefaultLiteral = "None"
		}
	}

	field.Resolved = resolved
}

// splitColumnType separates "VARCHAR(255)" into base keyword and parameter
// text. The base is uppercased for table lookup.
func splitColumnType(declared string) (base, params string) {
	match := columnTypePattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(declared)))
	if match == nil {
		return strings.ToUpper(strings.TrimSpace(declared)), ""
	}
	return match[1], match[2]
}

// applyTypeParams converts parenthesized type parameters into auxiliary
// constraints rather than encoding them in the type name.
func applyTypeParams(resolved *ir.ResolvedField, base, params string) {
	if params == "" {
		return
	}

	switch base {
	case "VARCHAR", "CHAR":
		if n, err := strconv.Atoi(strings.TrimSpace(params)); err == nil {
			resolved.MaxLength = &n
		}
	case "NUMERIC", "DECIMAL":
		parts := strings.Split(params, ",")
		if len(parts) != 2 {
			return
		}
		precision, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
		scale, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err1 == nil && err2 == nil {
			resolved.Precision = &precision
			resolved.Scale = &scale
		}
	}
}

// applyDefault translates a default expression by rule: recognized
// auto-generation expressions become server-side markers, bare numbers pass
// through, and anything else is quoted as a string literal. A recognized
// random-identifier default also forces the UUID target type.
func applyDefault(resolved *ir.ResolvedField, expr string) {
	if expr == "" {
		return
	}

	lower := strings.ToLower(expr)
	switch {
	case uuidDefaults[lower]:
		resolved.Auto = ir.AutoUUID
		resolved.TargetType = "UUID"
	case timestampDefaults[lower]:
		resolved.Auto = ir.AutoTimestamp
	case bareNumberPattern.MatchString(expr):
		resolved.DefaultLiteral = expr
	default:
		resolved.DefaultLiteral = strconv.Quote(strings.Trim(expr, `'"`))
	}
}
