// Package database extracts CollectionSchema facts from SQL migration text.
//
// Statements are classified by keyword containment on their uppercased text,
// not by grammar parsing. The imprecision this allows (marker keywords inside
// a default expression can false-positive) is a documented tradeoff of the
// extraction design; the rules live in small tables so individual ones can be
// corrected without touching control flow.
package database

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/lakeshift/lakeshift/internal/ir"
)

// Migration is one ordered schema-migration source file. Callers supply
// migrations sorted by filename; statements are processed in file order.
type Migration struct {
	Name string
	SQL  string
}

var (
	tableNamePattern = regexp.MustCompile(`(?i)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?([\w".]+)`)
	onTargetPattern  = regexp.MustCompile(`(?i)\bON\s+([\w".]+)`)
	defaultPattern   = regexp.MustCompile(`(?i)DEFAULT\s+([^,\s]+(?:\([^)]*\))?)`)
)

// constraintLeaders start a chunk that is a table-level constraint rather
// than a column definition.
var constraintLeaders = []string{
	"PRIMARY KEY",
	"FOREIGN KEY",
	"UNIQUE",
	"CHECK",
	"CONSTRAINT",
}

// constraintKinds classifies a constraint chunk; first containment wins.
var constraintKinds = []struct {
	keyword string
	kind    ir.ConstraintKind
}{
	{"PRIMARY KEY", ir.ConstraintPrimaryKey},
	{"FOREIGN KEY", ir.ConstraintForeignKey},
	{"UNIQUE", ir.ConstraintUnique},
	{"CHECK", ir.ConstraintCheck},
}

// Analyzer turns migration text into the Database sub-model.
type Analyzer struct {
	log *zap.Logger
}

// New returns a schema analyzer.
func New(log *zap.Logger) *Analyzer {
	return &Analyzer{log: log}
}

// Analyze reads every statement across the migrations in order. A statement
// that matches no rule is skipped; a malformed one is logged and skipped.
// Partial results are always returned.
func (a *Analyzer) Analyze(migrations []Migration) ir.Database {
	db := ir.Database{Collections: make(map[string]*ir.CollectionSchema)}

	for _, migration := range migrations {
		a.log.Debug("parsing migration", zap.String("file", migration.Name))
		for _, stmt := range SplitStatements(migration.SQL) {
			a.processStatement(stmt, &db)
		}
	}

	a.log.Info("database analysis complete", zap.Int("collections", len(db.Collections)))
	return db
}

func (a *Analyzer) processStatement(stmt string, db *ir.Database) {
	upper := strings.ToUpper(stmt)

	switch {
	case strings.Contains(upper, "CREATE TABLE"):
		a.parseCreateTable(stmt, db)
	case strings.Contains(upper, "CREATE") && strings.Contains(upper, "INDEX"):
		a.attachOnTarget(stmt, db, func(schema *ir.CollectionSchema) {
			schema.Indexes = append(schema.Indexes, ir.IndexDef{RawText: strings.TrimSpace(stmt)})
		})
	case strings.Contains(upper, "CREATE POLICY"),
		strings.Contains(upper, "ROW LEVEL SECURITY"),
		strings.Contains(upper, "RLS"):
		a.attachOnTarget(stmt, db, func(schema *ir.CollectionSchema) {
			schema.Policies = append(schema.Policies, ir.AccessPolicyDef{RawText: strings.TrimSpace(stmt)})
		})
	}
}

func (a *Analyzer) parseCreateTable(stmt string, db *ir.Database) {
	match := tableNamePattern.FindStringSubmatch(stmt)
	if match == nil {
		a.log.Warn("CREATE TABLE without a readable name, skipping",
			zap.String("statement", truncate(stmt, 80)))
		return
	}
	name := NormalizeName(match[1])

	schema := db.Collections[name]
	if schema == nil {
		schema = &ir.CollectionSchema{Name: name}
		db.Collections[name] = schema
	}

	body, ok := columnBlock(stmt)
	if !ok {
		a.log.Warn("CREATE TABLE without a column block, skipping columns",
			zap.String("table", name))
		return
	}

	for _, chunk := range SplitColumns(body) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if leading, isConstraint := constraintLeader(chunk); isConstraint {
			schema.Constraints = append(schema.Constraints, ir.ConstraintDef{
				Kind:    classifyConstraint(leading, chunk),
				RawText: chunk,
			})
			continue
		}
		if field, ok := parseColumn(chunk); ok {
			schema.Fields = append(schema.Fields, field)
		} else {
			a.log.Warn("unparseable column chunk, skipping",
				zap.String("table", name),
				zap.String("chunk", truncate(chunk, 80)))
		}
	}
}

// attachOnTarget resolves the collection named after ON, creating it with no
// fields when the statement arrives before its CREATE TABLE.
func (a *Analyzer) attachOnTarget(stmt string, db *ir.Database, attach func(*ir.CollectionSchema)) {
	match := onTargetPattern.FindStringSubmatch(stmt)
	if match == nil {
		return
	}
	name := NormalizeName(match[1])
	schema := db.Collections[name]
	if schema == nil {
		schema = &ir.CollectionSchema{Name: name}
		db.Collections[name] = schema
	}
	attach(schema)
}

// SplitStatements splits SQL text into statements on semicolons outside
// single-quoted strings.
func SplitStatements(sql string) []string {
	var stmts []string
	var current strings.Builder
	inString := false

	for i := 0; i < len(sql); i++ {
		ch := sql[i]
		switch {
		case ch == '\'':
			inString = !inString
			current.WriteByte(ch)
		case ch == ';' && !inString:
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				stmts = append(stmts, stmt)
			}
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		stmts = append(stmts, stmt)
	}
	return stmts
}

// SplitColumns splits a column-definition block on top-level commas only.
// A depth counter over literal parentheses keeps nested type parameters and
// default expressions intact.
func SplitColumns(body string) []string {
	var chunks []string
	var current strings.Builder
	depth := 0

	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				chunks = append(chunks, current.String())
				current.Reset()
				continue
			}
		}
		current.WriteByte(ch)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// columnBlock returns the content of the outermost parenthesized block.
func columnBlock(stmt string) (string, bool) {
	start := strings.IndexByte(stmt, '(')
	if start < 0 {
		return "", false
	}
	depth := 0
	for i := start; i < len(stmt); i++ {
		switch stmt[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return stmt[start+1 : i], true
			}
		}
	}
	return "", false
}

// constraintLeader reports whether the chunk opens with a table-constraint
// keyword. A column whose markers merely appear later in the chunk (for
// example "id UUID PRIMARY KEY") stays a column.
func constraintLeader(chunk string) (string, bool) {
	upper := strings.ToUpper(strings.TrimSpace(chunk))
	for _, leader := range constraintLeaders {
		if strings.HasPrefix(upper, leader) {
			return leader, true
		}
	}
	return "", false
}

func classifyConstraint(leading, chunk string) ir.ConstraintKind {
	upper := strings.ToUpper(chunk)
	for _, entry := range constraintKinds {
		if strings.Contains(upper, entry.keyword) {
			return entry.kind
		}
	}
	_ = leading
	return ir.ConstraintUnknown
}

// parseColumn reads a column chunk: first token is the name, second is the
// raw type. Markers are found by substring scan over the whole chunk, so
// their order is irrelevant; a marker keyword inside a default expression
// will false-positive. That limitation is accepted, not fixed.
func parseColumn(chunk string) (ir.FieldDef, bool) {
	parts := strings.Fields(chunk)
	if len(parts) < 2 {
		return ir.FieldDef{}, false
	}

	// Rejoin a type token split by whitespace inside its parameter list,
	// e.g. "NUMERIC(10, 2)".
	declared := parts[1]
	for i := 2; i < len(parts) && strings.Count(declared, "(") > strings.Count(declared, ")"); i++ {
		declared += parts[i]
	}

	upper := strings.ToUpper(chunk)
	field := ir.FieldDef{
		Name:         strings.Trim(parts[0], `"'`),
		DeclaredType: declared,
		NotNull:      strings.Contains(upper, "NOT NULL"),
		Unique:       strings.Contains(upper, "UNIQUE"),
		IsPrimaryKey: strings.Contains(upper, "PRIMARY KEY"),
	}
	if match := defaultPattern.FindStringSubmatch(chunk); match != nil {
		field.DefaultExpression = match[1]
	}
	return field, true
}

// NormalizeName strips quoting and schema qualification from an identifier.
func NormalizeName(raw string) string {
	name := strings.Trim(raw, `"'`)
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		name = name[idx+1:]
	}
	return strings.Trim(name, `"'`)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
