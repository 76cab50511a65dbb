// Package ir defines the stack-neutral intermediate representation shared by
// the analyzers, mappers, generators, and the compatibility validator.
//
// Analyzers produce the three sub-models (Backend, Database, Frontend) from
// raw source text. The mappers annotate them in place with resolved target
// types and endpoints. Generators and the validator only read.
package ir

import "sort"

// Status tracks a project's position in the migration lifecycle.
// Transitions are monotonic: imported → converted → deployed.
type Status string

const (
	StatusImported  Status = "imported"
	StatusConverted Status = "converted"
	StatusDeployed  Status = "deployed"
)

// rank orders statuses for the monotonic-transition check.
func (s Status) rank() int {
	switch s {
	case StatusImported:
		return 1
	case StatusConverted:
		return 2
	case StatusDeployed:
		return 3
	}
	return 0
}

// CanAdvance reports whether moving to next is a forward transition.
func (s Status) CanAdvance(next Status) bool {
	return next.rank() > s.rank()
}

// Project is the root aggregate produced by an import and mutated in place by
// each pipeline stage.
type Project struct {
	ID       string   `json:"project_id"`
	Name     string   `json:"name"`
	Origin   string   `json:"origin"`
	Status   Status   `json:"status"`
	Backend  Backend  `json:"backend"`
	Database Database `json:"database"`
	Frontend Frontend `json:"frontend"`
}

// Backend holds one RouteUnit per discovered serverless function.
type Backend struct {
	Units map[string]*RouteUnit `json:"functions"`
}

// UnitNames returns route unit names in sorted order for deterministic
// iteration.
func (b Backend) UnitNames() []string {
	names := make([]string, 0, len(b.Units))
	for name := range b.Units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Database holds one CollectionSchema per discovered table.
type Database struct {
	Collections map[string]*CollectionSchema `json:"tables"`
}

// CollectionNames returns collection names in sorted order.
func (d Database) CollectionNames() []string {
	names := make([]string, 0, len(d.Collections))
	for name := range d.Collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Frontend holds one UiUnit per discovered component or page, plus the route
// declarations extracted from the root routing files.
type Frontend struct {
	Units  map[string]*UiUnit `json:"components"`
	Routes []RouteDecl        `json:"routes"`
}

// UnitNames returns UI unit names in sorted order.
func (f Frontend) UnitNames() []string {
	names := make([]string, 0, len(f.Units))
	for name := range f.Units {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OpKind classifies a data operation detected in route source.
type OpKind string

const (
	OpRead   OpKind = "READ"
	OpCreate OpKind = "CREATE"
	OpUpdate OpKind = "UPDATE"
	OpDelete OpKind = "DELETE"
	OpUpsert OpKind = "UPSERT"
)

// DataOperation records one collection access call site. Call sites are kept
// one-to-one: repeated operations against the same collection are not
// deduplicated, so generation can emit one block per site in source order.
type DataOperation struct {
	Kind             OpKind `json:"kind"`
	TargetCollection string `json:"target_collection"`
}

// ModelAPIUsage records one detected model-serving API usage in a route.
// DeclaredModels stays empty when no model literal was found in the source;
// the mapper supplies the per-provider default before generation.
type ModelAPIUsage struct {
	Provider            string   `json:"provider"`
	DeclaredModels      []string `json:"declared_models"`
	CapabilityEndpoints []string `json:"capability_endpoints"`

	// ResolvedEndpoint is filled by the mapping stage with the serving
	// endpoint chosen for the first declared model.
	ResolvedEndpoint string `json:"resolved_endpoint,omitempty"`
}

// RouteUnit describes one backend function/handler.
type RouteUnit struct {
	Name          string          `json:"name"`
	Verbs         []string        `json:"http_verbs"`
	Operations    []DataOperation `json:"data_operations"`
	RequiresAuth  bool            `json:"requires_auth"`
	ExternalHosts []string        `json:"external_hosts"`
	ModelUsage    []ModelAPIUsage `json:"model_api_usage"`

	// PayloadFields lists the identifiers destructured from the request
	// body, when the source matched the destructuring idiom. Empty means
	// the generator emits a manual-extraction marker instead.
	PayloadFields []string `json:"payload_fields,omitempty"`
}

// FieldDef describes one column as declared in the source DDL. The Resolved
// annotation is attached by the schema mapper.
type FieldDef struct {
	Name              string `json:"name"`
	DeclaredType      string `json:"declared_type"`
	NotNull           bool   `json:"not_null"`
	Unique            bool   `json:"unique"`
	IsPrimaryKey      bool   `json:"is_primary_key"`
	DefaultExpression string `json:"default_expression,omitempty"`

	Resolved *ResolvedField `json:"resolved,omitempty"`
}

// AutoDefault marks a server-generated default recognized by the mapper.
type AutoDefault string

const (
	AutoNone      AutoDefault = ""
	AutoUUID      AutoDefault = "uuid"
	AutoTimestamp AutoDefault = "timestamp"
)

// ResolvedField is the mapper's annotation on a FieldDef: the target-stack
// type plus constraints derived from type parameters and default expressions.
type ResolvedField struct {
	TargetType     string      `json:"target_type"`
	Optional       bool        `json:"optional"`
	Auto           AutoDefault `json:"auto_default,omitempty"`
	DefaultLiteral string      `json:"default_literal,omitempty"`
	MaxLength      *int        `json:"max_length,omitempty"`
	Precision      *int        `json:"precision,omitempty"`
	Scale          *int        `json:"scale,omitempty"`
}

// ServerGenerated reports whether the field's value is produced by the
// target stack rather than supplied by clients.
func (f *FieldDef) ServerGenerated() bool {
	if f.IsPrimaryKey {
		return true
	}
	return f.Resolved != nil && f.Resolved.Auto != AutoNone
}

// ConstraintKind classifies a table-level constraint.
type ConstraintKind string

const (
	ConstraintPrimaryKey ConstraintKind = "PRIMARY_KEY"
	ConstraintForeignKey ConstraintKind = "FOREIGN_KEY"
	ConstraintUnique     ConstraintKind = "UNIQUE"
	ConstraintCheck      ConstraintKind = "CHECK"
	ConstraintUnknown    ConstraintKind = "UNKNOWN"
)

// ConstraintDef keeps the raw text of a table-level constraint.
type ConstraintDef struct {
	Kind    ConstraintKind `json:"kind"`
	RawText string         `json:"raw_text"`
}

// IndexDef keeps the raw text of an index statement.
type IndexDef struct {
	RawText string `json:"raw_text"`
}

// AccessPolicyDef keeps the raw text of a row-access-policy statement.
type AccessPolicyDef struct {
	RawText string `json:"raw_text"`
}

// CollectionSchema describes one table. Field order is preserved exactly as
// declared; generation depends on it for reproducible output.
type CollectionSchema struct {
	Name        string            `json:"name"`
	Fields      []FieldDef        `json:"fields"`
	Constraints []ConstraintDef   `json:"constraints"`
	Indexes     []IndexDef        `json:"indexes"`
	Policies    []AccessPolicyDef `json:"access_policies"`
}

// Field returns the field with the given name, or nil.
func (c *CollectionSchema) Field(name string) *FieldDef {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// UiUnit describes one frontend component or page.
type UiUnit struct {
	Name       string   `json:"name"`
	IsPage     bool     `json:"is_page"`
	Hooks      []string `json:"hooks"`
	DataUsage  []string `json:"data_usage"`
	Outbound   []string `json:"outbound_calls"`
	RoutePaths []string `json:"route_paths,omitempty"`
}

// UsesTag reports whether the unit carries the given data-usage tag.
func (u *UiUnit) UsesTag(tag string) bool {
	for _, t := range u.DataUsage {
		if t == tag {
			return true
		}
	}
	return false
}

// RouteDecl is one path/component pair from a root routing file.
type RouteDecl struct {
	Path      string `json:"path"`
	Component string `json:"component"`
}

// ConversionRecord is one append-only entry in the model-conversion log.
type ConversionRecord struct {
	SourceModel    string `json:"source_model_identifier"`
	TargetEndpoint string `json:"resolved_target_endpoint"`
	SourceProvider string `json:"source_provider"`
}
