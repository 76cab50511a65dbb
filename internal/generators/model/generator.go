// Package model renders the persistent-record and request/response schema
// artifacts: one SQLModel class and one pydantic schema module per
// collection.
package model

import (
	"embed"
	"fmt"

	"go.uber.org/zap"

	"github.com/lakeshift/lakeshift/internal/codegen"
	"github.com/lakeshift/lakeshift/internal/ir"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Generator renders record and schema artifacts from a mapped database
// sub-model. Fields must already carry their Resolved annotations.
type Generator struct {
	renderer *codegen.Renderer
	log      *zap.Logger
}

// New creates a model generator.
func New(log *zap.Logger) *Generator {
	return &Generator{
		renderer: codegen.NewRenderer(),
		log:      log,
	}
}

// Generate returns the record and schema artifacts as a relative-path →
// content map. Collections render in sorted name order, fields in declared
// order.
func (g *Generator) Generate(db *ir.Database) (map[string]string, error) {
	files := make(map[string]string)

	var modelsInit, schemasInit string
	for _, name := range db.CollectionNames() {
		schema := db.Collections[name]
		data := buildClassData(schema)
		module := codegen.PyIdent(name)

		record, err := g.renderer.RenderFS(templatesFS, "templates/sqlmodel.py.tmpl", data)
		if err != nil {
			return nil, fmt.Errorf("generating record %s: %w", name, err)
		}
		files["app/models/"+module+".py"] = string(record)
		modelsInit += fmt.Sprintf("from .%s import %s\n", module, data.Class)

		schemas, err := g.renderer.RenderFS(templatesFS, "templates/pydantic.py.tmpl", data)
		if err != nil {
			return nil, fmt.Errorf("generating schemas %s: %w", name, err)
		}
		files["app/schemas/"+module+".py"] = string(schemas)
		schemasInit += fmt.Sprintf("from .%s import %sBase, %sCreate, %sRead, %sUpdate\n",
			module, data.Class, data.Class, data.Class, data.Class)
	}

	if len(db.Collections) > 0 {
		files["app/models/__init__.py"] = modelsInit
		files["app/schemas/__init__.py"] = schemasInit
	}

	g.log.Info("model artifacts generated",
		zap.Int("collections", len(db.Collections)),
		zap.Int("files", len(files)))
	return files, nil
}
