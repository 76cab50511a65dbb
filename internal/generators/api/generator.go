// Package api renders the service-route artifacts for the target stack: one
// FastAPI router per RouteUnit plus the application shell around them.
package api

import (
	"embed"
	"fmt"

	"go.uber.org/zap"

	"github.com/lakeshift/lakeshift/internal/codegen"
	"github.com/lakeshift/lakeshift/internal/ir"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Generator renders route artifacts from a mapped project.
type Generator struct {
	renderer *codegen.Renderer
	log      *zap.Logger
}

// New creates a route generator.
func New(log *zap.Logger) *Generator {
	return &Generator{
		renderer: codegen.NewRenderer(),
		log:      log,
	}
}

// Generate returns the route artifacts as a relative-path → content map.
// Identical mapped IR always yields byte-identical output: units are
// processed in sorted name order and every list renders in stored order.
func (g *Generator) Generate(project *ir.Project) (map[string]string, error) {
	files := make(map[string]string)

	routers := make([]string, 0, len(project.Backend.Units))
	for _, name := range project.Backend.UnitNames() {
		routers = append(routers, codegen.PyIdent(name))
	}

	appData := struct {
		ProjectName string
		Description string
		Routers     []string
	}{
		ProjectName: project.Name,
		Description: fmt.Sprintf("%s API", project.Name),
		Routers:     routers,
	}

	content, err := g.renderer.RenderFS(templatesFS, "templates/app.py.tmpl", appData)
	if err != nil {
		return nil, fmt.Errorf("generating application shell: %w", err)
	}
	files["app/main.py"] = string(content)

	for _, name := range project.Backend.UnitNames() {
		unit := project.Backend.Units[name]
		data := buildRouterData(unit)

		content, err := g.renderer.RenderFS(templatesFS, "templates/router.py.tmpl", data)
		if err != nil {
			return nil, fmt.Errorf("generating router %s: %w", name, err)
		}
		files["app/routers/"+data.Module+".py"] = string(content)
	}

	if len(routers) > 0 {
		files["app/routers/__init__.py"] = routersInit(routers)
	}

	deps, err := g.renderer.RenderFS(templatesFS, "templates/dependencies.py.tmpl", appData)
	if err != nil {
		return nil, fmt.Errorf("generating dependencies: %w", err)
	}
	files["app/dependencies.py"] = string(deps)

	db, err := g.renderer.RenderFS(templatesFS, "templates/database.py.tmpl", appData)
	if err != nil {
		return nil, fmt.Errorf("generating database module: %w", err)
	}
	files["app/database.py"] = string(db)

	files["app/__init__.py"] = "\"\"\"Application package.\"\"\"\n"

	g.log.Info("route artifacts generated",
		zap.Int("routers", len(routers)),
		zap.Int("files", len(files)))
	return files, nil
}

func routersInit(routers []string) string {
	out := ""
	for _, name := range routers {
		out += "from . import " + name + "\n"
	}
	return out
}
