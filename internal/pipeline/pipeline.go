// Package pipeline wires the migration stages together: analyze → map →
// {generate, validate}. Each stage is a pure transform over the IR; the
// pipeline performs no I/O and holds no state across invocations, so a
// caller may abandon an in-flight run safely.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lakeshift/lakeshift/internal/analyzers/backend"
	"github.com/lakeshift/lakeshift/internal/analyzers/database"
	"github.com/lakeshift/lakeshift/internal/analyzers/frontend"
	"github.com/lakeshift/lakeshift/internal/generators/api"
	"github.com/lakeshift/lakeshift/internal/generators/appconfig"
	"github.com/lakeshift/lakeshift/internal/generators/model"
	"github.com/lakeshift/lakeshift/internal/ir"
	"github.com/lakeshift/lakeshift/internal/llm"
	"github.com/lakeshift/lakeshift/internal/mapper"
	"github.com/lakeshift/lakeshift/internal/validator"
)

// Input carries the located source text for one project: route sources
// keyed by unit name, migrations in lexical filename order, and UI sources
// tagged page or component by the caller.
type Input struct {
	ProjectName string
	Routes      map[string]string
	Migrations  []database.Migration
	UiSources   []frontend.Source
}

// Result is the outcome of a conversion: the generated file tree, the
// compatibility report, and the model-conversion summary.
type Result struct {
	Files       map[string]string
	Report      validator.Report
	Conversions llm.Summary
}

// Pipeline runs the migration stages in order.
type Pipeline struct {
	log      *zap.Logger
	backend  *backend.Analyzer
	database *database.Analyzer
	frontend *frontend.Analyzer
	schema   *mapper.Schema
	routes   *api.Generator
	models   *model.Generator
	config   *appconfig.Generator
}

// New creates a pipeline with all stages wired.
func New(log *zap.Logger) *Pipeline {
	return &Pipeline{
		log:      log,
		backend:  backend.New(log),
		database: database.New(log),
		frontend: frontend.New(log),
		schema:   mapper.NewSchema(log),
		routes:   api.New(log),
		models:   model.New(log),
		config:   appconfig.New(log),
	}
}

// Analyze runs the three analyzers over the located source. They write
// disjoint sub-models, so they run concurrently; each is total and never
// fails, but the group respects context cancellation.
func (p *Pipeline) Analyze(ctx context.Context, in Input) (*ir.Project, error) {
	project := &ir.Project{
		Name:   in.ProjectName,
		Status: ir.StatusImported,
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		project.Backend = p.backend.Analyze(in.Routes)
		return nil
	})
	g.Go(func() error {
		project.Database = p.database.Analyze(in.Migrations)
		return nil
	})
	g.Go(func() error {
		project.Frontend = p.frontend.Analyze(in.UiSources)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.log.Info("analysis complete",
		zap.String("project", in.ProjectName),
		zap.Int("routes", len(project.Backend.Units)),
		zap.Int("collections", len(project.Database.Collections)),
		zap.Int("ui_units", len(project.Frontend.Units)))
	return project, nil
}

// Convert maps the analyzed IR in place and produces the generated tree,
// the compatibility report, and the model-conversion records. Generation is
// unconditional; the caller decides whether an incompatible report blocks
// deployment.
func (p *Pipeline) Convert(project *ir.Project, opts appconfig.Options) (*Result, error) {
	p.schema.Apply(&project.Database)

	selector := llm.NewSelector(p.log)
	for _, name := range project.Backend.UnitNames() {
		unit := project.Backend.Units[name]
		for i := range unit.ModelUsage {
			usage := &unit.ModelUsage[i]
			mapper.ApplyUsageDefaults(usage)
			// A usage still without a model after defaulting has an
			// unrecognized provider; it stays unresolved so no serving
			// block is generated and no conversion is recorded.
			if len(usage.DeclaredModels) == 0 {
				continue
			}
			usage.ResolvedEndpoint = selector.Resolve(usage.Provider, usage.DeclaredModels[0])
		}
	}

	files := make(map[string]string)

	routeFiles, err := p.routes.Generate(project)
	if err != nil {
		return nil, fmt.Errorf("generating routes: %w", err)
	}
	modelFiles, err := p.models.Generate(&project.Database)
	if err != nil {
		return nil, fmt.Errorf("generating models: %w", err)
	}
	configFiles, err := p.config.Generate(project, opts)
	if err != nil {
		return nil, fmt.Errorf("generating configuration: %w", err)
	}
	for _, m := range []map[string]string{routeFiles, modelFiles, configFiles} {
		for path, content := range m {
			files[path] = content
		}
	}

	report := validator.Validate(project)

	p.log.Info("conversion complete",
		zap.String("project", project.Name),
		zap.Int("files", len(files)),
		zap.Bool("compatible", report.Compatible))

	return &Result{
		Files:       files,
		Report:      report,
		Conversions: selector.Summary(),
	}, nil
}
