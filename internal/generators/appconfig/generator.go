// Package appconfig renders the deployment configuration artifacts:
// app.yaml, databricks.yml, .env.example and requirements.txt.
package appconfig

import (
	"embed"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lakeshift/lakeshift/internal/codegen"
	"github.com/lakeshift/lakeshift/internal/ir"
	"github.com/lakeshift/lakeshift/internal/llm"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Options carries the workspace-specific values baked into the rendered
// configuration.
type Options struct {
	Catalog string
	Schema  string
	Host    string
}

// Generator renders deployment configuration from a mapped project.
type Generator struct {
	renderer *codegen.Renderer
	log      *zap.Logger
}

// New creates a config generator.
func New(log *zap.Logger) *Generator {
	return &Generator{
		renderer: codegen.NewRenderer(),
		log:      log,
	}
}

type endpointVar struct {
	EnvVar string
	Model  string
}

type configData struct {
	ProjectName string
	AppName     string
	Catalog     string
	Schema      string
	Host        string

	MemoryRequest string
	MemoryLimit   string
	CPURequest    string
	CPULimit      string

	LLMEnabled       bool
	LLMEndpoints     []endpointVar
	ExternalServices []string
}

// Generate returns the configuration artifacts as a relative-path → content
// map. Resource sizing scales with project complexity: past five route units
// or ten collections the larger tier applies.
func (g *Generator) Generate(project *ir.Project, opts Options) (map[string]string, error) {
	if opts.Catalog == "" {
		opts.Catalog = "main"
	}
	if opts.Schema == "" {
		opts.Schema = "default"
	}
	if opts.Host == "" {
		opts.Host = "${DATABRICKS_HOST}"
	}

	data := configData{
		ProjectName: project.Name,
		AppName:     appName(project.Name),
		Catalog:     opts.Catalog,
		Schema:      opts.Schema,
		Host:        opts.Host,

		MemoryRequest: "512Mi",
		MemoryLimit:   "1Gi",
		CPURequest:    "250m",
		CPULimit:      "500m",
	}
	if len(project.Backend.Units) > 5 || len(project.Database.Collections) > 10 {
		data.MemoryRequest = "2Gi"
		data.MemoryLimit = "4Gi"
		data.CPURequest = "1000m"
		data.CPULimit = "2000m"
	}

	seen := make(map[string]bool)
	for _, name := range project.Backend.UnitNames() {
		unit := project.Backend.Units[name]
		for _, usage := range unit.ModelUsage {
			data.LLMEnabled = true
			if usage.Provider != "OpenAI" && usage.Provider != "Anthropic" {
				continue
			}
			model := llm.DefaultEndpoint
			if len(usage.DeclaredModels) > 0 {
				model = usage.DeclaredModels[0]
			}
			data.LLMEndpoints = append(data.LLMEndpoints, endpointVar{
				EnvVar: strings.ToUpper(codegen.PyIdent(name)) + "_LLM_MODEL",
				Model:  model,
			})
		}
		for _, host := range unit.ExternalHosts {
			service := strings.ToUpper(strings.SplitN(host, ".", 2)[0])
			if !seen[service] {
				seen[service] = true
				data.ExternalServices = append(data.ExternalServices, service)
			}
		}
	}

	files := make(map[string]string)
	for name, tmpl := range map[string]string{
		"app.yaml":       "templates/app.yaml.tmpl",
		"databricks.yml": "templates/databricks.yml.tmpl",
		".env.example":   "templates/env.example.tmpl",
	} {
		content, err := g.renderer.RenderFS(templatesFS, tmpl, data)
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", name, err)
		}
		files[name] = string(content)
	}

	reqs, err := g.renderer.RenderFS(templatesFS, "templates/requirements.txt.tmpl", data)
	if err != nil {
		return nil, fmt.Errorf("generating requirements.txt: %w", err)
	}
	files["requirements.txt"] = string(reqs)

	g.log.Info("configuration artifacts generated",
		zap.String("project", project.Name),
		zap.Bool("llm_enabled", data.LLMEnabled))
	return files, nil
}

func appName(project string) string {
	return strings.ToLower(strings.ReplaceAll(project, " ", "-"))
}
