// Package project is the orchestration layer: it owns project and
// deployment identity, the keyed stores, and the four user-facing
// operations (import, convert, deploy, status). The pipeline underneath is
// stateless; everything stateful lives here.
package project

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lakeshift/lakeshift/internal/codegen"
	"github.com/lakeshift/lakeshift/internal/config"
	"github.com/lakeshift/lakeshift/internal/deploy"
	"github.com/lakeshift/lakeshift/internal/errs"
	"github.com/lakeshift/lakeshift/internal/generators/appconfig"
	"github.com/lakeshift/lakeshift/internal/ir"
	"github.com/lakeshift/lakeshift/internal/llm"
	"github.com/lakeshift/lakeshift/internal/pipeline"
	"github.com/lakeshift/lakeshift/internal/scanner"
	"github.com/lakeshift/lakeshift/internal/store"
	"github.com/lakeshift/lakeshift/internal/validator"
)

// appPollInterval is how often Deploy polls the app state while waiting for
// it to come up.
const appPollInterval = 5 * time.Second

// Record is everything the service tracks about one imported project.
type Record struct {
	Project *ir.Project   `json:"project"`
	Origin  string        `json:"origin"`
	Facts   scanner.Facts `json:"facts"`

	// Filled by Convert.
	OutputDir   string            `json:"output_dir,omitempty"`
	Report      *validator.Report `json:"report,omitempty"`
	Conversions *llm.Summary      `json:"conversions,omitempty"`
}

// Analysis summarizes an import for display.
type Analysis struct {
	Endpoints  int `json:"api_endpoints"`
	Tables     int `json:"database_tables"`
	Components int `json:"components"`
	Pages      int `json:"pages"`
}

// Summarize counts the analyzed sub-models.
func (r *Record) Summarize() Analysis {
	a := Analysis{
		Endpoints: len(r.Project.Backend.Units),
		Tables:    len(r.Project.Database.Collections),
	}
	for _, unit := range r.Project.Frontend.Units {
		if unit.IsPage {
			a.Pages++
		} else {
			a.Components++
		}
	}
	return a
}

// Deployment tracks one deploy of a converted project.
type Deployment struct {
	ID        string    `json:"deployment_id"`
	ProjectID string    `json:"project_id"`
	AppName   string    `json:"app_name"`
	State     string    `json:"state"`
	URL       string    `json:"url,omitempty"`
	StartedAt time.Time `json:"started_at"`
}

// Service wires the pipeline, the stores, and the workspace collaborators.
type Service struct {
	cfg      *config.Config
	log      *zap.Logger
	pipeline *pipeline.Pipeline

	projects    *store.Memory[*Record]
	deployments *store.Memory[*Deployment]
}

// NewService creates a service with fresh in-memory stores.
func NewService(cfg *config.Config, log *zap.Logger) *Service {
	return &Service{
		cfg:         cfg,
		log:         log,
		pipeline:    pipeline.New(log),
		projects:    store.NewMemory[*Record](),
		deployments: store.NewMemory[*Deployment](),
	}
}

// Import locates the source tree at origin (local directory, GitHub URL, or
// ZIP URL), analyzes it, and stores the result under a fresh project ID.
func (s *Service) Import(ctx context.Context, origin, name string) (string, *Record, error) {
	scan, err := s.open(ctx, origin, name)
	if err != nil {
		return "", nil, errs.Wrap(errs.CodeImportFailed, "failed to locate project source", err).
			With("origin", origin)
	}
	defer scan.Close()

	routes, migrations, uiSources := scan.Sources()
	project, err := s.pipeline.Analyze(ctx, pipeline.Input{
		ProjectName: scan.Name,
		Routes:      routes,
		Migrations:  migrations,
		UiSources:   uiSources,
	})
	if err != nil {
		return "", nil, errs.Wrap(errs.CodeImportFailed, "analysis failed", err).
			With("origin", origin)
	}

	id := "proj_" + shortID()
	project.ID = id
	project.Origin = origin

	record := &Record{
		Project: project,
		Origin:  origin,
		Facts:   scan.Scan(),
	}
	s.projects.Put(id, record)

	s.log.Info("project imported",
		zap.String("project_id", id),
		zap.String("name", project.Name))
	return id, record, nil
}

// Convert maps and generates the stored project, writes the output tree
// under the configured directory, and advances the lifecycle.
func (s *Service) Convert(ctx context.Context, projectID string) (*Record, error) {
	record, err := s.projects.Get(projectID)
	if err != nil {
		return nil, errs.New(errs.CodeProjectNotFound, "no project with that identifier").
			With("project_id", projectID)
	}

	result, err := s.pipeline.Convert(record.Project, appconfig.Options{
		Catalog: s.cfg.Catalog,
		Schema:  s.cfg.Schema,
		Host:    s.cfg.Host,
	})
	if err != nil {
		return nil, errs.Wrap(errs.CodeConversionFailed, "conversion failed", err).
			With("project_id", projectID)
	}

	outputDir := filepath.Join(s.cfg.OutputDir, projectID)
	ops := codegen.FileOps(outputDir, result.Files)
	if err := codegen.Execute(ctx, ops, codegen.ExecuteOptions{}); err != nil {
		return nil, errs.Wrap(errs.CodeConversionFailed, "writing generated files", err).
			With("project_id", projectID)
	}

	record.OutputDir = outputDir
	record.Report = &result.Report
	record.Conversions = &result.Conversions
	if record.Project.Status.CanAdvance(ir.StatusConverted) {
		record.Project.Status = ir.StatusConverted
	}
	s.projects.Put(projectID, record)

	s.log.Info("project converted",
		zap.String("project_id", projectID),
		zap.Int("files", len(result.Files)),
		zap.Bool("compatible", result.Report.Compatible))
	return record, nil
}

// Deploy runs the preflight checks, uploads the generated tree, creates or
// updates the app, and stores a deployment record. The compatibility report
// never blocks here; only preflight errors do.
func (s *Service) Deploy(ctx context.Context, projectID string) (*Deployment, error) {
	record, err := s.projects.Get(projectID)
	if err != nil {
		return nil, errs.New(errs.CodeProjectNotFound, "no project with that identifier").
			With("project_id", projectID)
	}
	if record.Project.Status == ir.StatusImported || record.OutputDir == "" {
		return nil, errs.New(errs.CodeProjectNotConverted, "project must be converted before deploying").
			With("project_id", projectID)
	}

	preflight := validator.NewPreflight(s.log).Check(record.OutputDir, s.cfg.Catalog, s.cfg.Schema)
	if !preflight.Valid {
		return nil, errs.New(errs.CodeDeploymentValidationFailed, "deployment preflight failed").
			With("project_id", projectID).
			With("errors", preflight.Errors).
			With("warnings", preflight.Warnings)
	}
	if missing, _ := validator.CheckEnvironment([]string{s.cfg.TokenEnv}); len(missing) > 0 {
		return nil, errs.New(errs.CodeDeploymentValidationFailed, "required environment variables missing").
			With("project_id", projectID).
			With("missing", missing)
	}

	token, err := s.cfg.Token()
	if err != nil {
		return nil, errs.Wrap(errs.CodeDeploymentFailed, "workspace credentials missing", err)
	}
	client := deploy.NewClient(s.cfg.Host, token, s.log)

	appName := record.Project.Name
	workspacePath := "/Workspace/Apps/" + appName
	if err := client.UploadTree(ctx, record.OutputDir, workspacePath); err != nil {
		return nil, errs.Wrap(errs.CodeDeploymentFailed, "uploading generated tree", err).
			With("project_id", projectID)
	}

	description := fmt.Sprintf("Migrated app for %s", record.Project.Name)
	status, err := client.CreateOrUpdateApp(ctx, appName, workspacePath, description)
	if err != nil {
		return nil, errs.Wrap(errs.CodeDeploymentFailed, "creating app", err).
			With("project_id", projectID)
	}

	if s.cfg.PollTimeout > 0 {
		status, err = client.WaitReady(ctx, appName, s.cfg.PollTimeout, appPollInterval)
		if err != nil {
			return nil, errs.Wrap(errs.CodeDeploymentFailed, "waiting for app to become ready", err).
				With("project_id", projectID)
		}
	}

	if s.cfg.WarehouseID != "" && len(record.Project.Database.Collections) > 0 {
		dbDeployer := deploy.NewDatabaseDeployer(client, s.cfg.WarehouseID, s.log)
		if err := dbDeployer.Deploy(ctx, s.cfg.Catalog, s.cfg.Schema, &record.Project.Database); err != nil {
			return nil, errs.Wrap(errs.CodeDeploymentFailed, "deploying database schema", err).
				With("project_id", projectID)
		}
	}

	deployment := &Deployment{
		ID:        "deploy_" + shortID(),
		ProjectID: projectID,
		AppName:   appName,
		State:     status.State,
		URL:       status.URL,
		StartedAt: time.Now().UTC(),
	}
	s.deployments.Put(deployment.ID, deployment)

	if record.Project.Status.CanAdvance(ir.StatusDeployed) {
		record.Project.Status = ir.StatusDeployed
		s.projects.Put(projectID, record)
	}

	s.log.Info("project deployed",
		zap.String("project_id", projectID),
		zap.String("deployment_id", deployment.ID))
	return deployment, nil
}

// Status refreshes and returns the state of a deployment.
func (s *Service) Status(ctx context.Context, deploymentID string) (*Deployment, error) {
	deployment, err := s.deployments.Get(deploymentID)
	if err != nil {
		return nil, errs.New(errs.CodeDeploymentNotFound, "no deployment with that identifier").
			With("deployment_id", deploymentID)
	}

	token, err := s.cfg.Token()
	if err != nil {
		return nil, errs.Wrap(errs.CodeStatusCheckFailed, "workspace credentials missing", err)
	}
	client := deploy.NewClient(s.cfg.Host, token, s.log)

	status, err := client.Status(ctx, deployment.AppName)
	if err != nil {
		return nil, errs.Wrap(errs.CodeStatusCheckFailed, "fetching app status", err).
			With("deployment_id", deploymentID)
	}

	updateErr := s.deployments.Update(deploymentID, func(d *Deployment) *Deployment {
		d.State = status.State
		if status.URL != "" {
			d.URL = status.URL
		}
		return d
	})
	if updateErr != nil {
		return nil, errs.New(errs.CodeDeploymentNotFound, "no deployment with that identifier").
			With("deployment_id", deploymentID)
	}
	return s.deployments.Get(deploymentID)
}

// Project returns the stored record for an identifier.
func (s *Service) Project(projectID string) (*Record, error) {
	record, err := s.projects.Get(projectID)
	if err != nil {
		return nil, errs.New(errs.CodeProjectNotFound, "no project with that identifier").
			With("project_id", projectID)
	}
	return record, nil
}

func (s *Service) open(ctx context.Context, origin, name string) (*scanner.Scanner, error) {
	if isURL(origin) {
		return scanner.FromURL(ctx, origin, name, s.log)
	}
	scan, err := scanner.FromDir(origin, s.log)
	if err != nil {
		return nil, err
	}
	if name != "" {
		scan.Name = name
	}
	return scan, nil
}

func isURL(origin string) bool {
	return len(origin) > 8 && (origin[:7] == "http://" || origin[:8] == "https://")
}

func shortID() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:6])
}
