package project_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lakeshift/lakeshift/internal/config"
	"github.com/lakeshift/lakeshift/internal/errs"
	"github.com/lakeshift/lakeshift/internal/ir"
	"github.com/lakeshift/lakeshift/internal/project"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Host:      "https://dbc.example.com",
		TokenEnv:  "LAKESHIFT_TEST_DEPLOY_TOKEN",
		Catalog:   "main",
		Schema:    "default",
		OutputDir: t.TempDir(),
	}
}

// fixtureProject lays out a minimal source tree with one function, one
// migration, and one component.
func fixtureProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"supabase/functions/get-users/index.ts": `
			const { data } = await client.from('users').select('*')
		`,
		"supabase/migrations/0001_users.sql": `
			CREATE TABLE users (
			  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			  email TEXT NOT NULL
			);
		`,
		"src/components/UserList.tsx": "export const UserList = () => null",
	}
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestImportFromDirectory(t *testing.T) {
	svc := project.NewService(testConfig(t), zap.NewNop())

	id, record, err := svc.Import(context.Background(), fixtureProject(t), "acme")
	require.NoError(t, err)

	assert.Regexp(t, `^proj_[0-9a-f]{12}$`, id)
	assert.Equal(t, "acme", record.Project.Name)
	assert.Equal(t, ir.StatusImported, record.Project.Status)

	analysis := record.Summarize()
	assert.Equal(t, 1, analysis.Endpoints)
	assert.Equal(t, 1, analysis.Tables)
	assert.Equal(t, 1, analysis.Components)
	assert.Equal(t, 0, analysis.Pages)
}

func TestImportMissingOrigin(t *testing.T) {
	svc := project.NewService(testConfig(t), zap.NewNop())

	_, _, err := svc.Import(context.Background(), filepath.Join(t.TempDir(), "nope"), "")

	var coded *errs.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, errs.CodeImportFailed, coded.Code)
}

func TestConvertWritesOutputTree(t *testing.T) {
	cfg := testConfig(t)
	svc := project.NewService(cfg, zap.NewNop())

	id, _, err := svc.Import(context.Background(), fixtureProject(t), "acme")
	require.NoError(t, err)

	record, err := svc.Convert(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, ir.StatusConverted, record.Project.Status)
	assert.Equal(t, filepath.Join(cfg.OutputDir, id), record.OutputDir)
	require.NotNil(t, record.Report)
	require.NotNil(t, record.Conversions)

	for _, rel := range []string{"app/main.py", "app/models/users.py", "app.yaml", "requirements.txt"} {
		_, err := os.Stat(filepath.Join(record.OutputDir, rel))
		assert.NoError(t, err, rel)
	}
}

func TestConvertUnknownProject(t *testing.T) {
	svc := project.NewService(testConfig(t), zap.NewNop())

	_, err := svc.Convert(context.Background(), "proj_missing")

	var coded *errs.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, errs.CodeProjectNotFound, coded.Code)
}

func TestDeployRequiresConversion(t *testing.T) {
	svc := project.NewService(testConfig(t), zap.NewNop())

	id, _, err := svc.Import(context.Background(), fixtureProject(t), "acme")
	require.NoError(t, err)

	_, err = svc.Deploy(context.Background(), id)

	var coded *errs.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, errs.CodeProjectNotConverted, coded.Code)
}

func TestDeployMissingEnvironment(t *testing.T) {
	svc := project.NewService(testConfig(t), zap.NewNop())

	id, _, err := svc.Import(context.Background(), fixtureProject(t), "acme")
	require.NoError(t, err)
	_, err = svc.Convert(context.Background(), id)
	require.NoError(t, err)

	_, err = svc.Deploy(context.Background(), id)

	var coded *errs.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, errs.CodeDeploymentValidationFailed, coded.Code)
	assert.Contains(t, coded.Details["missing"], "LAKESHIFT_TEST_DEPLOY_TOKEN")
}

// workspaceStub answers every workspace API call for a deploy: mkdirs and
// file imports succeed, and the app reports RUNNING.
func workspaceStub(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var uploads atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/2.0/workspace-files/import-file/") {
			uploads.Add(1)
			w.WriteHeader(http.StatusOK)
			return
		}
		if strings.HasPrefix(r.URL.Path, "/api/2.0/apps/") {
			json.NewEncoder(w).Encode(map[string]string{
				"name":  "acme",
				"state": "RUNNING",
				"url":   "https://apps.example.com/acme",
			})
			return
		}
		w.Write([]byte("{}"))
	}))
	t.Cleanup(server.Close)
	return server, &uploads
}

func TestDeployUploadsAndWaitsReady(t *testing.T) {
	server, uploads := workspaceStub(t)
	t.Setenv("LAKESHIFT_TEST_DEPLOY_TOKEN", "secret")

	cfg := testConfig(t)
	cfg.Host = server.URL
	cfg.PollTimeout = time.Second
	svc := project.NewService(cfg, zap.NewNop())

	id, _, err := svc.Import(context.Background(), fixtureProject(t), "acme")
	require.NoError(t, err)
	_, err = svc.Convert(context.Background(), id)
	require.NoError(t, err)

	deployment, err := svc.Deploy(context.Background(), id)
	require.NoError(t, err)

	assert.Regexp(t, `^deploy_[0-9a-f]{12}$`, deployment.ID)
	assert.Equal(t, "acme", deployment.AppName)
	assert.Equal(t, "RUNNING", deployment.State)
	assert.Equal(t, "https://apps.example.com/acme", deployment.URL)
	assert.Greater(t, uploads.Load(), int64(0))

	record, err := svc.Project(id)
	require.NoError(t, err)
	assert.Equal(t, ir.StatusDeployed, record.Project.Status)

	refreshed, err := svc.Status(context.Background(), deployment.ID)
	require.NoError(t, err)
	assert.Equal(t, "RUNNING", refreshed.State)
}

func TestStatusUnknownDeployment(t *testing.T) {
	svc := project.NewService(testConfig(t), zap.NewNop())

	_, err := svc.Status(context.Background(), "deploy_missing")

	var coded *errs.Error
	require.ErrorAs(t, err, &coded)
	assert.Equal(t, errs.CodeDeploymentNotFound, coded.Code)
}

func TestProjectLookup(t *testing.T) {
	svc := project.NewService(testConfig(t), zap.NewNop())

	id, _, err := svc.Import(context.Background(), fixtureProject(t), "acme")
	require.NoError(t, err)

	record, err := svc.Project(id)
	require.NoError(t, err)
	assert.Equal(t, "acme", record.Project.Name)

	_, err = svc.Project("proj_other")
	assert.Error(t, err)
}
