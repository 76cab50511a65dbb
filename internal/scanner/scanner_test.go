package scanner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lakeshift/lakeshift/internal/scanner"
)

// conventionalTree lays out a fixture project following the source layout the
// scanner discovers: supabase/functions, supabase/migrations, src.
func conventionalTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"supabase/functions/get-users/index.ts":  "export default handler",
		"supabase/functions/send-email/index.js": "module.exports = handler",
		"supabase/functions/_shared/cors.ts":     "export const cors = {}",
		"supabase/migrations/0002_orders.sql":    "CREATE TABLE orders (id UUID);",
		"supabase/migrations/0001_users.sql":     "CREATE TABLE users (id UUID);",
		"supabase/migrations/README.md":          "notes",
		"src/components/Navbar.tsx":              "export const Navbar = () => null",
		"src/components/widgets/Chart.jsx":       "export const Chart = () => null",
		"src/pages/Home.tsx":                     "export default function Home() {}",
		"src/App.tsx":                            "<Route path=\"/\" />",
		"package.json":                           `{"name": "acme", "version": "1.0.0", "dependencies": {"react": "^18.0.0"}}`,
	}
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

func TestFromDirRejectsMissing(t *testing.T) {
	_, err := scanner.FromDir(filepath.Join(t.TempDir(), "nope"), zap.NewNop())
	assert.Error(t, err)
}

func TestFromDirRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	_, err := scanner.FromDir(path, zap.NewNop())
	assert.Error(t, err)
}

func TestSourcesRoutes(t *testing.T) {
	s, err := scanner.FromDir(conventionalTree(t), zap.NewNop())
	require.NoError(t, err)

	routes, _, _ := s.Sources()

	assert.Len(t, routes, 2)
	assert.Equal(t, "export default handler", routes["get-users"])
	assert.Equal(t, "module.exports = handler", routes["send-email"])
	// Underscore-prefixed directories are shared helpers, not route units.
	assert.NotContains(t, routes, "_shared")
}

func TestSourcesMigrationsLexicalOrder(t *testing.T) {
	s, err := scanner.FromDir(conventionalTree(t), zap.NewNop())
	require.NoError(t, err)

	_, migrations, _ := s.Sources()

	require.Len(t, migrations, 2)
	assert.Equal(t, "0001_users.sql", migrations[0].Name)
	assert.Equal(t, "0002_orders.sql", migrations[1].Name)
	assert.Contains(t, migrations[0].SQL, "CREATE TABLE users")
}

func TestSourcesUiUnits(t *testing.T) {
	s, err := scanner.FromDir(conventionalTree(t), zap.NewNop())
	require.NoError(t, err)

	_, _, uiSources := s.Sources()

	byName := make(map[string]bool)
	pages := make(map[string]bool)
	for _, src := range uiSources {
		byName[src.Name] = true
		pages[src.Name] = src.IsPage
	}

	// Components walk recursively, pages are tagged, the root routing file
	// is picked up from src/ directly.
	assert.True(t, byName["Navbar"])
	assert.True(t, byName["Chart"])
	assert.True(t, byName["Home"])
	assert.True(t, byName["App"])
	assert.False(t, pages["Navbar"])
	assert.False(t, pages["Chart"])
	assert.True(t, pages["Home"])
	assert.False(t, pages["App"])
}

func TestSourcesEmptyTree(t *testing.T) {
	s, err := scanner.FromDir(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	routes, migrations, uiSources := s.Sources()
	assert.Empty(t, routes)
	assert.Empty(t, migrations)
	assert.Empty(t, uiSources)
}

func TestScanFacts(t *testing.T) {
	dir := conventionalTree(t)
	s, err := scanner.FromDir(dir, zap.NewNop())
	require.NoError(t, err)

	facts := s.Scan()

	assert.Equal(t, filepath.Base(dir), facts.Name)
	assert.True(t, facts.Structure.HasSrc)
	assert.True(t, facts.Structure.HasComponents)
	assert.True(t, facts.Structure.HasPages)
	assert.True(t, facts.Structure.HasFunctions)
	assert.True(t, facts.Structure.HasMigrations)
	assert.True(t, facts.Structure.HasPackageJSON)
	assert.Equal(t, "acme", facts.Package.Name)
	assert.Equal(t, "^18.0.0", facts.Package.Dependencies["react"])
}

func TestScanMalformedPackageJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{not json"), 0o644))

	s, err := scanner.FromDir(dir, zap.NewNop())
	require.NoError(t, err)

	facts := s.Scan()
	assert.True(t, facts.Structure.HasPackageJSON)
	assert.Empty(t, facts.Package.Name)
}

func TestFromURLUnsupported(t *testing.T) {
	_, err := scanner.FromURL(context.Background(), "ftp://example.com/project", "x", zap.NewNop())
	assert.Error(t, err)
}

func TestCloseKeepsLocalDir(t *testing.T) {
	dir := conventionalTree(t)
	s, err := scanner.FromDir(dir, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Close())
	_, err = os.Stat(dir)
	assert.NoError(t, err)
}
