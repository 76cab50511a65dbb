// Package scanner locates a project source tree and reads the source text
// the pipeline consumes. Trees come from a local directory, a GitHub clone,
// or a ZIP download; layout discovery follows the conventional structure
// (supabase/functions, supabase/migrations, src/components, src/pages).
package scanner

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/lakeshift/lakeshift/internal/analyzers/database"
	"github.com/lakeshift/lakeshift/internal/analyzers/frontend"
)

// Scanner reads source text out of a located project tree.
type Scanner struct {
	Root string
	Name string

	log  *zap.Logger
	temp bool
}

// FromDir scans an existing local directory.
func FromDir(dir string, log *zap.Logger) (*Scanner, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("opening project directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	return &Scanner{Root: abs, Name: filepath.Base(abs), log: log}, nil
}

// FromURL fetches a project from a GitHub repository URL or a ZIP download
// URL into a temporary directory. Close removes the directory.
func FromURL(ctx context.Context, url, name string, log *zap.Logger) (*Scanner, error) {
	switch {
	case strings.Contains(url, "github.com"):
		return fromGit(ctx, url, name, log)
	case strings.HasSuffix(url, ".zip"):
		return fromZip(ctx, url, name, log)
	default:
		return nil, fmt.Errorf("unsupported url format: %s", url)
	}
}

// Close removes the temporary tree, if the scanner owns one.
func (s *Scanner) Close() error {
	if !s.temp {
		return nil
	}
	return os.RemoveAll(s.Root)
}

func fromGit(ctx context.Context, url, name string, log *zap.Logger) (*Scanner, error) {
	temp, err := os.MkdirTemp("", "lakeshift-")
	if err != nil {
		return nil, err
	}

	log.Info("cloning repository", zap.String("url", url))
	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", url, temp)
	if out, err := cmd.CombinedOutput(); err != nil {
		os.RemoveAll(temp)
		return nil, fmt.Errorf("cloning %s: %w: %s", url, err, strings.TrimSpace(string(out)))
	}

	if name == "" {
		name = strings.TrimSuffix(filepath.Base(strings.TrimRight(url, "/")), ".git")
	}
	return &Scanner{Root: temp, Name: name, log: log, temp: true}, nil
}

func fromZip(ctx context.Context, url, name string, log *zap.Logger) (*Scanner, error) {
	temp, err := os.MkdirTemp("", "lakeshift-")
	if err != nil {
		return nil, err
	}

	log.Info("downloading archive", zap.String("url", url))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		os.RemoveAll(temp)
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		os.RemoveAll(temp)
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		os.RemoveAll(temp)
		return nil, fmt.Errorf("downloading %s: status %d", url, resp.StatusCode)
	}

	archivePath := filepath.Join(temp, "project.zip")
	out, err := os.Create(archivePath)
	if err != nil {
		os.RemoveAll(temp)
		return nil, err
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.RemoveAll(temp)
		return nil, fmt.Errorf("saving archive: %w", err)
	}
	out.Close()

	if err := extractZip(archivePath, temp); err != nil {
		os.RemoveAll(temp)
		return nil, fmt.Errorf("extracting archive: %w", err)
	}
	os.Remove(archivePath)

	// Single-subdirectory archives unwrap to that subdirectory.
	root := temp
	entries, err := os.ReadDir(temp)
	if err == nil {
		var dirs []string
		for _, e := range entries {
			if e.IsDir() {
				dirs = append(dirs, e.Name())
			}
		}
		if len(dirs) == 1 && len(entries) == 1 {
			root = filepath.Join(temp, dirs[0])
		}
	}

	if name == "" {
		name = filepath.Base(root)
	}
	return &Scanner{Root: root, Name: name, log: log, temp: true}, nil
}

func extractZip(archivePath, dest string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, file := range reader.File {
		target := filepath.Join(dest, filepath.Clean(file.Name))
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes destination: %s", file.Name)
		}
		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		src, err := file.Open()
		if err != nil {
			return err
		}
		dst, err := os.Create(target)
		if err != nil {
			src.Close()
			return err
		}
		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// Sources reads the pipeline input out of the tree. Unreadable units are
// logged and skipped; a missing conventional directory simply contributes
// nothing.
func (s *Scanner) Sources() (map[string]string, []database.Migration, []frontend.Source) {
	return s.readRoutes(), s.readMigrations(), s.readUiSources()
}

func (s *Scanner) readRoutes() map[string]string {
	routes := make(map[string]string)
	functionsDir := filepath.Join(s.Root, "supabase", "functions")
	entries, err := os.ReadDir(functionsDir)
	if err != nil {
		return routes
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), "_") {
			continue
		}
		var text string
		var found bool
		for _, index := range []string{"index.ts", "index.js"} {
			raw, err := os.ReadFile(filepath.Join(functionsDir, entry.Name(), index))
			if err == nil {
				text = string(raw)
				found = true
				break
			}
		}
		if !found {
			s.log.Warn("route unit has no entry file, skipping",
				zap.String("unit", entry.Name()))
			continue
		}
		routes[entry.Name()] = text
	}
	return routes
}

// readMigrations returns migrations in lexical filename order; os.ReadDir
// already sorts entries by name.
func (s *Scanner) readMigrations() []database.Migration {
	migrationsDir := filepath.Join(s.Root, "supabase", "migrations")
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		return nil
	}

	var migrations []database.Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(migrationsDir, entry.Name()))
		if err != nil {
			s.log.Warn("unreadable migration, skipping",
				zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		migrations = append(migrations, database.Migration{
			Name: entry.Name(),
			SQL:  string(raw),
		})
	}
	return migrations
}

func (s *Scanner) readUiSources() []frontend.Source {
	var sources []frontend.Source
	sources = append(sources, s.readUiDir(filepath.Join(s.Root, "src", "components"), false)...)
	sources = append(sources, s.readUiDir(filepath.Join(s.Root, "src", "pages"), true)...)

	for _, rootFile := range []string{"App.tsx", "App.jsx", "main.tsx", "main.jsx"} {
		raw, err := os.ReadFile(filepath.Join(s.Root, "src", rootFile))
		if err != nil {
			continue
		}
		sources = append(sources, frontend.Source{
			Name:     strings.TrimSuffix(rootFile, filepath.Ext(rootFile)),
			Filename: rootFile,
			Text:     string(raw),
		})
	}
	return sources
}

func (s *Scanner) readUiDir(dir string, isPage bool) []frontend.Source {
	var sources []frontend.Source
	filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext != ".tsx" && ext != ".jsx" {
			return nil
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn("unreadable ui source, skipping",
				zap.String("file", path), zap.Error(err))
			return nil
		}
		base := filepath.Base(path)
		sources = append(sources, frontend.Source{
			Name:     strings.TrimSuffix(base, ext),
			Filename: base,
			IsPage:   isPage,
			Text:     string(raw),
		})
		return nil
	})
	return sources
}
