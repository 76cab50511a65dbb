package scanner

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Structure records which conventional directories the tree contains.
type Structure struct {
	HasSrc         bool `json:"has_src"`
	HasComponents  bool `json:"has_components"`
	HasPages       bool `json:"has_pages"`
	HasFunctions   bool `json:"has_functions"`
	HasMigrations  bool `json:"has_migrations"`
	HasPackageJSON bool `json:"has_package_json"`
}

// PackageFacts carries the fields read out of package.json.
type PackageFacts struct {
	Name            string            `json:"name,omitempty"`
	Version         string            `json:"version,omitempty"`
	Dependencies    map[string]string `json:"dependencies,omitempty"`
	DevDependencies map[string]string `json:"devDependencies,omitempty"`
}

// Facts is the structural metadata reported in the import summary.
type Facts struct {
	Name      string       `json:"name"`
	Path      string       `json:"path"`
	Structure Structure    `json:"structure"`
	Package   PackageFacts `json:"package_json"`
}

// Scan reports structural facts about the tree. A malformed package.json is
// logged and reported empty rather than failing the scan.
func (s *Scanner) Scan() Facts {
	facts := Facts{
		Name: s.Name,
		Path: s.Root,
		Structure: Structure{
			HasSrc:         dirExists(filepath.Join(s.Root, "src")),
			HasComponents:  dirExists(filepath.Join(s.Root, "src", "components")),
			HasPages:       dirExists(filepath.Join(s.Root, "src", "pages")),
			HasFunctions:   dirExists(filepath.Join(s.Root, "supabase", "functions")),
			HasMigrations:  dirExists(filepath.Join(s.Root, "supabase", "migrations")),
			HasPackageJSON: fileExists(filepath.Join(s.Root, "package.json")),
		},
	}

	if raw, err := os.ReadFile(filepath.Join(s.Root, "package.json")); err == nil {
		if err := json.Unmarshal(raw, &facts.Package); err != nil {
			s.log.Warn("malformed package.json, ignoring")
			facts.Package = PackageFacts{}
		}
	}
	return facts
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
