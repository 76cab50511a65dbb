// Package codegen provides template rendering and the plan/execute file
// operations used to materialize generated artifacts.
package codegen

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"sync"
	"text/template"
	"unicode"
)

// Renderer handles template parsing and rendering with caching.
// Safe for concurrent use.
type Renderer struct {
	funcMap template.FuncMap
	cache   map[string]*template.Template
	mu      sync.RWMutex
}

// NewRenderer creates a renderer with the built-in helper functions.
func NewRenderer() *Renderer {
	return &Renderer{
		funcMap: defaultFuncMap(),
		cache:   make(map[string]*template.Template),
	}
}

// RenderFS renders a template from an embedded filesystem.
func (r *Renderer) RenderFS(fs embed.FS, path string, data any) ([]byte, error) {
	r.mu.RLock()
	if tmpl, ok := r.cache[path]; ok {
		r.mu.RUnlock()
		return execute(tmpl, data)
	}
	r.mu.RUnlock()

	raw, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading template %s: %w", path, err)
	}

	tmpl, err := template.New(path).Funcs(r.funcMap).Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", path, err)
	}

	r.mu.Lock()
	r.cache[path] = tmpl
	r.mu.Unlock()

	return execute(tmpl, data)
}

// RenderString renders a template given as a string; name is used for
// caching and error messages.
func (r *Renderer) RenderString(name, templateStr string, data any) ([]byte, error) {
	cacheKey := "string:" + name

	r.mu.RLock()
	if tmpl, ok := r.cache[cacheKey]; ok {
		r.mu.RUnlock()
		return execute(tmpl, data)
	}
	r.mu.RUnlock()

	tmpl, err := template.New(name).Funcs(r.funcMap).Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}

	r.mu.Lock()
	r.cache[cacheKey] = tmpl
	r.mu.Unlock()

	return execute(tmpl, data)
}

func execute(tmpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering template %s: %w", tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}

func defaultFuncMap() template.FuncMap {
	return template.FuncMap{
		"pascalCase": PascalCase,
		"snakeCase":  SnakeCase,
		"pyIdent":    PyIdent,
		"quote":      func(s string) string { return `"` + s + `"` },
		"upper":      strings.ToUpper,
		"lower":      strings.ToLower,
		"join":       strings.Join,
		"contains":   strings.Contains,
		"replace":    strings.ReplaceAll,
		"trim":       strings.TrimSpace,
	}
}

// PascalCase converts snake_case or camelCase to PascalCase.
// Examples: user_profiles → UserProfiles, userName → UserName.
func PascalCase(s string) string {
	if s == "" {
		return ""
	}

	if strings.Contains(s, "_") {
		parts := strings.Split(s, "_")
		for i, part := range parts {
			parts[i] = capitalize(part)
		}
		return strings.Join(parts, "")
	}

	if unicode.IsLower(rune(s[0])) {
		return strings.ToUpper(s[:1]) + s[1:]
	}
	return s
}

// SnakeCase converts PascalCase or camelCase to snake_case.
func SnakeCase(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// PyIdent makes a name safe as a Python identifier.
func PyIdent(s string) string {
	return strings.ReplaceAll(s, "-", "_")
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
