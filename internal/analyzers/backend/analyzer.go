// Package backend extracts RouteUnit facts from serverless function source.
//
// Extraction is heuristic: an enumerable table of textual patterns, not a
// grammar. Each rule is independent so it can be tested and extended without
// touching control flow.
package backend

import (
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/lakeshift/lakeshift/internal/ir"
)

// DefaultVerb is assumed when a unit has no explicit method comparison.
const DefaultVerb = "POST"

// httpVerbs is checked in declaration order so detected verbs come out in a
// stable sequence.
var httpVerbs = []string{"GET", "POST", "PUT", "DELETE", "PATCH"}

var verbPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(httpVerbs))
	for _, verb := range httpVerbs {
		m[verb] = regexp.MustCompile(`(?i)method\s*===?\s*["']` + verb + `["']`)
	}
	return m
}()

// opShapes maps client call verbs to operation kinds. Checked in this order;
// every call site yields its own DataOperation.
var opShapes = []struct {
	verb string
	kind ir.OpKind
}{
	{"select", ir.OpRead},
	{"insert", ir.OpCreate},
	{"update", ir.OpUpdate},
	{"delete", ir.OpDelete},
	{"upsert", ir.OpUpsert},
}

var opPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(opShapes))
	for _, shape := range opShapes {
		m[shape.verb] = regexp.MustCompile(`\w+\.from\(['"](\w+)['"]\)\.` + shape.verb + `\(`)
	}
	return m
}()

// authPatterns fire when a unit reads the session, the user, or the
// authorization header. Any single match marks the unit as auth-requiring.
var authPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\w+\.auth\.getUser\(`),
	regexp.MustCompile(`(?i)\w+\.auth\.getSession\(`),
	regexp.MustCompile(`(?i)headers\.get\(['"]authorization['"]\)`),
	regexp.MustCompile(`Authorization`),
}

var (
	fetchPattern   = regexp.MustCompile(`fetch\(['"]([^'"]+)['"]`)
	hostPattern    = regexp.MustCompile(`https?://([^/'"]+)`)
	modelPattern   = regexp.MustCompile(`model:\s*["']([^"']+)["']`)
	genericPattern = regexp.MustCompile(`(?i)(completion|chat|generate)`)
	payloadPattern = regexp.MustCompile(`(?:const|let|var)\s*\{([^}]+)\}\s*=\s*(?:await\s+)?\w+\.json\(\)`)
)

// Analyzer turns route source blobs into the Backend sub-model.
type Analyzer struct {
	log *zap.Logger
}

// New returns a route analyzer.
func New(log *zap.Logger) *Analyzer {
	return &Analyzer{log: log}
}

// Analyze extracts one RouteUnit per source blob. It never fails: a unit that
// matches nothing still produces a unit with defaults.
func (a *Analyzer) Analyze(units map[string]string) ir.Backend {
	backend := ir.Backend{Units: make(map[string]*ir.RouteUnit, len(units))}

	names := make([]string, 0, len(units))
	for name := range units {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		unit := a.analyzeUnit(name, units[name])
		backend.Units[name] = unit
		a.log.Debug("analyzed route unit",
			zap.String("unit", name),
			zap.Strings("verbs", unit.Verbs),
			zap.Int("operations", len(unit.Operations)),
			zap.Bool("requires_auth", unit.RequiresAuth))
	}

	a.log.Info("backend analysis complete", zap.Int("units", len(backend.Units)))
	return backend
}

func (a *Analyzer) analyzeUnit(name, src string) *ir.RouteUnit {
	return &ir.RouteUnit{
		Name:          name,
		Verbs:         detectVerbs(src),
		Operations:    detectOperations(src),
		RequiresAuth:  detectAuth(src),
		ExternalHosts: detectExternalHosts(src),
		ModelUsage:    detectModelUsage(src),
		PayloadFields: detectPayloadFields(src),
	}
}

// detectVerbs finds explicit method comparisons; without one the unit is
// assumed to handle a single POST.
func detectVerbs(src string) []string {
	var verbs []string
	for _, verb := range httpVerbs {
		if verbPatterns[verb].MatchString(src) {
			verbs = append(verbs, verb)
		}
	}
	if len(verbs) == 0 {
		verbs = []string{DefaultVerb}
	}
	return verbs
}

// detectOperations finds every collection call site. Duplicates are retained
// on purpose: one DataOperation per site.
func detectOperations(src string) []ir.DataOperation {
	var ops []ir.DataOperation
	for _, shape := range opShapes {
		for _, match := range opPatterns[shape.verb].FindAllStringSubmatch(src, -1) {
			ops = append(ops, ir.DataOperation{
				Kind:             shape.kind,
				TargetCollection: match[1],
			})
		}
	}
	return ops
}

func detectAuth(src string) bool {
	for _, pattern := range authPatterns {
		if pattern.MatchString(src) {
			return true
		}
	}
	return false
}

// detectExternalHosts pulls the scheme-stripped host of every literal URL
// passed to fetch. Paths are discarded and hosts deduplicated.
func detectExternalHosts(src string) []string {
	seen := make(map[string]struct{})
	for _, match := range fetchPattern.FindAllStringSubmatch(src, -1) {
		url := match[1]
		if !strings.HasPrefix(url, "http") {
			continue
		}
		if host := hostPattern.FindStringSubmatch(url); host != nil {
			seen[host[1]] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	hosts := make([]string, 0, len(seen))
	for host := range seen {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}

// detectModelUsage probes for the two named providers independently, then
// falls back to a provider-agnostic completion/chat/generate check. Declared
// model defaults are not supplied here; that is the mapper's job.
func detectModelUsage(src string) []ir.ModelAPIUsage {
	lower := strings.ToLower(src)
	var usages []ir.ModelAPIUsage

	if strings.Contains(lower, "openai") {
		usages = append(usages, ir.ModelAPIUsage{
			Provider:            "OpenAI",
			DeclaredModels:      declaredModels(src),
			CapabilityEndpoints: openAIEndpoints(src),
		})
	}

	if strings.Contains(lower, "anthropic") || strings.Contains(lower, "claude") {
		usages = append(usages, ir.ModelAPIUsage{
			Provider:            "Anthropic",
			DeclaredModels:      declaredModels(src),
			CapabilityEndpoints: []string{"messages"},
		})
	}

	if len(usages) == 0 && genericPattern.MatchString(src) {
		usages = append(usages, ir.ModelAPIUsage{
			Provider:            "Unknown",
			CapabilityEndpoints: []string{"completion"},
		})
	}

	return usages
}

func declaredModels(src string) []string {
	var models []string
	for _, match := range modelPattern.FindAllStringSubmatch(src, -1) {
		models = append(models, match[1])
	}
	return models
}

func openAIEndpoints(src string) []string {
	var endpoints []string
	if strings.Contains(src, "chat.completions") {
		endpoints = append(endpoints, "chat.completions")
	}
	if strings.Contains(src, "completions") {
		endpoints = append(endpoints, "completions")
	}
	if strings.Contains(src, "embeddings") {
		endpoints = append(endpoints, "embeddings")
	}
	if len(endpoints) == 0 {
		endpoints = []string{"chat.completions"}
	}
	return endpoints
}

// detectPayloadFields captures the identifiers destructured from the request
// body read. Returns nil when the idiom is absent.
func detectPayloadFields(src string) []string {
	match := payloadPattern.FindStringSubmatch(src)
	if match == nil {
		return nil
	}
	var fields []string
	for _, field := range strings.Split(match[1], ",") {
		field = strings.TrimSpace(field)
		// Drop rename/default clutter: "a: b" and "a = 1" keep "a".
		if idx := strings.IndexAny(field, ":="); idx >= 0 {
			field = strings.TrimSpace(field[:idx])
		}
		if field != "" {
			fields = append(fields, field)
		}
	}
	return fields
}
