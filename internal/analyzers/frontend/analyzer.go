// Package frontend extracts UiUnit facts from component source text.
package frontend

import (
	"path"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/lakeshift/lakeshift/internal/ir"
)

// Source is one UI component blob. IsPage is decided by the caller from the
// containing directory; Filename decides whether route declarations are
// scanned (root routing files only).
type Source struct {
	Name     string
	Filename string
	IsPage   bool
	Text     string
}

// hookVocabulary is the fixed set of state/lifecycle primitives detected by
// an exact call-shape match.
var hookVocabulary = []string{
	"useState",
	"useEffect",
	"useContext",
	"useReducer",
	"useCallback",
	"useMemo",
	"useRef",
	"useQuery",
	"useMutation",
	"useNavigate",
	"useParams",
	"useSearchParams",
}

var hookPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(hookVocabulary))
	for _, hook := range hookVocabulary {
		m[hook] = regexp.MustCompile(`\b` + hook + `\s*\(`)
	}
	return m
}()

// rootRoutingFiles are the only filenames scanned for route declarations.
var rootRoutingFiles = map[string]bool{
	"App.tsx":  true,
	"App.jsx":  true,
	"main.tsx": true,
	"main.jsx": true,
}

var (
	authPattern      = regexp.MustCompile(`\w+\.auth\.`)
	queryPattern     = regexp.MustCompile(`\w+\.from\(`)
	channelPattern   = regexp.MustCompile(`\w+\.channel\(`)
	storagePattern   = regexp.MustCompile(`\w+\.storage\.`)
	fetchPattern     = regexp.MustCompile(`\bfetch\s*\(`)
	routePathPattern = regexp.MustCompile(`<Route\s+path=["'](.*?)["']`)
	routeDeclPattern = regexp.MustCompile(`<Route\s+path=["'](.*?)["']\s+element=\{<(\w+)`)
)

// verbTags maps collection-query verb suffixes to usage tags.
var verbTags = []struct {
	suffix string
	tag    string
}{
	{".select(", "read"},
	{".insert(", "create"},
	{".update(", "update"},
	{".delete(", "delete"},
}

// Analyzer turns UI source blobs into the Frontend sub-model.
type Analyzer struct {
	log *zap.Logger
}

// New returns a UI analyzer.
func New(log *zap.Logger) *Analyzer {
	return &Analyzer{log: log}
}

// Analyze extracts one UiUnit per source and the route declarations of any
// root routing unit.
func (a *Analyzer) Analyze(sources []Source) ir.Frontend {
	fe := ir.Frontend{Units: make(map[string]*ir.UiUnit, len(sources))}

	for _, src := range sources {
		unit := analyzeUnit(src)
		fe.Units[unit.Name] = unit

		if rootRoutingFiles[path.Base(src.Filename)] {
			for _, match := range routeDeclPattern.FindAllStringSubmatch(src.Text, -1) {
				fe.Routes = append(fe.Routes, ir.RouteDecl{
					Path:      match[1],
					Component: match[2],
				})
			}
		}

		a.log.Debug("analyzed ui unit",
			zap.String("unit", unit.Name),
			zap.Bool("is_page", unit.IsPage),
			zap.Strings("data_usage", unit.DataUsage))
	}

	a.log.Info("frontend analysis complete",
		zap.Int("units", len(fe.Units)),
		zap.Int("routes", len(fe.Routes)))
	return fe
}

func analyzeUnit(src Source) *ir.UiUnit {
	return &ir.UiUnit{
		Name:       src.Name,
		IsPage:     src.IsPage,
		Hooks:      detectHooks(src.Text),
		DataUsage:  detectDataUsage(src.Text),
		Outbound:   detectOutbound(src.Text),
		RoutePaths: detectRoutePaths(src.Text),
	}
}

func detectHooks(text string) []string {
	var hooks []string
	for _, hook := range hookVocabulary {
		if hookPatterns[hook].MatchString(text) {
			hooks = append(hooks, hook)
		}
	}
	return hooks
}

// detectDataUsage tags the data-access client call shapes present in the
// unit. Tags come out sorted so repeated analysis is byte-stable.
func detectDataUsage(text string) []string {
	seen := make(map[string]struct{})

	if authPattern.MatchString(text) {
		seen["auth"] = struct{}{}
	}
	if queryPattern.MatchString(text) {
		for _, vt := range verbTags {
			if strings.Contains(text, vt.suffix) {
				seen[vt.tag] = struct{}{}
			}
		}
	}
	if channelPattern.MatchString(text) || strings.Contains(text, ".subscribe(") {
		seen["realtime"] = struct{}{}
	}
	if storagePattern.MatchString(text) {
		seen["blob_storage"] = struct{}{}
	}

	if len(seen) == 0 {
		return nil
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

func detectOutbound(text string) []string {
	var calls []string
	if fetchPattern.MatchString(text) {
		calls = append(calls, "fetch")
	}
	if strings.Contains(text, "axios") {
		calls = append(calls, "axios")
	}
	if strings.Contains(text, "useQuery") || strings.Contains(text, "useMutation") {
		calls = append(calls, "react-query")
	}
	return calls
}

func detectRoutePaths(text string) []string {
	var paths []string
	for _, match := range routePathPattern.FindAllStringSubmatch(text, -1) {
		paths = append(paths, match[1])
	}
	return paths
}
