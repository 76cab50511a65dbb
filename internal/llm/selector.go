// Package llm maps external model identifiers onto Foundation Model Serving
// endpoint names. Selection is a total function: every identifier resolves,
// by exact lookup, tiered keyword heuristic, or the documented default.
package llm

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/lakeshift/lakeshift/internal/ir"
)

// Serving endpoints, one per capability tier.
const (
	EndpointHighTier = "databricks-dbrx-instruct"
	EndpointMidTier  = "databricks-meta-llama-3-70b-instruct"
	EndpointLowTier  = "databricks-meta-llama-3-8b-instruct"

	// DefaultEndpoint is returned for identifiers no rule recognizes.
	DefaultEndpoint = EndpointHighTier
)

// endpointByModel is the exact-match table, keyed by case-folded identifier.
var endpointByModel = map[string]string{
	// OpenAI
	"gpt-4":               EndpointHighTier,
	"gpt-4-turbo":         EndpointHighTier,
	"gpt-4-turbo-preview": EndpointHighTier,
	"gpt-4-32k":           EndpointHighTier,
	"gpt-3.5-turbo":       EndpointMidTier,
	"gpt-3.5-turbo-16k":   EndpointMidTier,
	"gpt-3.5":             EndpointLowTier,

	// Anthropic
	"claude-3-5-sonnet": EndpointHighTier,
	"claude-3-opus":     EndpointHighTier,
	"claude-3-sonnet":   EndpointMidTier,
	"claude-3-haiku":    EndpointLowTier,
	"claude-2.1":        EndpointHighTier,
	"claude-2":          EndpointHighTier,
}

// tierRules are checked in order, highest capability tier first; the first
// keyword containment wins.
var tierRules = []struct {
	keywords []string
	endpoint string
}{
	{[]string{"gpt-4", "opus", "large", "advanced"}, EndpointHighTier},
	{[]string{"gpt-3.5", "sonnet", "medium"}, EndpointMidTier},
	{[]string{"haiku", "small", "fast"}, EndpointLowTier},
}

// Summary reports the conversions performed by a Selector.
type Summary struct {
	Total     int                   `json:"total_conversions"`
	Records   []ir.ConversionRecord `json:"records"`
	Endpoints []string              `json:"endpoints_used"`
}

// Selector resolves model identifiers and keeps the append-only conversion
// log. Safe for concurrent use.
type Selector struct {
	log *zap.Logger

	mu      sync.Mutex
	records []ir.ConversionRecord
}

// NewSelector returns an empty selector.
func NewSelector(log *zap.Logger) *Selector {
	return &Selector{log: log}
}

// Resolve returns the serving endpoint for the given identifier and appends
// the resolution to the conversion log. It never fails.
func (s *Selector) Resolve(provider, model string) string {
	endpoint := Select(model)
	if endpoint == DefaultEndpoint {
		if _, known := endpointByModel[strings.ToLower(model)]; !known && !tierMatch(model) {
			s.log.Warn("unrecognized model identifier, using default endpoint",
				zap.String("provider", provider),
				zap.String("model", model),
				zap.String("endpoint", DefaultEndpoint))
		}
	}

	s.mu.Lock()
	s.records = append(s.records, ir.ConversionRecord{
		SourceModel:    model,
		TargetEndpoint: endpoint,
		SourceProvider: provider,
	})
	s.mu.Unlock()

	return endpoint
}

// Summary returns the conversion count, the log in append order, and the
// distinct endpoints used (sorted).
func (s *Selector) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := make([]ir.ConversionRecord, len(s.records))
	copy(records, s.records)

	seen := make(map[string]struct{})
	for _, rec := range records {
		seen[rec.TargetEndpoint] = struct{}{}
	}
	endpoints := make([]string, 0, len(seen))
	for ep := range seen {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	return Summary{Total: len(records), Records: records, Endpoints: endpoints}
}

// Select maps an identifier to an endpoint without logging. Exported so the
// deterministic mapping can be used directly in tests and generation.
func Select(model string) string {
	lower := strings.ToLower(model)

	if endpoint, ok := endpointByModel[lower]; ok {
		return endpoint
	}

	for _, rule := range tierRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.endpoint
			}
		}
	}

	return DefaultEndpoint
}

func tierMatch(model string) bool {
	lower := strings.ToLower(model)
	for _, rule := range tierRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return true
			}
		}
	}
	return false
}
