package mapper

import "github.com/lakeshift/lakeshift/internal/ir"

// providerDefaults supplies the declared-model assumption for a provider
// when the analyzer found no model literal in the source. The Unknown
// provider has no entry and keeps an empty model list.
var providerDefaults = map[string]string{
	"OpenAI":    "gpt-4",
	"Anthropic": "claude-3-sonnet",
}

// ApplyUsageDefaults fills in the declared-model default for a usage whose
// source declared none.
func ApplyUsageDefaults(usage *ir.ModelAPIUsage) {
	if len(usage.DeclaredModels) > 0 {
		return
	}
	if def, ok := providerDefaults[usage.Provider]; ok {
		usage.DeclaredModels = []string{def}
	}
}
