package api

import (
	"strings"

	"github.com/lakeshift/lakeshift/internal/codegen"
	"github.com/lakeshift/lakeshift/internal/ir"
)

// opBlock is one rendered data-operation block. Blocks keep the order the
// operations were stored in; repeated operations each get their own block.
type opBlock struct {
	Kind       string
	Collection string
	Model      string
}

// modelCall is one appended model-serving call block.
type modelCall struct {
	Provider string
	Endpoint string
}

// routerData is the template input for one router artifact.
type routerData struct {
	Name       string // original unit name
	Module     string // python module name
	FuncName   string // python function name
	Path       string // route path
	Method     string // lowercase primary verb
	AuthNeeded bool
	Session    bool
	Payload    []string // destructured request fields; empty means manual
	Ops        []opBlock
	ModelCalls []modelCall
	Models     []string // model classes to import, first-use order
}

// buildRouterData converts a mapped RouteUnit into template input. Exactly
// one HTTP verb is selected: the first declared.
func buildRouterData(unit *ir.RouteUnit) routerData {
	method := "post"
	if len(unit.Verbs) > 0 {
		method = strings.ToLower(unit.Verbs[0])
	}

	data := routerData{
		Name:       unit.Name,
		Module:     codegen.PyIdent(unit.Name),
		FuncName:   codegen.PyIdent(unit.Name),
		Path:       "/" + strings.ReplaceAll(unit.Name, "_", "-"),
		Method:     method,
		AuthNeeded: unit.RequiresAuth,
		Session:    len(unit.Operations) > 0,
		Payload:    unit.PayloadFields,
	}

	seen := make(map[string]bool)
	for _, op := range unit.Operations {
		model := codegen.PascalCase(op.TargetCollection)
		data.Ops = append(data.Ops, opBlock{
			Kind:       string(op.Kind),
			Collection: op.TargetCollection,
			Model:      model,
		})
		if !seen[model] {
			seen[model] = true
			data.Models = append(data.Models, model)
		}
	}

	for _, usage := range unit.ModelUsage {
		if usage.ResolvedEndpoint == "" {
			continue
		}
		data.ModelCalls = append(data.ModelCalls, modelCall{
			Provider: usage.Provider,
			Endpoint: usage.ResolvedEndpoint,
		})
	}

	return data
}

// HasResult reports whether any block assigns a result value.
func (d routerData) HasResult() bool {
	return len(d.Ops) > 0 || len(d.ModelCalls) > 0
}
