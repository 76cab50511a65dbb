package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lakeshift/lakeshift/internal/analyzers/backend"
	"github.com/lakeshift/lakeshift/internal/ir"
)

func analyzeOne(t *testing.T, src string) *ir.RouteUnit {
	t.Helper()
	result := backend.New(zap.NewNop()).Analyze(map[string]string{"unit": src})
	require.Len(t, result.Units, 1)
	return result.Units["unit"]
}

func TestDetectVerbs(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "explicit GET comparison",
			src:  `if (req.method === "GET") {}`,
			want: []string{"GET"},
		},
		{
			name: "multiple verbs in declaration order",
			src:  `if (req.method === 'DELETE') {} else if (req.method === 'GET') {}`,
			want: []string{"GET", "DELETE"},
		},
		{
			name: "loose equality",
			src:  `if (req.method == "PATCH") {}`,
			want: []string{"PATCH"},
		},
		{
			name: "no comparison defaults to POST",
			src:  `serve(async (req) => { return new Response("ok") })`,
			want: []string{"POST"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := analyzeOne(t, tt.src)
			assert.Equal(t, tt.want, unit.Verbs)
		})
	}
}

func TestDetectOperations(t *testing.T) {
	src := `
		const { data } = await client.from('users').select('*')
		await client.from('logs').insert({ msg })
		await client.from('users').select('id')
	`
	unit := analyzeOne(t, src)

	// Call sites are never deduplicated; both selects survive.
	require.Len(t, unit.Operations, 3)
	assert.Equal(t, ir.OpRead, unit.Operations[0].Kind)
	assert.Equal(t, "users", unit.Operations[0].TargetCollection)
	assert.Equal(t, ir.OpRead, unit.Operations[1].Kind)
	assert.Equal(t, ir.OpCreate, unit.Operations[2].Kind)
	assert.Equal(t, "logs", unit.Operations[2].TargetCollection)
}

func TestDetectAuth(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want bool
	}{
		{"getUser call", `const { user } = await client.auth.getUser(token)`, true},
		{"getSession call", `await client.auth.getSession()`, true},
		{"authorization header read", `req.headers.get("Authorization")`, true},
		{"bare header name", `headers: { Authorization: token }`, true},
		{"no auth idiom", `await client.from('users').select('*')`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := analyzeOne(t, tt.src)
			assert.Equal(t, tt.want, unit.RequiresAuth)
		})
	}
}

func TestDetectExternalHosts(t *testing.T) {
	src := `
		await fetch("https://api.stripe.com/v1/charges")
		await fetch('https://api.stripe.com/v1/refunds')
		await fetch("http://api.weather.com/today")
	`
	unit := analyzeOne(t, src)

	// Hosts are deduplicated and sorted; paths never survive.
	assert.Equal(t, []string{"api.stripe.com", "api.weather.com"}, unit.ExternalHosts)
}

func TestDetectModelUsage(t *testing.T) {
	t.Run("openai with declared model", func(t *testing.T) {
		src := `
			const openai = new OpenAI()
			const res = await openai.chat.completions.create({ model: "gpt-4" })
		`
		unit := analyzeOne(t, src)
		require.Len(t, unit.ModelUsage, 1)
		usage := unit.ModelUsage[0]
		assert.Equal(t, "OpenAI", usage.Provider)
		assert.Equal(t, []string{"gpt-4"}, usage.DeclaredModels)
		assert.Contains(t, usage.CapabilityEndpoints, "chat.completions")
	})

	t.Run("anthropic via claude mention", func(t *testing.T) {
		src := `const res = await fetch("https://api.anthropic.com/v1/messages", { body: JSON.stringify({ model: "claude-3-haiku" }) })`
		unit := analyzeOne(t, src)
		require.Len(t, unit.ModelUsage, 1)
		assert.Equal(t, "Anthropic", unit.ModelUsage[0].Provider)
		assert.Equal(t, []string{"claude-3-haiku"}, unit.ModelUsage[0].DeclaredModels)
		assert.Equal(t, []string{"messages"}, unit.ModelUsage[0].CapabilityEndpoints)
	})

	t.Run("generic completion falls back to unknown", func(t *testing.T) {
		unit := analyzeOne(t, `const out = await generateCompletion(prompt)`)
		require.Len(t, unit.ModelUsage, 1)
		assert.Equal(t, "Unknown", unit.ModelUsage[0].Provider)
		assert.Empty(t, unit.ModelUsage[0].DeclaredModels)
	})

	t.Run("no model usage", func(t *testing.T) {
		unit := analyzeOne(t, `await client.from('users').select('*')`)
		assert.Empty(t, unit.ModelUsage)
	})
}

func TestDetectPayloadFields(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "plain destructuring",
			src:  `const { title, body } = await req.json()`,
			want: []string{"title", "body"},
		},
		{
			name: "renames and defaults keep the source name",
			src:  `const { title: t, count = 0 } = await req.json()`,
			want: []string{"title", "count"},
		},
		{
			name: "no destructuring",
			src:  `const body = await req.json()`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := analyzeOne(t, tt.src)
			assert.Equal(t, tt.want, unit.PayloadFields)
		})
	}
}

func TestAnalyzeNeverFails(t *testing.T) {
	result := backend.New(zap.NewNop()).Analyze(map[string]string{
		"empty":   "",
		"garbage": "}{ not even close to source",
	})
	require.Len(t, result.Units, 2)
	assert.Equal(t, []string{"POST"}, result.Units["empty"].Verbs)
	assert.Equal(t, []string{"POST"}, result.Units["garbage"].Verbs)
}
