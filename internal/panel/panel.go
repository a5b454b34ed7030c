// Package panel holds the expert panel: the ordered set of model aliases the
// client can query, and the registry that resolves aliases to model ids.
package panel

import "sort"

// DefaultAlias is preferred as the default model when present in a panel.
const DefaultAlias = "claude"

// Entry is one panel member.
type Entry struct {
	Alias    string `json:"alias" yaml:"alias"`
	Model    string `json:"model" yaml:"model"`
	Enabled  *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`
	Strength string `json:"strength,omitempty" yaml:"strength,omitempty"`
}

// IsEnabled reports whether the entry takes part in fan-out.
// An unspecified flag counts as enabled.
func (e Entry) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// Panel is an ordered list of entries. Order drives fan-out and display.
type Panel struct {
	Entries []Entry

	// Source is the file the panel was loaded from, empty for built-in defaults.
	Source string
}

// Variants maps variant names to the literal suffix appended to a model id,
// e.g. "claude:online" -> "<claude model>:online".
var Variants = map[string]string{
	"online":   ":online",
	"nitro":    ":nitro",
	"floor":    ":floor",
	"free":     ":free",
	"extended": ":extended",
}

// VariantNames returns the known variant names sorted.
func VariantNames() []string {
	names := make([]string, 0, len(Variants))
	for name := range Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func enabled(b bool) *bool { return &b }

// Default returns the built-in panel: one flagship reasoning model per provider.
func Default() *Panel {
	return &Panel{Entries: []Entry{
		{Alias: "claude", Model: "anthropic/claude-opus-4.6", Enabled: enabled(true), Provider: "Anthropic", Strength: "Deepest reasoning, edge cases"},
		{Alias: "gpt", Model: "openai/gpt-5.2", Enabled: enabled(true), Provider: "OpenAI", Strength: "Strong all-round, structured output"},
		{Alias: "gemini", Model: "google/gemini-3-pro-preview", Enabled: enabled(true), Provider: "Google", Strength: "Creative connections, multimodal"},
		{Alias: "deepseek", Model: "deepseek/deepseek-r1", Enabled: enabled(true), Provider: "DeepSeek", Strength: "Best open-source reasoning"},
		{Alias: "llama", Model: "meta-llama/llama-4-maverick", Enabled: enabled(true), Provider: "Meta", Strength: "128-expert MoE, multimodal"},
		{Alias: "grok", Model: "x-ai/grok-4", Enabled: enabled(true), Provider: "xAI", Strength: "Contrarian, evidence citations"},
		{Alias: "kimi", Model: "moonshotai/kimi-k2.5", Enabled: enabled(true), Provider: "Moonshot", Strength: "Best value, deep domain knowledge"},
		{Alias: "glm", Model: "z-ai/glm-5", Enabled: enabled(true), Provider: "ZHIPU", Strength: "Factual accuracy, catches errors"},
		{Alias: "qwen", Model: "qwen/qwen3.5-397b-a17b", Enabled: enabled(true), Provider: "Alibaba", Strength: "Native multimodal, 201 languages"},
	}}
}
