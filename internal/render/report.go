package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/craigvandotcom/agent-compounds/internal/fanout"
	"github.com/craigvandotcom/agent-compounds/internal/panel"
	"github.com/craigvandotcom/agent-compounds/pkg/llm"
)

// ReportEntry is one alias's outcome in a JSON report.
type ReportEntry struct {
	Alias string `json:"alias"`
	llm.Outcome
}

// Report is the machine-readable form of a fan-out run.
type Report struct {
	RunID     string        `json:"run_id"`
	Prompt    string        `json:"prompt"`
	Responses []ReportEntry `json:"responses"`
	Synthesis *llm.Outcome  `json:"synthesis,omitempty"`
	Failed    []string      `json:"failed_models,omitempty"`
}

// BuildReport collects res in request order. Failed outcomes keep their
// declared model id so every entry names a model.
func BuildReport(prompt string, res *fanout.Result, registry *panel.Registry, synth *llm.Outcome) *Report {
	rep := &Report{
		RunID:     res.RunID,
		Prompt:    prompt,
		Responses: make([]ReportEntry, 0, len(res.Order)),
		Synthesis: synth,
		Failed:    res.Failed(),
	}
	res.Each(func(alias string, out llm.Outcome) {
		if out.Model == "" {
			out.Model = registry.Resolve(alias)
		}
		rep.Responses = append(rep.Responses, ReportEntry{Alias: alias, Outcome: out})
	})
	return rep
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
