package provider

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
)

// ModelInfo is one backend model as listed by the models endpoint.
// Prices are the backend's per-token strings, empty when not reported.
type ModelInfo struct {
	ID              string `json:"id"`
	PromptPrice     string `json:"prompt_price,omitempty"`
	CompletionPrice string `json:"completion_price,omitempty"`
}

type modelPricing struct {
	Pricing *struct {
		Prompt     string `json:"prompt"`
		Completion string `json:"completion"`
	} `json:"pricing"`
}

// ListModels returns the backend's models sorted by id, keeping only ids that
// contain filter (case-insensitive) when filter is non-empty.
func (o *OpenRouter) ListModels(ctx context.Context, filter string) ([]ModelInfo, error) {
	filter = strings.ToLower(filter)

	var out []ModelInfo
	iter := o.client.Models.ListAutoPaging(ctx)
	for iter.Next() {
		m := iter.Current()
		if filter != "" && !strings.Contains(strings.ToLower(m.ID), filter) {
			continue
		}
		info := ModelInfo{ID: m.ID}
		var p modelPricing
		if err := json.Unmarshal([]byte(m.RawJSON()), &p); err == nil && p.Pricing != nil {
			info.PromptPrice = p.Pricing.Prompt
			info.CompletionPrice = p.Pricing.Completion
		}
		out = append(out, info)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
