// Package synthesis merges the successful answers of a fan-out run into one
// document with a single further completion.
package synthesis

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/spf13/afero"

	"github.com/craigvandotcom/agent-compounds/internal/fanout"
	"github.com/craigvandotcom/agent-compounds/internal/logging"
	"github.com/craigvandotcom/agent-compounds/internal/panel"
	"github.com/craigvandotcom/agent-compounds/pkg/llm"
)

// MinSources is the fewest successful answers worth synthesizing.
const MinSources = 2

// FileName is the name the synthesis is persisted under.
const FileName = "synthesis.md"

// PreconditionError reports a run with too few successful answers.
type PreconditionError struct {
	Have int
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("synthesis needs at least %d successful responses, got %d", MinSources, e.Have)
}

// Source is one successful answer labelled with its alias and declared model.
type Source struct {
	Alias   string
	Model   string
	Content string
}

// Collect returns the successful outcomes of res in request order.
func Collect(res *fanout.Result, registry *panel.Registry) []Source {
	var sources []Source
	res.Each(func(alias string, out llm.Outcome) {
		if !out.OK {
			return
		}
		sources = append(sources, Source{
			Alias:   alias,
			Model:   registry.Resolve(alias),
			Content: out.Content,
		})
	})
	return sources
}

var metaPrompt = template.Must(template.New("synthesis").Parse(
	`You are given {{len .Sources}} independent expert answers to the same question.
Write one synthesis that is better than any single answer. Cover:

1. Convergence: points most experts agree on. State them with high confidence.
2. Disagreements: where experts genuinely differ, what each side claims, and what evidence or test would resolve it.
3. Unique insights: valuable points raised by only one expert.
4. Gaps: important aspects of the question that no expert addressed.

Prefer density and precision over hedging. Do not concatenate or summarize the answers one by one.

## Original question

{{.Prompt}}
{{range .Sources}}
## {{.Alias}} ({{.Model}})

{{.Content}}
{{end}}`))

// BuildPrompt renders the meta-prompt for the given sources.
func BuildPrompt(prompt string, sources []Source) (string, error) {
	var sb strings.Builder
	err := metaPrompt.Execute(&sb, struct {
		Prompt  string
		Sources []Source
	}{prompt, sources})
	if err != nil {
		return "", fmt.Errorf("failed to render synthesis prompt: %w", err)
	}
	return sb.String(), nil
}

// Engine runs the synthesis call.
type Engine struct {
	completer llm.Completer
	registry  *panel.Registry
	log       *logging.Logger

	// OnStart fires with the resolved model once the call is about to be
	// made. It does not fire when the precondition fails.
	OnStart func(model string)
}

// New creates an Engine.
func New(completer llm.Completer, registry *panel.Registry) *Engine {
	return &Engine{
		completer: completer,
		registry:  registry,
		log:       logging.New("synthesis"),
	}
}

// Synthesize issues exactly one streaming completion over the successes in
// res. model may be an alias or a model id; empty selects the panel default.
// A failed final call comes back as a failed outcome with a nil error.
func (e *Engine) Synthesize(ctx context.Context, prompt string, res *fanout.Result, model string) (llm.Outcome, error) {
	sources := Collect(res, e.registry)
	if len(sources) < MinSources {
		return llm.Outcome{}, &PreconditionError{Have: len(sources)}
	}

	if model == "" {
		m, err := e.registry.DefaultModel()
		if err != nil {
			return llm.Outcome{}, err
		}
		model = m
	} else {
		model = e.registry.Resolve(model)
	}

	text, err := BuildPrompt(prompt, sources)
	if err != nil {
		return llm.Outcome{}, err
	}

	if e.OnStart != nil {
		e.OnStart(model)
	}
	e.log.Info("synthesis_start", map[string]any{"model": model, "sources": len(sources), "run": res.RunID})
	out := e.completer.Complete(logging.WithCallID(ctx, ""), &llm.Request{
		Prompt: text,
		Model:  model,
		Stream: true,
	})
	if !out.OK {
		e.log.Warn("synthesis_failed", map[string]any{"model": model}, fmt.Errorf("%s", out.Err))
	}
	return out, nil
}

// Persist writes a successful synthesis to <dir>/synthesis.md.
func Persist(fs afero.Fs, dir string, out llm.Outcome) (string, error) {
	if !out.OK {
		return "", fmt.Errorf("synthesis failed: %s", out.Err)
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := afero.WriteFile(fs, path, []byte(out.Content), 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
