// Package fanout sends one prompt to several panel models concurrently and
// collects every outcome.
package fanout

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/craigvandotcom/agent-compounds/internal/logging"
	"github.com/craigvandotcom/agent-compounds/internal/panel"
	"github.com/craigvandotcom/agent-compounds/pkg/llm"
)

// Result holds one outcome per requested alias.
type Result struct {
	RunID    string
	Order    []string
	Outcomes map[string]llm.Outcome
	Duration time.Duration
}

// Each calls fn for every alias in request order.
func (r *Result) Each(fn func(alias string, out llm.Outcome)) {
	for _, alias := range r.Order {
		fn(alias, r.Outcomes[alias])
	}
}

// Successes returns the aliases that produced content, in request order.
func (r *Result) Successes() []string {
	var ok []string
	for _, alias := range r.Order {
		if r.Outcomes[alias].OK {
			ok = append(ok, alias)
		}
	}
	return ok
}

// Failed returns the aliases whose call failed, in request order.
func (r *Result) Failed() []string {
	var bad []string
	for _, alias := range r.Order {
		if !r.Outcomes[alias].OK {
			bad = append(bad, alias)
		}
	}
	return bad
}

// Coordinator drives concurrent completions over a panel.
type Coordinator struct {
	registry  *panel.Registry
	completer llm.Completer
	limit     int
	log       *logging.Logger

	// OnDone fires as each call finishes, in completion order.
	// It may be called from several goroutines at once.
	OnDone func(alias string, out llm.Outcome)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLimit caps the number of calls in flight. Zero or less means one
// goroutine per alias.
func WithLimit(n int) Option {
	return func(c *Coordinator) { c.limit = n }
}

// New creates a Coordinator.
func New(registry *panel.Registry, completer llm.Completer, opts ...Option) *Coordinator {
	c := &Coordinator{
		registry:  registry,
		completer: completer,
		log:       logging.New("fanout"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FanOut queries every alias with the same prompt and options. Calls are
// never streamed, a failing call does not cancel its siblings, and the
// returned Result always has an outcome for every alias.
func (c *Coordinator) FanOut(ctx context.Context, prompt string, aliases []string, opts llm.Request) *Result {
	order := dedupe(aliases)
	runID := ulid.Make().String()
	log := c.log.WithRun(runID)
	start := time.Now()

	log.Info("fanout_start", map[string]any{"targets": len(order)})

	// One slot per target; goroutines never share a slot.
	slots := make([]llm.Outcome, len(order))

	var g errgroup.Group
	if c.limit > 0 {
		g.SetLimit(c.limit)
	}

	var doneMu sync.Mutex
	for i, alias := range order {
		i, alias := i, alias
		g.Go(func() error {
			req := opts
			req.Prompt = prompt
			req.Model = c.registry.Resolve(alias)
			req.Stream = false

			callCtx := logging.WithCallID(ctx, "")
			log.Debug("fanout_call", map[string]any{"alias": alias, "model": req.Model, "call_id": logging.CallID(callCtx)})

			out := c.completer.Complete(callCtx, &req)
			slots[i] = out

			if c.OnDone != nil {
				doneMu.Lock()
				c.OnDone(alias, out)
				doneMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	outcomes := make(map[string]llm.Outcome, len(order))
	for i, alias := range order {
		outcomes[alias] = slots[i]
	}

	res := &Result{
		RunID:    runID,
		Order:    order,
		Outcomes: outcomes,
		Duration: time.Since(start),
	}
	log.TimedEvent("fanout_done", start, map[string]any{
		"succeeded": len(res.Successes()),
		"failed":    len(res.Failed()),
	})
	return res
}

// dedupe keeps the first occurrence of each alias, compared case-insensitively.
func dedupe(aliases []string) []string {
	seen := make(map[string]bool, len(aliases))
	out := make([]string, 0, len(aliases))
	for _, a := range aliases {
		key := strings.ToLower(a)
		if a == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}
