// Package llm defines the request and outcome types shared by the completion
// client, the fan-out coordinator and the synthesis engine.
package llm

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
)

// ReasoningEffort is a backend hint for how hard a reasoning model thinks.
type ReasoningEffort string

const (
	ReasoningHigh   ReasoningEffort = "high"
	ReasoningMedium ReasoningEffort = "medium"
	ReasoningLow    ReasoningEffort = "low"
)

// ParseReasoningEffort validates a user-supplied effort. Empty means unset.
func ParseReasoningEffort(s string) (ReasoningEffort, error) {
	switch e := ReasoningEffort(strings.ToLower(strings.TrimSpace(s))); e {
	case "", ReasoningHigh, ReasoningMedium, ReasoningLow:
		return e, nil
	default:
		return "", fmt.Errorf("invalid reasoning effort %q (want high, medium or low)", s)
	}
}

// Request is one chat completion. Optional fields left nil or empty are not
// sent to the backend.
type Request struct {
	Prompt       string
	SystemPrompt string
	Model        string
	Images       []string
	Temperature  *float64
	MaxTokens    *int
	WebSearch    bool
	JSONMode     bool
	Reasoning    ReasoningEffort
	// Fallbacks are tried by the backend, in order, when Model is unavailable.
	// Entries may be aliases; the client resolves them.
	Fallbacks []string
	Stream    bool
}

// Outcome is the result of a single request attempt. Exactly one of the
// success fields or Err is meaningful, selected by OK.
type Outcome struct {
	OK      bool     `json:"ok"`
	Content string   `json:"content,omitempty"`
	Model   string   `json:"model,omitempty"`
	Elapsed float64  `json:"time,omitempty"`
	Tokens  *int64   `json:"tokens,omitempty"`
	Cost    *float64 `json:"cost,omitempty"`
	Err     string   `json:"error,omitempty"`
}

// Success builds a successful outcome.
func Success(content, model string, elapsed float64) Outcome {
	return Outcome{OK: true, Content: content, Model: model, Elapsed: elapsed}
}

// Failure builds a failed outcome carrying a human-readable message.
func Failure(format string, args ...any) Outcome {
	return Outcome{Err: fmt.Sprintf(format, args...)}
}

// RoundElapsed converts a duration to seconds rounded to two decimals.
func RoundElapsed(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}

// Completer issues one request and never fails past its boundary: every
// error is folded into a failed Outcome.
type Completer interface {
	Complete(ctx context.Context, req *Request) Outcome
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req *Request) Outcome

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req *Request) Outcome {
	return f(ctx, req)
}
