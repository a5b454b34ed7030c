package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/craigvandotcom/agent-compounds/internal/fanout"
	"github.com/craigvandotcom/agent-compounds/internal/panel"
	"github.com/craigvandotcom/agent-compounds/internal/provider"
	"github.com/craigvandotcom/agent-compounds/internal/render"
	"github.com/craigvandotcom/agent-compounds/internal/synthesis"
	"github.com/craigvandotcom/agent-compounds/pkg/llm"
)

// queryFlags holds the flags of the root query command.
type queryFlags struct {
	file        string
	model       string
	system      string
	images      []string
	web         bool
	temperature float64
	maxTokens   int
	noStream    bool
	jsonMode    bool
	reasoning   string
	fallbacks   []string
	output      string
	all         bool
	models      []string
	synthesize  bool
	synthModel  string
	concurrency int
	jsonOut     bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.file, "file", "f", "", "Load prompt from file")
	fl.StringVarP(&f.model, "model", "m", "", "Model or alias (default: claude)")
	fl.StringVarP(&f.system, "system", "s", "", "System prompt")
	fl.StringArrayVar(&f.images, "image", nil, "Image file or glob (repeatable)")
	fl.BoolVarP(&f.web, "web", "w", false, "Enable web search")
	fl.Float64VarP(&f.temperature, "temperature", "t", 0, "Temperature (0-2)")
	fl.IntVar(&f.maxTokens, "max-tokens", 0, "Max output tokens")
	fl.BoolVar(&f.noStream, "no-stream", false, "Wait for the full response")
	fl.BoolVar(&f.jsonMode, "json-mode", false, "Ask the model for a JSON object")
	fl.StringVar(&f.reasoning, "reasoning", "", "Reasoning effort: high|medium|low")
	fl.StringSliceVar(&f.fallbacks, "fallback", nil, "Fallback models or aliases (repeatable)")
	fl.StringVarP(&f.output, "output", "o", "", "Save to file (single) or directory (fan-out)")
	fl.BoolVar(&f.all, "all", false, "Fan out to all enabled panel models")
	fl.StringSliceVar(&f.models, "models", nil, "Fan out to these aliases or models")
	fl.BoolVar(&f.synthesize, "synthesize", false, "Merge fan-out answers into one synthesis")
	fl.StringVar(&f.synthModel, "synth-model", "", "Model or alias for the synthesis (default: panel default)")
	fl.IntVar(&f.concurrency, "concurrency", 0, "Max calls in flight during fan-out (0: all at once)")
	fl.BoolVar(&f.jsonOut, "json", false, "Print fan-out results as a JSON report")
}

func (f *queryFlags) fanOut() bool {
	return f.all || len(f.models) > 0
}

// request builds the shared request options from the flags.
func (f *queryFlags) request(cmd *cobra.Command) (llm.Request, error) {
	req := llm.Request{
		SystemPrompt: f.system,
		WebSearch:    f.web,
		JSONMode:     f.jsonMode,
		Fallbacks:    splitList(f.fallbacks),
	}

	effort, err := llm.ParseReasoningEffort(f.reasoning)
	if err != nil {
		return req, err
	}
	req.Reasoning = effort

	if cmd.Flags().Changed("temperature") {
		t := f.temperature
		req.Temperature = &t
	}
	if f.maxTokens > 0 {
		n := f.maxTokens
		req.MaxTokens = &n
	}

	images, err := expandImages(f.images)
	if err != nil {
		return req, err
	}
	req.Images = images
	return req, nil
}

// app carries what a query needs; tests swap the completers and streams.
type app struct {
	registry *panel.Registry
	client   llm.Completer
	// synth is the client used for synthesis; its stream output may be
	// discarded when stdout carries a JSON report.
	synth    llm.Completer
	fs       afero.Fs
	stdout   io.Writer
	stderr   io.Writer
	render   *render.Renderer
	verbose  bool
	progress bool
}

func runQuery(cmd *cobra.Command, args []string, f *queryFlags) error {
	prompt, err := readPrompt(args, f.file, os.Stdin, isTerminal(os.Stdin))
	if errors.Is(err, errNoPrompt) {
		_ = cmd.Help()
		os.Exit(1)
	}
	if err != nil {
		return err
	}

	req, err := f.request(cmd)
	if err != nil {
		return err
	}

	if err := env.RequireCredential(); err != nil {
		return err
	}

	newClient := func(out io.Writer) *provider.OpenRouter {
		return provider.New(
			provider.WithAPIKey(env.APIKey),
			provider.WithBaseURL(env.BaseURL),
			provider.WithResolver(registry),
			provider.WithOutput(out),
		)
	}
	synthOut := io.Writer(os.Stdout)
	if f.jsonOut {
		synthOut = io.Discard
	}

	a := &app{
		registry: registry,
		client:   newClient(os.Stdout),
		synth:    newClient(synthOut),
		fs:       afero.NewOsFs(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		render:   render.New(pretty),
		verbose:  verbose,
		progress: isTerminal(os.Stderr),
	}

	if f.fanOut() {
		return a.fanOut(cmd.Context(), prompt, f, req)
	}
	return a.single(cmd.Context(), prompt, f, req)
}

// single sends the prompt to one model, streamed unless --no-stream.
func (a *app) single(ctx context.Context, prompt string, f *queryFlags, req llm.Request) error {
	model := f.model
	if model == "" {
		m, err := a.registry.DefaultModel()
		if err != nil {
			return err
		}
		model = m
	}
	req.Prompt = prompt
	req.Model = a.registry.Resolve(model)
	req.Stream = !f.noStream

	if a.verbose {
		fmt.Fprintln(a.stderr, render.RequestLine(req.Model, req.WebSearch))
	}

	out := a.client.Complete(ctx, &req)
	if !out.OK {
		return errors.New(out.Err)
	}

	if f.noStream {
		fmt.Fprintln(a.stdout, a.render.Markdown(out.Content))
	}

	if f.output != "" {
		if err := a.fs.MkdirAll(filepath.Dir(f.output), 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
		if err := afero.WriteFile(a.fs, f.output, []byte(out.Content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.output, err)
		}
		fmt.Fprintf(a.stderr, "Saved: %s\n", f.output)
	}

	if a.verbose {
		fmt.Fprintln(a.stderr, render.Metrics(out))
	}
	return nil
}

// fanOut queries the panel (or the --models subset) concurrently, prints every
// answer in request order and optionally synthesizes them.
func (a *app) fanOut(ctx context.Context, prompt string, f *queryFlags, req llm.Request) error {
	targets := splitList(f.models)
	if len(targets) == 0 {
		targets = a.registry.EnabledAliases()
	}
	if len(targets) == 0 {
		return errors.New("no models enabled in panel")
	}

	fmt.Fprintln(a.stderr, render.QueryBanner(targets))

	progress := render.NewProgress(a.stderr, len(targets), a.progress && !a.verbose)
	coord := fanout.New(a.registry, a.client, fanout.WithLimit(f.concurrency))
	coord.OnDone = func(alias string, out llm.Outcome) {
		progress.Done(alias, out.OK)
		if !a.verbose {
			return
		}
		fmt.Fprintln(a.stderr, render.DoneLine(alias, a.registry.Resolve(alias), out))
	}

	progress.Start()
	res := coord.FanOut(ctx, prompt, targets, req)
	progress.Stop()

	if a.verbose {
		done, failed := progress.Counts()
		fmt.Fprintf(a.stderr, "Done in %s: %d answered, %d failed\n", render.FormatDuration(res.Duration), done-failed, failed)
	}

	if !f.jsonOut {
		fmt.Fprint(a.stdout, a.render.FanOut(res, a.registry))
	}

	// Answers are already on stdout; a failed write is reported at the end.
	var saveErr error
	if f.output != "" {
		written, err := res.Persist(a.fs, f.output)
		for _, path := range written {
			fmt.Fprintf(a.stderr, "Saved: %s\n", path)
		}
		if err != nil {
			log.Warn("fanout_save_failed", map[string]any{"dir": f.output, "run": res.RunID}, err)
			saveErr = err
		}
	}

	var synth *llm.Outcome
	if f.synthesize {
		out, err := a.synthesize(ctx, prompt, f, res)
		if err != nil {
			return errors.Join(saveErr, err)
		}
		synth = &out
	}

	if f.jsonOut {
		if err := render.BuildReport(prompt, res, a.registry, synth).WriteJSON(a.stdout); err != nil {
			return err
		}
	}

	if len(res.Successes()) == 0 {
		return errors.Join(saveErr, fmt.Errorf("all %d models failed", len(res.Order)))
	}
	return saveErr
}

func (a *app) synthesize(ctx context.Context, prompt string, f *queryFlags, res *fanout.Result) (llm.Outcome, error) {
	engine := synthesis.New(a.synth, a.registry)
	if !f.jsonOut {
		engine.OnStart = func(model string) {
			fmt.Fprint(a.stdout, a.render.SynthesisHeader(model))
			fmt.Fprintln(a.stdout)
		}
	}

	out, err := engine.Synthesize(ctx, prompt, res, f.synthModel)
	if err != nil {
		return out, err
	}
	if !out.OK {
		return out, fmt.Errorf("synthesis failed: %s", out.Err)
	}

	if f.output != "" {
		path, err := synthesis.Persist(a.fs, f.output, out)
		if err != nil {
			return out, err
		}
		fmt.Fprintf(a.stderr, "Saved: %s\n", path)
	}
	if a.verbose {
		fmt.Fprintln(a.stderr, render.Metrics(out))
	}
	return out, nil
}
