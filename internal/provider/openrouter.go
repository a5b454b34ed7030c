// Package provider implements the completion client against an
// OpenAI-compatible chat API (OpenRouter by default).
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/craigvandotcom/agent-compounds/internal/config"
	"github.com/craigvandotcom/agent-compounds/internal/logging"
	"github.com/craigvandotcom/agent-compounds/pkg/llm"
)

const (
	appTitle   = "openrouter-cli"
	appReferer = "https://github.com/craigvandotcom/agent-compounds"
)

// Resolver maps alias tokens to model ids. *panel.Registry satisfies it.
type Resolver interface {
	Resolve(token string) string
}

type identity struct{}

func (identity) Resolve(token string) string { return token }

// Config holds client configuration.
type Config struct {
	APIKey       string
	BaseURL      string
	HTTPClient   *http.Client
	Output       io.Writer
	Resolver     Resolver
	DefaultModel string
	Logger       *logging.Logger
}

// ConfigOption modifies client configuration.
type ConfigOption func(*Config)

// WithAPIKey sets the bearer credential.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) { c.APIKey = key }
}

// WithBaseURL sets the API root, e.g. https://openrouter.ai/api/v1.
func WithBaseURL(url string) ConfigOption {
	return func(c *Config) { c.BaseURL = url }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) ConfigOption {
	return func(c *Config) { c.HTTPClient = client }
}

// WithOutput sets where streamed fragments are written as they arrive.
func WithOutput(w io.Writer) ConfigOption {
	return func(c *Config) { c.Output = w }
}

// WithResolver sets the alias resolver used for fallback models.
func WithResolver(r Resolver) ConfigOption {
	return func(c *Config) { c.Resolver = r }
}

// WithDefaultModel sets the model used when a request names none.
func WithDefaultModel(model string) ConfigOption {
	return func(c *Config) { c.DefaultModel = model }
}

// WithLogger sets the component logger.
func WithLogger(l *logging.Logger) ConfigOption {
	return func(c *Config) { c.Logger = l }
}

// OpenRouter is the completion client.
type OpenRouter struct {
	client openai.Client
	cfg    Config
}

// New builds a client. Requests are attempted once: SDK retries are disabled.
func New(opts ...ConfigOption) *OpenRouter {
	cfg := Config{
		BaseURL:  config.DefaultBaseURL,
		Output:   os.Stdout,
		Resolver: identity{},
		Logger:   logging.New("provider"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/") + "/"),
		option.WithMaxRetries(0),
		option.WithHeader("HTTP-Referer", appReferer),
		option.WithHeader("X-Title", appTitle),
	}
	if cfg.HTTPClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &OpenRouter{
		client: openai.NewClient(reqOpts...),
		cfg:    cfg,
	}
}

// Complete issues one chat completion and folds every error into a failed
// outcome.
func (o *OpenRouter) Complete(ctx context.Context, req *llm.Request) llm.Outcome {
	model := req.Model
	if model == "" {
		model = o.cfg.DefaultModel
	}
	if model == "" {
		return llm.Failure("no model specified")
	}

	// No partial request is built when an image is missing.
	if err := checkImages(req.Images); err != nil {
		return llm.Failure("%s", err.Error())
	}

	params, err := o.buildParams(model, req)
	if err != nil {
		return llm.Failure("%s", err.Error())
	}
	reqOpts := o.extraBody(model, req)

	log := o.cfg.Logger
	fields := map[string]any{"model": model, "stream": req.Stream, "call_id": logging.CallID(ctx)}
	log.Debug("complete_start", fields)

	var out llm.Outcome
	if req.Stream {
		out = o.stream(ctx, model, params, reqOpts)
	} else {
		out = o.once(ctx, model, params, reqOpts)
	}

	if out.OK {
		log.Info("complete_done", map[string]any{"model": model, "time": out.Elapsed, "call_id": logging.CallID(ctx)})
	} else {
		log.Warn("complete_failed", fields, fmt.Errorf("%s", out.Err))
	}
	return out
}

func (o *OpenRouter) buildParams(model string, req *llm.Request) (openai.ChatCompletionNewParams, error) {
	var msgs []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemPrompt))
	}

	if len(req.Images) > 0 {
		parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(req.Prompt)}
		for _, img := range req.Images {
			url, err := EncodeImage(img)
			if err != nil {
				return openai.ChatCompletionNewParams{}, err
			}
			parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: url}))
		}
		msgs = append(msgs, openai.UserMessage(parts))
	} else {
		msgs = append(msgs, openai.UserMessage(req.Prompt))
	}

	params := openai.ChatCompletionNewParams{
		Model:    model,
		Messages: msgs,
	}
	if req.Temperature != nil {
		params.Temperature = openai.Float(*req.Temperature)
	}
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(*req.MaxTokens))
	}
	if req.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return params, nil
}

// extraBody carries the OpenRouter extensions the SDK has no fields for.
func (o *OpenRouter) extraBody(model string, req *llm.Request) []option.RequestOption {
	var opts []option.RequestOption
	if req.Reasoning != "" {
		opts = append(opts, option.WithJSONSet("reasoning", map[string]string{"effort": string(req.Reasoning)}))
	}
	if req.WebSearch {
		opts = append(opts, option.WithJSONSet("plugins", []map[string]string{{"id": "web"}}))
	}
	if len(req.Fallbacks) > 0 {
		models := append([]string{model}, o.resolveAll(req.Fallbacks)...)
		opts = append(opts, option.WithJSONSet("models", models))
	}
	return opts
}

func (o *OpenRouter) resolveAll(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = o.cfg.Resolver.Resolve(t)
	}
	return out
}

func (o *OpenRouter) stream(ctx context.Context, model string, params openai.ChatCompletionNewParams, opts []option.RequestOption) llm.Outcome {
	start := time.Now()
	stream := o.client.Chat.Completions.NewStreaming(ctx, params, opts...)
	defer stream.Close()

	var sb strings.Builder
	for stream.Next() {
		chunk := stream.Current()
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		text := chunk.Choices[0].Delta.Content
		sb.WriteString(text)
		fmt.Fprint(o.cfg.Output, text)
	}
	if err := stream.Err(); err != nil {
		return llm.Failure("%s", err.Error())
	}
	fmt.Fprintln(o.cfg.Output)

	return llm.Success(sb.String(), model, llm.RoundElapsed(time.Since(start)))
}

type usageEnvelope struct {
	Usage *struct {
		TotalTokens *int64   `json:"total_tokens"`
		Cost        *float64 `json:"cost"`
	} `json:"usage"`
}

func (o *OpenRouter) once(ctx context.Context, model string, params openai.ChatCompletionNewParams, opts []option.RequestOption) llm.Outcome {
	start := time.Now()
	resp, err := o.client.Chat.Completions.New(ctx, params, opts...)
	elapsed := llm.RoundElapsed(time.Since(start))
	if err != nil {
		return llm.Failure("%s", err.Error())
	}
	if len(resp.Choices) == 0 {
		return llm.Failure("empty response from %s", model)
	}

	echoed := resp.Model
	if echoed == "" {
		echoed = model
	}
	out := llm.Success(resp.Choices[0].Message.Content, echoed, elapsed)

	// Cost is an OpenRouter extension to the usage block.
	var env usageEnvelope
	if err := json.Unmarshal([]byte(resp.RawJSON()), &env); err == nil && env.Usage != nil {
		out.Tokens = env.Usage.TotalTokens
		out.Cost = env.Usage.Cost
	}
	return out
}

var _ llm.Completer = (*OpenRouter)(nil)
