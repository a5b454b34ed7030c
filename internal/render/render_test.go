package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craigvandotcom/agent-compounds/internal/fanout"
	"github.com/craigvandotcom/agent-compounds/internal/panel"
	"github.com/craigvandotcom/agent-compounds/internal/provider"
	"github.com/craigvandotcom/agent-compounds/pkg/llm"
)

func init() {
	color.NoColor = true
}

func testRegistry() *panel.Registry {
	return panel.NewRegistry(&panel.Panel{Entries: []panel.Entry{
		{Alias: "x", Model: "vendor/x"},
		{Alias: "y", Model: "vendor/y"},
	}})
}

func TestWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	w.Println("Models (%d)", 2)
	w.Line()
	w.Print("%s", "Edit: x")

	assert.Equal(t, "Models (2)\n\nEdit: x", buf.String())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", Truncate("hello", 10))
	assert.Equal(t, "he...", Truncate("hello world", 5))
	assert.Equal(t, "he", Truncate("hello", 2))
}

func TestTruncateRunes(t *testing.T) {
	msg := "上游服务不可用，请稍后重试"
	got := Truncate(msg, 8)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "上游服务不...", got)
	assert.Equal(t, "日本", Truncate("日本語", 2))
	assert.Equal(t, "日本語", Truncate("日本語", 3))
}

func TestDoneLine(t *testing.T) {
	tokens := int64(42)
	ok := DoneLine("x", "vendor/x", llm.Outcome{OK: true, Elapsed: 1.5, Tokens: &tokens})
	assert.Equal(t, "  ✓ x (vendor/x) [Time: 1.5s | Tokens: 42]", ok)

	bad := DoneLine("y", "vendor/y", llm.Failure("%s", strings.Repeat("é", 100)))
	assert.True(t, strings.HasPrefix(bad, "  ✗ y (vendor/y): "))
	assert.True(t, utf8.ValidString(bad))
	assert.True(t, strings.HasSuffix(bad, "..."))
}

func TestMetrics(t *testing.T) {
	tokens := int64(120)
	cost := 0.00123
	assert.Equal(t, "Time: 1.25s | Tokens: 120 | Cost: $0.0012", Metrics(llm.Outcome{OK: true, Elapsed: 1.25, Tokens: &tokens, Cost: &cost}))
	assert.Equal(t, "Time: 2s", Metrics(llm.Outcome{OK: true, Elapsed: 2}))
}

func TestRequestLineAndBanner(t *testing.T) {
	assert.Equal(t, "Model: vendor/x", RequestLine("vendor/x", false))
	assert.Equal(t, "Model: vendor/x | Web: on", RequestLine("vendor/x", true))
	assert.Equal(t, "Querying 2 models: x, y", QueryBanner([]string{"x", "y"}))
}

func TestFanOutOrderAndErrors(t *testing.T) {
	res := &fanout.Result{
		Order: []string{"y", "x"},
		Outcomes: map[string]llm.Outcome{
			"x": llm.Success("answer x", "vendor/x-echo", 0.5),
			"y": llm.Failure("timeout"),
		},
	}

	out := New(false).FanOut(res, testRegistry())

	yAt := strings.Index(out, "Y (vendor/y)")
	xAt := strings.Index(out, "X (vendor/x)")
	require.NotEqual(t, -1, yAt)
	require.NotEqual(t, -1, xAt)
	assert.Less(t, yAt, xAt)
	assert.Contains(t, out, strings.Repeat("=", 60))
	assert.Contains(t, out, "Error: timeout")
	assert.Contains(t, out, "answer x")
	assert.NotContains(t, out, "Time:", "metadata never goes to stdout")
}

func TestMarkdownPlainIsIdentity(t *testing.T) {
	assert.Equal(t, "# Title\n\n*x*", New(false).Markdown("# Title\n\n*x*"))
}

func TestMarkdownPretty(t *testing.T) {
	out := New(true).Markdown("# Title\n\nbody")
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "body")
}

func TestPanel(t *testing.T) {
	off := false
	p := &panel.Panel{Entries: []panel.Entry{
		{Alias: "claude", Model: "anthropic/claude-opus-4.6", Strength: "Reasoning"},
		{Alias: "gpt", Model: "openai/gpt-5.2", Enabled: &off},
	}}

	out := New(false).Panel(p, "defaults")

	assert.Contains(t, out, "Expert Panel (1 active, from defaults):")
	assert.Contains(t, out, "claude")
	assert.Contains(t, out, "anthropic/claude-opus-4.6")
	assert.Contains(t, out, "Reasoning")
	assert.Contains(t, out, "Disabled (1):")
	assert.Less(t, strings.Index(out, "claude"), strings.Index(out, "Disabled"))
	assert.Greater(t, strings.Index(out, "openai/gpt-5.2"), strings.Index(out, "Disabled"))
}

func TestAliases(t *testing.T) {
	out := New(false).Aliases(testRegistry().Aliases())

	assert.Contains(t, out, "Model aliases:")
	assert.Contains(t, out, "  x   -> vendor/x\n")
	for _, v := range panel.VariantNames() {
		assert.Contains(t, out, "  :"+v+"\n")
	}
}

func TestModels(t *testing.T) {
	models := []provider.ModelInfo{
		{ID: "a/one", PromptPrice: "0.000001", CompletionPrice: "0.000002"},
		{ID: "b/two"},
	}
	r := New(false)

	assert.Equal(t, "a/one\nb/two\n", r.Models(models, false))

	priced := r.Models(models, true)
	assert.Contains(t, priced, "Models (2):")
	assert.Contains(t, priced, "a/one (in: $0.000001, out: $0.000002)")
	assert.Contains(t, priced, "  b/two\n")

	assert.Equal(t, "No models found\n", r.Models(nil, true))
}

func TestProgressDisabled(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 3, false)
	p.Start()
	p.Done("x", true)
	p.Done("y", false)
	p.Stop()

	done, failed := p.Counts()
	assert.Equal(t, 2, done)
	assert.Equal(t, 1, failed)
	assert.Empty(t, buf.String())
}

func TestReport(t *testing.T) {
	tokens := int64(10)
	res := &fanout.Result{
		RunID: "01HZX",
		Order: []string{"x", "y"},
		Outcomes: map[string]llm.Outcome{
			"x": {OK: true, Content: "A", Model: "vendor/x-1", Elapsed: 1.5, Tokens: &tokens},
			"y": llm.Failure("down"),
		},
	}
	synth := llm.Success("merged", "vendor/s", 2)

	var buf bytes.Buffer
	require.NoError(t, BuildReport("Q", res, testRegistry(), &synth).WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "01HZX", decoded["run_id"])
	assert.Equal(t, "Q", decoded["prompt"])
	assert.Equal(t, []any{"y"}, decoded["failed_models"])

	responses := decoded["responses"].([]any)
	require.Len(t, responses, 2)
	first := responses[0].(map[string]any)
	assert.Equal(t, "x", first["alias"])
	assert.Equal(t, "vendor/x-1", first["model"])
	assert.Equal(t, 10.0, first["tokens"])
	second := responses[1].(map[string]any)
	assert.Equal(t, false, second["ok"])
	assert.Equal(t, "vendor/y", second["model"])
	assert.Equal(t, "down", second["error"])

	assert.Equal(t, "merged", decoded["synthesis"].(map[string]any)["content"])
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "500ms", FormatDuration(500*time.Millisecond))
	assert.Equal(t, "1.5s", FormatDuration(1500*time.Millisecond))
	assert.Equal(t, "2m5s", FormatDuration(125*time.Second))
}

func TestSynthesisHeader(t *testing.T) {
	out := New(false).SynthesisHeader("vendor/s")
	assert.Contains(t, out, "SYNTHESIS (vendor/s)")
}
