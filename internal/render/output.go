package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"

	"github.com/craigvandotcom/agent-compounds/internal/fanout"
	"github.com/craigvandotcom/agent-compounds/internal/panel"
	"github.com/craigvandotcom/agent-compounds/internal/provider"
	"github.com/craigvandotcom/agent-compounds/pkg/llm"
)

const ruleWidth = 60

// DefaultStyle is the glamour style used for --pretty output.
const DefaultStyle = "dark"

// Renderer handles output formatting.
type Renderer struct {
	pretty bool
	style  string
}

// New creates a new renderer. pretty enables markdown rendering of answers.
func New(pretty bool) *Renderer {
	return &Renderer{pretty: pretty, style: DefaultStyle}
}

// Markdown renders answer text. Plain mode returns it unchanged; a glamour
// failure also falls back to the raw text.
func (r *Renderer) Markdown(text string) string {
	if !r.pretty {
		return text
	}
	out, err := glamour.Render(text, r.style)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// ModelHeader is the banner printed above each fan-out answer.
func (r *Renderer) ModelHeader(alias, model string) string {
	rule := strings.Repeat("=", ruleWidth)
	title := fmt.Sprintf("  %s (%s)", strings.ToUpper(alias), model)
	return fmt.Sprintf("\n%s\n%s\n%s\n", rule, color.CyanString(title), rule)
}

// FanOut formats every outcome in request order. Models shown are the
// panel's declared ids. Metadata is left to the caller's stderr.
func (r *Renderer) FanOut(res *fanout.Result, registry *panel.Registry) string {
	var sb strings.Builder
	res.Each(func(alias string, out llm.Outcome) {
		sb.WriteString(r.ModelHeader(alias, registry.Resolve(alias)))
		sb.WriteString("\n")
		if !out.OK {
			fmt.Fprintf(&sb, "%s\n", color.RedString("Error: %s", out.Err))
			return
		}
		sb.WriteString(r.Markdown(out.Content))
		sb.WriteString("\n")
	})
	return sb.String()
}

// DoneLine is the per-alias status line shown on stderr in verbose fan-out:
// metrics for a success, the truncated error for a failure.
func DoneLine(alias, model string, out llm.Outcome) string {
	line := fmt.Sprintf("  %s %s (%s)", StatusIcon(out.OK), alias, model)
	if out.OK {
		return line + " [" + Metrics(out) + "]"
	}
	return line + ": " + Truncate(out.Err, 80)
}

// SynthesisHeader is the banner printed before the synthesis streams in.
func (r *Renderer) SynthesisHeader(model string) string {
	return r.ModelHeader("synthesis", model)
}

// Metrics formats the time, tokens and cost of an outcome.
func Metrics(out llm.Outcome) string {
	parts := []string{fmt.Sprintf("Time: %gs", out.Elapsed)}
	if out.Tokens != nil && *out.Tokens > 0 {
		parts = append(parts, fmt.Sprintf("Tokens: %d", *out.Tokens))
	}
	if out.Cost != nil {
		parts = append(parts, fmt.Sprintf("Cost: $%.4f", *out.Cost))
	}
	return strings.Join(parts, " | ")
}

// RequestLine describes a single-model request before it is sent.
func RequestLine(model string, web bool) string {
	parts := []string{"Model: " + model}
	if web {
		parts = append(parts, "Web: on")
	}
	return strings.Join(parts, " | ")
}

// QueryBanner announces a fan-out.
func QueryBanner(aliases []string) string {
	return fmt.Sprintf("Querying %d models: %s", len(aliases), strings.Join(aliases, ", "))
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	aliasStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF7F"))
	modelStyle    = lipgloss.NewStyle().Width(42)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	disabledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")).Strikethrough(true)
)

// Panel formats the panel as an aligned table: enabled entries first, then
// disabled ones.
func (r *Renderer) Panel(p *panel.Panel, source string) string {
	var enabled, disabled []panel.Entry
	width := 0
	for _, e := range p.Entries {
		width = max(width, len(e.Alias))
		if e.IsEnabled() {
			enabled = append(enabled, e)
		} else {
			disabled = append(disabled, e)
		}
	}
	col := aliasStyle.Width(width + 2)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(fmt.Sprintf("Expert Panel (%d active, from %s):", len(enabled), source)))
	sb.WriteString("\n\n")
	for _, e := range enabled {
		row := lipgloss.JoinHorizontal(lipgloss.Top,
			"  ", col.Render(e.Alias), modelStyle.Render(e.Model), dimStyle.Render(e.Strength))
		sb.WriteString(strings.TrimRight(row, " ") + "\n")
	}
	if len(disabled) > 0 {
		fmt.Fprintf(&sb, "\nDisabled (%d):\n", len(disabled))
		for _, e := range disabled {
			row := lipgloss.JoinHorizontal(lipgloss.Top,
				"  ", disabledStyle.Width(width+2).Render(e.Alias), e.Model)
			sb.WriteString(row + "\n")
		}
	}
	return sb.String()
}

// Aliases formats the alias table followed by the variant suffixes.
func (r *Renderer) Aliases(pairs []panel.AliasPair) string {
	width := 0
	for _, p := range pairs {
		width = max(width, len(p.Alias))
	}

	var sb strings.Builder
	sb.WriteString("Model aliases:\n")
	for _, p := range pairs {
		fmt.Fprintf(&sb, "  %-*s -> %s\n", width+2, p.Alias, p.Model)
	}
	sb.WriteString("\nVariants (append with colon, e.g. claude:online):\n")
	for _, name := range panel.VariantNames() {
		fmt.Fprintf(&sb, "  :%s\n", name)
	}
	return sb.String()
}

// Models formats a model listing, optionally with per-token pricing.
func (r *Renderer) Models(models []provider.ModelInfo, pricing bool) string {
	if len(models) == 0 {
		return "No models found\n"
	}

	var sb strings.Builder
	if pricing {
		fmt.Fprintf(&sb, "Models (%d):\n", len(models))
	}
	for _, m := range models {
		if !pricing {
			sb.WriteString(m.ID + "\n")
			continue
		}
		price := ""
		if m.PromptPrice != "" || m.CompletionPrice != "" {
			price = fmt.Sprintf(" (in: $%s, out: $%s)", m.PromptPrice, m.CompletionPrice)
		}
		fmt.Fprintf(&sb, "  %s%s\n", m.ID, price)
	}
	return sb.String()
}

// FormatDuration formats a duration in human-readable form.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
}
