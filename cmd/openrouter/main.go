// Package main provides the openrouter CLI entrypoint.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/craigvandotcom/agent-compounds/internal/config"
	"github.com/craigvandotcom/agent-compounds/internal/logging"
	"github.com/craigvandotcom/agent-compounds/internal/panel"
)

var (
	version = "0.1.0"

	verbose     bool
	pretty      bool
	panelConfig string

	// Set by the root PersistentPreRunE.
	registry *panel.Registry
	env      *config.Env
	log      = logging.New("cli")
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		exitOnError(err)
	}
}

func newRootCmd() *cobra.Command {
	flags := &queryFlags{}

	rootCmd := &cobra.Command{
		Use:   "openrouter [prompt]",
		Short: "Query the world's best AI models from your terminal",
		Long: `openrouter: one prompt, one model or the whole expert panel.

Usage modes:
  openrouter "prompt" -m claude        Single model, streamed
  openrouter --all "prompt"            Fan out to every enabled panel model
  openrouter --all --synthesize "..."  Fan out, then merge the answers

Aliases come from the panel config (see 'openrouter panel').
Variants (append :suffix): :online :nitro :floor :free :extended`,
		Example: `  openrouter "Explain quantum computing" -m claude
  openrouter "What's in this?" --image photo.png -m gemini
  openrouter "Latest AI news" -m claude --web
  openrouter --file prompt.md -m deepseek --no-stream > output.md
  echo "Summarize" | openrouter -m gpt
  openrouter --all "Compare React vs Svelte" -o answers/
  openrouter --models claude,gpt,gemini --synthesize "Design a rate limiter"`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, flags)
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show metadata (model, time, tokens, cost)")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "Render non-streamed answers as markdown")
	rootCmd.PersistentFlags().StringVar(&panelConfig, "panel-config", "", "Panel config file (default: discovered)")
	flags.register(rootCmd)

	rootCmd.AddGroup(
		&cobra.Group{ID: "panel", Title: "Panel:"},
		&cobra.Group{ID: "backend", Title: "Backend:"},
	)

	pc := panelCmd()
	pc.GroupID = "panel"
	rootCmd.AddCommand(pc)

	ac := aliasesCmd()
	ac.GroupID = "panel"
	rootCmd.AddCommand(ac)

	mc := modelsCmd()
	mc.GroupID = "backend"
	rootCmd.AddCommand(mc)

	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

// skipPanel marks commands that must run even when the panel config is
// broken, such as the one that regenerates it.
const skipPanel = "skip-panel"

// setup loads .env files, the environment and the panel. It runs before
// every command; the credential is checked later, only where a call is made.
func setup(cmd *cobra.Command) error {
	if path, err := config.LoadDotEnv(config.DotEnvCandidates()...); err != nil {
		return err
	} else if path != "" {
		log.Debug("dotenv_loaded", map[string]any{"path": path})
	}

	env = config.Load()
	level := logging.ParseLevel(env.LogLevel)
	if info := logging.ParseLevel(string(logging.LevelInfo)); verbose && level < info {
		level = info
	}
	logging.SetLevel(level)

	if cmd.Annotations[skipPanel] == "true" {
		return nil
	}

	explicit := panelConfig
	if explicit == "" {
		explicit = env.PanelPath
	}
	workDir, _ := os.Getwd()

	p, err := panel.Resolve(explicit, workDir, config.GetPaths().Panel)
	if err != nil {
		return err
	}
	registry = panel.NewRegistry(p)

	source := p.Source
	if source == "" {
		source = "defaults"
	}
	log.Debug("panel_loaded", map[string]any{"source": source, "entries": len(p.Entries)})
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version",
		Annotations: map[string]string{skipPanel: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "openrouter %s\n", version)
		},
	}
}
