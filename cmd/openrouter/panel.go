package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/craigvandotcom/agent-compounds/internal/config"
	"github.com/craigvandotcom/agent-compounds/internal/panel"
	"github.com/craigvandotcom/agent-compounds/internal/render"
)

func panelCmd() *cobra.Command {
	cmd := newCommand(CommandConfig{
		Use:   "panel",
		Short: "Show the expert panel",
		Args:  cobra.NoArgs,
		RunFunc: func(cmd *cobra.Command, args []string) error {
			p := registry.Panel()
			source := p.Source
			if source == "" {
				source = "defaults"
			}
			out := render.NewWriter(cmd.OutOrStdout())
			out.Print("%s", render.New(pretty).Panel(p, source))

			edit := p.Source
			if edit == "" {
				edit = config.GetPaths().Panel + " (run 'openrouter panel init')"
			}
			out.Line()
			out.Println("Edit: %s", edit)
			return nil
		},
	})

	cmd.AddCommand(panelInitCmd())
	return cmd
}

func panelInitCmd() *cobra.Command {
	var force bool

	cmd := newCommand(CommandConfig{
		Use:   "init [path]",
		Short: "Write the built-in panel to a config file",
		Long: `Write the built-in panel to a config file.

The format follows the extension: .json, .yaml or .yml.
Default path: $XDG_CONFIG_HOME/openrouter/panel.json`,
		Args:      cobra.MaximumNArgs(1),
		SkipPanel: true,
		RunFunc: func(cmd *cobra.Command, args []string) error {
			path := config.GetPaths().Panel
			if len(args) > 0 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := panel.Default().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	})
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func aliasesCmd() *cobra.Command {
	return newCommand(CommandConfig{
		Use:   "aliases",
		Short: "List model aliases and variants",
		Args:  cobra.NoArgs,
		RunFunc: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), render.New(pretty).Aliases(registry.Aliases()))
			return nil
		},
	})
}
