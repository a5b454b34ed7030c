package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/craigvandotcom/agent-compounds/internal/provider"
	"github.com/craigvandotcom/agent-compounds/internal/render"
)

func modelsCmd() *cobra.Command {
	var pricing bool

	cmd := newCommand(CommandConfig{
		Use:     "models [filter]",
		Short:   "List backend models",
		Args:    cobra.MaximumNArgs(1),
		Example: "  openrouter models anthropic --pricing",
		RunFunc: func(cmd *cobra.Command, args []string) error {
			if err := env.RequireCredential(); err != nil {
				return err
			}
			filter := ""
			if len(args) > 0 {
				filter = args[0]
			}

			client := provider.New(
				provider.WithAPIKey(env.APIKey),
				provider.WithBaseURL(env.BaseURL),
			)
			models, err := client.ListModels(cmd.Context(), filter)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), render.New(pretty).Models(models, pricing))
			return nil
		},
	})
	cmd.Flags().BoolVar(&pricing, "pricing", false, "Show per-token pricing")
	return cmd
}
