package main

import (
	"time"

	"github.com/spf13/cobra"
)

// CommandFunc defines the function signature for command execution.
type CommandFunc func(cmd *cobra.Command, args []string) error

// CommandConfig holds configuration for creating standardized commands.
type CommandConfig struct {
	Use     string
	Short   string
	Long    string
	Args    cobra.PositionalArgs
	RunFunc CommandFunc
	Example string
	Aliases []string

	// SkipPanel runs the command without loading the panel config.
	SkipPanel bool
}

// newCommand creates a Cobra command that logs its duration and exits on error.
func newCommand(cfg CommandConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:     cfg.Use,
		Short:   cfg.Short,
		Long:    cfg.Long,
		Args:    cfg.Args,
		Example: cfg.Example,
		Aliases: cfg.Aliases,
		Run: func(cmd *cobra.Command, args []string) {
			start := time.Now()
			if err := cfg.RunFunc(cmd, args); err != nil {
				log.Error("command_failed", map[string]any{"command": cmd.CommandPath()}, err)
				exitOnError(err)
				return
			}
			log.TimedEvent("command_done", start, map[string]any{"command": cmd.CommandPath()})
		},
	}
	if cfg.SkipPanel {
		cmd.Annotations = map[string]string{skipPanel: "true"}
	}
	return cmd
}
