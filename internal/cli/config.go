package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/flightcore"
	"gopkg.in/yaml.v3"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect scheduler configuration",
	}
	cmd.AddCommand(newConfigValidateCmd(), newConfigDefaultsCmd())
	return cmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <url>",
		Short: "Load and validate a YAML config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flightcore.LoadConfig(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			logger.Debug("config loaded", "url", args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "ok: maxTasks=%d maxCallDepth=%d events=%v\n",
				cfg.Scheduler.MaxTasks, cfg.Scheduler.MaxCallDepth, cfg.Events.Enabled)
			return nil
		},
	}
}

func newConfigDefaultsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "defaults",
		Short: "Print the default config as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(flightcore.DefaultConfig()); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
