package cmd

import "github.com/spf13/cobra"

func newStartCmd() *cobra.Command {
	var foreground bool
	var configPath string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the agent",
		Long:  "Start the agent as a background daemon, or with --fg attached to the terminal.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if foreground || isSupervisedChild() {
				return runForeground(cmd.Context(), configPath)
			}

			supervisor, err := wireSupervisor(configPath)
			if err != nil {
				return err
			}
			return supervisor.StartBackground(configPath)
		},
	}

	cmd.Flags().BoolVar(&foreground, "fg", false, "run in the foreground instead of daemonizing")
	cmd.Flags().StringVar(&configPath, "config", "", "path to the config file")
	return cmd
}
