package cmd

import "github.com/spf13/cobra"

func newRestartCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the agent",
		RunE: func(_ *cobra.Command, _ []string) error {
			supervisor, err := wireSupervisor(configPath)
			if err != nil {
				return err
			}
			return supervisor.Restart(configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the config file")
	return cmd
}
