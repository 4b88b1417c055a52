package cmd

import "github.com/spf13/cobra"

func newStopCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running agent",
		RunE: func(_ *cobra.Command, _ []string) error {
			supervisor, err := wireSupervisor(configPath)
			if err != nil {
				return err
			}
			return supervisor.Stop()
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the config file")
	return cmd
}
