package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether the agent is running",
		RunE: func(cmd *cobra.Command, _ []string) error {
			supervisor, err := wireSupervisor(configPath)
			if err != nil {
				return err
			}

			status, err := supervisor.Status()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case status.Running:
				_, _ = color.New(color.FgGreen).Fprintf(out, "running (pid %d)\n", status.PID)
				_, _ = fmt.Fprintf(out, "socket: %s\n", supervisor.Paths().Socket)
			case status.Stale:
				_, _ = color.New(color.FgYellow).Fprintf(out, "stale: pid %d is not running\n", status.PID)
			default:
				_, _ = fmt.Fprintln(out, "not running")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the config file")
	return cmd
}
