package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "bws-ssh-agent",
		Short:         "SSH agent serving keys from Bitwarden Secrets Manager",
		Long:          "bws-ssh-agent answers SSH-agent requests on a local socket, fetching private keys on demand from Bitwarden Secrets Manager so plaintext keys never touch disk.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newStartCmd(),
		newStopCmd(),
		newRestartCmd(),
		newStatusCmd(),
	)

	return rootCmd
}
