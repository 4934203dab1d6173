package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagServer string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "relayctl",
		Short: "CLI client for a roomrelay chat server",
	}

	root.PersistentFlags().StringVarP(&flagServer, "server", "s",
		envOrDefault("ROOMRELAY_SERVER", "http://localhost:4000"), "server base URL")

	root.AddCommand(
		newRoomsCmd(),
		newCreateCmd(),
		newInfoCmd(),
		newSendCmd(),
		newWatchCmd(),
		newDigestCmd(),
	)

	return root
}

// Execute runs the CLI.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
