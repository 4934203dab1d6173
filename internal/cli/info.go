package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"roomrelay/internal/protocol"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Connect and print the connection id assigned by the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := dialWS(flagServer)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.WriteJSON(protocol.Command{Type: protocol.CmdInfo}); err != nil {
				return fmt.Errorf("send info: %w", err)
			}
			ev, err := awaitEvent(conn, 10*time.Second, protocol.EventInfo)
			if err != nil {
				return err
			}
			fmt.Println(ev.UserID)
			return nil
		},
	}
}
