package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"roomrelay/internal/protocol"
)

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <room-name>",
		Short: "Create a room and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := dialWS(flagServer)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.WriteJSON(protocol.Command{Type: protocol.CmdCreateRoom, RoomName: args[0]}); err != nil {
				return fmt.Errorf("send create_room: %w", err)
			}
			ev, err := awaitEvent(conn, 10*time.Second, protocol.EventRoomCreated)
			if err != nil {
				return err
			}
			fmt.Println(ev.RoomID)
			return nil
		},
	}
}
