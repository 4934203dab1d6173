package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"roomrelay/internal/protocol"
)

func newSendCmd() *cobra.Command {
	var room string

	cmd := &cobra.Command{
		Use:   "send [message]",
		Short: "Join a room and send a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if room == "" {
				return fmt.Errorf("room is required (use -r)")
			}
			text := strings.Join(args, " ")

			conn, err := dialWS(flagServer)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.WriteJSON(protocol.Command{Type: protocol.CmdJoin, Room: room}); err != nil {
				return fmt.Errorf("send join: %w", err)
			}
			if _, err := awaitEvent(conn, 10*time.Second, protocol.EventRoomJoined); err != nil {
				return err
			}

			if err := conn.WriteJSON(protocol.Command{Type: protocol.CmdSendMessage, Room: room, Message: text}); err != nil {
				return fmt.Errorf("send message: %w", err)
			}
			// Members get their own broadcast back; use it as the ack.
			if _, err := awaitEvent(conn, 10*time.Second, protocol.EventRoomBroadcast); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "sent to room %s\n", room)
			return nil
		},
	}

	cmd.Flags().StringVarP(&room, "room", "r", "", "room id")
	return cmd
}
