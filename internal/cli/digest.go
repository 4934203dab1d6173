package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"roomrelay/internal/digest"
	"roomrelay/internal/protocol"
)

func newDigestCmd() *cobra.Command {
	var room string

	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Print a markdown digest of a room's transcript",
		RunE: func(cmd *cobra.Command, args []string) error {
			if room == "" {
				return fmt.Errorf("room is required (use -r)")
			}

			conn, err := dialWS(flagServer)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.WriteJSON(protocol.Command{Type: protocol.CmdGetRoom, Room: room}); err != nil {
				return fmt.Errorf("send get_room: %w", err)
			}

			// The room record reply carries a "room" field instead of a
			// type tag, so it is matched directly rather than via awaitEvent.
			conn.SetReadDeadline(time.Now().Add(10 * time.Second))
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return fmt.Errorf("read: %w", err)
				}
				var errEv protocol.ErrorEvent
				if json.Unmarshal(data, &errEv) == nil && errEv.Type == protocol.EventError {
					return fmt.Errorf("server error: %s", errEv.Message)
				}
				var rec protocol.Room
				if json.Unmarshal(data, &rec) == nil && rec.ID == room {
					fmt.Print(digest.Build(rec))
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVarP(&room, "room", "r", "", "room id")
	return cmd
}
