package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"roomrelay/internal/protocol"
)

func newWatchCmd() *cobra.Command {
	var room string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Join a room and stream its events",
		RunE: func(cmd *cobra.Command, args []string) error {
			if room == "" {
				return fmt.Errorf("room is required (use -r)")
			}

			conn, err := dialWS(flagServer)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := conn.WriteJSON(protocol.Command{Type: protocol.CmdJoin, Room: room}); err != nil {
				return fmt.Errorf("send join: %w", err)
			}
			ev, err := awaitEvent(conn, 10*time.Second, protocol.EventRoomJoined)
			if err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, formatEvent(ev))

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt)

			done := make(chan struct{})
			go func() {
				defer close(done)
				for {
					_, data, err := conn.ReadMessage()
					if err != nil {
						if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
							fmt.Fprintf(os.Stderr, "read error: %v\n", err)
						}
						return
					}
					var ev serverEvent
					if err := json.Unmarshal(data, &ev); err != nil {
						fmt.Println(string(data))
						continue
					}
					fmt.Println(formatEvent(ev))
				}
			}()

			select {
			case <-done:
				return nil
			case <-interrupt:
				fmt.Fprintln(os.Stderr, "\ndisconnecting...")
				deadline := time.Now().Add(time.Second)
				return conn.WriteControl(
					websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					deadline,
				)
			}
		},
	}

	cmd.Flags().StringVarP(&room, "room", "r", "", "room id")
	return cmd
}
