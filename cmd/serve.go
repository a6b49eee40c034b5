package cmd

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
	"soilsim/server"
)

var addr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve daily column snapshots over a websocket at /ws",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			Config.Addr = addr
		}
		upgrader := websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		}
		return server.NewServer(Config, upgrader).Serve()
	},
}

func init() {
	serveCmd.Flags().StringVar(&addr, "addr", ":9000", "listen address, overrides [server] Addr")
}
