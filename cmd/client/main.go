// Command client is an interactive terminal client for the Riichi Mahjong
// server: it dials in, completes the handshake, and drives the session
// from stdin commands per §4.8.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"riichi-server/internal/client"
	"riichi-server/internal/config"
	"riichi-server/internal/logx"
)

func main() {
	var (
		addr       string
		uid        uint16
		spectate   uint16
		asSpectate bool
		configFile string
	)

	root := &cobra.Command{
		Use:   "client",
		Short: "Interactive Riichi Mahjong client",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			logx.Init("client", cfg.Log)

			var sess *client.Session
			if asSpectate {
				sess, err = client.Spectate(addr, spectate)
			} else {
				sess, err = client.Dial(addr, uid)
			}
			if err != nil {
				return fmt.Errorf("client: connect to %s: %w", addr, err)
			}
			fmt.Printf("connected as uid %d\n", sess.Mirror.YourID)

			sc := bufio.NewScanner(os.Stdin)
			sess.Run(client.StdinLines(sc))
			return nil
		},
	}

	root.Flags().StringVar(&addr, "addr", "127.0.0.1:10000", "server address")
	root.Flags().Uint16Var(&uid, "uid", 0, "uid to claim on connect (0 = new player)")
	root.Flags().Uint16Var(&spectate, "spectate", 0, "game id to spectate")
	root.Flags().BoolVar(&asSpectate, "as-spectator", false, "join as a spectator instead of a player")
	root.Flags().StringVar(&configFile, "config", "", "path to a YAML/TOML config file")

	if err := root.Execute(); err != nil {
		logx.Fatal("client: %v", err)
	}
}
