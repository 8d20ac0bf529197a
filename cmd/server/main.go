// Command server runs the Riichi Mahjong authoritative server: the accept
// loop, the session engines it spawns, the stdin debug console, and
// (optionally) the admin gRPC surface and statsviz dashboard. CLI parsing
// follows the teacher's cobra-based command shape.
package main

import (
	"context"
	"fmt"
	"net"
	"os"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"riichi-server/internal/admin"
	"riichi-server/internal/config"
	"riichi-server/internal/history"
	"riichi-server/internal/logx"
	"riichi-server/internal/server"
)

func main() {
	var (
		online     bool
		configFile string
		useRedFive bool
	)

	root := &cobra.Command{
		Use:   "server",
		Short: "Riichi Mahjong authoritative game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			cfg.Online = cfg.Online || online
			logx.Init("server", cfg.Log)

			hist := history.New(cfg.Mongo)

			srv := server.New(cfg.Online, useRedFive, hist, cfg.Server.LogDir)

			if cfg.Admin.GrpcAddr != "" {
				go runAdmin(srv, cfg.Admin.GrpcAddr)
			}
			if cfg.Admin.StatsvizAddr != "" {
				go func() {
					if err := admin.ServeStatsviz(cfg.Admin.StatsvizAddr); err != nil {
						logx.Warn("statsviz server stopped: %v", err)
					}
				}()
			}
			if sampler, err := admin.NewSampler(); err == nil {
				go sampler.Run(context.Background())
			} else {
				logx.Warn("admin: resource sampler disabled: %v", err)
			}

			go srv.DebugConsole(os.Stdin)

			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			return srv.Run(addr)
		},
	}

	root.Flags().BoolVar(&online, "online", false, "reject a second connection from the same address during handshake")
	root.Flags().StringVar(&configFile, "config", "", "path to a YAML/TOML config file")
	root.Flags().BoolVar(&useRedFive, "red-fives", true, "seed the wall with red-five tiles")

	if err := root.Execute(); err != nil {
		logx.Fatal("server: %v", err)
	}
}

func runAdmin(srv *server.Server, addr string) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		logx.Warn("admin: grpc listen %s failed: %v", addr, err)
		return
	}
	gs := grpc.NewServer()
	admin.Register(gs, admin.NewService(srv))
	logx.Info("admin grpc listening on %s", addr)
	if err := gs.Serve(ln); err != nil {
		logx.Warn("admin: grpc server stopped: %v", err)
	}
}
