package commands

import (
	"context"
	"log/slog"
	"time"

	"mygcc-backend/internal/api"
	"mygcc-backend/internal/chrono"
	"mygcc-backend/internal/config"
	"mygcc-backend/internal/telemetry"
	"mygcc-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	servePort int
	serveDump string
)

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "The port to listen on, overrides the config.")
	serveCmd.Flags().StringVar(&serveDump, "dump", "", "A directory to dump every portal http message into.")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--port <port>] [--dump <dir>]",
	Short: "Serves the json api.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		cfg, err := config.Load(configPath)
		if err != nil {
			serviceutil.Fatal("load config", err)
		}

		tel, err := telemetry.Setup(ctx, "mygcc", cfg.Telemetry)
		if err != nil {
			serviceutil.Fatal("setup telemetry", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
			defer cancel()
			err := tel.Shutdown(shutdownCtx)
			if err != nil {
				slog.Warn("shutdown telemetry", "err", err)
			}
		}()
		telemetry.InstrumentPerfStats(ctx)

		codec, err := newCodec(cfg)
		if err != nil {
			serviceutil.Fatal("init token codec", err)
		}
		client, err := newPortalClient(cfg, serveDump, telemetry.SlogAPI{})
		if err != nil {
			serviceutil.Fatal("init portal client", err)
		}

		service := api.NewService(
			codec,
			client,
			chrono.NewStandardTime(),
			telemetry.SlogAPI{},
			api.Options{CacheSession: cfg.Token.CacheSession},
		)

		port := cfg.Server.Port
		if servePort > 0 {
			port = servePort
		}
		err = serviceutil.StartHttpServer(ctx, port, api.NewHandler(service))
		if err != nil {
			serviceutil.Fatal("serve http", err)
		}
	},
}
