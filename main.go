package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"stenosis/config"
	"stenosis/server"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	cfg := config.Default()

	rootCmd := &cobra.Command{
		Use:   "stenosis",
		Short: "Flow through a narrowed vessel",
		Long: `stenosis simulates steady laminar flow through a conduit with a single
constriction: the flow rate, the pressure along the conduit and tracer
particles for an animated view.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			cfg = loaded
			cfg.ApplyLogLevel()
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath, "Path to the ini configuration")

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(&cfg),
		newSolveCmd(&cfg),
		newSimulateCmd(&cfg),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "stenosis version %s\n", version)
		},
	}
}

func newServeCmd(cfg *config.Config) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve simulation sessions over websocket at /ws",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = cfg.Server.Addr
			}
			upgrader := websocket.Upgrader{
				ReadBufferSize:  cfg.Server.ReadBufferSize,
				WriteBufferSize: cfg.Server.WriteBufferSize,
				CheckOrigin: func(r *http.Request) bool {
					return true
				},
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := server.NewServer(addr, upgrader, cfg.Simulation)
			if err := s.Serve(ctx); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			log.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides [server] Addr)")
	return cmd
}
