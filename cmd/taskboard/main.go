package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "taskboard/docs"
	"taskboard/internal/config"
	"taskboard/internal/server"

	"github.com/spf13/cobra"
)

var Version = "dev"

// @title           Taskboard API
// @version         1.0
// @description     Projects, ordered sections and tasks with a live board over websocket.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	rootCmd := &cobra.Command{
		Use:           "taskboard",
		Short:         "Taskboard - realtime ordered task boards",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(myTasksCmd())
	rootCmd.AddCommand(tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			s, err := server.Init(cfg, newLogger())
			if err != nil {
				return fmt.Errorf("❌ Server initialization failed: %w", err)
			}

			ctx, stop := signalContext()
			defer stop()
			return s.Run(ctx)
		},
	}
}
