package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"taskboard/internal/board"
	"taskboard/internal/config"
	"taskboard/internal/render"
	"taskboard/internal/server"
	"taskboard/internal/store/docstore"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	watchProject string
	watchUser    string
)

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow a project board in the terminal",
		Long: `Attach to a project and repaint the board every time it changes.

Examples:
  taskboard watch --project 3f1c... --user 8c3a...`,
		RunE: runWatch,
	}

	cmd.Flags().StringVarP(&watchProject, "project", "p", "", "project id")
	cmd.Flags().StringVarP(&watchUser, "user", "u", "", "user id the board is shown for")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	logger := newLogger()

	_, st, err := server.OpenStore(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.DBDriver == config.DriverPostgres && cfg.NotifyChannel != "" {
		g.Go(func() error {
			return docstore.Listen(ctx, cfg.PostgresDSN(), cfg.NotifyChannel, st.Hub(), logger)
		})
	}

	_, teardown, err := board.Init(ctx, st, watchProject, watchUser, render.NewTerminal(os.Stdout),
		board.WithLogger(logger), board.WithDragThreshold(cfg.DragThreshold))
	if err != nil {
		stop()
		_ = g.Wait()
		return fmt.Errorf("attach to project %s: %w", watchProject, err)
	}
	defer teardown()

	g.Go(func() error {
		<-ctx.Done()
		return nil
	})
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
