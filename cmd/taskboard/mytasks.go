package main

import (
	"context"
	"fmt"

	"taskboard/internal/config"
	"taskboard/internal/mytasks"
	"taskboard/internal/render"
	"taskboard/internal/server"

	"github.com/spf13/cobra"
)

func myTasksCmd() *cobra.Command {
	var (
		user          string
		sortBy        string
		hideCompleted bool
		projectID     string
		status        string
	)

	cmd := &cobra.Command{
		Use:   "mytasks",
		Short: "List tasks assigned to a user across all projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			by, err := mytasks.ParseSortBy(sortBy)
			if err != nil {
				return err
			}

			cfg := config.Load()
			logger := newLogger()
			_, st, err := server.OpenStore(cfg, logger)
			if err != nil {
				return err
			}

			list, err := mytasks.NewAggregator(st, logger).Fetch(context.Background(), user)
			if err != nil {
				return err
			}
			rows := list.View(mytasks.Options{
				SortBy:        by,
				HideCompleted: hideCompleted,
				ProjectID:     projectID,
				Status:        status,
			})

			fmt.Println(render.MyTasks(rows))
			fmt.Println(render.Summary(len(rows), len(list.Rows), list.Dropped))
			return nil
		},
	}

	cmd.Flags().StringVarP(&user, "user", "u", "", "user id")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "due", "sort by due, project, status or priority")
	cmd.Flags().BoolVar(&hideCompleted, "hide-completed", false, "hide completed tasks")
	cmd.Flags().StringVar(&projectID, "project", "", "only tasks of this project")
	cmd.Flags().StringVar(&status, "status", "", "only tasks with this status")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
