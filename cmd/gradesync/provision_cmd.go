package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gradesync/internal/portal"
	"github.com/noah-isme/gradesync/internal/prompt"
	"github.com/noah-isme/gradesync/internal/service"
)

func newProvisionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "provision",
		Short: "Copy courses, students and contacts from the portal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p := prompt.Stdio()

			client, err := portal.New(a.cfg.Portal, a.logger, portal.WithRetry(p.Retry))
			if err != nil {
				return err
			}
			err = p.Retry(ctx, "log in", func(ctx context.Context) error {
				username, password, err := p.Credentials("Portal", a.cfg.Portal.Username)
				if err != nil {
					return err
				}
				return client.Login(ctx, username, password)
			})
			if err != nil {
				return err
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			metrics := service.NewMetricsService()
			summary, err := service.NewProvisionService(db, nil, metrics, a.logger).Sync(ctx, client)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "provisioned %d courses, %d students, %d contacts\n",
				summary.Courses, summary.Students, summary.Contacts)
			return writeMetrics(a, metrics)
		},
	}
}
