package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gradesync/internal/service"
	"github.com/noah-isme/gradesync/pkg/storage"
)

func newReportCmd(a *app) *cobra.Command {
	var course string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render grade reports as PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			files, err := storage.NewLocalStorage(a.cfg.Exports.Dir)
			if err != nil {
				return err
			}
			reports := service.NewReportService(db, files, nil, a.logger)

			var paths []string
			if course != "" {
				path, err := reports.Render(cmd.Context(), course)
				if err != nil {
					return err
				}
				paths = append(paths, path)
			} else if paths, err = reports.RenderAll(cmd.Context()); err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&course, "course", "", "Only render this course code")
	return cmd
}
