package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/gradesync/internal/repository"
	"github.com/noah-isme/gradesync/internal/service"
	"github.com/noah-isme/gradesync/pkg/storage"
)

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the student and contact workbook",
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
			exporter := service.NewExportService(repository.NewContactRepository(db), files,
				service.ExportConfig{CSV: a.cfg.Exports.CSV, Keep: a.cfg.Exports.Keep}, a.logger, nil, nil)

			result, err := exporter.Export(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, result.Workbook)
			if result.CSV != "" {
				fmt.Fprintln(out, result.CSV)
			}
			return nil
		},
	}
}
