package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/gradesync/internal/service"
	"github.com/noah-isme/gradesync/internal/spreadsheet"
	appErrors "github.com/noah-isme/gradesync/pkg/errors"
)

func newImportCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a teacher gradebook workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				file = a.cfg.Gradebook.Path
			}
			wb, err := spreadsheet.Open(file)
			if err != nil {
				return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ExitUsage,
					fmt.Sprintf("cannot read workbook %s", file))
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			metrics := service.NewMetricsService()
			importer := service.NewImportService(db, service.ImportConfig{
				DefaultScale: a.cfg.Gradebook.DefaultScale,
				RetakeSheet:  a.cfg.Gradebook.RetakeSheet,
			}, metrics, a.logger)

			report, importErr := importer.ImportWorkbook(cmd.Context(), wb)
			out := cmd.OutOrStdout()
			for _, c := range report.Courses {
				fmt.Fprintf(out, "%s: %d students, %d items, %d results\n", c.CourseCode, c.Students, c.Items, c.Results)
			}
			if report.Retakes > 0 {
				fmt.Fprintf(out, "retakes: %d\n", report.Retakes)
			}
			if err := writeMetrics(a, metrics); err != nil {
				a.logger.Warn("write metrics textfile", zap.Error(err))
			}
			return importErr
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Workbook to import (default GRADEBOOK_PATH)")
	return cmd
}

func writeMetrics(a *app, metrics *service.MetricsService) error {
	if a.cfg.Metrics.Textfile == "" {
		return nil
	}
	if err := metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}
