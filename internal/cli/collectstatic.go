package cli

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/runnerkit/hello-service/internal/metrics"
	"github.com/runnerkit/hello-service/internal/service"
)

func newCollectStaticCommand(configPath *string) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "collectstatic",
		Short: "Upload a local asset directory to the static/ prefix of the bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			_, static, err := stores(cfg)
			if err != nil {
				return err
			}

			m := metrics.New(prometheus.NewRegistry())
			svc := service.NewStaticService(static, cfg.UploadWorkers, logger, m.UploadHook())

			report, err := svc.Collect(cmd.Context(), dir)
			if err != nil {
				return err
			}
			cmd.Printf("%d static files uploaded, %d failed\n", report.Uploaded, report.Failed)
			if report.Failed > 0 {
				return fmt.Errorf("collectstatic: %w", errors.Join(report.Errors...))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "static", "local directory to upload")
	return cmd
}
