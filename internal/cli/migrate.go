package cli

import (
	"github.com/spf13/cobra"

	"github.com/runnerkit/hello-service/internal/db"
	"github.com/runnerkit/hello-service/internal/repository"
	"github.com/runnerkit/hello-service/internal/service"
)

func newMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and ensure the superuser exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if err := db.Migrate(cfg.DatabaseURL()); err != nil {
				return err
			}
			logger.Info("database migrations applied")

			pool, err := db.Connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			bs := service.NewBootstrapService(repository.NewPgUserRepository(pool), logger)
			_, err = bs.EnsureSuperuser(cmd.Context(), cfg.DBUser, cfg.DBPassword)
			return err
		},
	}
}

func newCreateSuperuserCommand(configPath *string) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create the administrative account (defaults to the database credentials)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			if username == "" {
				username = cfg.DBUser
			}
			if password == "" {
				password = cfg.DBPassword
			}

			pool, err := db.Connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			bs := service.NewBootstrapService(repository.NewPgUserRepository(pool), logger)
			created, err := bs.EnsureSuperuser(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			if created {
				cmd.Printf("superuser %q created\n", username)
			} else {
				cmd.Printf("superuser %q already exists\n", username)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account name (default DB_USERNAME)")
	cmd.Flags().StringVar(&password, "password", "", "account password (default DB_PASSWORD)")
	return cmd
}
