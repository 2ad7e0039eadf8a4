package cli

import (
	"github.com/spf13/cobra"

	"github.com/runnerkit/hello-service/internal/config"
)

func newCheckCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate configuration without starting anything",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Debug {
				cmd.PrintErrln("warning: DEBUG is enabled")
			}
			cmd.Println("System check identified no issues.")
			return nil
		},
	}
}
