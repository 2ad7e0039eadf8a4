package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd wires the cobra root command. Running the binary without a
// subcommand starts the HTTP server.
func NewRootCmd() *cobra.Command {
	var configPath string

	serve := newServeCommand(&configPath)

	root := &cobra.Command{
		Use:           "hello-service",
		Short:         "Hello service with health, readiness and storage endpoints",
		RunE:          serve.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Flags().AddFlagSet(serve.Flags())
	root.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"),
		"optional YAML config file; environment variables override it")

	root.AddCommand(serve)
	root.AddCommand(newMigrateCommand(&configPath))
	root.AddCommand(newCreateSuperuserCommand(&configPath))
	root.AddCommand(newCollectStaticCommand(&configPath))
	root.AddCommand(newCheckCommand(&configPath))
	return root
}
