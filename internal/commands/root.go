package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lakeshift/lakeshift/internal/config"
	"github.com/lakeshift/lakeshift/internal/output"
	"github.com/lakeshift/lakeshift/internal/project"
)

// service is shared by the subcommands so imported projects stay visible to
// convert, deploy and status within one process.
var (
	service *project.Service
	logger  *zap.Logger
)

// RootCmd creates and returns the root command for the lakeshift CLI
func RootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "lakeshift",
		Short: "Migrate Supabase-backed web projects to Databricks",
		Long: `Lakeshift analyzes a Supabase-backed web project and converts it into a
deployable Databricks App:
• Edge functions become FastAPI routers
• SQL migrations become SQLModel records and pydantic schemas
• LLM API calls are remapped to model serving endpoints

Imported projects live in process memory; run import, convert, deploy and
status within one session.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			output.SetVerbose(verbose)

			logCfg := zap.NewProductionConfig()
			if verbose {
				logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
			}
			var err error
			logger, err = logCfg.Build()
			if err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			service = project.NewService(cfg, logger)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")

	return cmd
}

// fail prints a styled error and exits non-zero.
func fail(err error) {
	output.Error(err.Error())
	os.Exit(1)
}
