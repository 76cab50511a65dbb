package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lakeshift/lakeshift/internal/output"
)

// ImportCmd creates and returns the 'import' command
func ImportCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "import [source]",
		Short: "Import and analyze a project",
		Long: `Imports a project from a local directory, a GitHub repository URL, or a
ZIP download URL, and analyzes its routes, migrations and UI sources.

Example:
  lakeshift import ./my-project
  lakeshift import https://github.com/acme/my-project`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			origin := args[0]

			output.Verbose(fmt.Sprintf("Importing project from: %s", origin))

			id, record, err := service.Import(cmd.Context(), origin, name)
			if err != nil {
				fail(err)
			}

			analysis := record.Summarize()
			output.Success(fmt.Sprintf("Imported project: %s (%s)", record.Project.Name, id))
			output.Info("Analysis:")
			output.Step(fmt.Sprintf("%d API endpoints", analysis.Endpoints))
			output.Step(fmt.Sprintf("%d database tables", analysis.Tables))
			output.Step(fmt.Sprintf("%d components, %d pages", analysis.Components, analysis.Pages))
			output.Info("Next steps:")
			output.Step(fmt.Sprintf("lakeshift convert %s", id))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Override the detected project name")

	return cmd
}
